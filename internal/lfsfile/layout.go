// internal/lfsfile/layout.go
package lfsfile

// File attribute layout constants.
// These values are persisted by the filesystem next to file data and
// MUST NOT change: records written by older firmware are read back
// through the same offsets.

// ---- ATTRIBUTE TYPES ----

const (
	AttrDataID  uint8 = 0 // data identifier (encryption + default authorization)
	AttrDate    uint8 = 1 // creation date, dd-mm-yyyy
	AttrTime    uint8 = 2 // creation time, HH:MM:SS
	AttrGroup   uint8 = 3 // flags byte, bits 0-1 owner group
	AttrAuth    uint8 = 4 // authorization, 2 bits per group
	AttrOwner   uint8 = 5 // owner name
	AttrCompany uint8 = 6 // owner company
)

// AttrCount is the number of persisted attributes.
const AttrCount = 7

// ---- FIELD CAPACITIES ----

const (
	DateLen    = 11
	TimeLen    = 9
	OwnerLen   = 32
	CompanyLen = 32
)

// ---- OFFSETS ----

const (
	offDataID  = 0
	offDate    = offDataID + 2
	offTime    = offDate + DateLen
	offFlags   = offTime + TimeLen
	offAuth    = offFlags + 1
	offOwner   = offAuth + 1
	offCompany = offOwner + OwnerLen

	attrBytes = offCompany + CompanyLen
)

// CacheSize is the per-file scratch buffer handed to the filesystem.
const CacheSize = 256

// AttrLayout is one row of the constant layout table.
type AttrLayout struct {
	Type   uint8
	Offset uint32
	Size   uint32
}

var layout = [AttrCount]AttrLayout{
	{Type: AttrDataID, Offset: offDataID, Size: 2},
	{Type: AttrDate, Offset: offDate, Size: DateLen},
	{Type: AttrTime, Offset: offTime, Size: TimeLen},
	{Type: AttrGroup, Offset: offFlags, Size: 1},
	{Type: AttrAuth, Offset: offAuth, Size: 1},
	{Type: AttrOwner, Offset: offOwner, Size: OwnerLen},
	{Type: AttrCompany, Offset: offCompany, Size: CompanyLen},
}

// Layout returns the constant (type, offset, size) table.
func Layout() [AttrCount]AttrLayout {
	return layout
}
