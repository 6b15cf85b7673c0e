// internal/lfsfile/file.go
package lfsfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrFieldTooLong = errors.New("lfsfile: field too long")

// Attr describes one persisted attribute.
// Buffer aliases the owning record, so whatever the filesystem reads into
// it is what the accessors return, and the other way round.
type Attr struct {
	Type   uint8
	Offset uint32
	Size   uint32
	Buffer []byte
}

// FileConfig is the per-file configuration handed to the filesystem:
// the attribute descriptors plus a scratch buffer.
type FileConfig struct {
	Attrs  []Attr
	Buffer []byte
}

// File is one pool slot. A *File is an exclusive handle, valid from
// Pool.Acquire to Pool.Release. Not safe for concurrent use.
type File struct {
	attrs [attrBytes]byte
	size  uint32

	// System attributes - not for application use.
	sys struct {
		pool      *Pool
		index     int
		allocated bool
		buffer    [CacheSize]byte
		descr     [AttrCount]Attr
		cfg       FileConfig
		file      any
	}
}

// reset zeroes the record and rebuilds its descriptor table.
func (f *File) reset() {
	pool, index := f.sys.pool, f.sys.index

	*f = File{}

	f.sys.pool, f.sys.index = pool, index
	for i, l := range layout {
		end := l.Offset + l.Size
		f.sys.descr[i] = Attr{
			Type:   l.Type,
			Offset: l.Offset,
			Size:   l.Size,
			Buffer: f.attrs[l.Offset:end:end],
		}
	}
	f.sys.cfg = FileConfig{
		Attrs:  f.sys.descr[:],
		Buffer: f.sys.buffer[:],
	}
}

// Index is the slot position inside the pool.
func (f *File) Index() int { return f.sys.index }

// ---- attribute accessors ----

func (f *File) DataID() uint16 {
	return binary.LittleEndian.Uint16(f.attrs[offDataID:])
}

func (f *File) SetDataID(id uint16) {
	binary.LittleEndian.PutUint16(f.attrs[offDataID:], id)
}

// Date is empty when unknown.
func (f *File) Date() string { return f.text(offDate, DateLen) }

func (f *File) SetDate(s string) error { return f.setText(offDate, DateLen, s) }

// Time is empty when unknown.
func (f *File) Time() string { return f.text(offTime, TimeLen) }

func (f *File) SetTime(s string) error { return f.setText(offTime, TimeLen, s) }

func (f *File) Flags() byte { return f.attrs[offFlags] }

func (f *File) Group() Group { return OwnerGroup(f.attrs[offFlags]) }

// SetGroup writes bits 0-1 of the flags byte; bits 2-7 stay zero.
func (f *File) SetGroup(g Group) {
	f.attrs[offFlags] = byte(g & 0x03)
}

func (f *File) Authorization() Authorization {
	return Authorization(f.attrs[offAuth])
}

func (f *File) SetAuthorization(a Authorization) {
	f.attrs[offAuth] = byte(a)
}

func (f *File) Owner() string { return f.text(offOwner, OwnerLen) }

func (f *File) SetOwner(s string) error { return f.setText(offOwner, OwnerLen, s) }

func (f *File) Company() string { return f.text(offCompany, CompanyLen) }

func (f *File) SetCompany(s string) error { return f.setText(offCompany, CompanyLen, s) }

// Hidden reports whether the owning group has neither read nor write.
func (f *File) Hidden() bool {
	return f.Authorization().For(f.Group()) == AccessNone
}

// Size is maintained by the filesystem.
func (f *File) Size() uint32 { return f.size }

// ---- filesystem side ----

// FileConfig returns the attribute configuration for the filesystem.
func (f *File) FileConfig() *FileConfig { return &f.sys.cfg }

// SetFile binds the filesystem's file object to this record.
func (f *File) SetFile(obj any) { f.sys.file = obj }

// File returns the bound filesystem file object, or nil.
func (f *File) File() any { return f.sys.file }

// SetSize records the size reported by the filesystem.
func (f *File) SetSize(n uint32) { f.size = n }

// ---- helpers ----

func (f *File) text(off, n int) string {
	b := f.attrs[off : off+n]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (f *File) setText(off, n int, s string) error {
	if len(s) > n {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrFieldTooLong, s, n)
	}
	dst := f.attrs[off : off+n]
	m := copy(dst, s)
	clear(dst[m:])
	return nil
}
