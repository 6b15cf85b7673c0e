// internal/lfsfile/auth.go
package lfsfile

// Group is the owner class stored in flags bits 0-1.
type Group uint8

const (
	GroupUser         Group = 0 // end customer, dealer, maintenance
	GroupManufacturer Group = 1 // vehicle manufacturer
	GroupPartner      Group = 2 // B&P engineering, production, testing
	GroupSystem       Group = 3 // self generated or another device
)

func (g Group) String() string {
	switch g {
	case GroupUser:
		return "USER"
	case GroupManufacturer:
		return "MNF"
	case GroupPartner:
		return "BP"
	case GroupSystem:
		return "SYS"
	default:
		return "INVALID"
	}
}

// OwnerGroup extracts the group from a flags byte.
func OwnerGroup(flags byte) Group {
	return Group(flags & 0x03)
}

// Access is one group's 2-bit permission pair.
type Access uint8

const (
	AccessNone  Access = 0
	AccessRead  Access = 1 << 0
	AccessWrite Access = 1 << 1
)

func (a Access) CanRead() bool  { return a&AccessRead != 0 }
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// Authorization packs 2 bits per group, USER in the low pair,
// then MNF, BP and SYS in the high pair.
type Authorization uint8

// For returns the permission pair of g.
func (a Authorization) For(g Group) Access {
	return Access(a>>(2*(g&0x03))) & 0x03
}

// With returns a copy with g's pair replaced by acc.
func (a Authorization) With(g Group, acc Access) Authorization {
	shift := 2 * (g & 0x03)
	a &^= 0x03 << shift
	return a | Authorization(acc&0x03)<<shift
}

// String renders SYS first, write before read: 0xF4 is "wrwr-r--".
func (a Authorization) String() string {
	out := make([]byte, 0, 8)
	for g := GroupSystem; ; g-- {
		acc := a.For(g)
		if acc.CanWrite() {
			out = append(out, 'w')
		} else {
			out = append(out, '-')
		}
		if acc.CanRead() {
			out = append(out, 'r')
		} else {
			out = append(out, '-')
		}
		if g == GroupUser {
			break
		}
	}
	return string(out)
}
