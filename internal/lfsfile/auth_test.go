// internal/lfsfile/auth_test.go
package lfsfile

import (
	"errors"
	"testing"
)

func TestAuthorization_DecodeF4(t *testing.T) {
	a := Authorization(0xF4)

	want := map[Group]Access{
		GroupUser:         AccessNone,
		GroupManufacturer: AccessRead,
		GroupPartner:      AccessRead | AccessWrite,
		GroupSystem:       AccessRead | AccessWrite,
	}
	for g, acc := range want {
		if got := a.For(g); got != acc {
			t.Fatalf("%s: got %02b want %02b", g, got, acc)
		}
	}

	if a.String() != "wrwr-r--" {
		t.Fatalf("String()=%q", a.String())
	}

	// round trip through the encode helper
	var b Authorization
	for g, acc := range want {
		b = b.With(g, acc)
	}
	if b != a {
		t.Fatalf("re-encoded 0x%02X, want 0x%02X", uint8(b), uint8(a))
	}
}

func TestAuthorization_WithReplacesOnlyOnePair(t *testing.T) {
	a := Authorization(0xFF).With(GroupManufacturer, AccessNone)
	if a != 0xF3 {
		t.Fatalf("got 0x%02X", uint8(a))
	}
	a = a.With(GroupManufacturer, AccessWrite)
	if a.For(GroupManufacturer) != AccessWrite || a.For(GroupUser) != 0x03 {
		t.Fatalf("got 0x%02X", uint8(a))
	}
}

func TestOwnerGroup_IgnoresUpperBits(t *testing.T) {
	if OwnerGroup(0xFE) != GroupPartner {
		t.Fatalf("OwnerGroup(0xFE)=%v", OwnerGroup(0xFE))
	}
}

func TestHidden_OwnerWithoutAccess(t *testing.T) {
	p := NewPool()
	f, _ := p.Acquire()

	f.SetAuthorization(0xF4)

	f.SetGroup(GroupUser)
	if !f.Hidden() {
		t.Fatalf("USER file with USER=-- should be hidden")
	}
	f.SetGroup(GroupManufacturer)
	if f.Hidden() {
		t.Fatalf("MNF file with MNF=-r should be visible")
	}
}

func TestValidate_Policy(t *testing.T) {
	type attrs struct {
		group   Group
		owner   string
		company string
		date    string
		time    string
	}

	cases := []struct {
		name string
		in   attrs
		ok   bool
	}{
		{"user anonymous", attrs{group: GroupUser}, true},
		{"user star", attrs{group: GroupUser, owner: "*me"}, false},
		{"mnf complete", attrs{group: GroupManufacturer, owner: "lic", company: "OEM"}, true},
		{"mnf no owner", attrs{group: GroupManufacturer, company: "OEM"}, false},
		{"bp no company", attrs{group: GroupPartner, owner: "eng"}, false},
		{"bp star", attrs{group: GroupPartner, owner: "*eng", company: "x"}, false},
		{"sys local", attrs{group: GroupSystem, owner: SystemOwnerLocal, company: SystemCompany}, true},
		{"sys server", attrs{group: GroupSystem, owner: SystemOwnerServer, company: SystemCompany}, true},
		{"sys can", attrs{group: GroupSystem, owner: SystemOwnerCAN(17), company: SystemCompany}, true},
		{"sys can bad", attrs{group: GroupSystem, owner: "*Can_x", company: SystemCompany}, false},
		{"sys wrong company", attrs{group: GroupSystem, owner: SystemOwnerLocal, company: "Other"}, false},
		{"date ok", attrs{group: GroupUser, date: "29-11-2024", time: "08:15:00"}, true},
		{"date na", attrs{group: GroupUser, date: NotAvailable, time: NotAvailable}, true},
		{"date bad", attrs{group: GroupUser, date: "2024-11-29"}, false},
		{"time bad", attrs{group: GroupUser, time: "8h15"}, false},
	}

	p := NewPool()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, ok := p.Acquire()
			if !ok {
				t.Fatalf("pool exhausted")
			}
			defer p.Release(f)

			f.SetGroup(tc.in.group)
			if err := f.SetOwner(tc.in.owner); err != nil {
				t.Fatalf("SetOwner() err=%v", err)
			}
			if err := f.SetCompany(tc.in.company); err != nil {
				t.Fatalf("SetCompany() err=%v", err)
			}
			if err := f.SetDate(tc.in.date); err != nil {
				t.Fatalf("SetDate() err=%v", err)
			}
			if err := f.SetTime(tc.in.time); err != nil {
				t.Fatalf("SetTime() err=%v", err)
			}

			err := Validate(f)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrPolicy) {
				t.Fatalf("expected ErrPolicy, got %v", err)
			}
		})
	}
}
