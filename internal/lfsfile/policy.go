// internal/lfsfile/policy.go
package lfsfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SystemCompany is the reserved company name of SYS group files.
const SystemCompany = "Bondioli-Pavesi"

// Owner names assigned by the receiver for SYS group files.
const (
	SystemOwnerLocal  = "*Local"
	SystemOwnerServer = "*Server"
	systemOwnerCAN    = "*Can_"
)

// NotAvailable marks a date or time that was not known at creation.
const NotAvailable = "NA"

var ErrPolicy = errors.New("lfsfile: attribute policy violation")

// SystemOwnerCAN names another CAN node as owner.
func SystemOwnerCAN(node uint8) string {
	return fmt.Sprintf("%s%03d", systemOwnerCAN, node)
}

// Validate checks the attribute rules for the file's owner group.
// It performs declarative validation only and does not touch f.
func Validate(f *File) error {
	if d := f.Date(); d != "" && d != NotAvailable {
		if _, err := time.Parse("02-01-2006", d); err != nil {
			return fmt.Errorf("%w: date %q is not dd-mm-yyyy", ErrPolicy, d)
		}
	}
	if t := f.Time(); t != "" && t != NotAvailable {
		if _, err := time.Parse("15:04:05", t); err != nil {
			return fmt.Errorf("%w: time %q is not HH:MM:SS", ErrPolicy, t)
		}
	}

	if f.Flags()&^0x03 != 0 {
		return fmt.Errorf("%w: flags bits 2-7 must be zero (0x%02X)", ErrPolicy, f.Flags())
	}

	g := f.Group()
	owner := f.Owner()
	company := f.Company()

	switch g {
	case GroupUser:
		if strings.Contains(owner, "*") {
			return fmt.Errorf("%w: %s owner must not contain '*'", ErrPolicy, g)
		}

	case GroupManufacturer, GroupPartner:
		if owner == "" {
			return fmt.Errorf("%w: %s owner is mandatory", ErrPolicy, g)
		}
		if strings.Contains(owner, "*") {
			return fmt.Errorf("%w: %s owner must not contain '*'", ErrPolicy, g)
		}
		if company == "" {
			return fmt.Errorf("%w: %s company is mandatory", ErrPolicy, g)
		}

	case GroupSystem:
		if !validSystemOwner(owner) {
			return fmt.Errorf("%w: SYS owner %q must be %s, %s or %sNNN",
				ErrPolicy, owner, SystemOwnerLocal, SystemOwnerServer, systemOwnerCAN)
		}
		if company != SystemCompany {
			return fmt.Errorf("%w: SYS company must be %q", ErrPolicy, SystemCompany)
		}
	}

	return nil
}

func validSystemOwner(owner string) bool {
	switch owner {
	case SystemOwnerLocal, SystemOwnerServer:
		return true
	}
	node, ok := strings.CutPrefix(owner, systemOwnerCAN)
	if !ok || node == "" {
		return false
	}
	n, err := strconv.ParseUint(node, 10, 8)
	return err == nil && n <= 255
}
