package wallet

import (
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// PlatformID identifies the platform's own wallet.
const PlatformID ID = "platform_main"

// Currency of every wallet.
const Currency = "MRU"

// ID is the wallet identifier: the owning driver's id, or PlatformID.
type ID string

// DriverWalletID returns the wallet id of a driver.
func DriverWalletID(driverID kernel.UUID) ID {
	return ID(driverID.String())
}

// ParseID accepts PlatformID or a driver UUID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if ID(s) == PlatformID {
		return PlatformID, nil
	}
	driverID, err := kernel.UUIDFromString(s)
	if err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("walletId", err)
	}
	return DriverWalletID(driverID), nil
}

// IsPlatform reports whether id is the platform wallet.
func (id ID) IsPlatform() bool {
	return id == PlatformID
}

// OwnerID returns the driver owning the wallet. The platform wallet has no owner.
func (id ID) OwnerID() (kernel.UUID, bool) {
	if id.IsPlatform() {
		return kernel.UUID{}, false
	}
	owner, err := kernel.UUIDFromString(string(id))
	if err != nil {
		return kernel.UUID{}, false
	}
	return owner, true
}

// Validate rejects empty and malformed ids.
func (id ID) Validate() error {
	if id == "" {
		return errs.NewValueIsRequiredError("walletId")
	}
	_, err := ParseID(string(id))
	return err
}

func (id ID) String() string {
	return string(id)
}
