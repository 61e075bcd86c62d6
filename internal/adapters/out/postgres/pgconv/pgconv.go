// Package pgconv maps kernel identifiers to and from their column types.
package pgconv

import (
	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
)

func UUIDPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func ToUUID(raw uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(raw[:])
}

func ToUUIDPtr(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent column
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
