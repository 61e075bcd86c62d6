// Package auditrepo stores admin actions and security alerts.
package auditrepo

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/domain/model/audit"
)

type AdminActionDTO struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Kind             string            `gorm:"size:32;not null;index:idx_admin_actions_order,priority:2"`
	PerformedBy      uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderID          *uuid.UUID        `gorm:"type:uuid;index:idx_admin_actions_order,priority:1"`
	DriverID         *uuid.UUID        `gorm:"type:uuid"`
	PreviousDriverID *uuid.UUID        `gorm:"type:uuid"`
	PayoutID         *uuid.UUID        `gorm:"type:uuid"`
	TopupID          *uuid.UUID        `gorm:"type:uuid"`
	WalletID         string            `gorm:"size:64"`
	Note             string            `gorm:"size:500"`
	Details          map[string]string `gorm:"serializer:json;type:jsonb"`
	PerformedAt      time.Time         `gorm:"not null;index:idx_admin_actions_order,priority:3"`
}

func (AdminActionDTO) TableName() string {
	return "admin_actions"
}

type SecurityAlertDTO struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Kind              string            `gorm:"size:48;not null;index"`
	Severity          string            `gorm:"size:16;not null"`
	OrderID           *uuid.UUID        `gorm:"type:uuid;index:idx_security_alerts_order,priority:1"`
	AttemptedDriverID *uuid.UUID        `gorm:"type:uuid"`
	RestoredDriverID  *uuid.UUID        `gorm:"type:uuid"`
	WalletID          string            `gorm:"size:64"`
	Message           string            `gorm:"size:500;not null"`
	Details           map[string]string `gorm:"serializer:json;type:jsonb"`
	CreatedAt         time.Time         `gorm:"not null;index:idx_security_alerts_order,priority:2"`
}

func (SecurityAlertDTO) TableName() string {
	return "security_alerts"
}

func actionFromDomain(a audit.AdminAction) AdminActionDTO {
	return AdminActionDTO{
		ID:               a.ID.Bytes(),
		Kind:             string(a.Kind),
		PerformedBy:      a.PerformedBy.Bytes(),
		OrderID:          pgconv.UUIDPtr(a.Target.OrderID),
		DriverID:         pgconv.UUIDPtr(a.Target.DriverID),
		PreviousDriverID: pgconv.UUIDPtr(a.Target.PreviousDriverID),
		PayoutID:         pgconv.UUIDPtr(a.Target.PayoutID),
		TopupID:          pgconv.UUIDPtr(a.Target.TopupID),
		WalletID:         a.Target.WalletID,
		Note:             a.Note,
		Details:          a.Details,
		PerformedAt:      a.PerformedAt,
	}
}

func actionToDomain(dto AdminActionDTO) (audit.AdminAction, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	by, byErr := pgconv.ToUUID(dto.PerformedBy)
	orderID, orderErr := pgconv.ToUUIDPtr(dto.OrderID)
	driverID, driverErr := pgconv.ToUUIDPtr(dto.DriverID)
	prevID, prevErr := pgconv.ToUUIDPtr(dto.PreviousDriverID)
	payoutID, payoutErr := pgconv.ToUUIDPtr(dto.PayoutID)
	topupID, topupErr := pgconv.ToUUIDPtr(dto.TopupID)
	if err := errors.Join(idErr, byErr, orderErr, driverErr, prevErr, payoutErr, topupErr); err != nil {
		return audit.AdminAction{}, err
	}
	return audit.AdminAction{
		ID:          id,
		Kind:        audit.ActionKind(dto.Kind),
		PerformedBy: by,
		Target: audit.Target{
			OrderID:          orderID,
			DriverID:         driverID,
			PreviousDriverID: prevID,
			PayoutID:         payoutID,
			TopupID:          topupID,
			WalletID:         dto.WalletID,
		},
		Note:        dto.Note,
		Details:     dto.Details,
		PerformedAt: dto.PerformedAt.UTC(),
	}, nil
}

func alertFromDomain(a audit.SecurityAlert) SecurityAlertDTO {
	return SecurityAlertDTO{
		ID:                a.ID.Bytes(),
		Kind:              string(a.Kind),
		Severity:          string(a.Severity),
		OrderID:           pgconv.UUIDPtr(a.OrderID),
		AttemptedDriverID: pgconv.UUIDPtr(a.AttemptedDriverID),
		RestoredDriverID:  pgconv.UUIDPtr(a.RestoredDriverID),
		WalletID:          a.WalletID,
		Message:           a.Message,
		Details:           a.Details,
		CreatedAt:         a.CreatedAt,
	}
}

func alertToDomain(dto SecurityAlertDTO) (audit.SecurityAlert, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	orderID, orderErr := pgconv.ToUUIDPtr(dto.OrderID)
	attempted, attemptedErr := pgconv.ToUUIDPtr(dto.AttemptedDriverID)
	restored, restoredErr := pgconv.ToUUIDPtr(dto.RestoredDriverID)
	if err := errors.Join(idErr, orderErr, attemptedErr, restoredErr); err != nil {
		return audit.SecurityAlert{}, err
	}
	return audit.SecurityAlert{
		ID:                id,
		Kind:              audit.AlertKind(dto.Kind),
		Severity:          audit.Severity(dto.Severity),
		OrderID:           orderID,
		AttemptedDriverID: attempted,
		RestoredDriverID:  restored,
		WalletID:          dto.WalletID,
		Message:           dto.Message,
		Details:           dto.Details,
		CreatedAt:         dto.CreatedAt.UTC(),
	}, nil
}
