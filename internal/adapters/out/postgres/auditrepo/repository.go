package auditrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
)

// GormAuditRepository implements ports.AuditRepository using GORM. Rows are append-only.
type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) AddAdminAction(ctx context.Context, action audit.AdminAction) error {
	dto := actionFromDomain(action)
	return pgerr.Wrap(r.db.WithContext(ctx).Create(&dto).Error)
}

func (r *GormAuditRepository) ListReassignments(
	ctx context.Context,
	orderID kernel.UUID,
	since time.Time,
) ([]audit.AdminAction, error) {
	var dtos []AdminActionDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND kind = ? AND performed_at >= ?", orderID.Bytes(), string(audit.ActionReassignOrder), since).
		Order("performed_at").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Wrap(err)
	}

	actions := make([]audit.AdminAction, 0, len(dtos))
	for _, dto := range dtos {
		a, convErr := actionToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (r *GormAuditRepository) AddSecurityAlert(ctx context.Context, alert audit.SecurityAlert) error {
	dto := alertFromDomain(alert)
	return pgerr.Wrap(r.db.WithContext(ctx).Create(&dto).Error)
}

func (r *GormAuditRepository) ListSecurityAlerts(
	ctx context.Context,
	orderID kernel.UUID,
	since time.Time,
) ([]audit.SecurityAlert, error) {
	var dtos []SecurityAlertDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND created_at >= ?", orderID.Bytes(), since).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Wrap(err)
	}

	alerts := make([]audit.SecurityAlert, 0, len(dtos))
	for _, dto := range dtos {
		a, convErr := alertToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
