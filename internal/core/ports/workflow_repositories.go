package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/core/domain/model/topup"
)

type PayoutRepository interface {
	Add(ctx context.Context, p *payout.Payout) error
	Update(ctx context.Context, p *payout.Payout) error
	Get(ctx context.Context, id kernel.UUID) (*payout.Payout, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*payout.Payout, error)
}

type TopupRepository interface {
	Add(ctx context.Context, r *topup.Request) error
	Update(ctx context.Context, r *topup.Request) error
	Get(ctx context.Context, id kernel.UUID) (*topup.Request, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*topup.Request, error)
}

// AuditRepository stores admin actions and security alerts.
type AuditRepository interface {
	AddAdminAction(ctx context.Context, action audit.AdminAction) error

	// ListReassignments returns reassignment actions on orderID performed at or after since.
	ListReassignments(ctx context.Context, orderID kernel.UUID, since time.Time) ([]audit.AdminAction, error)

	AddSecurityAlert(ctx context.Context, alert audit.SecurityAlert) error

	// ListSecurityAlerts returns alerts about orderID raised at or after since.
	ListSecurityAlerts(ctx context.Context, orderID kernel.UUID, since time.Time) ([]audit.SecurityAlert, error)
}

// LocationRepository stores the last known position of each driver.
type LocationRepository interface {
	Upsert(ctx context.Context, driverID kernel.UUID, lat, lng float64, at time.Time) error

	// DeleteStale removes up to limit positions older than cutoff and reports how many went.
	DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
