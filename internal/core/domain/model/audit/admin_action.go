package audit

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ActionKind names an administrative mutation.
type ActionKind string

const (
	ActionCancelOrder        ActionKind = "cancelOrder"
	ActionReassignOrder      ActionKind = "reassignOrder"
	ActionAdjustWallet       ActionKind = "adjustWallet"
	ActionCreatePayout       ActionKind = "createPayout"
	ActionUpdatePayoutStatus ActionKind = "updatePayoutStatus"
	ActionCompletePayout     ActionKind = "completePayout"
	ActionRejectPayout       ActionKind = "rejectPayout"
	ActionApproveTopup       ActionKind = "approveTopup"
	ActionRejectTopup        ActionKind = "rejectTopup"
)

func (k ActionKind) Validate() error {
	switch k {
	case ActionCancelOrder, ActionReassignOrder, ActionAdjustWallet, ActionCreatePayout, ActionUpdatePayoutStatus,
		ActionCompletePayout, ActionRejectPayout, ActionApproveTopup, ActionRejectTopup:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not an admin action", string(k)))
	}
}

// Target lists the records an action touched. Unused fields stay nil.
type Target struct {
	OrderID          *kernel.UUID
	DriverID         *kernel.UUID
	PreviousDriverID *kernel.UUID
	PayoutID         *kernel.UUID
	TopupID          *kernel.UUID
	WalletID         string
}

// AdminAction is one audit row.
type AdminAction struct {
	ID          kernel.UUID
	Kind        ActionKind
	PerformedBy kernel.UUID
	Target      Target
	Note        string
	Details     map[string]string
	PerformedAt time.Time
}

// NewAdminAction validates and stamps a new audit row.
func NewAdminAction(kind ActionKind, performedBy kernel.UUID, target Target, note string, now time.Time) (AdminAction, error) {
	if err := errors.Join(kind.Validate(), performedBy.Validate()); err != nil {
		return AdminAction{}, err
	}
	return AdminAction{
		ID:          kernel.NewUUID(),
		Kind:        kind,
		PerformedBy: performedBy,
		Target:      target,
		Note:        note,
		PerformedAt: now,
	}, nil
}

// WithDetails returns a copy carrying extra key/value context.
func (a AdminAction) WithDetails(details map[string]string) AdminAction {
	a.Details = maps.Clone(details)
	return a
}

// Grant returns the driver change a reassignment action authorizes.
func (a AdminAction) Grant() (Grant, bool) {
	if a.Kind != ActionReassignOrder || a.Target.OrderID == nil || a.Target.DriverID == nil {
		return Grant{}, false
	}
	return Grant{OrderID: *a.Target.OrderID, DriverID: *a.Target.DriverID, At: a.PerformedAt}, true
}
