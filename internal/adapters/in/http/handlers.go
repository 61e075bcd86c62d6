package http

import (
	"context"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/ledger"
)

// Use case handlers consumed by Server.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	TransitionOrderHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) error
	}
	AdminCancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.AdminCancelOrderCommand) error
	}
	AdminReassignOrderHandler interface {
		Handle(ctx context.Context, cmd commands.AdminReassignOrderCommand) error
	}
	UpdateDriverLocationHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateDriverLocationCommand) error
	}
	AdjustWalletHandler interface {
		Handle(ctx context.Context, cmd commands.AdjustWalletCommand) (settlement.Result, error)
	}
	CreatePayoutHandler interface {
		Handle(ctx context.Context, cmd commands.CreatePayoutCommand) error
	}
	AdvancePayoutHandler interface {
		Handle(ctx context.Context, cmd commands.AdvancePayoutCommand) error
	}
	CompletePayoutHandler interface {
		Handle(ctx context.Context, cmd commands.CompletePayoutCommand) error
	}
	RejectPayoutHandler interface {
		Handle(ctx context.Context, cmd commands.RejectPayoutCommand) error
	}
	CreateTopupHandler interface {
		Handle(ctx context.Context, cmd commands.CreateTopupCommand) error
	}
	ApproveTopupHandler interface {
		Handle(ctx context.Context, cmd commands.ApproveTopupCommand) error
	}
	RejectTopupHandler interface {
		Handle(ctx context.Context, cmd commands.RejectTopupCommand) error
	}
	GetActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}
	GetWalletStatementHandler interface {
		Handle(ctx context.Context, query queries.GetWalletStatementQuery) (queries.GetWalletStatementQueryResponse, error)
	}
	ValidateLedgerHandler interface {
		Handle(ctx context.Context, query queries.ValidateLedgerQuery) (ledger.Report, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder          CreateOrderHandler
	TransitionOrder      TransitionOrderHandler
	AdminCancelOrder     AdminCancelOrderHandler
	AdminReassignOrder   AdminReassignOrderHandler
	UpdateDriverLocation UpdateDriverLocationHandler
	AdjustWallet         AdjustWalletHandler
	CreatePayout         CreatePayoutHandler
	AdvancePayout        AdvancePayoutHandler
	CompletePayout       CompletePayoutHandler
	RejectPayout         RejectPayoutHandler
	CreateTopup          CreateTopupHandler
	ApproveTopup         ApproveTopupHandler
	RejectTopup          RejectTopupHandler
	GetActiveOrders      GetActiveOrdersHandler
	GetWalletStatement   GetWalletStatementHandler
	ValidateLedger       ValidateLedgerHandler
}
