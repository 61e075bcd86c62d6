package cmd

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/profilerepo"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/reactions"
	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
)

// Collaborators are the outbound adapters built in main from external connections.
type Collaborators struct {
	Alerts      ports.AlertPublisher
	Memo        ports.DeliveryMemo
	Push        ports.PushSender
	Changes     ports.ChangePublisher
	DeadLetters kafkain.DeadLetterWriter
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      ports.Clock
	logger     *slog.Logger
	accessor   settlement.WalletAccessor
	engine     settlement.FeeEngine
	policy     services.ExclusivityPolicy
	out        Collaborators
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, out Collaborators, logger *slog.Logger) (CompositionRoot, error) {
	schedule, err := cfg.FeeSchedule()
	if err != nil {
		return CompositionRoot{}, err
	}
	clock := ports.SystemClock{}
	accessor := settlement.NewWalletAccessor(clock)
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      clock,
		logger:     logger,
		accessor:   accessor,
		engine:     settlement.NewFeeEngine(accessor, schedule),
		policy:     services.NewExclusivityPolicy(cfg.Exclusivity.AdminWindow),
		out:        out,
	}, nil
}

// Orders

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateAdminCancelOrderCommandHandler() commands.AdminCancelOrderCommandHandler {
	return commands.NewAdminCancelOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateAdminReassignOrderCommandHandler() commands.AdminReassignOrderCommandHandler {
	return commands.NewAdminReassignOrderCommandHandler(c.orderUoWFactory(), c.profiles(), c.clock)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.locationUoWFactory(), c.clock)
}

// Wallets, payouts and top-ups

func (c *CompositionRoot) CreateAdjustWalletCommandHandler() commands.AdjustWalletCommandHandler {
	var f commands.WalletUoWFactory = FuncWalletUoWFactory(func() commands.WalletUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdjustWalletCommandHandler(f, c.accessor, c.clock)
}

func (c *CompositionRoot) CreateCreatePayoutCommandHandler() commands.CreatePayoutCommandHandler {
	return commands.NewCreatePayoutCommandHandler(c.payoutUoWFactory(), c.accessor, c.clock)
}

func (c *CompositionRoot) CreateAdvancePayoutCommandHandler() commands.AdvancePayoutCommandHandler {
	return commands.NewAdvancePayoutCommandHandler(c.payoutUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCompletePayoutCommandHandler() commands.CompletePayoutCommandHandler {
	return commands.NewCompletePayoutCommandHandler(c.payoutUoWFactory(), c.accessor, c.clock)
}

func (c *CompositionRoot) CreateRejectPayoutCommandHandler() commands.RejectPayoutCommandHandler {
	return commands.NewRejectPayoutCommandHandler(c.payoutUoWFactory(), c.accessor, c.clock)
}

func (c *CompositionRoot) CreateCreateTopupCommandHandler() commands.CreateTopupCommandHandler {
	return commands.NewCreateTopupCommandHandler(c.topupUoWFactory(), c.profiles(), c.clock)
}

func (c *CompositionRoot) CreateApproveTopupCommandHandler() commands.ApproveTopupCommandHandler {
	return commands.NewApproveTopupCommandHandler(c.topupUoWFactory(), c.accessor, c.clock)
}

func (c *CompositionRoot) CreateRejectTopupCommandHandler() commands.RejectTopupCommandHandler {
	return commands.NewRejectTopupCommandHandler(c.topupUoWFactory(), c.clock)
}

// Sweeps

func (c *CompositionRoot) CreateExpireStaleOrdersCommandHandler() commands.ExpireStaleOrdersCommandHandler {
	return commands.NewExpireStaleOrdersCommandHandler(c.orderUoWFactory(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateCleanStaleDriverLocationsCommandHandler() commands.CleanStaleDriverLocationsCommandHandler {
	return commands.NewCleanStaleDriverLocationsCommandHandler(c.locationUoWFactory(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateRelayOrderChangesCommandHandler() commands.RelayOrderChangesCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRelayOrderChangesCommandHandler(f, c.out.Changes, c.clock)
}

// Queries

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWalletStatementQueryHandler() queries.GetWalletStatementQueryHandler {
	return queries.NewGetWalletStatementQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateValidateLedgerQueryHandler() queries.ValidateLedgerQueryHandler {
	return queries.NewValidateLedgerQueryHandler(c.ledgerReaderFactory())
}

func (c *CompositionRoot) CreateValidateAllLedgersQueryHandler() queries.ValidateAllLedgersQueryHandler {
	return queries.NewValidateAllLedgersQueryHandler(c.ledgerReaderFactory(), c.out.Alerts, c.clock, c.logger)
}

// Change reactions

// CreateDispatcher registers the reactions to committed order changes. Money guards
// run before the notifier so a blocked trip is not announced.
func (c *CompositionRoot) CreateDispatcher() *events.Dispatcher {
	pusher := reactions.NewPusher(
		c.profiles(),
		profilerepo.NewGormNotificationLog(c.gormDB),
		c.out.Push,
		c.clock,
		c.logger,
	)
	return events.NewDispatcher(c.out.Memo, c.logger,
		reactions.NewExclusivityGuard(c.uowFactory, c.policy, c.out.Alerts, c.clock, c.logger),
		reactions.NewWalletBalanceGuard(c.uowFactory, pusher, c.clock, c.logger),
		reactions.NewTripStartFeeHandler(c.uowFactory, c.engine, pusher, c.out.Alerts, c.clock, c.logger),
		reactions.NewSettlementHandler(c.uowFactory, c.engine, c.clock, c.logger),
		reactions.NewOrderNotifier(pusher, c.logger),
	)
}

func (c *CompositionRoot) CreateChangeHandler() *kafkain.ChangeHandler {
	return kafkain.NewChangeHandler(
		c.CreateDispatcher(),
		c.out.DeadLetters,
		c.out.Alerts,
		c.clock,
		kafkain.DefaultRetryPolicy(),
		c.logger,
	)
}

// Inbound surfaces

func (c *CompositionRoot) CreateHTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateOrder:          ptr(c.CreateCreateOrderCommandHandler()),
		TransitionOrder:      ptr(c.CreateTransitionOrderCommandHandler()),
		AdminCancelOrder:     ptr(c.CreateAdminCancelOrderCommandHandler()),
		AdminReassignOrder:   ptr(c.CreateAdminReassignOrderCommandHandler()),
		UpdateDriverLocation: ptr(c.CreateUpdateDriverLocationCommandHandler()),
		AdjustWallet:         ptr(c.CreateAdjustWalletCommandHandler()),
		CreatePayout:         ptr(c.CreateCreatePayoutCommandHandler()),
		AdvancePayout:        ptr(c.CreateAdvancePayoutCommandHandler()),
		CompletePayout:       ptr(c.CreateCompletePayoutCommandHandler()),
		RejectPayout:         ptr(c.CreateRejectPayoutCommandHandler()),
		CreateTopup:          ptr(c.CreateCreateTopupCommandHandler()),
		ApproveTopup:         ptr(c.CreateApproveTopupCommandHandler()),
		RejectTopup:          ptr(c.CreateRejectTopupCommandHandler()),
		GetActiveOrders:      c.CreateGetActiveOrdersQueryHandler(),
		GetWalletStatement:   c.CreateGetWalletStatementQueryHandler(),
		ValidateLedger:       c.CreateValidateLedgerQueryHandler(),
	}
}

func (c *CompositionRoot) CreateAuthenticator() *httpin.Authenticator {
	return httpin.NewAuthenticator(c.cfg.Security.JWTSecret, c.cfg.Security.Issuer)
}

// Jobs are the scheduled sweeps. Relay is kept apart so the outbox listener can
// trigger it between ticks.
type Jobs struct {
	Manager *jobs.JobManager
	Relay   *jobs.OutboxRelayJob
}

func (c *CompositionRoot) CreateJobs() (Jobs, error) {
	sweeps := c.cfg.Sweeps
	expire := c.CreateExpireStaleOrdersCommandHandler()
	clean := c.CreateCleanStaleDriverLocationsCommandHandler()
	relay := c.CreateRelayOrderChangesCommandHandler()

	relayCmd, err := commands.NewRelayOrderChangesCommand(commands.DefaultRelayBatchSize)
	if err != nil {
		return Jobs{}, fmt.Errorf("relay job: %w", err)
	}
	expireCmd, err := commands.NewExpireStaleOrdersCommand(c.cfg.Order.MatchTimeout, commands.DefaultSweepBatchSize)
	if err != nil {
		return Jobs{}, fmt.Errorf("expire job: %w", err)
	}
	cleanCmd, err := commands.NewCleanStaleDriverLocationsCommand(c.cfg.Order.LocationMaxAge, commands.DefaultSweepBatchSize)
	if err != nil {
		return Jobs{}, fmt.Errorf("location cleanup job: %w", err)
	}

	relayJob := jobs.NewOutboxRelayJob(
		&relay,
		relayCmd,
		jobs.Schedule{Interval: sweeps.RelayChanges, Timeout: sweeps.RunTimeout},
		c.logger,
	)
	manager := jobs.NewJobManager(
		jobs.NewStaleOrderExpirationJob(
			&expire,
			expireCmd,
			jobs.Schedule{Interval: sweeps.ExpireOrders, Timeout: sweeps.RunTimeout},
			c.logger,
		),
		jobs.NewDriverLocationCleanupJob(
			&clean,
			cleanCmd,
			jobs.Schedule{Interval: sweeps.CleanLocations, Timeout: sweeps.RunTimeout},
			c.logger,
		),
		relayJob,
		jobs.NewLedgerAuditJob(
			c.CreateValidateAllLedgersQueryHandler(),
			jobs.Schedule{Interval: sweeps.LedgerAudit, Timeout: sweeps.RunTimeout},
			c.logger,
		),
		c.logger,
	)
	return Jobs{Manager: manager, Relay: relayJob}, nil
}

func (c *CompositionRoot) profiles() *profilerepo.GormProfileRepository {
	return profilerepo.NewGormProfileRepository(c.gormDB)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) payoutUoWFactory() commands.PayoutUoWFactory {
	return FuncPayoutUoWFactory(func() commands.PayoutUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) topupUoWFactory() commands.TopupUoWFactory {
	return FuncTopupUoWFactory(func() commands.TopupUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) locationUoWFactory() commands.LocationUoWFactory {
	return FuncLocationUoWFactory(func() commands.LocationUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) ledgerReaderFactory() queries.LedgerReaderFactory {
	return FuncLedgerReaderFactory(func() queries.LedgerReader {
		return c.uowFactory.Create()
	})
}

func ptr[T any](v T) *T { return &v }

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncWalletUoWFactory func() commands.WalletUoW

func (f FuncWalletUoWFactory) Create() commands.WalletUoW {
	return f()
}

type FuncPayoutUoWFactory func() commands.PayoutUoW

func (f FuncPayoutUoWFactory) Create() commands.PayoutUoW {
	return f()
}

type FuncTopupUoWFactory func() commands.TopupUoW

func (f FuncTopupUoWFactory) Create() commands.TopupUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

type FuncLocationUoWFactory func() commands.LocationUoW

func (f FuncLocationUoWFactory) Create() commands.LocationUoW {
	return f()
}

type FuncLedgerReaderFactory func() queries.LedgerReader

func (f FuncLedgerReaderFactory) Create() queries.LedgerReader {
	return f()
}
