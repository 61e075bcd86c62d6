package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
)

// Server maps HTTP requests onto use cases. Authorization is left to the use cases, so
// an anonymous or non-admin caller gets the same answer over HTTP as anywhere else.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{h: handlers, logger: logger.With("component", "http")}
}

func (s *Server) fail(c echo.Context, err error) error {
	return writeError(c, s.logger, err)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	id, err := optionalID(req.ID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(actorFrom(c), id, req.Price)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// TransitionOrder handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err)
	}
	var req TransitionOrderRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(actorFrom(c), orderID, commands.OrderAction(req.Action), req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.TransitionOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetActiveOrders handles GET /api/v1/admin/orders/active.
func (s *Server) GetActiveOrders(c echo.Context) error {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &limit); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("limit", err))
	}

	query, err := queries.NewGetActiveOrdersQuery(actorFrom(c), limit)
	if err != nil {
		return s.fail(c, err)
	}
	rows, err := s.h.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toActiveOrders(rows))
}

// UpdateLocation handles PUT /api/v1/drivers/me/location.
func (s *Server) UpdateLocation(c echo.Context) error {
	var req UpdateLocationRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(actorFrom(c), req.Lat, req.Lng)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.UpdateDriverLocation.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetWalletStatement handles GET /api/v1/wallets/{walletId}.
func (s *Server) GetWalletStatement(c echo.Context) error {
	walletID, err := pathWalletID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var lines int
	if err = runtime.BindQueryParameter("form", true, false, "lines", c.QueryParams(), &lines); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("lines", err))
	}

	query, err := queries.NewGetWalletStatementQuery(actorFrom(c), walletID, lines)
	if err != nil {
		return s.fail(c, err)
	}
	resp, err := s.h.GetWalletStatement.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toStatement(resp))
}

// CreateTopup handles POST /api/v1/topups.
func (s *Server) CreateTopup(c echo.Context) error {
	var req CreateTopupRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	id, err := optionalID(req.ID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateTopupCommand(actorFrom(c), id, req.Amount)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CreateTopup.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// CancelOrder handles POST /api/v1/admin/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err)
	}
	var req CancelOrderRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAdminCancelOrderCommand(actorFrom(c), orderID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.AdminCancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReassignOrder handles POST /api/v1/admin/orders/{orderId}/reassign.
func (s *Server) ReassignOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err)
	}
	var req ReassignOrderRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	driverID, err := parseUUID("driverId", req.DriverID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAdminReassignOrderCommand(actorFrom(c), orderID, driverID, req.Note)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.AdminReassignOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustWallet handles POST /api/v1/admin/wallets/{walletId}/adjustments.
func (s *Server) AdjustWallet(c echo.Context) error {
	walletID, err := pathWalletID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req AdjustWalletRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAdjustWalletCommand(actorFrom(c), walletID, req.Amount, req.Reference, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	res, err := s.h.AdjustWallet.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, WalletMovementResponse{
		EntryID:        res.EntryID.String(),
		BalanceBefore:  res.BalanceBefore,
		BalanceAfter:   res.BalanceAfter,
		AlreadyApplied: res.AlreadyApplied,
	})
}

// ValidateLedger handles GET /api/v1/admin/wallets/{walletId}/ledger/validation.
func (s *Server) ValidateLedger(c echo.Context) error {
	walletID, err := pathWalletID(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewValidateLedgerQuery(actorFrom(c), walletID)
	if err != nil {
		return s.fail(c, err)
	}
	report, err := s.h.ValidateLedger.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// CreatePayout handles POST /api/v1/admin/payouts.
func (s *Server) CreatePayout(c echo.Context) error {
	var req CreatePayoutRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	id, err := optionalID(req.ID)
	if err != nil {
		return s.fail(c, err)
	}
	driverID, err := parseUUID("driverId", req.DriverID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreatePayoutCommand(
		actorFrom(c), id, driverID, req.Amount, payout.Method(req.Method), req.RecipientInfo, req.Note,
	)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CreatePayout.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// AdvancePayout handles POST /api/v1/admin/payouts/{payoutId}/advance.
func (s *Server) AdvancePayout(c echo.Context) error {
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return s.fail(c, err)
	}
	var req AdvancePayoutRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}
	status, err := payout.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAdvancePayoutCommand(actorFrom(c), payoutID, status, req.Note)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.AdvancePayout.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CompletePayout handles POST /api/v1/admin/payouts/{payoutId}/complete.
func (s *Server) CompletePayout(c echo.Context) error {
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return s.fail(c, err)
	}
	var req NoteRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCompletePayoutCommand(actorFrom(c), payoutID, req.Note)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CompletePayout.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectPayout handles POST /api/v1/admin/payouts/{payoutId}/reject.
func (s *Server) RejectPayout(c echo.Context) error {
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return s.fail(c, err)
	}
	var req ReasonRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRejectPayoutCommand(actorFrom(c), payoutID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.RejectPayout.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ApproveTopup handles POST /api/v1/admin/topups/{requestId}/approve.
func (s *Server) ApproveTopup(c echo.Context) error {
	requestID, err := pathUUID(c, "requestId")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewApproveTopupCommand(actorFrom(c), requestID)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.ApproveTopup.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectTopup handles POST /api/v1/admin/topups/{requestId}/reject.
func (s *Server) RejectTopup(c echo.Context) error {
	requestID, err := pathUUID(c, "requestId")
	if err != nil {
		return s.fail(c, err)
	}
	var req ReasonRequest
	if err = bindBody(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRejectTopupCommand(actorFrom(c), requestID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.RejectTopup.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// pathUUID binds a simple-style path parameter the way generated servers do.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parseUUID(name, raw)
}

func pathWalletID(c echo.Context) (wallet.ID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "walletId", c.Param("walletId"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("walletId", err)
	}
	return wallet.ParseID(raw)
}

func parseUUID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// optionalID uses the client supplied id, or a fresh one when none was sent.
func optionalID(raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.NewUUID(), nil
	}
	return parseUUID("id", raw)
}
