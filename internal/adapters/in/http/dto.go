package http

import (
	"time"

	"dispatch/internal/core/application/usecases/queries"
)

// Request bodies. Tags are checked by the echo validator after binding.
type (
	CreateOrderRequest struct {
		ID    string `json:"id" validate:"omitempty,uuid"`
		Price int64  `json:"price" validate:"required,gt=0"`
	}

	TransitionOrderRequest struct {
		Action string `json:"action" validate:"required,oneof=accept start complete cancel_by_client cancel_by_driver"`
		Reason string `json:"reason" validate:"max=500"`
	}

	CancelOrderRequest struct {
		Reason string `json:"reason" validate:"required,max=500"`
	}

	ReassignOrderRequest struct {
		DriverID string `json:"driverId" validate:"required,uuid"`
		Note     string `json:"note" validate:"max=500"`
	}

	UpdateLocationRequest struct {
		Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
		Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
	}

	AdjustWalletRequest struct {
		Amount    int64  `json:"amount" validate:"required"`
		Reference string `json:"reference" validate:"required,max=100"`
		Reason    string `json:"reason" validate:"required,max=500"`
	}

	CreatePayoutRequest struct {
		ID            string            `json:"id" validate:"omitempty,uuid"`
		DriverID      string            `json:"driverId" validate:"required,uuid"`
		Amount        int64             `json:"amount" validate:"required,gt=0"`
		Method        string            `json:"method" validate:"required"`
		RecipientInfo map[string]string `json:"recipientInfo"`
		Note          string            `json:"note" validate:"max=500"`
	}

	AdvancePayoutRequest struct {
		Status string `json:"status" validate:"required,oneof=approved processing"`
		Note   string `json:"note" validate:"max=500"`
	}

	NoteRequest struct {
		Note string `json:"note" validate:"max=500"`
	}

	ReasonRequest struct {
		Reason string `json:"reason" validate:"max=500"`
	}

	CreateTopupRequest struct {
		ID     string `json:"id" validate:"omitempty,uuid"`
		Amount int64  `json:"amount" validate:"required,gt=0"`
	}
)

// Response bodies.
type (
	CreatedResponse struct {
		ID string `json:"id"`
	}

	WalletMovementResponse struct {
		EntryID        string `json:"entryId"`
		BalanceBefore  int64  `json:"balanceBefore"`
		BalanceAfter   int64  `json:"balanceAfter"`
		AlreadyApplied bool   `json:"alreadyApplied"`
	}

	ActiveOrderResponse struct {
		ID        string    `json:"id"`
		OwnerID   string    `json:"ownerId"`
		Price     int64     `json:"price"`
		Status    string    `json:"status"`
		DriverID  *string   `json:"driverId,omitempty"`
		Locked    bool      `json:"locked"`
		CreatedAt time.Time `json:"createdAt"`
	}

	StatementLineResponse struct {
		Seq            int64     `json:"seq"`
		Type           string    `json:"type"`
		Amount         int64     `json:"amount"`
		BalanceAfter   int64     `json:"balanceAfter"`
		IdempotencyKey string    `json:"idempotencyKey"`
		OrderID        *string   `json:"orderId,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	WalletStatementResponse struct {
		WalletID      string                  `json:"walletId"`
		Balance       int64                   `json:"balance"`
		PendingPayout int64                   `json:"pendingPayout"`
		Available     int64                   `json:"available"`
		Currency      string                  `json:"currency"`
		Lines         []StatementLineResponse `json:"lines"`
	}
)

func toActiveOrders(rows []queries.GetActiveOrdersQueryResponse) []ActiveOrderResponse {
	out := make([]ActiveOrderResponse, len(rows))
	for i, row := range rows {
		out[i] = ActiveOrderResponse{
			ID:        row.ID.String(),
			OwnerID:   row.OwnerID.String(),
			Price:     row.Price,
			Status:    row.Status.String(),
			Locked:    row.Locked,
			CreatedAt: row.CreatedAt,
		}
		if row.DriverID != nil {
			s := row.DriverID.String()
			out[i].DriverID = &s
		}
	}
	return out
}

func toStatement(resp queries.GetWalletStatementQueryResponse) WalletStatementResponse {
	lines := make([]StatementLineResponse, len(resp.Lines))
	for i, l := range resp.Lines {
		lines[i] = StatementLineResponse{
			Seq:            l.Seq,
			Type:           l.Type,
			Amount:         l.Amount,
			BalanceAfter:   l.BalanceAfter,
			IdempotencyKey: l.IdempotencyKey,
			CreatedAt:      l.CreatedAt,
		}
		if l.OrderID != nil {
			s := l.OrderID.String()
			lines[i].OrderID = &s
		}
	}
	return WalletStatementResponse{
		WalletID:      resp.WalletID.String(),
		Balance:       resp.Balance,
		PendingPayout: resp.PendingPayout,
		Available:     resp.Available,
		Currency:      resp.Currency,
		Lines:         lines,
	}
}
