package reactions_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/reactions"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

func TestOrderNotifier_TellsClientAboutAcceptance(t *testing.T) {
	o := newMatching(t, 1000)
	change := advance(t, o, func(o *order.Order) error { return o.Accept(kernel.NewUUID(), fixedNow) })

	notifier := new(MockNotifier)
	notifier.On("Push", mock.Anything, o.OwnerID(),
		o.OwnerID().String()+"_"+o.ID().String()+"_order_accepted",
		mock.MatchedBy(func(msg ports.PushMessage) bool {
			return msg.Data["status"] == "accepted" && msg.Data["orderId"] == o.ID().String()
		}),
	).Return(nil).Once()

	n := reactions.NewOrderNotifier(notifier, discardLogger())

	require.NoError(t, n.Handle(t.Context(), change))
	assert.Equal(t, services.FailOpen, n.Policy())
	notifier.AssertExpectations(t)
}

func TestOrderNotifier_SilentOnCorrectiveEdge(t *testing.T) {
	driverID := kernel.NewUUID()
	o := newMatching(t, 1000)
	advance(t, o, func(o *order.Order) error { return o.Accept(driverID, fixedNow) })
	change := advance(t, o, func(o *order.Order) error { return o.RevertAcceptance(fixedNow) })

	notifier := new(MockNotifier)
	n := reactions.NewOrderNotifier(notifier, discardLogger())

	require.NoError(t, n.Handle(t.Context(), change))
	notifier.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderNotifier_ReturnsPushErrors(t *testing.T) {
	driverID := kernel.NewUUID()
	o := newMatching(t, 1000)
	advance(t, o, func(o *order.Order) error { return o.Accept(driverID, fixedNow) })
	change := advance(t, o, func(o *order.Order) error {
		return o.Cancel(order.CancelledByAdmin, "fraud", fixedNow)
	})
	pushErr := errors.New("unreachable")

	notifier := new(MockNotifier)
	notifier.On("Push", mock.Anything, o.OwnerID(), mock.Anything, mock.Anything).Return(pushErr).Once()
	notifier.On("Push", mock.Anything, driverID, mock.Anything, mock.Anything).Return(nil).Once()

	n := reactions.NewOrderNotifier(notifier, discardLogger())

	err := n.Handle(t.Context(), change)
	assert.ErrorIs(t, err, pushErr)
	notifier.AssertExpectations(t)
}
