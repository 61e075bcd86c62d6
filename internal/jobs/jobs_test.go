package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
)

type relayMock struct{ mock.Mock }

func (m *relayMock) Handle(ctx context.Context, cmd commands.RelayOrderChangesCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type expirerMock struct{ mock.Mock }

func (m *expirerMock) Handle(ctx context.Context, cmd commands.ExpireStaleOrdersCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type auditorMock struct{ mock.Mock }

func (m *auditorMock) Handle(
	ctx context.Context,
	query queries.ValidateAllLedgersQuery,
) (queries.ValidateAllLedgersResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ValidateAllLedgersResponse), args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSchedule = Schedule{Interval: time.Minute, Timeout: time.Second}

func TestOutboxRelayJob_Relay_DrainsUntilShortBatch(t *testing.T) {
	cmd, err := commands.NewRelayOrderChangesCommand(2)
	require.NoError(t, err)

	relay := &relayMock{}
	mock.InOrder(
		relay.On("Handle", mock.Anything, cmd).Return(2, nil).Once(),
		relay.On("Handle", mock.Anything, cmd).Return(2, nil).Once(),
		relay.On("Handle", mock.Anything, cmd).Return(1, nil).Once(),
	)

	job := NewOutboxRelayJob(relay, cmd, testSchedule, discard())
	require.NoError(t, job.Relay(context.Background()))
	relay.AssertNumberOfCalls(t, "Handle", 3)
}

func TestOutboxRelayJob_Relay_StopsOnError(t *testing.T) {
	cmd, err := commands.NewRelayOrderChangesCommand(2)
	require.NoError(t, err)

	brokerDown := errors.New("broker down")
	relay := &relayMock{}
	relay.On("Handle", mock.Anything, cmd).Return(0, brokerDown).Once()

	job := NewOutboxRelayJob(relay, cmd, testSchedule, discard())
	err = job.Relay(context.Background())
	require.ErrorIs(t, err, brokerDown)
	relay.AssertNumberOfCalls(t, "Handle", 1)
}

func TestOutboxRelayJob_Relay_AppliesRunTimeout(t *testing.T) {
	cmd, err := commands.NewRelayOrderChangesCommand(10)
	require.NoError(t, err)

	relay := &relayMock{}
	relay.On("Handle", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), cmd).Return(0, nil).Once()

	job := NewOutboxRelayJob(relay, cmd, testSchedule, discard())
	require.NoError(t, job.Relay(context.Background()))
	relay.AssertExpectations(t)
}

func TestStaleOrderExpirationJob_RunOnce(t *testing.T) {
	cmd, err := commands.NewExpireStaleOrdersCommand(10*time.Minute, 500)
	require.NoError(t, err)

	expirer := &expirerMock{}
	expirer.On("Handle", mock.Anything, cmd).Return(3, nil).Once()

	NewStaleOrderExpirationJob(expirer, cmd, testSchedule, discard()).RunOnce(context.Background())
	expirer.AssertExpectations(t)
}

func TestLedgerAuditJob_RunOnce_SurvivesFailure(t *testing.T) {
	auditor := &auditorMock{}
	auditor.On("Handle", mock.Anything, mock.AnythingOfType("queries.ValidateAllLedgersQuery")).
		Return(queries.ValidateAllLedgersResponse{Checked: 4}, errors.New("db gone")).Once()

	assert.NotPanics(t, func() {
		NewLedgerAuditJob(auditor, testSchedule, discard()).RunOnce(context.Background())
	})
	auditor.AssertExpectations(t)
}

func TestJobManager_StartAndStop(t *testing.T) {
	relayCmd, err := commands.NewRelayOrderChangesCommand(100)
	require.NoError(t, err)
	expireCmd, err := commands.NewExpireStaleOrdersCommand(10*time.Minute, 500)
	require.NoError(t, err)
	cleanCmd, err := commands.NewCleanStaleDriverLocationsCommand(time.Hour, 500)
	require.NoError(t, err)

	hourly := Schedule{Interval: time.Hour, Timeout: time.Second}
	jm := NewJobManager(
		NewStaleOrderExpirationJob(&expirerMock{}, expireCmd, hourly, discard()),
		NewDriverLocationCleanupJob(nil, cleanCmd, hourly, discard()),
		NewOutboxRelayJob(&relayMock{}, relayCmd, hourly, discard()),
		NewLedgerAuditJob(&auditorMock{}, hourly, discard()),
		discard(),
	)

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}

func TestEvery(t *testing.T) {
	assert.Equal(t, "@every 2m0s", every(2*time.Minute))
}
