package fcm

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"dispatch/internal/core/ports"
)

// LogSender stands in for Sender when no push endpoint is configured. Messages are
// written to the log and reported as delivered.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "push_log")}
}

func (s *LogSender) Send(ctx context.Context, _ string, msg ports.PushMessage) (string, error) {
	id := "log/" + uuid.NewString()
	s.logger.InfoContext(ctx, "push not sent, no endpoint configured",
		"message_id", id, "title", msg.Title, "data", msg.Data)
	return id, nil
}
