package reactions

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Pusher sends a push notification at most once per dedup id and removes device tokens
// the gateway reports as invalid.
type Pusher struct {
	profiles ports.ProfileRepository
	log      ports.NotificationLog
	sender   ports.PushSender
	clock    ports.Clock
	logger   *slog.Logger
}

func NewPusher(
	profiles ports.ProfileRepository,
	log ports.NotificationLog,
	sender ports.PushSender,
	clock ports.Clock,
	logger *slog.Logger,
) *Pusher {
	return &Pusher{
		profiles: profiles,
		log:      log,
		sender:   sender,
		clock:    clock,
		logger:   logger.With("component", "pusher"),
	}
}

// Push delivers msg to userID unless dedupID was already sent. A user without a token is
// skipped silently.
func (p *Pusher) Push(ctx context.Context, userID kernel.UUID, dedupID string, msg ports.PushMessage) error {
	profile, err := p.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	if profile.PushToken == "" {
		p.logger.DebugContext(ctx, "no push token", "user_id", userID.String())
		return nil
	}

	fresh, err := p.log.Reserve(ctx, dedupID, p.clock.Now())
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	messageID, err := p.sender.Send(ctx, profile.PushToken, msg)
	if errors.Is(err, ports.ErrInvalidPushToken) {
		p.logger.InfoContext(ctx, "removing invalid push token", "user_id", userID.String())
		return p.profiles.ClearPushToken(ctx, userID)
	}
	if err != nil {
		if releaseErr := p.log.Release(ctx, dedupID); releaseErr != nil {
			p.logger.WarnContext(ctx, "failed to release notification", "id", dedupID, "error", releaseErr)
		}
		return err
	}

	p.logger.InfoContext(ctx, "push sent", "user_id", userID.String(), "message_id", messageID, "id", dedupID)
	return nil
}
