package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrInvalidPushToken is returned by PushSender when the device token is no longer valid.
// The stored token must then be removed from the recipient's profile.
var ErrInvalidPushToken = errors.New("invalid push token")

// PushMessage is the content of one push notification.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushSender dispatches push notifications.
type PushSender interface {
	Send(ctx context.Context, token string, msg PushMessage) (messageID string, err error)
}

// Role of a profile.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Profile is the subset of a user profile the core needs.
type Profile struct {
	UserID    kernel.UUID
	Role      Role
	PushToken string
	IsBlocked bool
}

// ProfileRepository reads profiles and maintains their push tokens.
type ProfileRepository interface {
	// Get returns the profile or ObjectNotFoundError.
	Get(ctx context.Context, userID kernel.UUID) (Profile, error)
	ClearPushToken(ctx context.Context, userID kernel.UUID) error
}

// NotificationLog remembers which notifications were already sent.
type NotificationLog interface {
	// Reserve records id and reports whether it was new.
	Reserve(ctx context.Context, id string, at time.Time) (bool, error)

	// Release forgets id so a failed send can be retried.
	Release(ctx context.Context, id string) error
}

// AlertPublisher surfaces operator alerts outside the database.
type AlertPublisher interface {
	Publish(ctx context.Context, alert audit.SecurityAlert) error
}

// DeliveryMemo remembers which handlers already completed for an event. It is an
// optimization only; idempotency of money movement rests on ledger keys.
type DeliveryMemo interface {
	Done(ctx context.Context, eventID, handler string) (bool, error)
	MarkDone(ctx context.Context, eventID, handler string) error
}

// Clock abstracts time for handlers and commands.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
