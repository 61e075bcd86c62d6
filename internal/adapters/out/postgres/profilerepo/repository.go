// Package profilerepo reads user profiles and keeps the push notification log.
package profilerepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

type ProfileDTO struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role      string    `gorm:"size:16;not null"`
	PushToken string    `gorm:"size:512"`
	IsBlocked bool      `gorm:"not null;default:false"`
}

func (ProfileDTO) TableName() string {
	return "profiles"
}

// GormProfileRepository implements ports.ProfileRepository using GORM.
type GormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) Get(ctx context.Context, userID kernel.UUID) (ports.Profile, error) {
	if err := userID.Validate(); err != nil {
		return ports.Profile{}, err
	}
	var dto ProfileDTO
	if err := r.db.WithContext(ctx).First(&dto, "user_id = ?", userID.Bytes()).Error; err != nil {
		return ports.Profile{}, pgerr.NotFound(err, "userId", userID.String())
	}
	return ports.Profile{
		UserID:    userID,
		Role:      ports.Role(dto.Role),
		PushToken: dto.PushToken,
		IsBlocked: dto.IsBlocked,
	}, nil
}

func (r *GormProfileRepository) ClearPushToken(ctx context.Context, userID kernel.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&ProfileDTO{}).
		Where("user_id = ?", userID.Bytes()).
		Update("push_token", "").Error
	return pgerr.Wrap(err)
}

type NotificationDTO struct {
	ID     string    `gorm:"size:200;primaryKey"`
	SentAt time.Time `gorm:"not null;index"`
}

func (NotificationDTO) TableName() string {
	return "notification_log"
}

// GormNotificationLog implements ports.NotificationLog on a primary key insert.
type GormNotificationLog struct {
	db *gorm.DB
}

func NewGormNotificationLog(db *gorm.DB) *GormNotificationLog {
	return &GormNotificationLog{db: db}
}

// Reserve reports true only for the caller whose insert created the row.
func (l *GormNotificationLog) Reserve(ctx context.Context, id string, at time.Time) (bool, error) {
	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&NotificationDTO{ID: id, SentAt: at})
	if result.Error != nil {
		return false, pgerr.Wrap(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (l *GormNotificationLog) Release(ctx context.Context, id string) error {
	return pgerr.Wrap(l.db.WithContext(ctx).Delete(&NotificationDTO{}, "id = ?", id).Error)
}
