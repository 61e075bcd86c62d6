// Package locationrepo keeps the last known position of each driver.
package locationrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
)

type DriverLocationDTO struct {
	DriverID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Lat       float64   `gorm:"not null"`
	Lng       float64   `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

func (DriverLocationDTO) TableName() string {
	return "driver_locations"
}

// GormLocationRepository implements ports.LocationRepository using GORM.
type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) Upsert(ctx context.Context, driverID kernel.UUID, lat, lng float64, at time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	dto := DriverLocationDTO{DriverID: driverID.Bytes(), Lat: lat, Lng: lng, UpdatedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "driver_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"lat", "lng", "updated_at"}),
	}).Create(&dto).Error
	return pgerr.Wrap(err)
}

func (r *GormLocationRepository) DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM driver_locations
		WHERE driver_id IN (
			SELECT driver_id FROM driver_locations
			WHERE updated_at < ?
			ORDER BY updated_at
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if result.Error != nil {
		return 0, pgerr.Wrap(result.Error)
	}
	return result.RowsAffected, nil
}
