package topuprepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/topup"
	"dispatch/internal/pkg/errs"
)

// GormTopupRepository implements ports.TopupRepository using GORM.
type GormTopupRepository struct {
	db *gorm.DB
}

func NewGormTopupRepository(db *gorm.DB) *GormTopupRepository {
	return &GormTopupRepository{db: db}
}

func (r *GormTopupRepository) Add(ctx context.Context, req *topup.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	dto := fromDomain(req)
	return pgerr.Wrap(r.db.WithContext(ctx).Create(&dto).Error)
}

func (r *GormTopupRepository) Update(ctx context.Context, req *topup.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	dto := fromDomain(req)
	result := r.db.WithContext(ctx).
		Model(&RequestDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "admin_id", "notes", "processed_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("requestId", req.ID().String())
	}
	return nil
}

func (r *GormTopupRepository) Get(ctx context.Context, id kernel.UUID) (*topup.Request, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormTopupRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*topup.Request, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormTopupRepository) get(db *gorm.DB, id kernel.UUID) (*topup.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var dto RequestDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.NotFound(err, "requestId", id.String())
	}
	return toDomain(dto)
}
