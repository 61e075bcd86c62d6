package payoutrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/pkg/errs"
)

// GormPayoutRepository implements ports.PayoutRepository using GORM.
type GormPayoutRepository struct {
	db *gorm.DB
}

func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

func (r *GormPayoutRepository) Add(ctx context.Context, p *payout.Payout) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dto := fromDomain(p)
	return pgerr.Wrap(r.db.WithContext(ctx).Create(&dto).Error)
}

func (r *GormPayoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dto := fromDomain(p)
	result := r.db.WithContext(ctx).Model(&PayoutDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return pgerr.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("payoutId", p.ID().String())
	}
	return nil
}

func (r *GormPayoutRepository) Get(ctx context.Context, id kernel.UUID) (*payout.Payout, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormPayoutRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*payout.Payout, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPayoutRepository) get(db *gorm.DB, id kernel.UUID) (*payout.Payout, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var dto PayoutDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.NotFound(err, "payoutId", id.String())
	}
	return toDomain(dto)
}
