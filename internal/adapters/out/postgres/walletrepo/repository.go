package walletrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
)

// GormWalletRepository implements ports.WalletRepository using GORM.
type GormWalletRepository struct {
	db *gorm.DB
}

func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// Add inserts a wallet. Two handlers opening the same wallet concurrently collide on the
// primary key; the loser gets a transient error and retries against the existing row.
func (r *GormWalletRepository) Add(ctx context.Context, w *wallet.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	return pgerr.Wrap(r.db.WithContext(ctx).Create(&dto).Error)
}

func (r *GormWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	result := r.db.WithContext(ctx).
		Model(&WalletDTO{}).
		Where("id = ?", dto.ID).
		Select("balance", "total_credited", "total_debited", "pending_payout", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("walletId", dto.ID)
	}
	return nil
}

func (r *GormWalletRepository) Get(ctx context.Context, id wallet.ID) (*wallet.Wallet, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormWalletRepository) GetForUpdate(ctx context.Context, id wallet.ID) (*wallet.Wallet, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormWalletRepository) get(db *gorm.DB, id wallet.ID) (*wallet.Wallet, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WalletDTO
	if err := db.First(&dto, "id = ?", id.String()).Error; err != nil {
		return nil, pgerr.NotFound(err, "walletId", id.String())
	}
	return toDomain(dto)
}

func (r *GormWalletRepository) ListIDs(ctx context.Context) ([]wallet.ID, error) {
	var raw []string
	if err := r.db.WithContext(ctx).Model(&WalletDTO{}).Order("id").Pluck("id", &raw).Error; err != nil {
		return nil, pgerr.Wrap(err)
	}

	ids := make([]wallet.ID, 0, len(raw))
	for _, s := range raw {
		id, err := wallet.ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
