package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"topup/internal/models/db_models"
	"topup/pkg/utils"
)

type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository

	// Credit adds delta to the balance in one statement, flooring a negative balance at zero first.
	Credit(ctx context.Context, accountID string, delta int64) error
	Coins(ctx context.Context, accountID string) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepository{db: tx}
}

func (a *accountRepository) Credit(ctx context.Context, accountID string, delta int64) error {
	if accountID == "" || delta <= 0 {
		return fmt.Errorf("%w: credit of %d to account %q", utils.ErrValidation, delta, accountID)
	}

	now := utils.NowUnixSeconds()
	account := db_models.Account{ID: accountID, Coins: delta, UpdatedAt: now}

	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"coins":      gorm.Expr("CASE WHEN accounts.coins < 0 THEN 0 ELSE accounts.coins END + ?", delta),
				"updated_at": now,
			}),
		}).
		Create(&account).Error
	return storeErr("credit account", err)
}

func (a *accountRepository) Coins(ctx context.Context, accountID string) (int64, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", accountID).Error
	acc, err := found(&account, "find account", err)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Coins, nil
}
