package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"topup/internal/models/db_models"
	"topup/pkg/utils"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	Create(ctx context.Context, order *db_models.Order) error
	FindByID(ctx context.Context, id string) (*db_models.Order, error)
	FindByIDForAccount(ctx context.Context, id, accountID string) (*db_models.Order, error)
	FindPendingByAccount(ctx context.Context, accountID string) (*db_models.Order, error)

	// MarkComplete and DeletePending only touch a row that is still pending;
	// the returned bool reports whether this caller won the transition.
	MarkComplete(ctx context.Context, id string, completedAt int64) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)

	Archive(ctx context.Context, canceled *db_models.CanceledOrder) error
	FindCanceledForAccount(ctx context.Context, id, accountID string) (*db_models.CanceledOrder, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *db_models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.ErrConflict
	}
	return storeErr("create order", err)
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*db_models.Order, error) {
	var order db_models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	return found(&order, "find order", err)
}

func (r *orderRepository) FindByIDForAccount(ctx context.Context, id, accountID string) (*db_models.Order, error) {
	var order db_models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&order).Error
	return found(&order, "find order", err)
}

func (r *orderRepository) FindPendingByAccount(ctx context.Context, accountID string) (*db_models.Order, error) {
	var order db_models.Order
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND state = ?", accountID, db_models.StatePending).
		First(&order).Error
	return found(&order, "find pending order", err)
}

func (r *orderRepository) MarkComplete(ctx context.Context, id string, completedAt int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Order{}).
		Where("id = ? AND state = ?", id, db_models.StatePending).
		Updates(map[string]interface{}{
			"state":        db_models.StateComplete,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, storeErr("complete order", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) DeletePending(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, db_models.StatePending).
		Delete(&db_models.Order{})
	if res.Error != nil {
		return false, storeErr("delete pending order", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) Archive(ctx context.Context, canceled *db_models.CanceledOrder) error {
	err := r.db.WithContext(ctx).Create(canceled).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: order %s already archived", utils.ErrInvalidState, canceled.ID)
	}
	return storeErr("archive order", err)
}

func (r *orderRepository) FindCanceledForAccount(ctx context.Context, id, accountID string) (*db_models.CanceledOrder, error) {
	var canceled db_models.CanceledOrder
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&canceled).Error
	return found(&canceled, "find canceled order", err)
}

// found follows the nil, nil convention for a missing row.
func found[T any](v *T, op string, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(op, err)
	}
	return v, nil
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", utils.ErrTransientStore, op, err)
}
