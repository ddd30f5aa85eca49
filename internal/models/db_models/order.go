package db_models

import (
	"fmt"

	"topup/pkg/utils"
)

type OrderState string

const (
	StatePending  OrderState = "pending"
	StateComplete OrderState = "complete"
	StateCanceled OrderState = "canceled"
)

func (s OrderState) Terminal() bool {
	return s == StateComplete || s == StateCanceled
}

// Transition is the only place that decides whether an order may move.
// pending -> complete and pending -> canceled are allowed; nothing leaves a terminal state.
func (s OrderState) Transition(to OrderState) (OrderState, error) {
	if s == StatePending && (to == StateComplete || to == StateCanceled) {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidState, s, to)
}

// OrderDetails is fixed at creation and copied verbatim into the archive.
type OrderDetails struct {
	CoinAmount        int64  `gorm:"not null"`
	FiatAmount        int64  `gorm:"not null"`
	DepositorName     string `gorm:"size:64;not null"`
	BankName          string `gorm:"size:64"`
	BankAccountNumber string `gorm:"size:64"`
	BankAccountHolder string `gorm:"size:64"`
}

// Order is a live top-up attempt. At most one row per account may be pending.
type Order struct {
	BaseModel
	AccountID string     `gorm:"size:128;not null;uniqueIndex:idx_orders_pending_account,where:state = 'pending'"`
	State     OrderState `gorm:"size:16;not null;index"`
	OrderDetails

	CompletedAt *int64
}

// CanceledOrder is the archive row written when the owner cancels a pending order.
// It keeps the original id, so an order can be archived only once.
type CanceledOrder struct {
	BaseModel
	AccountID string     `gorm:"size:128;not null;index"`
	State     OrderState `gorm:"size:16;not null"`
	OrderDetails

	CanceledAt int64 `gorm:"not null"`
}

func NewCanceledOrder(o *Order, canceledAt int64) *CanceledOrder {
	return &CanceledOrder{
		BaseModel:    BaseModel{ID: o.ID, CreatedAt: o.CreatedAt},
		AccountID:    o.AccountID,
		State:        StateCanceled,
		OrderDetails: o.OrderDetails,
		CanceledAt:   canceledAt,
	}
}
