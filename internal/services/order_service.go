package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"topup/internal/models/db_models"
	"topup/internal/models/request_models"
	"topup/internal/models/response_models"
	"topup/internal/repositories"
	"topup/pkg/utils"
)

const maxDepositorNameLen = 64

type OrderService interface {
	CreateOrder(ctx context.Context, accountID string, req request_models.CreateOrderRequest) (*response_models.CreateOrderResponse, error)
	CancelOrder(ctx context.Context, accountID, orderID string) error
	GetOrder(ctx context.Context, accountID, orderID string) (*response_models.OrderResponse, error)
	GetBalance(ctx context.Context, accountID string) (*response_models.BalanceResponse, error)
}

type orderService struct {
	db       *gorm.DB
	orders   repositories.OrderRepository
	accounts repositories.AccountRepository
	banks    BankDirectory
	log      *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orders repositories.OrderRepository,
	accounts repositories.AccountRepository,
	banks BankDirectory,
	log *zap.Logger,
) OrderService {
	return &orderService{
		db:       db,
		orders:   orders,
		accounts: accounts,
		banks:    banks,
		log:      log,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, accountID string, req request_models.CreateOrderRequest) (*response_models.CreateOrderResponse, error) {
	depositor, err := validateCreateOrder(accountID, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.FindPendingByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrConflict
	}

	// Resolved before anything is written so a provider failure leaves no order behind.
	dest, err := s.banks.Destination(ctx)
	if err != nil {
		s.log.Error("bank destination lookup failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}

	order := &db_models.Order{
		AccountID: accountID,
		State:     db_models.StatePending,
		OrderDetails: db_models.OrderDetails{
			CoinAmount:        req.CoinAmount,
			FiatAmount:        req.FiatAmount,
			DepositorName:     depositor,
			BankName:          dest.BankName,
			BankAccountNumber: dest.AccountNumber,
			BankAccountHolder: dest.AccountHolder,
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		pending, err := orders.FindPendingByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if pending != nil {
			return utils.ErrConflict
		}
		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("account_id", accountID),
		zap.Int64("coin_amount", order.CoinAmount),
		zap.Int64("fiat_amount", order.FiatAmount),
	)

	return &response_models.CreateOrderResponse{
		OrderID:       order.ID,
		BankName:      order.BankName,
		AccountNumber: order.BankAccountNumber,
		AccountHolder: order.BankAccountHolder,
		CoinAmount:    order.CoinAmount,
		FiatAmount:    order.FiatAmount,
		DepositorName: order.DepositorName,
		State:         string(order.State),
		CreatedAt:     utils.FormatRFC3339KST(order.CreatedAt),
	}, nil
}

func validateCreateOrder(accountID string, req request_models.CreateOrderRequest) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("%w: account is required", utils.ErrValidation)
	}
	if req.AccountID != "" && req.AccountID != accountID {
		return "", fmt.Errorf("%w: order must be placed for the signed-in account", utils.ErrForbidden)
	}

	depositor := strings.TrimSpace(req.DepositorName)
	if depositor == "" {
		return "", fmt.Errorf("%w: depositor name is required", utils.ErrValidation)
	}
	if utf8.RuneCountInString(depositor) > maxDepositorNameLen {
		return "", fmt.Errorf("%w: depositor name must be at most %d characters", utils.ErrValidation, maxDepositorNameLen)
	}
	if req.CoinAmount <= 0 {
		return "", fmt.Errorf("%w: coin amount must be positive", utils.ErrValidation)
	}
	if req.FiatAmount <= 0 {
		return "", fmt.Errorf("%w: fiat amount must be positive", utils.ErrValidation)
	}
	return depositor, nil
}

func (s *orderService) CancelOrder(ctx context.Context, accountID, orderID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		order, err := orders.FindByIDForAccount(ctx, orderID, accountID)
		if err != nil {
			return err
		}
		if order == nil {
			archived, err := orders.FindCanceledForAccount(ctx, orderID, accountID)
			if err != nil {
				return err
			}
			if archived != nil {
				return fmt.Errorf("%w: order %s is already canceled", utils.ErrInvalidState, orderID)
			}
			return utils.ErrNotFound
		}

		if _, err := order.State.Transition(db_models.StateCanceled); err != nil {
			return err
		}

		deleted, err := orders.DeletePending(ctx, order.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: order %s completed before it could be canceled", utils.ErrInvalidState, orderID)
		}

		return orders.Archive(ctx, db_models.NewCanceledOrder(order, utils.NowUnixSeconds()))
	})
	if err != nil {
		return err
	}

	s.log.Info("order canceled", zap.String("order_id", orderID), zap.String("account_id", accountID))
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, accountID, orderID string) (*response_models.OrderResponse, error) {
	order, err := s.orders.FindByIDForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		resp := orderResponse(order.ID, order.AccountID, order.State, order.OrderDetails, order.CreatedAt)
		if order.CompletedAt != nil {
			resp.CompletedAt = utils.FormatRFC3339KST(*order.CompletedAt)
		}
		return resp, nil
	}

	archived, err := s.orders.FindCanceledForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, err
	}
	if archived == nil {
		return nil, utils.ErrNotFound
	}
	resp := orderResponse(archived.ID, archived.AccountID, archived.State, archived.OrderDetails, archived.CreatedAt)
	resp.CanceledAt = utils.FormatRFC3339KST(archived.CanceledAt)
	return resp, nil
}

func orderResponse(id, accountID string, state db_models.OrderState, d db_models.OrderDetails, createdAt int64) *response_models.OrderResponse {
	return &response_models.OrderResponse{
		OrderID:       id,
		AccountID:     accountID,
		State:         string(state),
		CoinAmount:    d.CoinAmount,
		FiatAmount:    d.FiatAmount,
		DepositorName: d.DepositorName,
		BankName:      d.BankName,
		AccountNumber: d.BankAccountNumber,
		AccountHolder: d.BankAccountHolder,
		CreatedAt:     utils.FormatRFC3339KST(createdAt),
	}
}

func (s *orderService) GetBalance(ctx context.Context, accountID string) (*response_models.BalanceResponse, error) {
	coins, err := s.accounts.Coins(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &response_models.BalanceResponse{AccountID: accountID, Coins: coins}, nil
}
