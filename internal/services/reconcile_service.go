package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"topup/internal/config"
	"topup/internal/models/db_models"
	"topup/internal/models/request_models"
	"topup/internal/repositories"
	"topup/pkg/utils"
)

// Reasons reported with an ignored delivery.
const (
	ReasonMalformed       = "malformed"
	ReasonUnknownOrder    = "unknown_order"
	ReasonNotPending      = "not_pending"
	ReasonNotPaid         = "not_paid"
	ReasonAccountMismatch = "account_mismatch"
	ReasonAmountMismatch  = "amount_mismatch"
)

const paidStatus = "paid"

type ReconcileResult struct {
	Outcome   db_models.WebhookOutcome
	Reason    string
	OrderID   string
	AccountID string
	Credited  int64
}

type ReconcileService interface {
	// HandlePaymentEvent applies one authenticated payment notification.
	// An error is returned only when the store failed and the provider should retry.
	HandlePaymentEvent(ctx context.Context, payload []byte) (ReconcileResult, error)
}

type reconcileService struct {
	db           *gorm.DB
	orders       repositories.OrderRepository
	accounts     repositories.AccountRepository
	events       repositories.WebhookEventRepository
	strictAmount bool
	log          *zap.Logger
}

func NewReconcileService(
	db *gorm.DB,
	orders repositories.OrderRepository,
	accounts repositories.AccountRepository,
	events repositories.WebhookEventRepository,
	cfg config.WebhookConfig,
	log *zap.Logger,
) ReconcileService {
	return &reconcileService{
		db:           db,
		orders:       orders,
		accounts:     accounts,
		events:       events,
		strictAmount: cfg.StrictAmount,
		log:          log,
	}
}

func ignored(reason string) ReconcileResult {
	return ReconcileResult{Outcome: db_models.OutcomeIgnored, Reason: reason}
}

func (s *reconcileService) HandlePaymentEvent(ctx context.Context, payload []byte) (ReconcileResult, error) {
	var req request_models.PaymentWebhookRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Reference() == "" {
		result := ignored(ReasonMalformed)
		s.log.Info("payment webhook ignored", zap.String("reason", result.Reason))
		s.record(ctx, req, payload, result)
		return result, nil
	}

	result, err := s.reconcile(ctx, req)
	if err != nil {
		result = ReconcileResult{Outcome: db_models.OutcomeFail, OrderID: req.Reference(), Reason: "store_error"}
		s.log.Error("payment webhook failed", zap.String("order_id", req.Reference()), zap.Error(err))
		s.record(ctx, req, payload, result)
		return result, err
	}

	switch result.Outcome {
	case db_models.OutcomeSuccess:
		s.log.Info("order completed",
			zap.String("order_id", result.OrderID),
			zap.String("account_id", result.AccountID),
			zap.Int64("coins", result.Credited),
		)
	default:
		s.log.Info("payment webhook ignored",
			zap.String("order_id", result.OrderID),
			zap.String("reason", result.Reason),
		)
	}
	s.record(ctx, req, payload, result)
	return result, nil
}

func (s *reconcileService) reconcile(ctx context.Context, req request_models.PaymentWebhookRequest) (ReconcileResult, error) {
	ref := req.Reference()
	result := ignored("")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		order, err := orders.FindByID(ctx, ref)
		if err != nil {
			return err
		}
		if order == nil {
			result = ignored(ReasonUnknownOrder)
			return nil
		}

		if _, err := order.State.Transition(db_models.StateComplete); err != nil {
			result = ignored(ReasonNotPending)
			return nil
		}
		if !strings.EqualFold(strings.TrimSpace(req.Status), paidStatus) {
			result = ignored(ReasonNotPaid)
			return nil
		}
		if acct := strings.TrimSpace(req.AccountID); acct != "" && acct != order.AccountID {
			s.log.Warn("payment webhook account does not match order",
				zap.String("order_id", order.ID),
				zap.String("order_account_id", order.AccountID),
				zap.String("payload_account_id", acct),
			)
			result = ignored(ReasonAccountMismatch)
			return nil
		}
		if amount, ok := req.AmountValue(); s.strictAmount && req.Amount != "" && (!ok || amount != order.FiatAmount) {
			s.log.Warn("payment webhook amount does not match order",
				zap.String("order_id", order.ID),
				zap.Int64("expected", order.FiatAmount),
				zap.String("received", req.Amount.String()),
			)
			result = ignored(ReasonAmountMismatch)
			return nil
		}

		completed, err := orders.MarkComplete(ctx, order.ID, utils.NowUnixSeconds())
		if err != nil {
			return err
		}
		if !completed {
			result = ignored(ReasonNotPending)
			return nil
		}

		if err := s.accounts.WithTx(tx).Credit(ctx, order.AccountID, order.CoinAmount); err != nil {
			return err
		}

		result = ReconcileResult{
			Outcome:   db_models.OutcomeSuccess,
			AccountID: order.AccountID,
			Credited:  order.CoinAmount,
		}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	result.OrderID = ref
	return result, nil
}

// record writes the audit row. Failures are logged and never change the reply.
func (s *reconcileService) record(ctx context.Context, req request_models.PaymentWebhookRequest, payload []byte, result ReconcileResult) {
	amount, _ := req.AmountValue()
	event := &db_models.WebhookEvent{
		OrderReference: req.Reference(),
		AccountID:      strings.TrimSpace(req.AccountID),
		PaymentStatus:  req.Status,
		Amount:         amount,
		Outcome:        result.Outcome,
		Reason:         result.Reason,
	}
	if json.Valid(payload) {
		event.Payload = datatypes.JSON(payload)
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.log.Warn("could not record webhook event", zap.String("order_id", event.OrderReference), zap.Error(err))
	}
}
