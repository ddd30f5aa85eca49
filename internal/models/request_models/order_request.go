package request_models

import (
	"encoding/json"
	"strings"
)

type CreateOrderRequest struct {
	AccountID     string `json:"accountId"`
	CoinAmount    int64  `json:"coinAmount"`
	FiatAmount    int64  `json:"fiatAmount"`
	DepositorName string `json:"depositorName"`
}

// PaymentWebhookRequest is the notifier's callback body. Older notifier
// versions send the order id as "orderId", newer ones as "orderReference".
type PaymentWebhookRequest struct {
	OrderID        string      `json:"orderId"`
	OrderReference string      `json:"orderReference"`
	Status         string      `json:"status"`
	Amount         json.Number `json:"amount"`
	AccountID      string      `json:"accountId"`
}

func (r PaymentWebhookRequest) Reference() string {
	if ref := strings.TrimSpace(r.OrderReference); ref != "" {
		return ref
	}
	return strings.TrimSpace(r.OrderID)
}

// AmountValue returns the deposited amount and whether the payload carried one.
func (r PaymentWebhookRequest) AmountValue() (int64, bool) {
	if r.Amount == "" {
		return 0, false
	}
	v, err := r.Amount.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}
