package response_models

type CreateOrderResponse struct {
	OrderID       string `json:"orderId"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	CoinAmount    int64  `json:"coinAmount"`
	FiatAmount    int64  `json:"fiatAmount"`
	DepositorName string `json:"depositorName"`
	State         string `json:"state"`
	CreatedAt     string `json:"createdAt"`
}

type OrderResponse struct {
	OrderID       string `json:"orderId"`
	AccountID     string `json:"accountId"`
	State         string `json:"state"`
	CoinAmount    int64  `json:"coinAmount"`
	FiatAmount    int64  `json:"fiatAmount"`
	DepositorName string `json:"depositorName"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	CreatedAt     string `json:"createdAt"`
	CompletedAt   string `json:"completedAt,omitempty"`
	CanceledAt    string `json:"canceledAt,omitempty"`
}

type CancelOrderResponse struct {
	Status string `json:"status"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Coins     int64  `json:"coins"`
}

// WebhookResponse is what the payment notifier reads: success, ignored or fail.
type WebhookResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
