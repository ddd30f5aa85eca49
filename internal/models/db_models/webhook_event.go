package db_models

import "gorm.io/datatypes"

type WebhookOutcome string

const (
	OutcomeSuccess WebhookOutcome = "success"
	OutcomeIgnored WebhookOutcome = "ignored"
	OutcomeFail    WebhookOutcome = "fail"
)

// WebhookEvent is an audit row for each authenticated payment notification.
type WebhookEvent struct {
	BaseModel
	OrderReference string         `gorm:"size:64;index"`
	AccountID      string         `gorm:"size:128"`
	PaymentStatus  string         `gorm:"size:32"`
	Amount         int64
	Outcome        WebhookOutcome `gorm:"size:16;index"`
	Reason         string         `gorm:"size:64"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
}
