package repositories

import (
	"context"

	"gorm.io/gorm"

	"topup/internal/models/db_models"
)

type WebhookEventRepository interface {
	Record(ctx context.Context, event *db_models.WebhookEvent) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (w *webhookEventRepository) Record(ctx context.Context, event *db_models.WebhookEvent) error {
	return storeErr("record webhook event", w.db.WithContext(ctx).Create(event).Error)
}
