package webhook_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"topup/internal/config"
	"topup/internal/repositories"
	"topup/internal/services"
)

var Module = fx.Provide(
	provideWebhookEventRepo, provideReconcileService,
)

func provideWebhookEventRepo(db *gorm.DB) repositories.WebhookEventRepository {
	return repositories.NewWebhookEventRepository(db)
}

func provideReconcileService(
	db *gorm.DB,
	orderRepo repositories.OrderRepository,
	accountRepo repositories.AccountRepository,
	eventRepo repositories.WebhookEventRepository,
	cfg *config.Config,
	log *zap.Logger,
) services.ReconcileService {
	return services.NewReconcileService(db, orderRepo, accountRepo, eventRepo, cfg.Webhook, log.Named("webhook"))
}
