package order_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"topup/internal/config"
	"topup/internal/repositories"
	"topup/internal/services"
)

var Module = fx.Provide(
	provideOrderRepo, provideAccountRepo, provideBankDirectory, provideOrderService,
)

func provideOrderRepo(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideBankDirectory(cfg *config.Config) services.BankDirectory {
	return services.NewBankDirectory(cfg)
}

func provideOrderService(
	db *gorm.DB,
	orderRepo repositories.OrderRepository,
	accountRepo repositories.AccountRepository,
	banks services.BankDirectory,
	log *zap.Logger,
) services.OrderService {
	return services.NewOrderService(db, orderRepo, accountRepo, banks, log.Named("orders"))
}
