package controllers_fx

import (
	"go.uber.org/fx"

	"topup/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewWebhookController))
