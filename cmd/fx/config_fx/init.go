package config_fx

import (
	"go.uber.org/fx"

	"topup/internal/config"
)

var Module = fx.Provide(config.Load)
