package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"topup/internal/services"
	"topup/pkg/middleware"
	"topup/pkg/utils"
)

type AccountController struct {
	orderService services.OrderService
	log          *zap.Logger
}

func NewAccountController(orderService services.OrderService, log *zap.Logger) *AccountController {
	return &AccountController{
		orderService: orderService,
		log:          log,
	}
}

// GetCoins godoc
// @Summary Get the caller's coin balance
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse{data=response_models.BalanceResponse}
// @Security BearerAuth
// @Router /api/account/coins [get]
func (a *AccountController) GetCoins(c *gin.Context) {
	resp, err := a.orderService.GetBalance(c.Request.Context(), c.GetString(middleware.AccountIDKey))
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}
	utils.RespondSuccess(c, resp, "")
}
