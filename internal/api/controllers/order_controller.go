package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"topup/internal/models/request_models"
	"topup/internal/models/response_models"
	"topup/internal/services"
	"topup/pkg/middleware"
	"topup/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
	log          *zap.Logger
}

func NewOrderController(orderService services.OrderService, log *zap.Logger) *OrderController {
	return &OrderController{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder godoc
// @Summary Create a bank-transfer top-up order
// @Description Opens a pending order and returns the bank account the depositor should transfer to. An account may hold one pending order at a time.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body request_models.CreateOrderRequest true "Create order payload"
// @Success 200 {object} utils.APIResponse{data=response_models.CreateOrderResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/order [post]
func (o *OrderController) CreateOrder(c *gin.Context) {
	var req request_models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := o.orderService.CreateOrder(c.Request.Context(), c.GetString(middleware.AccountIDKey), req)
	if err != nil {
		utils.HandleServiceError(c, o.log, err)
		return
	}

	utils.RespondSuccess(c, resp, "Order created, please complete the bank transfer")
}

// CancelOrder godoc
// @Summary Cancel a pending order
// @Description Moves the caller's pending order to the archive. Completed or already canceled orders cannot be canceled.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} utils.APIResponse{data=response_models.CancelOrderResponse}
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/order/{id}/cancel [post]
func (o *OrderController) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")

	if err := o.orderService.CancelOrder(c.Request.Context(), c.GetString(middleware.AccountIDKey), orderID); err != nil {
		utils.HandleServiceError(c, o.log, err)
		return
	}

	utils.RespondSuccess(c, response_models.CancelOrderResponse{Status: "canceled"}, "Order canceled")
}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} utils.APIResponse{data=response_models.OrderResponse}
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/order/{id} [get]
func (o *OrderController) GetOrder(c *gin.Context) {
	resp, err := o.orderService.GetOrder(c.Request.Context(), c.GetString(middleware.AccountIDKey), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, o.log, err)
		return
	}
	utils.RespondSuccess(c, resp, "")
}
