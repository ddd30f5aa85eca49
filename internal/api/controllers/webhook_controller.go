package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"topup/internal/models/response_models"
	"topup/internal/services"
)

type WebhookController struct {
	reconcileService services.ReconcileService
	log              *zap.Logger
}

func NewWebhookController(reconcileService services.ReconcileService, log *zap.Logger) *WebhookController {
	return &WebhookController{
		reconcileService: reconcileService,
		log:              log,
	}
}

// HandlePayment godoc
// @Summary Payment provider callback
// @Description Authenticated with x-webhook-key and x-mall-id. Anything that cannot be acted on is acknowledged with "ignored" so the provider stops retrying; store failures answer 500 so it retries.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param x-webhook-key header string true "Shared secret"
// @Param x-mall-id header string true "Mall ID"
// @Success 200 {object} response_models.WebhookResponse
// @Failure 401 {object} response_models.WebhookResponse
// @Failure 500 {object} response_models.WebhookResponse
// @Router /webhook/payment [post]
func (w *WebhookController) HandlePayment(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		w.log.Warn("could not read webhook body", zap.Error(err))
		c.JSON(http.StatusOK, response_models.WebhookResponse{Status: "ignored", Reason: services.ReasonMalformed})
		return
	}

	result, err := w.reconcileService.HandlePaymentEvent(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response_models.WebhookResponse{Status: "fail"})
		return
	}

	c.JSON(http.StatusOK, response_models.WebhookResponse{
		Status: string(result.Outcome),
		Reason: result.Reason,
	})
}
