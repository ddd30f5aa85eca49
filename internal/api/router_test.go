package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"topup/internal/api/controllers"
	"topup/internal/config"
	"topup/internal/models/db_models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/testutil"
	"topup/pkg/middleware"
	"topup/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	cfg    *config.Config
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()
	cfg := &config.Config{
		JWTSecret:          "jwt-secret",
		Webhook:            config.WebhookConfig{Secret: "hook-secret", MallID: "mall-1", StrictAmount: true},
		Bank:               config.BankConfig{Name: "Shinhan", AccountNumber: "110-123", AccountHolder: "Topup Inc"},
		RateLimitPerMinute: 0,
		CORSAllowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	orderRepo := repositories.NewOrderRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	orderService := services.NewOrderService(db, orderRepo, accountRepo, services.NewBankDirectory(cfg), log)
	reconcileService := services.NewReconcileService(db, orderRepo, accountRepo,
		repositories.NewWebhookEventRepository(db), cfg.Webhook, log)

	router := NewRouter(cfg, db, log, Controllers{
		Orders:   controllers.NewOrderController(orderService, log),
		Accounts: controllers.NewAccountController(orderService, log),
		Webhooks: controllers.NewWebhookController(reconcileService, log),
	})
	return &harness{t: t, db: db, router: router, cfg: cfg}
}

func (h *harness) token(accountID string) string {
	tok, err := utils.CreateToken([]byte(h.cfg.JWTSecret), accountID, time.Hour)
	if err != nil {
		h.t.Fatalf("token: %v", err)
	}
	return tok
}

func (h *harness) do(method, path, accountID string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set("Authorization", "Bearer "+h.token(accountID))
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var resp utils.APIResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (h *harness) webhook(key, mall string, body interface{}) (*httptest.ResponseRecorder, map[string]string) {
	h.t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.WebhookKeyHeader, key)
	req.Header.Set(middleware.MallIDHeader, mall)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	out := map[string]string{}
	json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (h *harness) createOrder(accountID string) string {
	h.t.Helper()
	w, resp := h.do(http.MethodPost, "/api/order", accountID, map[string]interface{}{
		"accountId": accountID, "coinAmount": 15000, "fiatAmount": 3500, "depositorName": "Kim",
	})
	if w.Code != http.StatusOK {
		h.t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	return data["orderId"].(string)
}

func (h *harness) coins(accountID string) float64 {
	h.t.Helper()
	w, resp := h.do(http.MethodGet, "/api/account/coins", accountID, nil)
	if w.Code != http.StatusOK {
		h.t.Fatalf("coins: %d %s", w.Code, w.Body.String())
	}
	return resp.Data.(map[string]interface{})["coins"].(float64)
}

func paid(orderID, accountID string) map[string]interface{} {
	return map[string]interface{}{"orderReference": orderID, "status": "PAID", "amount": 3500, "accountId": accountID}
}

func TestCreateOrderEndpoint(t *testing.T) {
	h := newHarness(t)

	w, resp := h.do(http.MethodPost, "/api/order", "acct-1", map[string]interface{}{
		"accountId": "acct-1", "coinAmount": 15000, "fiatAmount": 3500, "depositorName": "Kim",
	})
	if w.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["bankName"] != "Shinhan" || data["accountNumber"] != "110-123" || data["accountHolder"] != "Topup Inc" {
		t.Fatalf("unexpected bank fields: %v", data)
	}
	if resp.TraceID == "" || w.Header().Get(middleware.TraceIDHeader) != resp.TraceID {
		t.Fatalf("trace id missing from envelope")
	}
}

func TestCreateOrderEndpointErrors(t *testing.T) {
	h := newHarness(t)
	h.createOrder("acct-1")

	tests := []struct {
		name    string
		account string
		body    interface{}
		status  int
	}{
		{"conflict", "acct-1", map[string]interface{}{"coinAmount": 1, "fiatAmount": 1, "depositorName": "Kim"}, http.StatusConflict},
		{"validation", "acct-2", map[string]interface{}{"coinAmount": 0, "fiatAmount": 1, "depositorName": "Kim"}, http.StatusBadRequest},
		{"bad json", "acct-2", "not an object", http.StatusBadRequest},
		{"other account", "acct-2", map[string]interface{}{"accountId": "acct-3", "coinAmount": 1, "fiatAmount": 1, "depositorName": "Kim"}, http.StatusForbidden},
		{"no session", "", map[string]interface{}{"coinAmount": 1, "fiatAmount": 1, "depositorName": "Kim"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := h.do(http.MethodPost, "/api/order", tt.account, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if resp.Status != "error" || resp.Message == "" {
				t.Fatalf("expected error envelope, got %s", w.Body.String())
			}
		})
	}

	_, resp := h.do(http.MethodPost, "/api/order", "acct-1", map[string]interface{}{"coinAmount": 1, "fiatAmount": 1, "depositorName": "Kim"})
	if resp.Message == "Internal server error" {
		t.Fatal("conflict must be distinguishable from a generic failure")
	}
}

func TestCancelEndpoint(t *testing.T) {
	h := newHarness(t)
	id := h.createOrder("acct-1")

	w, _ := h.do(http.MethodPost, "/api/order/"+id+"/cancel", "acct-2", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign cancel: expected 404, got %d", w.Code)
	}

	w, resp := h.do(http.MethodPost, "/api/order/"+id+"/cancel", "acct-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	if resp.Data.(map[string]interface{})["status"] != "canceled" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	w, _ = h.do(http.MethodPost, "/api/order/"+id+"/cancel", "acct-1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second cancel: expected 409, got %d", w.Code)
	}

	w, resp = h.do(http.MethodGet, "/api/order/"+id, "acct-1", nil)
	if w.Code != http.StatusOK || resp.Data.(map[string]interface{})["state"] != "canceled" {
		t.Fatalf("get canceled order: %d %s", w.Code, w.Body.String())
	}
}

func TestWebhookEndToEnd(t *testing.T) {
	h := newHarness(t)
	id := h.createOrder("acct-1")

	w, out := h.webhook("hook-secret", "mall-1", paid(id, "acct-1"))
	if w.Code != http.StatusOK || out["status"] != "success" {
		t.Fatalf("first delivery: %d %v", w.Code, out)
	}
	w, out = h.webhook("hook-secret", "mall-1", paid(id, "acct-1"))
	if w.Code != http.StatusOK || out["status"] != "ignored" {
		t.Fatalf("second delivery: %d %v", w.Code, out)
	}
	if got := h.coins("acct-1"); got != 15000 {
		t.Fatalf("expected 15000 coins, got %v", got)
	}

	_, resp := h.do(http.MethodGet, "/api/order/"+id, "acct-1", nil)
	data := resp.Data.(map[string]interface{})
	if completedAt, _ := data["completedAt"].(string); data["state"] != "complete" || completedAt == "" {
		t.Fatalf("order not complete: %v", data)
	}

	w, _ = h.do(http.MethodPost, "/api/order/"+id+"/cancel", "acct-1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("cancel after completion: expected 409, got %d", w.Code)
	}
}

func TestWebhookAuthGateNeverMutates(t *testing.T) {
	h := newHarness(t)
	id := h.createOrder("acct-1")

	for _, creds := range [][2]string{{"wrong", "mall-1"}, {"hook-secret", "mall-2"}, {"", ""}} {
		w, out := h.webhook(creds[0], creds[1], paid(id, "acct-1"))
		if w.Code != http.StatusUnauthorized || out["status"] != "fail" {
			t.Fatalf("creds %v: expected 401 fail, got %d %v", creds, w.Code, out)
		}
	}

	var order db_models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.State != db_models.StatePending {
		t.Fatalf("order state changed to %s", order.State)
	}
	if got := h.coins("acct-1"); got != 0 {
		t.Fatalf("balance changed to %v", got)
	}
	var events int64
	h.db.Model(&db_models.WebhookEvent{}).Count(&events)
	if events != 0 {
		t.Fatalf("rejected deliveries must not be recorded, found %d", events)
	}
}

func TestWebhookMalformedIsAcknowledged(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader([]byte("garbage")))
	req.Header.Set(middleware.WebhookKeyHeader, "hook-secret")
	req.Header.Set(middleware.MallIDHeader, "mall-1")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]string
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["status"] != "ignored" || out["reason"] != services.ReasonMalformed {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestWebhookStoreFailureAsksForRetry(t *testing.T) {
	h := newHarness(t)
	id := h.createOrder("acct-1")

	if err := h.db.Migrator().DropTable(&db_models.Account{}); err != nil {
		t.Fatalf("drop accounts: %v", err)
	}

	w, out := h.webhook("hook-secret", "mall-1", paid(id, "acct-1"))
	if w.Code != http.StatusInternalServerError || out["status"] != "fail" {
		t.Fatalf("expected 500 fail, got %d %v", w.Code, out)
	}

	var order db_models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.State != db_models.StatePending {
		t.Fatalf("failed credit must roll back completion, state is %s", order.State)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 2 })

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		w, _ := h.do(http.MethodGet, "/api/account/coins", "acct-1", nil)
		if w.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}

	// Other accounts keep their own budget.
	if w, _ := h.do(http.MethodGet, "/api/account/coins", "acct-2", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for another account, got %d", w.Code)
	}
}
