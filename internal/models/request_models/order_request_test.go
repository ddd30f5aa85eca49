package request_models

import (
	"encoding/json"
	"testing"
)

func TestPaymentWebhookRequestReference(t *testing.T) {
	var legacy PaymentWebhookRequest
	if err := json.Unmarshal([]byte(`{"orderId":" o-1 ","status":"PAID","amount":3500}`), &legacy); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if legacy.Reference() != "o-1" {
		t.Errorf("expected o-1, got %q", legacy.Reference())
	}

	var current PaymentWebhookRequest
	if err := json.Unmarshal([]byte(`{"orderId":"old","orderReference":"o-2"}`), &current); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if current.Reference() != "o-2" {
		t.Errorf("orderReference should win, got %q", current.Reference())
	}
}

func TestPaymentWebhookRequestAmount(t *testing.T) {
	cases := map[string]struct {
		body    string
		want    int64
		present bool
	}{
		"number":  {`{"amount":3500}`, 3500, true},
		"missing": {`{}`, 0, false},
		"decimal": {`{"amount":35.5}`, 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var r PaymentWebhookRequest
			if err := json.Unmarshal([]byte(tc.body), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := r.AmountValue()
			if got != tc.want || ok != tc.present {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tc.want, tc.present)
			}
		})
	}
}
