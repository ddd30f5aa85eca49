package db_models

import (
	"errors"
	"testing"

	"topup/pkg/utils"
)

func TestOrderStateTransition(t *testing.T) {
	tests := []struct {
		from, to OrderState
		ok       bool
	}{
		{StatePending, StateComplete, true},
		{StatePending, StateCanceled, true},
		{StatePending, StatePending, false},
		{StateComplete, StateCanceled, false},
		{StateComplete, StateComplete, false},
		{StateComplete, StatePending, false},
		{StateCanceled, StateComplete, false},
		{StateCanceled, StateCanceled, false},
		{StateCanceled, StatePending, false},
		{OrderState("bogus"), StateComplete, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.to {
					t.Fatalf("expected %s, got %s", tt.to, got)
				}
				return
			}
			if !errors.Is(err, utils.ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState, got %v", err)
			}
			if got != tt.from {
				t.Fatalf("state must not change on rejected transition, got %s", got)
			}
		})
	}
}

func TestNewCanceledOrderKeepsIdentity(t *testing.T) {
	o := &Order{
		BaseModel: BaseModel{ID: "o-1", CreatedAt: 100},
		AccountID: "acct",
		State:     StatePending,
		OrderDetails: OrderDetails{
			CoinAmount: 15000, FiatAmount: 3500, DepositorName: "Kim",
		},
	}
	c := NewCanceledOrder(o, 200)
	if c.ID != "o-1" || c.CreatedAt != 100 || c.CanceledAt != 200 {
		t.Fatalf("unexpected archive row: %+v", c)
	}
	if c.State != StateCanceled || c.CoinAmount != 15000 || c.DepositorName != "Kim" {
		t.Fatalf("details not copied: %+v", c)
	}
	if !c.State.Terminal() {
		t.Fatal("canceled must be terminal")
	}
}
