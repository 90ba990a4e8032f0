package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusCreated, OrderStatusPendingClaim, true},
		{OrderStatusCreated, OrderStatusCancelled, true},
		{OrderStatusCreated, OrderStatusClaimed, false},
		{OrderStatusPendingClaim, OrderStatusClaimed, true},
		{OrderStatusPendingClaim, OrderStatusCancelled, true},
		{OrderStatusPendingClaim, OrderStatusCreated, false},
		{OrderStatusClaimed, OrderStatusCancelled, false},
		{OrderStatusClaimed, OrderStatusPendingClaim, false},
		{OrderStatusCancelled, OrderStatusCreated, false},
		{OrderStatusCancelled, OrderStatusClaimed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCancellableStatusesExcludeTerminal(t *testing.T) {
	for _, status := range CancellableStatuses() {
		if !status.CanTransitionTo(OrderStatusCancelled) {
			t.Errorf("%s listed as cancellable but transition is not allowed", status)
		}
	}

	for _, status := range []OrderStatus{OrderStatusClaimed, OrderStatusCancelled} {
		for _, cancellable := range CancellableStatuses() {
			if status == cancellable {
				t.Errorf("terminal status %s listed as cancellable", status)
			}
		}
	}
}
