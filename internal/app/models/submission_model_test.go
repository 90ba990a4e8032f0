package models

import "testing"

func TestSubmissionStatusTransitions(t *testing.T) {
	tests := []struct {
		from SubmissionStatus
		to   SubmissionStatus
		want bool
	}{
		{SubmissionStatusPending, SubmissionStatusApproved, true},
		{SubmissionStatusPending, SubmissionStatusRejected, true},
		{SubmissionStatusApproved, SubmissionStatusRejected, false},
		{SubmissionStatusApproved, SubmissionStatusPending, false},
		{SubmissionStatusRejected, SubmissionStatusApproved, false},
		{SubmissionStatusRejected, SubmissionStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
