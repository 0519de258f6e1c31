package models

import (
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to searching", RideStatusPending, RideStatusSearching, true},
		{"pending to cancelled", RideStatusPending, RideStatusCancelled, true},
		{"searching to accepted", RideStatusSearching, RideStatusAccepted, true},
		{"awaiting confirmation to accepted", RideStatusAwaitingConfirm, RideStatusAccepted, true},
		{"accepted to arrived", RideStatusAccepted, RideStatusArrived, true},
		{"arrived to picked_up", RideStatusArrived, RideStatusPickedUp, true},
		{"picked_up to in_progress", RideStatusPickedUp, RideStatusInProgress, true},
		{"in_progress to completed", RideStatusInProgress, RideStatusCompleted, true},
		{"in_progress to cancelled", RideStatusInProgress, RideStatusCancelled, true},
		{"no skipping to completed", RideStatusAccepted, RideStatusCompleted, false},
		{"no skipping arrived", RideStatusAccepted, RideStatusPickedUp, false},
		{"no back-edge", RideStatusInProgress, RideStatusArrived, false},
		{"completed is terminal", RideStatusCompleted, RideStatusCancelled, false},
		{"cancelled is terminal", RideStatusCancelled, RideStatusAccepted, false},
		{"searching cannot jump to arrived", RideStatusSearching, RideStatusArrived, false},
		{"unknown state", "unknown", RideStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := &Ride{Status: tt.from}
			if got := ride.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestApplyTransitionSetsTimestamps(t *testing.T) {
	ride := &Ride{Status: RideStatusSearching}
	now := time.Now()

	steps := []struct {
		status string
		stamp  func() *time.Time
	}{
		{RideStatusAccepted, func() *time.Time { return ride.AcceptedAt }},
		{RideStatusArrived, func() *time.Time { return ride.ArrivedAt }},
		{RideStatusPickedUp, func() *time.Time { return ride.PickedUpAt }},
		{RideStatusInProgress, func() *time.Time { return ride.StartedAt }},
		{RideStatusCompleted, func() *time.Time { return ride.CompletedAt }},
	}

	var prev time.Time
	for i, step := range steps {
		at := now.Add(time.Duration(i) * time.Minute)
		if !ride.ApplyTransition(step.status, at) {
			t.Fatalf("ApplyTransition to %s failed from %s", step.status, ride.Status)
		}
		ts := step.stamp()
		if ts == nil {
			t.Fatalf("timestamp for %s not set", step.status)
		}
		if ts.Before(prev) {
			t.Errorf("timestamp for %s is before previous transition", step.status)
		}
		prev = *ts
	}

	if ride.Status != RideStatusCompleted {
		t.Errorf("expected completed, got %s", ride.Status)
	}
}

func TestApplyTransitionTimestampSetOnce(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ride := &Ride{Status: RideStatusPending, AcceptedAt: &first}

	if !ride.ApplyTransition(RideStatusAccepted, first.Add(time.Hour)) {
		t.Fatal("expected transition to accepted to succeed")
	}
	if !ride.AcceptedAt.Equal(first) {
		t.Errorf("acceptedAt overwritten: got %v, want %v", ride.AcceptedAt, first)
	}
}

func TestApplyTransitionRejectsIllegal(t *testing.T) {
	ride := &Ride{Status: RideStatusCompleted}
	if ride.ApplyTransition(RideStatusInProgress, time.Now()) {
		t.Fatal("expected transition from terminal state to fail")
	}
	if ride.CancelledAt != nil || ride.Status != RideStatusCompleted {
		t.Error("failed transition must not mutate the ride")
	}
}

func TestCancelLegalFromEveryNonTerminalState(t *testing.T) {
	nonTerminal := []string{
		RideStatusPending, RideStatusSearching, RideStatusAwaitingConfirm,
		RideStatusAccepted, RideStatusArrived, RideStatusPickedUp, RideStatusInProgress,
	}
	for _, status := range nonTerminal {
		ride := &Ride{Status: status}
		if !ride.CanTransitionTo(RideStatusCancelled) {
			t.Errorf("cancel should be legal from %s", status)
		}
	}
}

func TestUnassignedSuperstate(t *testing.T) {
	for _, status := range []string{RideStatusPending, RideStatusSearching, RideStatusAwaitingConfirm} {
		if !IsUnassignedRideStatus(status) {
			t.Errorf("%s should be unassigned", status)
		}
	}
	for _, status := range []string{RideStatusAccepted, RideStatusInProgress, RideStatusCompleted, RideStatusCancelled} {
		if IsUnassignedRideStatus(status) {
			t.Errorf("%s should not be unassigned", status)
		}
	}
}

func TestDriverStatusChanges(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{DriverStatusPending, DriverStatusActive, true},
		{DriverStatusActive, DriverStatusSuspended, true},
		{DriverStatusSuspended, DriverStatusActive, true},
		{DriverStatusInactive, DriverStatusActive, true},
		{DriverStatusOnRide, DriverStatusSuspended, false},
		{DriverStatusPending, DriverStatusSuspended, false},
	}

	for _, tt := range tests {
		d := &Driver{Status: tt.from}
		if got := d.CanChangeStatusTo(tt.to); got != tt.want {
			t.Errorf("CanChangeStatusTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
