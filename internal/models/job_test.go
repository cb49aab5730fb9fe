package models

import "testing"

func TestJobStatusCanTransition(t *testing.T) {
	cases := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusPending, JobStatusInProgress, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusInProgress, JobStatusCompleted, true},
		{JobStatusInProgress, JobStatusCancelled, true},
		{JobStatusInProgress, JobStatusPending, false},
		{JobStatusCompleted, JobStatusPending, false},
		{JobStatusCompleted, JobStatusInProgress, false},
		{JobStatusCancelled, JobStatusPending, true},
		{JobStatusCancelled, JobStatusInProgress, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestJobStatusCompletedIsTerminal(t *testing.T) {
	if next := JobStatusCompleted.NextStatuses(); len(next) != 0 {
		t.Errorf("completed should have no next statuses, got %v", next)
	}
}
