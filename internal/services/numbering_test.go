package services

import (
	"errors"
	"testing"

	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRetryOnNumberCollisionRetriesDuplicates(t *testing.T) {
	calls := 0
	err := retryOnNumberCollision(3, func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "23505"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after reallocation, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryOnNumberCollisionGivesUpEventually(t *testing.T) {
	calls := 0
	err := retryOnNumberCollision(3, func() error {
		calls++
		return &pgconn.PgError{Code: "23505"}
	})
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	if !repositories.IsUniqueViolation(err) {
		t.Errorf("exhaustion should surface the last conflict, got %v", err)
	}
}

func TestRetryOnNumberCollisionStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := retryOnNumberCollision(3, func() error {
		calls++
		return boom
	})
	if calls != 1 {
		t.Errorf("non-conflict errors must not retry: %d calls", calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}
