package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(dup) {
		t.Error("23505 should be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert failed: %w", dup)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("duplicate key value")) {
		t.Error("classification must not key off message text")
	}
}

func TestIsBatchConflict(t *testing.T) {
	if !IsBatchConflict(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a batch conflict")
	}
	if !IsBatchConflict(&pgconn.PgError{Code: "21000"}) {
		t.Error("21000 should be a batch conflict")
	}
	if IsBatchConflict(&pgconn.PgError{Code: "42601"}) {
		t.Error("syntax error is not a batch conflict")
	}
	if IsBatchConflict(errors.New("boom")) {
		t.Error("plain error is not a batch conflict")
	}
}
