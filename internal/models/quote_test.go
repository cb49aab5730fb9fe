package models

import "testing"

func TestQuoteStatusCanTransition(t *testing.T) {
	cases := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusDraft, QuoteStatusRejected, false},
		{QuoteStatusDraft, QuoteStatusExpired, false},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusRejected, true},
		{QuoteStatusSent, QuoteStatusExpired, true},
		{QuoteStatusSent, QuoteStatusDraft, false},
		{QuoteStatusAccepted, QuoteStatusSent, true},
		{QuoteStatusAccepted, QuoteStatusRejected, false},
		{QuoteStatusRejected, QuoteStatusSent, true},
		{QuoteStatusRejected, QuoteStatusAccepted, false},
		{QuoteStatusExpired, QuoteStatusSent, true},
		{QuoteStatusExpired, QuoteStatusDraft, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestQuoteStatusIsValid(t *testing.T) {
	for _, s := range []QuoteStatus{QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if QuoteStatus("archived").IsValid() {
		t.Error("archived should not be valid")
	}
}

func TestQuoteStatusNextStatuses(t *testing.T) {
	next := QuoteStatusSent.NextStatuses()
	if len(next) != 3 {
		t.Fatalf("expected 3 next statuses from sent, got %d", len(next))
	}

	// Mutating the returned slice must not affect the transition table.
	next[0] = QuoteStatusDraft
	again := QuoteStatusSent.NextStatuses()
	if again[0] == QuoteStatusDraft {
		t.Error("NextStatuses should return a copy")
	}
}

func TestQuoteDecimalViews(t *testing.T) {
	q := &Quote{SubtotalCents: 109999, TaxCents: 1, TotalCents: 110000}
	if got := q.Subtotal().StringFixed(2); got != "1099.99" {
		t.Errorf("subtotal: got %s, want 1099.99", got)
	}
	if got := q.Tax().StringFixed(2); got != "0.01" {
		t.Errorf("tax: got %s, want 0.01", got)
	}
	if got := q.Total().StringFixed(2); got != "1100.00" {
		t.Errorf("total: got %s, want 1100.00", got)
	}
}
