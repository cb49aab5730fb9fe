package services

import (
	"testing"
	"time"

	"crm-backend/internal/models"
)

func TestApplyQuoteItems(t *testing.T) {
	cases := []struct {
		name         string
		items        []*models.NewQuoteItem
		taxCents     int64
		wantLines    []int64
		wantSubtotal int64
	}{
		{
			name: "multiple items",
			items: []*models.NewQuoteItem{
				{Title: "Mow lawn", Quantity: 2, UnitPriceCents: 5000},
				{Title: "Trim hedges", Quantity: 3, UnitPriceCents: 2500},
			},
			taxCents:     1400,
			wantLines:    []int64{10000, 7500},
			wantSubtotal: 17500,
		},
		{
			name: "zero and negative quantities clamp to one",
			items: []*models.NewQuoteItem{
				{Title: "Haul debris", Quantity: 0, UnitPriceCents: 8000},
				{Title: "Edge walkway", Quantity: -5, UnitPriceCents: 3000},
			},
			wantLines:    []int64{8000, 3000},
			wantSubtotal: 11000,
		},
		{
			name:         "tax only",
			taxCents:     500,
			wantLines:    nil,
			wantSubtotal: 0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			quote := &models.Quote{}
			applyQuoteItems(quote, &models.SaveQuoteRequest{Items: c.items, TaxCents: c.taxCents})

			if len(quote.Items) != len(c.wantLines) {
				t.Fatalf("items: got %d, want %d", len(quote.Items), len(c.wantLines))
			}
			for i, item := range quote.Items {
				if item.LineTotalCents != c.wantLines[i] {
					t.Errorf("item %d line total: got %d, want %d", i, item.LineTotalCents, c.wantLines[i])
				}
				if want := int64(item.Quantity) * item.UnitPriceCents; item.LineTotalCents != want {
					t.Errorf("item %d: line total %d != quantity x unit price %d", i, item.LineTotalCents, want)
				}
				if item.Quantity <= 0 {
					t.Errorf("item %d: quantity %d not clamped", i, item.Quantity)
				}
				if item.SortOrder != i {
					t.Errorf("item %d: sort order %d", i, item.SortOrder)
				}
			}
			if quote.SubtotalCents != c.wantSubtotal {
				t.Errorf("subtotal: got %d, want %d", quote.SubtotalCents, c.wantSubtotal)
			}
			if quote.TaxCents != c.taxCents {
				t.Errorf("tax: got %d, want %d", quote.TaxCents, c.taxCents)
			}
			if quote.TotalCents != quote.SubtotalCents+quote.TaxCents {
				t.Errorf("total %d != subtotal %d + tax %d", quote.TotalCents, quote.SubtotalCents, quote.TaxCents)
			}
		})
	}
}

func TestEstimateHours(t *testing.T) {
	cases := []struct {
		totalCents int64
		want       float64
		wantNil    bool
	}{
		{0, 0, true},
		{-500, 0, true},
		{100000, 8, false},  // $1000 -> 8h
		{12500, 1, false},   // exactly one hour
		{12501, 2, false},   // rounds up
		{600000, 40, false}, // $6000 capped at 40h
		{5000000, 40, false},
	}

	for _, c := range cases {
		got := EstimateHours(c.totalCents)
		if c.wantNil {
			if got != nil {
				t.Errorf("EstimateHours(%d): got %v, want nil", c.totalCents, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("EstimateHours(%d): got nil, want %v", c.totalCents, c.want)
			continue
		}
		if *got != c.want {
			t.Errorf("EstimateHours(%d): got %v, want %v", c.totalCents, *got, c.want)
		}
	}
}

func TestDeriveJobDescription(t *testing.T) {
	quote := &models.Quote{
		Items: []*models.QuoteItem{
			{Title: "Mow lawn", Description: "front and back"},
			{Title: "Trim hedges"},
			{Description: "haul away clippings"},
		},
	}

	want := "- Mow lawn: front and back\n- Trim hedges\n- haul away clippings"
	if got := DeriveJobDescription(quote); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeriveJobDescriptionNoItems(t *testing.T) {
	quote := &models.Quote{Description: "General maintenance"}
	if got := DeriveJobDescription(quote); got != "General maintenance" {
		t.Errorf("got %q, want the quote description", got)
	}

	empty := &models.Quote{}
	if got := DeriveJobDescription(empty); got != convertedJobFallbackDescription {
		t.Errorf("got %q, want fallback description", got)
	}
}

func TestDefaultJobSchedule(t *testing.T) {
	now := time.Date(2026, time.March, 14, 17, 45, 3, 0, time.Local)
	got := DefaultJobSchedule(now)

	want := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDefaultJobScheduleMonthBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 31, 23, 0, 0, 0, time.Local)
	got := DefaultJobSchedule(now)
	if got.Month() != time.February || got.Day() != 1 || got.Hour() != 9 {
		t.Errorf("got %v, want Feb 1 09:00", got)
	}
}
