package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"crm-backend/internal/email"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// Job derivation heuristic: roughly one estimated hour per $125 of quoted
// value, capped at a 40-hour week.
const (
	centsPerEstimatedHour = 12500
	maxEstimatedHours     = 40.0
)

const convertedJobFallbackDescription = "Work as quoted."

type QuoteService struct {
	repo         *repositories.QuoteRepository
	customerRepo *repositories.CustomerRepository
	jobRepo      *repositories.JobRepository
	emailService email.Provider
	hub          *realtime.Hub
}

func NewQuoteService(
	repo *repositories.QuoteRepository,
	customerRepo *repositories.CustomerRepository,
	jobRepo *repositories.JobRepository,
	emailService email.Provider,
	hub *realtime.Hub,
) *QuoteService {
	return &QuoteService{
		repo:         repo,
		customerRepo: customerRepo,
		jobRepo:      jobRepo,
		emailService: emailService,
		hub:          hub,
	}
}

// CreateQuote builds a new draft quote from the request, computing line
// totals and the subtotal/tax/total invariant.
func (s *QuoteService) CreateQuote(ctx context.Context, userID int, req *models.SaveQuoteRequest) (*models.Quote, error) {
	if req.CustomerID == 0 {
		return nil, validationErrorf("customer_id is required")
	}
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}
	if _, err := s.customerRepo.Get(ctx, req.CustomerID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	quote := &models.Quote{
		UserID:      userID,
		CustomerID:  req.CustomerID,
		RequestID:   req.RequestID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.QuoteStatusDraft,
		ValidUntil:  req.ValidUntil,
	}
	applyQuoteItems(quote, req)

	err := retryOnNumberCollision(documentNumberAttempts, func() error {
		seq, err := s.repo.NextSequence(ctx, userID)
		if err != nil {
			return err
		}
		quote.QuoteNumber = fmt.Sprintf("Q-%04d", seq)
		return s.repo.Create(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "quotes", Type: realtime.EventInsert, Record: quote, UserID: userID})
	return quote, nil
}

// UpdateQuote rewrites the quote, replacing line items wholesale and
// recomputing totals.
func (s *QuoteService) UpdateQuote(ctx context.Context, id, userID int, req *models.SaveQuoteRequest) (*models.Quote, error) {
	quote, err := s.GetQuote(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}

	quote.Title = req.Title
	quote.Description = req.Description
	quote.ValidUntil = req.ValidUntil
	if req.CustomerID != 0 {
		quote.CustomerID = req.CustomerID
	}
	quote.RequestID = req.RequestID
	applyQuoteItems(quote, req)

	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "quotes", Type: realtime.EventUpdate, Record: quote, UserID: userID})
	return quote, nil
}

// applyQuoteItems replaces the quote's items from the request and recomputes
// money fields so that line_total = quantity x unit_price and
// total = subtotal + tax hold on every save.
func applyQuoteItems(quote *models.Quote, req *models.SaveQuoteRequest) {
	items := make([]*models.QuoteItem, 0, len(req.Items))
	var subtotal int64
	for i, in := range req.Items {
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := int64(qty) * in.UnitPriceCents
		subtotal += lineTotal
		items = append(items, &models.QuoteItem{
			Title:          in.Title,
			Description:    in.Description,
			Quantity:       qty,
			UnitPriceCents: in.UnitPriceCents,
			LineTotalCents: lineTotal,
			SortOrder:      i,
		})
	}
	quote.Items = items
	quote.SubtotalCents = subtotal
	quote.TaxCents = req.TaxCents
	quote.TotalCents = subtotal + req.TaxCents
}

func (s *QuoteService) GetQuote(ctx context.Context, id, userID int) (*models.Quote, error) {
	quote, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quote, nil
}

func (s *QuoteService) ListQuotes(ctx context.Context, userID int) ([]*models.Quote, error) {
	return s.repo.List(ctx, userID)
}

func (s *QuoteService) DeleteQuote(ctx context.Context, id, userID int) error {
	quote, err := s.GetQuote(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{Table: "quotes", Type: realtime.EventDelete, Record: quote, UserID: userID})
	return nil
}

// ChangeStatus moves the quote through the lifecycle state machine. The
// write is scoped to (id, user_id); last write wins with no version check,
// so two simultaneous edits race and the realtime feed is what reconciles
// other viewers.
func (s *QuoteService) ChangeStatus(ctx context.Context, id, userID int, target models.QuoteStatus) (*models.Quote, error) {
	if !target.IsValid() {
		return nil, validationErrorf("unknown quote status %q", target)
	}

	quote, err := s.GetQuote(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !quote.Status.CanTransition(target) {
		return nil, &TransitionError{
			From:    quote.Status,
			To:      target,
			Allowed: quote.Status.NextStatuses(),
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, userID, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}

	metrics.QuoteStatusTransitions.WithLabelValues(string(quote.Status), string(target)).Inc()

	quote.Status = target
	s.hub.Publish(realtime.Event{Table: "quotes", Type: realtime.EventUpdate, Record: quote, UserID: userID})
	return quote, nil
}

// SendQuote transitions the quote to sent and emails it to the customer.
// The email is best-effort: a provider failure is reported but does not
// revert the status change.
func (s *QuoteService) SendQuote(ctx context.Context, id, userID int) (*models.Quote, error) {
	quote, err := s.ChangeStatus(ctx, id, userID, models.QuoteStatusSent)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.Get(ctx, quote.CustomerID, userID)
	if err != nil {
		return quote, nil
	}
	if customer.Email == "" {
		return quote, nil
	}

	msg := &email.Message{
		To:           []string{customer.Email},
		Subject:      fmt.Sprintf("Quote %s: %s", quote.QuoteNumber, quote.Title),
		HTMLBody:     renderQuoteEmail(quote, customer),
		TextBody:     fmt.Sprintf("Quote %s for %s, total %s.", quote.QuoteNumber, quote.Title, quote.Total().StringFixed(2)),
		DocumentType: "quote",
		DocumentID:   quote.ID,
	}
	if err := s.emailService.Send(ctx, userID, msg); err != nil {
		return quote, validationErrorf("quote marked sent but email failed: %v", err)
	}
	return quote, nil
}

func renderQuoteEmail(quote *models.Quote, customer *models.Customer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>Hi %s,</p>", customer.FirstName)
	fmt.Fprintf(&sb, "<p>Please find quote %s below.</p>", quote.QuoteNumber)
	sb.WriteString("<ul>")
	for _, item := range quote.Items {
		label := item.Description
		if item.Title != "" {
			label = item.Title + ": " + item.Description
		}
		fmt.Fprintf(&sb, "<li>%s: %d x %s</li>", label, item.Quantity, item.LineTotal().StringFixed(2))
	}
	sb.WriteString("</ul>")
	fmt.Fprintf(&sb, "<p>Total: %s</p>", quote.Total().StringFixed(2))
	return sb.String()
}

// BuildJobDraft derives a job creation payload from an accepted quote. The
// caller may edit every field before confirming.
func (s *QuoteService) BuildJobDraft(ctx context.Context, id, userID int) (*models.JobDraft, error) {
	quote, err := s.GetQuote(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteStatusAccepted {
		return nil, validationErrorf("only accepted quotes can be converted to jobs (status is %q)", quote.Status)
	}

	return &models.JobDraft{
		CustomerID:     quote.CustomerID,
		QuoteID:        quote.ID,
		Title:          quote.Title,
		Description:    DeriveJobDescription(quote),
		ScheduledDate:  DefaultJobSchedule(time.Now()),
		EstimatedHours: EstimateHours(quote.TotalCents),
		Notes:          fmt.Sprintf("Created from quote %s", quote.QuoteNumber),
	}, nil
}

// ConvertQuote creates a job from an accepted quote, applying any overrides
// the caller made to the derived draft. The quote's status is left as
// accepted: conversion is a one-way derivation, not a state transition.
func (s *QuoteService) ConvertQuote(ctx context.Context, id, userID int, req *models.ConvertQuoteRequest) (*models.Job, error) {
	draft, err := s.BuildJobDraft(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req != nil {
		if req.Title != "" {
			draft.Title = req.Title
		}
		if req.Description != "" {
			draft.Description = req.Description
		}
		if req.ScheduledDate != nil {
			draft.ScheduledDate = *req.ScheduledDate
		}
		if req.EstimatedHours != nil {
			draft.EstimatedHours = req.EstimatedHours
		}
		if req.Notes != "" {
			draft.Notes = req.Notes
		}
	}

	quoteID := draft.QuoteID
	job := &models.Job{
		UserID:         userID,
		CustomerID:     draft.CustomerID,
		QuoteID:        &quoteID,
		Title:          draft.Title,
		Description:    draft.Description,
		Status:         models.JobStatusPending,
		ScheduledDate:  &draft.ScheduledDate,
		EstimatedHours: draft.EstimatedHours,
		Notes:          draft.Notes,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "jobs", Type: realtime.EventInsert, Record: job, UserID: userID})
	return job, nil
}

// DeriveJobDescription builds the job description from the quote's line
// items as a bulleted listing; items without a title show only their
// description. Quotes without items fall back to the quote description.
func DeriveJobDescription(quote *models.Quote) string {
	if len(quote.Items) == 0 {
		if quote.Description != "" {
			return quote.Description
		}
		return convertedJobFallbackDescription
	}

	var sb strings.Builder
	for i, item := range quote.Items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		switch {
		case item.Title != "" && item.Description != "":
			sb.WriteString(item.Title + ": " + item.Description)
		case item.Title != "":
			sb.WriteString(item.Title)
		default:
			sb.WriteString(item.Description)
		}
	}
	return sb.String()
}

// EstimateHours derives estimated hours from the quoted total. Returns nil
// when the quote has no total.
func EstimateHours(totalCents int64) *float64 {
	if totalCents <= 0 {
		return nil
	}
	hours := math.Ceil(float64(totalCents) / centsPerEstimatedHour)
	if hours > maxEstimatedHours {
		hours = maxEstimatedHours
	}
	return &hours
}

// DefaultJobSchedule returns tomorrow at 09:00 in the local timezone.
func DefaultJobSchedule(now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, now.Location())
}
