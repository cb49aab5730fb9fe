package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	razorpay "github.com/razorpay/razorpay-go"
)

type PaymentService struct {
	intentRepo  *repositories.PaymentIntentRepository
	invoiceRepo *repositories.InvoiceRepository
	hub         *realtime.Hub
	keyID       string
	keySecret   string
}

func NewPaymentService(
	intentRepo *repositories.PaymentIntentRepository,
	invoiceRepo *repositories.InvoiceRepository,
	hub *realtime.Hub,
	keyID, keySecret string,
) *PaymentService {
	return &PaymentService{
		intentRepo:  intentRepo,
		invoiceRepo: invoiceRepo,
		hub:         hub,
		keyID:       keyID,
		keySecret:   keySecret,
	}
}

func (s *PaymentService) client() *razorpay.Client {
	if s.keyID == "" || s.keySecret == "" {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateIntent creates a provider order for an invoice and records the attempt.
func (s *PaymentService) CreateIntent(ctx context.Context, userID int, req *models.CreatePaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	if req.InvoiceID == 0 {
		return nil, validationErrorf("invoice_id is required")
	}

	invoice, err := s.invoiceRepo.Get(ctx, req.InvoiceID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, validationErrorf("invoice %s is already paid", invoice.InvoiceNumber)
	}
	if invoice.Status == models.InvoiceStatusVoid {
		return nil, validationErrorf("invoice %s is void", invoice.InvoiceNumber)
	}
	if invoice.TotalCents <= 0 {
		return nil, validationErrorf("invoice total must be positive")
	}

	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("payment provider not configured")
	}

	orderData := map[string]interface{}{
		"amount":   invoice.TotalCents,
		"currency": "INR",
		"receipt":  fmt.Sprintf("rcpt_%d_%d", invoice.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"invoice_id":     invoice.ID,
			"invoice_number": invoice.InvoiceNumber,
		},
	}

	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("payment provider returned no order id")
	}

	intent := &models.PaymentIntent{
		UserID:          userID,
		InvoiceID:       invoice.ID,
		ProviderOrderID: orderID,
		AmountCents:     invoice.TotalCents,
		Currency:        "INR",
		Status:          models.PaymentIntentCreated,
		Metadata:        req.Metadata,
	}
	if err := s.intentRepo.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	return &models.PaymentIntentResponse{
		IntentID:        intent.ID,
		ProviderOrderID: orderID,
		KeyID:           s.keyID,
		AmountCents:     invoice.TotalCents,
		Currency:        "INR",
	}, nil
}

func (s *PaymentService) GetIntent(ctx context.Context, id, userID int) (*models.PaymentIntent, error) {
	intent, err := s.intentRepo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return intent, nil
}

// VerifyPayment checks the provider signature and marks the invoice paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID int, req *models.VerifyPaymentRequest) (*models.PaymentIntent, error) {
	intent, err := s.intentRepo.GetByProviderOrder(ctx, req.ProviderOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if intent.UserID != userID {
		return nil, ErrNotFound
	}

	// Idempotent: a second verify call for a settled intent returns it as is.
	if intent.Status == models.PaymentIntentPaid {
		return intent, nil
	}

	if !s.verifySignature(req.ProviderOrderID, req.ProviderPaymentID, req.Signature) {
		_ = s.intentRepo.UpdateStatus(ctx, intent.ID, models.PaymentIntentFailed)
		intent.Status = models.PaymentIntentFailed
		return nil, validationErrorf("invalid payment signature")
	}

	if err := s.intentRepo.UpdateStatus(ctx, intent.ID, models.PaymentIntentPaid); err != nil {
		return nil, err
	}
	intent.Status = models.PaymentIntentPaid

	if err := s.invoiceRepo.MarkPaid(ctx, intent.InvoiceID, userID); err != nil {
		return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	if invoice, err := s.invoiceRepo.Get(ctx, intent.InvoiceID, userID); err == nil {
		s.hub.Publish(realtime.Event{Table: "invoices", Type: realtime.EventUpdate, Record: invoice, UserID: userID})
	}

	return intent, nil
}

func (s *PaymentService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
