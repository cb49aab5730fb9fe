package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"crm-backend/internal/email"
	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf/v2"
)

type InvoiceService struct {
	repo         *repositories.InvoiceRepository
	customerRepo *repositories.CustomerRepository
	emailService email.Provider
	hub          *realtime.Hub
}

func NewInvoiceService(
	repo *repositories.InvoiceRepository,
	customerRepo *repositories.CustomerRepository,
	emailService email.Provider,
	hub *realtime.Hub,
) *InvoiceService {
	return &InvoiceService{
		repo:         repo,
		customerRepo: customerRepo,
		emailService: emailService,
		hub:          hub,
	}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, userID int, req *models.SaveInvoiceRequest) (*models.Invoice, error) {
	if req.CustomerID == 0 {
		return nil, validationErrorf("customer_id is required")
	}
	if _, err := s.customerRepo.Get(ctx, req.CustomerID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	invoice := &models.Invoice{
		UserID:     userID,
		CustomerID: req.CustomerID,
		JobID:      req.JobID,
		QuoteID:    req.QuoteID,
		Status:     models.InvoiceStatusDraft,
		DueDate:    req.DueDate,
	}

	var subtotal int64
	for i, in := range req.Items {
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := int64(qty) * in.UnitPriceCents
		subtotal += lineTotal
		invoice.Items = append(invoice.Items, &models.InvoiceItem{
			Title:          in.Title,
			Description:    in.Description,
			Quantity:       qty,
			UnitPriceCents: in.UnitPriceCents,
			LineTotalCents: lineTotal,
			SortOrder:      i,
		})
	}
	invoice.SubtotalCents = subtotal
	invoice.TaxCents = req.TaxCents
	invoice.TotalCents = subtotal + req.TaxCents

	err := retryOnNumberCollision(documentNumberAttempts, func() error {
		seq, err := s.repo.NextSequence(ctx, userID)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%04d", seq)
		return s.repo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "invoices", Type: realtime.EventInsert, Record: invoice, UserID: userID})
	return invoice, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id, userID int) (*models.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, userID int) ([]*models.Invoice, error) {
	return s.repo.List(ctx, userID)
}

// SendInvoice emails the invoice to the customer and marks it sent.
func (s *InvoiceService) SendInvoice(ctx context.Context, id, userID int) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusVoid {
		return nil, validationErrorf("cannot send a %s invoice", invoice.Status)
	}

	customer, err := s.customerRepo.Get(ctx, invoice.CustomerID, userID)
	if err != nil {
		return nil, err
	}
	if customer.Email == "" {
		return nil, validationErrorf("customer has no email address")
	}

	msg := &email.Message{
		To:           []string{customer.Email},
		Subject:      fmt.Sprintf("Invoice %s", invoice.InvoiceNumber),
		HTMLBody:     fmt.Sprintf("<p>Hi %s,</p><p>Invoice %s for %s is due.</p>", customer.FirstName, invoice.InvoiceNumber, invoice.Total().StringFixed(2)),
		TextBody:     fmt.Sprintf("Invoice %s for %s is due.", invoice.InvoiceNumber, invoice.Total().StringFixed(2)),
		DocumentType: "invoice",
		DocumentID:   invoice.ID,
	}
	if err := s.emailService.Send(ctx, userID, msg); err != nil {
		return nil, fmt.Errorf("failed to send invoice email: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, models.InvoiceStatusSent); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusSent

	s.hub.Publish(realtime.Event{Table: "invoices", Type: realtime.EventUpdate, Record: invoice, UserID: userID})
	return invoice, nil
}

func (s *InvoiceService) VoidInvoice(ctx context.Context, id, userID int) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, validationErrorf("cannot void a paid invoice")
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, models.InvoiceStatusVoid); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusVoid

	s.hub.Publish(realtime.Event{Table: "invoices", Type: realtime.EventUpdate, Record: invoice, UserID: userID})
	return invoice, nil
}

// GeneratePDF renders the invoice as a PDF document.
func (s *InvoiceService) GeneratePDF(ctx context.Context, id, userID int) ([]byte, error) {
	invoice, err := s.GetInvoice(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.Get(ctx, invoice.CustomerID, userID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Issued: %s", invoice.CreatedAt.Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	if invoice.DueDate != nil {
		pdf.CellFormat(190, 6, fmt.Sprintf("Due: %s", invoice.DueDate.Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Bill To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(190, 7, customer.FullName(), "LRB", 1, "L", false, 0, "")
	if customer.CompanyName != "" {
		pdf.CellFormat(190, 7, customer.CompanyName, "LRB", 1, "L", false, 0, "")
	}
	if customer.AddressStreet != "" {
		address := fmt.Sprintf("%s, %s %s %s", customer.AddressStreet, customer.AddressCity, customer.AddressState, customer.AddressZip)
		pdf.CellFormat(190, 7, address, "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(90, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range invoice.Items {
		label := item.Title
		if label == "" {
			label = item.Description
		}
		if len(label) > 45 {
			label = label[:42] + "..."
		}
		unitPrice := fmt.Sprintf("%.2f", float64(item.UnitPriceCents)/100)
		lineTotal := fmt.Sprintf("%.2f", float64(item.LineTotalCents)/100)
		pdf.CellFormat(90, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, unitPrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, lineTotal, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(150, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, invoiceAmount(invoice.SubtotalCents), "1", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, invoiceAmount(invoice.TaxCents), "1", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, invoiceAmount(invoice.TotalCents), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func invoiceAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
