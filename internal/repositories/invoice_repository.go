package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `id, user_id, customer_id, job_id, quote_id, invoice_number, status,
         subtotal_cents, tax_cents, total_cents, due_date, paid_at, created_at, updated_at`

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

func scanInvoice(row interface{ Scan(...any) error }) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.UserID, &inv.CustomerID, &inv.JobID, &inv.QuoteID,
		&inv.InvoiceNumber, &inv.Status, &inv.SubtotalCents, &inv.TaxCents,
		&inv.TotalCents, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO invoices(user_id, customer_id, job_id, quote_id, invoice_number,
             status, subtotal_cents, tax_cents, total_cents, due_date)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		inv.UserID, inv.CustomerID, inv.JobID, inv.QuoteID, inv.InvoiceNumber,
		inv.Status, inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertInvoiceItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertInvoiceItems(ctx context.Context, tx pgx.Tx, invoiceID int, items []*models.InvoiceItem) error {
	for _, item := range items {
		err := tx.QueryRow(ctx,
			`INSERT INTO invoice_items(invoice_id, title, description, quantity,
                 unit_price_cents, line_total_cents, sort_order)
             VALUES($1, $2, $3, $4, $5, $6, $7)
             RETURNING id`,
			invoiceID, item.Title, item.Description, item.Quantity,
			item.UnitPriceCents, item.LineTotalCents, item.SortOrder,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.InvoiceID = invoiceID
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id, userID int) (*models.Invoice, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 AND user_id=$2`, id, userID)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_id, title, description, quantity, unit_price_cents,
             line_total_cents, sort_order
         FROM invoice_items WHERE invoice_id=$1 ORDER BY sort_order, id`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(&item.ID, &item.InvoiceID, &item.Title, &item.Description,
			&item.Quantity, &item.UnitPriceCents, &item.LineTotalCents, &item.SortOrder)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, &item)
	}
	return inv, rows.Err()
}

func (r *InvoiceRepository) List(ctx context.Context, userID int) ([]*models.Invoice, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
         WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id, userID int, status models.InvoiceStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND user_id=$3`, status, id, userID)
	return err
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status='paid', paid_at=CURRENT_TIMESTAMP,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

func (r *InvoiceRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM invoices WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

// NextSequence returns one past the highest numeric suffix issued for the
// tenant's invoice numbers. Deleting an invoice never frees its number. Two
// concurrent creates can still read the same value; callers must retry on a
// unique violation.
func (r *InvoiceRepository) NextSequence(ctx context.Context, userID int) (int, error) {
	var next int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(substring(invoice_number FROM '\d+$')::int), 0) + 1
         FROM invoices WHERE user_id=$1`, userID).Scan(&next)
	return next, err
}
