package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const quoteColumns = `id, user_id, customer_id, request_id, quote_number, title, description,
         status, subtotal_cents, tax_cents, total_cents, valid_until, created_at, updated_at`

type QuoteRepository struct {
	DB *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{DB: db}
}

func scanQuote(row interface{ Scan(...any) error }) (*models.Quote, error) {
	var q models.Quote
	err := row.Scan(&q.ID, &q.UserID, &q.CustomerID, &q.RequestID, &q.QuoteNumber,
		&q.Title, &q.Description, &q.Status, &q.SubtotalCents, &q.TaxCents,
		&q.TotalCents, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt)
	return &q, err
}

// Create inserts the quote and its line items in one transaction.
func (r *QuoteRepository) Create(ctx context.Context, q *models.Quote) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quotes(user_id, customer_id, request_id, quote_number, title, description,
             status, subtotal_cents, tax_cents, total_cents, valid_until)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		q.UserID, q.CustomerID, q.RequestID, q.QuoteNumber, q.Title, q.Description,
		q.Status, q.SubtotalCents, q.TaxCents, q.TotalCents, q.ValidUntil,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuoteItems(ctx, tx, q.ID, q.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites the quote header and replaces its line items wholesale.
func (r *QuoteRepository) Update(ctx context.Context, q *models.Quote) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE quotes SET customer_id=$1, request_id=$2, title=$3, description=$4,
             subtotal_cents=$5, tax_cents=$6, total_cents=$7, valid_until=$8,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$9 AND user_id=$10`,
		q.CustomerID, q.RequestID, q.Title, q.Description,
		q.SubtotalCents, q.TaxCents, q.TotalCents, q.ValidUntil, q.ID, q.UserID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id=$1`, q.ID); err != nil {
		return err
	}
	if err := insertQuoteItems(ctx, tx, q.ID, q.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertQuoteItems(ctx context.Context, tx pgx.Tx, quoteID int, items []*models.QuoteItem) error {
	for _, item := range items {
		err := tx.QueryRow(ctx,
			`INSERT INTO quote_items(quote_id, title, description, quantity,
                 unit_price_cents, line_total_cents, sort_order)
             VALUES($1, $2, $3, $4, $5, $6, $7)
             RETURNING id`,
			quoteID, item.Title, item.Description, item.Quantity,
			item.UnitPriceCents, item.LineTotalCents, item.SortOrder,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.QuoteID = quoteID
	}
	return nil
}

func (r *QuoteRepository) Get(ctx context.Context, id, userID int) (*models.Quote, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id=$1 AND user_id=$2`, id, userID)
	q, err := scanQuote(row)
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

func (r *QuoteRepository) listItems(ctx context.Context, quoteID int) ([]*models.QuoteItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, quote_id, title, description, quantity, unit_price_cents,
             line_total_cents, sort_order
         FROM quote_items WHERE quote_id=$1 ORDER BY sort_order, id`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.QuoteItem
	for rows.Next() {
		var item models.QuoteItem
		err := rows.Scan(&item.ID, &item.QuoteID, &item.Title, &item.Description,
			&item.Quantity, &item.UnitPriceCents, &item.LineTotalCents, &item.SortOrder)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *QuoteRepository) List(ctx context.Context, userID int) ([]*models.Quote, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes
         WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// UpdateStatus sets the quote's status scoped to (id, user_id) and reports
// whether a row was touched. Last write wins; no version check is made.
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id, userID int, status models.QuoteStatus) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE quotes SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND user_id=$3`, status, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *QuoteRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM quotes WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

// NextSequence returns one past the highest numeric suffix issued for the
// tenant's quote numbers. Deleting a quote never frees its number. Two
// concurrent creates can still read the same value; callers must retry on a
// unique violation.
func (r *QuoteRepository) NextSequence(ctx context.Context, userID int) (int, error) {
	var next int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(substring(quote_number FROM '\d+$')::int), 0) + 1
         FROM quotes WHERE user_id=$1`, userID).Scan(&next)
	return next, err
}
