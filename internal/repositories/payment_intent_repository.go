package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentIntentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentIntentRepository(db *pgxpool.Pool) *PaymentIntentRepository {
	return &PaymentIntentRepository{DB: db}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, p *models.PaymentIntent) error {
	metadata := p.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO payment_intents(user_id, invoice_id, provider_order_id,
             amount_cents, currency, status, metadata)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		p.UserID, p.InvoiceID, p.ProviderOrderID, p.AmountCents, p.Currency,
		p.Status, metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentIntentRepository) Get(ctx context.Context, id, userID int) (*models.PaymentIntent, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, invoice_id, provider_order_id, amount_cents, currency,
             status, metadata, created_at, updated_at
         FROM payment_intents WHERE id=$1 AND user_id=$2`, id, userID)

	var p models.PaymentIntent
	err := row.Scan(&p.ID, &p.UserID, &p.InvoiceID, &p.ProviderOrderID, &p.AmountCents,
		&p.Currency, &p.Status, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *PaymentIntentRepository) GetByProviderOrder(ctx context.Context, orderID string) (*models.PaymentIntent, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, invoice_id, provider_order_id, amount_cents, currency,
             status, metadata, created_at, updated_at
         FROM payment_intents WHERE provider_order_id=$1`, orderID)

	var p models.PaymentIntent
	err := row.Scan(&p.ID, &p.UserID, &p.InvoiceID, &p.ProviderOrderID, &p.AmountCents,
		&p.Currency, &p.Status, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *PaymentIntentRepository) UpdateStatus(ctx context.Context, id int, status models.PaymentIntentStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE payment_intents SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2`, status, id)
	return err
}
