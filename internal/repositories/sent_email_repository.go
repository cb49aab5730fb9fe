package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SentEmailRepository struct {
	DB *pgxpool.Pool
}

func NewSentEmailRepository(db *pgxpool.Pool) *SentEmailRepository {
	return &SentEmailRepository{DB: db}
}

func (r *SentEmailRepository) Create(ctx context.Context, e *models.SentEmail) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO sent_emails(user_id, document_type, document_id, recipients,
             subject, provider_id, status, error_message)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		e.UserID, e.DocumentType, e.DocumentID, e.Recipients, e.Subject,
		e.ProviderID, e.Status, e.ErrorMessage,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *SentEmailRepository) ListByDocument(ctx context.Context, userID int, documentType string, documentID int) ([]*models.SentEmail, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, document_type, document_id, recipients, subject,
             provider_id, status, error_message, created_at
         FROM sent_emails
         WHERE user_id=$1 AND document_type=$2 AND document_id=$3
         ORDER BY created_at DESC`, userID, documentType, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []*models.SentEmail
	for rows.Next() {
		var e models.SentEmail
		err := rows.Scan(&e.ID, &e.UserID, &e.DocumentType, &e.DocumentID, &e.Recipients,
			&e.Subject, &e.ProviderID, &e.Status, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		emails = append(emails, &e)
	}
	return emails, rows.Err()
}
