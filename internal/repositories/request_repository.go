package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	DB *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{DB: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO requests(user_id, customer_id, title, description, status, preferred_date)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		req.UserID, req.CustomerID, req.Title, req.Description, req.Status, req.PreferredDate,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *RequestRepository) Get(ctx context.Context, id, userID int) (*models.Request, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, customer_id, title, description, status, preferred_date, created_at, updated_at
         FROM requests WHERE id=$1 AND user_id=$2`, id, userID)

	var req models.Request
	err := row.Scan(&req.ID, &req.UserID, &req.CustomerID, &req.Title, &req.Description,
		&req.Status, &req.PreferredDate, &req.CreatedAt, &req.UpdatedAt)
	return &req, err
}

func (r *RequestRepository) List(ctx context.Context, userID int) ([]*models.Request, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, customer_id, title, description, status, preferred_date, created_at, updated_at
         FROM requests WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		var req models.Request
		err := rows.Scan(&req.ID, &req.UserID, &req.CustomerID, &req.Title, &req.Description,
			&req.Status, &req.PreferredDate, &req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}

func (r *RequestRepository) Update(ctx context.Context, req *models.Request) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE requests SET title=$1, description=$2, status=$3, preferred_date=$4,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$5 AND user_id=$6`,
		req.Title, req.Description, req.Status, req.PreferredDate, req.ID, req.UserID)
	return err
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id, userID int, status models.RequestStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE requests SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND user_id=$3`, status, id, userID)
	return err
}

func (r *RequestRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM requests WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}
