package repositories

import (
	"context"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, user_id, customer_id, quote_id, request_id, title, description,
         status, scheduled_date, estimated_hours, actual_hours, notes, created_at, updated_at`

type JobRepository struct {
	DB *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{DB: db}
}

func scanJob(row interface{ Scan(...any) error }) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.UserID, &j.CustomerID, &j.QuoteID, &j.RequestID,
		&j.Title, &j.Description, &j.Status, &j.ScheduledDate,
		&j.EstimatedHours, &j.ActualHours, &j.Notes, &j.CreatedAt, &j.UpdatedAt)
	return &j, err
}

func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO jobs(user_id, customer_id, quote_id, request_id, title, description,
             status, scheduled_date, estimated_hours, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		j.UserID, j.CustomerID, j.QuoteID, j.RequestID, j.Title, j.Description,
		j.Status, j.ScheduledDate, j.EstimatedHours, j.Notes,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

func (r *JobRepository) Get(ctx context.Context, id, userID int) (*models.Job, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id=$1 AND user_id=$2`, id, userID)
	return scanJob(row)
}

func (r *JobRepository) List(ctx context.Context, userID int) ([]*models.Job, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) ListByCustomer(ctx context.Context, customerID, userID int) ([]*models.Job, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE customer_id=$1 AND user_id=$2 ORDER BY created_at DESC`, customerID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Update(ctx context.Context, j *models.Job) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE jobs SET title=$1, description=$2, scheduled_date=$3,
             estimated_hours=$4, actual_hours=$5, updated_at=CURRENT_TIMESTAMP
         WHERE id=$6 AND user_id=$7`,
		j.Title, j.Description, j.ScheduledDate, j.EstimatedHours, j.ActualHours,
		j.ID, j.UserID)
	return err
}

// UpdateStatus sets the job status and appends the annotation to the notes
// audit trail in the same statement. Notes are append-only.
func (r *JobRepository) UpdateStatus(ctx context.Context, id, userID int, status models.JobStatus, noteLine string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE jobs SET status=$1,
             notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$3 AND user_id=$4`, status, noteLine, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *JobRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM jobs WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}
