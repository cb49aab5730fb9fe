package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type JobService struct {
	repo         *repositories.JobRepository
	customerRepo *repositories.CustomerRepository
	hub          *realtime.Hub
}

func NewJobService(repo *repositories.JobRepository, customerRepo *repositories.CustomerRepository, hub *realtime.Hub) *JobService {
	return &JobService{repo: repo, customerRepo: customerRepo, hub: hub}
}

func (s *JobService) CreateJob(ctx context.Context, userID int, req *models.CreateJobRequest) (*models.Job, error) {
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}
	if req.CustomerID == 0 {
		return nil, validationErrorf("customer_id is required")
	}
	if _, err := s.customerRepo.Get(ctx, req.CustomerID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	job := &models.Job{
		UserID:         userID,
		CustomerID:     req.CustomerID,
		QuoteID:        req.QuoteID,
		RequestID:      req.RequestID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.JobStatusPending,
		ScheduledDate:  req.ScheduledDate,
		EstimatedHours: req.EstimatedHours,
		Notes:          req.Notes,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "jobs", Type: realtime.EventInsert, Record: job, UserID: userID})
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id, userID int) (*models.Job, error) {
	job, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context, userID int) ([]*models.Job, error) {
	return s.repo.List(ctx, userID)
}

func (s *JobService) ListJobsByCustomer(ctx context.Context, customerID, userID int) ([]*models.Job, error) {
	return s.repo.ListByCustomer(ctx, customerID, userID)
}

func (s *JobService) UpdateJob(ctx context.Context, id, userID int, req *models.UpdateJobRequest) (*models.Job, error) {
	job, err := s.GetJob(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}

	job.Title = req.Title
	job.Description = req.Description
	job.ScheduledDate = req.ScheduledDate
	job.EstimatedHours = req.EstimatedHours
	job.ActualHours = req.ActualHours

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "jobs", Type: realtime.EventUpdate, Record: job, UserID: userID})
	return job, nil
}

// ChangeStatus moves the job through its workflow and appends a timestamped
// annotation line to the notes audit trail.
func (s *JobService) ChangeStatus(ctx context.Context, id, userID int, req *models.ChangeJobStatusRequest) (*models.Job, error) {
	if !req.Status.IsValid() {
		return nil, validationErrorf("unknown job status %q", req.Status)
	}

	job, err := s.GetJob(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !job.Status.CanTransition(req.Status) {
		return nil, validationErrorf("cannot change job status from %q to %q", job.Status, req.Status)
	}

	noteLine := fmt.Sprintf("[%s] %s → %s", time.Now().Format("2006-01-02 15:04"), job.Status, req.Status)
	if req.Annotation != "" {
		noteLine += ": " + req.Annotation
	}

	updated, err := s.repo.UpdateStatus(ctx, id, userID, req.Status, noteLine)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}

	job, err = s.GetJob(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "jobs", Type: realtime.EventUpdate, Record: job, UserID: userID})
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id, userID int) error {
	job, err := s.GetJob(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{Table: "jobs", Type: realtime.EventDelete, Record: job, UserID: userID})
	return nil
}
