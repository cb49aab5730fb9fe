package models

import "time"

// JobStatus is the state variable of the job workflow.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// jobTransitions restricts job status changes: pending → in_progress →
// completed, cancellation from any active state, and cancelled → pending
// reactivation.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {JobStatusPending},
}

func (s JobStatus) IsValid() bool {
	_, ok := jobTransitions[s]
	return ok
}

func (s JobStatus) CanTransition(target JobStatus) bool {
	for _, next := range jobTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s JobStatus) NextStatuses() []JobStatus {
	next := jobTransitions[s]
	out := make([]JobStatus, len(next))
	copy(out, next)
	return out
}

type Job struct {
	ID             int        `json:"id"`
	UserID         int        `json:"user_id"`
	CustomerID     int        `json:"customer_id"`
	QuoteID        *int       `json:"quote_id"`
	RequestID      *int       `json:"request_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         JobStatus  `json:"status"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateJobRequest represents the request body for creating a job
type CreateJobRequest struct {
	CustomerID     int        `json:"customer_id"`
	QuoteID        *int       `json:"quote_id"`
	RequestID      *int       `json:"request_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	Notes          string     `json:"notes"`
}

// UpdateJobRequest represents the request body for updating a job
type UpdateJobRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
}

// ChangeJobStatusRequest carries the target status plus an optional
// annotation appended to the job's notes audit trail.
type ChangeJobStatusRequest struct {
	Status     JobStatus `json:"status"`
	Annotation string    `json:"annotation"`
}
