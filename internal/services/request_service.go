package services

import (
	"context"
	"errors"

	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type RequestService struct {
	repo         *repositories.RequestRepository
	customerRepo *repositories.CustomerRepository
	quoteService *QuoteService
	hub          *realtime.Hub
}

func NewRequestService(
	repo *repositories.RequestRepository,
	customerRepo *repositories.CustomerRepository,
	quoteService *QuoteService,
	hub *realtime.Hub,
) *RequestService {
	return &RequestService{
		repo:         repo,
		customerRepo: customerRepo,
		quoteService: quoteService,
		hub:          hub,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, userID int, req *models.CreateRequestRequest) (*models.Request, error) {
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

	request := &models.Request{
		UserID:        userID,
		CustomerID:    req.CustomerID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.RequestStatusNew,
		PreferredDate: req.PreferredDate,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "requests", Type: realtime.EventInsert, Record: request, UserID: userID})
	return request, nil
}

func (s *RequestService) GetRequest(ctx context.Context, id, userID int) (*models.Request, error) {
	request, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *RequestService) ListRequests(ctx context.Context, userID int) ([]*models.Request, error) {
	return s.repo.List(ctx, userID)
}

func (s *RequestService) UpdateRequest(ctx context.Context, id, userID int, req *models.UpdateRequestRequest) (*models.Request, error) {
	request, err := s.GetRequest(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}

	request.Title = req.Title
	request.Description = req.Description
	request.PreferredDate = req.PreferredDate
	if req.Status != "" {
		request.Status = req.Status
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "requests", Type: realtime.EventUpdate, Record: request, UserID: userID})
	return request, nil
}

// ConvertToQuote creates a draft quote from the request and marks the
// request converted.
func (s *RequestService) ConvertToQuote(ctx context.Context, id, userID int) (*models.Quote, error) {
	request, err := s.GetRequest(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if request.Status == models.RequestStatusConverted {
		return nil, validationErrorf("request has already been converted")
	}

	requestID := request.ID
	quote, err := s.quoteService.CreateQuote(ctx, userID, &models.SaveQuoteRequest{
		CustomerID:  request.CustomerID,
		RequestID:   &requestID,
		Title:       request.Title,
		Description: request.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, models.RequestStatusConverted); err != nil {
		return nil, err
	}

	request.Status = models.RequestStatusConverted
	s.hub.Publish(realtime.Event{Table: "requests", Type: realtime.EventUpdate, Record: request, UserID: userID})
	return quote, nil
}

func (s *RequestService) DeleteRequest(ctx context.Context, id, userID int) error {
	request, err := s.GetRequest(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{Table: "requests", Type: realtime.EventDelete, Record: request, UserID: userID})
	return nil
}
