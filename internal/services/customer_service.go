package services

import (
	"context"
	"encoding/json"
	"errors"

	"crm-backend/internal/cache"
	"crm-backend/internal/models"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type CustomerService struct {
	repo *repositories.CustomerRepository
	hub  *realtime.Hub
}

func NewCustomerService(repo *repositories.CustomerRepository, hub *realtime.Hub) *CustomerService {
	return &CustomerService{repo: repo, hub: hub}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, userID int, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, validationErrorf("first_name and last_name are required")
	}

	customer := &models.Customer{
		UserID:        userID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		CompanyName:   req.CompanyName,
		AddressStreet: req.AddressStreet,
		AddressCity:   req.AddressCity,
		AddressState:  req.AddressState,
		AddressZip:    req.AddressZip,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, validationErrorf("a customer with email %q already exists", req.Email)
		}
		return nil, err
	}

	cache.InvalidateCustomerList(ctx, userID)
	s.hub.Publish(realtime.Event{Table: "customers", Type: realtime.EventInsert, Record: customer, UserID: userID})
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id, userID int) (*models.Customer, error) {
	customer, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns the tenant's customers, served from the Redis cache
// when warm.
func (s *CustomerService) ListCustomers(ctx context.Context, userID int) ([]*models.Customer, error) {
	if data, ok := cache.GetCachedCustomerList(ctx, userID); ok {
		var customers []*models.Customer
		if err := json.Unmarshal(data, &customers); err == nil {
			return customers, nil
		}
	}

	customers, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(customers); err == nil {
		cache.SetCachedCustomerList(ctx, userID, data)
	}
	return customers, nil
}

func (s *CustomerService) SearchCustomers(ctx context.Context, userID int, query string) ([]*models.Customer, error) {
	if query == "" {
		return s.ListCustomers(ctx, userID)
	}
	return s.repo.Search(ctx, userID, query)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id, userID int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, validationErrorf("first_name and last_name are required")
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.CompanyName = req.CompanyName
	customer.AddressStreet = req.AddressStreet
	customer.AddressCity = req.AddressCity
	customer.AddressState = req.AddressState
	customer.AddressZip = req.AddressZip
	customer.Notes = req.Notes

	if err := s.repo.Update(ctx, customer); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, validationErrorf("a customer with email %q already exists", req.Email)
		}
		return nil, err
	}

	cache.InvalidateCustomerList(ctx, userID)
	s.hub.Publish(realtime.Event{Table: "customers", Type: realtime.EventUpdate, Record: customer, UserID: userID})
	return customer, nil
}

// DeleteCustomer removes the customer row. The schema cascades the delete
// to the customer's quotes, jobs, requests and invoices; the UI is expected
// to warn before calling this.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id, userID int) error {
	customer, err := s.GetCustomer(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	cache.InvalidateCustomerList(ctx, userID)
	s.hub.Publish(realtime.Event{Table: "customers", Type: realtime.EventDelete, Record: customer, UserID: userID})
	return nil
}
