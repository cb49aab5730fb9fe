package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/models"
)

// Message is one transactional email. DocumentType/DocumentID tag the send
// for audit logging.
type Message struct {
	To           []string
	Subject      string
	HTMLBody     string
	TextBody     string
	DocumentType string
	DocumentID   int
}

// Provider is an interface for sending transactional email
type Provider interface {
	Send(ctx context.Context, userID int, msg *Message) error
	SetLogRepository(repo LogRepo)
}

// LogRepo interface for the sent_emails audit trail
type LogRepo interface {
	Create(ctx context.Context, entry *models.SentEmail) error
}

// APIService implements Provider against a JSON email API (Resend-style)
type APIService struct {
	apiKey    string
	apiURL    string
	fromName  string
	fromEmail string
	logRepo   LogRepo
	client    *http.Client
}

func NewAPIService(cfg *config.Config) *APIService {
	return &APIService{
		apiKey:    cfg.Email.APIKey,
		apiURL:    cfg.Email.APIURL,
		fromName:  cfg.Email.FromName,
		fromEmail: cfg.Email.FromEmail,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetLogRepository sets the audit log repository
func (s *APIService) SetLogRepository(repo LogRepo) {
	s.logRepo = repo
}

type apiPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send posts the message to the provider API and records the attempt in the
// sent_emails audit table, success or failure.
func (s *APIService) Send(ctx context.Context, userID int, msg *Message) error {
	providerID, sendErr := s.send(ctx, msg)

	if s.logRepo != nil {
		entry := &models.SentEmail{
			UserID:       userID,
			DocumentType: msg.DocumentType,
			DocumentID:   msg.DocumentID,
			Recipients:   strings.Join(msg.To, ","),
			Subject:      msg.Subject,
			ProviderID:   providerID,
			Status:       "sent",
		}
		if sendErr != nil {
			entry.Status = "failed"
			entry.ErrorMessage = sendErr.Error()
		}
		if err := s.logRepo.Create(ctx, entry); err != nil {
			log.Printf("[Email] failed to record send attempt: %v", err)
		}
	}

	return sendErr
}

func (s *APIService) send(ctx context.Context, msg *Message) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("email API key not configured")
	}
	if len(msg.To) == 0 {
		return "", fmt.Errorf("no recipients")
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	body, err := json.Marshal(apiPayload{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTMLBody,
		Text:    msg.TextBody,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var parsed apiResponse
	json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 300 {
		if parsed.Message != "" {
			return "", fmt.Errorf("email provider error (%d): %s", resp.StatusCode, parsed.Message)
		}
		return "", fmt.Errorf("email provider error (%d)", resp.StatusCode)
	}

	return parsed.ID, nil
}

// MockService logs messages instead of sending them, for development
type MockService struct {
	logRepo LogRepo
}

func NewMockService() *MockService {
	return &MockService{}
}

func (s *MockService) SetLogRepository(repo LogRepo) {
	s.logRepo = repo
}

func (s *MockService) Send(ctx context.Context, userID int, msg *Message) error {
	log.Printf("[MockEmail] to=%v subject=%q (%s #%d)", msg.To, msg.Subject, msg.DocumentType, msg.DocumentID)

	if s.logRepo != nil {
		entry := &models.SentEmail{
			UserID:       userID,
			DocumentType: msg.DocumentType,
			DocumentID:   msg.DocumentID,
			Recipients:   strings.Join(msg.To, ","),
			Subject:      msg.Subject,
			ProviderID:   "mock",
			Status:       "sent",
		}
		if err := s.logRepo.Create(ctx, entry); err != nil {
			log.Printf("[MockEmail] failed to record send attempt: %v", err)
		}
	}
	return nil
}
