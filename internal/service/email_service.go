package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/metrics"
	"mail-assistant-go/internal/model"
	"mail-assistant-go/internal/repository"
)

// DateLayout is the calendar date format accepted by Filter
const DateLayout = "2006-01-02"

// Reset triggers, used as a metric label
const (
	TriggerStartup  = "startup"
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
)

// FilterParams carries the raw filter parameters of a request. Empty strings are ignored.
type FilterParams struct {
	Recipient string
	DateFrom  string
	DateTo    string
}

// EmailService translates request parameters into store operations
type EmailService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewEmailService creates a new email service
func NewEmailService(repo *repository.Repository, m *metrics.Metrics) *EmailService {
	return &EmailService{
		repo:    repo,
		metrics: m,
		now:     time.Now,
	}
}

// Send creates a new email from the mailbox owner
func (s *EmailService) Send(ctx context.Context, recipient, subject, body string) (*model.Email, error) {
	email, err := s.repo.Create(ctx, recipient, subject, body)
	if err != nil {
		return nil, err
	}

	s.metrics.EmailsSent.Inc()
	s.metrics.StoredEmails.Inc()
	logrus.WithFields(logrus.Fields{"email_id": email.ID, "recipient": recipient}).Info("Email sent")
	return email, nil
}

// Get returns a single email
func (s *EmailService) Get(ctx context.Context, id uint) (*model.Email, error) {
	email, err := s.repo.Get(ctx, id)
	return email, translate(err)
}

// Delete removes an email permanently
func (s *EmailService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}

	s.metrics.EmailsDeleted.Inc()
	s.metrics.StoredEmails.Dec()
	logrus.WithField("email_id", id).Info("Email deleted")
	return nil
}

// MarkRead sets the read flag
func (s *EmailService) MarkRead(ctx context.Context, id uint) (*model.Email, error) {
	email, err := s.repo.SetRead(ctx, id, true)
	return email, translate(err)
}

// MarkUnread clears the read flag
func (s *EmailService) MarkUnread(ctx context.Context, id uint) (*model.Email, error) {
	email, err := s.repo.SetRead(ctx, id, false)
	return email, translate(err)
}

// List returns every email, newest first
func (s *EmailService) List(ctx context.Context) ([]model.Email, error) {
	return s.repo.ListAll(ctx)
}

// Unread returns emails not yet read, newest first
func (s *EmailService) Unread(ctx context.Context) ([]model.Email, error) {
	return s.repo.Unread(ctx)
}

// Search returns emails whose subject, body or sender contains keyword, ignoring case
func (s *EmailService) Search(ctx context.Context, keyword string) ([]model.Email, error) {
	return s.repo.Search(ctx, keyword)
}

// Filter returns emails matching every supplied parameter. Dates are inclusive
// bounds at midnight UTC.
func (s *EmailService) Filter(ctx context.Context, params FilterParams) ([]model.Email, error) {
	filter := repository.EmailFilter{Recipient: params.Recipient}

	if params.DateFrom != "" {
		from, err := time.Parse(DateLayout, params.DateFrom)
		if err != nil {
			return nil, &InvalidArgumentError{Param: "date_from", Detail: "Invalid date_from format. Use YYYY-MM-DD"}
		}
		filter.From = from
	}

	if params.DateTo != "" {
		to, err := time.Parse(DateLayout, params.DateTo)
		if err != nil {
			return nil, &InvalidArgumentError{Param: "date_to", Detail: "Invalid date_to format. Use YYYY-MM-DD"}
		}
		filter.To = to
	}

	return s.repo.Filter(ctx, filter)
}

// Count returns the number of stored emails
func (s *EmailService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// ResetToSeed replaces the store content with the fixed sample set
func (s *EmailService) ResetToSeed(ctx context.Context, trigger string) error {
	emails := SeedEmails(s.now())
	if err := s.repo.Reset(ctx, emails); err != nil {
		return err
	}

	s.metrics.Resets.WithLabelValues(trigger).Inc()
	s.metrics.StoredEmails.Set(float64(len(emails)))
	logrus.WithFields(logrus.Fields{"trigger": trigger, "count": len(emails)}).Info("Database reset to seed emails")
	return nil
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
