package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mail-assistant-go/internal/model"
)

// ErrNotFound is returned when no email has the requested id.
var ErrNotFound = errors.New("email not found")

const likeEscape = "!"

// EmailFilter holds the optional predicates of a filtered query.
// Zero values are ignored.
type EmailFilter struct {
	Recipient string
	From      time.Time
	To        time.Time
}

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) session(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// newestFirst orders by timestamp, breaking ties with the insertion id
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
}

func (r *Repository) Create(ctx context.Context, recipient, subject, body string) (*model.Email, error) {
	email := model.Email{
		Sender:    model.OwnerSender,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
	if err := r.session(ctx).Create(&email).Error; err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}
	return &email, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*model.Email, error) {
	var email model.Email
	result := r.session(ctx).First(&email, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &email, nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.session(ctx).Delete(&model.Email{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRead updates the read flag and returns the stored record.
func (r *Repository) SetRead(ctx context.Context, id uint, read bool) (*model.Email, error) {
	var email model.Email
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&email, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&email).Update("read", read).Error; err != nil {
			return err
		}
		return tx.First(&email, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update read flag: %w", err)
	}
	return &email, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]model.Email, error) {
	emails := []model.Email{}
	if err := newestFirst(r.session(ctx)).Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// Search matches keyword as a case-insensitive literal substring of subject, body or sender.
func (r *Repository) Search(ctx context.Context, keyword string) ([]model.Email, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"

	emails := []model.Email{}
	query := r.session(ctx).Where(
		"LOWER(subject) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(body) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(sender) LIKE ? ESCAPE '"+likeEscape+"'",
		pattern, pattern, pattern,
	)
	if err := newestFirst(query).Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	return emails, nil
}

func (r *Repository) Filter(ctx context.Context, f EmailFilter) ([]model.Email, error) {
	query := r.session(ctx)
	if f.Recipient != "" {
		query = query.Where(clause.Eq{Column: clause.Column{Name: "recipient"}, Value: f.Recipient})
	}
	if !f.From.IsZero() {
		query = query.Where(clause.Gte{Column: clause.Column{Name: "timestamp"}, Value: f.From.UTC()})
	}
	if !f.To.IsZero() {
		query = query.Where(clause.Lte{Column: clause.Column{Name: "timestamp"}, Value: f.To.UTC()})
	}

	emails := []model.Email{}
	if err := newestFirst(query).Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to filter emails: %w", err)
	}
	return emails, nil
}

func (r *Repository) Unread(ctx context.Context) ([]model.Email, error) {
	emails := []model.Email{}
	query := r.session(ctx).Where(clause.Eq{Column: clause.Column{Name: "read"}, Value: false})
	if err := newestFirst(query).Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list unread emails: %w", err)
	}
	return emails, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.session(ctx).Model(&model.Email{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count emails: %w", err)
	}
	return total, nil
}

// Reset replaces every stored email with the given ones in a single transaction.
func (r *Repository) Reset(ctx context.Context, emails []model.Email) error {
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Email{}).Error; err != nil {
			return err
		}
		if len(emails) == 0 {
			return nil
		}
		return tx.Create(&emails).Error
	})
	if err != nil {
		return fmt.Errorf("failed to reset emails: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
}
