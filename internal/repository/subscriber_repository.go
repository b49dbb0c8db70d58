package repository

import (
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/model"
)

// SubscriberRepositoryInterface defines the store operations used by services
type SubscriberRepositoryInterface interface {
	FindByEmail(email string) (*model.Subscriber, error)
	FindByToken(token string) (*model.Subscriber, error)
	Insert(s *model.Subscriber) error
	Update(s *model.Subscriber) error
	ListAll() ([]model.Subscriber, error)
}

// SubscriberRepository is the Postgres implementation
type SubscriberRepository struct {
	DB *sql.DB
}

const subscriberColumns = `id, company, email, whatsapp, consent, confirmed, COALESCE(confirm_token, '')`

// FindByEmail fetches a subscriber by email, case-insensitively
func (r *SubscriberRepository) FindByEmail(email string) (*model.Subscriber, error) {
	query := `
        SELECT ` + subscriberColumns + `
        FROM subscribers
        WHERE LOWER(email) = LOWER($1)
    `
	return scanSubscriber(r.DB.QueryRow(query, email))
}

// FindByToken fetches a subscriber by its confirmation token, exact match
func (r *SubscriberRepository) FindByToken(token string) (*model.Subscriber, error) {
	if token == "" {
		return nil, nil
	}
	query := `
        SELECT ` + subscriberColumns + `
        FROM subscribers
        WHERE confirm_token = $1
    `
	return scanSubscriber(r.DB.QueryRow(query, token))
}

// Insert creates a new subscriber. The unique index on lower(email) rejects
// a concurrent insert for the same address, surfaced as ErrDuplicateEmail.
func (r *SubscriberRepository) Insert(s *model.Subscriber) error {
	query := `
        INSERT INTO subscribers (company, email, whatsapp, consent, confirmed, confirm_token)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
        RETURNING id
    `
	err := r.DB.QueryRow(query, s.Company, s.Email, s.Whatsapp, s.Consent, s.Confirmed, s.ConfirmToken).Scan(&s.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.NewDuplicateEmail(s.Email)
		}
		return err
	}
	return nil
}

// Update persists the mutable fields of an existing subscriber
func (r *SubscriberRepository) Update(s *model.Subscriber) error {
	query := `
        UPDATE subscribers
        SET company=$1, whatsapp=$2, consent=$3, confirmed=$4, confirm_token=NULLIF($5, '')
        WHERE id=$6
    `
	_, err := r.DB.Exec(query, s.Company, s.Whatsapp, s.Consent, s.Confirmed, s.ConfirmToken, s.ID)
	return err
}

// ListAll fetches every subscriber (export and debug listing)
func (r *SubscriberRepository) ListAll() ([]model.Subscriber, error) {
	query := `
        SELECT ` + subscriberColumns + `
        FROM subscribers
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Company, &s.Email, &s.Whatsapp, &s.Consent, &s.Confirmed, &s.ConfirmToken); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

func scanSubscriber(row *sql.Row) (*model.Subscriber, error) {
	var s model.Subscriber
	err := row.Scan(&s.ID, &s.Company, &s.Email, &s.Whatsapp, &s.Consent, &s.Confirmed, &s.ConfirmToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &s, nil
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
