// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrDuplicateEmail is a sentinel error for the unique-email invariant.
type ErrDuplicateEmail struct {
	Email string
}

func (e *ErrDuplicateEmail) Error() string {
	return fmt.Sprintf("subscriber with email %s already exists", e.Email)
}

// Helper constructor
func NewDuplicateEmail(email string) error {
	return &ErrDuplicateEmail{Email: email}
}

func IsDuplicateEmail(err error) bool {
	var dup *ErrDuplicateEmail
	return errors.As(err, &dup)
}

// ErrSubscriberNotFound is returned by lookups that require an existing record.
type ErrSubscriberNotFound struct {
	Email string
}

func (e *ErrSubscriberNotFound) Error() string {
	return fmt.Sprintf("subscriber with email %s not found", e.Email)
}

func NewSubscriberNotFound(email string) error {
	return &ErrSubscriberNotFound{Email: email}
}

func IsSubscriberNotFound(err error) bool {
	var nf *ErrSubscriberNotFound
	return errors.As(err, &nf)
}

// ErrInvalidToken is returned when a confirmation token matches no record.
type ErrInvalidToken struct {
	Token string
}

func (e *ErrInvalidToken) Error() string {
	return fmt.Sprintf("no subscriber for token %s", e.Token)
}

func NewInvalidToken(token string) error {
	return &ErrInvalidToken{Token: token}
}

func IsInvalidToken(err error) bool {
	var inv *ErrInvalidToken
	return errors.As(err, &inv)
}
