package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies every failure the entity store reports
type ErrorKind string

const (
	KindValidation           ErrorKind = "validation"
	KindNotFound             ErrorKind = "not_found"
	KindDuplicateName        ErrorKind = "duplicate_name"
	KindReferentialIntegrity ErrorKind = "referential_integrity"
	KindInternal             ErrorKind = "internal"
)

// Sentinels for errors.Is; every *StoreError matches the one of its kind.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrDuplicateName        = errors.New("duplicate name")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInternal             = errors.New("internal error")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:           ErrValidation,
	KindNotFound:             ErrNotFound,
	KindDuplicateName:        ErrDuplicateName,
	KindReferentialIntegrity: ErrReferentialIntegrity,
	KindInternal:             ErrInternal,
}

// StoreError is the typed failure returned by EntityStore operations
type StoreError struct {
	Kind    ErrorKind
	Entity  string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) ErrorKind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return KindInternal
}

func validationError(entity, message string) *StoreError {
	return &StoreError{Kind: KindValidation, Entity: entity, Message: message}
}

func notFoundError(entity string, id uint) *StoreError {
	return &StoreError{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %d not found", capitalize(entity), id),
	}
}

func duplicateNameError(name string, err error) *StoreError {
	return &StoreError{
		Kind:    KindDuplicateName,
		Entity:  entityInstitute,
		Message: fmt.Sprintf("Institute with name %q already exists", name),
		Err:     err,
	}
}

func referentialError(entity, message string, err error) *StoreError {
	return &StoreError{Kind: KindReferentialIntegrity, Entity: entity, Message: message, Err: err}
}

func internalError(entity, message string, err error) *StoreError {
	return &StoreError{Kind: KindInternal, Entity: entity, Message: message, Err: err}
}

// isUniqueViolation recognises a unique-constraint rejection from the engine.
// Translated GORM errors cover postgres and sqlite; the message checks catch
// drivers without a translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// isForeignKeyViolation recognises a foreign-key rejection from the engine
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23503") ||
		strings.Contains(msg, "violates foreign key constraint")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
