package services

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/model"
	"github.com/sahilchouksey/campus-records/utils/metrics"
	"github.com/sahilchouksey/campus-records/utils/validation"
	"gorm.io/gorm"
)

const (
	entityInstitute = "institute"
	entityCourse    = "course"
	entityStudent   = "student"
	entitySearch    = "search"

	// nameRules applies to institute, course and student names
	nameRules = "required,max=100"
)

// SearchCache stores search results between mutations. GetSearch reports the
// generation it looked under; SetSearch writes under that generation so a
// result read before a mutation never lands in the post-mutation namespace.
type SearchCache interface {
	GetSearch(ctx context.Context, query string) ([]model.SearchResult, string, bool, error)
	SetSearch(ctx context.Context, generation, query string, results []model.SearchResult) error
	InvalidateSearch(ctx context.Context) error
}

// EntityStore owns institutes, courses and students. Every operation runs in
// a single transaction on the handle it was built with.
type EntityStore struct {
	db        *gorm.DB
	validator *validation.Validator
	cache     SearchCache
	metrics   *metrics.Metrics
}

// EntityStoreOption customises an EntityStore
type EntityStoreOption func(*EntityStore)

// WithSearchCache enables caching of search results
func WithSearchCache(cache SearchCache) EntityStoreOption {
	return func(s *EntityStore) {
		s.cache = cache
	}
}

// WithMetrics records operation counts and durations
func WithMetrics(m *metrics.Metrics) EntityStoreOption {
	return func(s *EntityStore) {
		s.metrics = m
	}
}

// NewEntityStore creates a new entity store
func NewEntityStore(db *gorm.DB, opts ...EntityStoreOption) *EntityStore {
	s := &EntityStore{
		db:        db,
		validator: validation.NewValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run executes fn in a transaction and normalises whatever it returns into a
// *StoreError. Mutations invalidate the search cache after commit.
func (s *EntityStore) run(ctx context.Context, entity, operation string, mutates bool, fn func(tx *gorm.DB) error) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			storeErr = internalError(entity, "Failed to "+operation+" "+entity, err)
		}
		if storeErr.Kind == KindInternal {
			log.Errorf("[STORE] %s %s failed: %v", operation, entity, storeErr)
		}
		s.metrics.ObserveStore(entity, operation, string(storeErr.Kind), start)
		return storeErr
	}

	s.metrics.ObserveStore(entity, operation, "ok", start)
	if mutates {
		s.invalidateSearch(ctx)
	}
	return nil
}

func (s *EntityStore) validateStruct(entity string, input interface{}) error {
	if err := s.validator.ValidateStruct(input); err != nil {
		return validationError(entity, validation.Message(err))
	}
	return nil
}

// optionalName resolves a partial-update name field. ok is false when the
// field was not supplied.
func (s *EntityStore) optionalName(entity, field string, opt model.Optional[string]) (string, bool, error) {
	if !opt.IsSet() {
		return "", false, nil
	}
	if opt.IsNull() {
		return "", false, validationError(entity, field+" cannot be null")
	}
	value, _ := opt.Get()
	value = validation.SanitizeString(value)
	if err := s.validator.ValidateVar(field, value, nameRules); err != nil {
		return "", false, validationError(entity, err.Error())
	}
	return value, true, nil
}

// optionalID resolves a partial-update foreign key field
func optionalID(entity, field string, opt model.Optional[uint]) (uint, bool, error) {
	if !opt.IsSet() {
		return 0, false, nil
	}
	value, ok := opt.Get()
	if !ok {
		return 0, false, validationError(entity, field+" cannot be null")
	}
	if value == 0 {
		return 0, false, validationError(entity, field+" is required")
	}
	return value, true, nil
}

// classifyWrite maps an engine rejection on insert/update/delete to the same
// typed error the pre-checks produce.
func classifyWrite(entity string, err error, duplicateName string) error {
	switch {
	case isUniqueViolation(err):
		return duplicateNameError(duplicateName, err)
	case isForeignKeyViolation(err):
		return referentialError(entity, "Referenced record does not exist", err)
	default:
		return internalError(entity, "Failed to write "+entity, err)
	}
}

func exists(tx *gorm.DB, table interface{}, column string, id uint) (bool, error) {
	var count int64
	if err := tx.Model(table).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *EntityStore) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearch(ctx); err != nil {
		log.Warnf("[STORE] search cache invalidation failed: %v", err)
	}
}
