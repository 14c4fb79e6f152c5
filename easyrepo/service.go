package easyrepo

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

// Repository is the storage contract EasyService works on.
// MemoryRepository satisfies it.
type Repository[T any] interface {
	List() []T
	Len() int
	FindByID(id string) (T, bool)
	Create(item T) T
	Update(id string, item T) (T, bool)
	Delete(id string) (T, bool)
}

// EasyService centralizes business logic and data validation
// It encapsulates the repository and uses the validator to ensure data integrity
type EasyService[T any] struct {
	valid *validator.Validate
	repo  Repository[T]
	hooks *Hooks[T]
}

// Hooks stores the data validations and business logic registered for
// execution before creates and updates
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook allows you to create custom validation and/or transformation functions
// which are applied after the struct tags passed and before the item is stored.
// existing is nil on creates.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// NewService creates a new EasyService with a validator that reports fields by their json name
func NewService[T any](repo Repository[T]) *EasyService[T] {
	return &EasyService[T]{
		valid: newValidator(),
		repo:  repo,
		hooks: &Hooks[T]{
			BeforeCreate: make([]BeforeSaveHook[T], 0),
			BeforeUpdate: make([]BeforeSaveHook[T], 0),
		},
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterHook allows the injection of custom logic for validating and handling the request
func (s *EasyService[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	default:
		return
	}
}

// RegisterValidation allows adding custom validation rules to validator
func (s *EasyService[T]) RegisterValidation(name string, fn validator.Func) error {
	return s.valid.RegisterValidation(name, fn)
}

// Size returns the number of stored items
func (s *EasyService[T]) Size() int {
	return s.repo.Len()
}

// List returns every item in insertion order
func (s *EasyService[T]) List(ctx context.Context) []T {
	return s.repo.List()
}

// Get retrieves an item by id. Returns ErrNotFound for unknown or non-numeric ids
func (s *EasyService[T]) Get(ctx context.Context, id string) (T, error) {
	item, ok := s.repo.FindByID(id)
	if !ok {
		return item, ErrNotFound
	}
	return item, nil
}

// Create validates the struct according to the `validate` tags and stores it with a new id
func (s *EasyService[T]) Create(ctx context.Context, item *T) (T, error) {
	var zero T
	if err := s.validate(ctx, item); err != nil {
		return zero, err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return zero, err
		}
	}
	return s.repo.Create(*item), nil
}

// Update replaces the item identified by id. An unknown id is reported
// before the payload is validated
func (s *EasyService[T]) Update(ctx context.Context, id string, item *T) (T, error) {
	var zero T

	existing, ok := s.repo.FindByID(id)
	if !ok {
		return zero, ErrNotFound
	}
	if err := s.validate(ctx, item); err != nil {
		return zero, err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, &existing); err != nil {
			return zero, err
		}
	}

	updated, ok := s.repo.Update(id, *item)
	if !ok {
		// deleted between the lookup and the write
		return zero, ErrNotFound
	}
	return updated, nil
}

// Delete removes an item and returns it
func (s *EasyService[T]) Delete(ctx context.Context, id string) (T, error) {
	item, ok := s.repo.Delete(id)
	if !ok {
		return item, ErrNotFound
	}
	return item, nil
}

func (s *EasyService[T]) validate(ctx context.Context, item *T) error {
	if item == nil {
		return ErrInvalidInput
	}

	err := s.valid.StructCtx(ctx, item)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return fromFieldError(validationErrors[0])
	}
	return err
}
