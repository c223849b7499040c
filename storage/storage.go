// Package storage defines the objective Record Store contract and the pieces
// shared by every backend.
package storage

import (
	"context"
	"errors"
	"fmt"

	"patient-activation/models"
)

// TableName is the logical table (or collection) holding objectives.
const TableName = "activation_objectives"

var (
	// ErrNotFound is returned when no objective has the requested id.
	ErrNotFound = errors.New("objective not found")
	// ErrUnavailable matches every *Error.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is the Record Store: CRUD over objectives in one logical table.
type Store interface {
	// List returns every objective ordered by targetDate ascending.
	List(ctx context.Context) ([]models.Objective, error)
	Get(ctx context.Context, id string) (models.Objective, error)
	Create(ctx context.Context, in models.InsertObjective) (models.Objective, error)
	// Update writes the present fields of patch. An empty patch returns the
	// existing record without writing.
	Update(ctx context.Context, id string, patch models.ObjectivePatch) (models.Objective, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaEnsurer is implemented by stores that can create their table when missing.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Error wraps a failure of the backing store.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// Unavailable wraps err as a backend failure of op. ErrNotFound and nil pass through.
func Unavailable(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var serr *Error
	if errors.As(err, &serr) {
		return err
	}
	return &Error{Op: op, Err: err}
}
