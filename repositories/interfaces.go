package repositories

import (
	"context"
	"errors"

	"github.com/upb/casting-agency/models"
)

// ErrNotFound is returned when no row matches the requested id
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// InTransaction executes fn within a transaction.
	// Repositories called with the context passed to fn join the transaction.
	// Commits if fn succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RecordRepository stores one catalog collection
type RecordRepository[T any] interface {
	// Insert stores a new record and assigns its id
	Insert(ctx context.Context, record *T) error

	// GetByID retrieves a record by id, or ErrNotFound
	GetByID(ctx context.Context, id int64) (*T, error)

	// QueryAll retrieves every record in insertion order
	QueryAll(ctx context.Context) ([]*T, error)

	// Update overwrites every field of an existing record
	Update(ctx context.Context, record *T) error

	// Delete removes a record by id
	Delete(ctx context.Context, id int64) error
}

// PerformerRepository handles actor data operations
type PerformerRepository = RecordRepository[models.Performer]

// ProductionRepository handles movie data operations
type ProductionRepository = RecordRepository[models.Production]

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Performers  PerformerRepository
	Productions ProductionRepository
	AuditLogs   AuditRepository
}
