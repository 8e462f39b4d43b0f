package sqlstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/models"
	"github.com/upb/casting-agency/repositories"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new audit log entry; inside InTransaction it joins the
// caller's transaction
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := r.db.dialect.Rebind(`
		INSERT INTO audit_logs (
			id, subject, permission, action, resource_type, resource_id,
			details, request_id, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)

	var details interface{}
	if len(log.Details) > 0 {
		details = string(log.Details)
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		log.ID.String(),
		log.Subject,
		log.Permission,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		details,
		log.RequestID,
		log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	r.logger.Debug("audit log inserted", zap.String("id", log.ID.String()), zap.String("action", string(log.Action)))
	return nil
}
