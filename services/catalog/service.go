// Package catalog implements the permission-checked CRUD operations shared
// by every catalog collection.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/internal/auth"
	"github.com/upb/casting-agency/models"
	"github.com/upb/casting-agency/repositories"
	"github.com/upb/casting-agency/services"
	"github.com/upb/casting-agency/utils"
)

// Service runs list, create, update and delete for one collection.
// T is the model type and P its pointer type.
type Service[T any, P models.Record[T]] struct {
	resource string
	repo     repositories.RecordRepository[T]
	audit    repositories.AuditRepository
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
}

// NewService creates a service for the named resource ("actors", "movies")
func NewService[T any, P models.Record[T]](
	resource string,
	repo repositories.RecordRepository[T],
	audit repositories.AuditRepository,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *Service[T, P] {
	return &Service[T, P]{
		resource: resource,
		repo:     repo,
		audit:    audit,
		txMgr:    txMgr,
		logger:   logger.With(zap.String("resource", resource)),
	}
}

// List formats every record and returns the requested page.
// An empty page is a not found error.
func (s *Service[T, P]) List(ctx context.Context, claims auth.ClaimSet, page int) ([]map[string]interface{}, error) {
	records, err := s.repo.QueryAll(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list "+s.resource, err)
	}

	formatted := make([]map[string]interface{}, len(records))
	for i, record := range records {
		formatted[i] = P(record).Format()
	}

	items := utils.Paginate(formatted, page, utils.RowsPerPage)
	if len(items) == 0 {
		return nil, services.ErrEmptyPage
	}

	s.logger.Debug("listed records",
		zap.String("subject", claims.Subject()),
		zap.Int("page", page),
		zap.Int("count", len(items)))

	return items, nil
}

// Create validates the JSON body, applies defaults and stores a new record.
// It returns the assigned id.
func (s *Service[T, P]) Create(ctx context.Context, claims auth.ClaimSet, requestID string, body []byte) (int64, error) {
	if err := requireObject(body); err != nil {
		return 0, err
	}

	var record T
	p := P(&record)
	if err := json.Unmarshal(body, p); err != nil {
		return 0, services.WrapValidation("payload does not match "+s.resource+" fields", err)
	}
	p.SetID(0)

	if err := validate(p); err != nil {
		return 0, err
	}
	p.ApplyDefaults()

	err := s.txMgr.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, &record); err != nil {
			return err
		}
		return s.recordAudit(ctx, claims, requestID, auth.ActionCreate, models.AuditActionCreated, p.GetID())
	})
	if err != nil {
		return 0, services.WrapInternal("failed to create record", err)
	}

	s.logger.Info("record created",
		zap.Int64("id", p.GetID()),
		zap.String("subject", claims.Subject()),
		zap.String("request_id", requestID))

	return p.GetID(), nil
}

// Update applies the fields present in body to an existing record.
// Omitted fields and JSON nulls keep their current values.
func (s *Service[T, P]) Update(ctx context.Context, claims auth.ClaimSet, requestID string, id int64, body []byte) (map[string]interface{}, error) {
	if id <= 0 {
		return nil, services.WrapBadRequest("id must be a positive integer", nil)
	}
	if err := requireObject(body); err != nil {
		return nil, err
	}

	var updated T
	err := s.txMgr.InTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		updated = *current
		p := P(&updated)
		if err := json.Unmarshal(body, p); err != nil {
			return services.WrapValidation("payload does not match "+s.resource+" fields", err)
		}
		p.SetID(id)

		if err := validate(p); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, &updated); err != nil {
			return err
		}
		return s.recordAudit(ctx, claims, requestID, auth.ActionEdit, models.AuditActionUpdated, id)
	})
	if err != nil {
		return nil, s.mapError(err, "failed to update record")
	}

	s.logger.Info("record updated",
		zap.Int64("id", id),
		zap.String("subject", claims.Subject()),
		zap.String("request_id", requestID))

	return P(&updated).Format(), nil
}

// Delete removes an existing record. Unknown ids are rejected before any
// delete is attempted.
func (s *Service[T, P]) Delete(ctx context.Context, claims auth.ClaimSet, requestID string, id int64) error {
	if id <= 0 {
		return services.WrapBadRequest("id must be a positive integer", nil)
	}

	err := s.txMgr.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.recordAudit(ctx, claims, requestID, auth.ActionDelete, models.AuditActionDeleted, id)
	})
	if err != nil {
		return s.mapError(err, "failed to delete record")
	}

	s.logger.Info("record deleted",
		zap.Int64("id", id),
		zap.String("subject", claims.Subject()),
		zap.String("request_id", requestID))

	return nil
}

func (s *Service[T, P]) recordAudit(ctx context.Context, claims auth.ClaimSet, requestID string, action auth.Action, auditAction models.AuditAction, id int64) error {
	entry := models.NewAuditLog(claims.Subject(), auditAction, s.resource).
		WithResource(id).
		WithPermission(string(auth.PermissionFor(action, s.resource))).
		WithRequest(requestID)
	return s.audit.Insert(ctx, entry)
}

// mapError keeps domain errors and translates repository misses
func (s *Service[T, P]) mapError(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.NewDomainError(services.ErrorTypeNotFound, "record not found", err)
	}
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return services.WrapInternal(message, err)
}

// requireObject rejects empty bodies and anything but a non-empty JSON object
func requireObject(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return services.WrapBadRequest("request body is required", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return services.WrapBadRequest("request body must be a JSON object", err)
	}
	if len(fields) == 0 {
		return services.WrapBadRequest("request body has no fields", nil)
	}
	return nil
}

func validate(record interface{}) error {
	if err := utils.ValidateStruct(record); err != nil {
		if !utils.IsValidationError(err) {
			return services.WrapInternal("failed to validate record", err)
		}
		domainErr := services.NewDomainError(services.ErrorTypeValidation, "validation failed", err)
		for field, msg := range utils.GetValidationFields(err) {
			domainErr.WithDetail(field, msg)
		}
		return domainErr
	}
	return nil
}
