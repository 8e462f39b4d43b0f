package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/models"
	"github.com/upb/casting-agency/repositories"
)

// PerformerRepository implements repositories.PerformerRepository
type PerformerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPerformerRepository creates a new performer repository
func NewPerformerRepository(db *DB, logger *zap.Logger) repositories.PerformerRepository {
	return &PerformerRepository{
		db:     db,
		logger: logger,
	}
}

const performerColumns = `id, name, age, gender`

// Insert stores a new performer and sets its ID
func (r *PerformerRepository) Insert(ctx context.Context, p *models.Performer) error {
	query := r.db.dialect.Rebind(`
		INSERT INTO actors (name, age, gender)
		VALUES ($1, $2, $3)
		RETURNING id
	`)

	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, p.Name, p.Age, p.Gender).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert actor: %w", err)
	}

	r.logger.Debug("actor inserted", zap.Int64("id", p.ID))
	return nil
}

// GetByID retrieves a performer by ID
func (r *PerformerRepository) GetByID(ctx context.Context, id int64) (*models.Performer, error) {
	query := r.db.dialect.Rebind(`SELECT ` + performerColumns + ` FROM actors WHERE id = $1`)

	executor := GetExecutor(ctx, r.db)
	p := &models.Performer{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Age, &p.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("actor %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	return p, nil
}

// QueryAll retrieves every performer ordered by ID
func (r *PerformerRepository) QueryAll(ctx context.Context) ([]*models.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM actors ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}
	defer rows.Close()

	performers := []*models.Performer{}
	for rows.Next() {
		p := &models.Performer{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		performers = append(performers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actors: %w", err)
	}

	return performers, nil
}

// Update overwrites an existing performer
func (r *PerformerRepository) Update(ctx context.Context, p *models.Performer) error {
	query := r.db.dialect.Rebind(`
		UPDATE actors
		SET name = $1, age = $2, gender = $3
		WHERE id = $4
	`)

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, p.Name, p.Age, p.Gender, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}

	return expectOneRow(result, "actor", p.ID)
}

// Delete removes a performer by ID
func (r *PerformerRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.dialect.Rebind(`DELETE FROM actors WHERE id = $1`)

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}

	if err := expectOneRow(result, "actor", id); err != nil {
		return err
	}

	r.logger.Debug("actor deleted", zap.Int64("id", id))
	return nil
}

// expectOneRow maps a zero-row write to repositories.ErrNotFound
func expectOneRow(result sql.Result, kind string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, repositories.ErrNotFound)
	}
	return nil
}
