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

// ProductionRepository implements repositories.ProductionRepository
type ProductionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProductionRepository creates a new production repository
func NewProductionRepository(db *DB, logger *zap.Logger) repositories.ProductionRepository {
	return &ProductionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new production and sets its ID
func (r *ProductionRepository) Insert(ctx context.Context, p *models.Production) error {
	query := r.db.dialect.Rebind(`
		INSERT INTO movies (title, release_date)
		VALUES ($1, $2)
		RETURNING id
	`)

	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, p.Title, p.ReleaseDate).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	r.logger.Debug("movie inserted", zap.Int64("id", p.ID))
	return nil
}

// GetByID retrieves a production by ID
func (r *ProductionRepository) GetByID(ctx context.Context, id int64) (*models.Production, error) {
	query := r.db.dialect.Rebind(`SELECT id, title, release_date FROM movies WHERE id = $1`)

	executor := GetExecutor(ctx, r.db)
	p := &models.Production{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.ReleaseDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movie %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return p, nil
}

// QueryAll retrieves every production ordered by ID
func (r *ProductionRepository) QueryAll(ctx context.Context) ([]*models.Production, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, `SELECT id, title, release_date FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	productions := []*models.Production{}
	for rows.Next() {
		p := &models.Production{}
		if err := rows.Scan(&p.ID, &p.Title, &p.ReleaseDate); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		productions = append(productions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	return productions, nil
}

// Update overwrites an existing production
func (r *ProductionRepository) Update(ctx context.Context, p *models.Production) error {
	query := r.db.dialect.Rebind(`
		UPDATE movies
		SET title = $1, release_date = $2
		WHERE id = $3
	`)

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, p.Title, p.ReleaseDate, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	return expectOneRow(result, "movie", p.ID)
}

// Delete removes a production by ID
func (r *ProductionRepository) Delete(ctx context.Context, id int64) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, r.db.dialect.Rebind(`DELETE FROM movies WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	if err := expectOneRow(result, "movie", id); err != nil {
		return err
	}

	r.logger.Debug("movie deleted", zap.Int64("id", id))
	return nil
}
