package sqlstore

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/upb/casting-agency/migrations"
)

// Migrate applies all pending migrations. With reset, every migration is
// rolled back first so the schema starts empty.
func (db *DB) Migrate(ctx context.Context, reset bool) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseZapLogger{s: db.logger.Sugar()})
	if err := goose.SetDialect(db.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	dir := db.dialect.MigrationsDir()
	if reset {
		db.logger.Warn("resetting database schema")
		if err := goose.ResetContext(ctx, db.DB, dir); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
	}

	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	db.logger.Info("database migrations applied", zap.String("dialect", db.dialect.Name()))
	return nil
}

type gooseZapLogger struct{ s *zap.SugaredLogger }

func (l gooseZapLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

func (l gooseZapLogger) Fatalf(format string, v ...interface{}) {
	l.s.Errorf(format, v...)
}
