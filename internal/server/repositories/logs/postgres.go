package logs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Log) error {
	query := `
		INSERT INTO logs (level, message, stack, meta)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	level := entry.Level
	if level == "" {
		level = models.LogLevelError
	}
	if err := r.db.QueryRowContext(ctx, query, level, entry.Message, entry.Stack, string(meta)).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	entry.Level = level
	return nil
}
