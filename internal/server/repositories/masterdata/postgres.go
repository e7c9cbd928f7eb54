package masterdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns matching records ordered by type then key.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.MasterData, error) {
	var (
		where []string
		args  []any
	)
	if f.DataType != nil {
		args = append(args, *f.DataType)
		where = append(where, fmt.Sprintf("data_type = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT id, data_type, data_key, data_value, description, is_active, version, last_synced FROM master_data`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY data_type, data_key`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MasterData
	for rows.Next() {
		var (
			md         models.MasterData
			value      []byte
			lastSynced sql.NullTime
		)
		if err := rows.Scan(&md.ID, &md.DataType, &md.DataKey, &value, &md.Description, &md.IsActive, &md.Version, &lastSynced); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(value) > 0 {
			if err := json.Unmarshal(value, &md.DataValue); err != nil {
				return nil, fmt.Errorf("decode data_value: %w", err)
			}
		}
		if lastSynced.Valid {
			t := lastSynced.Time
			md.LastSynced = &t
		}
		result = append(result, &md)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Sync bumps the version and stamps last_synced on every active record.
func (r *PostgresRepository) Sync(ctx context.Context) (int64, error) {
	query := `
		UPDATE master_data
		SET version = version + 1, last_synced = now(), updated_at = now()
		WHERE is_active
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, record *models.MasterData) (bool, error) {
	query := `
		INSERT INTO master_data (data_type, data_key, data_value, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (data_type, data_key) DO NOTHING
	`
	value, err := json.Marshal(record.DataValue)
	if err != nil {
		return false, fmt.Errorf("encode data_value: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, record.DataType, record.DataKey, string(value), record.Description)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
