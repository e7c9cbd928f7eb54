package roles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

const roleColumns = `id, name, description, permissions, is_active, created_at, updated_at`

// PostgresRepository stores roles over dbx.DBTX. Permissions live in a
// JSONB array column.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts role. A taken name yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	query := `
		INSERT INTO roles (name, description, permissions, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + roleColumns

	perms, err := encodePermissions(role.Permissions)
	if err != nil {
		return nil, err
	}

	created, err := scanRole(r.db.QueryRowContext(ctx, query, role.Name, role.Description, perms, role.IsActive))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Role, error) {
	role, err := scanRole(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// ListActive returns active roles ordered by name.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update applies patch and returns the stored role.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.RolePatch) (*models.Role, error) {
	var set dbx.Assignments
	if patch.Name != nil {
		set.Add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.Add("description", *patch.Description)
	}
	if patch.Permissions != nil {
		perms, err := encodePermissions(patch.Permissions)
		if err != nil {
			return nil, err
		}
		set.Add("permissions", perms)
	}
	if patch.IsActive != nil {
		set.Add("is_active", *patch.IsActive)
	}

	query := `UPDATE roles SET ` + set.SQL()
	if set.Len() > 0 {
		query += `, `
	}
	query += `updated_at = now() WHERE id = ` + set.Placeholder(1) + ` RETURNING ` + roleColumns

	role, err := scanRole(r.db.QueryRowContext(ctx, query, set.Args(id)...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// SoftDelete marks the role inactive. Deleting an inactive role is not an
// error.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE roles SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// InsertIfAbsent creates role unless one with the same name exists and
// reports whether a row was written.
func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, role *models.Role) (bool, error) {
	query := `
		INSERT INTO roles (name, description, permissions, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (name) DO NOTHING
	`
	perms, err := encodePermissions(role.Permissions)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, query, role.Name, role.Description, perms)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRole(row scanner) (*models.Role, error) {
	var (
		role  models.Role
		perms []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	role.Permissions = []string{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &role.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &role, nil
}

func encodePermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("encode permissions: %w", err)
	}
	return string(b), nil
}
