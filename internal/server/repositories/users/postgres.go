package users

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

const selectUser = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.password, u.about, u.address,
	       u.gender, u.date_of_birth, u.education_qualification, u.profile_photo,
	       u.is_admin, u.is_active, u.role_id, u.created_at, u.updated_at,
	       r.id, r.name, r.permissions, r.is_active
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, password, about, address, gender,
		                   date_of_birth, education_qualification, profile_photo, is_admin, is_active, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	address, err := encodeAddress(user.Address)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, user.About, address, user.Gender,
		user.DateOfBirth, user.EducationQualification, user.ProfilePhoto, user.IsAdmin, user.IsActive, user.RoleID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE u.id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE lower(u.email) = lower($1)`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// List returns one page of users ordered by creation time and the total count.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY u.created_at DESC, u.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return users, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.UserPatch) error {
	var set dbx.Assignments
	if patch.FirstName != nil {
		set.Add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.Add("last_name", *patch.LastName)
	}
	if patch.About != nil {
		set.Add("about", *patch.About)
	}
	if patch.Address != nil {
		address, err := encodeAddress(patch.Address)
		if err != nil {
			return err
		}
		set.Add("address", address)
	}
	if patch.Gender != nil {
		set.Add("gender", *patch.Gender)
	}
	if patch.DateOfBirth != nil {
		set.Add("date_of_birth", *patch.DateOfBirth)
	}
	if patch.EducationQualification != nil {
		set.Add("education_qualification", *patch.EducationQualification)
	}
	if patch.ProfilePhoto != nil {
		set.Add("profile_photo", *patch.ProfilePhoto)
	}

	query := `UPDATE users SET ` + set.SQL()
	if set.Len() > 0 {
		query += `, `
	}
	query += `updated_at = now() WHERE id = ` + set.Placeholder(1)

	return r.execOne(ctx, query, set.Args(id)...)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password = $1, updated_at = now() WHERE id = $2`
	return r.execOne(ctx, query, passwordHash, id)
}

// SetRole points the user at roleID (nil clears it) and stores isAdmin.
func (r *PostgresRepository) SetRole(ctx context.Context, id string, roleID *string, isAdmin bool) error {
	query := `UPDATE users SET role_id = $1, is_admin = $2, updated_at = now() WHERE id = $3`
	return r.execOne(ctx, query, roleID, isAdmin, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// SyncAdminFlag sets is_admin for every holder of roleID.
func (r *PostgresRepository) SyncAdminFlag(ctx context.Context, roleID string, isAdmin bool) (int64, error) {
	query := `UPDATE users SET is_admin = $1, updated_at = now() WHERE role_id = $2 AND is_admin <> $1`
	res, err := r.db.ExecContext(ctx, query, isAdmin, roleID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

// AssignRoleWhereMissing gives roleID to every user without a role.
func (r *PostgresRepository) AssignRoleWhereMissing(ctx context.Context, roleID string, isAdmin bool) (int64, error) {
	query := `UPDATE users SET role_id = $1, is_admin = $2, updated_at = now() WHERE role_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, roleID, isAdmin)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u           models.User
		address     []byte
		dateOfBirth sql.NullTime
		roleID      sql.NullString
		rID         sql.NullString
		rName       sql.NullString
		rPerms      []byte
		rActive     sql.NullBool
	)

	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.About, &address,
		&u.Gender, &dateOfBirth, &u.EducationQualification, &u.ProfilePhoto,
		&u.IsAdmin, &u.IsActive, &roleID, &u.CreatedAt, &u.UpdatedAt,
		&rID, &rName, &rPerms, &rActive,
	)
	if err != nil {
		return nil, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &u.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	if dateOfBirth.Valid {
		d := dateOfBirth.Time
		u.DateOfBirth = &d
	}
	if roleID.Valid {
		id := roleID.String
		u.RoleID = &id
	}
	if rID.Valid {
		role := &models.RoleSummary{ID: rID.String, Name: rName.String, IsActive: rActive.Bool, Permissions: []string{}}
		if len(rPerms) > 0 {
			if err := json.Unmarshal(rPerms, &role.Permissions); err != nil {
				return nil, fmt.Errorf("decode permissions: %w", err)
			}
		}
		u.Role = role
	}

	return &u, nil
}

func encodeAddress(address map[string]any) (any, error) {
	if address == nil {
		return nil, nil
	}
	b, err := json.Marshal(address)
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	return string(b), nil
}

