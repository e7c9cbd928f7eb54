// Package resettokens provides a PostgreSQL-backed repository for the
// single-use tokens issued by the password reset flow.
package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

// PostgresRepository implements reset token storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace drops any token already issued to userID and stores token with
// an expiry of now+validity. Callers run it inside a transaction so a user
// never holds two tokens.
func (r *PostgresRepository) Replace(ctx context.Context, userID string, token string, validity time.Duration) (*models.ResetToken, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query := `
		INSERT INTO reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	rt := &models.ResetToken{UserID: userID, Token: token, ExpiresAt: time.Now().Add(validity)}
	if err := r.db.QueryRowContext(ctx, query, userID, token, rt.ExpiresAt).Scan(&rt.ID, &rt.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

// Consume deletes token if it is still valid at now and returns the user it
// was issued to. Unknown and expired tokens yield common.ErrorNotFound, so
// of two concurrent callers only one succeeds.
func (r *PostgresRepository) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	query := `
		DELETE FROM reset_tokens
		WHERE token = $1 AND expires_at > $2
		RETURNING user_id
	`
	var userID string
	if err := r.db.QueryRowContext(ctx, query, token, now).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

// Delete removes a token by its token string.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired purges tokens past their expiry and returns how many went.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
