// Package users provides the PostgreSQL repository for user accounts.
package users

import (
	"context"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int, error)
	Update(ctx context.Context, id string, patch *models.UserPatch) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetRole(ctx context.Context, id string, roleID *string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
	SyncAdminFlag(ctx context.Context, roleID string, isAdmin bool) (int64, error)
	AssignRoleWhereMissing(ctx context.Context, roleID string, isAdmin bool) (int64, error)
}
