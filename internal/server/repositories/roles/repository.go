// Package roles provides the PostgreSQL repository for RBAC roles.
package roles

import (
	"context"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, role *models.Role) (*models.Role, error)
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ListActive(ctx context.Context) ([]*models.Role, error)
	Update(ctx context.Context, id string, patch *models.RolePatch) (*models.Role, error)
	SoftDelete(ctx context.Context, id string) error
	InsertIfAbsent(ctx context.Context, role *models.Role) (bool, error)
}
