// Package posts provides the PostgreSQL repository for posts.
package posts

import (
	"context"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, offset, limit int) ([]*models.Post, int, error)
	Update(ctx context.Context, id string, patch *models.PostPatch) error
	Delete(ctx context.Context, id string) error
}
