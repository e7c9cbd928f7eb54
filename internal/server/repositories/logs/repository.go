// Package logs persists error records produced by the API.
package logs

import (
	"context"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Log) error
}
