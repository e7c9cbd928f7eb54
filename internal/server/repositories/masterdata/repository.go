// Package masterdata provides the PostgreSQL repository for versioned
// reference records.
package masterdata

import (
	"context"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

// Filter narrows List. Nil fields do not filter.
type Filter struct {
	DataType *string
	IsActive *bool
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]*models.MasterData, error)
	Sync(ctx context.Context) (int64, error)
	InsertIfAbsent(ctx context.Context, record *models.MasterData) (bool, error)
}
