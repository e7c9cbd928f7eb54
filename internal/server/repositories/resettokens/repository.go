package resettokens

import (
	"context"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type Repository interface {
	Replace(ctx context.Context, userID string, token string, validity time.Duration) (*models.ResetToken, error)
	Consume(ctx context.Context, token string, now time.Time) (string, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
