package services

import (
	"context"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/storage"
)

// photos wraps an optional PhotoStore. A nil store disables uploads and
// leaves profile_photo_url empty.
type photos struct {
	store  PhotoStore
	logger logging.Logger
	now    func() time.Time
}

func newPhotos(store PhotoStore, logger logging.Logger) *photos {
	return &photos{store: store, logger: logger, now: time.Now}
}

// upload stores p and returns its object key.
func (ph *photos) upload(ctx context.Context, p *PhotoUpload) (string, error) {
	if ph.store == nil {
		return "", common.ErrPhotoStoreDisabled
	}
	contentType, ext, err := storage.DetectPhoto(p.Data)
	if err != nil {
		return "", err
	}
	key := storage.NewPhotoKey(ph.now(), ext)
	if err := ph.store.Put(ctx, key, p.Data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// remove deletes key, logging failures.
func (ph *photos) remove(ctx context.Context, key string) {
	if ph.store == nil || key == "" {
		return
	}
	if err := ph.store.Delete(ctx, key); err != nil {
		ph.logger.Warn(ctx, "failed to delete profile photo", "key", key, "error", err)
	}
}

// decorate fills ProfilePhotoURL for users with a stored photo.
func (ph *photos) decorate(ctx context.Context, users ...*models.User) {
	if ph.store == nil {
		return
	}
	for _, u := range users {
		if u == nil || u.ProfilePhoto == "" {
			continue
		}
		url, err := ph.store.PresignGet(ctx, u.ProfilePhoto)
		if err != nil {
			ph.logger.Warn(ctx, "failed to presign profile photo", "user_id", u.ID, "error", err)
			continue
		}
		u.ProfilePhotoURL = url
	}
}
