package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// UserService manages user profiles and role assignment.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	photos      *photos
	logger      logging.Logger
}

// NewUserService constructs a UserService. store may be nil when photo
// storage is disabled.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, store PhotoStore, logger logging.Logger) *UserService {
	logger = logger.With("module", "users")
	return &UserService{db: db, repomanager: m, photos: newPhotos(store, logger), logger: logger}
}

// List returns one page of users and the total count.
func (s *UserService) List(ctx context.Context, page Page) ([]*models.User, int, error) {
	users, total, err := s.repomanager.Users(s.db).List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	s.photos.decorate(ctx, users...)
	return users, total, nil
}

// Get returns the user with id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.photos.decorate(ctx, user)
	return user, nil
}

// Update applies patch to the user with id. Only the user and admins may
// update a profile. A new photo replaces the stored one.
func (s *UserService) Update(ctx context.Context, p *auth.Principal, id string, patch *models.UserPatch, photo *PhotoUpload) (*models.User, error) {
	if !p.CanActOn(id) {
		return nil, common.ErrorForbidden
	}

	current, err := s.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	var newKey string
	if photo != nil {
		if newKey, err = s.photos.upload(ctx, photo); err != nil {
			return nil, err
		}
		patch.ProfilePhoto = &newKey
	}

	if err := s.repomanager.Users(s.db).Update(ctx, id, patch); err != nil {
		s.photos.remove(ctx, newKey)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	if newKey != "" {
		s.photos.remove(ctx, current.ProfilePhoto)
	}

	return s.Get(ctx, id)
}

// Delete removes the user with id. Only the user and admins may delete an
// account.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if !p.CanActOn(id) {
		return common.ErrorForbidden
	}

	current, err := s.get(ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.photos.remove(ctx, current.ProfilePhoto)

	s.logger.Info(ctx, "user deleted", "user_id", id, "by", p.UserID)
	return nil
}

// AssignRole points the user at roleID and mirrors is_admin from the role
// name. Lookup and write share one transaction.
func (s *UserService) AssignRole(ctx context.Context, id, roleID string) (*models.UserRoleView, error) {
	var view *models.UserRoleView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		role, err := s.repomanager.Roles(tx).GetByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRoleNotFound
			}
			return fmt.Errorf("error loading role: %w", err)
		}
		if !role.IsActive {
			return common.ErrRoleNotFound
		}

		isAdmin := models.GrantsAdmin(role.Name)
		if err := s.repomanager.Users(tx).SetRole(ctx, id, &role.ID, isAdmin); err != nil {
			return fmt.Errorf("error assigning role: %w", err)
		}
		name := role.Name
		view = roleView(user, &name, isAdmin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveRole clears the user's role and admin flag.
func (s *UserService) RemoveRole(ctx context.Context, id string) (*models.UserRoleView, error) {
	var view *models.UserRoleView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).SetRole(ctx, id, nil, false); err != nil {
			return fmt.Errorf("error removing role: %w", err)
		}
		view = roleView(user, nil, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *UserService) get(ctx context.Context, db dbx.DBTX, id string) (*models.User, error) {
	user, err := s.repomanager.Users(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

func roleView(u *models.User, role *string, isAdmin bool) *models.UserRoleView {
	return &models.UserRoleView{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      role,
		IsAdmin:   isAdmin,
	}
}
