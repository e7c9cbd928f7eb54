package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// InvalidPermissionsError lists permission strings that are not of the
// resource.action form.
type InvalidPermissionsError struct {
	Permissions []string
}

func (e *InvalidPermissionsError) Error() string {
	return "Invalid permission format: " + strings.Join(e.Permissions, ", ")
}

func (e *InvalidPermissionsError) Unwrap() error { return common.ErrInvalidPermission }

func checkPermissions(perms []string) error {
	var invalid []string
	for _, p := range perms {
		if !models.IsValidPermission(p) {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return &InvalidPermissionsError{Permissions: invalid}
	}
	return nil
}

type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RoleService {
	return &RoleService{db: db, repomanager: m, logger: logger.With("module", "roles")}
}

// Create stores a new active role.
func (s *RoleService) Create(ctx context.Context, name, description string, permissions []string) (*models.Role, error) {
	if err := checkPermissions(permissions); err != nil {
		return nil, err
	}
	role, err := s.repomanager.Roles(s.db).Create(ctx, &models.Role{
		Name:        name,
		Description: description,
		Permissions: permissions,
		IsActive:    true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrRoleExists
		}
		return nil, fmt.Errorf("error creating role: %w", err)
	}
	s.logger.Info(ctx, "role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

// List returns the active roles.
func (s *RoleService) List(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.repomanager.Roles(s.db).ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing roles: %w", err)
	}
	if roles == nil {
		roles = []*models.Role{}
	}
	return roles, nil
}

// Permissions returns the permission catalogue.
func (s *RoleService) Permissions() []models.Permission {
	return models.Permissions
}

func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.repomanager.Roles(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRoleNotFound
		}
		return nil, fmt.Errorf("error loading role: %w", err)
	}
	return role, nil
}

// Update applies patch. When the name changes, is_admin of every holder is
// recomputed in the same transaction.
func (s *RoleService) Update(ctx context.Context, id string, patch *models.RolePatch) (*models.Role, error) {
	if patch.Permissions != nil {
		if err := checkPermissions(patch.Permissions); err != nil {
			return nil, err
		}
	}

	var role *models.Role
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		role, err = s.repomanager.Roles(tx).Update(ctx, id, patch)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorNotFound):
				return common.ErrRoleNotFound
			case errors.Is(err, common.ErrorAlreadyExists):
				return common.ErrRoleExists
			}
			return fmt.Errorf("error updating role: %w", err)
		}
		if patch.Name == nil {
			return nil
		}
		n, err := s.repomanager.Users(tx).SyncAdminFlag(ctx, role.ID, models.GrantsAdmin(role.Name))
		if err != nil {
			return fmt.Errorf("error syncing admin flags: %w", err)
		}
		if n > 0 {
			s.logger.Info(ctx, "admin flags recomputed", "role_id", role.ID, "users", n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Delete deactivates the role and returns it. Deleting an inactive role
// succeeds.
func (s *RoleService) Delete(ctx context.Context, id string) (*models.Role, error) {
	if err := s.repomanager.Roles(s.db).SoftDelete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRoleNotFound
		}
		return nil, fmt.Errorf("error deleting role: %w", err)
	}
	return s.Get(ctx, id)
}
