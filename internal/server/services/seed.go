package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// DefaultRoles are created at startup when missing.
var DefaultRoles = []models.Role{
	{
		Name:        models.RoleAdmin,
		Description: "Full access to all resources",
		Permissions: models.AllPermissionNames(),
	},
	{
		Name:        models.RoleEditor,
		Description: "Can read and edit content, limited user management",
		Permissions: []string{
			"users.view", "users.update", "roles.view",
			"posts.create", "posts.view", "posts.update", "posts.delete",
		},
	},
	{
		Name:        models.RoleViewer,
		Description: "Read-only access to all resources",
		Permissions: []string{"users.view", "roles.view", "posts.view"},
	},
}

// DefaultMasterData are inserted at startup when missing.
var DefaultMasterData = []models.MasterData{
	{DataType: models.MasterDataRoles, DataKey: "admin", Description: "Full administrative access",
		DataValue: map[string]any{"name": "Administrator", "permissions": []string{"read", "write", "delete", "manage_users"}, "level": 1}},
	{DataType: models.MasterDataRoles, DataKey: "user", Description: "Standard user access",
		DataValue: map[string]any{"name": "Regular User", "permissions": []string{"read", "write"}, "level": 2}},
	{DataType: models.MasterDataRoles, DataKey: "guest", Description: "Limited read-only access",
		DataValue: map[string]any{"name": "Guest User", "permissions": []string{"read"}, "level": 3}},

	{DataType: models.MasterDataPermissions, DataKey: "read", Description: "Permission to read/view data",
		DataValue: map[string]any{"name": "Read Access", "description": "View data and resources", "module": "general"}},
	{DataType: models.MasterDataPermissions, DataKey: "write", Description: "Permission to create and modify data",
		DataValue: map[string]any{"name": "Write Access", "description": "Create and modify data", "module": "general"}},
	{DataType: models.MasterDataPermissions, DataKey: "delete", Description: "Permission to delete data",
		DataValue: map[string]any{"name": "Delete Access", "description": "Remove data and resources", "module": "general"}},
	{DataType: models.MasterDataPermissions, DataKey: "manage_users", Description: "Permission to manage users",
		DataValue: map[string]any{"name": "User Management", "description": "Manage user accounts and permissions", "module": "user_management"}},

	{DataType: models.MasterDataModules, DataKey: "user_management", Description: "User management module",
		DataValue: map[string]any{"name": "User Management", "description": "Module for managing users and their permissions", "sort_order": 1, "is_visible": true}},
	{DataType: models.MasterDataModules, DataKey: "profile_management", Description: "Profile management module",
		DataValue: map[string]any{"name": "Profile Management", "description": "Module for managing user profiles", "sort_order": 2, "is_visible": true}},
	{DataType: models.MasterDataModules, DataKey: "system_settings", Description: "System settings module",
		DataValue: map[string]any{"name": "System Settings", "description": "Module for system configuration", "sort_order": 3, "is_visible": true}},

	{DataType: models.MasterDataConfigurations, DataKey: "app_settings", Description: "Application configuration settings",
		DataValue: map[string]any{"app_name": "demo-project", "version": "1.0.0", "maintenance_mode": false, "max_login_attempts": 5, "session_timeout": 3600}},
	{DataType: models.MasterDataConfigurations, DataKey: "email_settings", Description: "Email service configuration",
		DataValue: map[string]any{"smtp_host": "smtp.gmail.com", "smtp_port": 587, "from_email": "noreply@example.com", "templates_enabled": true}},
}

// SeedReport counts what a seeding run wrote.
type SeedReport struct {
	RolesCreated      int
	MasterDataCreated int
	UsersAssigned     int64
}

// SeedService installs the default roles and master data.
type SeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSeedService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SeedService {
	return &SeedService{db: db, repomanager: m, logger: logger.With("module", "seed")}
}

// Seed creates missing default roles and master data, then gives the viewer
// role to users without one. It is safe to run repeatedly.
func (s *SeedService) Seed(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		roles := s.repomanager.Roles(tx)
		for i := range DefaultRoles {
			created, err := roles.InsertIfAbsent(ctx, &DefaultRoles[i])
			if err != nil {
				return fmt.Errorf("seed role %s: %w", DefaultRoles[i].Name, err)
			}
			if created {
				report.RolesCreated++
			}
		}

		md := s.repomanager.MasterData(tx)
		for i := range DefaultMasterData {
			created, err := md.InsertIfAbsent(ctx, &DefaultMasterData[i])
			if err != nil {
				return fmt.Errorf("seed master data %s/%s: %w", DefaultMasterData[i].DataType, DefaultMasterData[i].DataKey, err)
			}
			if created {
				report.MasterDataCreated++
			}
		}

		viewer, err := roles.GetByName(ctx, models.RoleViewer)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRoleAssignment
			}
			return err
		}
		report.UsersAssigned, err = s.repomanager.Users(tx).AssignRoleWhereMissing(ctx, viewer.ID, models.GrantsAdmin(viewer.Name))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "seeding complete",
		"roles_created", report.RolesCreated,
		"master_data_created", report.MasterDataCreated,
		"users_assigned", report.UsersAssigned)
	return report, nil
}
