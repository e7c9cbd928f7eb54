package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/config"
	"github.com/punit-mobi/RBAC-project/internal/server/mailer"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// resetTokenBytes is the entropy of a password reset token; the hex form
// is twice as long.
const resetTokenBytes = 32

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	FirstName              string
	LastName               string
	Email                  string
	Password               string
	About                  string
	Address                map[string]any
	Gender                 string
	DateOfBirth            *time.Time
	EducationQualification string
	IsAdmin                bool
	Photo                  *PhotoUpload
}

// RegisterResult is the created user, the name of the role it received and
// a bearer token for it.
type RegisterResult struct {
	User     *models.User
	RoleName string
	Token    string
}

// LoginResult is the authenticated user, a bearer token and the master data
// snapshot delivered with it. MasterData is nil when loading it failed.
type LoginResult struct {
	User       *models.User
	Token      string
	MasterData *MasterDataSnapshot
}

// AuthService handles registration, login, bearer token verification and
// the password reset flow.
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	resetTokenValidityDuration  time.Duration
	publicBaseURL               string
	mailer                      Mailer
	photos                      *photos
	masterData                  *MasterDataService
	logger                      logging.Logger
	now                         func() time.Time
}

// NewAuthService constructs an AuthService. store may be nil when photo
// storage is disabled.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mail Mailer,
	store PhotoStore, md *MasterDataService, logger logging.Logger) *AuthService {
	logger = logger.With("module", "auth")
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		resetTokenValidityDuration:  cfg.ResetTokenValidityDuration,
		publicBaseURL:               strings.TrimRight(cfg.PublicBaseURL, "/"),
		mailer:                      mail,
		photos:                      newPhotos(store, logger),
		masterData:                  md,
		logger:                      logger,
		now:                         time.Now,
	}
}

// Register creates an active user. Admin registrations receive the admin
// role, everyone else the viewer role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)

	usersRepo := s.repomanager.Users(s.db)
	exists, err := usersRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.ErrUserExists
	}

	roleName := models.RoleViewer
	if in.IsAdmin {
		roleName = models.RoleAdmin
	}
	role, err := s.repomanager.Roles(s.db).GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRoleAssignment
		}
		return nil, fmt.Errorf("error loading role: %w", err)
	}
	if !role.IsActive {
		return nil, common.ErrRoleAssignment
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var photoKey string
	if in.Photo != nil {
		if photoKey, err = s.photos.upload(ctx, in.Photo); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		Email:                  email,
		PasswordHash:           hash,
		About:                  in.About,
		Address:                in.Address,
		Gender:                 in.Gender,
		DateOfBirth:            in.DateOfBirth,
		EducationQualification: in.EducationQualification,
		ProfilePhoto:           photoKey,
		IsAdmin:                models.GrantsAdmin(role.Name),
		IsActive:               true,
		RoleID:                 &role.ID,
	}
	created, err := usersRepo.Create(ctx, user)
	if err != nil {
		s.photos.remove(ctx, photoKey)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	created.Role = &models.RoleSummary{ID: role.ID, Name: role.Name, Permissions: role.Permissions, IsActive: role.IsActive}

	token, err := s.generateAccessToken(created)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID, "role", role.Name)
	return &RegisterResult{User: created, RoleName: role.Name, Token: token}, nil
}

// Login verifies credentials of an active user and issues a bearer token.
// A failure to load master data does not fail the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	if user.Role != nil && !user.Role.IsActive {
		user.Role = nil
	}

	result := &LoginResult{User: user, Token: token}
	if s.masterData != nil {
		snapshot, err := s.masterData.SyncForLogin(ctx)
		if err != nil {
			s.logger.Warn(ctx, "master data sync failed during login", "user_id", user.ID, "error", err)
		} else {
			result.MasterData = snapshot
		}
	}
	return result, nil
}

// Authenticate resolves a bearer token into a Principal. The user is
// re-read on every call: a missing or inactive user is unauthorized and an
// inactive role grants nothing.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	p := &auth.Principal{UserID: user.ID, IsAdmin: user.IsAdmin, Permissions: []string{}}
	if user.Role != nil && user.Role.IsActive {
		p.Permissions = user.Role.Permissions
	}
	return p, nil
}

// RequestPasswordReset replaces the user's reset token and emails a link
// embedding it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.ResetTokens(tx).Replace(ctx, user.ID, token, s.resetTokenValidityDuration)
		return err
	}); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	link := s.ResetLink(token)
	body, err := mailer.PasswordResetBody(link, int(s.resetTokenValidityDuration/time.Minute))
	if err != nil {
		return fmt.Errorf("error rendering email: %w", err)
	}
	if err := s.mailer.SendHTML(ctx, user.Email, mailer.PasswordResetSubject, body); err != nil {
		return fmt.Errorf("error sending reset email: %w", err)
	}

	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetLink builds the link delivered by the reset email.
func (s *AuthService) ResetLink(token string) string {
	return s.publicBaseURL + "/api/v1/auth/reset-password/" + token
}

// ResetPassword consumes token and sets a new password. Unknown, used and
// expired tokens are rejected alike.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.ResetTokens(tx).Consume(ctx, token, s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrResetTokenNotFound
			}
			return fmt.Errorf("error consuming reset token: %w", err)
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error updating password: %w", err)
		}
		return nil
	})
	if errors.Is(err, common.ErrResetTokenNotFound) {
		// drop an expired leftover now instead of waiting for the purge job
		if derr := s.repomanager.ResetTokens(s.db).Delete(ctx, token); derr != nil {
			s.logger.Warn(ctx, "failed to delete reset token", "error", derr)
		}
	}
	return err
}

// PurgeExpiredResetTokens removes reset tokens past their expiry.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.repomanager.ResetTokens(s.db).DeleteExpired(ctx)
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}
