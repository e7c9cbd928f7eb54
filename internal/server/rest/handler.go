// Package rest is the HTTP/JSON transport of the API server: routing,
// rate limiting, authentication, request validation and the response
// envelope.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type UserService interface {
	List(ctx context.Context, page services.Page) ([]*models.User, int, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, p *auth.Principal, id string, patch *models.UserPatch, photo *services.PhotoUpload) (*models.User, error)
	Delete(ctx context.Context, p *auth.Principal, id string) error
	AssignRole(ctx context.Context, id, roleID string) (*models.UserRoleView, error)
	RemoveRole(ctx context.Context, id string) (*models.UserRoleView, error)
}

type RoleService interface {
	Create(ctx context.Context, name, description string, permissions []string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
	Permissions() []models.Permission
	Get(ctx context.Context, id string) (*models.Role, error)
	Update(ctx context.Context, id string, patch *models.RolePatch) (*models.Role, error)
	Delete(ctx context.Context, id string) (*models.Role, error)
}

type PostService interface {
	List(ctx context.Context, page services.Page) ([]*models.Post, int, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, p *auth.Principal, title, content string) (*models.Post, error)
	Update(ctx context.Context, p *auth.Principal, id string, patch *models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, p *auth.Principal, id string) error
}

type MasterDataService interface {
	List(ctx context.Context, dataType *string, isActive *bool) (*services.MasterDataSnapshot, error)
	ByType(ctx context.Context, dataType string, isActive *bool) (*services.MasterDataByType, error)
	Sync(ctx context.Context) (*services.MasterDataSnapshot, error)
}

// ErrorLogger persists error responses.
type ErrorLogger interface {
	Record(ctx context.Context, entry *models.Log) error
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the services behind the HTTP surface. ErrorLog and DB may
// be nil.
type Options struct {
	Auth        AuthService
	Users       UserService
	Roles       RoleService
	Posts       PostService
	MasterData  MasterDataService
	ErrorLog    ErrorLogger
	DB          Pinger
	Limits      *Limits
	Logger      logging.Logger
	Development bool
}

// Handler serves the API.
type Handler struct {
	auth        AuthService
	users       UserService
	roles       RoleService
	posts       PostService
	masterData  MasterDataService
	errorLog    ErrorLogger
	db          Pinger
	limits      *Limits
	logger      logging.Logger
	development bool
	v           *validation
	now         func() time.Time
}

func NewHandler(opts Options) *Handler {
	limits := opts.Limits
	if limits == nil {
		limits = NewLimits()
	}
	return &Handler{
		auth:        opts.Auth,
		users:       opts.Users,
		roles:       opts.Roles,
		posts:       opts.Posts,
		masterData:  opts.MasterData,
		errorLog:    opts.ErrorLog,
		db:          opts.DB,
		limits:      limits,
		logger:      opts.Logger.With("module", "rest"),
		development: opts.Development,
		v:           newValidation(),
		now:         time.Now,
	}
}

// Permission names checked by the routes.
const (
	permUsersView   = "users.view"
	permUsersUpdate = "users.update"
	permUsersDelete = "users.delete"
	permRolesView   = "roles.view"
	permRolesCreate = "roles.create"
	permRolesUpdate = "roles.update"
	permRolesDelete = "roles.delete"
	permPostsView   = "posts.view"
	permPostsCreate = "posts.create"
	permPostsUpdate = "posts.update"
	permPostsDelete = "posts.delete"
)

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.recoverMiddleware)
	router.Use(h.loggingMiddleware)
	router.NotFoundHandler = http.HandlerFunc(h.handleNotFound)

	router.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.limits.General.Middleware)

	v1 := api.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/docs", h.handleDocs).Methods(http.MethodGet)

	// auth
	a := v1.PathPrefix("/auth").Subrouter()
	a.Handle("/register", chain(http.HandlerFunc(h.handleRegister), h.limits.Auth.Middleware)).Methods(http.MethodPost)
	a.Handle("/login", chain(http.HandlerFunc(h.handleLogin), h.limits.Auth.Middleware)).Methods(http.MethodPost)
	a.Handle("/request-password-reset", chain(http.HandlerFunc(h.handleRequestPasswordReset), h.limits.PasswordReset.Middleware)).Methods(http.MethodPost)
	a.Handle("/reset-password/{token}", chain(http.HandlerFunc(h.handleResetPassword), h.limits.PasswordReset.Middleware)).Methods(http.MethodPost)

	// users
	u := v1.PathPrefix("/users").Subrouter()
	u.Use(h.limits.DataOperations.Middleware)
	h.route(u, http.MethodGet, "", h.handleListUsers, h.requirePermission(permUsersView))
	h.route(u, http.MethodGet, "/profile/me", h.handleGetMe, h.requirePermission(permUsersView))
	h.route(u, http.MethodGet, "/{id}", h.handleGetUser, h.requirePermission(permUsersView))
	h.route(u, http.MethodPatch, "/{id}", h.handleUpdateUser, h.requirePermission(permUsersUpdate))
	h.route(u, http.MethodDelete, "/{id}", h.handleDeleteUser, h.requirePermission(permUsersDelete))
	h.route(u, http.MethodPatch, "/{id}/assign-role", h.handleAssignRole, h.requirePermission(permUsersUpdate))
	h.route(u, http.MethodPatch, "/{id}/remove-role", h.handleRemoveRole, h.requirePermission(permUsersUpdate))

	// roles
	rl := v1.PathPrefix("/roles").Subrouter()
	rl.Use(h.limits.DataOperations.Middleware)
	h.route(rl, http.MethodPost, "", h.handleCreateRole, h.limits.Strict.Middleware, h.requirePermission(permRolesCreate))
	h.route(rl, http.MethodGet, "", h.handleListRoles, h.requirePermission(permRolesView))
	h.route(rl, http.MethodGet, "/permissions", h.handleListPermissions, h.requirePermission(permRolesView))
	h.route(rl, http.MethodGet, "/{id}", h.handleGetRole, h.requirePermission(permRolesView))
	h.route(rl, http.MethodPut, "/{id}", h.handleUpdateRole, h.limits.Strict.Middleware, h.requirePermission(permRolesUpdate))
	h.route(rl, http.MethodDelete, "/{id}", h.handleDeleteRole, h.limits.Strict.Middleware, h.requirePermission(permRolesDelete))

	// posts
	p := v1.PathPrefix("/posts").Subrouter()
	p.Use(h.limits.DataOperations.Middleware)
	h.route(p, http.MethodGet, "", h.handleListPosts, h.requirePermission(permPostsView))
	h.route(p, http.MethodPost, "", h.handleCreatePost, h.requirePermission(permPostsCreate))
	h.route(p, http.MethodGet, "/{id}", h.handleGetPost, h.requirePermission(permPostsView))
	h.route(p, http.MethodPatch, "/{id}", h.handleUpdatePost, h.requirePermission(permPostsUpdate))
	h.route(p, http.MethodDelete, "/{id}", h.handleDeletePost, h.requirePermission(permPostsDelete))

	// master data
	md := v1.PathPrefix("/master-data").Subrouter()
	h.route(md, http.MethodGet, "", h.handleListMasterData, h.requirePermission(""))
	h.route(md, http.MethodPost, "/sync", h.handleSyncMasterData, h.requirePermission(""), h.limits.StrictUser.Middleware)
	h.route(md, http.MethodGet, "/{type}", h.handleMasterDataByType, h.requirePermission(""))

	return router
}

// route registers fn on path, and on path + "/" for the collection root.
func (h *Handler) route(r *mux.Router, method, path string, fn http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	handler := chain(fn, mws...)
	r.Handle(path, handler).Methods(method)
	if path == "" {
		r.Handle("/", handler).Methods(method)
	}
}
