package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

var errBoom = errors.New("boom")

const (
	userID  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	otherID = "9b2d3c4a-1f0e-4b8a-9c6d-2e5f7a8b9c0d"
	roleID  = "5f1e2d3c-4b5a-4968-8778-695a4b3c2d1e"
	postID  = "1a2b3c4d-5e6f-4a1b-8c2d-3e4f5a6b7c8d"
)

// ---- fakes ----

type fakeAuth struct {
	principals map[string]*auth.Principal
	authErr    error

	registerIn  services.RegisterInput
	registerRes *services.RegisterResult
	registerErr error

	loginRes *services.LoginResult
	loginErr error

	resetEmail string
	resetErr   error

	resetToken    string
	resetPassword string
	resetPwErr    error
}

func (f *fakeAuth) Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error) {
	f.registerIn = in
	return f.registerRes, f.registerErr
}
func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return f.loginRes, f.loginErr
}
func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	p, ok := f.principals[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return p, nil
}
func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	f.resetEmail = email
	return f.resetErr
}
func (f *fakeAuth) ResetPassword(ctx context.Context, token, password string) error {
	f.resetToken, f.resetPassword = token, password
	return f.resetPwErr
}

type fakeUsers struct {
	users []*models.User
	total int
	page  services.Page
	err   error

	patch *models.UserPatch
	photo *services.PhotoUpload

	deleted string
	view    *models.UserRoleView
	roleID  string
}

func (f *fakeUsers) List(ctx context.Context, page services.Page) ([]*models.User, int, error) {
	f.page = page
	return f.users, f.total, f.err
}
func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrUserNotFound
}
func (f *fakeUsers) Update(ctx context.Context, p *auth.Principal, id string, patch *models.UserPatch, photo *services.PhotoUpload) (*models.User, error) {
	f.patch, f.photo = patch, photo
	if f.err != nil {
		return nil, f.err
	}
	if !p.CanActOn(id) {
		return nil, common.ErrorForbidden
	}
	return &models.User{ID: id}, nil
}
func (f *fakeUsers) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if !p.CanActOn(id) {
		return common.ErrorForbidden
	}
	f.deleted = id
	return f.err
}
func (f *fakeUsers) AssignRole(ctx context.Context, id, roleID string) (*models.UserRoleView, error) {
	f.roleID = roleID
	return f.view, f.err
}
func (f *fakeUsers) RemoveRole(ctx context.Context, id string) (*models.UserRoleView, error) {
	return f.view, f.err
}

type fakeRoles struct {
	roles []*models.Role
	err   error
	patch *models.RolePatch

	created struct {
		name, description string
		permissions       []string
	}
}

func (f *fakeRoles) Create(ctx context.Context, name, description string, permissions []string) (*models.Role, error) {
	f.created.name, f.created.description, f.created.permissions = name, description, permissions
	if f.err != nil {
		return nil, f.err
	}
	return &models.Role{ID: roleID, Name: name, Description: description, Permissions: permissions, IsActive: true}, nil
}
func (f *fakeRoles) List(ctx context.Context) ([]*models.Role, error) { return f.roles, f.err }
func (f *fakeRoles) Permissions() []models.Permission                 { return models.Permissions }
func (f *fakeRoles) Get(ctx context.Context, id string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Role{ID: id}, nil
}
func (f *fakeRoles) Update(ctx context.Context, id string, patch *models.RolePatch) (*models.Role, error) {
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &models.Role{ID: id}, nil
}
func (f *fakeRoles) Delete(ctx context.Context, id string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Role{ID: id, IsActive: false}, nil
}

type fakePosts struct {
	posts []*models.Post
	total int
	err   error

	author string
	patch  *models.PostPatch
}

func (f *fakePosts) List(ctx context.Context, page services.Page) ([]*models.Post, int, error) {
	return f.posts, f.total, f.err
}
func (f *fakePosts) Get(ctx context.Context, id string) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: id}, nil
}
func (f *fakePosts) Create(ctx context.Context, p *auth.Principal, title, content string) (*models.Post, error) {
	f.author = p.UserID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: postID, Title: title, Content: content, AuthorID: p.UserID}, nil
}
func (f *fakePosts) Update(ctx context.Context, p *auth.Principal, id string, patch *models.PostPatch) (*models.Post, error) {
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: id}, nil
}
func (f *fakePosts) Delete(ctx context.Context, p *auth.Principal, id string) error {
	return f.err
}

type fakeMasterData struct {
	snap   *services.MasterDataSnapshot
	byType *services.MasterDataByType
	err    error

	dataType *string
	isActive *bool
	synced   int
}

func (f *fakeMasterData) List(ctx context.Context, dataType *string, isActive *bool) (*services.MasterDataSnapshot, error) {
	f.dataType, f.isActive = dataType, isActive
	return f.snap, f.err
}
func (f *fakeMasterData) ByType(ctx context.Context, dataType string, isActive *bool) (*services.MasterDataByType, error) {
	f.isActive = isActive
	if !models.IsMasterDataType(dataType) {
		return nil, common.ErrInvalidMasterType
	}
	return f.byType, f.err
}
func (f *fakeMasterData) Sync(ctx context.Context) (*services.MasterDataSnapshot, error) {
	f.synced++
	return f.snap, f.err
}

type fakeErrorLog struct {
	mu      sync.Mutex
	entries []*models.Log
	err     error
}

func (f *fakeErrorLog) Record(ctx context.Context, entry *models.Log) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

// ---- fixture ----

const (
	adminToken  = "admin-token"
	viewerToken = "viewer-token"
	editorToken = "editor-token"
)

type fixture struct {
	auth       *fakeAuth
	users      *fakeUsers
	roles      *fakeRoles
	posts      *fakePosts
	masterData *fakeMasterData
	errorLog   *fakeErrorLog
	handler    *Handler
	router     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	all := make([]string, 0, len(models.Permissions))
	for _, p := range models.Permissions {
		all = append(all, p.Name)
	}
	f := &fixture{
		auth: &fakeAuth{principals: map[string]*auth.Principal{
			adminToken:  {UserID: otherID, IsAdmin: true, Permissions: all},
			viewerToken: {UserID: userID, Permissions: []string{"users.view", "posts.view", "roles.view"}},
			editorToken: {UserID: userID, Permissions: []string{"users.view", "users.update", "users.delete", "posts.view", "posts.create", "posts.update", "posts.delete"}},
		}},
		users:      &fakeUsers{},
		roles:      &fakeRoles{},
		posts:      &fakePosts{},
		masterData: &fakeMasterData{},
		errorLog:   &fakeErrorLog{},
	}
	f.handler = NewHandler(Options{
		Auth:       f.auth,
		Users:      f.users,
		Roles:      f.roles,
		Posts:      f.posts,
		MasterData: f.masterData,
		ErrorLog:   f.errorLog,
		DB:         fakePinger{},
		Logger:     logging.Discard(),
	})
	f.router = f.handler.Router()
	return f
}

// do sends a JSON request through the router. body may be nil.
func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
