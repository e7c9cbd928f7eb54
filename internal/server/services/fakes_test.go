package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/config"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/logs"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/masterdata"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/posts"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/resettokens"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/roles"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:  15 * time.Minute,
		PublicBaseURL:               "http://localhost:3000/",
	}
}

// store is the shared in-memory state behind the fake repositories.
type store struct {
	seq        int
	users      map[string]*models.User
	roles      map[string]*models.Role
	posts      map[string]*models.Post
	tokens     map[string]*models.ResetToken
	masterData []*models.MasterData
	logs       []*models.Log
	syncs      int
}

func newStore() *store {
	return &store{
		users:  map[string]*models.User{},
		roles:  map[string]*models.Role{},
		posts:  map[string]*models.Post{},
		tokens: map[string]*models.ResetToken{},
	}
}

func (s *store) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *store) addRole(name string, active bool, perms ...string) *models.Role {
	r := &models.Role{ID: s.id("r"), Name: name, Permissions: perms, IsActive: active}
	s.roles[r.ID] = r
	return r
}

func (s *store) addUser(u *models.User) *models.User {
	if u.ID == "" {
		u.ID = s.id("u")
	}
	s.users[u.ID] = u
	return u
}

func (s *store) withRole(u *models.User) *models.User {
	cp := *u
	cp.Role = nil
	if u.RoleID != nil {
		if r, ok := s.roles[*u.RoleID]; ok {
			cp.Role = &models.RoleSummary{ID: r.ID, Name: r.Name, Permissions: r.Permissions, IsActive: r.IsActive}
		}
	}
	return &cp
}

// --- users ---

type fakeUsersRepo struct {
	s   *store
	err error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = f.s.id("u")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.s.users[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.s.withRole(u), nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.s.users {
		if u.Email == email {
			return f.s.withRole(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsersRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	ids := make([]string, 0, len(f.s.users))
	for id := range f.s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*models.User
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, f.s.withRole(f.s.users[ids[i]]))
	}
	return out, len(ids), nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, p *models.UserPatch) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.About != nil {
		u.About = *p.About
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.ProfilePhoto != nil {
		u.ProfilePhoto = *p.ProfilePhoto
	}
	return nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) SetRole(ctx context.Context, id string, roleID *string, isAdmin bool) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.RoleID = roleID
	u.IsAdmin = isAdmin
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.users, id)
	return nil
}

func (f *fakeUsersRepo) SyncAdminFlag(ctx context.Context, roleID string, isAdmin bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, u := range f.s.users {
		if u.RoleID != nil && *u.RoleID == roleID && u.IsAdmin != isAdmin {
			u.IsAdmin = isAdmin
			n++
		}
	}
	return n, nil
}

func (f *fakeUsersRepo) AssignRoleWhereMissing(ctx context.Context, roleID string, isAdmin bool) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, u := range f.s.users {
		if u.RoleID == nil {
			id := roleID
			u.RoleID = &id
			u.IsAdmin = isAdmin
			n++
		}
	}
	return n, nil
}

// --- roles ---

type fakeRolesRepo struct {
	s   *store
	err error
}

func (f *fakeRolesRepo) Create(ctx context.Context, r *models.Role) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.s.roles {
		if existing.Name == r.Name {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.ID = f.s.id("r")
	f.s.roles[r.ID] = r
	return r, nil
}

func (f *fakeRolesRepo) GetByID(ctx context.Context, id string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.s.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRolesRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.s.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRolesRepo) ListActive(ctx context.Context) ([]*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Role
	for _, r := range f.s.roles {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRolesRepo) Update(ctx context.Context, id string, p *models.RolePatch) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.s.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Name != nil {
		for _, other := range f.s.roles {
			if other.ID != id && other.Name == *p.Name {
				return nil, common.ErrorAlreadyExists
			}
		}
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Permissions != nil {
		r.Permissions = p.Permissions
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRolesRepo) SoftDelete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	r, ok := f.s.roles[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.IsActive = false
	return nil
}

func (f *fakeRolesRepo) InsertIfAbsent(ctx context.Context, r *models.Role) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, err := f.GetByName(ctx, r.Name); err == nil {
		return false, nil
	}
	f.s.addRole(r.Name, true, r.Permissions...)
	return true, nil
}

// --- posts ---

type fakePostsRepo struct {
	s   *store
	err error
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = f.s.id("p")
	f.s.posts[p.ID] = p
	return p, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	cp.Author = &models.PostAuthor{ID: p.AuthorID}
	if u, ok := f.s.users[p.AuthorID]; ok {
		cp.Author.FirstName = u.FirstName
		cp.Author.Email = u.Email
	}
	return &cp, nil
}

func (f *fakePostsRepo) List(ctx context.Context, offset, limit int) ([]*models.Post, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*models.Post
	for id := range f.s.posts {
		p, _ := f.GetByID(ctx, id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (f *fakePostsRepo) Update(ctx context.Context, id string, patch *models.PostPatch) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.s.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	return nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.posts, id)
	return nil
}

// --- reset tokens ---

type fakeTokensRepo struct {
	s   *store
	err error
}

func (f *fakeTokensRepo) Replace(ctx context.Context, userID, token string, validity time.Duration) (*models.ResetToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	for k, t := range f.s.tokens {
		if t.UserID == userID {
			delete(f.s.tokens, k)
		}
	}
	rt := &models.ResetToken{ID: f.s.id("t"), UserID: userID, Token: token, ExpiresAt: time.Now().Add(validity), CreatedAt: time.Now()}
	f.s.tokens[token] = rt
	return rt, nil
}

func (f *fakeTokensRepo) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	rt, ok := f.s.tokens[token]
	if !ok || rt.Expired(now) {
		return "", common.ErrorNotFound
	}
	delete(f.s.tokens, token)
	return rt.UserID, nil
}

func (f *fakeTokensRepo) Delete(ctx context.Context, token string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.s.tokens, token)
	return nil
}

func (f *fakeTokensRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for k, t := range f.s.tokens {
		if t.Expired(time.Now()) {
			delete(f.s.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- master data ---

type fakeMasterDataRepo struct {
	s       *store
	err     error
	syncErr error
}

func (f *fakeMasterDataRepo) List(ctx context.Context, filter masterdata.Filter) ([]*models.MasterData, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.MasterData
	for _, md := range f.s.masterData {
		if filter.DataType != nil && md.DataType != *filter.DataType {
			continue
		}
		if filter.IsActive != nil && md.IsActive != *filter.IsActive {
			continue
		}
		cp := *md
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeMasterDataRepo) Sync(ctx context.Context) (int64, error) {
	if f.syncErr != nil {
		return 0, f.syncErr
	}
	f.s.syncs++
	now := time.Now()
	var n int64
	for _, md := range f.s.masterData {
		if md.IsActive {
			md.Version++
			md.LastSynced = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeMasterDataRepo) InsertIfAbsent(ctx context.Context, r *models.MasterData) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, md := range f.s.masterData {
		if md.DataType == r.DataType && md.DataKey == r.DataKey {
			return false, nil
		}
	}
	cp := *r
	cp.ID = f.s.id("m")
	cp.IsActive = true
	cp.Version = 1
	f.s.masterData = append(f.s.masterData, &cp)
	return true, nil
}

// --- logs ---

type fakeLogsRepo struct {
	s   *store
	err error
}

func (f *fakeLogsRepo) Create(ctx context.Context, e *models.Log) error {
	if f.err != nil {
		return f.err
	}
	f.s.logs = append(f.s.logs, e)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	s  *store
	u  *fakeUsersRepo
	r  *fakeRolesRepo
	p  *fakePostsRepo
	t  *fakeTokensRepo
	md *fakeMasterDataRepo
	l  *fakeLogsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	s := newStore()
	return &fakeRepoManager{
		s:  s,
		u:  &fakeUsersRepo{s: s},
		r:  &fakeRolesRepo{s: s},
		p:  &fakePostsRepo{s: s},
		t:  &fakeTokensRepo{s: s},
		md: &fakeMasterDataRepo{s: s},
		l:  &fakeLogsRepo{s: s},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                   { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository                   { return m.r }
func (m *fakeRepoManager) Posts(db dbx.DBTX) posts.Repository                   { return m.p }
func (m *fakeRepoManager) ResetTokens(db dbx.DBTX) resettokens.Repository       { return m.t }
func (m *fakeRepoManager) MasterData(db dbx.DBTX) masterdata.Repository         { return m.md }
func (m *fakeRepoManager) Logs(db dbx.DBTX) logs.Repository                     { return m.l }

// --- collaborators ---

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendHTML(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type fakePhotoStore struct {
	objects    map[string][]byte
	deleted    []string
	putErr     error
	presignErr error
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: map[string][]byte{}}
}

func (f *fakePhotoStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakePhotoStore) PresignGet(ctx context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://photos.test/" + key, nil
}

var discard = logging.Discard()

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}
