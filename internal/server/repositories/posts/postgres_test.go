package posts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

var cols = []string{"id", "title", "content", "author_id", "created_at", "updated_at", "first_name", "email"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^\s*INSERT\s+INTO\s+posts\s*\(title,\s*content,\s*author_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("Hello", "World", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p-1", now, now))

	got, err := repo.Create(context.Background(), &models.Post{Title: "Hello", Content: "World", AuthorID: "u-1"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "p-1" || got.Author == nil || got.Author.ID != "u-1" {
		t.Fatalf("unexpected post: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+posts`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Post{Title: "x", AuthorID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)FROM\s+posts\s+p\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*p\.author_id\s+WHERE\s+p\.id\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p-1", "T", "C", "u-1", now, now, "Alice", "alice@example.com"))

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.AuthorID != "u-1" || got.Author.FirstName != "Alice" || got.Author.Email != "alice@example.com" {
		t.Fatalf("unexpected post: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+posts`).WithArgs("p-9").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "p-9"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+posts$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`(?s)ORDER\s+BY\s+p\.created_at\s+DESC,\s*p\.id\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p-11", "T", "C", "u-1", now, now, "A", "a@x.io"))

	got, total, err := repo.List(context.Background(), 10, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 11 || len(got) != 1 || got[0].ID != "p-11" {
		t.Fatalf("unexpected page: total=%d posts=%+v", total, got)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	title := "New"
	mock.ExpectExec(`^UPDATE\s+posts\s+SET\s+title\s*=\s*\$1,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$2$`).
		WithArgs("New", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "p-1", &models.PostPatch{Title: &title}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "p-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
