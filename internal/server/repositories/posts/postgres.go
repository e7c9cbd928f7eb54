package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

const selectPost = `
	SELECT p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
	       u.first_name, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts post and fills in its id and timestamps. Author details
// are left to the caller.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if post.Author == nil {
		post.Author = &models.PostAuthor{ID: post.AuthorID}
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// List returns one page of posts, newest first, and the total count.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Post, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectPost+` ORDER BY p.created_at DESC, p.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return posts, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.PostPatch) error {
	var set dbx.Assignments
	if patch.Title != nil {
		set.Add("title", *patch.Title)
	}
	if patch.Content != nil {
		set.Add("content", *patch.Content)
	}

	query := `UPDATE posts SET ` + set.SQL()
	if set.Len() > 0 {
		query += `, `
	}
	query += `updated_at = now() WHERE id = ` + set.Placeholder(1)

	return r.execOne(ctx, query, set.Args(id)...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM posts WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p      models.Post
		author models.PostAuthor
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
		&author.FirstName, &author.Email); err != nil {
		return nil, err
	}
	author.ID = p.AuthorID
	p.Author = &author
	return &p, nil
}
