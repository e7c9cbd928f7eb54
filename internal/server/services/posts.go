package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

func (s *PostService) List(ctx context.Context, page Page) ([]*models.Post, int, error) {
	posts, total, err := s.repomanager.Posts(s.db).List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, total, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	return post, nil
}

// Create stores a post authored by the caller.
func (s *PostService) Create(ctx context.Context, p *auth.Principal, title, content string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{Title: title, Content: content, AuthorID: p.UserID})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	return s.Get(ctx, post.ID)
}

// Update changes a post. Only its author and admins may do so.
func (s *PostService) Update(ctx context.Context, p *auth.Principal, id string, patch *models.PostPatch) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanActOn(post.AuthorID) {
		return nil, common.ErrorForbidden
	}
	if err := s.repomanager.Posts(s.db).Update(ctx, id, patch); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a post. Only its author and admins may do so.
func (s *PostService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanActOn(post.AuthorID) {
		return common.ErrorForbidden
	}
	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrPostNotFound
		}
		return fmt.Errorf("error deleting post: %w", err)
	}
	return nil
}
