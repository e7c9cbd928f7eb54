package services

import (
	"context"
	"database/sql"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// LogService persists error records.
type LogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLogService(db *sql.DB, m repomanager.RepositoryManager) *LogService {
	return &LogService{db: db, repomanager: m}
}

func (s *LogService) Record(ctx context.Context, entry *models.Log) error {
	return s.repomanager.Logs(s.db).Create(ctx, entry)
}
