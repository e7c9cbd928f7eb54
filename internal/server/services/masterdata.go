package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/masterdata"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
)

// MasterDataSnapshot is grouped master data plus bookkeeping fields.
type MasterDataSnapshot struct {
	MasterData   models.MasterDataSet `json:"master_data"`
	TotalRecords int                  `json:"total_records"`
	SyncStatus   string               `json:"sync_status,omitempty"`
	LastSynced   *time.Time           `json:"last_synced,omitempty"`
	LastUpdated  *time.Time           `json:"last_updated,omitempty"`
}

// MasterDataByType is the records of one type keyed by data_key.
type MasterDataByType struct {
	DataType     string                    `json:"data_type"`
	Data         map[string]map[string]any `json:"data"`
	TotalRecords int                       `json:"total_records"`
}

type MasterDataService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMasterDataService(db *sql.DB, m repomanager.RepositoryManager) *MasterDataService {
	return &MasterDataService{db: db, repomanager: m, now: time.Now}
}

// List groups records by type. A nil isActive selects active records.
func (s *MasterDataService) List(ctx context.Context, dataType *string, isActive *bool) (*MasterDataSnapshot, error) {
	if dataType != nil && !models.IsMasterDataType(*dataType) {
		return nil, common.ErrInvalidMasterType
	}
	records, err := s.repomanager.MasterData(s.db).List(ctx, masterdata.Filter{DataType: dataType, IsActive: activeOrDefault(isActive)})
	if err != nil {
		return nil, fmt.Errorf("error loading master data: %w", err)
	}
	now := s.now()
	return &MasterDataSnapshot{
		MasterData:   models.GroupMasterData(records),
		TotalRecords: len(records),
		LastUpdated:  &now,
	}, nil
}

// ByType returns the records of dataType. No records is ErrMasterDataNotFound.
func (s *MasterDataService) ByType(ctx context.Context, dataType string, isActive *bool) (*MasterDataByType, error) {
	if !models.IsMasterDataType(dataType) {
		return nil, common.ErrInvalidMasterType
	}
	records, err := s.repomanager.MasterData(s.db).List(ctx, masterdata.Filter{DataType: &dataType, IsActive: activeOrDefault(isActive)})
	if err != nil {
		return nil, fmt.Errorf("error loading master data: %w", err)
	}
	if len(records) == 0 {
		return nil, common.ErrMasterDataNotFound
	}
	return &MasterDataByType{
		DataType:     dataType,
		Data:         models.GroupMasterData(records)[dataType],
		TotalRecords: len(records),
	}, nil
}

// Sync bumps version and last_synced on every active record and returns the
// updated records.
func (s *MasterDataService) Sync(ctx context.Context) (*MasterDataSnapshot, error) {
	var records []*models.MasterData
	active := true
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.MasterData(tx)
		if _, err := repo.Sync(ctx); err != nil {
			return err
		}
		var err error
		records, err = repo.List(ctx, masterdata.Filter{IsActive: &active})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error syncing master data: %w", err)
	}

	now := s.now()
	return &MasterDataSnapshot{
		MasterData:   models.GroupMasterData(records),
		TotalRecords: len(records),
		SyncStatus:   "success",
		LastSynced:   &now,
	}, nil
}

// SyncForLogin reads the active records, then bumps their version. The
// snapshot reflects the records as read. No active records is an error.
func (s *MasterDataService) SyncForLogin(ctx context.Context) (*MasterDataSnapshot, error) {
	var records []*models.MasterData
	active := true
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.MasterData(tx)
		var err error
		records, err = repo.List(ctx, masterdata.Filter{IsActive: &active})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return common.ErrMasterDataNotFound
		}
		_, err = repo.Sync(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &MasterDataSnapshot{
		MasterData:   models.GroupMasterData(records),
		TotalRecords: len(records),
		LastSynced:   &now,
	}, nil
}

func activeOrDefault(isActive *bool) *bool {
	if isActive != nil {
		return isActive
	}
	active := true
	return &active
}
