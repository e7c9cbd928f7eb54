package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

func seedMasterData(t *testing.T, rm *fakeRepoManager) {
	t.Helper()
	for i := range DefaultMasterData {
		_, err := rm.md.InsertIfAbsent(context.Background(), &DefaultMasterData[i])
		require.NoError(t, err)
	}
}

func TestMasterDataService_List(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	seedMasterData(t, rm)
	rm.s.masterData[0].IsActive = false
	svc := NewMasterDataService(db, rm)

	all, err := svc.List(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultMasterData)-1, all.TotalRecords)
	assert.Len(t, all.MasterData, 4)
	assert.NotNil(t, all.LastUpdated)

	inactive := false
	off, err := svc.List(context.Background(), nil, &inactive)
	require.NoError(t, err)
	assert.Equal(t, 1, off.TotalRecords)

	typ := models.MasterDataModules
	mods, err := svc.List(context.Background(), &typ, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, mods.TotalRecords)
	assert.Contains(t, mods.MasterData[models.MasterDataModules], "user_management")

	bad := "colors"
	_, err = svc.List(context.Background(), &bad, nil)
	assert.ErrorIs(t, err, common.ErrInvalidMasterType)
}

func TestMasterDataService_ByType(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	svc := NewMasterDataService(db, rm)

	_, err := svc.ByType(context.Background(), models.MasterDataRoles, nil)
	assert.ErrorIs(t, err, common.ErrMasterDataNotFound)

	_, err = svc.ByType(context.Background(), "colors", nil)
	assert.ErrorIs(t, err, common.ErrInvalidMasterType)

	seedMasterData(t, rm)
	got, err := svc.ByType(context.Background(), models.MasterDataPermissions, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MasterDataPermissions, got.DataType)
	assert.Equal(t, 4, got.TotalRecords)
	require.Contains(t, got.Data, "read")
	assert.Equal(t, "Read Access", got.Data["read"]["name"])
	assert.Equal(t, "Permission to read/view data", got.Data["read"]["description"])
}

func TestMasterDataService_Sync(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	seedMasterData(t, rm)
	svc := NewMasterDataService(db, rm)

	expectTx(mock)
	snap, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", snap.SyncStatus)
	assert.Equal(t, len(DefaultMasterData), snap.TotalRecords)
	assert.Equal(t, 2, rm.s.masterData[0].Version)
	assert.NotNil(t, rm.s.masterData[0].LastSynced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataService_Sync_Failure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.md.syncErr = errBoom{}
	svc := NewMasterDataService(db, rm)

	expectRollback(mock)
	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, errBoom{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataService_SyncForLogin_ReportsRecordsAsRead(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	seedMasterData(t, rm)
	svc := NewMasterDataService(db, rm)

	expectTx(mock)
	snap, err := svc.SyncForLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.MasterData[models.MasterDataRoles]["admin"]["version"])
	assert.Equal(t, 2, rm.s.masterData[0].Version)
	assert.Empty(t, snap.SyncStatus)
}
