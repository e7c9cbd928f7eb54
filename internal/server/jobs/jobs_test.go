package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

type fakePurger struct {
	calls int
	err   error
}

func (f *fakePurger) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

type fakeSweeper struct {
	at []time.Time
}

func (f *fakeSweeper) Sweep(now time.Time) int {
	f.at = append(f.at, now)
	return 1
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(ctx context.Context) (*services.MasterDataSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &services.MasterDataSnapshot{TotalRecords: 12}, nil
}

func TestNewScheduler_RegistersConfiguredJobs(t *testing.T) {
	ctx := context.Background()
	log := logging.Discard()

	s, err := NewScheduler(ctx, Options{}, log)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s, err = NewScheduler(ctx, Options{
		Tokens:     &fakePurger{},
		Limiters:   []Sweeper{&fakeSweeper{}},
		MasterData: &fakeSyncer{},
	}, log)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	s, err = NewScheduler(ctx, Options{
		Tokens:             &fakePurger{},
		Limiters:           []Sweeper{&fakeSweeper{}},
		MasterData:         &fakeSyncer{},
		MasterDataSyncSpec: "@every 1h",
	}, log)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestNewScheduler_BadSpec(t *testing.T) {
	_, err := NewScheduler(context.Background(), Options{
		MasterData:         &fakeSyncer{},
		MasterDataSyncSpec: "not a schedule",
	}, logging.Discard())
	assert.Error(t, err)
}

func TestScheduler_JobsCallCollaborators(t *testing.T) {
	purger := &fakePurger{}
	a, b := &fakeSweeper{}, &fakeSweeper{}
	syncer := &fakeSyncer{}
	s, err := NewScheduler(context.Background(), Options{
		Tokens:             purger,
		Limiters:           []Sweeper{a, b},
		MasterData:         syncer,
		MasterDataSyncSpec: "@hourly",
	}, logging.Discard())
	require.NoError(t, err)

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.purgeTokens()
	s.sweepLimiters()
	s.syncMasterData()

	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, []time.Time{fixed}, a.at)
	assert.Equal(t, []time.Time{fixed}, b.at)
	assert.Equal(t, 1, syncer.calls)
}

func TestScheduler_JobErrorsAreLogged(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	syncer := &fakeSyncer{err: errors.New("db down")}
	s, err := NewScheduler(context.Background(), Options{Tokens: purger, MasterData: syncer}, logging.Discard())
	require.NoError(t, err)

	assert.NotPanics(t, s.purgeTokens)
	assert.NotPanics(t, s.syncMasterData)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(context.Background(), Options{Tokens: &fakePurger{}}, logging.Discard())
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
