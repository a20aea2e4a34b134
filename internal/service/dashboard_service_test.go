package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
)

type fakeDashboardCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeDashboardCache() *fakeDashboardCache {
	return &fakeDashboardCache{data: map[string]string{}}
}

func (f *fakeDashboardCache) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeDashboardCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeDashboardCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeDashboardCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func TestDashboardSummaryAggregates(t *testing.T) {
	ctx := context.Background()
	requests := repository.NewMemoryRequestRepository()
	assets := repository.NewMemoryAssetRepository()

	now := time.Now()
	soon := now.Add(10 * 24 * time.Hour)
	far := now.Add(90 * 24 * time.Hour)
	require.NoError(t, assets.Create(ctx, &domain.Asset{ID: "AST001", Name: "AC Unit", Type: "HVAC", Health: domain.AssetHealthCritical, NextMaintenance: &soon}))
	require.NoError(t, assets.Create(ctx, &domain.Asset{ID: "AST002", Name: "Faucet", Type: "Plumbing", Health: domain.AssetHealthGood, NextMaintenance: &far}))

	require.NoError(t, requests.Create(ctx, &domain.Request{
		ID: "REQ001", Title: "AC broken", Status: domain.RequestStatusInProgress,
		Priority: domain.RequestPriorityHigh, ReporterID: "USR001",
		AuditLog: []domain.AuditEntry{
			{Timestamp: now.Add(-time.Hour), UserID: "USR001", Action: "created request"},
			{Timestamp: now, UserID: "USR002", Action: "assigned technician"},
		},
	}))
	require.NoError(t, requests.Create(ctx, &domain.Request{
		ID: "REQ002", Title: "Chair broken", Status: domain.RequestStatusApproved,
		Priority: domain.RequestPriorityLow, ReporterID: "USR006",
		AuditLog: []domain.AuditEntry{
			{Timestamp: now.Add(-2 * time.Hour), UserID: "USR006", Action: "created request"},
		},
	}))

	svc := NewDashboardService(DashboardDependencies{RequestRepo: requests, AssetRepo: assets})
	manager := &domain.User{ID: "USR002", Role: domain.RoleFacilityManager}

	summary, err := svc.GetSummary(ctx, manager)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRequests)
	assert.Equal(t, 1, summary.OpenRequests)
	assert.Equal(t, 1, summary.RequestsByStatus[domain.RequestStatusInProgress])
	assert.Equal(t, 1, summary.RequestsByStatus[domain.RequestStatusApproved])
	assert.Equal(t, 2, summary.TotalAssets)
	assert.Equal(t, 1, summary.CriticalAssets)
	assert.Equal(t, 1, summary.UpcomingMaintenance)

	require.Len(t, summary.RecentActivity, 3)
	assert.Equal(t, "assigned technician", summary.RecentActivity[0].Action)
	assert.Equal(t, "REQ001", summary.RecentActivity[0].RequestID)
}

func TestDashboardSummaryRequiresCapability(t *testing.T) {
	svc := NewDashboardService(DashboardDependencies{
		RequestRepo: repository.NewMemoryRequestRepository(),
		AssetRepo:   repository.NewMemoryAssetRepository(),
	})

	_, err := svc.GetSummary(context.Background(), nil)
	require.Error(t, err)

	// every defined role can view the dashboard; an unknown role falls back
	// to the employee vector, which can too
	viewer := &domain.User{ID: "USR100", Role: domain.Role("Contractor")}
	_, err = svc.GetSummary(context.Background(), viewer)
	assert.NoError(t, err)
}

func TestDashboardCacheInvalidatedOnMutationEvents(t *testing.T) {
	ctx := context.Background()
	requests := repository.NewMemoryRequestRepository()
	assets := repository.NewMemoryAssetRepository()
	cache := newFakeDashboardCache()

	svc := NewDashboardService(DashboardDependencies{
		RequestRepo: requests,
		AssetRepo:   assets,
		CacheTTL:    time.Minute,
	})
	svc.cache = cache

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterInvalidation(dispatcher)

	manager := &domain.User{ID: "USR002", Role: domain.RoleFacilityManager}

	first, err := svc.GetSummary(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalRequests)
	assert.True(t, cache.has(dashboardCacheKey))

	// a repository write alone does not refresh the snapshot
	require.NoError(t, requests.Create(ctx, &domain.Request{
		ID: "REQ001", Title: "AC broken", Status: domain.RequestStatusPending,
		Priority: domain.RequestPriorityHigh, ReporterID: "USR001",
	}))
	stale, err := svc.GetSummary(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.TotalRequests)

	// a request mutation event drops the snapshot and the next read recomputes
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "EVT001", Type: events.EventRequestStatusChanged, RequestID: "REQ001"}))
	assert.False(t, cache.has(dashboardCacheKey))

	fresh, err := svc.GetSummary(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalRequests)

	// asset changes invalidate too
	require.NoError(t, assets.Create(ctx, &domain.Asset{ID: "AST001", Name: "AC Unit", Type: "HVAC", Health: domain.AssetHealthGood}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "EVT002", Type: events.EventAssetChanged}))

	refreshed, err := svc.GetSummary(ctx, manager)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.TotalAssets)
}
