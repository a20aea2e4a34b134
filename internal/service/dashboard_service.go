package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

const dashboardCacheKey = "dashboard:summary"

// dashboardCache is the slice of the Redis client the snapshot cache needs.
type dashboardCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DashboardService aggregates KPIs across requests and assets. Snapshots are
// cached in Redis for a short TTL so dashboard polling does not hammer the
// repositories; when Redis is unavailable the snapshot is computed fresh.
type DashboardService struct {
	requests repository.RequestRepository
	assets   repository.AssetRepository
	cache    dashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	RequestRepo repository.RequestRepository
	AssetRepo   repository.AssetRepository
	Redis       *redis.Client
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	s := &DashboardService{
		requests: deps.RequestRepo,
		assets:   deps.AssetRepo,
		cacheTTL: deps.CacheTTL,
		logger:   deps.Logger,
		now:      time.Now,
	}
	if deps.Redis != nil {
		s.cache = deps.Redis
	}
	return s
}

// RegisterInvalidation subscribes cache invalidation to the mutation events so
// approvals, edits and asset changes show up on the next dashboard read
// instead of waiting out the TTL.
func (s *DashboardService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventRequestCreated, s.handleMutation)
	dispatcher.Subscribe(events.EventRequestAssigned, s.handleMutation)
	dispatcher.Subscribe(events.EventRequestStatusChanged, s.handleMutation)
	dispatcher.Subscribe(events.EventRequestUpdated, s.handleMutation)
	dispatcher.Subscribe(events.EventAssetChanged, s.handleMutation)
}

func (s *DashboardService) handleMutation(ctx context.Context, _ events.Event) error {
	s.Invalidate(ctx)
	return nil
}

// AuditActivity is one recent audit entry with its request context.
type AuditActivity struct {
	RequestID    string    `json:"request_id"`
	RequestTitle string    `json:"request_title"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"user_id"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
}

// Summary is the dashboard snapshot.
type Summary struct {
	GeneratedAt         time.Time                      `json:"generated_at"`
	TotalRequests       int                            `json:"total_requests"`
	OpenRequests        int                            `json:"open_requests"`
	RequestsByStatus    map[domain.RequestStatus]int   `json:"requests_by_status"`
	RequestsByPriority  map[domain.RequestPriority]int `json:"requests_by_priority"`
	TotalAssets         int                            `json:"total_assets"`
	CriticalAssets      int                            `json:"critical_assets"`
	UpcomingMaintenance int                            `json:"upcoming_maintenance"`
	RecentActivity      []AuditActivity                `json:"recent_activity"`
}

// GetSummary returns the dashboard snapshot for the actor's role.
func (s *DashboardService) GetSummary(ctx context.Context, actor *domain.User) (*Summary, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanViewDashboard }, "role cannot view the dashboard"); err != nil {
		return nil, err
	}
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}
	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, summary)
	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context) (*Summary, error) {
	requests, err := s.requests.List(ctx, repository.RequestFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assets, err := s.assets.List(ctx, repository.AssetFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	summary := &Summary{
		GeneratedAt:        now,
		TotalRequests:      len(requests),
		TotalAssets:        len(assets),
		RequestsByStatus:   map[domain.RequestStatus]int{},
		RequestsByPriority: map[domain.RequestPriority]int{},
	}
	activity := []AuditActivity{}
	for i := range requests {
		req := &requests[i]
		summary.RequestsByStatus[req.Status]++
		summary.RequestsByPriority[req.Priority]++
		if !req.Status.Terminal() {
			summary.OpenRequests++
		}
		for _, entry := range req.AuditLog {
			activity = append(activity, AuditActivity{
				RequestID:    req.ID,
				RequestTitle: req.Title,
				Timestamp:    entry.Timestamp,
				UserID:       entry.UserID,
				Action:       entry.Action,
				Details:      entry.Details,
			})
		}
	}
	sort.Slice(activity, func(i, j int) bool { return activity[i].Timestamp.After(activity[j].Timestamp) })
	if len(activity) > 10 {
		activity = activity[:10]
	}
	summary.RecentActivity = activity

	maintenanceHorizon := now.AddDate(0, 0, 30)
	for i := range assets {
		asset := &assets[i]
		if asset.Health == domain.AssetHealthCritical {
			summary.CriticalAssets++
		}
		if asset.NextMaintenance != nil && asset.NextMaintenance.After(now) && asset.NextMaintenance.Before(maintenanceHorizon) {
			summary.UpcomingMaintenance++
		}
	}
	return summary, nil
}

func (s *DashboardService) fromCache(ctx context.Context) *Summary {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DashboardService) toCache(ctx context.Context, summary *Summary) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached snapshot so the next dashboard read recomputes
// it. RegisterInvalidation hooks this up to the mutation events.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
