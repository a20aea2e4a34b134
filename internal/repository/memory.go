package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/domain"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// The in-memory repositories back the service when no database is
// configured and serve as fixtures in tests. They preserve insertion order
// and apply copy-on-write on both reads and writes: stored records are
// never aliased to caller values, so in-flight readers never observe a
// partially updated record. Lookups miss with pgx.ErrNoRows, the same
// sentinel the postgres repositories produce.

type memoryRequestRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Request
}

// NewMemoryRequestRepository creates an empty in-memory request store.
func NewMemoryRequestRepository() RequestRepository {
	return &memoryRequestRepository{byID: make(map[string]*domain.Request)}
}

func (r *memoryRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[req.ID]; exists {
		return apperrors.NewConflict("request already exists", map[string]any{"request_id": req.ID})
	}
	r.byID[req.ID] = req.Clone()
	r.order = append(r.order, req.ID)
	return nil
}

func (r *memoryRequestRepository) Update(ctx context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[req.ID]; !exists {
		return pgx.ErrNoRows
	}
	r.byID[req.ID] = req.Clone()
	return nil
}

func (r *memoryRequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return req.Clone(), nil
}

func (r *memoryRequestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	r.mu.RLock()
	matched := make([]domain.Request, 0, len(r.order))
	for _, id := range r.order {
		req := r.byID[id]
		if matchRequest(req, filter) {
			matched = append(matched, *req.Clone())
		}
	}
	r.mu.RUnlock()

	switch filter.Sort {
	case SortNewest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	}
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func matchRequest(req *domain.Request, filter RequestFilter) bool {
	if filter.ReporterID != nil && req.ReporterID != *filter.ReporterID {
		return false
	}
	if filter.AssigneeID != nil && (req.AssigneeID == nil || *req.AssigneeID != *filter.AssigneeID) {
		return false
	}
	if filter.InvolvedUserID != nil {
		involved := req.ReporterID == *filter.InvolvedUserID ||
			(req.AssigneeID != nil && *req.AssigneeID == *filter.InvolvedUserID)
		if !involved {
			return false
		}
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, req.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, req.Priority) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" {
			haystack := strings.ToLower(req.Title + " " + req.Description + " " + req.ID)
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}
	return true
}

func containsStatus(list []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.RequestPriority, priority domain.RequestPriority) bool {
	for _, p := range list {
		if p == priority {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type memoryAssetRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Asset
}

// NewMemoryAssetRepository creates an empty in-memory asset store.
func NewMemoryAssetRepository() AssetRepository {
	return &memoryAssetRepository{byID: make(map[string]*domain.Asset)}
}

func (r *memoryAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[asset.ID]; exists {
		return apperrors.NewConflict("asset already exists", map[string]any{"asset_id": asset.ID})
	}
	r.byID[asset.ID] = asset.Clone()
	r.order = append(r.order, asset.ID)
	return nil
}

func (r *memoryAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[asset.ID]; !exists {
		return pgx.ErrNoRows
	}
	r.byID[asset.ID] = asset.Clone()
	return nil
}

func (r *memoryAssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return asset.Clone(), nil
}

func (r *memoryAssetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	r.mu.RLock()
	matched := make([]domain.Asset, 0, len(r.order))
	for _, id := range r.order {
		asset := r.byID[id]
		if matchAsset(asset, filter) {
			matched = append(matched, *asset.Clone())
		}
	}
	r.mu.RUnlock()

	if filter.SortByName {
		sort.SliceStable(matched, func(i, j int) bool {
			if filter.Descending {
				return matched[i].Name > matched[j].Name
			}
			return matched[i].Name < matched[j].Name
		})
	}
	return matched, nil
}

func matchAsset(asset *domain.Asset, filter AssetFilter) bool {
	if filter.Type != nil && asset.Type != *filter.Type {
		return false
	}
	if len(filter.Healths) > 0 {
		found := false
		for _, h := range filter.Healths {
			if asset.Health == h {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" {
			haystack := strings.ToLower(asset.Name + " " + asset.ID + " " + asset.Location)
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}
	return true
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.User
}

// NewMemoryUserRepository creates an empty in-memory user store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byID: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[user.ID]; exists {
		return apperrors.NewConflict("user already exists", map[string]any{"user_id": user.ID})
	}
	r.byID[user.ID] = user.Clone()
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[user.ID]; !exists {
		return pgx.ErrNoRows
	}
	r.byID[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user.Clone(), nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if strings.EqualFold(r.byID[id].Email, email) {
			return r.byID[id].Clone(), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		user := r.byID[id]
		if matchUser(user, filter) {
			matched = append(matched, *user.Clone())
		}
	}
	return matched, nil
}

func matchUser(user *domain.User, filter UserFilter) bool {
	if filter.Role != nil && user.Role != *filter.Role {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" {
			haystack := strings.ToLower(user.Name + " " + user.Email + " " + user.ID)
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}
	return true
}
