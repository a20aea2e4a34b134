package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// AssetService manages the asset registry. Reads are open to any
// authenticated user; writes require the manage-assets capability.
type AssetService struct {
	assets     repository.AssetRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository, dispatcher events.Dispatcher) *AssetService {
	return &AssetService{assets: assets, dispatcher: dispatcher, now: time.Now}
}

// AssetInput carries asset fields for create and update.
type AssetInput struct {
	Name            string
	Type            string
	Location        string
	Health          domain.AssetHealth
	LastMaintenance *time.Time
	NextMaintenance *time.Time
}

var validHealths = map[domain.AssetHealth]struct{}{
	domain.AssetHealthGood:     {},
	domain.AssetHealthPoor:     {},
	domain.AssetHealthCritical: {},
	domain.AssetHealthObsolete: {},
}

func validateAssetInput(input AssetInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(input.Type) == "" {
		details["type"] = "required"
	}
	if _, ok := validHealths[input.Health]; !ok {
		details["health"] = "unknown value"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("missing required fields", details)
	}
	return nil
}

// CreateAsset registers a new asset.
func (s *AssetService) CreateAsset(ctx context.Context, actor *domain.User, input AssetInput) (*domain.Asset, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageAssets }, "role cannot manage assets"); err != nil {
		return nil, err
	}
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}
	now := s.now()
	asset := &domain.Asset{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(input.Name),
		Type:            strings.TrimSpace(input.Type),
		Location:        strings.TrimSpace(input.Location),
		Health:          input.Health,
		LastMaintenance: input.LastMaintenance,
		NextMaintenance: input.NextMaintenance,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, asset.ID)
	return asset, nil
}

// UpdateAsset replaces the mutable fields of an existing asset.
func (s *AssetService) UpdateAsset(ctx context.Context, actor *domain.User, id string, input AssetInput) (*domain.Asset, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageAssets }, "role cannot manage assets"); err != nil {
		return nil, err
	}
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	next := asset.Clone()
	next.Name = strings.TrimSpace(input.Name)
	next.Type = strings.TrimSpace(input.Type)
	next.Location = strings.TrimSpace(input.Location)
	next.Health = input.Health
	next.LastMaintenance = input.LastMaintenance
	next.NextMaintenance = input.NextMaintenance
	next.UpdatedAt = s.now()
	if err := s.assets.Update(ctx, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, next.ID)
	return next, nil
}

func (s *AssetService) publish(ctx context.Context, actor *domain.User, assetID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAssetChanged,
		ActorID:   actor.ID,
		Timestamp: s.now(),
		Payload:   events.AssetChangedPayload{AssetID: assetID},
	})
}

// GetAsset fetches a single asset.
func (s *AssetService) GetAsset(ctx context.Context, actor *domain.User, id string) (*domain.Asset, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// ListAssets returns the registry, optionally filtered.
func (s *AssetService) ListAssets(ctx context.Context, actor *domain.User, filter repository.AssetFilter) ([]domain.Asset, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	list, err := s.assets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func requireCapability(actor *domain.User, selector func(domain.Capabilities) bool, message string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if !selector(domain.PermissionsFor(actor.Role)) {
		return apperrors.NewForbidden(message)
	}
	return nil
}
