package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/api/dto"
	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	"github.com/spec-kit/facility-service/internal/service"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// AssetsHandler manages asset registry endpoints.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

// CreateAsset POST /assets.
func (h *AssetsHandler) CreateAsset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.service.CreateAsset(c.UserContext(), principal.User, assetInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assetResponse(asset)})
}

// UpdateAsset PUT /assets/:id.
func (h *AssetsHandler) UpdateAsset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.service.UpdateAsset(c.UserContext(), principal.User, c.Params("id"), assetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// GetAsset GET /assets/:id.
func (h *AssetsHandler) GetAsset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	asset, err := h.service.GetAsset(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// ListAssets GET /assets.
func (h *AssetsHandler) ListAssets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	assets, err := h.service.ListAssets(c.UserContext(), principal.User, parseAssetQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseAssetQuery(c *fiber.Ctx) repository.AssetFilter {
	filter := repository.AssetFilter{}
	if assetType := strings.TrimSpace(c.Query("type")); assetType != "" {
		filter.Type = &assetType
	}
	if healthStr := c.Query("health"); healthStr != "" {
		for _, part := range strings.Split(healthStr, ",") {
			filter.Healths = append(filter.Healths, domain.AssetHealth(strings.TrimSpace(part)))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if c.Query("sort") == "name" {
		filter.SortByName = true
		filter.Descending = c.Query("order") == "desc"
	}
	return filter
}

func assetInput(req dto.AssetRequest) service.AssetInput {
	return service.AssetInput{
		Name:            req.Name,
		Type:            req.Type,
		Location:        req.Location,
		Health:          req.Health,
		LastMaintenance: req.LastMaintenance,
		NextMaintenance: req.NextMaintenance,
	}
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:              asset.ID,
		Name:            asset.Name,
		Type:            asset.Type,
		Location:        asset.Location,
		Health:          asset.Health,
		LastMaintenance: asset.LastMaintenance,
		NextMaintenance: asset.NextMaintenance,
		CreatedAt:       asset.CreatedAt,
		UpdatedAt:       asset.UpdatedAt,
	}
}
