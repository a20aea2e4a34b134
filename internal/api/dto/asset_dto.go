package dto

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// AssetRequest payload for create and update.
type AssetRequest struct {
	Name            string             `json:"name"`
	Type            string             `json:"type"`
	Location        string             `json:"location"`
	Health          domain.AssetHealth `json:"health"`
	LastMaintenance *time.Time         `json:"last_maintenance"`
	NextMaintenance *time.Time         `json:"next_maintenance"`
}

// AssetResponse response.
type AssetResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Type            string             `json:"type"`
	Location        string             `json:"location"`
	Health          domain.AssetHealth `json:"health"`
	LastMaintenance *time.Time         `json:"last_maintenance"`
	NextMaintenance *time.Time         `json:"next_maintenance"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
