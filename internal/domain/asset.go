package domain

import "time"

// AssetHealth enumerates maintenance condition of a facility asset.
type AssetHealth string

const (
	AssetHealthGood     AssetHealth = "Good"
	AssetHealthPoor     AssetHealth = "Poor"
	AssetHealthCritical AssetHealth = "Critical"
	AssetHealthObsolete AssetHealth = "Obsolete"
)

// Asset is a tracked facility asset. Requests reference assets by ID but do
// not own their lifecycle.
type Asset struct {
	ID              string
	Name            string
	Type            string
	Location        string
	Health          AssetHealth
	LastMaintenance *time.Time
	NextMaintenance *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	out := *a
	if a.LastMaintenance != nil {
		v := *a.LastMaintenance
		out.LastMaintenance = &v
	}
	if a.NextMaintenance != nil {
		v := *a.NextMaintenance
		out.NextMaintenance = &v
	}
	return &out
}
