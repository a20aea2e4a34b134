package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

func TestAssetWritesRequireManageAssets(t *testing.T) {
	svc := NewAssetService(repository.NewMemoryAssetRepository(), nil)
	employee := &domain.User{ID: "USR001", Role: domain.RoleEmployee}

	_, err := svc.CreateAsset(context.Background(), employee, AssetInput{
		Name: "AC Unit", Type: "HVAC", Health: domain.AssetHealthGood,
	})
	assertForbidden(t, err)
}

func TestAssetCreateUpdateAndRead(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	svc := NewAssetService(repository.NewMemoryAssetRepository(), dispatcher)
	ctx := context.Background()
	technician := &domain.User{ID: "USR003", Role: domain.RoleMaintenanceTechnician}
	employee := &domain.User{ID: "USR001", Role: domain.RoleEmployee}

	_, err := svc.CreateAsset(ctx, technician, AssetInput{Name: " ", Type: "HVAC", Health: "Fine"})
	assert.True(t, apperrors.IsValidation(err))

	asset, err := svc.CreateAsset(ctx, technician, AssetInput{
		Name: "AC Unit Server Room 3", Type: "HVAC", Location: "Building A", Health: domain.AssetHealthCritical,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, asset.ID)

	updated, err := svc.UpdateAsset(ctx, technician, asset.ID, AssetInput{
		Name: "AC Unit Server Room 3", Type: "HVAC", Location: "Building A", Health: domain.AssetHealthGood,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetHealthGood, updated.Health)
	assert.True(t, updated.UpdatedAt.After(asset.UpdatedAt) || updated.UpdatedAt.Equal(asset.UpdatedAt))

	// reads are open to any authenticated user
	fetched, err := svc.GetAsset(ctx, employee, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, fetched.ID)

	list, err := svc.ListAssets(ctx, employee, repository.AssetFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetAsset(ctx, employee, "AST999")
	assert.True(t, apperrors.IsNotFound(err))

	// create and update each announce the change
	assert.Equal(t, []events.EventType{events.EventAssetChanged, events.EventAssetChanged}, dispatcher.types())
}
