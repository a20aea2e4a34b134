package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
)

func TestRunSeedsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	deps := Dependencies{
		RequestRepo: repository.NewMemoryRequestRepository(),
		AssetRepo:   repository.NewMemoryAssetRepository(),
		UserRepo:    repository.NewMemoryUserRepository(),
		BcryptCost:  4,
		Logger:      zap.NewNop(),
	}

	require.NoError(t, Run(ctx, deps))
	require.NoError(t, Run(ctx, deps), "second run must not fail on existing records")

	users, err := deps.UserRepo.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 9)

	assets, err := deps.AssetRepo.List(ctx, repository.AssetFilter{})
	require.NoError(t, err)
	assert.Len(t, assets, 5)

	requests, err := deps.RequestRepo.List(ctx, repository.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, requests, 5)

	statuses := map[domain.RequestStatus]bool{}
	for _, req := range requests {
		statuses[req.Status] = true
	}
	for _, want := range []domain.RequestStatus{
		domain.RequestStatusPending,
		domain.RequestStatusInProgress,
		domain.RequestStatusApproved,
		domain.RequestStatusRejected,
		domain.RequestStatusException,
	} {
		assert.True(t, statuses[want], "missing seeded status %s", want)
	}
}

func TestSeededReferencesResolve(t *testing.T) {
	ctx := context.Background()
	deps := Dependencies{
		RequestRepo: repository.NewMemoryRequestRepository(),
		AssetRepo:   repository.NewMemoryAssetRepository(),
		UserRepo:    repository.NewMemoryUserRepository(),
		BcryptCost:  4,
		Logger:      zap.NewNop(),
	}
	require.NoError(t, Run(ctx, deps))

	requests, err := deps.RequestRepo.List(ctx, repository.RequestFilter{})
	require.NoError(t, err)
	for _, req := range requests {
		_, err := deps.UserRepo.GetByID(ctx, req.ReporterID)
		assert.NoError(t, err, "reporter of %s", req.ID)
		if req.AssigneeID != nil {
			_, err := deps.UserRepo.GetByID(ctx, *req.AssigneeID)
			assert.NoError(t, err, "assignee of %s", req.ID)
		}
		if req.AssetID != nil {
			_, err := deps.AssetRepo.GetByID(ctx, *req.AssetID)
			assert.NoError(t, err, "asset of %s", req.ID)
		}
	}
}
