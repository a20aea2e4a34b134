package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-service/internal/domain"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

func seedRequests(t *testing.T, repo RequestRepository, count int) []domain.Request {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2023, 10, 20, 12, 0, 0, 0, time.UTC)
	out := make([]domain.Request, 0, count)
	for i := 0; i < count; i++ {
		req := domain.Request{
			ID:          fmt.Sprintf("REQ%03d", i+1),
			Title:       fmt.Sprintf("Request %d", i+1),
			Description: "description",
			Category:    "General",
			Priority:    domain.RequestPriorityMedium,
			Status:      domain.RequestStatusPending,
			ReporterID:  "USR001",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, &req))
		out = append(out, req)
	}
	return out
}

func TestMemoryRequestRepositoryPreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryRequestRepository()
	seedRequests(t, repo, 3)

	list, err := repo.List(context.Background(), RequestFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "REQ001", list[0].ID)
	assert.Equal(t, "REQ002", list[1].ID)
	assert.Equal(t, "REQ003", list[2].ID)

	newest, err := repo.List(context.Background(), RequestFilter{Sort: SortNewest})
	require.NoError(t, err)
	assert.Equal(t, "REQ003", newest[0].ID)
}

func TestMemoryRequestRepositoryCopyOnWrite(t *testing.T) {
	repo := NewMemoryRequestRepository()
	ctx := context.Background()
	req := seedRequests(t, repo, 1)[0]

	// mutate the caller's value after storing
	req.Title = "mutated locally"
	stored, err := repo.GetByID(ctx, "REQ001")
	require.NoError(t, err)
	assert.Equal(t, "Request 1", stored.Title)

	// mutate the fetched value; the store stays untouched
	stored.AuditLog = append(stored.AuditLog, domain.AuditEntry{Action: "tampered"})
	fresh, err := repo.GetByID(ctx, "REQ001")
	require.NoError(t, err)
	assert.Empty(t, fresh.AuditLog)
}

func TestMemoryRequestRepositoryMissesWithNoRows(t *testing.T) {
	repo := NewMemoryRequestRepository()
	_, err := repo.GetByID(context.Background(), "REQ999")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	err = repo.Update(context.Background(), &domain.Request{ID: "REQ999"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryRequestRepositoryRejectsDuplicateCreate(t *testing.T) {
	repo := NewMemoryRequestRepository()
	seedRequests(t, repo, 1)

	err := repo.Create(context.Background(), &domain.Request{ID: "REQ001"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestMemoryRequestRepositoryFilters(t *testing.T) {
	repo := NewMemoryRequestRepository()
	ctx := context.Background()
	assignee := "USR003"
	require.NoError(t, repo.Create(ctx, &domain.Request{
		ID: "REQ001", Title: "AC broken", Status: domain.RequestStatusInProgress,
		Priority: domain.RequestPriorityHigh, ReporterID: "USR001", AssigneeID: &assignee,
	}))
	require.NoError(t, repo.Create(ctx, &domain.Request{
		ID: "REQ002", Title: "Leaky faucet", Status: domain.RequestStatusPending,
		Priority: domain.RequestPriorityMedium, ReporterID: "USR005",
	}))

	byStatus, err := repo.List(ctx, RequestFilter{Statuses: []domain.RequestStatus{domain.RequestStatusPending}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "REQ002", byStatus[0].ID)

	involved := "USR003"
	byInvolved, err := repo.List(ctx, RequestFilter{InvolvedUserID: &involved})
	require.NoError(t, err)
	require.Len(t, byInvolved, 1)
	assert.Equal(t, "REQ001", byInvolved[0].ID)

	term := "faucet"
	bySearch, err := repo.List(ctx, RequestFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "REQ002", bySearch[0].ID)
}

func TestMemoryRequestRepositoryPagination(t *testing.T) {
	repo := NewMemoryRequestRepository()
	seedRequests(t, repo, 5)

	page, err := repo.List(context.Background(), RequestFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "REQ003", page[0].ID)
	assert.Equal(t, "REQ004", page[1].ID)

	past, err := repo.List(context.Background(), RequestFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryUserRepositoryEmailLookup(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.User{
		ID: "USR001", Name: "Alice Johnson", Email: "alice.j@example.com", Role: domain.RoleEmployee,
	}))

	user, err := repo.GetByEmail(ctx, "ALICE.J@example.com")
	require.NoError(t, err)
	assert.Equal(t, "USR001", user.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryAssetRepositorySortByName(t *testing.T) {
	repo := NewMemoryAssetRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Asset{ID: "AST002", Name: "Faucet", Type: "Plumbing", Health: domain.AssetHealthPoor}))
	require.NoError(t, repo.Create(ctx, &domain.Asset{ID: "AST001", Name: "AC Unit", Type: "HVAC", Health: domain.AssetHealthCritical}))

	list, err := repo.List(ctx, AssetFilter{SortByName: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AC Unit", list[0].Name)

	critical, err := repo.List(ctx, AssetFilter{Healths: []domain.AssetHealth{domain.AssetHealthCritical}})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "AST001", critical[0].ID)
}
