package seed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
)

// Dependencies bundles the repositories the seeder writes to.
type Dependencies struct {
	RequestRepo repository.RequestRepository
	AssetRepo   repository.AssetRepository
	UserRepo    repository.UserRepository
	BcryptCost  int
	Logger      *zap.Logger
}

// DemoPassword is the shared password for every seeded demo account.
const DemoPassword = "Password123!"

// Run loads the demo dataset: nine accounts, five assets, and five requests
// covering every lifecycle state. Idempotent: it skips loading when any demo
// user already exists.
func Run(ctx context.Context, deps Dependencies) error {
	if _, err := deps.UserRepo.GetByID(ctx, "USR001"); err == nil {
		deps.Logger.Info("demo data already present, skipping seed")
		return nil
	}

	hash, err := auth.HashPassword(DemoPassword, deps.BcryptCost)
	if err != nil {
		return err
	}
	now := time.Now()

	for _, u := range demoUsers(hash, now) {
		user := u
		if err := deps.UserRepo.Create(ctx, &user); err != nil {
			return err
		}
	}
	for _, a := range demoAssets(now) {
		asset := a
		if err := deps.AssetRepo.Create(ctx, &asset); err != nil {
			return err
		}
	}
	for _, r := range demoRequests() {
		req := r
		if err := deps.RequestRepo.Create(ctx, &req); err != nil {
			return err
		}
	}
	deps.Logger.Info("demo data seeded",
		zap.Int("users", 9), zap.Int("assets", 5), zap.Int("requests", 5))
	return nil
}

func demoUsers(passwordHash string, now time.Time) []domain.User {
	mk := func(id, name, email string, role domain.Role) domain.User {
		return domain.User{
			ID: id, Name: name, Email: email,
			PasswordHash: passwordHash, Role: role,
			CreatedAt: now, UpdatedAt: now,
		}
	}
	return []domain.User{
		mk("USR001", "Alice Johnson", "alice.j@example.com", domain.RoleEmployee),
		mk("USR002", "Bob Smith", "bob.s@example.com", domain.RoleFacilityManager),
		mk("USR003", "John Doe", "john.d@example.com", domain.RoleMaintenanceTechnician),
		mk("USR004", "Jane Smith", "jane.s@example.com", domain.RoleMaintenanceTechnician),
		mk("USR005", "Charlie Brown", "charlie.b@example.com", domain.RoleEmployee),
		mk("USR006", "David Lee", "david.l@example.com", domain.RoleEmployee),
		mk("USR007", "Eve Green", "eve.g@example.com", domain.RoleOperationsManager),
		mk("USR008", "Frank White", "frank.w@example.com", domain.RoleEmployee),
		mk("USR009", "Admin User", "admin@example.com", domain.RoleAdmin),
	}
}

func demoAssets(now time.Time) []domain.Asset {
	day := func(value string) *time.Time {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil
		}
		return &t
	}
	mk := func(id, name, assetType, location string, health domain.AssetHealth, last, next *time.Time) domain.Asset {
		return domain.Asset{
			ID: id, Name: name, Type: assetType, Location: location,
			Health: health, LastMaintenance: last, NextMaintenance: next,
			CreatedAt: now, UpdatedAt: now,
		}
	}
	return []domain.Asset{
		mk("AST001", "AC Unit Server Room 3", "HVAC", "Building A, Server Room 3", domain.AssetHealthCritical, day("2023-09-15"), day("2023-12-15")),
		mk("AST002", "Faucet Break Room 1", "Plumbing", "Building B, Break Room 1", domain.AssetHealthPoor, day("2022-05-20"), day("2023-11-01")),
		mk("AST003", "Office Chair Cubicle 12", "Furniture", "Building C, Cubicle 12", domain.AssetHealthGood, day("2023-10-24"), day("2024-10-24")),
		mk("AST004", "Network Switch 4A", "IT", "Building A, 4th Floor", domain.AssetHealthCritical, day("2023-08-01"), day("2023-11-01")),
		mk("AST005", "Printer Marketing Dept", "Office Equipment", "Building A, Marketing Dept", domain.AssetHealthObsolete, day("2021-01-01"), nil),
	}
}

func ts(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func done(stage domain.MilestoneStage, at, by string, sla domain.SLAStatus) domain.Milestone {
	date := ts(at)
	actor := by
	return domain.Milestone{Stage: stage, Completed: true, Date: &date, By: &actor, SLAStatus: sla}
}

func open(stage domain.MilestoneStage, sla domain.SLAStatus) domain.Milestone {
	return domain.Milestone{Stage: stage, SLAStatus: sla}
}

func audit(at, by, action, details string) domain.AuditEntry {
	return domain.AuditEntry{Timestamp: ts(at), UserID: by, Action: action, Details: details}
}

func strptr(value string) *string { return &value }

func demoRequests() []domain.Request {
	return []domain.Request{
		{
			ID:          "REQ001",
			Title:       "AC Unit Malfunction - Server Room 3",
			Description: "The air conditioning unit in Server Room 3 is making loud noises and not cooling properly. Temperature is rising.",
			Category:    "HVAC",
			Location:    "Building A, 3rd Floor, Server Room 3",
			Priority:    domain.RequestPriorityHigh,
			Status:      domain.RequestStatusInProgress,
			ReporterID:  "USR001",
			AssigneeID:  strptr("USR003"),
			AssetID:     strptr("AST001"),
			Files:       []domain.FileAttachment{{Name: "ac_unit_photo.jpg", URL: "#"}},
			CreatedAt:   ts("2023-10-26T10:00:00Z"),
			UpdatedAt:   ts("2023-10-27T14:30:00Z"),
			Workflow: []domain.Milestone{
				done(domain.StageSubmitted, "2023-10-26T10:00:00Z", "USR001", domain.SLAOnTrack),
				done(domain.StageReviewed, "2023-10-26T11:00:00Z", "USR002", domain.SLAOnTrack),
				done(domain.StageAssigned, "2023-10-26T12:00:00Z", "USR002", domain.SLAOnTrack),
				done(domain.StageWorkStarted, "2023-10-27T09:00:00Z", "USR003", domain.SLAOnTrack),
				open(domain.StageWorkCompleted, domain.SLAOnTrack),
				open(domain.StageApproved, domain.SLAOnTrack),
			},
			AuditLog: []domain.AuditEntry{
				audit("2023-10-26T10:00:00Z", "USR001", "created request", "Initial submission."),
				audit("2023-10-26T11:00:00Z", "USR002", "reviewed request", "Marked as high priority."),
				audit("2023-10-26T12:00:00Z", "USR002", "assigned technician", "Assigned to John Doe."),
				audit("2023-10-27T09:00:00Z", "USR003", "started work", "Began diagnostics on AC unit."),
			},
		},
		{
			ID:          "REQ002",
			Title:       "Leaky Faucet - Break Room 1",
			Description: "The faucet in Break Room 1 has a constant drip, wasting water.",
			Category:    "Plumbing",
			Location:    "Building B, 1st Floor, Break Room 1",
			Priority:    domain.RequestPriorityMedium,
			Status:      domain.RequestStatusPending,
			ReporterID:  "USR005",
			AssetID:     strptr("AST002"),
			Files:       []domain.FileAttachment{},
			CreatedAt:   ts("2023-10-25T14:15:00Z"),
			UpdatedAt:   ts("2023-10-25T14:15:00Z"),
			Workflow: []domain.Milestone{
				done(domain.StageSubmitted, "2023-10-25T14:15:00Z", "USR005", domain.SLAOnTrack),
				open(domain.StageReviewed, domain.SLAOnTrack),
				open(domain.StageAssigned, domain.SLAOnTrack),
				open(domain.StageWorkStarted, domain.SLAOnTrack),
				open(domain.StageWorkCompleted, domain.SLAOnTrack),
				open(domain.StageApproved, domain.SLAOnTrack),
			},
			AuditLog: []domain.AuditEntry{
				audit("2023-10-25T14:15:00Z", "USR005", "created request", "Initial submission."),
			},
		},
		{
			ID:          "REQ003",
			Title:       "Office Chair Broken - Cubicle 12",
			Description: "The office chair in Cubicle 12 has a broken backrest and is unusable.",
			Category:    "Furniture",
			Location:    "Building C, 2nd Floor, Cubicle 12",
			Priority:    domain.RequestPriorityLow,
			Status:      domain.RequestStatusApproved,
			ReporterID:  "USR006",
			AssigneeID:  strptr("USR004"),
			AssetID:     strptr("AST003"),
			Files:       []domain.FileAttachment{},
			CreatedAt:   ts("2023-10-24T09:30:00Z"),
			UpdatedAt:   ts("2023-10-24T12:00:00Z"),
			Workflow: []domain.Milestone{
				done(domain.StageSubmitted, "2023-10-24T09:30:00Z", "USR006", domain.SLAOnTrack),
				done(domain.StageReviewed, "2023-10-24T10:00:00Z", "USR002", domain.SLAOnTrack),
				done(domain.StageAssigned, "2023-10-24T10:30:00Z", "USR002", domain.SLAOnTrack),
				done(domain.StageWorkStarted, "2023-10-24T10:45:00Z", "USR004", domain.SLAOnTrack),
				done(domain.StageWorkCompleted, "2023-10-24T11:00:00Z", "USR004", domain.SLAOnTrack),
				done(domain.StageApproved, "2023-10-24T12:00:00Z", "USR002", domain.SLAOnTrack),
			},
			AuditLog: []domain.AuditEntry{
				audit("2023-10-24T09:30:00Z", "USR006", "created request", "Initial submission."),
				audit("2023-10-24T10:00:00Z", "USR002", "reviewed request", "Approved for replacement."),
				audit("2023-10-24T10:30:00Z", "USR002", "assigned technician", "Assigned to Jane Smith."),
				audit("2023-10-24T11:00:00Z", "USR004", "completed work", "Replaced broken office chair."),
				audit("2023-10-24T12:00:00Z", "USR002", "approved resolution", "Request closed."),
			},
		},
		{
			ID:          "REQ004",
			Title:       "Network outage - entire 4th floor",
			Description: "The network is down on the entire 4th floor of Building A. Employees cannot access shared drives or internet.",
			Category:    "IT/Network",
			Location:    "Building A, 4th Floor",
			Priority:    domain.RequestPriorityCritical,
			Status:      domain.RequestStatusException,
			ReporterID:  "USR007",
			AssigneeID:  strptr("USR003"),
			AssetID:     strptr("AST004"),
			Files:       []domain.FileAttachment{},
			CreatedAt:   ts("2023-10-28T08:00:00Z"),
			UpdatedAt:   ts("2023-10-28T09:00:00Z"),
			Workflow: []domain.Milestone{
				done(domain.StageSubmitted, "2023-10-28T08:00:00Z", "USR007", domain.SLAOnTrack),
				done(domain.StageReviewed, "2023-10-28T08:15:00Z", "USR007", domain.SLAAtRisk),
				done(domain.StageAssigned, "2023-10-28T08:30:00Z", "USR007", domain.SLAAtRisk),
				open(domain.StageWorkStarted, domain.SLABreached),
				open(domain.StageWorkCompleted, domain.SLABreached),
				open(domain.StageApproved, domain.SLABreached),
			},
			AuditLog: []domain.AuditEntry{
				audit("2023-10-28T08:00:00Z", "USR007", "created request", "Network outage reported."),
				audit("2023-10-28T08:15:00Z", "USR007", "reviewed request", "Escalated to Critical priority due to business impact."),
				audit("2023-10-28T08:30:00Z", "USR007", "assigned technician", "Assigned to John Doe."),
			},
		},
		{
			ID:          "REQ005",
			Title:       "Printer not working - Marketing Dept",
			Description: "The printer in the marketing department is constantly offline. Needs repair or replacement.",
			Category:    "Office Equipment",
			Location:    "Building A, 2nd Floor, Marketing Dept",
			Priority:    domain.RequestPriorityMedium,
			Status:      domain.RequestStatusRejected,
			ReporterID:  "USR008",
			AssetID:     strptr("AST005"),
			Files:       []domain.FileAttachment{},
			CreatedAt:   ts("2023-10-23T16:00:00Z"),
			UpdatedAt:   ts("2023-10-23T17:00:00Z"),
			Workflow: []domain.Milestone{
				done(domain.StageSubmitted, "2023-10-23T16:00:00Z", "USR008", domain.SLAOnTrack),
				done(domain.StageReviewed, "2023-10-23T16:30:00Z", "USR002", domain.SLAOnTrack),
				open(domain.StageAssigned, domain.SLAOnTrack),
				open(domain.StageWorkStarted, domain.SLAOnTrack),
				open(domain.StageWorkCompleted, domain.SLAOnTrack),
				open(domain.StageApproved, domain.SLAOnTrack),
				done(domain.StageRejected, "2023-10-23T17:00:00Z", "USR002", domain.SLAOnTrack),
			},
			AuditLog: []domain.AuditEntry{
				audit("2023-10-23T16:00:00Z", "USR008", "created request", "Printer issue reported."),
				audit("2023-10-23T16:30:00Z", "USR002", "reviewed request", "Checked printer, found it outdated."),
				audit("2023-10-23T17:00:00Z", "USR002", "rejected request", "Recommended new printer purchase instead of repair due to age. Request closed."),
			},
		},
	}
}
