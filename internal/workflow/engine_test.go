package workflow

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-service/internal/domain"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

func newTestEngine(opts ...Option) *Engine {
	var seq int
	base := []Option{
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("REQ%03d", seq)
		}),
	}
	return NewEngine(append(base, opts...)...)
}

func validCreateInput() CreateInput {
	return CreateInput{
		Title:       "Leaky Faucet - Break Room 1",
		Description: "The faucet in Break Room 1 has a constant drip.",
		Category:    "Plumbing",
		Location:    "Building B, Break Room 1",
		Priority:    domain.RequestPriorityMedium,
	}
}

func milestone(t *testing.T, req *domain.Request, stage domain.MilestoneStage) domain.Milestone {
	t.Helper()
	idx := req.MilestoneIndex(stage)
	require.GreaterOrEqual(t, idx, 0, "missing milestone %s", stage)
	return req.Workflow[idx]
}

func TestCreateRejectsMissingFields(t *testing.T) {
	engine := newTestEngine()

	cases := map[string]CreateInput{
		"blank title":       {Description: "d", Category: "c", Priority: domain.RequestPriorityLow},
		"blank description": {Title: "t", Category: "c", Priority: domain.RequestPriorityLow},
		"blank category":    {Title: "t", Description: "d", Priority: domain.RequestPriorityLow},
		"blank priority":    {Title: "t", Description: "d", Category: "c"},
		"unknown priority":  {Title: "t", Description: "d", Category: "c", Priority: "Urgent"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := engine.Create(input, "USR001")
			assert.Nil(t, req)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCreateBuildsPendingRequest(t *testing.T) {
	engine := newTestEngine()

	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	assert.Equal(t, "REQ001", req.ID)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, "USR005", req.ReporterID)
	assert.Nil(t, req.AssigneeID)
	assert.Equal(t, req.CreatedAt, req.UpdatedAt)

	require.Len(t, req.Workflow, len(domain.HappyPathStages))
	submitted := milestone(t, req, domain.StageSubmitted)
	assert.True(t, submitted.Completed)
	require.NotNil(t, submitted.By)
	assert.Equal(t, "USR005", *submitted.By)
	for _, stage := range domain.HappyPathStages[1:] {
		m := milestone(t, req, stage)
		assert.False(t, m.Completed, "stage %s should start open", stage)
		assert.Nil(t, m.Date)
		assert.Nil(t, m.By)
	}

	require.Len(t, req.AuditLog, 1)
	assert.Equal(t, "created request", req.AuditLog[0].Action)
	assert.Equal(t, "USR005", req.AuditLog[0].UserID)
}

func TestAssignMovesPendingToInProgress(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, "USR003", *assigned.AssigneeID)
	assert.True(t, milestone(t, assigned, domain.StageAssigned).Completed)
	assert.True(t, milestone(t, assigned, domain.StageWorkStarted).Completed)
	assert.False(t, milestone(t, assigned, domain.StageWorkCompleted).Completed)
	require.Len(t, assigned.AuditLog, 2)
	assert.Equal(t, "assigned technician", assigned.AuditLog[1].Action)
	assert.True(t, assigned.UpdatedAt.After(req.UpdatedAt))

	// input untouched
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Nil(t, req.AssigneeID)
	assert.Len(t, req.AuditLog, 1)
}

func TestAssignRequiresPending(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)

	again, err := engine.Assign(assigned, "USR004", "USR002")
	assert.Nil(t, again)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestApproveCompletesRemainingMilestones(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)

	approved, err := engine.Approve(assigned, "USR002")
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusApproved, approved.Status)
	assert.True(t, approved.Status.Terminal())
	assert.True(t, milestone(t, approved, domain.StageWorkCompleted).Completed)
	assert.True(t, milestone(t, approved, domain.StageApproved).Completed)
	require.Len(t, approved.AuditLog, 3)
	assert.Equal(t, "approved request", approved.AuditLog[2].Action)
}

func TestApproveIsRejectedOnTerminalRequest(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	approved, err := engine.Approve(req, "USR002")
	require.NoError(t, err)

	again, err := engine.Approve(approved, "USR002")
	assert.Nil(t, again)
	assert.True(t, apperrors.IsInvalidTransition(err))
	assert.Len(t, approved.AuditLog, 2)
}

func TestRejectAppendsRejectedMilestone(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR008")
	require.NoError(t, err)

	rejected, err := engine.Reject(req, "USR002")
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusRejected, rejected.Status)
	require.Len(t, rejected.Workflow, len(domain.HappyPathStages)+1)
	m := milestone(t, rejected, domain.StageRejected)
	assert.True(t, m.Completed)
	require.NotNil(t, m.By)
	assert.Equal(t, "USR002", *m.By)

	_, err = engine.Reject(rejected, "USR002")
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestEditRejectsTerminalRequest(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	rejected, err := engine.Reject(req, "USR002")
	require.NoError(t, err)

	title := "new title"
	edited, err := engine.Edit(rejected, FieldChanges{Title: &title}, "USR002")
	assert.Nil(t, edited)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestEditValidatesBlankFieldsAndStatus(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	blank := "  "
	_, err = engine.Edit(req, FieldChanges{Title: &blank}, "USR002")
	assert.True(t, apperrors.IsValidation(err))

	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)
	pending := domain.RequestStatusPending
	_, err = engine.Edit(assigned, FieldChanges{Status: &pending}, "USR002")
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestEditDerivesMilestonesFromChanges(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	assignee := "USR003"
	inProgress := domain.RequestStatusInProgress
	edited, err := engine.Edit(req, FieldChanges{AssigneeID: &assignee, Status: &inProgress}, "USR002")
	require.NoError(t, err)

	assert.True(t, milestone(t, edited, domain.StageAssigned).Completed)
	assert.True(t, milestone(t, edited, domain.StageWorkStarted).Completed)
	require.Len(t, edited.AuditLog, 2)
	assert.Equal(t, "updated request", edited.AuditLog[1].Action)
}

func TestEditKeepsCompletedMilestoneAttribution(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)
	before := milestone(t, assigned, domain.StageWorkStarted)

	title := "Leaky Faucet - urgent"
	edited, err := engine.Edit(assigned, FieldChanges{Title: &title}, "USR004")
	require.NoError(t, err)

	after := milestone(t, edited, domain.StageWorkStarted)
	assert.Equal(t, before.Date, after.Date)
	assert.Equal(t, before.By, after.By)
	assert.Equal(t, "Leaky Faucet - urgent", edited.Title)
}

func TestEditExceptionEscapeHatch(t *testing.T) {
	engine := newTestEngine()
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	exception := domain.RequestStatusException
	escalated, err := engine.Edit(req, FieldChanges{Status: &exception}, "USR007")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusException, escalated.Status)

	// any status is reachable from Exception through an edit
	approved := domain.RequestStatusApproved
	recovered, err := engine.Edit(escalated, FieldChanges{Status: &approved}, "USR007")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, recovered.Status)
	assert.True(t, milestone(t, recovered, domain.StageApproved).Completed)
}

func TestEditExceptionDisabled(t *testing.T) {
	engine := newTestEngine(WithExceptionStatus(false))
	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)

	exception := domain.RequestStatusException
	_, err = engine.Edit(req, FieldChanges{Status: &exception}, "USR007")
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdatedAtStrictlyIncreasesUnderFrozenClock(t *testing.T) {
	frozen := time.Date(2023, 10, 26, 10, 0, 0, 0, time.UTC)
	engine := newTestEngine(WithClock(func() time.Time { return frozen }))

	req, err := engine.Create(validCreateInput(), "USR005")
	require.NoError(t, err)
	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)
	approved, err := engine.Approve(assigned, "USR002")
	require.NoError(t, err)

	assert.True(t, assigned.UpdatedAt.After(req.UpdatedAt))
	assert.True(t, approved.UpdatedAt.After(assigned.UpdatedAt))
}

func TestLifecycleHappyPath(t *testing.T) {
	engine := newTestEngine()

	req, err := engine.Create(CreateInput{
		Title:       "Leaky Faucet - Break Room 1",
		Description: "Constant drip, wasting water.",
		Category:    "Plumbing",
		Location:    "Building B",
		Priority:    domain.RequestPriorityMedium,
	}, "USR005")
	require.NoError(t, err)

	assigned, err := engine.Assign(req, "USR003", "USR002")
	require.NoError(t, err)
	approved, err := engine.Approve(assigned, "USR002")
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusApproved, approved.Status)
	require.Len(t, approved.AuditLog, 3)
	assert.Equal(t, []string{"created request", "assigned technician", "approved request"}, []string{
		approved.AuditLog[0].Action,
		approved.AuditLog[1].Action,
		approved.AuditLog[2].Action,
	})

	_, err = engine.Approve(approved, "USR002")
	assert.True(t, apperrors.IsInvalidTransition(err))
	assert.Len(t, approved.AuditLog, 3)
}
