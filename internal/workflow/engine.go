package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/facility-service/internal/domain"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// Engine validates and applies lifecycle transitions on requests. It is
// permission-agnostic: callers check capabilities before invoking it. Every
// operation is copy-on-write: the input request is never mutated, and on
// error no new value is produced.
type Engine struct {
	now            func() time.Time
	newID          func() string
	allowException bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides request ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithExceptionStatus controls whether the Exception escape-hatch status is
// reachable through Edit. It has no dedicated transition; disabling it makes
// the five-state machine strict.
func WithExceptionStatus(allowed bool) Option {
	return func(e *Engine) { e.allowException = allowed }
}

// NewEngine constructs an engine with production defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:            time.Now,
		newID:          uuid.NewString,
		allowException: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateInput describes a new request submission.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	Priority    domain.RequestPriority
	AssetID     *string
	Files       []domain.FileAttachment
}

// FieldChanges lists optional field updates for Edit. Nil pointers leave the
// field untouched.
type FieldChanges struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Priority    *domain.RequestPriority
	Status      *domain.RequestStatus
	AssigneeID  *string
	AssetID     *string
	Files       []domain.FileAttachment
}

var allowedTransitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestStatusPending:    {domain.RequestStatusInProgress, domain.RequestStatusApproved, domain.RequestStatusRejected},
	domain.RequestStatusInProgress: {domain.RequestStatusApproved, domain.RequestStatusRejected},
	domain.RequestStatusApproved:   {},
	domain.RequestStatusRejected:   {},
}

func isValidTransition(current, next domain.RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

var validPriorities = map[domain.RequestPriority]struct{}{
	domain.RequestPriorityLow:      {},
	domain.RequestPriorityMedium:   {},
	domain.RequestPriorityHigh:     {},
	domain.RequestPriorityCritical: {},
}

// Create builds a new Pending request with the Submitted milestone completed
// by the actor and a single audit entry.
func (e *Engine) Create(input CreateInput, actorID string) (*domain.Request, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(string(input.Priority)) == "" {
		details["priority"] = "required"
	}
	if strings.TrimSpace(input.Category) == "" {
		details["category"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", details)
	}
	if _, ok := validPriorities[input.Priority]; !ok {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	now := e.now()
	req := &domain.Request{
		ID:          e.newID(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Location:    strings.TrimSpace(input.Location),
		Priority:    input.Priority,
		Status:      domain.RequestStatusPending,
		ReporterID:  actorID,
		AssetID:     input.AssetID,
		Files:       append([]domain.FileAttachment(nil), input.Files...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	req.Workflow = make([]domain.Milestone, 0, len(domain.HappyPathStages))
	for _, stage := range domain.HappyPathStages {
		req.Workflow = append(req.Workflow, domain.Milestone{
			Stage:     stage,
			SLAStatus: domain.SLAOnTrack,
		})
	}
	completeMilestone(req, domain.StageSubmitted, now, actorID)
	appendAudit(req, now, actorID, "created request", "Initial submission.")
	return req, nil
}

// Assign sets the assignee and moves a Pending request to In Progress,
// completing the Assigned milestone.
func (e *Engine) Assign(req *domain.Request, technicianID, actorID string) (*domain.Request, error) {
	if req.Status != domain.RequestStatusPending {
		return nil, apperrors.NewInvalidTransition("only pending requests can be assigned", map[string]any{
			"request_id": req.ID,
			"status":     req.Status,
		})
	}
	next := req.Clone()
	now := e.touch(next)
	next.AssigneeID = &technicianID
	next.Status = domain.RequestStatusInProgress
	completeMilestone(next, domain.StageAssigned, now, actorID)
	e.syncMilestones(next, now, actorID)
	appendAudit(next, now, actorID, "assigned technician", "Assigned to "+technicianID+".")
	return next, nil
}

// Approve moves a Pending or In Progress request to Approved.
func (e *Engine) Approve(req *domain.Request, actorID string) (*domain.Request, error) {
	if !isValidTransition(req.Status, domain.RequestStatusApproved) {
		return nil, apperrors.NewInvalidTransition("request cannot be approved in current status", map[string]any{
			"request_id": req.ID,
			"status":     req.Status,
		})
	}
	next := req.Clone()
	now := e.touch(next)
	next.Status = domain.RequestStatusApproved
	e.syncMilestones(next, now, actorID)
	appendAudit(next, now, actorID, "approved request", "Request resolution approved.")
	return next, nil
}

// Reject moves a Pending or In Progress request to the terminal Rejected
// branch, completing or appending a Rejected milestone.
func (e *Engine) Reject(req *domain.Request, actorID string) (*domain.Request, error) {
	if !isValidTransition(req.Status, domain.RequestStatusRejected) {
		return nil, apperrors.NewInvalidTransition("request cannot be rejected in current status", map[string]any{
			"request_id": req.ID,
			"status":     req.Status,
		})
	}
	next := req.Clone()
	now := e.touch(next)
	next.Status = domain.RequestStatusRejected
	e.syncMilestones(next, now, actorID)
	appendAudit(next, now, actorID, "rejected request", "Request rejected.")
	return next, nil
}

// Edit applies generic field changes while the request is not terminal. A
// status or assignee change implies the same milestone completions as the
// dedicated transitions; all implied milestones apply before the single
// audit entry is appended.
func (e *Engine) Edit(req *domain.Request, changes FieldChanges, actorID string) (*domain.Request, error) {
	if req.Status.Terminal() {
		return nil, apperrors.NewInvalidTransition("request is closed and can no longer be edited", map[string]any{
			"request_id": req.ID,
			"status":     req.Status,
		})
	}
	if err := e.validateChanges(req, changes); err != nil {
		return nil, err
	}

	next := req.Clone()
	now := e.touch(next)
	if changes.Title != nil {
		next.Title = strings.TrimSpace(*changes.Title)
	}
	if changes.Description != nil {
		next.Description = strings.TrimSpace(*changes.Description)
	}
	if changes.Category != nil {
		next.Category = strings.TrimSpace(*changes.Category)
	}
	if changes.Location != nil {
		next.Location = strings.TrimSpace(*changes.Location)
	}
	if changes.Priority != nil {
		next.Priority = *changes.Priority
	}
	if changes.AssigneeID != nil {
		assignee := *changes.AssigneeID
		next.AssigneeID = &assignee
	}
	if changes.AssetID != nil {
		asset := *changes.AssetID
		next.AssetID = &asset
	}
	if changes.Files != nil {
		next.Files = append([]domain.FileAttachment(nil), changes.Files...)
	}
	if changes.Status != nil {
		next.Status = *changes.Status
	}
	e.syncMilestones(next, now, actorID)
	appendAudit(next, now, actorID, "updated request", "Fields updated via edit form.")
	return next, nil
}

func (e *Engine) validateChanges(req *domain.Request, changes FieldChanges) error {
	details := map[string]any{}
	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		details["title"] = "required"
	}
	if changes.Description != nil && strings.TrimSpace(*changes.Description) == "" {
		details["description"] = "required"
	}
	if changes.Category != nil && strings.TrimSpace(*changes.Category) == "" {
		details["category"] = "required"
	}
	if changes.Priority != nil {
		if _, ok := validPriorities[*changes.Priority]; !ok {
			details["priority"] = "unknown value"
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("missing required fields", details)
	}
	if changes.Status == nil || *changes.Status == req.Status {
		return nil
	}
	next := *changes.Status
	if next == domain.RequestStatusException {
		if !e.allowException {
			return apperrors.NewValidationError("exception status is disabled", nil)
		}
		return nil
	}
	// Exception is an escape hatch with no modeled exits; edits may move a
	// request out of it to any other status.
	if req.Status == domain.RequestStatusException {
		return nil
	}
	if !isValidTransition(req.Status, next) {
		return apperrors.NewInvalidTransition("status change not allowed", map[string]any{
			"request_id": req.ID,
			"from":       req.Status,
			"to":         next,
		})
	}
	return nil
}

// syncMilestones is the single derivation point keeping the workflow array
// consistent with status and assignee. Completion is idempotent: an already
// completed milestone keeps its original date and actor.
func (e *Engine) syncMilestones(req *domain.Request, now time.Time, actorID string) {
	if req.AssigneeID != nil {
		completeMilestone(req, domain.StageAssigned, now, actorID)
	}
	switch req.Status {
	case domain.RequestStatusInProgress:
		completeMilestone(req, domain.StageWorkStarted, now, actorID)
	case domain.RequestStatusApproved:
		completeMilestone(req, domain.StageWorkCompleted, now, actorID)
		completeMilestone(req, domain.StageApproved, now, actorID)
	case domain.RequestStatusRejected:
		if req.MilestoneIndex(domain.StageRejected) < 0 {
			req.Workflow = append(req.Workflow, domain.Milestone{
				Stage:     domain.StageRejected,
				SLAStatus: domain.SLAOnTrack,
			})
		}
		completeMilestone(req, domain.StageRejected, now, actorID)
	}
}

func completeMilestone(req *domain.Request, stage domain.MilestoneStage, now time.Time, actorID string) {
	idx := req.MilestoneIndex(stage)
	if idx < 0 || req.Workflow[idx].Completed {
		return
	}
	date := now
	actor := actorID
	req.Workflow[idx].Completed = true
	req.Workflow[idx].Date = &date
	req.Workflow[idx].By = &actor
}

func appendAudit(req *domain.Request, now time.Time, actorID, action, details string) {
	req.AuditLog = append(req.AuditLog, domain.AuditEntry{
		Timestamp: now,
		UserID:    actorID,
		Action:    action,
		Details:   details,
	})
}

// touch advances UpdatedAt, keeping it strictly increasing even under a
// coarse or frozen clock.
func (e *Engine) touch(req *domain.Request) time.Time {
	now := e.now()
	if !now.After(req.UpdatedAt) {
		now = req.UpdatedAt.Add(time.Nanosecond)
	}
	req.UpdatedAt = now
	return now
}
