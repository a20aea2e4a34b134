package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	"github.com/spec-kit/facility-service/internal/workflow"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// RequestService coordinates request lifecycle operations. It owns the
// permission checks; the workflow engine behind it trusts its caller.
type RequestService struct {
	requests   repository.RequestRepository
	assets     repository.AssetRepository
	users      repository.UserRepository
	engine     *workflow.Engine
	dispatcher events.Dispatcher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	AssetRepo   repository.AssetRepository
	UserRepo    repository.UserRepository
	Engine      *workflow.Engine
	Dispatcher  events.Dispatcher
}

// RequestListInput describes listing filters forwarded from the UI.
type RequestListInput struct {
	Statuses   []domain.RequestStatus
	Priorities []domain.RequestPriority
	SearchTerm *string
	Sort       repository.RequestSort
	Limit      int
	Offset     int
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		assets:     deps.AssetRepo,
		users:      deps.UserRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
	}
}

// CreateRequest submits a new service request on behalf of the actor.
func (s *RequestService) CreateRequest(ctx context.Context, actor *domain.User, input workflow.CreateInput) (*domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.PermissionsFor(actor.Role).CanCreateRequest {
		return nil, apperrors.NewForbidden("role cannot create requests")
	}
	if input.AssetID != nil {
		if _, err := s.assets.GetByID(ctx, *input.AssetID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": *input.AssetID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	req, err := s.engine.Create(input, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		ActorID:   actor.ID,
		Payload: events.RequestCreatedPayload{
			Title:    req.Title,
			Category: req.Category,
			Priority: req.Priority,
			AssetID:  req.AssetID,
		},
	})
	return req, nil
}

// ListRequests returns requests visible to the actor. Callers without the
// view-all capability are scoped to requests they reported or are assigned.
func (s *RequestService) ListRequests(ctx context.Context, actor *domain.User, input RequestListInput) ([]domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	perms := domain.PermissionsFor(actor.Role)
	filter := repository.RequestFilter{
		Statuses:   input.Statuses,
		Priorities: input.Priorities,
		SearchTerm: input.SearchTerm,
		Sort:       input.Sort,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if !perms.CanViewAllRequests {
		if !perms.CanViewOwnRequests {
			return nil, apperrors.NewForbidden("role cannot view requests")
		}
		userID := actor.ID
		filter.InvolvedUserID = &userID
	}
	list, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// GetRequest fetches one request, enforcing view scope.
func (s *RequestService) GetRequest(ctx context.Context, actor *domain.User, id string) (*domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !s.canView(actor, req) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return req, nil
}

// AssignRequest assigns a maintenance technician to a pending request and
// starts work on it.
func (s *RequestService) AssignRequest(ctx context.Context, actor *domain.User, requestID, technicianID string) (*domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.PermissionsFor(actor.Role).CanAssignTechnician {
		return nil, apperrors.NewForbidden("role cannot assign technicians")
	}
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleMaintenanceTechnician {
		return nil, apperrors.NewValidationError("assignee must be a maintenance technician", map[string]any{
			"user_id": technicianID,
			"role":    technician.Role,
		})
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	next, err := s.engine.Assign(req, technician.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Update(ctx, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestAssigned,
		RequestID: next.ID,
		ActorID:   actor.ID,
		Payload:   events.RequestAssignedPayload{AssigneeID: technician.ID},
	})
	return next, nil
}

// ApproveRequest closes a request on the happy path.
func (s *RequestService) ApproveRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.Request, error) {
	return s.decide(ctx, actor, requestID, s.engine.Approve)
}

// RejectRequest closes a request on the terminal rejected branch.
func (s *RequestService) RejectRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.Request, error) {
	return s.decide(ctx, actor, requestID, s.engine.Reject)
}

func (s *RequestService) decide(ctx context.Context, actor *domain.User, requestID string, transition func(*domain.Request, string) (*domain.Request, error)) (*domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.PermissionsFor(actor.Role).CanApproveReject {
		return nil, apperrors.NewForbidden("role cannot approve or reject requests")
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	next, err := transition(req, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Update(ctx, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: next.ID,
		ActorID:   actor.ID,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: req.Status,
			NewStatus: next.Status,
		},
	})
	return next, nil
}

// EditRequest applies generic field changes to a non-terminal request.
func (s *RequestService) EditRequest(ctx context.Context, actor *domain.User, requestID string, changes workflow.FieldChanges) (*domain.Request, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if !domain.PermissionsFor(actor.Role).CanEditRequest {
		return nil, apperrors.NewForbidden("role cannot edit requests")
	}
	if changes.AssigneeID != nil {
		if _, err := s.users.GetByID(ctx, *changes.AssigneeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *changes.AssigneeID})
			}
			return nil, apperrors.MapError(err)
		}
	}
	if changes.AssetID != nil {
		if _, err := s.assets.GetByID(ctx, *changes.AssetID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": *changes.AssetID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	next, err := s.engine.Edit(req, changes, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Update(ctx, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestUpdated,
		RequestID: next.ID,
		ActorID:   actor.ID,
		Payload:   events.RequestUpdatedPayload{ChangedFields: changedFields(changes)},
	})
	if req.Status != next.Status {
		s.publish(ctx, events.Event{
			Type:      events.EventRequestStatusChanged,
			RequestID: next.ID,
			ActorID:   actor.ID,
			Payload: events.RequestStatusChangedPayload{
				OldStatus: req.Status,
				NewStatus: next.Status,
			},
		})
	}
	return next, nil
}

// CanViewAuditLog reports whether the actor may see a request's audit trail:
// either through the audit capability or by being the reporter or assignee.
func (s *RequestService) CanViewAuditLog(actor *domain.User, req *domain.Request) bool {
	if actor == nil || req == nil {
		return false
	}
	if domain.PermissionsFor(actor.Role).CanViewAuditLogs {
		return true
	}
	return req.ReporterID == actor.ID || (req.AssigneeID != nil && *req.AssigneeID == actor.ID)
}

func (s *RequestService) canView(actor *domain.User, req *domain.Request) bool {
	perms := domain.PermissionsFor(actor.Role)
	if perms.CanViewAllRequests {
		return true
	}
	if !perms.CanViewOwnRequests {
		return false
	}
	return req.ReporterID == actor.ID || (req.AssigneeID != nil && *req.AssigneeID == actor.ID)
}

func changedFields(changes workflow.FieldChanges) []string {
	fields := []string{}
	if changes.Title != nil {
		fields = append(fields, "title")
	}
	if changes.Description != nil {
		fields = append(fields, "description")
	}
	if changes.Category != nil {
		fields = append(fields, "category")
	}
	if changes.Location != nil {
		fields = append(fields, "location")
	}
	if changes.Priority != nil {
		fields = append(fields, "priority")
	}
	if changes.Status != nil {
		fields = append(fields, "status")
	}
	if changes.AssigneeID != nil {
		fields = append(fields, "assignee")
	}
	if changes.AssetID != nil {
		fields = append(fields, "asset")
	}
	if changes.Files != nil {
		fields = append(fields, "files")
	}
	return fields
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
