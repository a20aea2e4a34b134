package events

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestAssigned      EventType = "request_assigned"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestUpdated       EventType = "request_updated"
	EventAssetChanged         EventType = "asset_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Title    string                 `json:"title"`
	Category string                 `json:"category"`
	Priority domain.RequestPriority `json:"priority"`
	AssetID  *string                `json:"asset_id,omitempty"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}

// RequestUpdatedPayload payload.
type RequestUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// AssetChangedPayload payload.
type AssetChangedPayload struct {
	AssetID string `json:"asset_id"`
}
