package dto

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Location    string                 `json:"location"`
	Priority    domain.RequestPriority `json:"priority"`
	AssetID     *string                `json:"asset_id"`
	Files       []FileAttachmentDTO    `json:"files"`
}

// EditRequestRequest payload. Absent fields are left untouched.
type EditRequestRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Category    *string                 `json:"category"`
	Location    *string                 `json:"location"`
	Priority    *domain.RequestPriority `json:"priority"`
	Status      *domain.RequestStatus   `json:"status"`
	AssigneeID  *string                 `json:"assignee_id"`
	AssetID     *string                 `json:"asset_id"`
	Files       []FileAttachmentDTO     `json:"files"`
}

// AssignRequestRequest payload.
type AssignRequestRequest struct {
	TechnicianID string `json:"technician_id"`
}

// FileAttachmentDTO wire form of a file reference.
type FileAttachmentDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RequestSummary response.
type RequestSummary struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Category   string                 `json:"category"`
	Location   string                 `json:"location"`
	Priority   domain.RequestPriority `json:"priority"`
	Status     domain.RequestStatus   `json:"status"`
	ReporterID string                 `json:"reporter_id"`
	AssigneeID *string                `json:"assignee_id"`
	AssetID    *string                `json:"asset_id"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// MilestoneResponse is one workflow stage.
type MilestoneResponse struct {
	Stage     domain.MilestoneStage `json:"stage"`
	Completed bool                  `json:"completed"`
	Date      *time.Time            `json:"date"`
	By        *string               `json:"by"`
	SLAStatus domain.SLAStatus      `json:"sla_status"`
}

// AuditEntryResponse is one audit trail row.
type AuditEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// RequestDetailResponse provides full request info. The audit log is present
// only for viewers allowed to see it.
type RequestDetailResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Location    string                 `json:"location"`
	Priority    domain.RequestPriority `json:"priority"`
	Status      domain.RequestStatus   `json:"status"`
	ReporterID  string                 `json:"reporter_id"`
	AssigneeID  *string                `json:"assignee_id"`
	AssetID     *string                `json:"asset_id"`
	Files       []FileAttachmentDTO    `json:"files"`
	Workflow    []MilestoneResponse    `json:"workflow"`
	AuditLog    []AuditEntryResponse   `json:"audit_log,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}
