package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusApproved   RequestStatus = "Approved"
	RequestStatusRejected   RequestStatus = "Rejected"
	RequestStatusException  RequestStatus = "Exception"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// RequestPriority enumerates urgency levels.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "Low"
	RequestPriorityMedium   RequestPriority = "Medium"
	RequestPriorityHigh     RequestPriority = "High"
	RequestPriorityCritical RequestPriority = "Critical"
)

// MilestoneStage names one step of the request workflow.
type MilestoneStage string

const (
	StageSubmitted     MilestoneStage = "Submitted"
	StageReviewed      MilestoneStage = "Reviewed"
	StageAssigned      MilestoneStage = "Assigned"
	StageWorkStarted   MilestoneStage = "Work Started"
	StageWorkCompleted MilestoneStage = "Work Completed"
	StageApproved      MilestoneStage = "Approved"
	StageRejected      MilestoneStage = "Rejected"
)

// HappyPathStages is the fixed six-step workflow template every new request
// starts with. StageRejected is not part of it; a rejection appends its own
// terminal entry.
var HappyPathStages = []MilestoneStage{
	StageSubmitted,
	StageReviewed,
	StageAssigned,
	StageWorkStarted,
	StageWorkCompleted,
	StageApproved,
}

// SLAStatus annotates schedule health on a milestone. Advisory only.
type SLAStatus string

const (
	SLAOnTrack  SLAStatus = "On Track"
	SLAAtRisk   SLAStatus = "At Risk"
	SLABreached SLAStatus = "Breached"
)

// Milestone is one stage entry in a request's workflow. A completed
// milestone always carries a date and the acting user's ID.
type Milestone struct {
	Stage     MilestoneStage `json:"stage"`
	Completed bool           `json:"completed"`
	Date      *time.Time     `json:"date,omitempty"`
	By        *string        `json:"by,omitempty"`
	SLAStatus SLAStatus      `json:"sla_status"`
}

// AuditEntry records one state-changing action. Entries are append-only and
// never edited or truncated.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// FileAttachment references an uploaded file by name and retrievable URL.
type FileAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Request is the aggregate for facility service requests. Reporter and
// assignee hold stable user IDs, not display names.
type Request struct {
	ID          string
	Title       string
	Description string
	Category    string
	Location    string
	Priority    RequestPriority
	Status      RequestStatus
	ReporterID  string
	AssigneeID  *string
	AssetID     *string
	Workflow    []Milestone
	AuditLog    []AuditEntry
	Files       []FileAttachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// stored state.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	if r.AssigneeID != nil {
		v := *r.AssigneeID
		out.AssigneeID = &v
	}
	if r.AssetID != nil {
		v := *r.AssetID
		out.AssetID = &v
	}
	out.Workflow = make([]Milestone, len(r.Workflow))
	for i, m := range r.Workflow {
		cp := m
		if m.Date != nil {
			d := *m.Date
			cp.Date = &d
		}
		if m.By != nil {
			b := *m.By
			cp.By = &b
		}
		out.Workflow[i] = cp
	}
	out.AuditLog = append([]AuditEntry(nil), r.AuditLog...)
	out.Files = append([]FileAttachment(nil), r.Files...)
	return &out
}

// MilestoneIndex returns the position of stage in the workflow or -1.
func (r *Request) MilestoneIndex(stage MilestoneStage) int {
	for i := range r.Workflow {
		if r.Workflow[i].Stage == stage {
			return i
		}
	}
	return -1
}
