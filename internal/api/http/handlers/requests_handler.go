package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/api/dto"
	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	"github.com/spec-kit/facility-service/internal/service"
	"github.com/spec-kit/facility-service/internal/workflow"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// RequestsHandler manages service-request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := workflow.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    req.Priority,
		AssetID:     req.AssetID,
		Files:       fileAttachments(req.Files),
	}
	created, err := h.service.CreateRequest(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": requestSummary(created)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.service.ListRequests(c.UserContext(), principal.User, parseRequestQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	req, err := h.service.GetRequest(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	withAudit := h.service.CanViewAuditLog(principal.User, req)
	return c.JSON(fiber.Map{"data": requestDetail(req, withAudit)})
}

// AssignRequest POST /requests/:id/assign.
func (h *RequestsHandler) AssignRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TechnicianID) == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	updated, err := h.service.AssignRequest(c.UserContext(), principal.User, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(updated)})
}

// ApproveRequest POST /requests/:id/approve.
func (h *RequestsHandler) ApproveRequest(c *fiber.Ctx) error {
	return h.decide(c, h.service.ApproveRequest)
}

// RejectRequest POST /requests/:id/reject.
func (h *RequestsHandler) RejectRequest(c *fiber.Ctx) error {
	return h.decide(c, h.service.RejectRequest)
}

// EditRequest PATCH /requests/:id.
func (h *RequestsHandler) EditRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EditRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	changes := workflow.FieldChanges{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		AssetID:     req.AssetID,
	}
	if req.Files != nil {
		changes.Files = fileAttachments(req.Files)
	}
	updated, err := h.service.EditRequest(c.UserContext(), principal.User, c.Params("id"), changes)
	if err != nil {
		return err
	}
	withAudit := h.service.CanViewAuditLog(principal.User, updated)
	return c.JSON(fiber.Map{"data": requestDetail(updated, withAudit)})
}

func (h *RequestsHandler) decide(c *fiber.Ctx, op func(context.Context, *domain.User, string) (*domain.Request, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	updated, err := op(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(updated)})
}

func parseRequestQuery(c *fiber.Ctx) service.RequestListInput {
	input := service.RequestListInput{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.RequestStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			input.Priorities = append(input.Priorities, domain.RequestPriority(strings.TrimSpace(part)))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.SearchTerm = &search
	}
	switch c.Query("sort") {
	case "newest":
		input.Sort = repository.SortNewest
	case "oldest":
		input.Sort = repository.SortOldest
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func fileAttachments(files []dto.FileAttachmentDTO) []domain.FileAttachment {
	out := make([]domain.FileAttachment, 0, len(files))
	for _, f := range files {
		out = append(out, domain.FileAttachment{Name: f.Name, URL: f.URL})
	}
	return out
}

func requestSummary(req *domain.Request) dto.RequestSummary {
	return dto.RequestSummary{
		ID:         req.ID,
		Title:      req.Title,
		Category:   req.Category,
		Location:   req.Location,
		Priority:   req.Priority,
		Status:     req.Status,
		ReporterID: req.ReporterID,
		AssigneeID: req.AssigneeID,
		AssetID:    req.AssetID,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}
}

func requestDetail(req *domain.Request, withAudit bool) dto.RequestDetailResponse {
	files := make([]dto.FileAttachmentDTO, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, dto.FileAttachmentDTO{Name: f.Name, URL: f.URL})
	}
	milestones := make([]dto.MilestoneResponse, 0, len(req.Workflow))
	for _, m := range req.Workflow {
		milestones = append(milestones, dto.MilestoneResponse{
			Stage:     m.Stage,
			Completed: m.Completed,
			Date:      m.Date,
			By:        m.By,
			SLAStatus: m.SLAStatus,
		})
	}
	detail := dto.RequestDetailResponse{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    req.Priority,
		Status:      req.Status,
		ReporterID:  req.ReporterID,
		AssigneeID:  req.AssigneeID,
		AssetID:     req.AssetID,
		Files:       files,
		Workflow:    milestones,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	if withAudit {
		entries := make([]dto.AuditEntryResponse, 0, len(req.AuditLog))
		for _, e := range req.AuditLog {
			entries = append(entries, dto.AuditEntryResponse{
				Timestamp: e.Timestamp,
				UserID:    e.UserID,
				Action:    e.Action,
				Details:   e.Details,
			})
		}
		detail.AuditLog = entries
	}
	return detail
}
