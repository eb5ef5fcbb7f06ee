package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mindsetu-api/internal/models"
	"github.com/noah-isme/mindsetu-api/internal/service"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment service.
type AssignmentHandler struct {
	service   *service.AssignmentService
	dashboard *service.DashboardService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService, dashboard *service.DashboardService) *AssignmentHandler {
	return &AssignmentHandler{service: svc, dashboard: dashboard}
}

// Create godoc
// @Summary Create an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, message, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c, actor.InstituteName)
	response.Created(c, assignment, message)
}

// List godoc
// @Summary List institute assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignments, err := h.service.ListForInstitute(c.Request.Context(), actor.InstituteName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignments, "")
}

// Submit godoc
// @Summary Submit an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submissions [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submission, message, err := h.service.AddSubmission(c.Request.Context(), actor.ID, c.Param("id"), actor.InstituteName)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c, actor.InstituteName)
	response.Created(c, submission, message)
}

// MySubmissions godoc
// @Summary List own submissions
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *AssignmentHandler) MySubmissions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submissions, err := h.service.ListSubmissionsForStudent(c.Request.Context(), actor.ID, actor.InstituteName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, submissions, "")
}

// InstituteSubmissions godoc
// @Summary List all institute submissions
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /submissions/institute [get]
func (h *AssignmentHandler) InstituteSubmissions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submissions, err := h.service.ListSubmissionsForInstitute(c.Request.Context(), actor.InstituteName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, submissions, "")
}

// Feed godoc
// @Summary Student assignment feed
// @Description Per-student assignment projection together with derived alerts
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /assignments/feed [get]
func (h *AssignmentHandler) Feed(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	feed, err := h.service.StudentFeed(c.Request.Context(), actor.ID, actor.InstituteName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, feed, "")
}

func (h *AssignmentHandler) invalidateDashboard(c *gin.Context, instituteName string) {
	if h.dashboard == nil {
		return
	}
	h.dashboard.InvalidateInstitute(c.Request.Context(), instituteName)
}
