package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
	"github.com/secinto/hrms_backend/internal/services"
)

// AssignmentHandler handles evaluation assignment endpoints
// #INTEGRATION_POINT: HR portal assigns evaluations, employees fill them in through the same API
type AssignmentHandler struct {
	assignmentService services.AssignmentService
	logger            *zap.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService services.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger.Named("assignment_handler"),
	}
}

// AssignmentListResponse represents a list of assignments
type AssignmentListResponse struct {
	Data  []services.AssignmentDetail `json:"data"`
	Count int                         `json:"count"`
}

// CreatedAssignmentsResponse lists the assignments an assign call created
type CreatedAssignmentsResponse struct {
	Data  []models.Assignment `json:"data"`
	Count int                 `json:"count"`
}

func newAssignmentList(items []services.AssignmentDetail) AssignmentListResponse {
	if items == nil {
		items = []services.AssignmentDetail{}
	}
	return AssignmentListResponse{Data: items, Count: len(items)}
}

// parseAssignmentStatus reads the optional status query parameter
func parseAssignmentStatus(c *gin.Context, verr *models.ValidationError) *models.AssignmentStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.AssignmentStatus(strings.ToUpper(raw))
	if !status.IsValid() {
		verr.Add("status", models.ErrInvalidAssignmentState.Error())
		return nil
	}
	return &status
}

const dateLayout = "2006-01-02"

// parseTimeQuery accepts RFC 3339 timestamps or plain dates
// #BUSINESS_RULE: A plain date as upper bound includes that whole day
func parseTimeQuery(c *gin.Context, name string, upper bool, verr *models.ValidationError) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t
	}
	verr.Add(name, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	return nil
}

// ListAssignments handles GET /api/v1/evaluation/assignments
// @Summary List assignments
// @Description Lists assignments matching the filters, newest first
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, in_progress, completed, cancelled)"
// @Param evaluation_questionnaire_id query string false "Filter by questionnaire"
// @Param evaluator_id query string false "Filter by evaluator"
// @Param evaluatee_id query string false "Filter by evaluatee"
// @Param assigned_from query string false "Lower assigned_at bound"
// @Param assigned_to query string false "Upper assigned_at bound"
// @Success 200 {object} AssignmentListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	verr := models.NewValidationError()
	filter := repository.AssignmentFilter{
		Status:          parseAssignmentStatus(c, verr),
		QuestionnaireID: c.Query("evaluation_questionnaire_id"),
		EvaluatorID:     c.Query("evaluator_id"),
		EvaluateeID:     c.Query("evaluatee_id"),
		AssignedFrom:    parseTimeQuery(c, "assigned_from", false, verr),
		AssignedTo:      parseTimeQuery(c, "assigned_to", true, verr),
	}
	if err := verr.OrNil(); err != nil {
		respondError(c, h.logger, "list assignments", err)
		return
	}

	items, err := h.assignmentService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "list assignments", err)
		return
	}

	c.JSON(http.StatusOK, newAssignmentList(items))
}

// MyAssignments handles GET /api/v1/evaluation/my-assignments
// @Summary List my assignments
// @Description Lists the assignments of the acting evaluator, newest first
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} AssignmentListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/my-assignments [get]
func (h *AssignmentHandler) MyAssignments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	verr := models.NewValidationError()
	status := parseAssignmentStatus(c, verr)
	if err := verr.OrNil(); err != nil {
		respondError(c, h.logger, "list my assignments", err)
		return
	}

	items, err := h.assignmentService.ListForEvaluator(c.Request.Context(), actor.UserID, status)
	if err != nil {
		respondError(c, h.logger, "list my assignments", err)
		return
	}

	c.JSON(http.StatusOK, newAssignmentList(items))
}

// CreateAssignments handles POST /api/v1/evaluation/assignments
// @Summary Assign a questionnaire
// @Description Creates assignments for explicit evaluator/evaluatee pairs, existing pairings are skipped
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AssignRequest true "Pairs to assign"
// @Success 201 {object} CreatedAssignmentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments [post]
func (h *AssignmentHandler) CreateAssignments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	created, err := h.assignmentService.Assign(c.Request.Context(), actor, req.QuestionnaireID, req.Assignments)
	if err != nil {
		respondError(c, h.logger, "assign questionnaire", err)
		return
	}

	c.JSON(http.StatusCreated, CreatedAssignmentsResponse{Data: created, Count: len(created)})
}

// BulkAssign handles POST /api/v1/evaluation/assignments/bulk
// @Summary Bulk assign a questionnaire
// @Description Assigns every evaluator to every evaluatee, self pairs and existing pairings are skipped
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.BulkAssignRequest true "Evaluators and evaluatees"
// @Success 201 {object} services.BulkAssignResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments/bulk [post]
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.assignmentService.BulkAssign(c.Request.Context(), actor, req.QuestionnaireID, req.EvaluatorIDs, req.EvaluateeIDs)
	if err != nil {
		respondError(c, h.logger, "bulk assign questionnaire", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetAssignment handles GET /api/v1/evaluation/assignments/:id
// @Summary Get assignment
// @Description Gets an assignment with its questionnaire and questions
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} services.AssignmentDetail
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	include := services.AssignmentInclude{Questionnaire: true, Questions: true}
	detail, err := h.assignmentService.Get(c.Request.Context(), actor, c.Param("id"), include)
	if err != nil {
		respondError(c, h.logger, "get assignment", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// StartAssignment handles POST /api/v1/evaluation/assignments/:id/start
// @Summary Start assignment
// @Description Moves a pending assignment of the acting evaluator to in progress
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /evaluation/assignments/{id}/start [post]
func (h *AssignmentHandler) StartAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Start(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "start assignment", err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// SaveDraft handles POST /api/v1/evaluation/assignments/:id/draft
// @Summary Save draft responses
// @Description Stores intermediate responses of the acting evaluator
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body services.ResponseInput true "Responses"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments/{id}/draft [post]
func (h *AssignmentHandler) SaveDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.ResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.SaveDraft(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "save draft", err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// SubmitAssignment handles POST /api/v1/evaluation/assignments/:id/submit
// @Summary Submit assignment
// @Description Completes an assignment of the acting evaluator and computes its score
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body services.ResponseInput true "Responses"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments/{id}/submit [post]
func (h *AssignmentHandler) SubmitAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.ResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.Submit(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "submit assignment", err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment handles PUT /api/v1/evaluation/assignments/:id
// @Summary Override assignment
// @Description Administrative override of responses, score and status
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body services.AdminUpdateInput true "Override"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/assignments/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.AdminUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.AdminUpdate(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "update assignment", err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment handles DELETE /api/v1/evaluation/assignments/:id
// @Summary Delete assignment
// @Description Deletes an assignment that has not been completed
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /evaluation/assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	if err := h.assignmentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete assignment", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers assignment routes
// #BUSINESS_RULE: Evaluator actions are open to every authenticated user, ownership is checked by the service
func (h *AssignmentHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	evaluation := rg.Group("/evaluation")
	evaluation.Use(authMiddleware)
	admin := middleware.RequireEvaluationAdmin()
	{
		evaluation.GET("/my-assignments", h.MyAssignments)

		evaluation.GET("/assignments", admin, h.ListAssignments)
		evaluation.POST("/assignments", admin, h.CreateAssignments)
		evaluation.POST("/assignments/bulk", admin, h.BulkAssign)
		evaluation.GET("/assignments/:id", h.GetAssignment)
		evaluation.PUT("/assignments/:id", admin, h.UpdateAssignment)
		evaluation.DELETE("/assignments/:id", admin, h.DeleteAssignment)
		evaluation.POST("/assignments/:id/start", h.StartAssignment)
		evaluation.POST("/assignments/:id/draft", h.SaveDraft)
		evaluation.POST("/assignments/:id/submit", h.SubmitAssignment)
	}
}
