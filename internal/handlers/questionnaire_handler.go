package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
	"github.com/secinto/hrms_backend/internal/services"
)

// QuestionnaireHandler handles questionnaire endpoints
// #INTEGRATION_POINT: HR portal uses these endpoints for evaluation form management
type QuestionnaireHandler struct {
	questionnaireService services.QuestionnaireService
	logger               *zap.Logger
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireService services.QuestionnaireService, logger *zap.Logger) *QuestionnaireHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionnaireHandler{
		questionnaireService: questionnaireService,
		logger:               logger.Named("questionnaire_handler"),
	}
}

// QuestionnaireListResponse represents a list of questionnaires
type QuestionnaireListResponse struct {
	Data  []services.QuestionnaireDetail `json:"data"`
	Count int                            `json:"count"`
}

func newQuestionnaireList(items []services.QuestionnaireDetail) QuestionnaireListResponse {
	if items == nil {
		items = []services.QuestionnaireDetail{}
	}
	return QuestionnaireListResponse{Data: items, Count: len(items)}
}

// ListQuestionnaires handles GET /api/v1/evaluation/questionnaires
// @Summary List questionnaires
// @Description Lists questionnaires, newest first
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (draft, published, archived)"
// @Param is_template query bool false "Filter by template flag"
// @Param search query string false "Case-insensitive title search"
// @Param include_questions query bool false "Load questions"
// @Success 200 {object} QuestionnaireListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/questionnaires [get]
func (h *QuestionnaireHandler) ListQuestionnaires(c *gin.Context) {
	filter := repository.QuestionnaireFilter{Search: strings.TrimSpace(c.Query("search"))}

	if raw := c.Query("status"); raw != "" {
		status := models.QuestionnaireStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			verr := models.NewValidationError()
			verr.Add("status", models.ErrInvalidQuestionnaireStatus.Error())
			respondError(c, h.logger, "list questionnaires", verr)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("is_template"); raw != "" {
		isTemplate, err := strconv.ParseBool(raw)
		if err != nil {
			verr := models.NewValidationError()
			verr.Add("is_template", "must be a boolean")
			respondError(c, h.logger, "list questionnaires", verr)
			return
		}
		filter.IsTemplate = &isTemplate
	}

	include := services.QuestionnaireInclude{Questions: queryBool(c, "include_questions")}
	items, err := h.questionnaireService.List(c.Request.Context(), filter, include)
	if err != nil {
		respondError(c, h.logger, "list questionnaires", err)
		return
	}

	c.JSON(http.StatusOK, newQuestionnaireList(items))
}

// ListTemplates handles GET /api/v1/evaluation/templates
// @Summary List questionnaire templates
// @Description Lists template questionnaires with their questions
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Success 200 {object} QuestionnaireListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /evaluation/templates [get]
func (h *QuestionnaireHandler) ListTemplates(c *gin.Context) {
	items, err := h.questionnaireService.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list templates", err)
		return
	}

	c.JSON(http.StatusOK, newQuestionnaireList(items))
}

// CreateQuestionnaire handles POST /api/v1/evaluation/questionnaires
// @Summary Create a questionnaire
// @Description Creates a questionnaire together with its ordered questions
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.QuestionnaireInput true "Questionnaire definition"
// @Success 201 {object} services.QuestionnaireDetail
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/questionnaires [post]
func (h *QuestionnaireHandler) CreateQuestionnaire(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.QuestionnaireInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.questionnaireService.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, h.logger, "create questionnaire", err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// GetQuestionnaire handles GET /api/v1/evaluation/questionnaires/:id
// @Summary Get questionnaire
// @Description Gets a questionnaire with its questions and assignments
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} services.QuestionnaireDetail
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	include := services.QuestionnaireInclude{Questions: true, Assignments: true}
	detail, err := h.questionnaireService.Get(c.Request.Context(), c.Param("id"), include)
	if err != nil {
		respondError(c, h.logger, "get questionnaire", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateQuestionnaire handles PUT /api/v1/evaluation/questionnaires/:id
// @Summary Update questionnaire
// @Description Replaces the definition and the full question set of a questionnaire
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body services.QuestionnaireInput true "Questionnaire definition"
// @Success 200 {object} services.QuestionnaireDetail
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id} [put]
func (h *QuestionnaireHandler) UpdateQuestionnaire(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.QuestionnaireInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.questionnaireService.Update(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "update questionnaire", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteQuestionnaire handles DELETE /api/v1/evaluation/questionnaires/:id
// @Summary Delete questionnaire
// @Description Deletes a questionnaire that has never been assigned
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id} [delete]
func (h *QuestionnaireHandler) DeleteQuestionnaire(c *gin.Context) {
	if err := h.questionnaireService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete questionnaire", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishQuestionnaire handles POST /api/v1/evaluation/questionnaires/:id/publish
// @Summary Publish questionnaire
// @Description Makes a questionnaire assignable
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.Questionnaire
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id}/publish [post]
func (h *QuestionnaireHandler) PublishQuestionnaire(c *gin.Context) {
	h.transition(c, "publish questionnaire", h.questionnaireService.Publish)
}

// UnpublishQuestionnaire handles POST /api/v1/evaluation/questionnaires/:id/unpublish
// @Summary Unpublish questionnaire
// @Description Moves a questionnaire back to draft
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.Questionnaire
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id}/unpublish [post]
func (h *QuestionnaireHandler) UnpublishQuestionnaire(c *gin.Context) {
	h.transition(c, "unpublish questionnaire", h.questionnaireService.Unpublish)
}

// ArchiveQuestionnaire handles POST /api/v1/evaluation/questionnaires/:id/archive
// @Summary Archive questionnaire
// @Description Retires a questionnaire
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.Questionnaire
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id}/archive [post]
func (h *QuestionnaireHandler) ArchiveQuestionnaire(c *gin.Context) {
	h.transition(c, "archive questionnaire", h.questionnaireService.Archive)
}

type statusTransition func(ctx context.Context, id string) (*models.Questionnaire, error)

func (h *QuestionnaireHandler) transition(c *gin.Context, op string, apply statusTransition) {
	questionnaire, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, op, err)
		return
	}

	c.JSON(http.StatusOK, questionnaire)
}

// DuplicateQuestionnaire handles POST /api/v1/evaluation/questionnaires/:id/duplicate
// @Summary Duplicate questionnaire
// @Description Copies a questionnaire and its questions into a new draft
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 201 {object} services.QuestionnaireDetail
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /evaluation/questionnaires/{id}/duplicate [post]
func (h *QuestionnaireHandler) DuplicateQuestionnaire(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	detail, err := h.questionnaireService.Duplicate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "duplicate questionnaire", err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// RegisterRoutes registers questionnaire routes
// #BUSINESS_RULE: Only ADMIN and HR manage questionnaires
func (h *QuestionnaireHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	evaluation := rg.Group("/evaluation")
	evaluation.Use(authMiddleware)
	evaluation.Use(middleware.RequireEvaluationAdmin())
	{
		evaluation.GET("/templates", h.ListTemplates)

		evaluation.GET("/questionnaires", h.ListQuestionnaires)
		evaluation.POST("/questionnaires", h.CreateQuestionnaire)
		evaluation.GET("/questionnaires/:id", h.GetQuestionnaire)
		evaluation.PUT("/questionnaires/:id", h.UpdateQuestionnaire)
		evaluation.DELETE("/questionnaires/:id", h.DeleteQuestionnaire)
		evaluation.POST("/questionnaires/:id/publish", h.PublishQuestionnaire)
		evaluation.POST("/questionnaires/:id/unpublish", h.UnpublishQuestionnaire)
		evaluation.POST("/questionnaires/:id/archive", h.ArchiveQuestionnaire)
		evaluation.POST("/questionnaires/:id/duplicate", h.DuplicateQuestionnaire)
	}
}
