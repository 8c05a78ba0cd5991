package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/reporting"
)

// ReportGenerator produces evaluation reports
type ReportGenerator interface {
	Generate(ctx context.Context, req reporting.Request) (*reporting.Report, error)
}

// ReportHandler handles evaluation report endpoints
// #INTEGRATION_POINT: HR dashboard and spreadsheet export
type ReportHandler struct {
	generator ReportGenerator
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(generator ReportGenerator, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		generator: generator,
		logger:    logger.Named("report_handler"),
	}
}

// parseReportRequest reads range, questionnaire and top_n from the query
func parseReportRequest(c *gin.Context) (reporting.Request, error) {
	verr := models.NewValidationError()
	req := reporting.Request{QuestionnaireID: c.Query("evaluation_questionnaire_id")}

	r, ok := reporting.ParseRange(c.Query("range"))
	if !ok {
		verr.Add("range", "must be one of all, last_7_days, last_30_days, last_90_days")
	}
	req.Range = r

	if raw := c.Query("top_n"); raw != "" {
		topN, err := strconv.Atoi(raw)
		if err != nil || topN < 1 || topN > 100 {
			verr.Add("top_n", "must be a number between 1 and 100")
		}
		req.TopN = topN
	}

	return req, verr.OrNil()
}

// GetReport handles GET /api/v1/evaluation/reports
// @Summary Evaluation report
// @Description Aggregates assignments into overview, per-questionnaire stats, top performers and recent evaluations
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param range query string false "all, last_7_days, last_30_days or last_90_days" default(last_30_days)
// @Param evaluation_questionnaire_id query string false "Restrict to one questionnaire"
// @Param top_n query int false "Number of top performers" default(10)
// @Success 200 {object} reporting.Report
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	req, err := parseReportRequest(c)
	if err != nil {
		respondError(c, h.logger, "generate report", err)
		return
	}

	report, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "generate report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportReport handles GET /api/v1/evaluation/reports/export
// @Summary Export evaluation report
// @Description Downloads the evaluation report as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param range query string false "all, last_7_days, last_30_days or last_90_days" default(last_30_days)
// @Param evaluation_questionnaire_id query string false "Restrict to one questionnaire"
// @Param top_n query int false "Number of top performers" default(10)
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluation/reports/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	req, err := parseReportRequest(c)
	if err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}

	report, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}

	f, err := reporting.ExportXLSX(report)
	if err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			h.logger.Warn("closing workbook failed", zap.Error(closeErr))
		}
	}()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+reporting.ExportFilename(report)+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("writing workbook failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	reports := rg.Group("/evaluation/reports")
	reports.Use(authMiddleware)
	reports.Use(middleware.RequireEvaluationAdmin())
	{
		reports.GET("", h.GetReport)
		reports.GET("/export", h.ExportReport)
	}
}
