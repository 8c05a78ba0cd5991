package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/secinto/hrms_backend/internal/middleware"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/reporting"
	"github.com/secinto/hrms_backend/internal/repository/memory"
	"github.com/secinto/hrms_backend/internal/services"
)

// fakeAuth stands in for the JWT middleware, the identity comes from test headers
func fakeAuth(c *gin.Context) {
	userID := c.GetHeader("X-Test-User")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "missing identity"})
		return
	}
	c.Set(middleware.ContextKeyActor, models.NewActor(userID, c.GetHeader("X-Test-Role")))
	c.Next()
}

type identity struct {
	userID string
	role   string
}

var (
	hrUser    = identity{userID: "hr-1", role: "HR"}
	evaluator = identity{userID: "emp-1", role: "EMPLOYEE"}
	bystander = identity{userID: "emp-9", role: "EMPLOYEE"}
	anonymous = identity{}
)

func newTestRouter(generator ReportGenerator) *gin.Engine {
	repos := memory.NewRepositories()
	questionnaireService := services.NewQuestionnaireService(repos, nil)
	assignmentService := services.NewAssignmentService(repos, nil)
	if generator == nil {
		generator = reporting.NewProjector(assignmentService, nil, nil)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	api := router.Group("/api/v1")
	NewQuestionnaireHandler(questionnaireService, nil).RegisterRoutes(api, fakeAuth)
	NewAssignmentHandler(assignmentService, nil).RegisterRoutes(api, fakeAuth)
	NewReportHandler(generator, nil).RegisterRoutes(api, fakeAuth)
	return router
}

func call(t *testing.T, router *gin.Engine, who identity, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if who.userID != "" {
		req.Header.Set("X-Test-User", who.userID)
		req.Header.Set("X-Test-Role", who.role)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

type questionnaireBody struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Questions []struct {
		ID    string `json:"id"`
		Order int    `json:"order"`
	} `json:"questions"`
	Assignments []struct {
		ID string `json:"id"`
	} `json:"assignments"`
}

type assignmentBody struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	TotalScore *float64 `json:"total_score"`
}

const reviewDefinition = `{
	"title": "Q3 Review",
	"evaluation_period": "2026-Q3",
	"questions": [
		{"question_text": "Quality of work", "question_type": "rating"},
		{"question_text": "Teamwork", "question_type": "rating"},
		{"question_text": "Notes", "question_type": "text"}
	]
}`

// publishedQuestionnaire creates and publishes the review questionnaire
func publishedQuestionnaire(t *testing.T, router *gin.Engine) questionnaireBody {
	t.Helper()
	w := call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires", reviewDefinition)
	expectStatus(t, w, http.StatusCreated)
	var q questionnaireBody
	decode(t, w, &q)

	w = call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires/"+q.ID+"/publish", "")
	expectStatus(t, w, http.StatusOK)
	return q
}

func assignOne(t *testing.T, router *gin.Engine, questionnaireID string) assignmentBody {
	t.Helper()
	w := call(t, router, hrUser, http.MethodPost, "/evaluation/assignments",
		`{"evaluation_questionnaire_id": "`+questionnaireID+`", "assignments": [{"evaluator_id": "emp-1", "evaluatee_id": "emp-2"}]}`)
	expectStatus(t, w, http.StatusCreated)

	var created struct {
		Data  []assignmentBody `json:"data"`
		Count int              `json:"count"`
	}
	decode(t, w, &created)
	if created.Count != 1 || len(created.Data) != 1 {
		t.Fatalf("created %d assignments, want 1", created.Count)
	}
	return created.Data[0]
}

func TestQuestionnaireHandler_CreateAndGet(t *testing.T) {
	router := newTestRouter(nil)

	w := call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires", reviewDefinition)
	expectStatus(t, w, http.StatusCreated)

	var created questionnaireBody
	decode(t, w, &created)
	if created.Status != "draft" || len(created.Questions) != 3 {
		t.Fatalf("created = %+v", created)
	}
	for i, q := range created.Questions {
		if q.Order != i+1 {
			t.Errorf("question %d order = %d", i, q.Order)
		}
	}

	w = call(t, router, hrUser, http.MethodGet, "/evaluation/questionnaires/"+created.ID, "")
	expectStatus(t, w, http.StatusOK)
	var fetched questionnaireBody
	decode(t, w, &fetched)
	if fetched.Title != "Q3 Review" || len(fetched.Questions) != 3 {
		t.Errorf("fetched = %+v", fetched)
	}

	w = call(t, router, hrUser, http.MethodGet, "/evaluation/questionnaires?status=draft&search=q3", "")
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 1 {
		t.Errorf("list count = %d, want 1", list.Count)
	}
}

func TestQuestionnaireHandler_Errors(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name   string
		who    identity
		method string
		path   string
		body   string
		want   int
	}{
		{name: "no identity", who: anonymous, method: http.MethodGet, path: "/evaluation/questionnaires", want: http.StatusUnauthorized},
		{name: "employee", who: evaluator, method: http.MethodGet, path: "/evaluation/questionnaires", want: http.StatusForbidden},
		{name: "broken json", who: hrUser, method: http.MethodPost, path: "/evaluation/questionnaires", body: `{"title":`, want: http.StatusBadRequest},
		{name: "invalid definition", who: hrUser, method: http.MethodPost, path: "/evaluation/questionnaires", body: `{"title": "", "questions": []}`, want: http.StatusUnprocessableEntity},
		{name: "unknown status filter", who: hrUser, method: http.MethodGet, path: "/evaluation/questionnaires?status=live", want: http.StatusUnprocessableEntity},
		{name: "bad template filter", who: hrUser, method: http.MethodGet, path: "/evaluation/questionnaires?is_template=maybe", want: http.StatusUnprocessableEntity},
		{name: "missing questionnaire", who: hrUser, method: http.MethodGet, path: "/evaluation/questionnaires/missing", want: http.StatusNotFound},
		{name: "publish missing", who: hrUser, method: http.MethodPost, path: "/evaluation/questionnaires/missing/publish", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, router, tt.who, tt.method, tt.path, tt.body)
			expectStatus(t, w, tt.want)
		})
	}
}

func TestQuestionnaireHandler_ValidationFields(t *testing.T) {
	router := newTestRouter(nil)

	w := call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires",
		`{"title": "", "questions": [{"question_text": "Pick", "question_type": "multiple_choice"}, {"question_text": "Rate", "question_type": "rating", "min_score": 5, "max_score": 5}]}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)

	var resp ErrorResponse
	decode(t, w, &resp)
	fields := map[string]bool{}
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "questions[0].options", "questions[1].max_score"} {
		if !fields[want] {
			t.Errorf("missing field %s in %+v", want, resp.Fields)
		}
	}
}

func TestQuestionnaireHandler_LifecycleAndDuplicate(t *testing.T) {
	router := newTestRouter(nil)
	q := publishedQuestionnaire(t, router)

	w := call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires/"+q.ID+"/duplicate", "")
	expectStatus(t, w, http.StatusCreated)
	var copied questionnaireBody
	decode(t, w, &copied)
	if copied.ID == q.ID || copied.Status != "draft" || len(copied.Questions) != 3 {
		t.Errorf("copy = %+v", copied)
	}

	for path, want := range map[string]string{"/unpublish": "draft", "/archive": "archived"} {
		w = call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires/"+q.ID+path, "")
		expectStatus(t, w, http.StatusOK)
		var body questionnaireBody
		decode(t, w, &body)
		if body.Status != want {
			t.Errorf("%s status = %s, want %s", path, body.Status, want)
		}
	}

	w = call(t, router, hrUser, http.MethodDelete, "/evaluation/questionnaires/"+copied.ID, "")
	expectStatus(t, w, http.StatusNoContent)
}

func TestQuestionnaireHandler_Templates(t *testing.T) {
	router := newTestRouter(nil)

	template := strings.Replace(reviewDefinition, `"title": "Q3 Review"`, `"title": "Annual Template", "is_template": true`, 1)
	expectStatus(t, call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires", template), http.StatusCreated)
	expectStatus(t, call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires", reviewDefinition), http.StatusCreated)

	w := call(t, router, hrUser, http.MethodGet, "/evaluation/templates", "")
	expectStatus(t, w, http.StatusOK)
	var list QuestionnaireListResponse
	decode(t, w, &list)
	if list.Count != 1 || list.Data[0].Title != "Annual Template" || len(list.Data[0].Questions) != 3 {
		t.Errorf("templates = %+v", list)
	}
}

func TestAssignmentHandler_EvaluationFlow(t *testing.T) {
	router := newTestRouter(nil)
	q := publishedQuestionnaire(t, router)
	a := assignOne(t, router, q.ID)
	if a.Status != "pending" {
		t.Fatalf("new assignment status = %s", a.Status)
	}

	w := call(t, router, evaluator, http.MethodGet, "/evaluation/my-assignments?status=pending", "")
	expectStatus(t, w, http.StatusOK)
	var mine AssignmentListResponse
	decode(t, w, &mine)
	if mine.Count != 1 || mine.Data[0].Questionnaire == nil || mine.Data[0].Questionnaire.Title != "Q3 Review" {
		t.Fatalf("my assignments = %+v", mine)
	}

	w = call(t, router, evaluator, http.MethodGet, "/evaluation/assignments/"+a.ID, "")
	expectStatus(t, w, http.StatusOK)
	var detail services.AssignmentDetail
	decode(t, w, &detail)
	if len(detail.Questions) != 3 || detail.Questionnaire == nil {
		t.Errorf("detail = %+v", detail)
	}

	expectStatus(t, call(t, router, bystander, http.MethodGet, "/evaluation/assignments/"+a.ID, ""), http.StatusForbidden)
	expectStatus(t, call(t, router, bystander, http.MethodPost, "/evaluation/assignments/"+a.ID+"/start", ""), http.StatusForbidden)

	w = call(t, router, evaluator, http.MethodPost, "/evaluation/assignments/"+a.ID+"/start", "")
	expectStatus(t, w, http.StatusOK)
	var started assignmentBody
	decode(t, w, &started)
	if started.Status != "in_progress" {
		t.Errorf("started status = %s", started.Status)
	}

	responses := `{"responses": {"` + q.Questions[0].ID + `": 8, "` + q.Questions[1].ID + `": 6, "` + q.Questions[2].ID + `": "looks good"}, "comments": "solid quarter"}`
	expectStatus(t, call(t, router, evaluator, http.MethodPost, "/evaluation/assignments/"+a.ID+"/draft", responses), http.StatusOK)

	w = call(t, router, evaluator, http.MethodPost, "/evaluation/assignments/"+a.ID+"/submit", responses)
	expectStatus(t, w, http.StatusOK)
	var submitted assignmentBody
	decode(t, w, &submitted)
	if submitted.Status != "completed" || submitted.TotalScore == nil || *submitted.TotalScore != 7 {
		t.Errorf("submitted = %+v", submitted)
	}

	expectStatus(t, call(t, router, evaluator, http.MethodPost, "/evaluation/assignments/"+a.ID+"/draft", responses), http.StatusConflict)
	expectStatus(t, call(t, router, hrUser, http.MethodDelete, "/evaluation/assignments/"+a.ID, ""), http.StatusConflict)
	expectStatus(t, call(t, router, hrUser, http.MethodDelete, "/evaluation/questionnaires/"+q.ID, ""), http.StatusConflict)
}

func TestAssignmentHandler_AssignErrors(t *testing.T) {
	router := newTestRouter(nil)

	w := call(t, router, hrUser, http.MethodPost, "/evaluation/questionnaires", reviewDefinition)
	expectStatus(t, w, http.StatusCreated)
	var draft questionnaireBody
	decode(t, w, &draft)

	tests := []struct {
		name string
		who  identity
		path string
		body string
		want int
	}{
		{name: "employee", who: evaluator, path: "/evaluation/assignments", body: `{}`, want: http.StatusForbidden},
		{name: "broken json", who: hrUser, path: "/evaluation/assignments", body: `[`, want: http.StatusBadRequest},
		{name: "no pairs", who: hrUser, path: "/evaluation/assignments", body: `{"evaluation_questionnaire_id": "` + draft.ID + `", "assignments": []}`, want: http.StatusUnprocessableEntity},
		{name: "self pair", who: hrUser, path: "/evaluation/assignments", body: `{"evaluation_questionnaire_id": "` + draft.ID + `", "assignments": [{"evaluator_id": "emp-1", "evaluatee_id": "emp-1"}]}`, want: http.StatusUnprocessableEntity},
		{name: "draft questionnaire", who: hrUser, path: "/evaluation/assignments", body: `{"evaluation_questionnaire_id": "` + draft.ID + `", "assignments": [{"evaluator_id": "emp-1", "evaluatee_id": "emp-2"}]}`, want: http.StatusConflict},
		{name: "unknown questionnaire", who: hrUser, path: "/evaluation/assignments/bulk", body: `{"evaluation_questionnaire_id": "missing", "evaluator_ids": ["a"], "evaluatee_ids": ["b"]}`, want: http.StatusNotFound},
		{name: "bulk without evaluatees", who: hrUser, path: "/evaluation/assignments/bulk", body: `{"evaluation_questionnaire_id": "` + draft.ID + `", "evaluator_ids": ["a"], "evaluatee_ids": []}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, call(t, router, tt.who, http.MethodPost, tt.path, tt.body), tt.want)
		})
	}
}

func TestAssignmentHandler_BulkAndAdmin(t *testing.T) {
	router := newTestRouter(nil)
	q := publishedQuestionnaire(t, router)

	w := call(t, router, hrUser, http.MethodPost, "/evaluation/assignments/bulk",
		`{"evaluation_questionnaire_id": "`+q.ID+`", "evaluator_ids": ["emp-1", "emp-2"], "evaluatee_ids": ["emp-1", "emp-3"]}`)
	expectStatus(t, w, http.StatusCreated)
	var bulk services.BulkAssignResult
	decode(t, w, &bulk)
	if bulk.Count != 3 {
		t.Fatalf("bulk count = %d, want 3", bulk.Count)
	}

	w = call(t, router, hrUser, http.MethodGet, "/evaluation/assignments?evaluator_id=emp-1&status=pending", "")
	expectStatus(t, w, http.StatusOK)
	var list AssignmentListResponse
	decode(t, w, &list)
	if list.Count != 1 {
		t.Errorf("filtered count = %d, want 1", list.Count)
	}
	expectStatus(t, call(t, router, hrUser, http.MethodGet, "/evaluation/assignments?assigned_from=yesterday", ""), http.StatusUnprocessableEntity)

	today := time.Now().UTC().Format("2006-01-02")
	w = call(t, router, hrUser, http.MethodGet, "/evaluation/assignments?assigned_from="+today+"&assigned_to="+today, "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if list.Count != 3 {
		t.Errorf("assigned today count = %d, want 3", list.Count)
	}

	target := bulk.Assignments[0].ID
	override := `{"responses": {"x": 9}, "total_score": 3.456, "status": "completed"}`
	expectStatus(t, call(t, router, evaluator, http.MethodPut, "/evaluation/assignments/"+target, override), http.StatusForbidden)

	w = call(t, router, hrUser, http.MethodPut, "/evaluation/assignments/"+target, override)
	expectStatus(t, w, http.StatusOK)
	var updated assignmentBody
	decode(t, w, &updated)
	if updated.Status != "completed" || updated.TotalScore == nil || *updated.TotalScore != 3.46 {
		t.Errorf("updated = %+v", updated)
	}

	expectStatus(t, call(t, router, hrUser, http.MethodPut, "/evaluation/assignments/"+bulk.Assignments[1].ID,
		`{"responses": {}, "status": "pending"}`), http.StatusUnprocessableEntity)
	expectStatus(t, call(t, router, hrUser, http.MethodDelete, "/evaluation/assignments/"+bulk.Assignments[1].ID, ""), http.StatusNoContent)
	expectStatus(t, call(t, router, hrUser, http.MethodDelete, "/evaluation/assignments/"+bulk.Assignments[1].ID, ""), http.StatusNotFound)
}

func TestParseTimeQuery(t *testing.T) {
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		raw     string
		upper   bool
		want    *time.Time
		wantErr bool
	}{
		{name: "absent", raw: ""},
		{name: "date as lower bound", raw: "2026-10-14", want: &day},
		{name: "date as upper bound", raw: "2026-10-14", upper: true, want: timePtr(day.Add(24*time.Hour - time.Nanosecond))},
		{name: "timestamp as upper bound", raw: "2026-10-14T08:30:00+02:00", upper: true, want: timePtr(day.Add(6*time.Hour + 30*time.Minute))},
		{name: "malformed", raw: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			target := "/evaluation/assignments"
			if tt.raw != "" {
				target += "?assigned_to=" + url.QueryEscape(tt.raw)
			}
			c.Request = httptest.NewRequest(http.MethodGet, target, nil)

			verr := models.NewValidationError()
			got := parseTimeQuery(c, "assigned_to", tt.upper, verr)
			if verr.HasErrors() != tt.wantErr {
				t.Fatalf("validation errors = %v, want %v", verr.HasErrors(), tt.wantErr)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("parseTimeQuery() = %v, want nil", got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("parseTimeQuery() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestReportHandler_JSONAndExport(t *testing.T) {
	router := newTestRouter(nil)
	q := publishedQuestionnaire(t, router)
	a := assignOne(t, router, q.ID)
	expectStatus(t, call(t, router, evaluator, http.MethodPost, "/evaluation/assignments/"+a.ID+"/submit",
		`{"responses": {"`+q.Questions[0].ID+`": 9, "`+q.Questions[1].ID+`": 7}}`), http.StatusOK)

	w := call(t, router, hrUser, http.MethodGet, "/evaluation/reports?range=last_7_days", "")
	expectStatus(t, w, http.StatusOK)
	var report reporting.Report
	decode(t, w, &report)
	if report.Overview.TotalEvaluations != 1 || report.Overview.CompletedEvaluations != 1 || report.Overview.AverageScore != 8 {
		t.Errorf("overview = %+v", report.Overview)
	}
	if len(report.TopPerformers) != 1 || report.TopPerformers[0].EvaluateeID != "emp-2" {
		t.Errorf("top performers = %+v", report.TopPerformers)
	}

	w = call(t, router, hrUser, http.MethodGet, "/evaluation/reports/export?range=all", "")
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "evaluation_report_all_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex(reporting.SheetTopPerformers); idx < 0 {
		t.Error("workbook lacks the top performers sheet")
	}
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, reporting.Request) (*reporting.Report, error) {
	return nil, errors.New("read model unavailable")
}

func TestReportHandler_Errors(t *testing.T) {
	router := newTestRouter(failingGenerator{})

	expectStatus(t, call(t, router, evaluator, http.MethodGet, "/evaluation/reports", ""), http.StatusForbidden)
	expectStatus(t, call(t, router, hrUser, http.MethodGet, "/evaluation/reports?range=yearly", ""), http.StatusUnprocessableEntity)
	expectStatus(t, call(t, router, hrUser, http.MethodGet, "/evaluation/reports?top_n=0", ""), http.StatusUnprocessableEntity)

	w := call(t, router, hrUser, http.MethodGet, "/evaluation/reports", "")
	expectStatus(t, w, http.StatusInternalServerError)
	var resp ErrorResponse
	decode(t, w, &resp)
	if resp.RequestID == "" || resp.RequestID != w.Header().Get("X-Request-ID") {
		t.Errorf("request id = %q, header %q", resp.RequestID, w.Header().Get("X-Request-ID"))
	}
	if strings.Contains(resp.Message, "read model") {
		t.Error("internal error detail leaked to the client")
	}
}
