package services

import (
	"context"
	"errors"
	"testing"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
	"github.com/secinto/hrms_backend/internal/repository/memory"
)

var (
	adminActor = models.NewActor("admin-1", "admin")
	hrActor    = models.NewActor("hr-1", "hr")
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func validQuestionnaireInput() QuestionnaireInput {
	return QuestionnaireInput{
		Title:            "Annual Review",
		Description:      "Yearly performance review",
		EvaluationPeriod: "2026",
		Questions: []QuestionInput{
			{QuestionText: "Quality of work", Type: models.QuestionTypeRating, MinScore: intPtr(1), MaxScore: intPtr(5)},
			{QuestionText: "Strengths", Type: models.QuestionTypeText, IsRequired: boolPtr(false)},
			{QuestionText: "Preferred team", Type: models.QuestionTypeMultipleChoice, Options: []string{"Backend", " ", "Frontend"}},
		},
	}
}

// failingQuestionRepo fails every write after delegating reads
type failingQuestionRepo struct {
	repository.QuestionRepository
	err error
}

func (r *failingQuestionRepo) CreateMany(ctx context.Context, questions []models.Question) error {
	return r.err
}

func newQuestionnaireService(t *testing.T) (QuestionnaireService, repository.Repositories) {
	t.Helper()
	repos := memory.NewRepositories()
	return NewQuestionnaireService(repos, nil), repos
}

func createQuestionnaire(t *testing.T, svc QuestionnaireService, input QuestionnaireInput) *QuestionnaireDetail {
	t.Helper()
	detail, err := svc.Create(context.Background(), adminActor, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return detail
}

func TestQuestionnaireCreate_OrdersQuestions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionnaireService(t)

	detail := createQuestionnaire(t, svc, validQuestionnaireInput())

	if detail.Status != models.QuestionnaireStatusDraft {
		t.Errorf("Status = %v, want DRAFT", detail.Status)
	}
	if detail.CreatedBy != adminActor.UserID {
		t.Errorf("CreatedBy = %q, want %q", detail.CreatedBy, adminActor.UserID)
	}

	loaded, err := svc.Get(ctx, detail.ID, QuestionnaireInclude{Questions: true})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(loaded.Questions) != 3 {
		t.Fatalf("len(Questions) = %d, want 3", len(loaded.Questions))
	}
	wantTexts := []string{"Quality of work", "Strengths", "Preferred team"}
	for i, q := range loaded.Questions {
		if q.Order != i+1 {
			t.Errorf("Questions[%d].Order = %d, want %d", i, q.Order, i+1)
		}
		if q.QuestionText != wantTexts[i] {
			t.Errorf("Questions[%d].QuestionText = %q, want %q", i, q.QuestionText, wantTexts[i])
		}
	}

	text := loaded.Questions[1]
	if text.MinScore != models.DefaultMinScore || text.MaxScore != models.DefaultMaxScore {
		t.Errorf("default range = %d..%d, want %d..%d", text.MinScore, text.MaxScore, models.DefaultMinScore, models.DefaultMaxScore)
	}
	if text.IsRequired {
		t.Error("explicit is_required=false should be kept")
	}
	if !loaded.Questions[0].IsRequired {
		t.Error("is_required should default to true")
	}
	if got := loaded.Questions[2].Options; len(got) != 2 || got[0] != "Backend" || got[1] != "Frontend" {
		t.Errorf("Options = %v, want [Backend Frontend]", got)
	}
}

func TestQuestionnaireCreate_KeepsSuppliedStatus(t *testing.T) {
	svc, _ := newQuestionnaireService(t)
	input := validQuestionnaireInput()
	input.Status = models.QuestionnaireStatusPublished

	detail := createQuestionnaire(t, svc, input)
	if detail.Status != models.QuestionnaireStatusPublished {
		t.Errorf("Status = %v, want PUBLISHED", detail.Status)
	}
}

func TestQuestionnaireCreate_Validation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *QuestionnaireInput)
		wantFields []string
	}{
		{
			name:       "blank title",
			mutate:     func(in *QuestionnaireInput) { in.Title = "   " },
			wantFields: []string{"title"},
		},
		{
			name:       "no questions",
			mutate:     func(in *QuestionnaireInput) { in.Questions = nil },
			wantFields: []string{"questions"},
		},
		{
			name: "unknown kind",
			mutate: func(in *QuestionnaireInput) {
				in.Questions[0].Type = models.QuestionType("SLIDER")
			},
			wantFields: []string{"questions[0].question_type"},
		},
		{
			name: "inverted range",
			mutate: func(in *QuestionnaireInput) {
				in.Questions[0].MinScore = intPtr(5)
				in.Questions[0].MaxScore = intPtr(5)
			},
			wantFields: []string{"questions[0].max_score"},
		},
		{
			name: "multiple choice without options",
			mutate: func(in *QuestionnaireInput) {
				in.Questions[2].Options = []string{"", "  "}
			},
			wantFields: []string{"questions[2].options"},
		},
		{
			name: "every offending field reported",
			mutate: func(in *QuestionnaireInput) {
				in.Title = ""
				in.Questions[1].QuestionText = ""
				in.Questions[0].MinScore = intPtr(-1)
				in.Status = models.QuestionnaireStatus("LIVE")
			},
			wantFields: []string{"title", "questions[1].question_text", "questions[0].min_score", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repos := newQuestionnaireService(t)
			input := validQuestionnaireInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), adminActor, input)
			if !models.IsValidationError(err) {
				t.Fatalf("Create() error = %v, want validation error", err)
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			got := map[string]bool{}
			for _, f := range verr.Fields {
				got[f.Field] = true
			}
			for _, field := range tt.wantFields {
				if !got[field] {
					t.Errorf("missing field %q in %v", field, verr.Fields)
				}
			}

			list, _ := repos.Questionnaires.List(context.Background(), repository.QuestionnaireFilter{})
			if len(list) != 0 {
				t.Errorf("rejected input wrote %d questionnaires", len(list))
			}
		})
	}
}

func TestQuestionnaireCreate_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	cause := errors.New("disk full")
	repos.Questions = &failingQuestionRepo{QuestionRepository: repos.Questions, err: cause}
	svc := NewQuestionnaireService(repos, nil)

	_, err := svc.Create(ctx, adminActor, validQuestionnaireInput())
	if !models.IsInternalError(err) {
		t.Fatalf("Create() error = %v, want internal error", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("internal error should carry its cause, got %v", err)
	}

	list, _ := repos.Questionnaires.List(ctx, repository.QuestionnaireFilter{})
	if len(list) != 0 {
		t.Errorf("List() = %d questionnaires, want 0 after rollback", len(list))
	}
}

func TestQuestionnaireUpdate_SwapsQuestions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionnaireService(t)
	input := validQuestionnaireInput()
	input.IsTemplate = true
	created := createQuestionnaire(t, svc, input)
	oldIDs := map[string]bool{}
	for _, q := range created.Questions {
		oldIDs[q.ID] = true
	}

	update := QuestionnaireInput{
		Title:      "Annual Review v2",
		IsTemplate: false,
		Questions: []QuestionInput{
			{QuestionText: "Communication", Type: models.QuestionTypeScale},
		},
	}
	updated, err := svc.Update(ctx, hrActor, created.ID, update)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Annual Review v2" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Status != models.QuestionnaireStatusDraft {
		t.Errorf("empty status should keep DRAFT, got %v", updated.Status)
	}
	if !updated.IsTemplate {
		t.Error("update must not change is_template")
	}
	if updated.CreatedBy != adminActor.UserID {
		t.Errorf("CreatedBy = %q, update must not change it", updated.CreatedBy)
	}

	loaded, _ := svc.Get(ctx, created.ID, QuestionnaireInclude{Questions: true})
	if len(loaded.Questions) != 1 || loaded.Questions[0].Order != 1 {
		t.Fatalf("Questions = %+v, want one question at order 1", loaded.Questions)
	}
	if oldIDs[loaded.Questions[0].ID] {
		t.Error("question set should be replaced with fresh identities")
	}
}

func TestQuestionnaireUpdate_NotFound(t *testing.T) {
	svc, _ := newQuestionnaireService(t)
	_, err := svc.Update(context.Background(), adminActor, "missing", validQuestionnaireInput())
	if !models.IsNotFoundError(err) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestQuestionnaireLifecycle_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionnaireService(t)
	created := createQuestionnaire(t, svc, validQuestionnaireInput())

	first, err := svc.Publish(ctx, created.ID)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	second, err := svc.Publish(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}
	if second.Status != models.QuestionnaireStatusPublished {
		t.Errorf("Status = %v, want PUBLISHED", second.Status)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("publishing twice should not write again")
	}

	unpublished, err := svc.Unpublish(ctx, created.ID)
	if err != nil || unpublished.Status != models.QuestionnaireStatusDraft {
		t.Errorf("Unpublish() = %v, %v; want DRAFT", unpublished, err)
	}
	archived, err := svc.Archive(ctx, created.ID)
	if err != nil || archived.Status != models.QuestionnaireStatusArchived {
		t.Errorf("Archive() = %v, %v; want ARCHIVED", archived, err)
	}

	if _, err := svc.Publish(ctx, "missing"); !models.IsNotFoundError(err) {
		t.Errorf("Publish(missing) error = %v, want not found", err)
	}
}

func TestQuestionnaireDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionnaireService(t)
	input := validQuestionnaireInput()
	input.Status = models.QuestionnaireStatusPublished
	input.IsTemplate = true
	original := createQuestionnaire(t, svc, input)

	dup, err := svc.Duplicate(ctx, hrActor, original.ID)
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if dup.ID == original.ID {
		t.Fatal("duplicate must have a new identity")
	}
	if dup.Title != "Annual Review (Copy)" {
		t.Errorf("Title = %q", dup.Title)
	}
	if dup.Status != models.QuestionnaireStatusDraft {
		t.Errorf("Status = %v, want DRAFT", dup.Status)
	}
	if dup.TemplateSourceID == nil || *dup.TemplateSourceID != original.ID {
		t.Errorf("TemplateSourceID = %v, want %s", dup.TemplateSourceID, original.ID)
	}
	if dup.CreatedBy != hrActor.UserID {
		t.Errorf("CreatedBy = %q, want acting user", dup.CreatedBy)
	}
	if !dup.IsTemplate {
		t.Error("duplicate should keep is_template")
	}

	copied, _ := svc.Get(ctx, dup.ID, QuestionnaireInclude{Questions: true})
	if len(copied.Questions) != len(original.Questions) {
		t.Fatalf("copied %d questions, want %d", len(copied.Questions), len(original.Questions))
	}
	for i, q := range copied.Questions {
		o := original.Questions[i]
		if q.QuestionText != o.QuestionText || q.Type != o.Type || q.MinScore != o.MinScore || q.MaxScore != o.MaxScore {
			t.Errorf("Questions[%d] = %+v, want copy of %+v", i, q, o)
		}
		if q.ID == o.ID {
			t.Errorf("Questions[%d] shares its identity with the original", i)
		}
	}
}

func TestQuestionnaireDelete(t *testing.T) {
	ctx := context.Background()
	svc, repos := newQuestionnaireService(t)
	created := createQuestionnaire(t, svc, validQuestionnaireInput())

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, created.ID, QuestionnaireInclude{}); !models.IsNotFoundError(err) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
	questions, _ := repos.Questions.ListByQuestionnaire(ctx, created.ID)
	if len(questions) != 0 {
		t.Errorf("%d questions left after delete", len(questions))
	}

	if err := svc.Delete(ctx, created.ID); !models.IsNotFoundError(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestQuestionnaireDelete_WithAssignments(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewQuestionnaireService(repos, nil)
	assignments := NewAssignmentService(repos, nil)

	input := validQuestionnaireInput()
	input.Status = models.QuestionnaireStatusPublished
	created := createQuestionnaire(t, svc, input)
	if _, err := assignments.Assign(ctx, adminActor, created.ID, []Pair{{EvaluatorID: "u1", EvaluateeID: "u2"}}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	err := svc.Delete(ctx, created.ID)
	if !models.IsConflictError(err) {
		t.Fatalf("Delete() error = %v, want conflict", err)
	}
	if !errors.Is(err, models.ErrQuestionnaireHasAssignments) {
		t.Errorf("Delete() error = %v, want ErrQuestionnaireHasAssignments", err)
	}
	questions, _ := repos.Questions.ListByQuestionnaire(ctx, created.ID)
	if len(questions) != 3 {
		t.Errorf("rejected delete removed questions, %d left", len(questions))
	}
}

func TestQuestionnaireList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionnaireService(t)

	tmpl := validQuestionnaireInput()
	tmpl.Title = "Probation template"
	tmpl.IsTemplate = true
	createQuestionnaire(t, svc, tmpl)
	createQuestionnaire(t, svc, validQuestionnaireInput())

	templates, err := svc.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(templates) != 1 || templates[0].Title != "Probation template" {
		t.Fatalf("ListTemplates() = %+v, want the probation template", templates)
	}
	if len(templates[0].Questions) != 3 {
		t.Errorf("templates should include questions, got %d", len(templates[0].Questions))
	}

	found, err := svc.List(ctx, repository.QuestionnaireFilter{Search: "ANNUAL"}, QuestionnaireInclude{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(found) != 1 || found[0].Title != "Annual Review" {
		t.Errorf("List(search) = %+v", found)
	}
	if found[0].Questions != nil {
		t.Error("questions should only load when included")
	}

	draft := models.QuestionnaireStatusArchived
	none, err := svc.List(ctx, repository.QuestionnaireFilter{Status: &draft}, QuestionnaireInclude{})
	if err != nil || len(none) != 0 {
		t.Errorf("List(archived) = %v, %v; want empty", none, err)
	}
}
