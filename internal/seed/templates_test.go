package seed

import (
	"context"
	"testing"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository/memory"
	"github.com/secinto/hrms_backend/internal/services"
)

func TestSystemTemplatesAreValid(t *testing.T) {
	for _, input := range SystemTemplates() {
		input := input
		if err := input.Validate(); err != nil {
			t.Errorf("template %q invalid: %v", input.Title, err)
		}
		if !input.IsTemplate {
			t.Errorf("template %q not flagged as template", input.Title)
		}
	}
}

func TestSeeder_SeedTemplates(t *testing.T) {
	ctx := context.Background()
	questionnaires := services.NewQuestionnaireService(memory.NewRepositories(), nil)
	seeder := NewSeeder(questionnaires, nil)

	result, err := seeder.SeedTemplates(ctx)
	if err != nil {
		t.Fatalf("SeedTemplates() error = %v", err)
	}
	if len(result.Created) != len(SystemTemplates()) || len(result.Skipped) != 0 {
		t.Fatalf("first run = %+v", result)
	}

	templates, err := questionnaires.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(templates) != len(SystemTemplates()) {
		t.Fatalf("templates = %d, want %d", len(templates), len(SystemTemplates()))
	}
	for _, tmpl := range templates {
		if tmpl.CreatedBy != SystemUserID {
			t.Errorf("%q created_by = %q", tmpl.Title, tmpl.CreatedBy)
		}
		if tmpl.Status != models.QuestionnaireStatusPublished {
			t.Errorf("%q status = %s", tmpl.Title, tmpl.Status)
		}
		if len(tmpl.Questions) == 0 {
			t.Errorf("%q has no questions", tmpl.Title)
		}
	}

	again, err := seeder.SeedTemplates(ctx)
	if err != nil {
		t.Fatalf("second SeedTemplates() error = %v", err)
	}
	if len(again.Created) != 0 || len(again.Skipped) != len(SystemTemplates()) {
		t.Errorf("second run = %+v", again)
	}
}
