package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/secinto/hrms_backend/internal/config"
	"github.com/secinto/hrms_backend/internal/models"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, &config.Config{DatabaseDriver: config.DriverMemory}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close(ctx)

	if s.Ping != nil {
		t.Error("memory storage should not expose a pinger")
	}
	if s.Repos.Questionnaires == nil || s.Repos.Questions == nil || s.Repos.Assignments == nil || s.Repos.Tx == nil {
		t.Fatalf("repositories not wired: %+v", s.Repos)
	}

	q := &models.Questionnaire{ID: "q-1", Title: "Review", Status: models.QuestionnaireStatusDraft}
	if err := s.Repos.Questionnaires.Create(ctx, q); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Repos.Questionnaires.GetByID(ctx, "q-1"); err != nil {
		t.Errorf("GetByID() error = %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DatabaseDriver: "sqlite"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Open() error = %v, want unsupported driver", err)
	}
}

func TestStorage_CloseWithoutBackend(t *testing.T) {
	if err := (&Storage{}).Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
