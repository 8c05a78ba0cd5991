package models

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestQuestionnaireStatus_JSON(t *testing.T) {
	tests := []struct {
		name   string
		status QuestionnaireStatus
		json   string
	}{
		{"Draft", QuestionnaireStatusDraft, `"draft"`},
		{"Published", QuestionnaireStatusPublished, `"published"`},
		{"Archived", QuestionnaireStatusArchived, `"archived"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.status)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.json {
				t.Errorf("MarshalJSON() = %v, want %v", string(got), tt.json)
			}

			var parsed QuestionnaireStatus
			if err := json.Unmarshal([]byte(tt.json), &parsed); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if parsed != tt.status {
				t.Errorf("UnmarshalJSON() = %v, want %v", parsed, tt.status)
			}
		})
	}
}

func TestQuestionnaireStatus_IsValid(t *testing.T) {
	if !QuestionnaireStatusPublished.IsValid() {
		t.Error("PUBLISHED should be valid")
	}
	if QuestionnaireStatus("CLOSED").IsValid() {
		t.Error("CLOSED should be invalid")
	}
}

func TestQuestionnaire_PrepareCreate(t *testing.T) {
	q := &Questionnaire{Title: "Annual Review"}
	q.PrepareCreate()

	if q.ID == "" {
		t.Error("PrepareCreate() should assign an ID")
	}
	if q.Status != QuestionnaireStatusDraft {
		t.Errorf("Status = %v, want DRAFT", q.Status)
	}
	if q.CreatedAt.IsZero() || q.UpdatedAt.IsZero() {
		t.Error("PrepareCreate() should set timestamps")
	}

	published := &Questionnaire{Title: "Ready", Status: QuestionnaireStatusPublished}
	published.PrepareCreate()
	if published.Status != QuestionnaireStatusPublished {
		t.Errorf("Status = %v, want caller supplied PUBLISHED", published.Status)
	}
}

func TestQuestionnaire_Lifecycle(t *testing.T) {
	q := &Questionnaire{Title: "Quarterly", Status: QuestionnaireStatusDraft}

	if q.CanBeAssigned() {
		t.Error("draft questionnaire should not be assignable")
	}
	if !q.Publish() {
		t.Error("Publish() should change a draft questionnaire")
	}
	if !q.CanBeAssigned() {
		t.Error("published questionnaire should be assignable")
	}
	if q.Publish() {
		t.Error("Publish() on a published questionnaire should be a no-op")
	}
	if !q.Unpublish() || !q.IsDraft() {
		t.Error("Unpublish() should move back to draft")
	}
	if q.Unpublish() {
		t.Error("Unpublish() on a draft questionnaire should be a no-op")
	}
	if !q.Archive() || !q.IsArchived() {
		t.Error("Archive() should archive the questionnaire")
	}
}

func TestQuestionnaire_CopyTitle(t *testing.T) {
	q := &Questionnaire{Title: "Peer Review"}
	if got := q.CopyTitle(); got != "Peer Review (Copy)" {
		t.Errorf("CopyTitle() = %q", got)
	}

	for _, length := range []int{248, 250, MaxTitleLength} {
		long := &Questionnaire{Title: strings.Repeat("ä", length)}
		got := long.CopyTitle()
		if n := utf8.RuneCountInString(got); n > MaxTitleLength {
			t.Errorf("CopyTitle() of %d characters has %d characters", length, n)
		}
		if !strings.HasSuffix(got, " (Copy)") {
			t.Errorf("CopyTitle() = %q, want copy suffix", got)
		}
	}
}

func TestQuestionType(t *testing.T) {
	tests := []struct {
		name            string
		qt              QuestionType
		valid           bool
		numeric         bool
		requiresOptions bool
	}{
		{"rating", QuestionTypeRating, true, true, false},
		{"scale", QuestionTypeScale, true, true, false},
		{"text", QuestionTypeText, true, false, false},
		{"multiple choice", QuestionTypeMultipleChoice, true, false, true},
		{"yes no", QuestionTypeYesNo, true, false, false},
		{"unknown", QuestionType("ESSAY"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.qt.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.qt.IsNumericScored(); got != tt.numeric {
				t.Errorf("IsNumericScored() = %v, want %v", got, tt.numeric)
			}
			if got := tt.qt.RequiresOptions(); got != tt.requiresOptions {
				t.Errorf("RequiresOptions() = %v, want %v", got, tt.requiresOptions)
			}
		})
	}

	var parsed QuestionType
	if err := json.Unmarshal([]byte(`"multiple_choice"`), &parsed); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if parsed != QuestionTypeMultipleChoice {
		t.Errorf("UnmarshalJSON() = %v, want MULTIPLE_CHOICE", parsed)
	}
}

func TestQuestion_Clone(t *testing.T) {
	original := Question{
		ID:              "q-1",
		QuestionnaireID: "source",
		QuestionText:    "Pick one",
		Type:            QuestionTypeMultipleChoice,
		Order:           3,
		MinScore:        1,
		MaxScore:        5,
		IsRequired:      true,
		Options:         []string{"a", "b"},
	}

	clone := original.Clone("target")
	if clone.ID != "" {
		t.Error("Clone() should not carry the original identity")
	}
	if clone.QuestionnaireID != "target" {
		t.Errorf("QuestionnaireID = %v, want target", clone.QuestionnaireID)
	}
	if clone.Order != 3 || clone.MinScore != 1 || clone.MaxScore != 5 || clone.Type != original.Type {
		t.Errorf("Clone() = %+v, fields differ from original", clone)
	}

	clone.Options[0] = "changed"
	if original.Options[0] != "a" {
		t.Error("Clone() should deep-copy options")
	}
}
