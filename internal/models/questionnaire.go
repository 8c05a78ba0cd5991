package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionnaireStatus represents the status of a questionnaire
// #IMPLEMENTATION_DECISION: DRAFT <-> PUBLISHED, either may move to ARCHIVED
type QuestionnaireStatus string

const (
	QuestionnaireStatusDraft     QuestionnaireStatus = "DRAFT"
	QuestionnaireStatusPublished QuestionnaireStatus = "PUBLISHED"
	QuestionnaireStatusArchived  QuestionnaireStatus = "ARCHIVED"
)

// MarshalJSON converts QuestionnaireStatus to lowercase for JSON serialization
func (qs QuestionnaireStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qs)))
}

// UnmarshalJSON converts lowercase JSON to QuestionnaireStatus
func (qs *QuestionnaireStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qs = QuestionnaireStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionnaireStatus is a valid value
func (qs QuestionnaireStatus) IsValid() bool {
	switch qs {
	case QuestionnaireStatusDraft, QuestionnaireStatusPublished, QuestionnaireStatusArchived:
		return true
	}
	return false
}

// Questionnaire represents an evaluation form definition
// #CARDINALITY_ASSUMPTION: Questionnaire 1:N Questions - questions are owned and cascade-deleted
// #CARDINALITY_ASSUMPTION: Questionnaire 1:N Assignments - assignments reference but do not own it
// #DATA_ASSUMPTION: CreatedBy references the external identity system, never resolved here
type Questionnaire struct {
	ID               string              `bson:"_id" json:"id" gorm:"type:uuid;primaryKey"`
	Title            string              `bson:"title" json:"title" gorm:"size:255;not null"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty" gorm:"type:text"`
	Status           QuestionnaireStatus `bson:"status" json:"status" gorm:"size:20;not null;index:idx_questionnaires_status_template,priority:1"`
	IsTemplate       bool                `bson:"is_template" json:"is_template" gorm:"not null;default:false;index:idx_questionnaires_status_template,priority:2"`
	TemplateSourceID *string             `bson:"template_source_id,omitempty" json:"template_source_id,omitempty" gorm:"type:uuid;index"`
	EvaluationPeriod string              `bson:"evaluation_period,omitempty" json:"evaluation_period,omitempty" gorm:"size:100"`
	DueDate          *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Instructions     string              `bson:"instructions,omitempty" json:"instructions,omitempty" gorm:"type:text"`
	CreatedBy        string              `bson:"created_by" json:"created_by" gorm:"size:64;index"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questionnaires
func (Questionnaire) CollectionName() string {
	return "questionnaires"
}

// TableName returns the PostgreSQL table name for questionnaires
func (Questionnaire) TableName() string {
	return "questionnaires"
}

// PrepareCreate sets default values before inserting a new questionnaire
func (q *Questionnaire) PrepareCreate() {
	now := time.Now().UTC()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = QuestionnaireStatusDraft
	}
}

// Touch sets the UpdatedAt timestamp
func (q *Questionnaire) Touch() {
	q.UpdatedAt = time.Now().UTC()
}

// Publish marks the questionnaire as published
// #BUSINESS_RULE: Publishing an already published questionnaire is a no-op
func (q *Questionnaire) Publish() bool {
	if q.Status == QuestionnaireStatusPublished {
		return false
	}
	q.Status = QuestionnaireStatusPublished
	q.Touch()
	return true
}

// Unpublish moves the questionnaire back to draft, blocking new assignments
func (q *Questionnaire) Unpublish() bool {
	if q.Status == QuestionnaireStatusDraft {
		return false
	}
	q.Status = QuestionnaireStatusDraft
	q.Touch()
	return true
}

// Archive marks the questionnaire as archived
func (q *Questionnaire) Archive() bool {
	if q.Status == QuestionnaireStatusArchived {
		return false
	}
	q.Status = QuestionnaireStatusArchived
	q.Touch()
	return true
}

// IsDraft returns true if the questionnaire is in draft status
func (q *Questionnaire) IsDraft() bool {
	return q.Status == QuestionnaireStatusDraft
}

// IsPublished returns true if the questionnaire is published
func (q *Questionnaire) IsPublished() bool {
	return q.Status == QuestionnaireStatusPublished
}

// IsArchived returns true if the questionnaire is archived
func (q *Questionnaire) IsArchived() bool {
	return q.Status == QuestionnaireStatusArchived
}

// CanBeAssigned returns true if the questionnaire can receive new assignments
func (q *Questionnaire) CanBeAssigned() bool {
	return q.IsPublished()
}

// IsCopy returns true if this questionnaire was duplicated from another one
func (q *Questionnaire) IsCopy() bool {
	return q.TemplateSourceID != nil
}

// MaxTitleLength is the title column size in characters
const MaxTitleLength = 255

const copySuffix = " (Copy)"

// CopyTitle returns the title used for a duplicate of this questionnaire
// #DATA_ASSUMPTION: The base title is cut so the suffixed title still fits the column
func (q *Questionnaire) CopyTitle() string {
	base := []rune(q.Title)
	if limit := MaxTitleLength - len(copySuffix); len(base) > limit {
		base = []rune(strings.TrimSpace(string(base[:limit])))
	}
	return string(base) + copySuffix
}
