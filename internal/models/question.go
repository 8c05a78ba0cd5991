package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// QuestionType represents the type of question
// #IMPLEMENTATION_DECISION: Rating and scale are numerically scored, the rest are free form
type QuestionType string

const (
	QuestionTypeRating         QuestionType = "RATING"
	QuestionTypeText           QuestionType = "TEXT"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeYesNo          QuestionType = "YES_NO"
	QuestionTypeScale          QuestionType = "SCALE"
)

// Question score defaults
const (
	DefaultMinScore = 0
	DefaultMaxScore = 10
)

// MarshalJSON converts QuestionType to lowercase with underscores for JSON serialization
func (qt QuestionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qt)))
}

// UnmarshalJSON converts lowercase JSON to QuestionType
func (qt *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qt = QuestionType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionType is a valid value
func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionTypeRating, QuestionTypeText, QuestionTypeMultipleChoice, QuestionTypeYesNo, QuestionTypeScale:
		return true
	}
	return false
}

// RequiresOptions returns true if this question type requires options
func (qt QuestionType) RequiresOptions() bool {
	return qt == QuestionTypeMultipleChoice
}

// IsNumericScored returns true if answers to this type are scored on the min/max range
func (qt QuestionType) IsNumericScored() bool {
	return qt == QuestionTypeRating || qt == QuestionTypeScale
}

// Question represents one item of a questionnaire
// #CARDINALITY_ASSUMPTION: Questionnaire 1:N Questions - order is unique within the parent
// #DATA_ASSUMPTION: Options are only meaningful for multiple choice questions
type Question struct {
	ID              string `bson:"_id" json:"id" gorm:"type:uuid;primaryKey"`
	QuestionnaireID string `bson:"questionnaire_id" json:"questionnaire_id" gorm:"type:uuid;not null;uniqueIndex:idx_questions_questionnaire_order,priority:1"`

	// Content
	QuestionText string `bson:"question_text" json:"question_text" gorm:"type:text;not null"`
	Description  string `bson:"description,omitempty" json:"description,omitempty" gorm:"type:text"`
	Category     string `bson:"category,omitempty" json:"category,omitempty" gorm:"size:100"`

	// Type and ordering
	Type  QuestionType `bson:"question_type" json:"question_type" gorm:"column:question_type;size:30;not null"`
	Order int          `bson:"order" json:"order" gorm:"column:order;not null;uniqueIndex:idx_questions_questionnaire_order,priority:2"`

	// Scoring
	// #DATA_ASSUMPTION: Defaults are applied by the service, a gorm default would replace false and 0 on insert
	MinScore   int  `bson:"min_score" json:"min_score" gorm:"not null"`
	MaxScore   int  `bson:"max_score" json:"max_score" gorm:"not null"`
	IsRequired bool `bson:"is_required" json:"is_required" gorm:"not null"`

	// Options for multiple choice
	Options pq.StringArray `bson:"options,omitempty" json:"options,omitempty" gorm:"type:text[]"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questions
func (Question) CollectionName() string {
	return "questions"
}

// TableName returns the PostgreSQL table name for questions
func (Question) TableName() string {
	return "questions"
}

// PrepareCreate sets default values before inserting a new question
func (q *Question) PrepareCreate() {
	now := time.Now().UTC()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Options == nil {
		q.Options = pq.StringArray{}
	}
}

// Clone returns a copy of the question for another questionnaire with a fresh identity
// #BUSINESS_RULE: Duplicates keep order, text, type and score range of the original
func (q *Question) Clone(questionnaireID string) Question {
	options := make(pq.StringArray, len(q.Options))
	copy(options, q.Options)
	return Question{
		QuestionnaireID: questionnaireID,
		QuestionText:    q.QuestionText,
		Description:     q.Description,
		Category:        q.Category,
		Type:            q.Type,
		Order:           q.Order,
		MinScore:        q.MinScore,
		MaxScore:        q.MaxScore,
		IsRequired:      q.IsRequired,
		Options:         options,
	}
}

// HasOptions returns true if the question has options
func (q *Question) HasOptions() bool {
	return len(q.Options) > 0
}
