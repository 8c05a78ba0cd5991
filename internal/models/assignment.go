package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssignmentStatus represents the lifecycle state of an evaluation assignment
// #IMPLEMENTATION_DECISION: PENDING -> IN_PROGRESS -> COMPLETED, CANCELLED set administratively
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "PENDING"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled  AssignmentStatus = "CANCELLED"
)

// MarshalJSON converts AssignmentStatus to lowercase for JSON serialization
func (as AssignmentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(as)))
}

// UnmarshalJSON converts lowercase JSON to AssignmentStatus
func (as *AssignmentStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*as = AssignmentStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the AssignmentStatus is a valid value
func (as AssignmentStatus) IsValid() bool {
	switch as {
	case AssignmentStatusPending, AssignmentStatusInProgress, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for states with no outgoing transition
func (as AssignmentStatus) IsTerminal() bool {
	return as == AssignmentStatusCompleted || as == AssignmentStatusCancelled
}

// IsAdminSettable returns true for the states the administrative override may set
func (as AssignmentStatus) IsAdminSettable() bool {
	return as == AssignmentStatusInProgress || as == AssignmentStatusCompleted || as == AssignmentStatusCancelled
}

// Assignment links a questionnaire to one evaluator/evaluatee pairing
// #DATA_ASSUMPTION: (questionnaire_id, evaluator_id, evaluatee_id) is unique, enforced by the store
// #DATA_ASSUMPTION: Responses map question id to a numeric score or free text
type Assignment struct {
	ID              string `bson:"_id" json:"id" gorm:"type:uuid;primaryKey"`
	QuestionnaireID string `bson:"questionnaire_id" json:"questionnaire_id" gorm:"type:uuid;not null;uniqueIndex:idx_assignments_pairing,priority:1"`
	EvaluatorID     string `bson:"evaluator_id" json:"evaluator_id" gorm:"size:64;not null;uniqueIndex:idx_assignments_pairing,priority:2;index:idx_assignments_evaluator_status,priority:1"`
	EvaluateeID     string `bson:"evaluatee_id" json:"evaluatee_id" gorm:"size:64;not null;uniqueIndex:idx_assignments_pairing,priority:3"`
	AssignedBy      string `bson:"assigned_by" json:"assigned_by" gorm:"size:64"`

	Status     AssignmentStatus  `bson:"status" json:"status" gorm:"size:20;not null;index:idx_assignments_evaluator_status,priority:2"`
	Responses  datatypes.JSONMap `bson:"responses,omitempty" json:"responses,omitempty" gorm:"type:jsonb"`
	TotalScore *float64          `bson:"total_score,omitempty" json:"total_score,omitempty" gorm:"type:numeric(7,2)"`
	Comments   string            `bson:"comments,omitempty" json:"comments,omitempty" gorm:"type:text"`

	AssignedAt  time.Time  `bson:"assigned_at" json:"assigned_at" gorm:"not null;index:idx_assignments_assigned_at,sort:desc"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for assignments
func (Assignment) CollectionName() string {
	return "evaluation_assignments"
}

// TableName returns the PostgreSQL table name for assignments
func (Assignment) TableName() string {
	return "evaluation_assignments"
}

// PrepareCreate sets default values before inserting a new assignment
func (a *Assignment) PrepareCreate() {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = now
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = AssignmentStatusPending
	}
}

// Touch sets the UpdatedAt timestamp
func (a *Assignment) Touch() {
	a.UpdatedAt = time.Now().UTC()
}

// StaleWriteError returns the error of a write that expected another status than current
// #BUSINESS_RULE: Losing a race against a terminal transition reports the terminal state
func StaleWriteError(current AssignmentStatus) error {
	if current.IsTerminal() {
		return ErrAssignmentTerminal
	}
	return ErrAssignmentStateChanged
}

// IsAssignedTo returns true if the user is this assignment's evaluator
func (a *Assignment) IsAssignedTo(userID string) bool {
	return userID != "" && a.EvaluatorID == userID
}

// IsSelfEvaluation returns true if evaluator and evaluatee are the same identity
func (a *Assignment) IsSelfEvaluation() bool {
	return a.EvaluatorID == a.EvaluateeID
}

// IsCompleted returns true if the assignment has been submitted
func (a *Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// CanBeDeleted returns true unless the assignment has been completed
func (a *Assignment) CanBeDeleted() bool {
	return !a.IsCompleted()
}

// Start moves a pending assignment to in progress
func (a *Assignment) Start() error {
	if a.Status != AssignmentStatusPending {
		return ErrAssignmentNotPending
	}
	a.Status = AssignmentStatusInProgress
	a.Touch()
	return nil
}

// SaveDraft overwrites responses and comments and keeps the assignment in progress
// #BUSINESS_RULE: Draft saves never touch the total score
func (a *Assignment) SaveDraft(responses datatypes.JSONMap, comments string) error {
	if a.Status.IsTerminal() {
		return ErrAssignmentTerminal
	}
	a.Responses = responses
	a.Comments = comments
	a.Status = AssignmentStatusInProgress
	a.Touch()
	return nil
}

// Submit completes the assignment with its final responses and score
func (a *Assignment) Submit(responses datatypes.JSONMap, comments string, score float64) error {
	if a.Status.IsTerminal() {
		return ErrAssignmentTerminal
	}
	now := time.Now().UTC()
	a.Responses = responses
	a.Comments = comments
	a.TotalScore = &score
	a.Status = AssignmentStatusCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	return nil
}

// Override applies an administrative update
// #BUSINESS_RULE: completed_at is stamped only when the target status is completed
func (a *Assignment) Override(responses datatypes.JSONMap, totalScore *float64, comments string, status AssignmentStatus) error {
	if a.Status.IsTerminal() {
		return ErrAssignmentTerminal
	}
	if !status.IsAdminSettable() {
		return ErrInvalidAssignmentState
	}
	now := time.Now().UTC()
	a.Responses = responses
	a.TotalScore = totalScore
	a.Comments = comments
	a.Status = status
	if status == AssignmentStatusCompleted {
		a.CompletedAt = &now
	} else {
		a.CompletedAt = nil
	}
	a.UpdatedAt = now
	return nil
}
