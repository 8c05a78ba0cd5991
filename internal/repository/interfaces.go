// Package repository defines interfaces for data access and their MongoDB implementations
// #ORM_PATTERN: Repository pattern with interfaces for testability and abstraction
package repository

import (
	"context"
	"time"

	"github.com/secinto/hrms_backend/internal/models"
)

// QuestionnaireFilter contains filters for listing questionnaires
type QuestionnaireFilter struct {
	Status     *models.QuestionnaireStatus
	IsTemplate *bool
	// Search matches a case-insensitive substring of the title
	Search string
}

// AssignmentFilter contains filters for listing assignments
// #DATA_ASSUMPTION: Results are always ordered by assigned_at descending
type AssignmentFilter struct {
	Status          *models.AssignmentStatus
	QuestionnaireID string
	EvaluatorID     string
	EvaluateeID     string
	AssignedFrom    *time.Time
	AssignedTo      *time.Time
}

// Transactor opens the transactional boundary of multi-record writes
// #IMPLEMENTATION_DECISION: The transaction travels in the context passed to fn
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuestionnaireRepository defines operations for questionnaires
// #QUERY_INTERFACE: Questionnaire data access patterns
type QuestionnaireRepository interface {
	// Create creates a new questionnaire
	Create(ctx context.Context, questionnaire *models.Questionnaire) error

	// GetByID finds a questionnaire by ID
	GetByID(ctx context.Context, id string) (*models.Questionnaire, error)

	// GetByIDs finds all questionnaires with the given IDs, missing ones are skipped
	GetByIDs(ctx context.Context, ids []string) ([]models.Questionnaire, error)

	// Update updates a questionnaire
	Update(ctx context.Context, questionnaire *models.Questionnaire) error

	// Delete deletes a questionnaire
	Delete(ctx context.Context, id string) error

	// List lists questionnaires ordered by created_at descending
	List(ctx context.Context, filter QuestionnaireFilter) ([]models.Questionnaire, error)
}

// QuestionRepository defines operations for questions
// #QUERY_INTERFACE: Questions are only ever written as a whole set per questionnaire
type QuestionRepository interface {
	// CreateMany creates all questions of one questionnaire
	CreateMany(ctx context.Context, questions []models.Question) error

	// ListByQuestionnaire lists the questions of a questionnaire ordered by order
	ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error)

	// DeleteByQuestionnaire deletes every question of a questionnaire
	DeleteByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error)
}

// AssignmentRepository defines operations for evaluation assignments
// #QUERY_INTERFACE: Assignment data access patterns
type AssignmentRepository interface {
	// CreateIfAbsent inserts the assignment unless its pairing already exists.
	// Returns false without error when the pairing was already present.
	CreateIfAbsent(ctx context.Context, assignment *models.Assignment) (bool, error)

	// GetByID finds an assignment by ID
	GetByID(ctx context.Context, id string) (*models.Assignment, error)

	// Update writes the mutable fields of an assignment if it is still in status expected.
	// Returns models.StaleWriteError of the current status when another write came first.
	Update(ctx context.Context, assignment *models.Assignment, expected models.AssignmentStatus) error

	// Delete deletes an assignment
	Delete(ctx context.Context, id string) error

	// List lists assignments matching the filter ordered by assigned_at descending
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)

	// CountByQuestionnaire counts the assignments that reference a questionnaire
	CountByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error)
}

// Repositories bundles one storage backend
// #INTEGRATION_POINT: Built by the Mongo, Postgres or memory factory and handed to services
type Repositories struct {
	Questionnaires QuestionnaireRepository
	Questions      QuestionRepository
	Assignments    AssignmentRepository
	Tx             Transactor
}
