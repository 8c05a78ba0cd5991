package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// AssignmentRepository implements repository.AssignmentRepository for PostgreSQL
type AssignmentRepository struct {
	pg *database.Postgres
}

// NewAssignmentRepository creates a new PostgreSQL assignment repository
func NewAssignmentRepository(pg *database.Postgres) *AssignmentRepository {
	return &AssignmentRepository{pg: pg}
}

// CreateIfAbsent inserts the assignment unless its pairing already exists
// #IMPLEMENTATION_DECISION: ON CONFLICT DO NOTHING against idx_assignments_pairing, the
// losing side of a concurrent insert sees zero affected rows instead of an error
func (r *AssignmentRepository) CreateIfAbsent(ctx context.Context, assignment *models.Assignment) (bool, error) {
	assignment.PrepareCreate()
	result := r.pg.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "questionnaire_id"}, {Name: "evaluator_id"}, {Name: "evaluatee_id"}},
			DoNothing: true,
		}).
		Create(assignment)
	if isForeignKeyViolation(result.Error) {
		return false, models.ErrQuestionnaireNotFound
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetByID finds an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.pg.DB(ctx).Where("id = ?", id).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Update updates the mutable fields of an assignment still in status expected
// #IMPLEMENTATION_DECISION: The status guard in the WHERE clause re-evaluates after a concurrent
// writer commits, so the later of two overlapping transitions matches no row
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment, expected models.AssignmentStatus) error {
	assignment.Touch()
	result := r.pg.DB(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status = ?", assignment.ID, expected).
		Select("status", "responses", "total_score", "comments", "completed_at", "updated_at").
		Updates(assignment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleWrite(ctx, assignment.ID)
	}
	return nil
}

// staleWrite explains an update that matched no row
func (r *AssignmentRepository) staleWrite(ctx context.Context, id string) error {
	var current models.Assignment
	err := r.pg.DB(ctx).Select("status").Where("id = ?", id).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrAssignmentNotFound
	}
	if err != nil {
		return err
	}
	return models.StaleWriteError(current.Status)
}

// Delete deletes an assignment
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	result := r.pg.DB(ctx).Where("id = ?", id).Delete(&models.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAssignmentNotFound
	}
	return nil
}

// List lists assignments matching the filter
func (r *AssignmentRepository) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	query := r.pg.DB(ctx).Model(&models.Assignment{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.QuestionnaireID != "" {
		query = query.Where("questionnaire_id = ?", filter.QuestionnaireID)
	}
	if filter.EvaluatorID != "" {
		query = query.Where("evaluator_id = ?", filter.EvaluatorID)
	}
	if filter.EvaluateeID != "" {
		query = query.Where("evaluatee_id = ?", filter.EvaluateeID)
	}
	if filter.AssignedFrom != nil {
		query = query.Where("assigned_at >= ?", *filter.AssignedFrom)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_at <= ?", *filter.AssignedTo)
	}

	assignments := []models.Assignment{}
	err := query.Order("assigned_at DESC").Order("id").Find(&assignments).Error
	return assignments, err
}

// CountByQuestionnaire counts the assignments that reference a questionnaire
func (r *AssignmentRepository) CountByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	var count int64
	err := r.pg.DB(ctx).
		Model(&models.Assignment{}).
		Where("questionnaire_id = ?", questionnaireID).
		Count(&count).Error
	return count, err
}

// Ensure AssignmentRepository implements repository.AssignmentRepository
var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)
