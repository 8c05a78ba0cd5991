package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// QuestionnaireRepository implements repository.QuestionnaireRepository for PostgreSQL
type QuestionnaireRepository struct {
	pg *database.Postgres
}

// NewQuestionnaireRepository creates a new PostgreSQL questionnaire repository
func NewQuestionnaireRepository(pg *database.Postgres) *QuestionnaireRepository {
	return &QuestionnaireRepository{pg: pg}
}

// Create creates a new questionnaire
func (r *QuestionnaireRepository) Create(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.PrepareCreate()
	err := r.pg.DB(ctx).Create(questionnaire).Error
	if isUniqueViolation(err) {
		return models.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return models.ErrQuestionnaireNotFound
	}
	return err
}

// GetByID finds a questionnaire by ID
func (r *QuestionnaireRepository) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	err := r.pg.DB(ctx).Where("id = ?", id).First(&questionnaire).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

// GetByIDs finds all questionnaires with the given IDs
func (r *QuestionnaireRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Questionnaire, error) {
	questionnaires := []models.Questionnaire{}
	if len(ids) == 0 {
		return questionnaires, nil
	}
	err := r.pg.DB(ctx).Where("id IN ?", ids).Find(&questionnaires).Error
	return questionnaires, err
}

// Update updates a questionnaire
func (r *QuestionnaireRepository) Update(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.Touch()
	result := r.pg.DB(ctx).
		Model(&models.Questionnaire{}).
		Where("id = ?", questionnaire.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(questionnaire)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}

// Delete deletes a questionnaire
// #CASCADE_STRATEGY: Foreign keys remove questions and clear copies' template_source_id
func (r *QuestionnaireRepository) Delete(ctx context.Context, id string) error {
	result := r.pg.DB(ctx).Where("id = ?", id).Delete(&models.Questionnaire{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}

// List lists questionnaires matching the filter
func (r *QuestionnaireRepository) List(ctx context.Context, filter repository.QuestionnaireFilter) ([]models.Questionnaire, error) {
	query := r.pg.DB(ctx).Model(&models.Questionnaire{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsTemplate != nil {
		query = query.Where("is_template = ?", *filter.IsTemplate)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}

	questionnaires := []models.Questionnaire{}
	err := query.Order("created_at DESC").Find(&questionnaires).Error
	return questionnaires, err
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ensure QuestionnaireRepository implements repository.QuestionnaireRepository
var _ repository.QuestionnaireRepository = (*QuestionnaireRepository)(nil)
