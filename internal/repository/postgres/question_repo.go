package postgres

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// QuestionRepository implements repository.QuestionRepository for PostgreSQL
type QuestionRepository struct {
	pg *database.Postgres
}

// NewQuestionRepository creates a new PostgreSQL question repository
func NewQuestionRepository(pg *database.Postgres) *QuestionRepository {
	return &QuestionRepository{pg: pg}
}

// CreateMany creates all questions of one questionnaire
func (r *QuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].PrepareCreate()
	}
	err := r.pg.DB(ctx).Create(&questions).Error
	if isUniqueViolation(err) {
		return models.ErrDuplicateQuestionOrder
	}
	if isForeignKeyViolation(err) {
		return models.ErrQuestionnaireNotFound
	}
	return err
}

// ListByQuestionnaire lists the questions of a questionnaire
func (r *QuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.pg.DB(ctx).
		Where("questionnaire_id = ?", questionnaireID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&questions).Error
	return questions, err
}

// DeleteByQuestionnaire deletes every question of a questionnaire
func (r *QuestionRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	result := r.pg.DB(ctx).Where("questionnaire_id = ?", questionnaireID).Delete(&models.Question{})
	return result.RowsAffected, result.Error
}

// Ensure QuestionRepository implements repository.QuestionRepository
var _ repository.QuestionRepository = (*QuestionRepository)(nil)
