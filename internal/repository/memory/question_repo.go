package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// QuestionRepository implements repository.QuestionRepository in memory
type QuestionRepository struct {
	store *Store
}

// CreateMany creates all questions of one questionnaire
func (r *QuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	for i := range questions {
		questions[i].PrepareCreate()
	}
	return r.store.write(ctx, func() error {
		used := map[string]bool{}
		for _, q := range r.store.questions {
			used[orderKey(q.QuestionnaireID, q.Order)] = true
		}
		for _, q := range questions {
			if _, ok := r.store.questionnaires[q.QuestionnaireID]; !ok {
				return models.ErrQuestionnaireNotFound
			}
			key := orderKey(q.QuestionnaireID, q.Order)
			if used[key] {
				return models.ErrDuplicateQuestionOrder
			}
			used[key] = true
		}
		for _, q := range questions {
			r.store.questions[q.ID] = cloneQuestion(q)
		}
		return nil
	})
}

// ListByQuestionnaire lists the questions of a questionnaire
func (r *QuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error) {
	result := []models.Question{}
	r.store.read(func() {
		for _, q := range r.store.questions {
			if q.QuestionnaireID == questionnaireID {
				result = append(result, cloneQuestion(q))
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

// DeleteByQuestionnaire deletes every question of a questionnaire
func (r *QuestionRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	var deleted int64
	err := r.store.write(ctx, func() error {
		for id, q := range r.store.questions {
			if q.QuestionnaireID == questionnaireID {
				delete(r.store.questions, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func orderKey(questionnaireID string, order int) string {
	return questionnaireID + "\x00" + strconv.Itoa(order)
}

// Ensure QuestionRepository implements repository.QuestionRepository
var _ repository.QuestionRepository = (*QuestionRepository)(nil)
