package memory

import (
	"context"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// QuestionnaireRepository implements repository.QuestionnaireRepository in memory
type QuestionnaireRepository struct {
	store *Store
}

// Create creates a new questionnaire
func (r *QuestionnaireRepository) Create(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.PrepareCreate()
	return r.store.write(ctx, func() error {
		if _, exists := r.store.questionnaires[questionnaire.ID]; exists {
			return models.ErrAlreadyExists
		}
		r.store.questionnaires[questionnaire.ID] = cloneQuestionnaire(*questionnaire)
		return nil
	})
}

// GetByID finds a questionnaire by ID
func (r *QuestionnaireRepository) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	var (
		found models.Questionnaire
		ok    bool
	)
	r.store.read(func() {
		found, ok = r.store.questionnaires[id]
		found = cloneQuestionnaire(found)
	})
	if !ok {
		return nil, models.ErrQuestionnaireNotFound
	}
	return &found, nil
}

// GetByIDs finds all questionnaires with the given IDs
func (r *QuestionnaireRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Questionnaire, error) {
	result := []models.Questionnaire{}
	r.store.read(func() {
		seen := map[string]bool{}
		for _, id := range ids {
			if q, ok := r.store.questionnaires[id]; ok && !seen[id] {
				seen[id] = true
				result = append(result, cloneQuestionnaire(q))
			}
		}
	})
	return result, nil
}

// Update updates a questionnaire
func (r *QuestionnaireRepository) Update(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.Touch()
	return r.store.write(ctx, func() error {
		existing, ok := r.store.questionnaires[questionnaire.ID]
		if !ok {
			return models.ErrQuestionnaireNotFound
		}
		updated := cloneQuestionnaire(*questionnaire)
		updated.CreatedAt = existing.CreatedAt
		r.store.questionnaires[questionnaire.ID] = updated
		return nil
	})
}

// Delete deletes a questionnaire
// #CASCADE_STRATEGY: Mirrors the relational rules, questions and assignments go, copies are detached
func (r *QuestionnaireRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func() error {
		if _, ok := r.store.questionnaires[id]; !ok {
			return models.ErrQuestionnaireNotFound
		}
		delete(r.store.questionnaires, id)

		for qid, q := range r.store.questions {
			if q.QuestionnaireID == id {
				delete(r.store.questions, qid)
			}
		}
		for aid, a := range r.store.assignments {
			if a.QuestionnaireID == id {
				delete(r.store.pairings, pairingKey(&a))
				delete(r.store.assignments, aid)
			}
		}
		for cid, c := range r.store.questionnaires {
			if c.TemplateSourceID != nil && *c.TemplateSourceID == id {
				c.TemplateSourceID = nil
				r.store.questionnaires[cid] = c
			}
		}
		return nil
	})
}

// List lists questionnaires matching the filter
func (r *QuestionnaireRepository) List(ctx context.Context, filter repository.QuestionnaireFilter) ([]models.Questionnaire, error) {
	result := []models.Questionnaire{}
	r.store.read(func() {
		for _, q := range r.store.questionnaires {
			if filter.Status != nil && q.Status != *filter.Status {
				continue
			}
			if filter.IsTemplate != nil && q.IsTemplate != *filter.IsTemplate {
				continue
			}
			if filter.Search != "" && !containsFold(q.Title, filter.Search) {
				continue
			}
			result = append(result, cloneQuestionnaire(q))
		}
	})
	sortQuestionnaires(result)
	return result, nil
}

// Ensure QuestionnaireRepository implements repository.QuestionnaireRepository
var _ repository.QuestionnaireRepository = (*QuestionnaireRepository)(nil)
