package memory

import (
	"context"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// AssignmentRepository implements repository.AssignmentRepository in memory
type AssignmentRepository struct {
	store *Store
}

// CreateIfAbsent inserts the assignment unless its pairing already exists
func (r *AssignmentRepository) CreateIfAbsent(ctx context.Context, assignment *models.Assignment) (bool, error) {
	assignment.PrepareCreate()
	created := false
	err := r.store.write(ctx, func() error {
		if _, ok := r.store.questionnaires[assignment.QuestionnaireID]; !ok {
			return models.ErrQuestionnaireNotFound
		}
		key := pairingKey(assignment)
		if _, exists := r.store.pairings[key]; exists {
			return nil
		}
		r.store.pairings[key] = assignment.ID
		r.store.assignments[assignment.ID] = cloneAssignment(*assignment)
		created = true
		return nil
	})
	return created, err
}

// GetByID finds an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	var (
		found models.Assignment
		ok    bool
	)
	r.store.read(func() {
		found, ok = r.store.assignments[id]
		found = cloneAssignment(found)
	})
	if !ok {
		return nil, models.ErrAssignmentNotFound
	}
	return &found, nil
}

// Update updates the mutable fields of an assignment still in status expected
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment, expected models.AssignmentStatus) error {
	assignment.Touch()
	return r.store.write(ctx, func() error {
		existing, ok := r.store.assignments[assignment.ID]
		if !ok {
			return models.ErrAssignmentNotFound
		}
		if existing.Status != expected {
			return models.StaleWriteError(existing.Status)
		}
		next := cloneAssignment(*assignment)
		existing.Status = next.Status
		existing.Responses = next.Responses
		existing.TotalScore = next.TotalScore
		existing.Comments = next.Comments
		existing.CompletedAt = next.CompletedAt
		existing.UpdatedAt = next.UpdatedAt
		r.store.assignments[assignment.ID] = existing
		return nil
	})
}

// Delete deletes an assignment
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func() error {
		existing, ok := r.store.assignments[id]
		if !ok {
			return models.ErrAssignmentNotFound
		}
		delete(r.store.pairings, pairingKey(&existing))
		delete(r.store.assignments, id)
		return nil
	})
}

// List lists assignments matching the filter
func (r *AssignmentRepository) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	result := []models.Assignment{}
	r.store.read(func() {
		for _, a := range r.store.assignments {
			if filter.Status != nil && a.Status != *filter.Status {
				continue
			}
			if filter.QuestionnaireID != "" && a.QuestionnaireID != filter.QuestionnaireID {
				continue
			}
			if filter.EvaluatorID != "" && a.EvaluatorID != filter.EvaluatorID {
				continue
			}
			if filter.EvaluateeID != "" && a.EvaluateeID != filter.EvaluateeID {
				continue
			}
			if !inRange(a.AssignedAt, filter.AssignedFrom, filter.AssignedTo) {
				continue
			}
			result = append(result, cloneAssignment(a))
		}
	})
	sortAssignments(result)
	return result, nil
}

// CountByQuestionnaire counts the assignments that reference a questionnaire
func (r *AssignmentRepository) CountByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	var count int64
	r.store.read(func() {
		for _, a := range r.store.assignments {
			if a.QuestionnaireID == questionnaireID {
				count++
			}
		}
	})
	return count, nil
}

// Ensure AssignmentRepository implements repository.AssignmentRepository
var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)
