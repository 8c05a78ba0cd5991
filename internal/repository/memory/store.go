// Package memory implements the repository interfaces in process memory
// #IMPLEMENTATION_DECISION: Backs development runs without a database and the service tests
// #TECHNICAL_DEBT: Reads inside another caller's open transaction see uncommitted state
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

type txMarker struct{}

// Store holds all evaluation records of one in-memory backend
type Store struct {
	// txMu serializes writers so a rollback never discards another caller's write
	txMu sync.Mutex
	mu   sync.RWMutex

	questionnaires map[string]models.Questionnaire
	questions      map[string]models.Question
	assignments    map[string]models.Assignment
	pairings       map[string]string
}

type snapshot struct {
	questionnaires map[string]models.Questionnaire
	questions      map[string]models.Question
	assignments    map[string]models.Assignment
	pairings       map[string]string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		questionnaires: map[string]models.Questionnaire{},
		questions:      map[string]models.Question{},
		assignments:    map[string]models.Assignment{},
		pairings:       map[string]string{},
	}
}

// NewRepositories creates all evaluation repositories on a fresh store
func NewRepositories() repository.Repositories {
	return NewStore().Repositories()
}

// Repositories returns the repositories backed by this store
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Questionnaires: &QuestionnaireRepository{store: s},
		Questions:      &QuestionRepository{store: s},
		Assignments:    &AssignmentRepository{store: s},
		Tx:             s,
	}
}

// WithTransaction runs fn with every write rolled back if it fails or panics
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err = fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// write applies a single mutation, joining the caller's transaction if there is one
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTransaction(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read runs fn under the shared lock
func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func inTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(txMarker{}).(bool)
	return v
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		questionnaires: make(map[string]models.Questionnaire, len(s.questionnaires)),
		questions:      make(map[string]models.Question, len(s.questions)),
		assignments:    make(map[string]models.Assignment, len(s.assignments)),
		pairings:       make(map[string]string, len(s.pairings)),
	}
	for k, v := range s.questionnaires {
		snap.questionnaires[k] = cloneQuestionnaire(v)
	}
	for k, v := range s.questions {
		snap.questions[k] = cloneQuestion(v)
	}
	for k, v := range s.assignments {
		snap.assignments[k] = cloneAssignment(v)
	}
	for k, v := range s.pairings {
		snap.pairings[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questionnaires = snap.questionnaires
	s.questions = snap.questions
	s.assignments = snap.assignments
	s.pairings = snap.pairings
}

func pairingKey(a *models.Assignment) string {
	return a.QuestionnaireID + "\x00" + a.EvaluatorID + "\x00" + a.EvaluateeID
}

func cloneQuestionnaire(q models.Questionnaire) models.Questionnaire {
	if q.TemplateSourceID != nil {
		id := *q.TemplateSourceID
		q.TemplateSourceID = &id
	}
	if q.DueDate != nil {
		d := *q.DueDate
		q.DueDate = &d
	}
	return q
}

func cloneQuestion(q models.Question) models.Question {
	if q.Options != nil {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		q.Options = options
	}
	return q
}

func cloneAssignment(a models.Assignment) models.Assignment {
	if a.Responses != nil {
		responses := make(map[string]interface{}, len(a.Responses))
		for k, v := range a.Responses {
			responses[k] = v
		}
		a.Responses = responses
	}
	if a.TotalScore != nil {
		score := *a.TotalScore
		a.TotalScore = &score
	}
	if a.CompletedAt != nil {
		at := *a.CompletedAt
		a.CompletedAt = &at
	}
	return a
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortQuestionnaires(items []models.Questionnaire) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func sortAssignments(items []models.Assignment) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].AssignedAt.Equal(items[j].AssignedAt) {
			return items[i].AssignedAt.After(items[j].AssignedAt)
		}
		return items[i].ID < items[j].ID
	})
}
