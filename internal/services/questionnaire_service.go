// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// QuestionnaireService handles questionnaire business logic
// #INTEGRATION_POINT: Used by questionnaire handler and the template seeder
type QuestionnaireService interface {
	// Create creates a questionnaire together with its ordered questions
	Create(ctx context.Context, actor models.Actor, input QuestionnaireInput) (*QuestionnaireDetail, error)

	// Update replaces definition and question set of a questionnaire
	Update(ctx context.Context, actor models.Actor, id string, input QuestionnaireInput) (*QuestionnaireDetail, error)

	// Get retrieves a questionnaire with the requested relations loaded
	Get(ctx context.Context, id string, include QuestionnaireInclude) (*QuestionnaireDetail, error)

	// List lists questionnaires ordered by creation time, newest first
	List(ctx context.Context, filter repository.QuestionnaireFilter, include QuestionnaireInclude) ([]QuestionnaireDetail, error)

	// ListTemplates lists template questionnaires with their questions
	ListTemplates(ctx context.Context) ([]QuestionnaireDetail, error)

	// Publish makes a questionnaire assignable
	Publish(ctx context.Context, id string) (*models.Questionnaire, error)

	// Unpublish moves a questionnaire back to draft
	Unpublish(ctx context.Context, id string) (*models.Questionnaire, error)

	// Archive retires a questionnaire
	Archive(ctx context.Context, id string) (*models.Questionnaire, error)

	// Duplicate copies a questionnaire and its questions into a new draft
	Duplicate(ctx context.Context, actor models.Actor, id string) (*QuestionnaireDetail, error)

	// Delete removes a questionnaire that has never been assigned
	Delete(ctx context.Context, id string) error
}

// QuestionnaireInput is the writable definition of a questionnaire
// #IMPLEMENTATION_DECISION: Only fields listed here ever reach storage, see toModel
type QuestionnaireInput struct {
	Title            string                     `json:"title" validate:"required,max=255"`
	Description      string                     `json:"description"`
	Status           models.QuestionnaireStatus `json:"status"`
	IsTemplate       bool                       `json:"is_template"`
	EvaluationPeriod string                     `json:"evaluation_period" validate:"max=100"`
	DueDate          *time.Time                 `json:"due_date"`
	Instructions     string                     `json:"instructions"`
	Questions        []QuestionInput            `json:"questions" validate:"required,min=1,dive"`
}

// QuestionInput is the writable definition of one question
// Omitted scores default to 0..10 and omitted is_required defaults to true.
type QuestionInput struct {
	QuestionText string              `json:"question_text" validate:"required"`
	Description  string              `json:"description"`
	Category     string              `json:"category" validate:"max=100"`
	Type         models.QuestionType `json:"question_type" validate:"required"`
	MinScore     *int                `json:"min_score" validate:"omitempty,min=0"`
	MaxScore     *int                `json:"max_score" validate:"omitempty,min=1"`
	IsRequired   *bool               `json:"is_required"`
	Options      []string            `json:"options"`
}

// QuestionnaireInclude selects the relations loaded with a questionnaire
type QuestionnaireInclude struct {
	Questions   bool
	Assignments bool
}

// QuestionnaireDetail is a questionnaire with its explicitly loaded relations
type QuestionnaireDetail struct {
	models.Questionnaire
	Questions   []models.Question   `json:"questions,omitempty"`
	Assignments []models.Assignment `json:"assignments,omitempty"`
}

func (in *QuestionnaireInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.EvaluationPeriod = strings.TrimSpace(in.EvaluationPeriod)
	for i := range in.Questions {
		in.Questions[i].QuestionText = strings.TrimSpace(in.Questions[i].QuestionText)
		in.Questions[i].Category = strings.TrimSpace(in.Questions[i].Category)
	}
}

// Validate checks the input and reports every offending field at once
func (in *QuestionnaireInput) Validate() error {
	in.normalize()
	verr := models.NewValidationError()
	validateStruct(in, verr)

	if in.Status != "" && !in.Status.IsValid() {
		verr.Add("status", models.ErrInvalidQuestionnaireStatus.Error())
	}
	for i, q := range in.Questions {
		q.validateRules(fmt.Sprintf("questions[%d]", i), verr)
	}
	return verr.OrNil()
}

// validateRules applies the rules struct tags cannot express
// #BUSINESS_RULE: numeric-scored kinds need min_score < max_score
// #BUSINESS_RULE: multiple choice needs at least one non-empty option
func (in QuestionInput) validateRules(prefix string, verr *models.ValidationError) {
	if in.Type != "" && !in.Type.IsValid() {
		verr.Add(prefix+".question_type", models.ErrInvalidQuestionType.Error())
		return
	}
	minScore, maxScore := in.scoreRange()
	if in.Type.IsNumericScored() && minScore >= maxScore {
		verr.Add(prefix+".max_score", models.ErrInvalidScoreRange.Error())
	}
	if in.Type.RequiresOptions() && len(in.cleanOptions()) == 0 {
		verr.Add(prefix+".options", models.ErrMissingQuestionOptions.Error())
	}
}

func (in QuestionInput) scoreRange() (int, int) {
	minScore, maxScore := models.DefaultMinScore, models.DefaultMaxScore
	if in.MinScore != nil {
		minScore = *in.MinScore
	}
	if in.MaxScore != nil {
		maxScore = *in.MaxScore
	}
	return minScore, maxScore
}

func (in QuestionInput) cleanOptions() pq.StringArray {
	options := pq.StringArray{}
	for _, opt := range in.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	return options
}

// toModel maps the input onto a new questionnaire
func (in *QuestionnaireInput) toModel(createdBy string) *models.Questionnaire {
	q := &models.Questionnaire{
		CreatedBy:  createdBy,
		IsTemplate: in.IsTemplate,
	}
	in.applyTo(q)
	return q
}

// applyTo copies the editable definition fields onto q
// #BUSINESS_RULE: An empty status keeps the current one, is_template and provenance never change on update
func (in *QuestionnaireInput) applyTo(q *models.Questionnaire) {
	q.Title = in.Title
	q.Description = in.Description
	q.EvaluationPeriod = in.EvaluationPeriod
	q.DueDate = in.DueDate
	q.Instructions = in.Instructions
	if in.Status != "" {
		q.Status = in.Status
	}
}

// questions builds the ordered question set, order is the 1-based input position
func (in *QuestionnaireInput) questions(questionnaireID string) []models.Question {
	questions := make([]models.Question, 0, len(in.Questions))
	for i, qi := range in.Questions {
		questions = append(questions, qi.toModel(questionnaireID, i+1))
	}
	return questions
}

func (in QuestionInput) toModel(questionnaireID string, order int) models.Question {
	minScore, maxScore := in.scoreRange()
	required := true
	if in.IsRequired != nil {
		required = *in.IsRequired
	}
	q := models.Question{
		QuestionnaireID: questionnaireID,
		QuestionText:    in.QuestionText,
		Description:     in.Description,
		Category:        in.Category,
		Type:            in.Type,
		Order:           order,
		MinScore:        minScore,
		MaxScore:        maxScore,
		IsRequired:      required,
	}
	if in.Type.RequiresOptions() {
		q.Options = in.cleanOptions()
	}
	return q
}

// questionnaireService implements QuestionnaireService
type questionnaireService struct {
	questionnaireRepo repository.QuestionnaireRepository
	questionRepo      repository.QuestionRepository
	assignmentRepo    repository.AssignmentRepository
	tx                repository.Transactor
	logger            *zap.Logger
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(repos repository.Repositories, logger *zap.Logger) QuestionnaireService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &questionnaireService{
		questionnaireRepo: repos.Questionnaires,
		questionRepo:      repos.Questions,
		assignmentRepo:    repos.Assignments,
		tx:                repos.Tx,
		logger:            logger.Named("questionnaires"),
	}
}

// Create creates a questionnaire together with its ordered questions
// #IMPLEMENTATION_DECISION: Questionnaire and questions are written in one transaction
func (s *questionnaireService) Create(ctx context.Context, actor models.Actor, input QuestionnaireInput) (*QuestionnaireDetail, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	questionnaire := input.toModel(actor.UserID)
	var questions []models.Question
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.questionnaireRepo.Create(ctx, questionnaire); err != nil {
			return fmt.Errorf("failed to create questionnaire: %w", err)
		}
		questions = input.questions(questionnaire.ID)
		if err := s.questionRepo.CreateMany(ctx, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError("create questionnaire", err)
	}

	s.logger.Info("questionnaire created",
		zap.String("questionnaire_id", questionnaire.ID),
		zap.String("created_by", actor.UserID),
		zap.Int("questions", len(questions)),
	)
	return &QuestionnaireDetail{Questionnaire: *questionnaire, Questions: questions}, nil
}

// Update replaces definition and question set of a questionnaire
// #IMPLEMENTATION_DECISION: The question set is swapped as a whole, question ids do not survive an update
// #TECHNICAL_DEBT: Responses keyed by old question ids are not remapped
func (s *questionnaireService) Update(ctx context.Context, actor models.Actor, id string, input QuestionnaireInput) (*QuestionnaireDetail, error) {
	questionnaire, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError("load questionnaire", err)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var questions []models.Question
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		input.applyTo(questionnaire)
		if err := s.questionnaireRepo.Update(ctx, questionnaire); err != nil {
			return fmt.Errorf("failed to update questionnaire: %w", err)
		}
		if _, err := s.questionRepo.DeleteByQuestionnaire(ctx, questionnaire.ID); err != nil {
			return fmt.Errorf("failed to remove questions: %w", err)
		}
		questions = input.questions(questionnaire.ID)
		if err := s.questionRepo.CreateMany(ctx, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError("update questionnaire", err)
	}

	s.logger.Info("questionnaire updated",
		zap.String("questionnaire_id", questionnaire.ID),
		zap.String("updated_by", actor.UserID),
		zap.Int("questions", len(questions)),
	)
	return &QuestionnaireDetail{Questionnaire: *questionnaire, Questions: questions}, nil
}

// Get retrieves a questionnaire with the requested relations loaded
func (s *questionnaireService) Get(ctx context.Context, id string, include QuestionnaireInclude) (*QuestionnaireDetail, error) {
	questionnaire, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError("load questionnaire", err)
	}
	detail, err := s.load(ctx, *questionnaire, include)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// List lists questionnaires ordered by creation time, newest first
func (s *questionnaireService) List(ctx context.Context, filter repository.QuestionnaireFilter, include QuestionnaireInclude) ([]QuestionnaireDetail, error) {
	questionnaires, err := s.questionnaireRepo.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError("list questionnaires", err)
	}

	details := make([]QuestionnaireDetail, 0, len(questionnaires))
	for _, q := range questionnaires {
		detail, err := s.load(ctx, q, include)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListTemplates lists template questionnaires with their questions
func (s *questionnaireService) ListTemplates(ctx context.Context) ([]QuestionnaireDetail, error) {
	isTemplate := true
	return s.List(ctx, repository.QuestionnaireFilter{IsTemplate: &isTemplate}, QuestionnaireInclude{Questions: true})
}

// load materializes the requested relations of one questionnaire
func (s *questionnaireService) load(ctx context.Context, q models.Questionnaire, include QuestionnaireInclude) (QuestionnaireDetail, error) {
	detail := QuestionnaireDetail{Questionnaire: q}
	if include.Questions {
		questions, err := s.questionRepo.ListByQuestionnaire(ctx, q.ID)
		if err != nil {
			return detail, models.NewInternalError("load questions", err)
		}
		detail.Questions = questions
	}
	if include.Assignments {
		assignments, err := s.assignmentRepo.List(ctx, repository.AssignmentFilter{QuestionnaireID: q.ID})
		if err != nil {
			return detail, models.NewInternalError("load assignments", err)
		}
		detail.Assignments = assignments
	}
	return detail, nil
}

// Publish makes a questionnaire assignable
func (s *questionnaireService) Publish(ctx context.Context, id string) (*models.Questionnaire, error) {
	return s.transition(ctx, id, "published", (*models.Questionnaire).Publish)
}

// Unpublish moves a questionnaire back to draft
// #BUSINESS_RULE: Existing assignments are untouched, only new ones are blocked
func (s *questionnaireService) Unpublish(ctx context.Context, id string) (*models.Questionnaire, error) {
	return s.transition(ctx, id, "unpublished", (*models.Questionnaire).Unpublish)
}

// Archive retires a questionnaire
func (s *questionnaireService) Archive(ctx context.Context, id string) (*models.Questionnaire, error) {
	return s.transition(ctx, id, "archived", (*models.Questionnaire).Archive)
}

// transition applies a status change and persists it only when something changed
func (s *questionnaireService) transition(ctx context.Context, id, event string, apply func(*models.Questionnaire) bool) (*models.Questionnaire, error) {
	questionnaire, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError("load questionnaire", err)
	}
	if !apply(questionnaire) {
		return questionnaire, nil
	}
	if err := s.questionnaireRepo.Update(ctx, questionnaire); err != nil {
		return nil, models.NewInternalError("update questionnaire status", err)
	}

	s.logger.Info("questionnaire "+event,
		zap.String("questionnaire_id", questionnaire.ID),
		zap.String("status", string(questionnaire.Status)),
	)
	return questionnaire, nil
}

// Duplicate copies a questionnaire and its questions into a new draft
// #BUSINESS_RULE: The copy is a draft owned by the acting user, due_date is not carried over
func (s *questionnaireService) Duplicate(ctx context.Context, actor models.Actor, id string) (*QuestionnaireDetail, error) {
	var detail QuestionnaireDetail
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		original, err := s.questionnaireRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		originalQuestions, err := s.questionRepo.ListByQuestionnaire(ctx, original.ID)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}

		sourceID := original.ID
		duplicate := &models.Questionnaire{
			Title:            original.CopyTitle(),
			Description:      original.Description,
			Status:           models.QuestionnaireStatusDraft,
			IsTemplate:       original.IsTemplate,
			TemplateSourceID: &sourceID,
			EvaluationPeriod: original.EvaluationPeriod,
			Instructions:     original.Instructions,
			CreatedBy:        actor.UserID,
		}
		if err := s.questionnaireRepo.Create(ctx, duplicate); err != nil {
			return fmt.Errorf("failed to create copy: %w", err)
		}

		questions := make([]models.Question, 0, len(originalQuestions))
		for i := range originalQuestions {
			questions = append(questions, originalQuestions[i].Clone(duplicate.ID))
		}
		if err := s.questionRepo.CreateMany(ctx, questions); err != nil {
			return fmt.Errorf("failed to copy questions: %w", err)
		}

		detail = QuestionnaireDetail{Questionnaire: *duplicate, Questions: questions}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError("duplicate questionnaire", err)
	}

	s.logger.Info("questionnaire duplicated",
		zap.String("source_id", id),
		zap.String("questionnaire_id", detail.ID),
		zap.String("created_by", actor.UserID),
	)
	return &detail, nil
}

// Delete removes a questionnaire that has never been assigned
// #CASCADE_STRATEGY: Questions go with the questionnaire, copies keep living without their source
func (s *questionnaireService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.questionnaireRepo.GetByID(ctx, id); err != nil {
			return err
		}
		count, err := s.assignmentRepo.CountByQuestionnaire(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count assignments: %w", err)
		}
		if count > 0 {
			return models.ErrQuestionnaireHasAssignments
		}
		if _, err := s.questionRepo.DeleteByQuestionnaire(ctx, id); err != nil {
			return fmt.Errorf("failed to remove questions: %w", err)
		}
		if err := s.questionnaireRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete questionnaire: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError("delete questionnaire", err)
	}

	s.logger.Info("questionnaire deleted", zap.String("questionnaire_id", id))
	return nil
}
