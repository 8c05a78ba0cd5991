package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// AssignmentService handles the evaluation assignment workflow
// #INTEGRATION_POINT: Used by assignment handler and the reporting projector
type AssignmentService interface {
	// Assign creates assignments for explicit evaluator/evaluatee pairs
	Assign(ctx context.Context, actor models.Actor, questionnaireID string, pairs []Pair) ([]models.Assignment, error)

	// BulkAssign creates assignments for the cross product of evaluators and evaluatees
	BulkAssign(ctx context.Context, actor models.Actor, questionnaireID string, evaluatorIDs, evaluateeIDs []string) (*BulkAssignResult, error)

	// Start moves a pending assignment to in progress
	Start(ctx context.Context, actor models.Actor, id string) (*models.Assignment, error)

	// SaveDraft stores intermediate responses
	SaveDraft(ctx context.Context, actor models.Actor, id string, input ResponseInput) (*models.Assignment, error)

	// Submit completes an assignment and computes its score
	Submit(ctx context.Context, actor models.Actor, id string, input ResponseInput) (*models.Assignment, error)

	// AdminUpdate overrides responses, score and status on behalf of an administrator
	AdminUpdate(ctx context.Context, actor models.Actor, id string, input AdminUpdateInput) (*models.Assignment, error)

	// Delete removes an assignment that has not been completed
	Delete(ctx context.Context, id string) error

	// Get retrieves an assignment with the requested relations loaded
	Get(ctx context.Context, actor models.Actor, id string, include AssignmentInclude) (*AssignmentDetail, error)

	// ListForEvaluator lists the assignments of one evaluator, newest first
	ListForEvaluator(ctx context.Context, evaluatorID string, status *models.AssignmentStatus) ([]AssignmentDetail, error)

	// List lists assignments matching the filter, newest first
	List(ctx context.Context, filter repository.AssignmentFilter) ([]AssignmentDetail, error)

	// ListForReport returns the read model consumed by reporting
	ListForReport(ctx context.Context, filter ReportFilter) ([]models.AssignmentView, error)
}

// Pair is one requested evaluator/evaluatee pairing
type Pair struct {
	EvaluatorID string `json:"evaluator_id" validate:"required"`
	EvaluateeID string `json:"evaluatee_id" validate:"required"`
	// AllowSelfEvaluation permits evaluator == evaluatee for this pair
	AllowSelfEvaluation bool `json:"allow_self_evaluation"`
}

// AssignRequest is the payload of an explicit assignment
type AssignRequest struct {
	QuestionnaireID string `json:"evaluation_questionnaire_id" validate:"required"`
	Assignments     []Pair `json:"assignments" validate:"required,min=1,dive"`
}

// BulkAssignRequest is the payload of a cross-product assignment
type BulkAssignRequest struct {
	QuestionnaireID string   `json:"evaluation_questionnaire_id" validate:"required"`
	EvaluatorIDs    []string `json:"evaluator_ids" validate:"required,min=1,dive,required"`
	EvaluateeIDs    []string `json:"evaluatee_ids" validate:"required,min=1,dive,required"`
}

// BulkAssignResult reports what a bulk assignment created
type BulkAssignResult struct {
	Assignments []models.Assignment `json:"data"`
	Count       int                 `json:"count"`
}

// ResponseInput carries the evaluator's answers
type ResponseInput struct {
	Responses map[string]interface{} `json:"responses" validate:"required"`
	Comments  string                 `json:"comments"`
}

// AdminUpdateInput carries an administrative override
type AdminUpdateInput struct {
	Responses  map[string]interface{}  `json:"responses" validate:"required"`
	TotalScore *float64                `json:"total_score"`
	Comments   string                  `json:"comments"`
	Status     models.AssignmentStatus `json:"status" validate:"required"`
}

// AssignmentInclude selects the relations loaded with an assignment
type AssignmentInclude struct {
	Questionnaire bool
	Questions     bool
}

// AssignmentDetail is an assignment with its explicitly loaded relations
type AssignmentDetail struct {
	models.Assignment
	Questionnaire *models.QuestionnaireSummary `json:"questionnaire,omitempty"`
	Questions     []models.Question            `json:"questions,omitempty"`
}

// ReportFilter narrows the reporting read model
type ReportFilter struct {
	QuestionnaireID string
	AssignedFrom    *time.Time
	AssignedTo      *time.Time
}

// assignmentService implements AssignmentService
type assignmentService struct {
	questionnaireRepo repository.QuestionnaireRepository
	questionRepo      repository.QuestionRepository
	assignmentRepo    repository.AssignmentRepository
	tx                repository.Transactor
	logger            *zap.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(repos repository.Repositories, logger *zap.Logger) AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assignmentService{
		questionnaireRepo: repos.Questionnaires,
		questionRepo:      repos.Questions,
		assignmentRepo:    repos.Assignments,
		tx:                repos.Tx,
		logger:            logger.Named("assignments"),
	}
}

// Assign creates assignments for explicit evaluator/evaluatee pairs
// #BUSINESS_RULE: Existing pairings are skipped silently, the result lists only new assignments
// #BUSINESS_RULE: Self evaluation must be requested per pair
func (s *assignmentService) Assign(ctx context.Context, actor models.Actor, questionnaireID string, pairs []Pair) ([]models.Assignment, error) {
	req := AssignRequest{QuestionnaireID: strings.TrimSpace(questionnaireID), Assignments: pairs}
	verr := models.NewValidationError()
	validateStruct(req, verr)
	for i, p := range req.Assignments {
		if p.EvaluatorID != "" && p.EvaluatorID == p.EvaluateeID && !p.AllowSelfEvaluation {
			verr.Add(fmt.Sprintf("assignments[%d].evaluatee_id", i), models.ErrSelfEvaluation.Error())
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.createPairs(ctx, actor, req.QuestionnaireID, req.Assignments)
}

// BulkAssign creates assignments for the cross product of evaluators and evaluatees
// #BUSINESS_RULE: Self pairs are always skipped in bulk mode
func (s *assignmentService) BulkAssign(ctx context.Context, actor models.Actor, questionnaireID string, evaluatorIDs, evaluateeIDs []string) (*BulkAssignResult, error) {
	req := BulkAssignRequest{
		QuestionnaireID: strings.TrimSpace(questionnaireID),
		EvaluatorIDs:    evaluatorIDs,
		EvaluateeIDs:    evaluateeIDs,
	}
	verr := models.NewValidationError()
	validateStruct(req, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(evaluatorIDs)*len(evaluateeIDs))
	for _, evaluatorID := range evaluatorIDs {
		for _, evaluateeID := range evaluateeIDs {
			if evaluatorID == evaluateeID {
				continue
			}
			pairs = append(pairs, Pair{EvaluatorID: evaluatorID, EvaluateeID: evaluateeID})
		}
	}

	created, err := s.createPairs(ctx, actor, req.QuestionnaireID, pairs)
	if err != nil {
		return nil, err
	}
	return &BulkAssignResult{Assignments: created, Count: len(created)}, nil
}

// createPairs inserts the pairs in input order inside one transaction
// #IMPLEMENTATION_DECISION: Dedup relies on the store's insert-if-absent, not a read-then-write check
func (s *assignmentService) createPairs(ctx context.Context, actor models.Actor, questionnaireID string, pairs []Pair) ([]models.Assignment, error) {
	created := make([]models.Assignment, 0, len(pairs))
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created = created[:0]
		questionnaire, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
		if err != nil {
			return err
		}
		if !questionnaire.CanBeAssigned() {
			return models.ErrQuestionnaireNotPublished
		}

		for _, p := range pairs {
			assignment := &models.Assignment{
				QuestionnaireID: questionnaire.ID,
				EvaluatorID:     p.EvaluatorID,
				EvaluateeID:     p.EvaluateeID,
				AssignedBy:      actor.UserID,
				Status:          models.AssignmentStatusPending,
			}
			ok, err := s.assignmentRepo.CreateIfAbsent(ctx, assignment)
			if err != nil {
				return fmt.Errorf("failed to create assignment: %w", err)
			}
			if ok {
				created = append(created, *assignment)
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError("assign questionnaire", err)
	}

	s.logger.Info("assignments created",
		zap.String("questionnaire_id", questionnaireID),
		zap.String("assigned_by", actor.UserID),
		zap.Int("requested", len(pairs)),
		zap.Int("created", len(created)),
	)
	return created, nil
}

// transition applies change to a freshly read assignment and writes it back
// #IMPLEMENTATION_DECISION: Read, check and write share one transaction and the write is
// guarded by the status that was read, so overlapping transitions cannot both succeed
func (s *assignmentService) transition(ctx context.Context, op, id string, change func(*models.Assignment) error) (*models.Assignment, error) {
	var updated *models.Assignment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		assignment, err := s.assignmentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		read := assignment.Status
		if err := change(assignment); err != nil {
			return err
		}
		if err := s.assignmentRepo.Update(ctx, assignment, read); err != nil {
			return err
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(op, err)
	}
	return updated, nil
}

// asEvaluator wraps change with the check that the actor is the assigned evaluator
func asEvaluator(actor models.Actor, change func(*models.Assignment) error) func(*models.Assignment) error {
	return func(a *models.Assignment) error {
		if !a.IsAssignedTo(actor.UserID) {
			return models.ErrNotAssignedEvaluator
		}
		return change(a)
	}
}

// Start moves a pending assignment to in progress
func (s *assignmentService) Start(ctx context.Context, actor models.Actor, id string) (*models.Assignment, error) {
	assignment, err := s.transition(ctx, "start assignment", id, asEvaluator(actor, func(a *models.Assignment) error {
		return a.Start()
	}))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("assignment started", zap.String("assignment_id", assignment.ID))
	return assignment, nil
}

// SaveDraft stores intermediate responses
func (s *assignmentService) SaveDraft(ctx context.Context, actor models.Actor, id string, input ResponseInput) (*models.Assignment, error) {
	assignment, err := s.transition(ctx, "save draft", id, asEvaluator(actor, func(a *models.Assignment) error {
		if err := validateResponses(input); err != nil {
			return err
		}
		return a.SaveDraft(datatypes.JSONMap(input.Responses), input.Comments)
	}))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("assignment draft saved",
		zap.String("assignment_id", assignment.ID),
		zap.Int("responses", len(input.Responses)),
	)
	return assignment, nil
}

// Submit completes an assignment and computes its score
// #BUSINESS_RULE: A pending assignment may be submitted without being started
func (s *assignmentService) Submit(ctx context.Context, actor models.Actor, id string, input ResponseInput) (*models.Assignment, error) {
	score := CalculateScore(input.Responses)
	assignment, err := s.transition(ctx, "submit assignment", id, asEvaluator(actor, func(a *models.Assignment) error {
		if err := validateResponses(input); err != nil {
			return err
		}
		return a.Submit(datatypes.JSONMap(input.Responses), input.Comments, score)
	}))
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment submitted",
		zap.String("assignment_id", assignment.ID),
		zap.Float64("total_score", score),
	)
	return assignment, nil
}

func validateResponses(input ResponseInput) error {
	verr := models.NewValidationError()
	validateStruct(input, verr)
	return verr.OrNil()
}

// AdminUpdate overrides responses, score and status on behalf of an administrator
// #BUSINESS_RULE: Only ADMIN and HR may override, completed and cancelled stay final
func (s *assignmentService) AdminUpdate(ctx context.Context, actor models.Actor, id string, input AdminUpdateInput) (*models.Assignment, error) {
	if !actor.CanAdminister() {
		return nil, models.ErrAdminRoleRequired
	}

	var totalScore *float64
	if input.TotalScore != nil {
		rounded := roundScore(*input.TotalScore)
		totalScore = &rounded
	}
	assignment, err := s.transition(ctx, "update assignment", id, func(a *models.Assignment) error {
		verr := models.NewValidationError()
		validateStruct(input, verr)
		if input.Status != "" && !input.Status.IsAdminSettable() {
			verr.Add("status", models.ErrInvalidAssignmentState.Error())
		}
		if err := verr.OrNil(); err != nil {
			return err
		}
		return a.Override(datatypes.JSONMap(input.Responses), totalScore, input.Comments, input.Status)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment overridden",
		zap.String("assignment_id", assignment.ID),
		zap.String("updated_by", actor.UserID),
		zap.String("status", string(assignment.Status)),
	)
	return assignment, nil
}

// Delete removes an assignment that has not been completed
func (s *assignmentService) Delete(ctx context.Context, id string) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return models.NewInternalError("load assignment", err)
	}
	if !assignment.CanBeDeleted() {
		return models.ErrAssignmentCompleted
	}
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError("delete assignment", err)
	}

	s.logger.Info("assignment deleted", zap.String("assignment_id", id))
	return nil
}

// Get retrieves an assignment with the requested relations loaded
// #BUSINESS_RULE: Evaluators see their own assignments, ADMIN and HR see all
func (s *assignmentService) Get(ctx context.Context, actor models.Actor, id string, include AssignmentInclude) (*AssignmentDetail, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError("load assignment", err)
	}
	if !actor.CanAdminister() && !assignment.IsAssignedTo(actor.UserID) {
		return nil, models.ErrForbidden
	}

	detail := AssignmentDetail{Assignment: *assignment}
	if include.Questionnaire || include.Questions {
		questionnaire, err := s.questionnaireRepo.GetByID(ctx, assignment.QuestionnaireID)
		if err != nil {
			return nil, models.NewInternalError("load questionnaire", err)
		}
		summary := models.SummaryOf(questionnaire)
		detail.Questionnaire = &summary
	}
	if include.Questions {
		questions, err := s.questionRepo.ListByQuestionnaire(ctx, assignment.QuestionnaireID)
		if err != nil {
			return nil, models.NewInternalError("load questions", err)
		}
		detail.Questions = questions
	}
	return &detail, nil
}

// ListForEvaluator lists the assignments of one evaluator, newest first
func (s *assignmentService) ListForEvaluator(ctx context.Context, evaluatorID string, status *models.AssignmentStatus) ([]AssignmentDetail, error) {
	if evaluatorID == "" {
		return []AssignmentDetail{}, nil
	}
	return s.List(ctx, repository.AssignmentFilter{EvaluatorID: evaluatorID, Status: status})
}

// List lists assignments matching the filter, newest first
func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]AssignmentDetail, error) {
	assignments, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError("list assignments", err)
	}
	summaries, err := s.summaries(ctx, assignments)
	if err != nil {
		return nil, err
	}

	details := make([]AssignmentDetail, 0, len(assignments))
	for _, a := range assignments {
		detail := AssignmentDetail{Assignment: a}
		if summary, ok := summaries[a.QuestionnaireID]; ok {
			summary := summary
			detail.Questionnaire = &summary
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListForReport returns the read model consumed by reporting
func (s *assignmentService) ListForReport(ctx context.Context, filter ReportFilter) ([]models.AssignmentView, error) {
	assignments, err := s.assignmentRepo.List(ctx, repository.AssignmentFilter{
		QuestionnaireID: filter.QuestionnaireID,
		AssignedFrom:    filter.AssignedFrom,
		AssignedTo:      filter.AssignedTo,
	})
	if err != nil {
		return nil, models.NewInternalError("list report assignments", err)
	}
	summaries, err := s.summaries(ctx, assignments)
	if err != nil {
		return nil, err
	}

	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		summary, ok := summaries[a.QuestionnaireID]
		if !ok {
			summary = models.QuestionnaireSummary{ID: a.QuestionnaireID}
		}
		views = append(views, models.AssignmentView{Assignment: a, Questionnaire: summary})
	}
	return views, nil
}

// summaries batch-loads the questionnaires referenced by assignments
// #QUERY_INTERFACE: One questionnaire lookup per listing, not one per assignment
func (s *assignmentService) summaries(ctx context.Context, assignments []models.Assignment) (map[string]models.QuestionnaireSummary, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, a := range assignments {
		if !seen[a.QuestionnaireID] {
			seen[a.QuestionnaireID] = true
			ids = append(ids, a.QuestionnaireID)
		}
	}
	if len(ids) == 0 {
		return map[string]models.QuestionnaireSummary{}, nil
	}

	questionnaires, err := s.questionnaireRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError("load questionnaires", err)
	}
	result := make(map[string]models.QuestionnaireSummary, len(questionnaires))
	for i := range questionnaires {
		result[questionnaires[i].ID] = models.SummaryOf(&questionnaires[i])
	}
	return result, nil
}
