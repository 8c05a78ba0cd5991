// Package seed provisions the system questionnaire templates
package seed

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/services"
)

// SystemUserID is recorded as creator of seeded templates
const SystemUserID = "system"

// Result reports what a seeding run did
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Seeder creates the system templates through the questionnaire service
// #SEED_DATA: Annual review, quarterly check-in, 360 feedback and probation review templates
// #IMPLEMENTATION_DECISION: Goes through the service so seeded templates pass the same validation as user input
type Seeder struct {
	questionnaires services.QuestionnaireService
	logger         *zap.Logger
}

// NewSeeder creates a new template seeder
func NewSeeder(questionnaires services.QuestionnaireService, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{questionnaires: questionnaires, logger: logger.Named("seed")}
}

// SeedTemplates creates every system template whose title does not exist yet
// Running it again is a no-op.
func (s *Seeder) SeedTemplates(ctx context.Context) (*Result, error) {
	existing, err := s.questionnaires.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, t := range existing {
		titles[strings.ToLower(t.Title)] = true
	}

	actor := models.NewActor(SystemUserID, string(models.UserRoleAdmin))
	result := &Result{Created: []string{}, Skipped: []string{}}
	for _, input := range SystemTemplates() {
		if titles[strings.ToLower(input.Title)] {
			result.Skipped = append(result.Skipped, input.Title)
			continue
		}
		if _, err := s.questionnaires.Create(ctx, actor, input); err != nil {
			return result, fmt.Errorf("create template %q: %w", input.Title, err)
		}
		result.Created = append(result.Created, input.Title)
	}

	s.logger.Info("system templates seeded",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func intPtr(v int) *int { return &v }

func rating(text, category string) services.QuestionInput {
	return services.QuestionInput{
		QuestionText: text,
		Category:     category,
		Type:         models.QuestionTypeRating,
		MinScore:     intPtr(1),
		MaxScore:     intPtr(5),
	}
}

func scale(text, category string) services.QuestionInput {
	return services.QuestionInput{
		QuestionText: text,
		Category:     category,
		Type:         models.QuestionTypeScale,
		MinScore:     intPtr(0),
		MaxScore:     intPtr(10),
	}
}

func freeText(text, category string) services.QuestionInput {
	optional := false
	return services.QuestionInput{
		QuestionText: text,
		Category:     category,
		Type:         models.QuestionTypeText,
		IsRequired:   &optional,
	}
}

// SystemTemplates returns the definitions of the built-in templates
func SystemTemplates() []services.QuestionnaireInput {
	return []services.QuestionnaireInput{
		{
			Title:        "Annual Performance Review",
			Description:  "Yearly review of results, competencies and development goals.",
			Status:       models.QuestionnaireStatusPublished,
			IsTemplate:   true,
			Instructions: "Rate each statement from 1 (needs improvement) to 5 (outstanding) and add examples where possible.",
			Questions: []services.QuestionInput{
				rating("Achieves the objectives agreed for the year", "Results"),
				rating("Delivers work of consistently high quality", "Results"),
				rating("Communicates clearly with colleagues and stakeholders", "Competencies"),
				rating("Collaborates effectively within and across teams", "Competencies"),
				rating("Takes ownership and shows initiative", "Competencies"),
				{
					QuestionText: "Overall performance rating",
					Category:     "Summary",
					Type:         models.QuestionTypeMultipleChoice,
					Options:      []string{"Below expectations", "Meets expectations", "Exceeds expectations", "Outstanding"},
				},
				freeText("Key achievements this year", "Summary"),
				freeText("Development goals for next year", "Development"),
			},
		},
		{
			Title:        "Quarterly Check-in",
			Description:  "Short quarterly conversation about progress, blockers and wellbeing.",
			Status:       models.QuestionnaireStatusPublished,
			IsTemplate:   true,
			Instructions: "Answer briefly, the check-in should take less than 15 minutes.",
			Questions: []services.QuestionInput{
				scale("Progress on quarterly goals", "Goals"),
				scale("Workload balance", "Wellbeing"),
				{
					QuestionText: "Are there blockers that need escalation?",
					Category:     "Goals",
					Type:         models.QuestionTypeYesNo,
				},
				freeText("Topics to discuss in the next one-on-one", "Follow-up"),
			},
		},
		{
			Title:        "360 Degree Feedback",
			Description:  "Peer feedback on collaboration, leadership and communication.",
			Status:       models.QuestionnaireStatusPublished,
			IsTemplate:   true,
			Instructions: "Your feedback is shared with the evaluatee's manager. Be specific and constructive.",
			Questions: []services.QuestionInput{
				rating("Is approachable and open to feedback", "Collaboration"),
				rating("Shares knowledge and helps others grow", "Leadership"),
				rating("Keeps others informed about relevant work", "Communication"),
				freeText("What should this person keep doing?", "Feedback"),
				freeText("What could this person do differently?", "Feedback"),
			},
		},
		{
			Title:        "Probation Review",
			Description:  "End of probation assessment for new hires.",
			Status:       models.QuestionnaireStatusPublished,
			IsTemplate:   true,
			Instructions: "Complete in the last two weeks of the probation period.",
			Questions: []services.QuestionInput{
				rating("Has learned the tools and processes of the role", "Onboarding"),
				rating("Integrates well into the team", "Onboarding"),
				rating("Meets the expectations set at hiring", "Performance"),
				{
					QuestionText: "Recommend confirming the employment?",
					Category:     "Decision",
					Type:         models.QuestionTypeYesNo,
				},
				freeText("Comments supporting the recommendation", "Decision"),
			},
		},
	}
}
