package models

import "time"

// QuestionnaireSummary is the questionnaire part embedded into assignment views
type QuestionnaireSummary struct {
	ID               string              `bson:"_id" json:"id"`
	Title            string              `bson:"title" json:"title"`
	Status           QuestionnaireStatus `bson:"status" json:"status"`
	IsTemplate       bool                `bson:"is_template" json:"is_template"`
	EvaluationPeriod string              `bson:"evaluation_period,omitempty" json:"evaluation_period,omitempty"`
	DueDate          *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`
}

// SummaryOf builds the embedded summary of a questionnaire
func SummaryOf(q *Questionnaire) QuestionnaireSummary {
	return QuestionnaireSummary{
		ID:               q.ID,
		Title:            q.Title,
		Status:           q.Status,
		IsTemplate:       q.IsTemplate,
		EvaluationPeriod: q.EvaluationPeriod,
		DueDate:          q.DueDate,
	}
}

// AssignmentView is the read model exposed to reporting
// #INTEGRATION_POINT: Reporting consumes only this shape, never the stores directly
type AssignmentView struct {
	Assignment    Assignment           `json:"assignment"`
	Questionnaire QuestionnaireSummary `json:"questionnaire"`
}

// Score returns the total score, or zero when the assignment is not scored
func (v AssignmentView) Score() float64 {
	if v.Assignment.TotalScore == nil {
		return 0
	}
	return *v.Assignment.TotalScore
}
