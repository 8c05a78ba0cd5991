// Package reporting projects evaluation assignments into aggregate reports
// #INTEGRATION_POINT: Reads only the assignment read model, never the stores
package reporting

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/secinto/hrms_backend/internal/models"
)

// Range selects the assignment window of a report
type Range string

const (
	RangeAll        Range = "all"
	RangeLast7Days  Range = "last_7_days"
	RangeLast30Days Range = "last_30_days"
	RangeLast90Days Range = "last_90_days"
)

// DefaultTopN is the number of top performers when the request does not say
const DefaultTopN = 10

// recentLimit is the number of recent evaluations listed in a report
const recentLimit = 10

// ParseRange parses a range name, empty means the last 30 days
func ParseRange(s string) (Range, bool) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RangeLast30Days, true
	}
	return r, r.IsValid()
}

// IsValid checks if the range is known
func (r Range) IsValid() bool {
	switch r {
	case RangeAll, RangeLast7Days, RangeLast30Days, RangeLast90Days:
		return true
	}
	return false
}

// Since returns the lower assigned_at bound of the range, nil for all
func (r Range) Since(now time.Time) *time.Time {
	var days int
	switch r {
	case RangeLast7Days:
		days = 7
	case RangeLast30Days:
		days = 30
	case RangeLast90Days:
		days = 90
	default:
		return nil
	}
	since := now.AddDate(0, 0, -days)
	return &since
}

// Request describes the report to generate
type Request struct {
	QuestionnaireID string `json:"questionnaire_id,omitempty"`
	Range           Range  `json:"range"`
	TopN            int    `json:"top_n"`
}

// Overview summarizes all assignments in the window
type Overview struct {
	TotalEvaluations      int     `json:"total_evaluations"`
	CompletedEvaluations  int     `json:"completed_evaluations"`
	PendingEvaluations    int     `json:"pending_evaluations"`
	InProgressEvaluations int     `json:"in_progress_evaluations"`
	CancelledEvaluations  int     `json:"cancelled_evaluations"`
	AverageScore          float64 `json:"average_score"`
}

// QuestionnaireStats summarizes the assignments of one questionnaire
type QuestionnaireStats struct {
	QuestionnaireID string  `json:"questionnaire_id"`
	Title           string  `json:"title"`
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Pending         int     `json:"pending"`
	InProgress      int     `json:"in_progress"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageScore    float64 `json:"average_score"`
}

// Evaluation is one scored assignment as listed in a report
type Evaluation struct {
	AssignmentID       string     `json:"assignment_id"`
	QuestionnaireID    string     `json:"questionnaire_id"`
	QuestionnaireTitle string     `json:"questionnaire_title"`
	EvaluatorID        string     `json:"evaluator_id"`
	EvaluateeID        string     `json:"evaluatee_id"`
	Score              float64    `json:"score"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Report is the projection handed to the reporting UI and the export
type Report struct {
	GeneratedAt       time.Time            `json:"generated_at"`
	Range             Range                `json:"range"`
	QuestionnaireID   string               `json:"questionnaire_id,omitempty"`
	Overview          Overview             `json:"overview"`
	Questionnaires    []QuestionnaireStats `json:"questionnaire_stats"`
	TopPerformers     []Evaluation         `json:"top_performers"`
	RecentEvaluations []Evaluation         `json:"recent_evaluations"`
}

// Build aggregates the views of one window into a report
// #BUSINESS_RULE: Averages are taken over completed assignments only, a missing score counts as 0
// #BUSINESS_RULE: Top performers are completed assignments with a non-zero score
func Build(views []models.AssignmentView, req Request, now time.Time) *Report {
	report := &Report{
		GeneratedAt:       now,
		Range:             req.Range,
		QuestionnaireID:   req.QuestionnaireID,
		Questionnaires:    []QuestionnaireStats{},
		TopPerformers:     []Evaluation{},
		RecentEvaluations: []Evaluation{},
	}

	stats := map[string]*QuestionnaireStats{}
	scoreSums := map[string]float64{}
	order := []string{}
	var scoreSum float64
	completed := []Evaluation{}

	for _, v := range views {
		a := v.Assignment
		st, ok := stats[a.QuestionnaireID]
		if !ok {
			st = &QuestionnaireStats{QuestionnaireID: a.QuestionnaireID, Title: v.Questionnaire.Title}
			stats[a.QuestionnaireID] = st
			order = append(order, a.QuestionnaireID)
		}

		report.Overview.TotalEvaluations++
		st.Total++
		switch a.Status {
		case models.AssignmentStatusCompleted:
			report.Overview.CompletedEvaluations++
			st.Completed++
			scoreSum += v.Score()
			scoreSums[a.QuestionnaireID] += v.Score()
			completed = append(completed, evaluationOf(v))
		case models.AssignmentStatusPending:
			report.Overview.PendingEvaluations++
			st.Pending++
		case models.AssignmentStatusInProgress:
			report.Overview.InProgressEvaluations++
			st.InProgress++
		case models.AssignmentStatusCancelled:
			report.Overview.CancelledEvaluations++
		}
	}

	if n := report.Overview.CompletedEvaluations; n > 0 {
		report.Overview.AverageScore = round2(scoreSum / float64(n))
	}
	for _, id := range order {
		st := stats[id]
		if st.Completed > 0 {
			st.AverageScore = round2(scoreSums[id] / float64(st.Completed))
		}
		if st.Total > 0 {
			st.CompletionRate = round2(float64(st.Completed) / float64(st.Total) * 100)
		}
		report.Questionnaires = append(report.Questionnaires, *st)
	}

	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	for _, e := range completed {
		if e.Score != 0 {
			report.TopPerformers = append(report.TopPerformers, e)
		}
	}
	sort.SliceStable(report.TopPerformers, func(i, j int) bool {
		return report.TopPerformers[i].Score > report.TopPerformers[j].Score
	})
	if len(report.TopPerformers) > topN {
		report.TopPerformers = report.TopPerformers[:topN]
	}

	report.RecentEvaluations = append(report.RecentEvaluations, completed...)
	sort.SliceStable(report.RecentEvaluations, func(i, j int) bool {
		return completedAt(report.RecentEvaluations[i]).After(completedAt(report.RecentEvaluations[j]))
	})
	if len(report.RecentEvaluations) > recentLimit {
		report.RecentEvaluations = report.RecentEvaluations[:recentLimit]
	}

	return report
}

func evaluationOf(v models.AssignmentView) Evaluation {
	return Evaluation{
		AssignmentID:       v.Assignment.ID,
		QuestionnaireID:    v.Assignment.QuestionnaireID,
		QuestionnaireTitle: v.Questionnaire.Title,
		EvaluatorID:        v.Assignment.EvaluatorID,
		EvaluateeID:        v.Assignment.EvaluateeID,
		Score:              v.Score(),
		CompletedAt:        v.Assignment.CompletedAt,
	}
}

func completedAt(e Evaluation) time.Time {
	if e.CompletedAt == nil {
		return time.Time{}
	}
	return *e.CompletedAt
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
