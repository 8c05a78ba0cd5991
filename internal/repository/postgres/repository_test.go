package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/models"
	"github.com/secinto/hrms_backend/internal/repository"
)

// statement is one SQL statement built by gorm
type statement struct {
	sql  string
	vars []interface{}
}

// statementLog collects the statements of a dry-run connection
type statementLog struct {
	statements []statement
}

func (l *statementLog) record(db *gorm.DB) {
	l.statements = append(l.statements, statement{
		sql:  db.Statement.SQL.String(),
		vars: append([]interface{}(nil), db.Statement.Vars...),
	})
}

// first returns the first statement starting with prefix
func (l *statementLog) first(t *testing.T, prefix string) statement {
	t.Helper()
	for _, s := range l.statements {
		if strings.HasPrefix(s.sql, prefix) {
			return s
		}
	}
	t.Fatalf("no statement starting with %q in %d statements", prefix, len(l.statements))
	return statement{}
}

// newDryRunRepositories builds repositories whose statements are recorded instead of executed
func newDryRunRepositories(t *testing.T) (repository.Repositories, *statementLog) {
	t.Helper()
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN: "host=localhost port=5432 user=hrms dbname=hrms sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	log := &statementLog{}
	if err := db.Callback().Create().After("gorm:create").Register("test:record_create", log.record); err != nil {
		t.Fatalf("register create callback: %v", err)
	}
	if err := db.Callback().Update().After("gorm:update").Register("test:record_update", log.record); err != nil {
		t.Fatalf("register update callback: %v", err)
	}
	if err := db.Callback().Query().After("gorm:query").Register("test:record_query", log.record); err != nil {
		t.Fatalf("register query callback: %v", err)
	}
	return NewRepositories(database.NewPostgresFromDB(db)), log
}

// insertColumns returns the column list of an INSERT statement
func insertColumns(t *testing.T, sql string) []string {
	t.Helper()
	open := strings.Index(sql, "(")
	end := strings.Index(sql, ") VALUES")
	if open < 0 || end < open {
		t.Fatalf("not an insert statement: %s", sql)
	}
	columns := strings.Split(sql[open+1:end], ",")
	for i := range columns {
		columns[i] = strings.Trim(strings.TrimSpace(columns[i]), `"`)
	}
	return columns
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func TestQuestionCreateMany_WritesCallerValues(t *testing.T) {
	repos, log := newDryRunRepositories(t)

	questions := []models.Question{
		{QuestionnaireID: "q-1", QuestionText: "Anything else?", Type: models.QuestionTypeText, Order: 1, MinScore: 0, MaxScore: 10, IsRequired: false},
		{QuestionnaireID: "q-1", QuestionText: "Teamwork", Type: models.QuestionTypeRating, Order: 2, MinScore: 1, MaxScore: 5, IsRequired: true},
	}
	if err := repos.Questions.CreateMany(context.Background(), questions); err != nil {
		t.Fatalf("CreateMany() error = %v", err)
	}

	insert := log.first(t, `INSERT INTO "questions"`)
	columns := insertColumns(t, insert.sql)
	if len(insert.vars) != len(columns)*len(questions) {
		t.Fatalf("got %d vars for %d columns and %d rows", len(insert.vars), len(columns), len(questions))
	}

	tests := []struct {
		column string
		want   []interface{}
	}{
		{"is_required", []interface{}{false, true}},
		{"min_score", []interface{}{0, 1}},
		{"max_score", []interface{}{10, 5}},
		{"order", []interface{}{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			idx := indexOf(columns, tt.column)
			if idx < 0 {
				t.Fatalf("column %s missing from %v", tt.column, columns)
			}
			for row, want := range tt.want {
				if got := insert.vars[row*len(columns)+idx]; got != want {
					t.Errorf("row %d %s = %v, want %v", row, tt.column, got, want)
				}
			}
		})
	}

	if i := strings.Index(insert.sql, "RETURNING"); i >= 0 && strings.Contains(insert.sql[i:], "is_required") {
		t.Errorf("is_required must not be filled in by the database: %s", insert.sql)
	}
	if questions[0].IsRequired {
		t.Error("CreateMany() rewrote is_required of the caller's question")
	}
}

func TestAssignmentCreateIfAbsent_OnConflictDoNothing(t *testing.T) {
	repos, log := newDryRunRepositories(t)

	a := &models.Assignment{QuestionnaireID: "q-1", EvaluatorID: "emp-1", EvaluateeID: "emp-2", AssignedBy: "hr-1"}
	if _, err := repos.Assignments.CreateIfAbsent(context.Background(), a); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	insert := log.first(t, `INSERT INTO "evaluation_assignments"`)
	want := `ON CONFLICT ("questionnaire_id","evaluator_id","evaluatee_id") DO NOTHING`
	if !strings.Contains(insert.sql, want) {
		t.Errorf("insert = %s, want %s", insert.sql, want)
	}

	columns := insertColumns(t, insert.sql)
	if idx := indexOf(columns, "status"); idx < 0 || fmt.Sprint(insert.vars[idx]) != string(models.AssignmentStatusPending) {
		t.Errorf("status column missing or not PENDING in %v", columns)
	}
}

func TestAssignmentUpdate_GuardsStatus(t *testing.T) {
	repos, log := newDryRunRepositories(t)

	score := 7.5
	a := &models.Assignment{
		ID:          "a-1",
		EvaluatorID: "emp-1",
		Status:      models.AssignmentStatusCompleted,
		TotalScore:  &score,
	}
	// a dry run affects no rows, so the write reports a conflict
	_ = repos.Assignments.Update(context.Background(), a, models.AssignmentStatusInProgress)

	update := log.first(t, `UPDATE "evaluation_assignments" SET`)
	for _, column := range []string{"status", "responses", "total_score", "comments", "completed_at", "updated_at"} {
		if !strings.Contains(update.sql, `"`+column+`"=`) {
			t.Errorf("update does not set %s: %s", column, update.sql)
		}
	}
	for _, column := range []string{"questionnaire_id", "evaluator_id", "evaluatee_id", "assigned_by", "assigned_at", "created_at"} {
		if strings.Contains(update.sql, `"`+column+`"=`) {
			t.Errorf("update must not set %s: %s", column, update.sql)
		}
	}

	if !strings.Contains(update.sql, "WHERE id = $") || !strings.Contains(update.sql, "AND status = $") {
		t.Fatalf("update is not guarded by id and status: %s", update.sql)
	}
	n := len(update.vars)
	if n < 2 || fmt.Sprint(update.vars[n-2]) != "a-1" || fmt.Sprint(update.vars[n-1]) != string(models.AssignmentStatusInProgress) {
		t.Errorf("where vars = %v, want [a-1 IN_PROGRESS]", update.vars)
	}
}

func TestModelsCarryNoGormHooks(t *testing.T) {
	hooks := []string{
		"BeforeSave", "BeforeCreate", "AfterCreate", "BeforeUpdate", "AfterUpdate",
		"AfterSave", "BeforeDelete", "AfterDelete", "AfterFind",
	}
	for _, model := range []interface{}{&models.Questionnaire{}, &models.Question{}, &models.Assignment{}} {
		typ := reflect.TypeOf(model)
		for _, hook := range hooks {
			if _, ok := typ.MethodByName(hook); ok {
				t.Errorf("%s has method %s, gorm would treat it as a hook", typ.Elem().Name(), hook)
			}
		}
	}
}
