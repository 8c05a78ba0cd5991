// Package postgres implements the repository interfaces on PostgreSQL through gorm
// #ORM_PATTERN: Same contracts as the MongoDB repositories, relational constraints do the enforcing
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/repository"
)

// PostgreSQL error codes the repositories translate
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// pgCode returns the SQLSTATE of a driver error, or an empty string
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation returns true if err is a unique constraint violation
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation returns true if err references a missing parent row
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// NewRepositories creates all evaluation repositories on one PostgreSQL connection
func NewRepositories(pg *database.Postgres) repository.Repositories {
	return repository.Repositories{
		Questionnaires: NewQuestionnaireRepository(pg),
		Questions:      NewQuestionRepository(pg),
		Assignments:    NewAssignmentRepository(pg),
		Tx:             pg,
	}
}
