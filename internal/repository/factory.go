// Package repository provides data access layer factories
// #IMPLEMENTATION_DECISION: Factory functions wrap raw MongoDB constructors for our database.Client
package repository

import (
	"github.com/secinto/hrms_backend/internal/database"
)

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(client *database.Client) QuestionnaireRepository {
	return NewMongoQuestionnaireRepository(client.Database())
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(client *database.Client) QuestionRepository {
	return NewMongoQuestionRepository(client.Database())
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(client *database.Client) AssignmentRepository {
	return NewMongoAssignmentRepository(client.Database())
}

// NewMongoRepositories creates all evaluation repositories on one MongoDB client
func NewMongoRepositories(client *database.Client) Repositories {
	return Repositories{
		Questionnaires: NewQuestionnaireRepository(client),
		Questions:      NewQuestionRepository(client),
		Assignments:    NewAssignmentRepository(client),
		Tx:             client,
	}
}
