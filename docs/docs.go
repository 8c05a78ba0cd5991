// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "HRMS Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/evaluation/questionnaires": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "List questionnaires",
                "parameters": [
                    {"type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "boolean", "description": "Filter by template flag", "name": "is_template", "in": "query"},
                    {"type": "string", "description": "Case-insensitive title search", "name": "search", "in": "query"},
                    {"type": "boolean", "description": "Load questions", "name": "include_questions", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.QuestionnaireListResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Questionnaires"],
                "summary": "Create a questionnaire",
                "parameters": [
                    {"description": "Questionnaire definition", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.QuestionnaireInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.QuestionnaireDetail"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/evaluation/questionnaires/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Get questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.QuestionnaireDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Questionnaires"],
                "summary": "Update questionnaire",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.QuestionnaireInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.QuestionnaireDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Delete questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/evaluation/questionnaires/{id}/publish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Publish questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/questionnaires/{id}/unpublish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Unpublish questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/questionnaires/{id}/archive": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Archive questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/questionnaires/{id}/duplicate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "Duplicate questionnaire",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/services.QuestionnaireDetail"}}}
            }
        },
        "/evaluation/templates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Questionnaires"],
                "summary": "List questionnaire templates",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.QuestionnaireListResponse"}}}
            }
        },
        "/evaluation/assignments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "evaluation_questionnaire_id", "in": "query"},
                    {"type": "string", "name": "evaluator_id", "in": "query"},
                    {"type": "string", "name": "evaluatee_id", "in": "query"},
                    {"type": "string", "name": "assigned_from", "in": "query"},
                    {"type": "string", "name": "assigned_to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AssignmentListResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Assign a questionnaire",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.AssignRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.CreatedAssignmentsResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/evaluation/assignments/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Bulk assign a questionnaire",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.BulkAssignRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/services.BulkAssignResult"}}}
            }
        },
        "/evaluation/assignments/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Override assignment",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.AdminUpdateInput"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/evaluation/assignments/{id}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Assignments"],
                "summary": "Start assignment",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/assignments/{id}/draft": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Save draft responses",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.ResponseInput"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/assignments/{id}/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Submit assignment",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.ResponseInput"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/my-assignments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Assignments"],
                "summary": "List my assignments",
                "parameters": [{"type": "string", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AssignmentListResponse"}}}
            }
        },
        "/evaluation/reports": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reports"],
                "summary": "Evaluation report",
                "parameters": [
                    {"type": "string", "default": "last_30_days", "name": "range", "in": "query"},
                    {"type": "string", "name": "evaluation_questionnaire_id", "in": "query"},
                    {"type": "integer", "default": 10, "name": "top_n", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation/reports/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Reports"],
                "summary": "Export evaluation report",
                "parameters": [
                    {"type": "string", "default": "last_30_days", "name": "range", "in": "query"},
                    {"type": "string", "name": "evaluation_questionnaire_id", "in": "query"},
                    {"type": "integer", "default": 10, "name": "top_n", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/models.FieldError"}},
                "request_id": {"type": "string"}
            }
        },
        "models.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.QuestionnaireListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/services.QuestionnaireDetail"}},
                "count": {"type": "integer"}
            }
        },
        "handlers.AssignmentListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer"}
            }
        },
        "handlers.CreatedAssignmentsResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer"}
            }
        },
        "services.QuestionInput": {
            "type": "object",
            "required": ["question_text", "question_type"],
            "properties": {
                "question_text": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "question_type": {"type": "string", "enum": ["rating", "text", "multiple_choice", "yes_no", "scale"]},
                "min_score": {"type": "integer"},
                "max_score": {"type": "integer"},
                "is_required": {"type": "boolean"},
                "options": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.QuestionnaireInput": {
            "type": "object",
            "required": ["title", "questions"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["draft", "published", "archived"]},
                "is_template": {"type": "boolean"},
                "evaluation_period": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "instructions": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/services.QuestionInput"}}
            }
        },
        "services.QuestionnaireDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "string"},
                "is_template": {"type": "boolean"},
                "questions": {"type": "array", "items": {"type": "object"}},
                "assignments": {"type": "array", "items": {"type": "object"}}
            }
        },
        "services.Pair": {
            "type": "object",
            "required": ["evaluator_id", "evaluatee_id"],
            "properties": {
                "evaluator_id": {"type": "string"},
                "evaluatee_id": {"type": "string"},
                "allow_self_evaluation": {"type": "boolean"}
            }
        },
        "services.AssignRequest": {
            "type": "object",
            "required": ["evaluation_questionnaire_id", "assignments"],
            "properties": {
                "evaluation_questionnaire_id": {"type": "string"},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/services.Pair"}}
            }
        },
        "services.BulkAssignRequest": {
            "type": "object",
            "required": ["evaluation_questionnaire_id", "evaluator_ids", "evaluatee_ids"],
            "properties": {
                "evaluation_questionnaire_id": {"type": "string"},
                "evaluator_ids": {"type": "array", "items": {"type": "string"}},
                "evaluatee_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.BulkAssignResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer"}
            }
        },
        "services.ResponseInput": {
            "type": "object",
            "required": ["responses"],
            "properties": {
                "responses": {"type": "object", "additionalProperties": true},
                "comments": {"type": "string"}
            }
        },
        "services.AdminUpdateInput": {
            "type": "object",
            "required": ["responses", "status"],
            "properties": {
                "responses": {"type": "object", "additionalProperties": true},
                "total_score": {"type": "number"},
                "comments": {"type": "string"},
                "status": {"type": "string", "enum": ["in_progress", "completed", "cancelled"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter your bearer token in the format: Bearer {token}",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "HRMS Evaluation API",
	Description:      "Performance evaluation questionnaires, assignments, scoring and reports",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
