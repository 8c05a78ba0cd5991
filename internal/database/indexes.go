package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/models"
)

// IndexManager handles MongoDB index creation and management
// #INDEX_IMPLEMENTATION: Uniqueness rules of the evaluation module live here, not in app code
type IndexManager struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *mongo.Database, logger *zap.Logger) *IndexManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexManager{db: db, logger: logger}
}

// CreateAllIndexes creates all indexes for all collections
// #MIGRATION_DECISION: Indexes created at application startup if they don't exist
func (m *IndexManager) CreateAllIndexes(ctx context.Context) error {
	m.logger.Info("creating MongoDB indexes")

	if err := m.createQuestionnaireIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create questionnaire indexes: %w", err)
	}

	if err := m.createQuestionIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}

	if err := m.createAssignmentIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create assignment indexes: %w", err)
	}

	m.logger.Info("all indexes created")
	return nil
}

// createQuestionnaireIndexes creates indexes for the questionnaires collection
// #INDEX_IMPLEMENTATION: status + is_template for template listing, created_by for authors
func (m *IndexManager) createQuestionnaireIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Questionnaire{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "is_template", Value: 1}},
			Options: options.Index().SetName("idx_status_template"),
		},
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}},
			Options: options.Index().SetName("idx_created_by"),
		},
		{
			Keys:    bson.D{{Key: "template_source_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_template_source_sparse"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createQuestionIndexes creates indexes for the questions collection
// #INDEX_IMPLEMENTATION: order is unique within its questionnaire
func (m *IndexManager) createQuestionIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Question{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionnaire_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_questionnaire_order_unique"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// createAssignmentIndexes creates indexes for the evaluation_assignments collection
// #INDEX_IMPLEMENTATION: pairing unique, evaluator inbox, assigned_at ordering
func (m *IndexManager) createAssignmentIndexes(ctx context.Context) error {
	collection := m.db.Collection(models.Assignment{}.CollectionName())

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "questionnaire_id", Value: 1},
				{Key: "evaluator_id", Value: 1},
				{Key: "evaluatee_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_pairing_unique"),
		},
		{
			Keys:    bson.D{{Key: "evaluator_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_evaluator_status"),
		},
		{
			Keys:    bson.D{{Key: "assigned_at", Value: -1}},
			Options: options.Index().SetName("idx_assigned_at_desc"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
