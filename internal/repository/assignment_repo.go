package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secinto/hrms_backend/internal/models"
)

// MongoAssignmentRepository implements AssignmentRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new MongoDB assignment repository
func NewMongoAssignmentRepository(db *mongo.Database) *MongoAssignmentRepository {
	return &MongoAssignmentRepository{
		collection: db.Collection(models.Assignment{}.CollectionName()),
	}
}

// CreateIfAbsent inserts the assignment unless its pairing already exists
// #IMPLEMENTATION_DECISION: Upsert with $setOnInsert on the unique pairing index, so two
// concurrent callers racing on the same pairing cannot both insert
func (r *MongoAssignmentRepository) CreateIfAbsent(ctx context.Context, assignment *models.Assignment) (bool, error) {
	assignment.PrepareCreate()
	filter := bson.M{
		"questionnaire_id": assignment.QuestionnaireID,
		"evaluator_id":     assignment.EvaluatorID,
		"evaluatee_id":     assignment.EvaluateeID,
	}
	update := bson.M{"$setOnInsert": assignment}
	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.UpsertedCount == 1, nil
}

// GetByID finds an assignment by ID
func (r *MongoAssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Update updates an assignment still in status expected
// #IMPLEMENTATION_DECISION: The status is part of the filter, a concurrent transition leaves nothing to match
func (r *MongoAssignmentRepository) Update(ctx context.Context, assignment *models.Assignment, expected models.AssignmentStatus) error {
	assignment.Touch()
	filter := bson.M{"_id": assignment.ID, "status": expected}
	set := bson.M{
		"status":     assignment.Status,
		"responses":  assignment.Responses,
		"comments":   assignment.Comments,
		"updated_at": assignment.UpdatedAt,
	}
	unset := bson.M{}
	if assignment.TotalScore != nil {
		set["total_score"] = *assignment.TotalScore
	} else {
		unset["total_score"] = ""
	}
	if assignment.CompletedAt != nil {
		set["completed_at"] = *assignment.CompletedAt
	} else {
		unset["completed_at"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.staleWrite(ctx, assignment.ID)
	}
	return nil
}

// staleWrite explains an update that matched no document
func (r *MongoAssignmentRepository) staleWrite(ctx context.Context, id string) error {
	var current struct {
		Status models.AssignmentStatus `bson:"status"`
	}
	opts := options.FindOne().SetProjection(bson.M{"status": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&current)
	if err == mongo.ErrNoDocuments {
		return models.ErrAssignmentNotFound
	}
	if err != nil {
		return err
	}
	return models.StaleWriteError(current.Status)
}

// Delete deletes an assignment
func (r *MongoAssignmentRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrAssignmentNotFound
	}
	return nil
}

// List lists assignments matching the filter
func (r *MongoAssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.QuestionnaireID != "" {
		query["questionnaire_id"] = filter.QuestionnaireID
	}
	if filter.EvaluatorID != "" {
		query["evaluator_id"] = filter.EvaluatorID
	}
	if filter.EvaluateeID != "" {
		query["evaluatee_id"] = filter.EvaluateeID
	}
	if filter.AssignedFrom != nil || filter.AssignedTo != nil {
		assignedAt := bson.M{}
		if filter.AssignedFrom != nil {
			assignedAt["$gte"] = *filter.AssignedFrom
		}
		if filter.AssignedTo != nil {
			assignedAt["$lte"] = *filter.AssignedTo
		}
		query["assigned_at"] = assignedAt
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []models.Assignment{}
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}

	return assignments, nil
}

// CountByQuestionnaire counts the assignments that reference a questionnaire
func (r *MongoAssignmentRepository) CountByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	return r.collection.CountDocuments(ctx, filter)
}

// Ensure MongoAssignmentRepository implements AssignmentRepository
var _ AssignmentRepository = (*MongoAssignmentRepository)(nil)
