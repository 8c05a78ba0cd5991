package repository

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secinto/hrms_backend/internal/models"
)

// MongoQuestionnaireRepository implements QuestionnaireRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionnaireRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionnaireRepository creates a new MongoDB questionnaire repository
func NewMongoQuestionnaireRepository(db *mongo.Database) *MongoQuestionnaireRepository {
	return &MongoQuestionnaireRepository{
		collection: db.Collection(models.Questionnaire{}.CollectionName()),
	}
}

// Create creates a new questionnaire
func (r *MongoQuestionnaireRepository) Create(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.PrepareCreate()
	_, err := r.collection.InsertOne(ctx, questionnaire)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrAlreadyExists
	}
	return err
}

// GetByID finds a questionnaire by ID
func (r *MongoQuestionnaireRepository) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&questionnaire)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

// GetByIDs finds all questionnaires with the given IDs
func (r *MongoQuestionnaireRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Questionnaire, error) {
	if len(ids) == 0 {
		return []models.Questionnaire{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	return r.find(ctx, filter, options.Find())
}

// Update updates a questionnaire
func (r *MongoQuestionnaireRepository) Update(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.Touch()
	filter := bson.M{"_id": questionnaire.ID}
	update := bson.M{"$set": questionnaire}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}

// Delete deletes a questionnaire
// #CASCADE_STRATEGY: Questions are removed by the service in the same transaction
func (r *MongoQuestionnaireRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrQuestionnaireNotFound
	}

	// Copies keep existing but lose their back-reference
	_, err = r.collection.UpdateMany(ctx,
		bson.M{"template_source_id": id},
		bson.M{"$unset": bson.M{"template_source_id": ""}},
	)
	return err
}

// List lists questionnaires matching the filter
func (r *MongoQuestionnaireRepository) List(ctx context.Context, filter QuestionnaireFilter) ([]models.Questionnaire, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.IsTemplate != nil {
		query["is_template"] = *filter.IsTemplate
	}
	if filter.Search != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, query, findOpts)
}

func (r *MongoQuestionnaireRepository) find(ctx context.Context, filter bson.M, findOpts *options.FindOptions) ([]models.Questionnaire, error) {
	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questionnaires := []models.Questionnaire{}
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}

	return questionnaires, nil
}

// Ensure MongoQuestionnaireRepository implements QuestionnaireRepository
var _ QuestionnaireRepository = (*MongoQuestionnaireRepository)(nil)
