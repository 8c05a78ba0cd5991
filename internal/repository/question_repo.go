package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secinto/hrms_backend/internal/models"
)

// MongoQuestionRepository implements QuestionRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionRepository creates a new MongoDB question repository
func NewMongoQuestionRepository(db *mongo.Database) *MongoQuestionRepository {
	return &MongoQuestionRepository{
		collection: db.Collection(models.Question{}.CollectionName()),
	}
}

// CreateMany creates all questions of one questionnaire
func (r *MongoQuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(questions))
	for i := range questions {
		questions[i].PrepareCreate()
		docs[i] = questions[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateQuestionOrder
	}
	return err
}

// ListByQuestionnaire lists the questions of a questionnaire
func (r *MongoQuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]models.Question, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	findOpts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

// DeleteByQuestionnaire deletes every question of a questionnaire
func (r *MongoQuestionRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID string) (int64, error) {
	filter := bson.M{"questionnaire_id": questionnaireID}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Ensure MongoQuestionRepository implements QuestionRepository
var _ QuestionRepository = (*MongoQuestionRepository)(nil)
