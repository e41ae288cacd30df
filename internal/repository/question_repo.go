package repository

import (
	"aspireedge/internal/model"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateKey is returned by writes that hit a unique index, such as
// two questions with the same normalized text
var ErrDuplicateKey = errors.New("duplicate key")

// QuestionRepo handles MongoDB operations for the question bank
type QuestionRepo interface {
	// Basic CRUD Operations
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string) (bool, error)

	// Selection Support
	GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error)

	// Management Methods
	GetByTextKey(ctx context.Context, textKey string) (*model.Question, error)
	GetAll(ctx context.Context) ([]*model.Question, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

// NewQuestionRepo creates a new question repository
func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	return &questionRepo{
		collection: db.Collection("questions"),
	}
}

// EnsureQuestionIndexes creates the unique index on textKey so concurrent
// writers of the same text cannot both succeed
func EnsureQuestionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("questions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "textKey", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("textKey_unique"),
	})
	if err != nil {
		return fmt.Errorf("create textKey index: %w", err)
	}
	return nil
}

func (r *questionRepo) Create(ctx context.Context, question *model.Question) error {
	_, err := r.collection.InsertOne(ctx, question)
	return wrapWriteErr(err)
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *questionRepo) Update(ctx context.Context, question *model.Question) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	return wrapWriteErr(err)
}

func wrapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// Delete reports whether a document was removed
func (r *questionRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// GetByIDs loads all requested questions with a single query. Missing ids
// are simply absent from the result and the order is the server's.
func (r *questionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *questionRepo) GetByTextKey(ctx context.Context, textKey string) (*model.Question, error) {
	return r.findOne(ctx, bson.M{"textKey": textKey})
}

func (r *questionRepo) GetAll(ctx context.Context) ([]*model.Question, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *questionRepo) findOne(ctx context.Context, filter bson.M) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, filter).Decode(&question)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
