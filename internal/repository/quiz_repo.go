package repository

import (
	"aspireedge/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuizRepo handles MongoDB operations for quiz definitions
type QuizRepo interface {
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	Upsert(ctx context.Context, quiz *model.Quiz) error
}

type quizRepo struct {
	collection *mongo.Collection
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
	}
}

// GetByID returns nil, nil when the quiz does not exist
func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) Upsert(ctx context.Context, quiz *model.Quiz) error {
	quiz.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": quiz.ID}, quiz, options.Replace().SetUpsert(true))
	return err
}
