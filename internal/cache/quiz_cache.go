package cache

import (
	"aspireedge/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuizCache handles Redis operations for quiz definitions
type QuizCache interface {
	Get(ctx context.Context, id string) (*model.Quiz, error)
	Set(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
}

type quizCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuizCache creates a new quiz cache
func NewQuizCache(client *redis.Client, ttl time.Duration) QuizCache {
	return &quizCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *quizCache) key(id string) string {
	return fmt.Sprintf("quiz:%s", id)
}

// Get returns nil, nil on a miss
func (c *quizCache) Get(ctx context.Context, id string) (*model.Quiz, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quiz model.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (c *quizCache) Set(ctx context.Context, quiz *model.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(quiz.ID), data, c.ttl).Err()
}

func (c *quizCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
