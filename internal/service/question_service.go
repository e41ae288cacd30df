package service

import (
	"aspireedge/internal/model"
	"aspireedge/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestionService handles question bank administration
type QuestionService struct {
	questionRepo repository.QuestionRepo
	logger       *zap.Logger
}

// NewQuestionService creates a new question service
func NewQuestionService(questionRepo repository.QuestionRepo, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		logger:       logger,
	}
}

// Create stores a new question. Text must be unique ignoring case and spacing.
func (s *QuestionService) Create(ctx context.Context, question *model.Question) (*model.Question, error) {
	if err := prepareQuestion(question); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, question); err != nil {
		return nil, err
	}

	if question.ID == "" {
		question.ID = uuid.New().String()
	} else if existing, err := s.questionRepo.GetByID(ctx, question.ID); err != nil {
		return nil, fmt.Errorf("load question %s: %w", question.ID, err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: id %s is taken", ErrInvalidQuestion, question.ID)
	}

	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	if err := s.questionRepo.Create(ctx, question); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateQuestion, err)
		}
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.logger.Debug("question created", zap.String("questionId", question.ID))
	return question, nil
}

// Update replaces an existing question
func (s *QuestionService) Update(ctx context.Context, question *model.Question) (*model.Question, error) {
	existing, err := s.Get(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	if err := prepareQuestion(question); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, question); err != nil {
		return nil, err
	}

	question.CreatedAt = existing.CreatedAt
	question.UpdatedAt = time.Now()
	if err := s.questionRepo.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateQuestion, err)
		}
		return nil, fmt.Errorf("update question %s: %w", question.ID, err)
	}

	s.logger.Debug("question updated", zap.String("questionId", question.ID))
	return question, nil
}

// Get retrieves a question by ID
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", id, err)
	}
	if question == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return question, nil
}

// List returns the whole bank
func (s *QuestionService) List(ctx context.Context) ([]*model.Question, error) {
	questions, err := s.questionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []*model.Question{}
	}
	return questions, nil
}

// Delete removes a question from the bank. Quizzes still referencing it will
// fail with ErrQuestionNotFound when it is selected.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	deleted, err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	s.logger.Debug("question deleted", zap.String("questionId", id))
	return nil
}

func (s *QuestionService) checkDuplicate(ctx context.Context, question *model.Question) error {
	other, err := s.questionRepo.GetByTextKey(ctx, question.TextKey)
	if err != nil {
		return fmt.Errorf("check duplicate text: %w", err)
	}
	if other != nil && other.ID != question.ID {
		return fmt.Errorf("%w (id %s)", ErrDuplicateQuestion, other.ID)
	}
	return nil
}

func prepareQuestion(question *model.Question) error {
	question.ID = strings.TrimSpace(question.ID)
	question.Text = strings.TrimSpace(question.Text)
	if question.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	if question.QuestionType == "" {
		question.QuestionType = model.QuestionTypeMultipleChoice
	}
	if !question.QuestionType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, question.QuestionType)
	}
	if question.QuestionType == model.QuestionTypeMultipleChoice && len(question.Answers) == 0 {
		return fmt.Errorf("%w: multiple-choice questions need answers", ErrInvalidQuestion)
	}
	if question.Answers == nil {
		question.Answers = []model.Answer{}
	}
	question.TextKey = model.NormalizeText(question.Text)
	return nil
}
