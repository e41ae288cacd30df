package service

import (
	"aspireedge/internal/cache"
	"aspireedge/internal/model"
	"aspireedge/internal/repository"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// QuizService serves quiz definitions and next-question decisions
type QuizService struct {
	quizRepo      repository.QuizRepo
	quizCache     cache.QuizCache // optional
	selector      *QuestionSelector
	defaultQuizID string
	logger        *zap.Logger
}

// NewQuizService creates a new quiz service. quizCache may be nil.
func NewQuizService(
	quizRepo repository.QuizRepo,
	quizCache cache.QuizCache,
	selector *QuestionSelector,
	defaultQuizID string,
	logger *zap.Logger,
) *QuizService {
	if defaultQuizID == "" {
		defaultQuizID = model.DefaultQuizID
	}
	return &QuizService{
		quizRepo:      quizRepo,
		quizCache:     quizCache,
		selector:      selector,
		defaultQuizID: defaultQuizID,
		logger:        logger,
	}
}

// GetQuiz loads a quiz definition, reading through the cache
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	if s.quizCache != nil {
		quiz, err := s.quizCache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("quiz cache read failed", zap.String("quizId", id), zap.Error(err))
		} else if quiz != nil {
			return quiz, nil
		}
	}

	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quiz %s: %w", id, err)
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
	}

	if s.quizCache != nil {
		if err := s.quizCache.Set(ctx, quiz); err != nil {
			s.logger.Warn("quiz cache write failed", zap.String("quizId", id), zap.Error(err))
		}
	}
	return quiz, nil
}

// UpsertQuiz creates or replaces a quiz definition
func (s *QuizService) UpsertQuiz(ctx context.Context, quiz *model.Quiz) error {
	quiz.ID = strings.TrimSpace(quiz.ID)
	if quiz.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidQuiz)
	}
	if quiz.OpeningQuestionIDs == nil {
		quiz.OpeningQuestionIDs = []string{}
	}
	if quiz.DefaultFlowQuestionIDs == nil {
		quiz.DefaultFlowQuestionIDs = []string{}
	}
	if quiz.MainBankQuestionIDs == nil {
		quiz.MainBankQuestionIDs = []string{}
	}

	if err := s.quizRepo.Upsert(ctx, quiz); err != nil {
		return fmt.Errorf("save quiz %s: %w", quiz.ID, err)
	}
	if s.quizCache != nil {
		if err := s.quizCache.Delete(ctx, quiz.ID); err != nil {
			s.logger.Warn("quiz cache invalidation failed", zap.String("quizId", quiz.ID), zap.Error(err))
		}
	}
	s.logger.Info("quiz saved",
		zap.String("quizId", quiz.ID),
		zap.Int("opening", len(quiz.OpeningQuestionIDs)),
		zap.Int("defaultFlow", len(quiz.DefaultFlowQuestionIDs)),
		zap.Int("mainBank", len(quiz.MainBankQuestionIDs)))
	return nil
}

// NextQuestion decides what the client should see next. Missing request
// fields fall back to the default quiz, an empty tally and no history.
func (s *QuizService) NextQuestion(ctx context.Context, req *model.NextQuestionRequest) (*model.Decision, error) {
	quizID := s.defaultQuizID
	var (
		scores   model.Scores
		answered []string
	)
	if req != nil {
		if id := strings.TrimSpace(req.QuizID); id != "" {
			quizID = id
		}
		scores = req.CurrentScores
		answered = req.AnsweredQuestionIDs
	}
	if scores == nil {
		scores = model.Scores{}
	}

	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	decision, err := s.selector.Select(ctx, quiz, answered, scores)
	if err != nil {
		return nil, err
	}

	if decision.Completed() {
		s.logger.Info("quiz ended",
			zap.String("quizId", quizID),
			zap.String("stage", string(decision.Stage)),
			zap.String("reason", string(decision.Reason)),
			zap.Int("answered", len(answered)),
			zap.Bool("inconclusive", decision.Inconclusive))
	} else {
		s.logger.Debug("next question selected",
			zap.String("quizId", quizID),
			zap.String("stage", string(decision.Stage)),
			zap.String("questionId", decision.QuestionID),
			zap.Int("answered", len(answered)))
	}
	return decision, nil
}
