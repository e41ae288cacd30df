package service

import (
	"aspireedge/internal/model"
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
)

// QuestionFetcher is the part of the question store the selector reads from
type QuestionFetcher interface {
	GetByID(ctx context.Context, id string) (*model.Question, error)
	// GetByIDs returns the questions that exist, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error)
}

// Picker returns a uniformly distributed int in [0, n)
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// SelectorConfig holds the termination thresholds of the adaptive stage
type SelectorConfig struct {
	// ConfidenceThreshold is the minimum gap between the two leading categories
	ConfidenceThreshold float64
	// MaxQuestions ends the quiz once this many questions are answered
	MaxQuestions int
	// MinQuestionsForConfidence must be strictly exceeded before the confidence check runs
	MinQuestionsForConfidence int
}

// DefaultSelectorConfig returns the production thresholds
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		ConfidenceThreshold:       8,
		MaxQuestions:              30,
		MinQuestionsForConfidence: 5,
	}
}

// QuestionSelector decides which question to serve next. It keeps no
// session state: everything it needs comes in with each call, so one
// selector is shared by all requests.
type QuestionSelector struct {
	questions QuestionFetcher
	cfg       SelectorConfig
	picker    Picker
	logger    *zap.Logger
}

// NewQuestionSelector creates a selector reading candidates from questions
func NewQuestionSelector(questions QuestionFetcher, cfg SelectorConfig, logger *zap.Logger) *QuestionSelector {
	return &QuestionSelector{
		questions: questions,
		cfg:       cfg,
		picker:    globalPicker{},
		logger:    logger,
	}
}

// SetPicker replaces the random source used for the opening pick and the
// no-divergence fallback
func (s *QuestionSelector) SetPicker(p Picker) {
	s.picker = p
}

// Select returns the next decision for a session that has answered the
// given ids and accumulated scores. The returned decision has Question
// resolved when the quiz is still in progress.
func (s *QuestionSelector) Select(ctx context.Context, quiz *model.Quiz, answered []string, scores model.Scores) (*model.Decision, error) {
	answeredSet := make(map[string]struct{}, len(answered))
	for _, id := range answered {
		answeredSet[id] = struct{}{}
	}

	var (
		decision  *model.Decision
		candidate *model.Question
		err       error
	)
	switch {
	case len(answered) == 0:
		decision = s.selectOpening(quiz, scores)
	case scores.AllNonPositive():
		decision = s.selectDefaultFlow(quiz, answeredSet)
	default:
		decision, candidate, err = s.selectAdaptive(ctx, quiz, len(answered), answeredSet, scores)
		if err != nil {
			return nil, err
		}
	}

	if decision.Completed() {
		return decision, nil
	}

	if candidate == nil {
		candidate, err = s.questions.GetByID(ctx, decision.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("load question %s: %w", decision.QuestionID, err)
		}
		if candidate == nil {
			return nil, fmt.Errorf("%w: %s referenced by quiz %s", ErrQuestionNotFound, decision.QuestionID, quiz.ID)
		}
	}
	served := *candidate
	served.ID = decision.QuestionID
	decision.Question = &served
	return decision, nil
}

func (s *QuestionSelector) selectOpening(quiz *model.Quiz, scores model.Scores) *model.Decision {
	pool := quiz.OpeningQuestionIDs
	if len(pool) == 0 {
		// Nothing to open with: end with whatever tally the client sent
		return completed(model.StageOpening, model.ReasonNoOpeningQuestion, scores)
	}
	return inProgress(model.StageOpening, pool[s.picker.IntN(len(pool))])
}

func (s *QuestionSelector) selectDefaultFlow(quiz *model.Quiz, answered map[string]struct{}) *model.Decision {
	for _, id := range quiz.DefaultFlowQuestionIDs {
		if _, done := answered[id]; !done {
			return inProgress(model.StageDefaultFlow, id)
		}
	}
	return &model.Decision{
		Status:       model.StatusCompleted,
		Stage:        model.StageDefaultFlow,
		Inconclusive: true,
		Reason:       model.ReasonDefaultFlowExhausted,
	}
}

// selectAdaptive runs the termination checks and then picks the most
// divergent unanswered main-bank question. The candidate record is returned
// so the caller does not fetch it twice.
func (s *QuestionSelector) selectAdaptive(ctx context.Context, quiz *model.Quiz, answeredCount int, answered map[string]struct{}, scores model.Scores) (*model.Decision, *model.Question, error) {
	ranked := scores.Ranked()

	if reason, done := s.shouldTerminate(answeredCount, ranked); done {
		return completed(model.StageAdaptive, reason, scores), nil, nil
	}

	available := unansweredIDs(quiz.MainBankQuestionIDs, answered)
	if len(available) == 0 {
		return completed(model.StageAdaptive, model.ReasonBankExhausted, scores), nil, nil
	}

	fetched, err := s.questions.GetByIDs(ctx, available)
	if err != nil {
		return nil, nil, fmt.Errorf("load main bank candidates: %w", err)
	}

	top1 := ranked[0].Category
	top2, hasTop2 := "", len(ranked) > 1
	if hasTop2 {
		top2 = ranked[1].Category
	}

	best, divergence := mostDivergent(fetched, available, top1, top2, hasTop2)
	if best != nil {
		s.logger.Debug("selected most divergent question",
			zap.String("quizId", quiz.ID),
			zap.String("questionId", best.ID),
			zap.Float64("divergence", divergence),
			zap.String("top1", top1),
			zap.String("top2", top2))
		return inProgress(model.StageAdaptive, best.ID), best, nil
	}

	id := available[s.picker.IntN(len(available))]
	s.logger.Debug("no divergent question, picking at random",
		zap.String("quizId", quiz.ID),
		zap.String("questionId", id),
		zap.Int("candidates", len(available)))
	return inProgress(model.StageAdaptive, id), nil, nil
}

// shouldTerminate applies the hard cap and then the confidence check.
// The cap uses >= while the confidence minimum uses a strict >, keep both.
func (s *QuestionSelector) shouldTerminate(answeredCount int, ranked []model.CategoryScore) (model.CompletionReason, bool) {
	if answeredCount >= s.cfg.MaxQuestions {
		return model.ReasonMaxQuestions, true
	}
	if answeredCount > s.cfg.MinQuestionsForConfidence && len(ranked) >= 2 {
		if ranked[0].Score-ranked[1].Score >= s.cfg.ConfidenceThreshold {
			return model.ReasonConfident, true
		}
	}
	return "", false
}

// mostDivergent returns the multiple-choice candidate owning the single
// answer with the largest |score(top1) - score(top2)|. The first question to
// raise the maximum wins, in the order the store returned them. Records whose
// id is not among available are ignored.
func mostDivergent(fetched []*model.Question, available []string, top1, top2 string, hasTop2 bool) (*model.Question, float64) {
	allowed := make(map[string]struct{}, len(available))
	for _, id := range available {
		allowed[id] = struct{}{}
	}

	var best *model.Question
	maxDivergence := -1.0
	for _, q := range fetched {
		if q == nil || q.QuestionType != model.QuestionTypeMultipleChoice {
			continue
		}
		if _, ok := allowed[q.ID]; !ok {
			continue
		}
		for _, answer := range q.Answers {
			score2 := 0.0
			if hasTop2 {
				score2 = answer.Scores.Get(top2)
			}
			divergence := math.Abs(answer.Scores.Get(top1) - score2)
			if divergence > maxDivergence {
				maxDivergence = divergence
				best = q
			}
		}
	}
	return best, maxDivergence
}

// unansweredIDs keeps the order of pool and drops answered and repeated ids
func unansweredIDs(pool []string, answered map[string]struct{}) []string {
	out := make([]string, 0, len(pool))
	seen := make(map[string]struct{}, len(pool))
	for _, id := range pool {
		if _, done := answered[id]; done {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func inProgress(stage model.Stage, questionID string) *model.Decision {
	return &model.Decision{
		Status:     model.StatusInProgress,
		Stage:      stage,
		QuestionID: questionID,
	}
}

func completed(stage model.Stage, reason model.CompletionReason, scores model.Scores) *model.Decision {
	return &model.Decision{
		Status:      model.StatusCompleted,
		Stage:       stage,
		FinalScores: scores.Clone(),
		Reason:      reason,
	}
}
