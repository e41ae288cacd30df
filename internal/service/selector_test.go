package service

import (
	"aspireedge/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSelector(repo *fakeQuestionRepo) *QuestionSelector {
	return NewQuestionSelector(repo, DefaultSelectorConfig(), zap.NewNop())
}

func TestSelect_OpeningDrawsFromOpeningPool(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("o1"), mcQuestion("o2"), mcQuestion("o3"), mcQuestion("d1"))
	sel := newTestSelector(repo)
	quiz := &model.Quiz{
		ID:                     "q",
		OpeningQuestionIDs:     []string{"o1", "o2", "o3"},
		DefaultFlowQuestionIDs: []string{"d1"},
	}

	for i := 0; i < 50; i++ {
		d, err := sel.Select(context.Background(), quiz, nil, model.Scores{"social": 4})
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, d.Status)
		assert.Equal(t, model.StageOpening, d.Stage)
		assert.Contains(t, quiz.OpeningQuestionIDs, d.QuestionID)
		require.NotNil(t, d.Question)
		assert.Equal(t, d.QuestionID, d.Question.ID)
	}
	assert.Zero(t, repo.getByIDs, "opening stage must not scan the bank")
}

func TestSelect_OpeningUsesPicker(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("o1"), mcQuestion("o2"), mcQuestion("o3"))
	sel := newTestSelector(repo)
	picker := &fixedPicker{index: 2}
	sel.SetPicker(picker)

	d, err := sel.Select(context.Background(), &model.Quiz{OpeningQuestionIDs: []string{"o1", "o2", "o3"}}, []string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "o3", d.QuestionID)
	assert.Equal(t, 3, picker.lastN)
}

func TestSelect_EmptyOpeningPoolCompletes(t *testing.T) {
	sel := newTestSelector(newFakeQuestionRepo())
	scores := model.Scores{"artistic": 1}

	d, err := sel.Select(context.Background(), &model.Quiz{ID: "q"}, nil, scores)
	require.NoError(t, err)
	assert.True(t, d.Completed())
	assert.False(t, d.Inconclusive)
	assert.Equal(t, model.ReasonNoOpeningQuestion, d.Reason)
	assert.Equal(t, scores, d.FinalScores)
	assert.Nil(t, d.Question)
}

func TestSelect_DefaultFlowFollowsSequenceOrder(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("d1"), mcQuestion("d2"), mcQuestion("d3"))
	sel := newTestSelector(repo)
	quiz := &model.Quiz{
		ID:                     "q",
		OpeningQuestionIDs:     []string{"o1"},
		DefaultFlowQuestionIDs: []string{"d1", "d2", "d3"},
		MainBankQuestionIDs:    []string{"m1"},
	}

	tests := []struct {
		name     string
		answered []string
		scores   model.Scores
		want     string
	}{
		{"empty tally", []string{"o1"}, nil, "d1"},
		{"zero and negative scores", []string{"o1", "d1"}, model.Scores{"social": 0, "realistic": -2}, "d2"},
		{"skips answered out of order", []string{"d2"}, model.Scores{"social": 0}, "d1"},
		{"last remaining", []string{"d1", "d2", "o1"}, model.Scores{}, "d3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := sel.Select(context.Background(), quiz, tt.answered, tt.scores)
			require.NoError(t, err)
			assert.Equal(t, model.StageDefaultFlow, d.Stage)
			assert.Equal(t, tt.want, d.QuestionID)
			assert.Equal(t, tt.want, d.Question.ID)
		})
	}
	assert.Zero(t, repo.getByIDs)
}

func TestSelect_DefaultFlowExhaustedIsInconclusive(t *testing.T) {
	sel := newTestSelector(newFakeQuestionRepo())
	quiz := &model.Quiz{DefaultFlowQuestionIDs: []string{"d1", "d2"}, MainBankQuestionIDs: []string{"m1"}}

	d, err := sel.Select(context.Background(), quiz, []string{"d2", "d1"}, model.Scores{"social": -1})
	require.NoError(t, err)
	assert.True(t, d.Completed())
	assert.True(t, d.Inconclusive)
	assert.Equal(t, model.ReasonDefaultFlowExhausted, d.Reason)
	assert.Nil(t, d.FinalScores)
}

func TestSelect_HardCap(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("m1", model.Scores{"social": 1}))
	sel := newTestSelector(repo)
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"m1"}}
	scores := model.Scores{"social": 3, "artistic": 2}

	d, err := sel.Select(context.Background(), quiz, answeredN(30), scores)
	require.NoError(t, err)
	assert.True(t, d.Completed())
	assert.Equal(t, model.ReasonMaxQuestions, d.Reason)
	assert.Equal(t, scores, d.FinalScores)

	d, err = sel.Select(context.Background(), quiz, answeredN(29), scores)
	require.NoError(t, err)
	assert.False(t, d.Completed())
	assert.Equal(t, "m1", d.QuestionID)
}

func TestSelect_ConfidenceCheck(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("m1", model.Scores{"social": 1}))
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"m1"}}

	tests := []struct {
		name     string
		answered int
		scores   model.Scores
		done     bool
	}{
		{"gap reached after minimum", 6, model.Scores{"social": 10, "artistic": 2}, true},
		{"gap above threshold", 12, model.Scores{"social": 20, "artistic": 2, "realistic": 1}, true},
		{"minimum is strict", 5, model.Scores{"social": 10, "artistic": 2}, false},
		{"gap below threshold", 6, model.Scores{"social": 9.9, "artistic": 2}, false},
		{"single category never confident", 6, model.Scores{"social": 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := newTestSelector(repo)
			d, err := sel.Select(context.Background(), quiz, answeredN(tt.answered), tt.scores)
			require.NoError(t, err)
			assert.Equal(t, tt.done, d.Completed())
			if tt.done {
				assert.Equal(t, model.ReasonConfident, d.Reason)
				assert.Equal(t, tt.scores, d.FinalScores)
			} else {
				assert.Equal(t, "m1", d.QuestionID)
			}
		})
	}
}

func TestSelect_BankExhausted(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("m1"), mcQuestion("m2"))
	sel := newTestSelector(repo)
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"m1", "m2"}}
	scores := model.Scores{"social": 3, "artistic": 2}

	d, err := sel.Select(context.Background(), quiz, []string{"m2", "m1"}, scores)
	require.NoError(t, err)
	assert.True(t, d.Completed())
	assert.Equal(t, model.ReasonBankExhausted, d.Reason)
	assert.Equal(t, scores, d.FinalScores)
	assert.Zero(t, repo.getByIDs)
}

func TestSelect_PicksMostDivergentAnswer(t *testing.T) {
	// A's best answer diverges by 5, B's single answer by |3-9| = 6
	a := mcQuestion("A", model.Scores{"investigative": 5}, model.Scores{"investigative": 1, "social": 1})
	b := mcQuestion("B", model.Scores{"investigative": 3, "social": 9})
	repo := newFakeQuestionRepo(a, b)
	sel := newTestSelector(repo)
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"A", "B"}}

	d, err := sel.Select(context.Background(), quiz, []string{"opening"}, model.Scores{"investigative": 10, "social": 5, "artistic": 1})
	require.NoError(t, err)
	assert.Equal(t, model.StageAdaptive, d.Stage)
	assert.Equal(t, "B", d.QuestionID)
	assert.Equal(t, "B", d.Question.ID)
	assert.Equal(t, 1, repo.getByIDs)
	assert.Zero(t, repo.getByID, "winning record is reused, not fetched again")
}

func TestSelect_SingleCategoryComparesAgainstZero(t *testing.T) {
	// Only "realistic" has a score, so "social" on B must not count
	a := mcQuestion("A", model.Scores{"realistic": 2})
	b := mcQuestion("B", model.Scores{"realistic": -5, "social": 100})
	sel := newTestSelector(newFakeQuestionRepo(a, b))
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"A", "B"}}

	d, err := sel.Select(context.Background(), quiz, []string{"x"}, model.Scores{"realistic": 3})
	require.NoError(t, err)
	assert.Equal(t, "B", d.QuestionID)

	best, divergence := mostDivergent([]*model.Question{a, b}, []string{"A", "B"}, "realistic", "", false)
	assert.Equal(t, b, best)
	assert.Equal(t, 5.0, divergence)
}

func TestSelect_DivergenceTieFirstWins(t *testing.T) {
	a := mcQuestion("A", model.Scores{"social": 4})
	b := mcQuestion("B", model.Scores{"artistic": 4})
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"A", "B"}}
	scores := model.Scores{"social": 6, "artistic": 3}

	d, err := newTestSelector(newFakeQuestionRepo(a, b)).Select(context.Background(), quiz, []string{"x"}, scores)
	require.NoError(t, err)
	assert.Equal(t, "A", d.QuestionID)

	d, err = newTestSelector(newFakeQuestionRepo(b, a)).Select(context.Background(), quiz, []string{"x"}, scores)
	require.NoError(t, err)
	assert.Equal(t, "B", d.QuestionID)
}

func TestSelect_ZeroDivergenceStillBeatsRandomFallback(t *testing.T) {
	a := mcQuestion("A", model.Scores{"conventional": 2})
	sel := newTestSelector(newFakeQuestionRepo(textQuestion("T"), a))
	sel.SetPicker(&fixedPicker{index: 0})
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"T", "A"}}

	d, err := sel.Select(context.Background(), quiz, []string{"x"}, model.Scores{"social": 6, "artistic": 3})
	require.NoError(t, err)
	assert.Equal(t, "A", d.QuestionID)
}

func TestSelect_IgnoresAnswersOnOtherQuestionTypes(t *testing.T) {
	// The open-text item carries a huge score but must not be ranked
	text := textQuestion("T")
	text.Answers = []model.Answer{{Text: "free text", Scores: model.Scores{"social": 100}}}
	mc := mcQuestion("M", model.Scores{"social": 1})
	sel := newTestSelector(newFakeQuestionRepo(text, mc))
	sel.SetPicker(&fixedPicker{index: 0})
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"T", "M"}}

	d, err := sel.Select(context.Background(), quiz, []string{"x"}, model.Scores{"social": 2})
	require.NoError(t, err)
	assert.Equal(t, "M", d.QuestionID)

	best, divergence := mostDivergent([]*model.Question{text, mc}, []string{"T", "M"}, "social", "", false)
	assert.Equal(t, mc, best)
	assert.Equal(t, 1.0, divergence)
}

func TestSelect_FallsBackToRandomWithoutMultipleChoice(t *testing.T) {
	repo := newFakeQuestionRepo(textQuestion("T1"), textQuestion("T2"), textQuestion("T3"))
	sel := newTestSelector(repo)
	picker := &fixedPicker{index: 1}
	sel.SetPicker(picker)
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"T1", "T2", "T3"}}

	d, err := sel.Select(context.Background(), quiz, []string{"T1"}, model.Scores{"social": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, picker.lastN)
	assert.Equal(t, "T3", d.QuestionID)
	assert.Equal(t, model.QuestionTypeOpenText, d.Question.QuestionType)
	assert.Equal(t, 1, repo.getByID)
}

func TestSelect_FallbackWithEmptyAnswers(t *testing.T) {
	// A multiple-choice question without answers never raises the maximum
	sel := newTestSelector(newFakeQuestionRepo(mcQuestion("E")))
	sel.SetPicker(&fixedPicker{index: 0})
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"E"}}

	d, err := sel.Select(context.Background(), quiz, []string{"x"}, model.Scores{"social": 2})
	require.NoError(t, err)
	assert.Equal(t, "E", d.QuestionID)
}

func TestSelect_NeverReselectsAnswered(t *testing.T) {
	strong := mcQuestion("strong", model.Scores{"social": 50})
	weak := mcQuestion("weak", model.Scores{"social": 1})
	sel := newTestSelector(newFakeQuestionRepo(strong, weak))
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"strong", "weak"}}

	d, err := sel.Select(context.Background(), quiz, []string{"strong"}, model.Scores{"social": 2})
	require.NoError(t, err)
	assert.Equal(t, "weak", d.QuestionID)
}

func TestSelect_SkipsMissingCandidates(t *testing.T) {
	repo := newFakeQuestionRepo(mcQuestion("real", model.Scores{"social": 1}))
	sel := newTestSelector(repo)
	quiz := &model.Quiz{MainBankQuestionIDs: []string{"ghost", "real"}}

	d, err := sel.Select(context.Background(), quiz, []string{"x"}, model.Scores{"social": 2})
	require.NoError(t, err)
	assert.Equal(t, "real", d.QuestionID)
}

func TestSelect_DanglingReferenceIsQuestionNotFound(t *testing.T) {
	sel := newTestSelector(newFakeQuestionRepo())
	quiz := &model.Quiz{ID: "q", DefaultFlowQuestionIDs: []string{"missing"}}

	_, err := sel.Select(context.Background(), quiz, []string{"o1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestSelect_StoreErrors(t *testing.T) {
	quiz := &model.Quiz{DefaultFlowQuestionIDs: []string{"d1"}, MainBankQuestionIDs: []string{"m1"}}

	repo := newFakeQuestionRepo(mcQuestion("m1"))
	repo.failBulk = true
	_, err := newTestSelector(repo).Select(context.Background(), quiz, []string{"x"}, model.Scores{"social": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrQuestionNotFound)

	repo = newFakeQuestionRepo(mcQuestion("d1"))
	repo.failGetByID = true
	_, err = newTestSelector(repo).Select(context.Background(), quiz, []string{"x"}, nil)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSelect_DoesNotAliasInputs(t *testing.T) {
	q := mcQuestion("m1", model.Scores{"social": 1})
	sel := newTestSelector(newFakeQuestionRepo(q))
	scores := model.Scores{"social": 3, "artistic": 2}

	d, err := sel.Select(context.Background(), &model.Quiz{}, answeredN(30), scores)
	require.NoError(t, err)
	d.FinalScores["social"] = 100
	assert.Equal(t, 3.0, scores["social"])
}

func TestUnansweredIDs(t *testing.T) {
	answered := map[string]struct{}{"b": {}}
	assert.Equal(t, []string{"a", "c"}, unansweredIDs([]string{"a", "b", "c", "a"}, answered))
	assert.Empty(t, unansweredIDs(nil, answered))
}
