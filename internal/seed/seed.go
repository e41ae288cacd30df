// Package seed loads a quiz and its question bank from a YAML fixture.
package seed

import (
	"aspireedge/internal/model"
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document accepted by the seed command
type Fixture struct {
	Quiz      QuizFixture       `yaml:"quiz"`
	Questions []QuestionFixture `yaml:"questions"`
}

type QuizFixture struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Opening     []string `yaml:"opening"`
	DefaultFlow []string `yaml:"default_flow"`
	MainBank    []string `yaml:"main_bank"`
}

type QuestionFixture struct {
	ID      string          `yaml:"id"`
	Type    string          `yaml:"type"`
	Text    string          `yaml:"text"`
	Answers []AnswerFixture `yaml:"answers"`
}

type AnswerFixture struct {
	Text   string             `yaml:"text"`
	Scores map[string]float64 `yaml:"scores"`
}

// Parse decodes and validates a fixture
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks ids are present and unique and that every pool entry
// points at a question of the fixture
func (f *Fixture) Validate() error {
	if strings.TrimSpace(f.Quiz.ID) == "" {
		return fmt.Errorf("quiz id is required")
	}

	known := make(map[string]struct{}, len(f.Questions))
	texts := make(map[string]string, len(f.Questions))
	for i, q := range f.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if _, dup := known[q.ID]; dup {
			return fmt.Errorf("question id %s is repeated", q.ID)
		}
		if q.Type != "" && !model.QuestionType(q.Type).Valid() {
			return fmt.Errorf("question %s has unknown type %q", q.ID, q.Type)
		}
		key := model.NormalizeText(q.Text)
		if key == "" {
			return fmt.Errorf("question %s has no text", q.ID)
		}
		if other, dup := texts[key]; dup {
			return fmt.Errorf("questions %s and %s have the same text", other, q.ID)
		}
		known[q.ID] = struct{}{}
		texts[key] = q.ID
	}

	pools := map[string][]string{
		"opening":      f.Quiz.Opening,
		"default_flow": f.Quiz.DefaultFlow,
		"main_bank":    f.Quiz.MainBank,
	}
	for name, ids := range pools {
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%s references unknown question %s", name, id)
			}
		}
	}
	return nil
}

// QuizModel converts the quiz section
func (f *Fixture) QuizModel() *model.Quiz {
	return &model.Quiz{
		ID:                     f.Quiz.ID,
		Title:                  f.Quiz.Title,
		OpeningQuestionIDs:     nonNil(f.Quiz.Opening),
		DefaultFlowQuestionIDs: nonNil(f.Quiz.DefaultFlow),
		MainBankQuestionIDs:    nonNil(f.Quiz.MainBank),
	}
}

// QuestionModels converts the question section. Type defaults to multiple-choice.
func (f *Fixture) QuestionModels() []*model.Question {
	out := make([]*model.Question, 0, len(f.Questions))
	for _, q := range f.Questions {
		qt := model.QuestionType(q.Type)
		if qt == "" {
			qt = model.QuestionTypeMultipleChoice
		}
		answers := make([]model.Answer, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, model.Answer{Text: a.Text, Scores: model.Scores(a.Scores)})
		}
		out = append(out, &model.Question{
			ID:           q.ID,
			QuestionType: qt,
			Text:         strings.TrimSpace(q.Text),
			TextKey:      model.NormalizeText(q.Text),
			Answers:      answers,
		})
	}
	return out
}

// QuizWriter persists quiz definitions
type QuizWriter interface {
	Upsert(ctx context.Context, quiz *model.Quiz) error
}

// QuestionWriter persists questions
type QuestionWriter interface {
	GetByID(ctx context.Context, id string) (*model.Question, error)
	Create(ctx context.Context, question *model.Question) error
	Update(ctx context.Context, question *model.Question) error
}

// Summary counts what Apply changed
type Summary struct {
	Created int
	Updated int
}

// Apply writes the fixture. Running it twice updates instead of duplicating.
func Apply(ctx context.Context, f *Fixture, quizzes QuizWriter, questions QuestionWriter) (Summary, error) {
	var sum Summary
	now := time.Now()
	for _, q := range f.QuestionModels() {
		existing, err := questions.GetByID(ctx, q.ID)
		if err != nil {
			return sum, fmt.Errorf("load question %s: %w", q.ID, err)
		}
		q.UpdatedAt = now
		if existing == nil {
			q.CreatedAt = now
			if err := questions.Create(ctx, q); err != nil {
				return sum, fmt.Errorf("create question %s: %w", q.ID, err)
			}
			sum.Created++
			continue
		}
		q.CreatedAt = existing.CreatedAt
		if err := questions.Update(ctx, q); err != nil {
			return sum, fmt.Errorf("update question %s: %w", q.ID, err)
		}
		sum.Updated++
	}

	if err := quizzes.Upsert(ctx, f.QuizModel()); err != nil {
		return sum, fmt.Errorf("save quiz %s: %w", f.Quiz.ID, err)
	}
	return sum, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
