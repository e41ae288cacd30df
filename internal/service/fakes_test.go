package service

import (
	"aspireedge/internal/model"
	"aspireedge/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
)

var errStoreDown = errors.New("store unavailable")

// fakeQuestionRepo keeps questions in insertion order so GetByIDs has a
// pinned enumeration order
type fakeQuestionRepo struct {
	mu          sync.Mutex
	order       []string
	byID        map[string]*model.Question
	getByIDs    int
	getByID     int
	failGetByID bool
	failBulk    bool

	// uniqueViolation makes writes fail the way the textKey index does
	uniqueViolation bool
}

func newFakeQuestionRepo(questions ...*model.Question) *fakeQuestionRepo {
	r := &fakeQuestionRepo{byID: make(map[string]*model.Question)}
	for _, q := range questions {
		r.order = append(r.order, q.ID)
		r.byID[q.ID] = q
	}
	return r
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uniqueViolation {
		return fmt.Errorf("%w: E11000 textKey_unique", repository.ErrDuplicateKey)
	}
	r.order = append(r.order, q.ID)
	r.byID[q.ID] = q
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByID++
	if r.failGetByID {
		return nil, errStoreDown
	}
	return r.byID[id], nil
}

func (r *fakeQuestionRepo) Update(_ context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uniqueViolation {
		return fmt.Errorf("%w: E11000 textKey_unique", repository.ErrDuplicateKey)
	}
	r.byID[q.ID] = q
	return nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByIDs++
	if r.failBulk {
		return nil, errStoreDown
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*model.Question
	for _, id := range r.order {
		if _, ok := wanted[id]; ok {
			out = append(out, r.byID[id])
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) GetByTextKey(_ context.Context, textKey string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if q := r.byID[id]; q.TextKey == textKey {
			return q, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) GetAll(_ context.Context) ([]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Question, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

type fakeQuizRepo struct {
	quizzes map[string]*model.Quiz
	gets    int
	fail    bool
}

func newFakeQuizRepo(quizzes ...*model.Quiz) *fakeQuizRepo {
	r := &fakeQuizRepo{quizzes: make(map[string]*model.Quiz)}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	r.gets++
	if r.fail {
		return nil, errStoreDown
	}
	return r.quizzes[id], nil
}

func (r *fakeQuizRepo) Upsert(_ context.Context, quiz *model.Quiz) error {
	r.quizzes[quiz.ID] = quiz
	return nil
}

type fakeQuizCache struct {
	quizzes map[string]*model.Quiz
	deleted []string
	fail    bool
}

func newFakeQuizCache() *fakeQuizCache {
	return &fakeQuizCache{quizzes: make(map[string]*model.Quiz)}
}

func (c *fakeQuizCache) Get(_ context.Context, id string) (*model.Quiz, error) {
	if c.fail {
		return nil, errStoreDown
	}
	return c.quizzes[id], nil
}

func (c *fakeQuizCache) Set(_ context.Context, quiz *model.Quiz) error {
	if c.fail {
		return errStoreDown
	}
	c.quizzes[quiz.ID] = quiz
	return nil
}

func (c *fakeQuizCache) Delete(_ context.Context, id string) error {
	c.deleted = append(c.deleted, id)
	delete(c.quizzes, id)
	return nil
}

// fixedPicker always picks the same index and records the range it was asked for
type fixedPicker struct {
	index int
	lastN int
}

func (p *fixedPicker) IntN(n int) int {
	p.lastN = n
	return p.index
}

func mcQuestion(id string, answers ...model.Scores) *model.Question {
	q := &model.Question{ID: id, QuestionType: model.QuestionTypeMultipleChoice, Text: "question " + id}
	for _, s := range answers {
		q.Answers = append(q.Answers, model.Answer{Text: "answer", Scores: s})
	}
	return q
}

func textQuestion(id string) *model.Question {
	return &model.Question{ID: id, QuestionType: model.QuestionTypeOpenText, Text: "question " + id}
}

func answeredN(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "done_" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	return ids
}
