package service

import "errors"

var (
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrDuplicateQuestion = errors.New("a question with the same text already exists")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrInvalidQuiz       = errors.New("invalid quiz")
)
