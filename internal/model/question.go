package model

import (
	"strings"
	"time"
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice" // Only type scored by the adaptive selector
	QuestionTypeOpenText       QuestionType = "open-text"       // Inert for divergence scoring
	QuestionTypeScale          QuestionType = "scale"           // Inert for divergence scoring
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeOpenText, QuestionTypeScale:
		return true
	}
	return false
}

// Answer is one option of a question with its per-category contribution
type Answer struct {
	Text   string `json:"text" bson:"text"`
	Scores Scores `json:"scores,omitempty" bson:"scores,omitempty"`
}

// Question is an item of the question bank
type Question struct {
	ID           string       `json:"questionId" bson:"_id"`
	QuestionType QuestionType `json:"questionType" bson:"questionType"`
	Text         string       `json:"questionText" bson:"questionText"`
	TextKey      string       `json:"-" bson:"textKey"` // normalized text, used for duplicate checks
	ImageURL     string       `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Answers      []Answer     `json:"answers" bson:"answers"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeText folds question text so that two questions differing only in
// case or surrounding/inner whitespace collide.
func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
