package model

import "time"

// DefaultQuizID is served when a request does not name a quiz
const DefaultQuizID = "career_interest_quiz_v1"

// Quiz is an adaptive assessment definition. The three pools may share ids,
// the selector treats them as separate stages.
type Quiz struct {
	ID                     string    `json:"id" bson:"_id"`
	Title                  string    `json:"title,omitempty" bson:"title,omitempty"`
	OpeningQuestionIDs     []string  `json:"openingQuestionIds" bson:"openingQuestionIds"`         // first question is drawn at random from here
	DefaultFlowQuestionIDs []string  `json:"defaultFlowQuestionIds" bson:"defaultFlowQuestionIds"` // ordered fallback path while no category is positive
	MainBankQuestionIDs    []string  `json:"mainBankQuestionIds" bson:"mainBankQuestionIds"`       // adaptive pool
	UpdatedAt              time.Time `json:"updatedAt" bson:"updatedAt"`
}
