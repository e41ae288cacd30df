package model

// QuizStatus is the state reported back to the client after each request
type QuizStatus string

const (
	StatusInProgress QuizStatus = "in_progress"
	StatusCompleted  QuizStatus = "completed"
)

// CompletionReason records why a quiz was ended
type CompletionReason string

const (
	ReasonMaxQuestions         CompletionReason = "max_questions"
	ReasonConfident            CompletionReason = "confident"
	ReasonBankExhausted        CompletionReason = "bank_exhausted"
	ReasonDefaultFlowExhausted CompletionReason = "default_flow_exhausted" // inconclusive
	ReasonNoOpeningQuestion    CompletionReason = "no_opening_question"
)

// Stage is the part of the selection algorithm that produced a decision
type Stage string

const (
	StageOpening     Stage = "opening"
	StageDefaultFlow Stage = "default_flow"
	StageAdaptive    Stage = "adaptive"
)

// NextQuestionRequest is the decoded body of a next-question call. Every
// field is optional; the service fills defaults.
type NextQuestionRequest struct {
	QuizID              string   `json:"quiz_id"`
	CurrentScores       Scores   `json:"current_scores"`
	AnsweredQuestionIDs []string `json:"answered_question_ids"`
}

// Decision is the outcome of one selection. Either Question is set
// (in progress) or the quiz is completed.
type Decision struct {
	Status       QuizStatus
	Stage        Stage
	QuestionID   string
	Question     *Question // set once the chosen id is resolved
	FinalScores  Scores
	Inconclusive bool
	Reason       CompletionReason
}

// Completed reports whether the quiz has ended
func (d *Decision) Completed() bool {
	return d.Status == StatusCompleted
}
