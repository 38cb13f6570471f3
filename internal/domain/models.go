package domain

import (
	"fmt"
	"time"
)

// Question is one multiple-choice question with a single correct choice.
type Question struct {
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

// Bank is the immutable ordered question set a session runs through.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Validate rejects banks the scorer cannot handle.
func (b Bank) Validate() error {
	if len(b.Questions) == 0 {
		return ErrEmptyBank
	}
	for i, q := range b.Questions {
		if len(q.Choices) < 2 {
			return fmt.Errorf("%w: question %d has %d choices", ErrInvalidQuestion, i+1, len(q.Choices))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			return fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidQuestion, i+1, q.CorrectIndex)
		}
	}
	return nil
}

// User identifies one attempt. Supplied once at session start.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Answer pairs a 1-based question number with the chosen choice index.
// Chosen is -1 when the question was left unanswered.
type Answer struct {
	Question int `json:"question"`
	Chosen   int `json:"chosen"`
}

// QuestionOutcome is the per-question verdict inside an Outcome.
type QuestionOutcome struct {
	Question int  `json:"question"`
	Chosen   int  `json:"chosen"`
	Correct  bool `json:"correct"`
}

// Outcome summarizes a completed session.
type Outcome struct {
	CorrectCount   int               `json:"correctCount"`
	TotalQuestions int               `json:"totalQuestions"`
	ScorePercent   int               `json:"scorePercent"`
	PerQuestion    []QuestionOutcome `json:"perQuestion"`
}

// ResultRecord is the persisted snapshot of one completed session.
// Answers covers every question in the bank, in order.
type ResultRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ScorePercent   int       `json:"scorePercent"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	Answers        []Answer  `json:"answers"`
}
