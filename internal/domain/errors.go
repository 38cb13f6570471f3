package domain

import "errors"

var (
	// ErrMissingIdentity is returned when a session is started without a name or email.
	ErrMissingIdentity = errors.New("name and email are required")
	// ErrEmptyBank indicates a question bank with no questions.
	ErrEmptyBank = errors.New("question bank has no questions")
	// ErrInvalidQuestion indicates a question with too few choices or a bad correct index.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrBankNotFound indicates the bank content could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrNotInProgress is returned when a session operation arrives outside InProgress.
	ErrNotInProgress = errors.New("session is not in progress")
	// ErrNotCompleted is returned when the outcome is requested before completion.
	ErrNotCompleted = errors.New("session is not completed")
	// ErrChoiceOutOfRange indicates a selected choice index outside the current question.
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	// ErrMalformedRecord indicates a persisted result line that cannot be decoded.
	ErrMalformedRecord = errors.New("malformed result record")
)
