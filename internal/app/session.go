package app

import (
	"sync"

	"quizdesk/internal/domain"
)

// State is the lifecycle phase of a quiz session.
type State string

const (
	StateAwaitingStart State = "awaiting_start"
	StateInProgress    State = "in_progress"
	StateCompleted     State = "completed"
)

// Progress is a snapshot of the session after a transition.
type Progress struct {
	State            State `json:"state"`
	QuestionNumber   int   `json:"question"` // 1-based, valid while in progress
	TotalQuestions   int   `json:"total"`
	SecondsRemaining int   `json:"secondsRemaining"`
	Paused           bool  `json:"paused"`
}

// QuestionView is what the shell needs to render the current question.
type QuestionView struct {
	Number           int      `json:"number"` // 1-based
	Total            int      `json:"total"`
	Text             string   `json:"text"`
	Choices          []string `json:"choices"`
	Selected         int      `json:"selected"` // -1 when nothing chosen yet
	SecondsRemaining int      `json:"secondsRemaining"`
	Paused           bool     `json:"paused"`
}

// Session is one user's run through the bank. All mutation goes through
// its methods; the shell and the tick source may call from different
// goroutines.
type Session struct {
	mu          sync.Mutex
	user        domain.User
	bank        domain.Bank
	state       State
	current     int
	answers     map[int]int // question index -> chosen choice index
	remaining   int
	perQuestion int
	paused      bool
}

func newSession(user domain.User, bank domain.Bank, perQuestionSeconds int) *Session {
	return &Session{
		user:        user,
		bank:        bank,
		state:       StateInProgress,
		answers:     make(map[int]int),
		remaining:   perQuestionSeconds,
		perQuestion: perQuestionSeconds,
	}
}

// User returns the attempt identity supplied at start.
func (s *Session) User() domain.User {
	return s.user
}

// CurrentQuestion returns the render view for the active question.
func (s *Session) CurrentQuestion() (QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return QuestionView{}, domain.ErrNotInProgress
	}
	q := s.bank.Questions[s.current]
	selected := -1
	if choice, ok := s.answers[s.current]; ok {
		selected = choice
	}
	return QuestionView{
		Number:           s.current + 1,
		Total:            len(s.bank.Questions),
		Text:             q.Text,
		Choices:          q.Choices,
		Selected:         selected,
		SecondsRemaining: s.remaining,
		Paused:           s.paused,
	}, nil
}

// SelectAnswer records the choice for the current question. Re-selecting
// before advancing overwrites the prior choice.
func (s *Session) SelectAnswer(choice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.ErrNotInProgress
	}
	if choice < 0 || choice >= len(s.bank.Questions[s.current].Choices) {
		return domain.ErrChoiceOutOfRange
	}
	s.answers[s.current] = choice
	return nil
}

// Advance moves to the next question, or completes the session on the
// last one. The current question does not need an answer; unanswered
// questions score as incorrect.
func (s *Session) Advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.progressLocked(), domain.ErrNotInProgress
	}
	s.advanceLocked()
	return s.progressLocked(), nil
}

// Tick is the one-second countdown step. It is a no-op while paused or
// once the session has left InProgress. Hitting exactly zero triggers
// the same transition as an explicit Advance.
func (s *Session) Tick() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.paused {
		return s.progressLocked()
	}
	s.remaining--
	if s.remaining <= 0 {
		s.advanceLocked()
	}
	return s.progressLocked()
}

// TogglePause flips the paused flag and reports the new value. Remaining
// seconds are preserved exactly across a pause.
func (s *Session) TogglePause() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return false, domain.ErrNotInProgress
	}
	s.paused = !s.paused
	return s.paused, nil
}

// Outcome scores the frozen answers. Only valid once completed.
func (s *Session) Outcome() (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted {
		return domain.Outcome{}, domain.ErrNotCompleted
	}
	return Score(s.bank, s.answers)
}

func (s *Session) advanceLocked() {
	if s.current >= len(s.bank.Questions)-1 {
		s.state = StateCompleted
		s.paused = false
		s.remaining = 0
		return
	}
	s.current++
	s.remaining = s.perQuestion
	s.paused = false
}

func (s *Session) progressLocked() Progress {
	return Progress{
		State:            s.state,
		QuestionNumber:   s.current + 1,
		TotalQuestions:   len(s.bank.Questions),
		SecondsRemaining: s.remaining,
		Paused:           s.paused,
	}
}
