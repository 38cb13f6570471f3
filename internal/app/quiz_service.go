package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// ResultStore persists completed-session records.
type ResultStore interface {
	Append(record domain.ResultRecord) error
}

// QuizService contains the core quiz use cases. One session is active
// per process; starting a new one abandons the previous run.
type QuizService struct {
	banks              BankRepository
	results            ResultStore
	bankID             string
	perQuestionSeconds int
	now                func() time.Time

	mu     sync.Mutex
	active *Session
}

func NewQuizService(banks BankRepository, results ResultStore, bankID string, perQuestionSeconds int) *QuizService {
	return NewQuizServiceWithClock(banks, results, bankID, perQuestionSeconds, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(banks BankRepository, results ResultStore, bankID string, perQuestionSeconds int, now func() time.Time) *QuizService {
	if perQuestionSeconds <= 0 {
		perQuestionSeconds = 20
	}
	return &QuizService{
		banks:              banks,
		results:            results,
		bankID:             bankID,
		perQuestionSeconds: perQuestionSeconds,
		now:                now,
	}
}

// StartSession validates the identity, loads the bank, and arms a fresh
// session: first question, cleared answers, full timer, not paused.
func (q *QuizService) StartSession(ctx context.Context, name, email string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, domain.ErrMissingIdentity
	}

	bank, err := q.banks.GetBank(ctx, q.bankID)
	if err != nil {
		return nil, err
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}

	session := newSession(domain.User{Name: name, Email: email}, bank, q.perQuestionSeconds)

	q.mu.Lock()
	q.active = session
	q.mu.Unlock()
	return session, nil
}

// Abandon discards the session without persisting anything.
func (q *QuizService) Abandon(s *Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active == s {
		q.active = nil
	}
}

// CompleteAndRecord scores the completed session and appends a result
// record. The outcome is returned even when the append fails, so a
// persistence error never loses the score.
func (q *QuizService) CompleteAndRecord(s *Session) (domain.Outcome, error) {
	outcome, err := s.Outcome()
	if err != nil {
		return domain.Outcome{}, err
	}

	user := s.User()
	answers := make([]domain.Answer, 0, len(outcome.PerQuestion))
	for _, p := range outcome.PerQuestion {
		answers = append(answers, domain.Answer{Question: p.Question, Chosen: p.Chosen})
	}
	record := domain.ResultRecord{
		Timestamp:      q.now(),
		Name:           user.Name,
		Email:          user.Email,
		ScorePercent:   outcome.ScorePercent,
		CorrectCount:   outcome.CorrectCount,
		TotalQuestions: outcome.TotalQuestions,
		Answers:        answers,
	}

	appendErr := q.results.Append(record)

	q.mu.Lock()
	if q.active == s {
		q.active = nil
	}
	q.mu.Unlock()

	return outcome, appendErr
}
