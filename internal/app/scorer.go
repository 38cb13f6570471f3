package app

import (
	"math"

	"quizdesk/internal/domain"
)

// Score checks every answer against the bank and aggregates a percentage.
// Questions absent from answers count as incorrect. The percentage rounds
// half away from zero (math.Round), which for the non-negative values
// here matches conventional half-up rounding.
func Score(bank domain.Bank, answers map[int]int) (domain.Outcome, error) {
	total := len(bank.Questions)
	if total == 0 {
		return domain.Outcome{}, domain.ErrEmptyBank
	}

	per := make([]domain.QuestionOutcome, 0, total)
	correct := 0
	for i, q := range bank.Questions {
		chosen, answered := answers[i]
		if !answered {
			chosen = -1
		}
		ok := chosen == q.CorrectIndex
		if ok {
			correct++
		}
		per = append(per, domain.QuestionOutcome{
			Question: i + 1,
			Chosen:   chosen,
			Correct:  ok,
		})
	}

	return domain.Outcome{
		CorrectCount:   correct,
		TotalQuestions: total,
		ScorePercent:   int(math.Round(100 * float64(correct) / float64(total))),
		PerQuestion:    per,
	}, nil
}
