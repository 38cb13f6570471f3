// Package record encodes quiz results to and from the persisted CSV log
// format. The format is line-oriented with minimal quoting: a field is
// wrapped in double quotes only when it contains a comma, a quote, or a
// newline, with internal quotes doubled. The answers column is a
// sub-encoded string: q{n}:{choice} joined by |, with - for unanswered.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quizdesk/internal/domain"
)

// Header is the column row written when the log file is created.
const Header = "timestamp,name,email,score_percent,correct,total_questions,answers"

// TimeLayout is the timestamp format used in the log (local time).
const TimeLayout = "2006-01-02 15:04:05"

// EncodeLine serializes one record, without a trailing newline.
func EncodeLine(r domain.ResultRecord) string {
	fields := []string{
		escape(r.Timestamp.Format(TimeLayout)),
		escape(r.Name),
		escape(r.Email),
		strconv.Itoa(r.ScorePercent),
		strconv.Itoa(r.CorrectCount),
		strconv.Itoa(r.TotalQuestions),
		escape(encodeAnswers(r.Answers)),
	}
	return strings.Join(fields, ",")
}

// DecodeLine is the inverse of EncodeLine. Lines yielding fewer than
// seven fields, or with unparseable values, fail with ErrMalformedRecord
// so the caller can skip them without aborting a whole load.
func DecodeLine(line string) (domain.ResultRecord, error) {
	fields := SplitFields(line)
	if len(fields) < 7 {
		return domain.ResultRecord{}, fmt.Errorf("%w: %d fields", domain.ErrMalformedRecord, len(fields))
	}

	ts, err := time.ParseInLocation(TimeLayout, fields[0], time.Local)
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("%w: bad timestamp %q", domain.ErrMalformedRecord, fields[0])
	}
	score, err := strconv.Atoi(fields[3])
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("%w: bad score %q", domain.ErrMalformedRecord, fields[3])
	}
	correct, err := strconv.Atoi(fields[4])
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("%w: bad correct count %q", domain.ErrMalformedRecord, fields[4])
	}
	total, err := strconv.Atoi(fields[5])
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("%w: bad total %q", domain.ErrMalformedRecord, fields[5])
	}
	answers, err := decodeAnswers(fields[6])
	if err != nil {
		return domain.ResultRecord{}, err
	}

	return domain.ResultRecord{
		Timestamp:      ts,
		Name:           fields[1],
		Email:          fields[2],
		ScorePercent:   score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Answers:        answers,
	}, nil
}

// SplitRecords splits raw log content into logical records, honoring
// quoted fields that span newlines. A plain line split would shear such
// records apart.
func SplitRecords(data string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == '\n' && !inQuotes:
			out = append(out, strings.TrimSuffix(cur.String(), "\r"))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, strings.TrimSuffix(cur.String(), "\r"))
	}
	return out
}

// SplitFields splits one record into fields, handling quoted fields with
// embedded commas, newlines, and doubled quotes.
func SplitFields(line string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur.WriteByte(c)
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, cur.String())
	return out
}

func escape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func encodeAnswers(answers []domain.Answer) string {
	var sb strings.Builder
	for i, a := range answers {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteByte('q')
		sb.WriteString(strconv.Itoa(a.Question))
		sb.WriteByte(':')
		if a.Chosen < 0 {
			sb.WriteByte('-')
		} else {
			sb.WriteString(strconv.Itoa(a.Chosen))
		}
	}
	return sb.String()
}

func decodeAnswers(s string) ([]domain.Answer, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "|")
	answers := make([]domain.Answer, 0, len(parts))
	for _, part := range parts {
		num, chosen, ok := strings.Cut(part, ":")
		if !ok || !strings.HasPrefix(num, "q") {
			return nil, fmt.Errorf("%w: bad answer entry %q", domain.ErrMalformedRecord, part)
		}
		question, err := strconv.Atoi(num[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: bad answer entry %q", domain.ErrMalformedRecord, part)
		}
		idx := -1
		if chosen != "-" {
			idx, err = strconv.Atoi(chosen)
			if err != nil {
				return nil, fmt.Errorf("%w: bad answer entry %q", domain.ErrMalformedRecord, part)
			}
		}
		answers = append(answers, domain.Answer{Question: question, Chosen: idx})
	}
	return answers, nil
}
