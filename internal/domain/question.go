package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType discriminates the question and answer variants.
type QuestionType string

const (
	MultipleChoice QuestionType = "MultipleChoice"
	FillIn         QuestionType = "FillIn"
)

// normalizeType applies the legacy default: documents written before fill-in
// questions existed carry no type at all.
func normalizeType(t QuestionType) QuestionType {
	if strings.TrimSpace(string(t)) == "" {
		return MultipleChoice
	}
	return t
}

// Kind returns the question type with the legacy default applied.
func (q Question) Kind() QuestionType {
	return normalizeType(q.Type)
}

// AnswerOption is one selectable option of a multiple-choice question.
type AnswerOption struct {
	Text string `json:"text"`
}

// Question is a prompt plus its correctness criterion. CorrectIndex is used by
// MultipleChoice questions and CorrectText by FillIn questions; on the wire
// both travel as correctAnswer.
type Question struct {
	Type         QuestionType
	Text         string
	Answers      []AnswerOption
	CorrectIndex int
	CorrectText  string
}

type questionWire struct {
	Type          QuestionType    `json:"type"`
	Text          string          `json:"text"`
	Answers       []AnswerOption  `json:"answers,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{Type: q.Kind(), Text: q.Text}
	var (
		raw []byte
		err error
	)
	switch w.Type {
	case MultipleChoice:
		w.Answers = q.Answers
		raw, err = json.Marshal(q.CorrectIndex)
	case FillIn:
		raw, err = json.Marshal(q.CorrectText)
	default:
		return nil, fmt.Errorf("marshal question: unknown question type %q", q.Type)
	}
	if err != nil {
		return nil, err
	}
	w.CorrectAnswer = raw
	return json.Marshal(w)
}

// UnmarshalJSON normalizes the type once. A correctAnswer that is null, absent
// or of the wrong JSON kind decodes to a value the validator rejects instead
// of failing the decode.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Question{Type: normalizeType(w.Type), Text: w.Text, Answers: w.Answers}
	switch q.Type {
	case MultipleChoice:
		q.CorrectIndex = -1
		if present(w.CorrectAnswer) {
			var idx int
			if err := json.Unmarshal(w.CorrectAnswer, &idx); err == nil {
				q.CorrectIndex = idx
			}
		}
	case FillIn:
		if present(w.CorrectAnswer) {
			var text string
			if err := json.Unmarshal(w.CorrectAnswer, &text); err == nil {
				q.CorrectText = text
			}
		}
	}
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ValidateQuestion reports every rule the question breaks. Field names are
// relative to the question.
func ValidateQuestion(q Question) []FieldError {
	var problems []FieldError
	if strings.TrimSpace(q.Text) == "" {
		problems = append(problems, FieldError{Field: "text", Message: "question text must not be empty"})
	}

	switch q.Kind() {
	case MultipleChoice:
		if len(q.Answers) < 2 {
			problems = append(problems, FieldError{
				Field:    "answers",
				Message:  "multiple choice question needs at least 2 answers",
				Value:    len(q.Answers),
				Expected: ">= 2",
			})
		}
		for i, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" {
				problems = append(problems, FieldError{
					Field:   fmt.Sprintf("answers[%d].text", i),
					Message: "answer text must not be empty",
				})
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Answers) {
			problems = append(problems, FieldError{
				Field:    "correctAnswer",
				Message:  "correct answer index out of range",
				Value:    q.CorrectIndex,
				Expected: fmt.Sprintf("[0, %d)", len(q.Answers)),
			})
		}
	case FillIn:
		if strings.TrimSpace(q.CorrectText) == "" {
			problems = append(problems, FieldError{Field: "correctAnswer", Message: "fill-in correct answer must not be empty"})
		}
	default:
		problems = append(problems, FieldError{
			Field:    "type",
			Message:  "unknown question type",
			Value:    string(q.Type),
			Expected: []QuestionType{MultipleChoice, FillIn},
		})
	}
	return problems
}

// Compatible reports whether edited keeps the graded structure of original:
// same type, same correct answer and, for multiple choice, the same option count.
func Compatible(original, edited Question) bool {
	ot, et := original.Kind(), edited.Kind()
	if ot != et {
		return false
	}
	switch ot {
	case MultipleChoice:
		return original.CorrectIndex == edited.CorrectIndex && len(original.Answers) == len(edited.Answers)
	case FillIn:
		return original.CorrectText == edited.CorrectText
	default:
		return false
	}
}
