package domain

import (
	"encoding/json"
	"fmt"
)

// Answer is a respondent's ungraded submission for one question.
type Answer struct {
	Type   QuestionType
	Choice *int
	Text   string
}

// Kind returns the answer type with the legacy default applied.
func (a Answer) Kind() QuestionType {
	return normalizeType(a.Type)
}

type answerWire struct {
	Type   QuestionType `json:"type"`
	Choice *int         `json:"choice,omitempty"`
	Answer string       `json:"answer,omitempty"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wire())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var w answerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Answer{Type: normalizeType(w.Type), Choice: w.Choice, Text: w.Answer}
	return nil
}

func (a Answer) wire() answerWire {
	w := answerWire{Type: a.Kind()}
	switch w.Type {
	case MultipleChoice:
		w.Choice = a.Choice
	default:
		w.Answer = a.Text
	}
	return w
}

// GradedAnswer is an answer annotated with correctness. The correct value is
// only set when the quiz reveals correct answers.
type GradedAnswer struct {
	Answer
	IsCorrect     bool
	CorrectChoice *int
	CorrectText   *string
}

type gradedAnswerWire struct {
	answerWire
	IsCorrect     bool            `json:"isCorrect"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
}

func (g GradedAnswer) MarshalJSON() ([]byte, error) {
	w := gradedAnswerWire{answerWire: g.Answer.wire(), IsCorrect: g.IsCorrect}
	var correct any
	switch g.Kind() {
	case MultipleChoice:
		if g.CorrectChoice != nil {
			correct = *g.CorrectChoice
		}
	case FillIn:
		if g.CorrectText != nil {
			correct = *g.CorrectText
		}
	default:
		return nil, fmt.Errorf("marshal graded answer: unknown answer type %q", g.Type)
	}
	if correct != nil {
		raw, err := json.Marshal(correct)
		if err != nil {
			return nil, err
		}
		w.CorrectAnswer = raw
	}
	return json.Marshal(w)
}

func (g *GradedAnswer) UnmarshalJSON(data []byte) error {
	var w gradedAnswerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*g = GradedAnswer{
		Answer:    Answer{Type: normalizeType(w.Type), Choice: w.Choice, Text: w.Answer},
		IsCorrect: w.IsCorrect,
	}
	if len(w.CorrectAnswer) == 0 {
		return nil
	}
	switch g.Kind() {
	case MultipleChoice:
		var idx int
		if err := json.Unmarshal(w.CorrectAnswer, &idx); err != nil {
			return fmt.Errorf("decode correct choice: %w", err)
		}
		g.CorrectChoice = &idx
	case FillIn:
		var text string
		if err := json.Unmarshal(w.CorrectAnswer, &text); err != nil {
			return fmt.Errorf("decode correct answer: %w", err)
		}
		g.CorrectText = &text
	}
	return nil
}
