package app_test

import (
	"context"
	"testing"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service *app.QuizService
	quizzes *memory.QuizRepository
	results *memory.ResultRepository
	users   *memory.UserRepository
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	f := &fixture{
		quizzes: memory.NewQuizRepository(),
		results: memory.NewResultRepository(),
		users:   memory.NewUserRepository(),
	}
	opts = append([]app.Option{app.WithClock(func() time.Time { return fixedNow })}, opts...)
	f.service = app.NewQuizService(f.quizzes, f.results, f.users, opts...)
	for _, u := range []domain.User{
		{ID: "owner", Username: "olivia"},
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	} {
		if err := f.users.Insert(context.Background(), u); err != nil {
			t.Fatalf("seed user %s: %v", u.ID, err)
		}
	}
	return f
}

func (f *fixture) createQuiz(t *testing.T, draft domain.QuizDraft) domain.Quiz {
	t.Helper()
	quiz, err := f.service.CreateQuiz(context.Background(), "owner", draft)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

func twoChoiceDraft() domain.QuizDraft {
	return domain.QuizDraft{
		Title:      "Arithmetic",
		Expiration: fixedNow.Add(24 * time.Hour),
		IsPublic:   true,
		Questions: []domain.Question{
			mcQuestion("1 + 1?", 0, "2", "3"),
			mcQuestion("2 + 2?", 1, "3", "4"),
		},
	}
}

func mcQuestion(text string, correct int, options ...string) domain.Question {
	q := domain.Question{Type: domain.MultipleChoice, Text: text, CorrectIndex: correct}
	for _, o := range options {
		q.Answers = append(q.Answers, domain.AnswerOption{Text: o})
	}
	return q
}

func fillInQuestion(text, correct string) domain.Question {
	return domain.Question{Type: domain.FillIn, Text: text, CorrectText: correct}
}

func choice(i int) domain.Answer {
	return domain.Answer{Type: domain.MultipleChoice, Choice: &i}
}

func fillIn(text string) domain.Answer {
	return domain.Answer{Type: domain.FillIn, Text: text}
}

func requireValidation(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	verr, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	return verr
}

func hasProblem(verr *domain.ValidationError, field string) bool {
	for _, p := range verr.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}
