package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

func TestCreateQuizValidation(t *testing.T) {
	f := newFixture(t)
	draft := domain.QuizDraft{
		Title:      "",
		Expiration: fixedNow.Add(-time.Minute),
		Questions: []domain.Question{
			mcQuestion("", 3, "only"),
			fillInQuestion("Capital?", ""),
		},
	}

	_, err := f.service.CreateQuiz(context.Background(), "owner", draft)
	verr := requireValidation(t, err)
	for _, field := range []string{"title", "expiration", "questions.text", "questions.answers", "questions.correctAnswer"} {
		if !hasProblem(verr, field) {
			t.Fatalf("expected %s problem, got %+v", field, verr.Problems)
		}
	}
	if verr.Conflict {
		t.Fatalf("create must not report a conflict")
	}

	for _, p := range verr.Problems {
		if strings.HasPrefix(p.Field, "questions.") && p.Index == nil {
			t.Fatalf("question problem without index: %+v", p)
		}
	}
}

func TestCreateQuizNeedsQuestions(t *testing.T) {
	f := newFixture(t)
	draft := twoChoiceDraft()
	draft.Questions = nil

	verr := requireValidation(t, func() error {
		_, err := f.service.CreateQuiz(context.Background(), "owner", draft)
		return err
	}())
	if !hasProblem(verr, "questions") {
		t.Fatalf("expected questions problem, got %+v", verr.Problems)
	}
}

func TestCreateQuizUnknownOwner(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.CreateQuiz(context.Background(), "ghost", twoChoiceDraft()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestCreateQuizResolvesAllowedUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := twoChoiceDraft()
	draft.IsPublic = false
	draft.AllowedUsers = []string{" ALICE ", "nobody"}
	quiz := f.createQuiz(t, draft)

	if len(quiz.AllowedUsers) != 1 || quiz.AllowedUsers[0] != "u1" {
		t.Fatalf("expected allow-list [u1], got %v", quiz.AllowedUsers)
	}
	owner, _ := f.users.FindByID(ctx, "owner")
	if len(owner.Quizzes) != 1 || owner.Quizzes[0] != quiz.ID {
		t.Fatalf("expected owner back-reference, got %v", owner.Quizzes)
	}
}

func TestGetQuizViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := twoChoiceDraft()
	draft.IsPublic = false
	draft.AllowedUsers = []string{"alice"}
	quiz := f.createQuiz(t, draft)

	view, err := f.service.GetQuiz(ctx, "owner", quiz.ID)
	if err != nil {
		t.Fatalf("owner view: %v", err)
	}
	if view.Full == nil || view.Form != nil {
		t.Fatalf("owner should get the full view, got %+v", view)
	}
	if len(view.Full.AllowedUsers) != 1 || view.Full.AllowedUsers[0] != "alice" {
		t.Fatalf("expected usernames in full view, got %v", view.Full.AllowedUsers)
	}

	view, err = f.service.GetQuiz(ctx, "u1", quiz.ID)
	if err != nil {
		t.Fatalf("respondent view: %v", err)
	}
	if view.Form == nil || view.Full != nil {
		t.Fatalf("respondent should get the answer form, got %+v", view)
	}
	if got := view.Form.Questions[1].Answers; len(got) != 2 || got[1] != "4" {
		t.Fatalf("unexpected form answers %v", got)
	}

	if _, err := f.service.GetQuiz(ctx, "u2", quiz.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListQuizzes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	public := f.createQuiz(t, twoChoiceDraft())
	private := twoChoiceDraft()
	private.IsPublic = false
	private.AllowedUsers = []string{"bob"}
	hidden := f.createQuiz(t, private)

	mine, err := f.service.ListMyQuizzes(ctx, "owner")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 owned quizzes, got %d", len(mine))
	}

	forAlice, err := f.service.ListAvailableQuizzes(ctx, "u1")
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(forAlice) != 1 || forAlice[0].ID != public.ID {
		t.Fatalf("alice should see only the public quiz, got %+v", forAlice)
	}
	if forAlice[0].Owner != "olivia" || forAlice[0].QuestionCount != 2 || forAlice[0].Expired {
		t.Fatalf("unexpected listing %+v", forAlice[0])
	}

	forBob, _ := f.service.ListAvailableQuizzes(ctx, "u2")
	if len(forBob) != 2 || (forBob[0].ID != hidden.ID && forBob[1].ID != hidden.ID) {
		t.Fatalf("bob should see both quizzes, got %+v", forBob)
	}

	later := app.NewQuizService(f.quizzes, f.results, f.users,
		app.WithClock(func() time.Time { return fixedNow.Add(48 * time.Hour) }))
	expired, _ := later.ListMyQuizzes(ctx, "owner")
	for _, l := range expired {
		if !l.Expired {
			t.Fatalf("quiz %s should be listed as expired", l.ID)
		}
	}
}
