package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub-service/internal/domain"
)

func TestQuizRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewQuizRepository()
	if err := repo.Insert(ctx, sampleQuiz("quiz-1", "u1", false)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.FindByID(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Questions[0].Answers[0].Text = "mutated"
	got.AllowedUsers = append(got.AllowedUsers, "intruder")

	again, _ := repo.FindByID(ctx, "quiz-1")
	if again.Questions[0].Answers[0].Text != "3" {
		t.Fatalf("stored option changed through a read copy: %q", again.Questions[0].Answers[0].Text)
	}
	if len(again.AllowedUsers) != 1 {
		t.Fatalf("stored allow-list changed through a read copy: %v", again.AllowedUsers)
	}
}

func TestQuizRepositoryUpdateAndResults(t *testing.T) {
	ctx := context.Background()
	repo := NewQuizRepository()
	_ = repo.Insert(ctx, sampleQuiz("quiz-1", "u1", false))

	if err := repo.Update(ctx, "missing", domain.QuizUpdate{}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := repo.AddResult(ctx, "missing", "r1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on add result, got %v", err)
	}

	_ = repo.AddResult(ctx, "quiz-1", "r1")
	_ = repo.AddResult(ctx, "quiz-1", "r1")
	quiz, _ := repo.FindByID(ctx, "quiz-1")
	if len(quiz.Results) != 1 {
		t.Fatalf("expected a single result link, got %v", quiz.Results)
	}

	update := domain.QuizUpdate{Title: "Renamed", Expiration: quiz.Expiration, Questions: quiz.Questions}
	if err := repo.Update(ctx, "quiz-1", update); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ = repo.FindByID(ctx, "quiz-1")
	if quiz.Title != "Renamed" || len(quiz.Results) != 1 {
		t.Fatalf("update should keep result links, got %+v", quiz)
	}

	if err := repo.RemoveResult(ctx, "gone", "r1"); err != nil {
		t.Fatalf("expected no-op for missing quiz, got %v", err)
	}
	_ = repo.RemoveResult(ctx, "quiz-1", "r1")
	quiz, _ = repo.FindByID(ctx, "quiz-1")
	if len(quiz.Results) != 0 {
		t.Fatalf("expected links cleared, got %v", quiz.Results)
	}
}

func TestQuizRepositoryVisibility(t *testing.T) {
	ctx := context.Background()
	repo := NewQuizRepository()
	_ = repo.Insert(ctx, sampleQuiz("public", "u1", true))
	_ = repo.Insert(ctx, sampleQuiz("private", "u1", false))

	visible, _ := repo.FindVisibleTo(ctx, "u3")
	if len(visible) != 1 || visible[0].ID != "public" {
		t.Fatalf("stranger should only see the public quiz, got %d", len(visible))
	}
	visible, _ = repo.FindVisibleTo(ctx, "u2")
	if len(visible) != 2 {
		t.Fatalf("allow-listed user should see both, got %d", len(visible))
	}
	owned, _ := repo.FindByUserID(ctx, "u1")
	if len(owned) != 2 || owned[0].ID != "public" {
		t.Fatalf("expected creation order, got %+v", owned)
	}
}

func sampleQuiz(id, owner string, public bool) domain.Quiz {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !public {
		created = created.Add(time.Minute)
	}
	return domain.Quiz{
		ID:         id,
		User:       owner,
		Title:      "Arithmetic",
		Expiration: created.Add(24 * time.Hour),
		IsPublic:   public,
		Questions: []domain.Question{{
			Type: domain.MultipleChoice,
			Text: "What is 2 + 2?",
			Answers: []domain.AnswerOption{
				{Text: "3"},
				{Text: "4"},
			},
			CorrectIndex: 1,
		}},
		AllowedUsers: []string{"u2"},
		Results:      []string{},
		CreatedAt:    created,
	}
}
