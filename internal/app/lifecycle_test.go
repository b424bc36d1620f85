package app_test

import (
	"context"
	"errors"
	"testing"

	"quizhub-service/internal/domain"
)

func TestDeleteQuizCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	quiz := f.createQuiz(t, twoChoiceDraft())
	other := f.createQuiz(t, twoChoiceDraft())

	for _, u := range []string{"u1", "u2"} {
		if _, err := f.service.SubmitAnswers(ctx, u, quiz.ID, []domain.Answer{choice(0), choice(1)}); err != nil {
			t.Fatalf("submit %s: %v", u, err)
		}
	}
	kept, err := f.service.SubmitAnswers(ctx, "u1", other.ID, []domain.Answer{choice(0), choice(1)})
	if err != nil {
		t.Fatalf("submit other: %v", err)
	}

	if err := f.service.DeleteQuiz(ctx, "owner", quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.quizzes.FindByID(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}
	left, _ := f.results.All(ctx)
	if len(left) != 1 || left[0].ID != kept.ID {
		t.Fatalf("expected only the other quiz's result, got %+v", left)
	}
	alice, _ := f.users.FindByID(ctx, "u1")
	if len(alice.Results) != 1 || alice.Results[0] != kept.ID {
		t.Fatalf("expected alice to keep one result, got %v", alice.Results)
	}
	bob, _ := f.users.FindByID(ctx, "u2")
	if len(bob.Results) != 0 {
		t.Fatalf("expected bob's results unlinked, got %v", bob.Results)
	}
	owner, _ := f.users.FindByID(ctx, "owner")
	if len(owner.Quizzes) != 1 || owner.Quizzes[0] != other.ID {
		t.Fatalf("expected owner to keep one quiz, got %v", owner.Quizzes)
	}
}

func TestDeleteQuizClosesFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	quiz := f.createQuiz(t, twoChoiceDraft())

	notices, cancel, err := f.service.SubscribeResults(ctx, "owner", quiz.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := f.service.DeleteQuiz(ctx, "owner", quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := <-notices; ok {
		t.Fatalf("expected feed channel closed")
	}
}

func TestDeleteQuizForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	quiz := f.createQuiz(t, twoChoiceDraft())

	if err := f.service.DeleteQuiz(ctx, "u1", quiz.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.quizzes.FindByID(ctx, quiz.ID); err != nil {
		t.Fatalf("quiz must survive: %v", err)
	}
	if err := f.service.DeleteQuiz(ctx, "owner", "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ownerQuiz := f.createQuiz(t, twoChoiceDraft())

	aliceQuiz, err := f.service.CreateQuiz(ctx, "u1", twoChoiceDraft())
	if err != nil {
		t.Fatalf("create alice quiz: %v", err)
	}
	aliceAnswer, err := f.service.SubmitAnswers(ctx, "u1", ownerQuiz.ID, []domain.Answer{choice(0), choice(1)})
	if err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	if _, err := f.service.SubmitAnswers(ctx, "u2", aliceQuiz.ID, []domain.Answer{choice(0), choice(0)}); err != nil {
		t.Fatalf("bob submit: %v", err)
	}
	bobOnOwner, err := f.service.SubmitAnswers(ctx, "u2", ownerQuiz.ID, []domain.Answer{choice(1), choice(1)})
	if err != nil {
		t.Fatalf("bob submit owner quiz: %v", err)
	}

	if err := f.service.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := f.users.FindByID(ctx, "u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected alice gone, got %v", err)
	}
	if _, err := f.quizzes.FindByID(ctx, aliceQuiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected alice's quiz gone, got %v", err)
	}
	if _, err := f.results.FindByID(ctx, aliceAnswer.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected alice's result gone, got %v", err)
	}

	left, _ := f.results.All(ctx)
	if len(left) != 1 || left[0].ID != bobOnOwner.ID {
		t.Fatalf("expected only bob's result on the owner quiz, got %+v", left)
	}
	bob, _ := f.users.FindByID(ctx, "u2")
	if len(bob.Results) != 1 || bob.Results[0] != bobOnOwner.ID {
		t.Fatalf("expected bob to keep one result, got %v", bob.Results)
	}
	stored, _ := f.quizzes.FindByID(ctx, ownerQuiz.ID)
	if len(stored.Results) != 1 || stored.Results[0] != bobOnOwner.ID {
		t.Fatalf("expected owner quiz to drop alice's result, got %v", stored.Results)
	}
}

func TestDeleteUserMissing(t *testing.T) {
	f := newFixture(t)
	if err := f.service.DeleteUser(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepairRelinksAndRemovesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	quiz := f.createQuiz(t, twoChoiceDraft())

	linked, err := f.service.SubmitAnswers(ctx, "u1", quiz.ID, []domain.Answer{choice(0), choice(1)})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	orphan, err := f.service.SubmitAnswers(ctx, "u2", quiz.ID, []domain.Answer{choice(0), choice(1)})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Break the quiz back-reference and remove bob without cascading.
	if err := f.quizzes.RemoveResult(ctx, quiz.ID, linked.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := f.users.Delete(ctx, "u2"); err != nil {
		t.Fatalf("delete bob: %v", err)
	}

	report, err := f.service.Repair(ctx)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if report.Checked != 2 || report.Relinked != 1 || report.Orphans != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	stored, _ := f.quizzes.FindByID(ctx, quiz.ID)
	if len(stored.Results) != 1 || stored.Results[0] != linked.ID {
		t.Fatalf("expected quiz to reference only alice's result, got %v", stored.Results)
	}
	if _, err := f.results.FindByID(ctx, orphan.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected orphan removed, got %v", err)
	}

	again, err := f.service.Repair(ctx)
	if err != nil {
		t.Fatalf("second repair: %v", err)
	}
	if again.Relinked != 0 || again.Orphans != 0 {
		t.Fatalf("second run must be a no-op, got %+v", again)
	}
}
