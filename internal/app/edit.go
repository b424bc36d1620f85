package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// EditQuiz applies an owner's edit. Edits may not change the graded structure
// of the quiz, and the allow-list keeps every user who already responded.
// The edit is applied whole or not at all.
func (s *QuizService) EditQuiz(ctx context.Context, requesterID, quizID string, edit domain.QuizEdit) error {
	original, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		s.metrics.ObserveEdit(outcomeOf(err))
		return err
	}
	err = s.reconcileEdit(ctx, original, edit, requesterID)
	s.metrics.ObserveEdit(outcomeOf(err))
	return err
}

func (s *QuizService) reconcileEdit(ctx context.Context, original domain.Quiz, edit domain.QuizEdit, requesterID string) error {
	if original.User != requesterID {
		return domain.ErrForbidden
	}

	var problems domain.Problems
	if strings.TrimSpace(edit.Title) == "" {
		problems.Add(domain.FieldError{Field: "title", Message: "title must not be empty"})
	}
	// An untouched expiration is accepted even if it has passed since.
	now := s.now()
	if !edit.Expiration.Equal(original.Expiration) && !edit.Expiration.After(now) {
		problems.Add(expirationProblem(edit.Expiration, now))
	}
	problems.Add(questionProblems(edit.Questions)...)
	if !questionsCompatible(original.Questions, edit.Questions) {
		problems.AddConflict(domain.FieldError{
			Field:   "questions",
			Message: "cannot change correct answers, answer counts, question types or question count",
		})
	}
	if err := problems.Err(); err != nil {
		return err
	}

	allowed, err := s.resolveUsernames(ctx, edit.AllowedUsers)
	if err != nil {
		return err
	}
	respondents, err := s.respondents(ctx, original)
	if err != nil {
		return err
	}

	update := domain.QuizUpdate{
		Title:                  edit.Title,
		Expiration:             edit.Expiration,
		IsPublic:               edit.IsPublic,
		Questions:              edit.Questions,
		AllowedUsers:           union(allowed, respondents),
		ShowCorrectAnswers:     edit.ShowCorrectAnswers,
		AllowMultipleResponses: edit.AllowMultipleResponses,
	}
	if err := s.quizzes.Update(ctx, original.ID, update); err != nil {
		return err
	}
	s.log.Info("quiz edited", zap.String("quiz", original.ID), zap.Int("allowedUsers", len(update.AllowedUsers)))
	return nil
}

func questionsCompatible(original, edited []domain.Question) bool {
	if len(original) != len(edited) {
		return false
	}
	for i := range original {
		if !domain.Compatible(original[i], edited[i]) {
			return false
		}
	}
	return true
}

// respondents lists the users holding a result for the quiz. Stored results
// are authoritative; back-referenced ids are merged in and dangling ones
// skipped.
func (s *QuizService) respondents(ctx context.Context, quiz domain.Quiz) ([]string, error) {
	stored, err := s.results.FindAllByQuizID(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(stored)+len(quiz.Results))
	seen := make(map[string]struct{}, len(stored))
	for _, r := range stored {
		seen[r.ID] = struct{}{}
		users = append(users, r.User)
	}
	for _, id := range quiz.Results {
		if _, ok := seen[id]; ok {
			continue
		}
		result, err := s.results.FindByID(ctx, id)
		if errors.Is(err, domain.ErrResultNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, result.User)
	}
	return users, nil
}

// union merges b into a keeping first-seen order and dropping duplicates.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
