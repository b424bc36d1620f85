package app

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// RepairReport summarizes a Repair run.
type RepairReport struct {
	Checked  int
	Relinked int
	Orphans  int
}

// Repair reconciles back-references from the results, which are the source of
// truth: missing quiz and user links are re-added, and results whose quiz or
// respondent is gone are deleted. Running it twice changes nothing the second
// time.
func (s *QuizService) Repair(ctx context.Context) (RepairReport, error) {
	var report RepairReport
	results, err := s.results.All(ctx)
	if err != nil {
		return report, err
	}

	for _, r := range results {
		report.Checked++

		quiz, err := s.quizzes.FindByID(ctx, r.Quiz)
		quizGone := errors.Is(err, domain.ErrQuizNotFound)
		if err != nil && !quizGone {
			return report, err
		}
		user, err := s.users.FindByID(ctx, r.User)
		userGone := errors.Is(err, domain.ErrUserNotFound)
		if err != nil && !userGone {
			return report, err
		}

		if quizGone || userGone {
			if err := s.results.Delete(ctx, r.ID); err != nil {
				return report, err
			}
			if !userGone {
				if err := s.users.RemoveResult(ctx, r.User, r.ID); err != nil {
					return report, err
				}
			}
			if !quizGone {
				if err := s.quizzes.RemoveResult(ctx, r.Quiz, r.ID); err != nil {
					return report, err
				}
			}
			report.Orphans++
			continue
		}

		relinked := false
		if !slices.Contains(quiz.Results, r.ID) {
			if err := s.quizzes.AddResult(ctx, quiz.ID, r.ID); err != nil {
				return report, err
			}
			relinked = true
		}
		if !slices.Contains(user.Results, r.ID) {
			if err := s.users.AddResult(ctx, user.ID, r.ID); err != nil {
				return report, err
			}
			relinked = true
		}
		if relinked {
			report.Relinked++
		}
	}

	s.log.Info("repair finished",
		zap.Int("checked", report.Checked),
		zap.Int("relinked", report.Relinked),
		zap.Int("orphans", report.Orphans),
	)
	return report, nil
}
