package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// DeleteQuiz removes an owned quiz together with its results. Results and
// their back-references go first so an interrupted run leaves only orphaned
// results, which Repair and a retried delete both clean up.
func (s *QuizService) DeleteQuiz(ctx context.Context, requesterID, quizID string) error {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		s.metrics.ObserveDeletion("quiz", outcomeOf(err))
		return err
	}
	if quiz.User != requesterID {
		s.metrics.ObserveDeletion("quiz", OutcomeForbidden)
		return domain.ErrForbidden
	}
	err = s.deleteQuiz(ctx, quiz)
	s.metrics.ObserveDeletion("quiz", outcomeOf(err))
	return err
}

func (s *QuizService) deleteQuiz(ctx context.Context, quiz domain.Quiz) error {
	stored, err := s.results.FindAllByQuizID(ctx, quiz.ID)
	if err != nil {
		return err
	}
	storedIDs := make([]string, 0, len(stored))
	for _, r := range stored {
		storedIDs = append(storedIDs, r.ID)
	}
	ids := union(quiz.Results, storedIDs)

	for _, id := range ids {
		result, err := s.results.FindByID(ctx, id)
		if errors.Is(err, domain.ErrResultNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.results.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete result %s: %w", id, err)
		}
		if err := s.users.RemoveResult(ctx, result.User, id); err != nil {
			return fmt.Errorf("unlink result %s: %w", id, err)
		}
	}
	if err := s.users.RemoveQuiz(ctx, quiz.User, quiz.ID); err != nil {
		return fmt.Errorf("unlink quiz %s: %w", quiz.ID, err)
	}
	if err := s.quizzes.Delete(ctx, quiz.ID); err != nil {
		return err
	}
	s.feed.Close(quiz.ID)
	s.log.Info("quiz deleted", zap.String("quiz", quiz.ID), zap.Int("results", len(ids)))
	return nil
}

// DeleteUser removes a user, every result they submitted, and every quiz
// they own along with the results submitted to those quizzes.
func (s *QuizService) DeleteUser(ctx context.Context, userID string) error {
	err := s.deleteUser(ctx, userID)
	s.metrics.ObserveDeletion("user", outcomeOf(err))
	return err
}

func (s *QuizService) deleteUser(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	own, err := s.results.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range own {
		if err := s.quizzes.RemoveResult(ctx, r.Quiz, r.ID); err != nil {
			return fmt.Errorf("unlink result %s: %w", r.ID, err)
		}
	}
	if err := s.results.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	quizzes, err := s.quizzes.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	quizIDs := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
		received, err := s.results.FindAllByQuizID(ctx, q.ID)
		if err != nil {
			return err
		}
		for _, r := range received {
			if err := s.users.RemoveResult(ctx, r.User, r.ID); err != nil {
				return fmt.Errorf("unlink result %s: %w", r.ID, err)
			}
		}
	}
	if err := s.results.DeleteIfQuizIDIn(ctx, quizIDs); err != nil {
		return err
	}
	for _, id := range quizIDs {
		if err := s.quizzes.Delete(ctx, id); err != nil {
			return err
		}
		s.feed.Close(id)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user", userID), zap.Int("results", len(own)), zap.Int("quizzes", len(quizIDs)))
	return nil
}
