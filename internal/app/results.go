package app

import (
	"context"

	"quizhub-service/internal/domain"
)

// GetResult returns a result to its respondent or to the quiz owner.
func (s *QuizService) GetResult(ctx context.Context, viewerID, resultID string) (domain.Result, error) {
	result, err := s.results.FindByID(ctx, resultID)
	if err != nil {
		return domain.Result{}, err
	}
	if result.User != viewerID && result.QuizOwner != viewerID {
		return domain.Result{}, domain.ErrForbidden
	}
	return result, nil
}

// ListMyResults lists the results submitted by userID.
func (s *QuizService) ListMyResults(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.results.FindByUserID(ctx, userID)
}

// ListQuizResults lists every result of a quiz for its owner.
func (s *QuizService) ListQuizResults(ctx context.Context, ownerID, quizID string) ([]domain.Result, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.User != ownerID {
		return nil, domain.ErrForbidden
	}
	return s.results.FindAllByQuizID(ctx, quizID)
}

// SubscribeResults streams notices for new results of an owned quiz. The
// caller must invoke the returned cancel function.
func (s *QuizService) SubscribeResults(ctx context.Context, ownerID, quizID string) (<-chan domain.ResultNotice, func(), error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	if quiz.User != ownerID {
		return nil, nil, domain.ErrForbidden
	}
	ch, cancel := s.feed.Subscribe(quizID)
	return ch, cancel, nil
}
