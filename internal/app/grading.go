package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// Submission outcomes reported to Metrics.
const (
	OutcomeOK        = "ok"
	OutcomeForbidden = "forbidden"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// SubmitAnswers grades answers against the quiz and records the result. Every
// problem found in the submission is reported at once; nothing is stored
// unless the whole submission is valid.
func (s *QuizService) SubmitAnswers(ctx context.Context, respondentID, quizID string, answers []domain.Answer) (domain.Result, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		s.metrics.ObserveSubmission(outcomeOf(err))
		return domain.Result{}, err
	}
	result, err := s.submit(ctx, quiz, respondentID, answers)
	s.metrics.ObserveSubmission(outcomeOf(err))
	return result, err
}

func (s *QuizService) submit(ctx context.Context, quiz domain.Quiz, respondentID string, answers []domain.Answer) (domain.Result, error) {
	if !quiz.CanView(respondentID) {
		return domain.Result{}, domain.ErrForbidden
	}

	var problems domain.Problems
	now := s.now()
	if quiz.Expired(now) {
		problems.Add(domain.FieldError{
			Field:    "expiration",
			Message:  "quiz has expired",
			Value:    quiz.Expiration,
			Expected: "after " + now.UTC().Format(time.RFC3339),
		})
	}

	if !quiz.AllowMultipleResponses {
		release, err := s.locker.Acquire(ctx, submissionKey(quiz.ID, respondentID))
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			problems.Add(duplicateProblem("a response from this user is already being recorded"))
		case err != nil:
			return domain.Result{}, fmt.Errorf("acquire submission lock: %w", err)
		default:
			defer release()
			_, err := s.results.FindByUserAndQuizID(ctx, respondentID, quiz.ID)
			switch {
			case err == nil:
				problems.Add(duplicateProblem("user already responded to this quiz"))
			case !errors.Is(err, domain.ErrResultNotFound):
				return domain.Result{}, err
			}
		}
	}

	graded, score, gradeProblems := gradeAnswers(quiz, answers)
	problems.Add(gradeProblems...)
	if err := problems.Err(); err != nil {
		return domain.Result{}, err
	}

	result := domain.Result{
		ID:             s.newID(),
		User:           respondentID,
		Quiz:           quiz.ID,
		QuizOwner:      quiz.User,
		Answers:        graded,
		Score:          score,
		SingleResponse: !quiz.AllowMultipleResponses,
		CreatedAt:      now,
	}
	if err := s.results.Insert(ctx, result); err != nil {
		if errors.Is(err, domain.ErrDuplicateResult) {
			problems.Add(duplicateProblem("user already responded to this quiz (detected while recording)"))
			return domain.Result{}, problems.Err()
		}
		return domain.Result{}, err
	}

	// The result is the source of truth; a failed back-reference is repaired
	// by Repair.
	if err := s.quizzes.AddResult(ctx, quiz.ID, result.ID); err != nil {
		s.log.Warn("link result to quiz", zap.String("result", result.ID), zap.String("quiz", quiz.ID), zap.Error(err))
		return domain.Result{}, err
	}
	if err := s.users.AddResult(ctx, respondentID, result.ID); err != nil {
		s.log.Warn("link result to user", zap.String("result", result.ID), zap.String("user", respondentID), zap.Error(err))
		return domain.Result{}, err
	}

	s.feed.Publish(domain.ResultNotice{
		QuizID:      quiz.ID,
		ResultID:    result.ID,
		UserID:      respondentID,
		Score:       result.Score,
		SubmittedAt: result.CreatedAt,
	})
	s.log.Info("result recorded",
		zap.String("result", result.ID),
		zap.String("quiz", quiz.ID),
		zap.String("user", respondentID),
		zap.Float64("score", result.Score),
	)
	return result, nil
}

// gradeAnswers grades answers index by index. Problems accumulate across all
// indices so one response reports every offending answer.
func gradeAnswers(quiz domain.Quiz, answers []domain.Answer) ([]domain.GradedAnswer, float64, []domain.FieldError) {
	n := len(quiz.Questions)
	if len(answers) != n {
		return nil, 0, []domain.FieldError{{
			Field:    "answers",
			Message:  "answers length mismatch",
			Value:    len(answers),
			Expected: n,
		}}
	}

	var (
		problems []domain.FieldError
		score    float64
		correct  int
	)
	graded := make([]domain.GradedAnswer, 0, n)
	for i, question := range quiz.Questions {
		answer := answers[i]
		answer.Type = answer.Kind()
		if answer.Type != question.Kind() {
			problems = append(problems, domain.FieldError{
				Field:    "type",
				Message:  "answer type does not match question type",
				Value:    answer.Type,
				Expected: question.Kind(),
			}.At(i))
			continue
		}

		g := domain.GradedAnswer{Answer: answer}
		switch question.Kind() {
		case domain.MultipleChoice:
			if answer.Choice == nil {
				problems = append(problems, domain.FieldError{Field: "choice", Message: "choice is required"}.At(i))
				continue
			}
			if c := *answer.Choice; c < 0 || c >= len(question.Answers) {
				problems = append(problems, domain.FieldError{
					Field:    "choice",
					Message:  "choice out of range",
					Value:    c,
					Expected: fmt.Sprintf("[0, %d)", len(question.Answers)),
				}.At(i))
				continue
			}
			g.IsCorrect = *answer.Choice == question.CorrectIndex
			if quiz.ShowCorrectAnswers {
				idx := question.CorrectIndex
				g.CorrectChoice = &idx
			}
		case domain.FillIn:
			if answer.Text == "" {
				problems = append(problems, domain.FieldError{Field: "answer", Message: "answer must not be empty"}.At(i))
				continue
			}
			g.IsCorrect = answer.Text == question.CorrectText
			if quiz.ShowCorrectAnswers {
				text := question.CorrectText
				g.CorrectText = &text
			}
		default:
			problems = append(problems, domain.FieldError{
				Field:   "type",
				Message: "unknown question type",
				Value:   question.Type,
			}.At(i))
			continue
		}

		if g.IsCorrect {
			score += 1 / float64(n)
			correct++
		}
		graded = append(graded, g)
	}

	// Summing 1/n can land a hair below 1.
	if n > 0 && correct == n {
		score = 1
	}
	return graded, score, problems
}

func duplicateProblem(msg string) domain.FieldError {
	return domain.FieldError{Field: "quiz", Message: msg}
}

func submissionKey(quizID, userID string) string {
	return "quiz:" + quizID + ":submission:" + userID
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if verr, ok := domain.AsValidation(err); ok {
		if verr.Conflict {
			return OutcomeConflict
		}
		return OutcomeInvalid
	}
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrResultNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
