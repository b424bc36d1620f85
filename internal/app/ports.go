package app

import (
	"context"

	"quizhub-service/internal/domain"
)

// QuizRepository stores quiz documents. Back-reference mutations have set
// semantics so cascades can be retried.
type QuizRepository interface {
	FindByID(ctx context.Context, id string) (domain.Quiz, error)
	Insert(ctx context.Context, quiz domain.Quiz) error
	Update(ctx context.Context, id string, update domain.QuizUpdate) error
	Delete(ctx context.Context, id string) error
	FindByUserID(ctx context.Context, userID string) ([]domain.Quiz, error)
	FindVisibleTo(ctx context.Context, userID string) ([]domain.Quiz, error)
	AddResult(ctx context.Context, quizID, resultID string) error
	RemoveResult(ctx context.Context, quizID, resultID string) error
}

// ResultRepository stores graded results. Insert returns domain.ErrDuplicateResult
// when a single-response result for the same (user, quiz) already exists.
type ResultRepository interface {
	FindByID(ctx context.Context, id string) (domain.Result, error)
	Insert(ctx context.Context, result domain.Result) error
	Delete(ctx context.Context, id string) error
	FindByUserAndQuizID(ctx context.Context, userID, quizID string) (domain.Result, error)
	FindAllByQuizID(ctx context.Context, quizID string) ([]domain.Result, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Result, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteIfQuizIDIn(ctx context.Context, quizIDs []string) error
	All(ctx context.Context) ([]domain.Result, error)
}

// UserRepository stores accounts and their back-reference lists.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Insert(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
	// GetUsernames maps ids to usernames, skipping unknown ids.
	GetUsernames(ctx context.Context, ids []string) ([]string, error)
	// GetUserIDs maps usernames to ids, skipping unknown usernames.
	GetUserIDs(ctx context.Context, usernames []string) ([]string, error)
	AddQuiz(ctx context.Context, userID, quizID string) error
	RemoveQuiz(ctx context.Context, userID, quizID string) error
	AddResult(ctx context.Context, userID, resultID string) error
	RemoveResult(ctx context.Context, userID, resultID string) error
}

// SubmissionLocker guards the duplicate check and insert of one respondent's
// submission to a single-response quiz. Acquire returns domain.ErrLockHeld
// when another submission holds the key.
type SubmissionLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Metrics receives operation outcomes.
type Metrics interface {
	ObserveSubmission(outcome string)
	ObserveEdit(outcome string)
	ObserveDeletion(kind, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSubmission(string) {}

func (nopMetrics) ObserveEdit(string) {}

func (nopMetrics) ObserveDeletion(string, string) {}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
