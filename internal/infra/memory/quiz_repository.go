package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"quizhub-service/internal/domain"
)

// QuizRepository is an in-memory implementation of app.QuizRepository.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[string]domain.Quiz)}
}

func (r *QuizRepository) FindByID(_ context.Context, id string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (r *QuizRepository) Insert(_ context.Context, quiz domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (r *QuizRepository) Update(_ context.Context, id string, update domain.QuizUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	r.quizzes[id] = cloneQuiz(update.Apply(quiz))
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

func (r *QuizRepository) FindByUserID(_ context.Context, userID string) ([]domain.Quiz, error) {
	return r.filter(func(q domain.Quiz) bool { return q.User == userID }), nil
}

func (r *QuizRepository) FindVisibleTo(_ context.Context, userID string) ([]domain.Quiz, error) {
	return r.filter(func(q domain.Quiz) bool { return q.CanView(userID) }), nil
}

func (r *QuizRepository) AddResult(_ context.Context, quizID, resultID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if !slices.Contains(quiz.Results, resultID) {
		quiz.Results = append(slices.Clone(quiz.Results), resultID)
		r.quizzes[quizID] = quiz
	}
	return nil
}

func (r *QuizRepository) RemoveResult(_ context.Context, quizID, resultID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return nil
	}
	quiz.Results = without(quiz.Results, resultID)
	r.quizzes[quizID] = quiz
	return nil
}

func (r *QuizRepository) filter(keep func(domain.Quiz) bool) []domain.Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, q := range r.quizzes {
		if keep(q) {
			out = append(out, cloneQuiz(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	q.Questions = slices.Clone(q.Questions)
	for i := range q.Questions {
		q.Questions[i].Answers = slices.Clone(q.Questions[i].Answers)
	}
	q.AllowedUsers = slices.Clone(q.AllowedUsers)
	q.Results = slices.Clone(q.Results)
	return q
}

// without returns a copy of list with every occurrence of id removed.
func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
