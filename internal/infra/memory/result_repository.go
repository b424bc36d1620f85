package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"quizhub-service/internal/domain"
)

// ResultRepository is an in-memory implementation of app.ResultRepository.
// Like the Postgres partial unique index, it rejects a second single-response
// result for the same user and quiz.
type ResultRepository struct {
	mu      sync.RWMutex
	results map[string]domain.Result
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{results: make(map[string]domain.Result)}
}

func (r *ResultRepository) FindByID(_ context.Context, id string) (domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[id]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return cloneResult(result), nil
}

func (r *ResultRepository) Insert(_ context.Context, result domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.SingleResponse {
		for _, existing := range r.results {
			if existing.SingleResponse && existing.User == result.User && existing.Quiz == result.Quiz {
				return domain.ErrDuplicateResult
			}
		}
	}
	r.results[result.ID] = cloneResult(result)
	return nil
}

func (r *ResultRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, id)
	return nil
}

func (r *ResultRepository) FindByUserAndQuizID(_ context.Context, userID, quizID string) (domain.Result, error) {
	matches := r.filter(func(res domain.Result) bool { return res.User == userID && res.Quiz == quizID })
	if len(matches) == 0 {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return matches[0], nil
}

func (r *ResultRepository) FindAllByQuizID(_ context.Context, quizID string) ([]domain.Result, error) {
	return r.filter(func(res domain.Result) bool { return res.Quiz == quizID }), nil
}

func (r *ResultRepository) FindByUserID(_ context.Context, userID string) ([]domain.Result, error) {
	return r.filter(func(res domain.Result) bool { return res.User == userID }), nil
}

func (r *ResultRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.deleteWhere(func(res domain.Result) bool { return res.User == userID })
	return nil
}

func (r *ResultRepository) DeleteIfQuizIDIn(_ context.Context, quizIDs []string) error {
	r.deleteWhere(func(res domain.Result) bool { return slices.Contains(quizIDs, res.Quiz) })
	return nil
}

func (r *ResultRepository) All(_ context.Context) ([]domain.Result, error) {
	return r.filter(func(domain.Result) bool { return true }), nil
}

func (r *ResultRepository) filter(keep func(domain.Result) bool) []domain.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Result, 0)
	for _, res := range r.results {
		if keep(res) {
			out = append(out, cloneResult(res))
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

func (r *ResultRepository) deleteWhere(match func(domain.Result) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, res := range r.results {
		if match(res) {
			delete(r.results, id)
		}
	}
}

func cloneResult(res domain.Result) domain.Result {
	res.Answers = slices.Clone(res.Answers)
	return res
}
