package memory

import (
	"context"
	"slices"
	"sync"

	"quizhub-service/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *UserRepository) Insert(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *UserRepository) GetUsernames(_ context.Context, ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user.Username)
		}
	}
	return out, nil
}

func (r *UserRepository) GetUserIDs(_ context.Context, usernames []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(usernames))
	for _, name := range usernames {
		for _, user := range r.users {
			if user.Username == name && !slices.Contains(out, user.ID) {
				out = append(out, user.ID)
				break
			}
		}
	}
	return out, nil
}

func (r *UserRepository) AddQuiz(_ context.Context, userID, quizID string) error {
	return r.mutate(userID, func(u *domain.User) {
		if !slices.Contains(u.Quizzes, quizID) {
			u.Quizzes = append(u.Quizzes, quizID)
		}
	})
}

func (r *UserRepository) RemoveQuiz(_ context.Context, userID, quizID string) error {
	return r.mutate(userID, func(u *domain.User) { u.Quizzes = without(u.Quizzes, quizID) })
}

func (r *UserRepository) AddResult(_ context.Context, userID, resultID string) error {
	return r.mutate(userID, func(u *domain.User) {
		if !slices.Contains(u.Results, resultID) {
			u.Results = append(u.Results, resultID)
		}
	})
}

func (r *UserRepository) RemoveResult(_ context.Context, userID, resultID string) error {
	return r.mutate(userID, func(u *domain.User) { u.Results = without(u.Results, resultID) })
}

// mutate applies fn to a copy of the user. Missing users are a no-op so
// cascades stay idempotent.
func (r *UserRepository) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	user = cloneUser(user)
	fn(&user)
	r.users[userID] = user
	return nil
}

func cloneUser(u domain.User) domain.User {
	u.Quizzes = slices.Clone(u.Quizzes)
	u.Results = slices.Clone(u.Results)
	return u
}
