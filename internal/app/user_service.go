package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

const minPasswordLength = 8

// UserService registers and authenticates accounts.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(users UserRepository, hasher PasswordHasher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, log: log, now: time.Now}
}

// Register creates an account. Usernames are case-insensitive.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	name := normalizeUsername(username)

	var problems domain.Problems
	if name == "" {
		problems.Add(domain.FieldError{Field: "username", Message: "username must not be empty"})
	}
	if len(password) < minPasswordLength {
		problems.Add(domain.FieldError{Field: "password", Message: "password is too short", Expected: ">= 8 characters"})
	}
	if err := problems.Err(); err != nil {
		return domain.User{}, err
	}

	if _, err := s.users.FindByUsername(ctx, name); err == nil {
		return domain.User{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     name,
		PasswordHash: hash,
		Quizzes:      []string{},
		Results:      []string{},
		CreatedAt:    s.now(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", zap.String("user", user.ID))
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.FindByUsername(ctx, normalizeUsername(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.users.FindByID(ctx, id)
}
