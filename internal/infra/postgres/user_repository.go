package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub-service/internal/domain"
)

const userColumns = `id, username, password_hash, quizzes, results, created_at`

// UserRepository stores accounts and their back-reference arrays.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) Insert(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.PasswordHash, nonNil(user.Quizzes), nonNil(user.Results), user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// GetUsernames keeps the order of ids.
func (r *UserRepository) GetUsernames(ctx context.Context, ids []string) ([]string, error) {
	byID, err := r.pairs(ctx, `SELECT id, username FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return pick(ids, byID), nil
}

// GetUserIDs keeps the order of usernames.
func (r *UserRepository) GetUserIDs(ctx context.Context, usernames []string) ([]string, error) {
	byName, err := r.pairs(ctx, `SELECT username, id FROM users WHERE username = ANY($1)`, usernames)
	if err != nil {
		return nil, err
	}
	return pick(usernames, byName), nil
}

func (r *UserRepository) AddQuiz(ctx context.Context, userID, quizID string) error {
	return r.exec(ctx, `UPDATE users SET quizzes = array_append(quizzes, $2)
		WHERE id = $1 AND NOT ($2 = ANY(quizzes))`, userID, quizID)
}

func (r *UserRepository) RemoveQuiz(ctx context.Context, userID, quizID string) error {
	return r.exec(ctx, `UPDATE users SET quizzes = array_remove(quizzes, $2) WHERE id = $1`, userID, quizID)
}

func (r *UserRepository) AddResult(ctx context.Context, userID, resultID string) error {
	return r.exec(ctx, `UPDATE users SET results = array_append(results, $2)
		WHERE id = $1 AND NOT ($2 = ANY(results))`, userID, resultID)
}

func (r *UserRepository) RemoveResult(ctx context.Context, userID, resultID string) error {
	return r.exec(ctx, `UPDATE users SET results = array_remove(results, $2) WHERE id = $1`, userID, resultID)
}

func (r *UserRepository) findOne(ctx context.Context, sql string, arg string) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Quizzes, &user.Results, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) pairs(ctx context.Context, sql string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, sql, keys)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...interface{}) error {
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// pick maps keys through m in order, skipping misses and repeats.
func pick(keys []string, m map[string]string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
