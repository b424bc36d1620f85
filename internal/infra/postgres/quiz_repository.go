package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub-service/internal/domain"
)

const quizColumns = `id, user_id, title, expiration, is_public, questions, allowed_users,
	show_correct_answers, allow_multiple_responses, results, created_at`

// QuizRepository stores quizzes in Postgres with questions as JSONB.
type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (domain.Quiz, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) Insert(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO quizzes (`+quizColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		quiz.ID, quiz.User, quiz.Title, quiz.Expiration, quiz.IsPublic, string(questions),
		nonNil(quiz.AllowedUsers), quiz.ShowCorrectAnswers, quiz.AllowMultipleResponses,
		nonNil(quiz.Results), quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) Update(ctx context.Context, id string, update domain.QuizUpdate) error {
	questions, err := json.Marshal(update.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE quizzes SET
		title = $2, expiration = $3, is_public = $4, questions = $5, allowed_users = $6,
		show_correct_answers = $7, allow_multiple_responses = $8
		WHERE id = $1`,
		id, update.Title, update.Expiration, update.IsPublic, string(questions),
		nonNil(update.AllowedUsers), update.ShowCorrectAnswers, update.AllowMultipleResponses,
	)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return r.query(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (r *QuizRepository) FindVisibleTo(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return r.query(ctx, `SELECT `+quizColumns+` FROM quizzes
		WHERE is_public OR user_id = $1 OR $1 = ANY(allowed_users)
		ORDER BY created_at, id`, userID)
}

func (r *QuizRepository) AddResult(ctx context.Context, quizID, resultID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE quizzes SET results = array_append(results, $2)
		WHERE id = $1 AND NOT ($2 = ANY(results))`, quizID, resultID)
	if err != nil {
		return fmt.Errorf("link result: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Either already linked or the quiz is gone.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, quizID).Scan(&exists); err != nil {
		return fmt.Errorf("link result: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) RemoveResult(ctx context.Context, quizID, resultID string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE quizzes SET results = array_remove(results, $2) WHERE id = $1`, quizID, resultID); err != nil {
		return fmt.Errorf("unlink result: %w", err)
	}
	return nil
}

func (r *QuizRepository) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func scanQuiz(row scanner) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		questions []byte
	)
	err := row.Scan(
		&quiz.ID, &quiz.User, &quiz.Title, &quiz.Expiration, &quiz.IsPublic, &questions,
		&quiz.AllowedUsers, &quiz.ShowCorrectAnswers, &quiz.AllowMultipleResponses,
		&quiz.Results, &quiz.CreatedAt,
	)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}
