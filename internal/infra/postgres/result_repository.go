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

const resultColumns = `id, user_id, quiz_id, quiz_owner, answers, score, single_response, created_at`

// ResultRepository stores graded results. The partial unique index on
// (user_id, quiz_id) turns a concurrent second response into
// domain.ErrDuplicateResult.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) FindByID(ctx context.Context, id string) (domain.Result, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM results WHERE id = $1`, id)
	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	return result, nil
}

func (r *ResultRepository) Insert(ctx context.Context, result domain.Result) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, result.User, result.Quiz, result.QuizOwner, string(answers),
		result.Score, result.SingleResponse, result.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateResult
	}
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM results WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (r *ResultRepository) FindByUserAndQuizID(ctx context.Context, userID, quizID string) (domain.Result, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM results
		WHERE user_id = $1 AND quiz_id = $2 ORDER BY created_at, id LIMIT 1`, userID, quizID)
	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	return result, nil
}

func (r *ResultRepository) FindAllByQuizID(ctx context.Context, quizID string) ([]domain.Result, error) {
	return r.query(ctx, `SELECT `+resultColumns+` FROM results WHERE quiz_id = $1 ORDER BY created_at, id`, quizID)
}

func (r *ResultRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Result, error) {
	return r.query(ctx, `SELECT `+resultColumns+` FROM results WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (r *ResultRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM results WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	return nil
}

func (r *ResultRepository) DeleteIfQuizIDIn(ctx context.Context, quizIDs []string) error {
	if len(quizIDs) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM results WHERE quiz_id = ANY($1)`, quizIDs); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	return nil
}

func (r *ResultRepository) All(ctx context.Context) ([]domain.Result, error) {
	return r.query(ctx, `SELECT `+resultColumns+` FROM results ORDER BY created_at, id`)
}

func (r *ResultRepository) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Result, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Result, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(row scanner) (domain.Result, error) {
	var (
		result  domain.Result
		answers []byte
	)
	err := row.Scan(
		&result.ID, &result.User, &result.Quiz, &result.QuizOwner, &answers,
		&result.Score, &result.SingleResponse, &result.CreatedAt,
	)
	if err != nil {
		return domain.Result{}, err
	}
	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return result, nil
}
