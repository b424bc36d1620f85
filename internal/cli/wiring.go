package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/config"
	"quizhub-service/internal/infra/memory"
	"quizhub-service/internal/infra/postgres"
	infraredis "quizhub-service/internal/infra/redis"
)

// stores holds the repositories selected by the config.
type stores struct {
	quizzes app.QuizRepository
	results app.ResultRepository
	users   app.UserRepository
	locker  app.SubmissionLocker
	close   func()
}

// openStores uses Postgres when configured and memory otherwise. Redis, when
// configured, adds the quiz cache and the shared submission lock.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{
		quizzes: memory.NewQuizRepository(),
		results: memory.NewResultRepository(),
		users:   memory.NewUserRepository(),
		locker:  memory.NewSubmissionLocker(),
	}
	var closers []func()

	if cfg.Postgres.URL != "" {
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		s.quizzes = postgres.NewQuizRepository(pool)
		s.results = postgres.NewResultRepository(pool)
		s.users = postgres.NewUserRepository(pool)
	} else {
		log.Warn("postgres url not configured, using in-memory storage")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			closeAll(closers)
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
		s.quizzes = infraredis.NewQuizCache(s.quizzes, client, cacheTTL, log)
		s.locker = infraredis.NewSubmissionLocker(client, config.TTLDuration(cfg.Submission.LockTTL, 10*time.Second))
	}

	s.close = func() { closeAll(closers) }
	return s, nil
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
