package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// fillScript stores a freshly loaded document only while the version token
// read before loading is still current.
var fillScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or ""
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// QuizCache caches quiz documents in Redis in front of another
// app.QuizRepository. Reads fill the cache, every write drops the cached copy
// and rotates the quiz's version token so an in-flight fill cannot store a
// stale document. Documents are stored as JSON under quiz:{quizID}.
type QuizCache struct {
	app.QuizRepository

	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizCache(next app.QuizRepository, client *redis.Client, ttl time.Duration, log *zap.Logger) *QuizCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizCache{
		QuizRepository: next,
		client:         client,
		ttl:            ttl,
		log:            log,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) FindByID(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, id); ok {
		return quiz, nil
	}

	// The fill is shared, so one caller's cancellation must not fail the rest.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if quiz, ok := c.cached(fillCtx, id); ok {
			return quiz, nil
		}
		version, err := c.client.Get(fillCtx, c.versionKey(id)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			c.log.Warn("read quiz version", zap.String("quiz", id), zap.Error(err))
			return c.QuizRepository.FindByID(fillCtx, id)
		}
		quiz, err := c.QuizRepository.FindByID(fillCtx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.fill(fillCtx, quiz, version)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

func (c *QuizCache) fill(ctx context.Context, quiz domain.Quiz, version string) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	keys := []string{c.key(quiz.ID), c.versionKey(quiz.ID)}
	if err := fillScript.Run(ctx, c.client, keys, version, raw, ttl.Milliseconds()).Err(); err != nil {
		c.log.Warn("cache quiz", zap.String("quiz", quiz.ID), zap.Error(err))
	}
}

func (c *QuizCache) Insert(ctx context.Context, quiz domain.Quiz) error {
	if err := c.QuizRepository.Insert(ctx, quiz); err != nil {
		return err
	}
	return c.invalidate(ctx, quiz.ID)
}

func (c *QuizCache) Update(ctx context.Context, id string, update domain.QuizUpdate) error {
	if err := c.QuizRepository.Update(ctx, id, update); err != nil {
		return err
	}
	return c.invalidate(ctx, id)
}

func (c *QuizCache) Delete(ctx context.Context, id string) error {
	if err := c.QuizRepository.Delete(ctx, id); err != nil {
		return err
	}
	return c.invalidate(ctx, id)
}

func (c *QuizCache) AddResult(ctx context.Context, quizID, resultID string) error {
	if err := c.QuizRepository.AddResult(ctx, quizID, resultID); err != nil {
		return err
	}
	return c.invalidate(ctx, quizID)
}

func (c *QuizCache) RemoveResult(ctx context.Context, quizID, resultID string) error {
	if err := c.QuizRepository.RemoveResult(ctx, quizID, resultID); err != nil {
		return err
	}
	return c.invalidate(ctx, quizID)
}

func (c *QuizCache) cached(ctx context.Context, id string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("read cached quiz", zap.String("quiz", id), zap.Error(err))
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		c.log.Warn("decode cached quiz", zap.String("quiz", id), zap.Error(err))
		return domain.Quiz{}, false
	}
	return quiz, true
}

// invalidate drops the cached copy and rotates the version token. A failure
// fails the write.
func (c *QuizCache) invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.versionKey(id), uuid.NewString(), c.versionTTL())
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate quiz %s: %w", id, err)
	}
	return nil
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id
}

func (c *QuizCache) versionKey(id string) string {
	return "quiz:" + id + ":version"
}

// versionTTL outlives any fill that could have read the previous token.
func (c *QuizCache) versionTTL() time.Duration {
	return 2*c.ttl + time.Minute
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
