package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub-service/internal/domain"
)

// QuizService contains the quiz and result use cases.
type QuizService struct {
	quizzes QuizRepository
	results ResultRepository
	users   UserRepository
	locker  SubmissionLocker
	feed    *ResultFeed
	metrics Metrics
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithLocker sets the submission lock used for single-response quizzes.
func WithLocker(l SubmissionLocker) Option {
	return func(s *QuizService) { s.locker = l }
}

// WithFeed sets the hub receiving result notices.
func WithFeed(f *ResultFeed) Option {
	return func(s *QuizService) { s.feed = f }
}

// WithMetrics sets the outcome recorder.
func WithMetrics(m Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *QuizService) { s.log = l }
}

// WithClock is used by tests for deterministic expiration checks.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(quizzes QuizRepository, results ResultRepository, users UserRepository, opts ...Option) *QuizService {
	s := &QuizService{
		quizzes: quizzes,
		results: results,
		users:   users,
		locker:  nopLocker{},
		feed:    NewResultFeed(),
		metrics: nopMetrics{},
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed exposes the result hub for transports that stream notices.
func (s *QuizService) Feed() *ResultFeed {
	return s.feed
}

// CreateQuiz validates a draft, stores it and links it to its owner.
func (s *QuizService) CreateQuiz(ctx context.Context, ownerID string, draft domain.QuizDraft) (domain.Quiz, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return domain.Quiz{}, err
	}

	var problems domain.Problems
	if strings.TrimSpace(draft.Title) == "" {
		problems.Add(domain.FieldError{Field: "title", Message: "title must not be empty"})
	}
	now := s.now()
	if !draft.Expiration.After(now) {
		problems.Add(expirationProblem(draft.Expiration, now))
	}
	if len(draft.Questions) == 0 {
		problems.Add(domain.FieldError{Field: "questions", Message: "quiz needs at least one question"})
	}
	problems.Add(questionProblems(draft.Questions)...)
	if err := problems.Err(); err != nil {
		return domain.Quiz{}, err
	}

	allowed, err := s.resolveUsernames(ctx, draft.AllowedUsers)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:                     s.newID(),
		User:                   ownerID,
		Title:                  draft.Title,
		Expiration:             draft.Expiration,
		IsPublic:               draft.IsPublic,
		Questions:              draft.Questions,
		AllowedUsers:           allowed,
		ShowCorrectAnswers:     draft.ShowCorrectAnswers,
		AllowMultipleResponses: draft.AllowMultipleResponses,
		Results:                []string{},
		CreatedAt:              now,
	}
	if err := s.quizzes.Insert(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.users.AddQuiz(ctx, ownerID, quiz.ID); err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz created", zap.String("quiz", quiz.ID), zap.String("owner", ownerID), zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// QuizView is either the owner's full view or a respondent's answer form.
type QuizView struct {
	Full *domain.FullQuiz
	Form *domain.AnswerForm
}

// GetQuiz returns the full view to the owner and the answer form to other
// permitted viewers.
func (s *QuizService) GetQuiz(ctx context.Context, viewerID, quizID string) (QuizView, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return QuizView{}, err
	}
	if quiz.User == viewerID {
		usernames, err := s.users.GetUsernames(ctx, quiz.AllowedUsers)
		if err != nil {
			return QuizView{}, err
		}
		full := quiz.ToFull(usernames)
		return QuizView{Full: &full}, nil
	}
	if !quiz.CanView(viewerID) {
		return QuizView{}, domain.ErrForbidden
	}
	form := quiz.ToAnswerForm()
	return QuizView{Form: &form}, nil
}

// ListMyQuizzes lists the quizzes owned by ownerID.
func (s *QuizService) ListMyQuizzes(ctx context.Context, ownerID string) ([]domain.QuizListing, error) {
	quizzes, err := s.quizzes.FindByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.listings(ctx, quizzes)
}

// ListAvailableQuizzes lists every quiz viewerID may answer or manage.
func (s *QuizService) ListAvailableQuizzes(ctx context.Context, viewerID string) ([]domain.QuizListing, error) {
	quizzes, err := s.quizzes.FindVisibleTo(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.listings(ctx, quizzes)
}

func (s *QuizService) listings(ctx context.Context, quizzes []domain.Quiz) ([]domain.QuizListing, error) {
	owners := make(map[string]string)
	now := s.now()
	out := make([]domain.QuizListing, 0, len(quizzes))
	for _, q := range quizzes {
		name, ok := owners[q.User]
		if !ok {
			owner, err := s.users.FindByID(ctx, q.User)
			switch {
			case err == nil:
				name = owner.Username
			case errors.Is(err, domain.ErrUserNotFound):
			default:
				return nil, err
			}
			owners[q.User] = name
		}
		out = append(out, q.ToListing(name, now))
	}
	return out, nil
}

func (s *QuizService) resolveUsernames(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return []string{}, nil
	}
	normalized := make([]string, 0, len(usernames))
	for _, name := range usernames {
		if n := normalizeUsername(name); n != "" {
			normalized = append(normalized, n)
		}
	}
	ids, err := s.users.GetUserIDs(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func questionProblems(questions []domain.Question) []domain.FieldError {
	var out []domain.FieldError
	for i, q := range questions {
		for _, p := range domain.ValidateQuestion(q) {
			p.Field = "questions." + p.Field
			out = append(out, p.At(i))
		}
	}
	return out
}

func expirationProblem(expiration, now time.Time) domain.FieldError {
	return domain.FieldError{
		Field:    "expiration",
		Message:  "expiration must be in the future",
		Value:    expiration,
		Expected: "after " + now.UTC().Format(time.RFC3339),
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
