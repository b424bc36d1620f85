package domain

import (
	"slices"
	"time"
)

// Quiz is an owned, titled collection of ordered questions.
type Quiz struct {
	ID                     string     `json:"id"`
	User                   string     `json:"user"`
	Title                  string     `json:"title"`
	Expiration             time.Time  `json:"expiration"`
	IsPublic               bool       `json:"isPublic"`
	Questions              []Question `json:"questions"`
	AllowedUsers           []string   `json:"allowedUsers"`
	ShowCorrectAnswers     bool       `json:"showCorrectAnswers"`
	AllowMultipleResponses bool       `json:"allowMultipleResponses"`
	Results                []string   `json:"results"`
	CreatedAt              time.Time  `json:"createdAt"`
}

// CanView reports whether userID may view and answer the quiz.
func (q Quiz) CanView(userID string) bool {
	return q.IsPublic || q.User == userID || slices.Contains(q.AllowedUsers, userID)
}

// Expired reports whether the quiz stopped accepting responses at now.
func (q Quiz) Expired(now time.Time) bool {
	return !q.Expiration.After(now)
}

// QuizDraft is the payload for creating a quiz. AllowedUsers holds usernames.
type QuizDraft struct {
	Title                  string     `json:"title"`
	Expiration             time.Time  `json:"expiration"`
	IsPublic               bool       `json:"isPublic"`
	Questions              []Question `json:"questions"`
	AllowedUsers           []string   `json:"allowedUsers"`
	ShowCorrectAnswers     bool       `json:"showCorrectAnswers"`
	AllowMultipleResponses bool       `json:"allowMultipleResponses"`
}

// QuizEdit is the payload for editing a quiz. It has the same shape as a draft.
type QuizEdit = QuizDraft

// QuizUpdate replaces the mutable fields of a stored quiz. Owner and results
// are never part of an update.
type QuizUpdate struct {
	Title                  string
	Expiration             time.Time
	IsPublic               bool
	Questions              []Question
	AllowedUsers           []string
	ShowCorrectAnswers     bool
	AllowMultipleResponses bool
}

// Apply returns q with the update applied.
func (u QuizUpdate) Apply(q Quiz) Quiz {
	q.Title = u.Title
	q.Expiration = u.Expiration
	q.IsPublic = u.IsPublic
	q.Questions = u.Questions
	q.AllowedUsers = u.AllowedUsers
	q.ShowCorrectAnswers = u.ShowCorrectAnswers
	q.AllowMultipleResponses = u.AllowMultipleResponses
	return q
}

// Result is a persisted graded response to a whole quiz.
type Result struct {
	ID        string         `json:"id"`
	User      string         `json:"user"`
	Quiz      string         `json:"quiz"`
	QuizOwner string         `json:"quizOwner"`
	Answers   []GradedAnswer `json:"answers"`
	Score     float64        `json:"score"`
	// SingleResponse mirrors !AllowMultipleResponses at submission time and
	// backs the storage-level uniqueness of (user, quiz).
	SingleResponse bool      `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User is a registered account with back-references to its quizzes and results.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Quizzes      []string  `json:"quizzes"`
	Results      []string  `json:"results"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ResultNotice announces a newly recorded result to the quiz owner.
type ResultNotice struct {
	QuizID      string    `json:"quizId"`
	ResultID    string    `json:"resultId"`
	UserID      string    `json:"userId"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}
