package domain

import "time"

// FullQuiz is the owner's view of a quiz. AllowedUsers holds usernames.
type FullQuiz struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Expiration             time.Time  `json:"expiration"`
	IsPublic               bool       `json:"isPublic"`
	Questions              []Question `json:"questions"`
	AllowedUsers           []string   `json:"allowedUsers"`
	ShowCorrectAnswers     bool       `json:"showCorrectAnswers"`
	AllowMultipleResponses bool       `json:"allowMultipleResponses"`
	ResultCount            int        `json:"resultCount"`
}

// QuizListing is the summary shown in quiz lists.
type QuizListing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Owner         string    `json:"owner"`
	Expiration    time.Time `json:"expiration"`
	Expired       bool      `json:"expired"`
	IsPublic      bool      `json:"isPublic"`
	QuestionCount int       `json:"questionCount"`
	ResultCount   int       `json:"resultCount"`
}

// FormQuestion is a question stripped of its correct answer.
type FormQuestion struct {
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Answers []string     `json:"answers,omitempty"`
}

// AnswerForm is what a respondent sees before answering.
type AnswerForm struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Expiration time.Time      `json:"expiration"`
	Questions  []FormQuestion `json:"questions"`
}

// ToFull builds the owner view; usernames replaces the allow-list ids.
func (q Quiz) ToFull(usernames []string) FullQuiz {
	if usernames == nil {
		usernames = []string{}
	}
	return FullQuiz{
		ID:                     q.ID,
		Title:                  q.Title,
		Expiration:             q.Expiration,
		IsPublic:               q.IsPublic,
		Questions:              q.Questions,
		AllowedUsers:           usernames,
		ShowCorrectAnswers:     q.ShowCorrectAnswers,
		AllowMultipleResponses: q.AllowMultipleResponses,
		ResultCount:            len(q.Results),
	}
}

// ToListing builds the list summary. owner is the owner's username.
func (q Quiz) ToListing(owner string, now time.Time) QuizListing {
	return QuizListing{
		ID:            q.ID,
		Title:         q.Title,
		Owner:         owner,
		Expiration:    q.Expiration,
		Expired:       q.Expired(now),
		IsPublic:      q.IsPublic,
		QuestionCount: len(q.Questions),
		ResultCount:   len(q.Results),
	}
}

// ToAnswerForm hides every correct answer.
func (q Quiz) ToAnswerForm() AnswerForm {
	questions := make([]FormQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		fq := FormQuestion{Type: question.Kind(), Text: question.Text}
		switch fq.Type {
		case MultipleChoice:
			fq.Answers = make([]string, 0, len(question.Answers))
			for _, a := range question.Answers {
				fq.Answers = append(fq.Answers, a.Text)
			}
		case FillIn:
		}
		questions = append(questions, fq)
	}
	return AnswerForm{
		ID:         q.ID,
		Title:      q.Title,
		Expiration: q.Expiration,
		Questions:  questions,
	}
}
