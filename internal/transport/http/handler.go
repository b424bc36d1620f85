package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
	"quizhub-service/internal/domain"
)

// Handler serves the JSON API.
type Handler struct {
	quizzes *app.QuizService
	users   *app.UserService
	tokens  *auth.TokenIssuer
	log     *zap.Logger
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type submission struct {
	Answers []domain.Answer `json:"answers"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, ExpiresAt: expires, User: user})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.DeleteUser(r.Context(), identity(r).UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var draft domain.QuizDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	quiz, err := h.quizzes.CreateQuiz(r.Context(), identity(r).UserID, draft)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) ListAvailableQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := h.quizzes.ListAvailableQuizzes(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListMyQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := h.quizzes.ListMyQuizzes(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.quizzes.GetQuiz(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if view.Full != nil {
		writeJSON(w, http.StatusOK, view.Full)
		return
	}
	writeJSON(w, http.StatusOK, view.Form)
}

func (h *Handler) EditQuiz(w http.ResponseWriter, r *http.Request) {
	var edit domain.QuizEdit
	if !decodeJSON(w, r, &edit) {
		return
	}
	if err := h.quizzes.EditQuiz(r.Context(), identity(r).UserID, chi.URLParam(r, "id"), edit); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.DeleteQuiz(r.Context(), identity(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submission
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.quizzes.SubmitAnswers(r.Context(), identity(r).UserID, chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListQuizResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.quizzes.ListQuizResults(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) ListMyResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.quizzes.ListMyResults(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.GetResult(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
