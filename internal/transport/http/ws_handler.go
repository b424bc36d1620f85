package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
)

// WSHandler streams result notices of an owned quiz over a websocket.
type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload,omitempty"`
}

type subscribedPayload struct {
	QuizID string `json:"quizId"`
}

// ServeLive subscribes before upgrading so ownership errors keep their HTTP
// status. The stream ends when the client leaves or the quiz is deleted.
func (h *WSHandler) ServeLive(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "id")
	notices, cancel, err := h.service.SubscribeResults(r.Context(), identity(r).UserID, quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The client sends nothing; reading only detects the close.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage[subscribedPayload]{Type: "subscribed", Payload: subscribedPayload{QuizID: quizID}}); err != nil {
		return
	}
	for {
		select {
		case notice, ok := <-notices:
			if !ok {
				_ = conn.WriteJSON(outboundMessage[any]{Type: "closed"})
				return
			}
			if err := conn.WriteJSON(outboundMessage[any]{Type: "result", Payload: notice}); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		case <-readerDone:
			return
		}
	}
}
