// Package ws streams the audit trail to admin clients over WebSocket.
package ws

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
	redisstore "github.com/gosuda/techtransfer/internal/store/redis"
)

// Subscriber delivers the payloads published on a channel until ctx ends or
// the returned cleanup runs. *redisstore.PubSub satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub relays audit records published by the feed sink to WebSocket clients.
type Hub struct {
	sub Subscriber
}

func NewHub(sub Subscriber) *Hub {
	return &Hub{sub: sub}
}

// ServeFeed streams every audit record as it is written.
func (h *Hub) ServeFeed(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, redisstore.AuditChannel())
}

// ServeSubject streams the audit records about one entity. The kind accepts
// the same names and URL slugs as the REST audit routes.
func (h *Hub) ServeSubject(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if !ok {
		http.Error(w, "unknown subject type", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid subject id", http.StatusBadRequest)
		return
	}
	h.stream(w, r, redisstore.SubjectChannel(domain.Ref{Kind: kind, ID: id}))
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles their close frames and cancels
	// ctx when they go away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.sub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
