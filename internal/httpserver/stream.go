// internal/httpserver/stream.go
//
// Websocket stream for a single game.
//   - Server → client: {"type":"frame","frame":{...}} whenever the rendered
//     frame changes, {"type":"view","view":{...}} after each reveal,
//     {"type":"error","error":"..."} for rejected reveals.
//   - Client → server: {"type":"reveal","index":n}.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/render"
	"github.com/robalobadob/memory/internal/session"
)

type streamIn struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type streamOut struct {
	Type  string        `json:"type"`
	Frame *render.Frame `json:"frame,omitempty"`
	View  *session.View `json:"view,omitempty"`
	Error string        `json:"error,omitempty"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != playerGame(r) {
		writeError(w, http.StatusForbidden, "wrong_game")
		return
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(),
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	// client → session
	go func() {
		defer cancel()
		for {
			var msg streamIn
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				return
			}
			if msg.Type != "reveal" {
				_ = wsjson.Write(ctx, conn, streamOut{Type: "error", Error: "unknown_type"})
				continue
			}
			v, err := sess.Reveal(ctx, msg.Index)
			switch {
			case errors.Is(err, game.ErrInvalidArgument):
				_ = wsjson.Write(ctx, conn, streamOut{Type: "error", Error: "invalid_argument"})
			case err != nil:
				return
			default:
				_ = wsjson.Write(ctx, conn, streamOut{Type: "view", View: &v})
			}
		}
	}()

	// session → client
	var last render.Frame
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-sess.Done():
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		case f := <-frames:
			if f.Message == last.Message && slices.Equal(f.Sprites, last.Sprites) {
				continue
			}
			last = f
			if err := wsjson.Write(ctx, conn, streamOut{Type: "frame", Frame: &f}); err != nil {
				return
			}
		}
	}
}

// originPatterns allows the configured client origin to open streams.
func originPatterns() []string {
	u, err := url.Parse(clientOrigin())
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
