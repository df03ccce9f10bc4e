// internal/httpserver/server.go
//
// HTTP server wiring for the memory game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/settings".
//   - Game endpoints: POST /game/new, POST /game/reveal, GET /game/{id}.
//   - Live stream: GET /game/{id}/ws pushes frames and accepts reveals.
//   - Daily board endpoints: mounted under /daily.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Every game route except /game/new requires the player token issued
//     with the game (bearer header, ?token= or cookie).
//   - The websocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/session"
	"github.com/robalobadob/memory/internal/store"
)

// Server bundles router, session store and game settings.
type Server struct {
	r        *chi.Mux
	store    store.Store
	settings game.Settings
	ctx      context.Context // parent of every session loop
}

// New constructs a Server, installs middleware, and registers routes.
// Sessions started by the server stop when ctx is cancelled.
func New(ctx context.Context, st store.Store, settings game.Settings) *Server {
	s := &Server{r: chi.NewRouter(), store: st, settings: settings, ctx: ctx}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// Long-lived stream: no timeout, no JSON content type.
	s.r.With(s.requirePlayer).Get("/game/{id}/ws", s.handleStream)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"memory-go","endpoints":["/health","POST /game/new","POST /game/reveal","GET /game/{id}","GET /game/{id}/ws","POST /daily/new"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/settings", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(s.settings)
		})

		// Game endpoints
		r.Post("/game/new", s.handleNewGame)
		r.With(s.requirePlayer).Post("/game/reveal", s.handleReveal)
		r.With(s.requirePlayer).Get("/game/{id}", s.handleState)

		// Daily board
		s.mountDaily(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := clientOrigin()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientOrigin() string { return getEnv("CLIENT_ORIGIN", "http://localhost:5173") }

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Seed *int64 `json:"seed"` // optional fixed shuffle (testing, replays)
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Token  string `json:"token"`
	Pairs  int    `json:"pairs"`
	Date   string `json:"date,omitempty"` // daily boards only
}

// handleNewGame deals a new board, starts its session and issues the
// player token (also set as a cookie).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var opts []game.Option
	if req.Seed != nil {
		opts = append(opts, game.WithSeed(*req.Seed))
	}
	sess, err := s.startGame(r.Context(), opts...)
	if err != nil {
		log.Error().Err(err).Msg("start game")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	s.issueToken(w, sess, "")
}

// startGame creates, starts and stores a session.
func (s *Server) startGame(ctx context.Context, opts ...game.Option) (*session.Session, error) {
	g, err := game.New(s.settings, opts...)
	if err != nil {
		return nil, err
	}
	sess := session.New(g, log.Logger)
	if err := sess.Start(s.ctx); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		sess.Stop()
		return nil, err
	}
	log.Info().Str("gameId", sess.ID()).Msg("game started")
	return sess, nil
}

// issueToken signs a player token for sess and writes the new-game response.
func (s *Server) issueToken(w http.ResponseWriter, sess *session.Session, date string) {
	tok, exp, err := signPlayerToken(sess.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	setPlayerCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID(), Token: tok, Pairs: s.settings.BoardSize() / 2, Date: date})
}

// revealReq payload for POST /game/reveal.
type revealReq struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
}

// handleReveal is the HTTP form of the reveal input: one call per click.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID != playerGame(r) {
		writeError(w, http.StatusForbidden, "wrong_game")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	v, err := sess.Reveal(r.Context(), *req.Index)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// handleState returns the current view of a game.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
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
	v, err := sess.Snapshot(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// ------------------------------ helpers ------------------------------------

// writeError writes {"error": code} with the given status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// writeSessionError maps engine and session errors onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidArgument):
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_argument", "detail": err.Error()})
	case errors.Is(err, session.ErrStopped):
		writeError(w, http.StatusGone, "game_over")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "timeout")
	default:
		log.Error().Err(err).Msg("session")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// getEnv returns the environment value for k, or def when unset.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
