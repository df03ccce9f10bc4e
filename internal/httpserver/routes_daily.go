// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Board" mode.
// Exposes one endpoint under /daily:
//   - POST /daily/new → start (or resume) today's shared board
//
// Every player gets the same shuffle on the same UTC day (HMAC(salt, date)
// seed). A browser that asks twice on one day gets its running game back.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/daily"
	"github.com/robalobadob/memory/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	now      func() time.Time
	day      string            // date the sessions map belongs to
	sessions map[string]string // game ID keyed by anonID|date
	mu       sync.Mutex        // guards day, sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		now:      time.Now,
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
	})
}

// handleNew creates or reuses today's daily session for this browser.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := ensureAnonID(w, r)
	now := d.now()
	date := daily.DateKey(now)
	key := uid + "|" + date

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.day != date {
		d.day, d.sessions = date, make(map[string]string)
	}

	if id, ok := d.sessions[key]; ok {
		if sess, err := d.srv.store.Get(r.Context(), id); err == nil {
			d.srv.issueToken(w, sess, date)
			return
		}
		delete(d.sessions, key) // swept or finished
	}

	sess, err := d.srv.startGame(r.Context(), game.WithSeed(daily.Seed(now, d.salt)))
	if err != nil {
		log.Error().Err(err).Msg("start daily game")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	d.sessions[key] = sess.ID()
	d.srv.issueToken(w, sess, date)
}
