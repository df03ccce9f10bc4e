// internal/session/session.go
//
// A Session owns one game and runs it on a single goroutine.
// Responsibilities:
//   - Serialize every state change (reveals, mismatch flip-backs) onto one
//     timeline so the engine never sees concurrent access.
//   - Fire flip-backs when their deadline passes.
//   - Render on a fixed period and push frames to subscribers.
//
// Notes:
//   - Reads (Snapshot) also go through the timeline; nothing touches the
//     game outside run().
//   - Subscribers get the latest frame only; a slow reader never blocks
//     the loop.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/render"
)

var (
	ErrNotStarted     = errors.New("session not started")
	ErrAlreadyStarted = errors.New("session already started")
	ErrStopped        = errors.New("session stopped")
)

// View is a point-in-time picture of a game, safe to hand to clients.
// Hidden cards never expose their symbol.
type View struct {
	GameID  string       `json:"gameId"`
	Frame   render.Frame `json:"frame"`
	Status  string       `json:"status"`
	Score   int          `json:"score"`
	Pairs   int          `json:"pairs"`
	Moves   int          `json:"moves"`
	Pending *int         `json:"pending,omitempty"`
	Won     bool         `json:"won"`
}

type request struct {
	fn    func(*game.Game) error
	reply chan error
}

// Session runs a single game.
type Session struct {
	id   string
	game *game.Game
	log  zerolog.Logger

	reqs     chan request
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool

	mu      sync.Mutex
	subs    map[int]chan render.Frame
	nextSub int

	lastActive atomic.Int64 // unix nanoseconds
}

// New wraps g; the board is dealt when Start is called.
func New(g *game.Game, logger zerolog.Logger) *Session {
	s := &Session{
		id:   g.ID(),
		game: g,
		log:  logger.With().Str("game", g.ID()).Logger(),
		reqs: make(chan request),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		subs: make(map[int]chan render.Frame),
	}
	s.touch()
	return s
}

// ID returns the game identifier.
func (s *Session) ID() string { return s.id }

// Start deals the board and launches the game loop. The loop ends when ctx
// is cancelled or Stop is called.
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if err := s.game.Init(); err != nil {
		// no loop will run; leave the session stopped
		s.Stop()
		close(s.done)
		return err
	}
	s.touch()
	go s.run(ctx)
	return nil
}

// Stop ends the loop. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// LastActive is the time of the last start, reveal or snapshot.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() { s.lastActive.Store(time.Now().UnixNano()) }

// Reveal is the input entry point: it reveals the card at index and returns
// the resulting view.
func (s *Session) Reveal(ctx context.Context, index int) (View, error) {
	var v View
	err := s.do(ctx, func(g *game.Game) error {
		if err := g.HandleReveal(index); err != nil {
			return err
		}
		var err error
		v, err = viewOf(g)
		return err
	})
	return v, err
}

// Snapshot returns the current view without changing anything.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func(g *game.Game) error {
		var err error
		v, err = viewOf(g)
		return err
	})
	return v, err
}

// Subscribe returns a channel that receives a frame every render period.
// Call cancel when done; the channel is never closed.
func (s *Session) Subscribe() (frames <-chan render.Frame, cancel func()) {
	ch := make(chan render.Frame, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// do runs fn on the game loop and waits for its result.
func (s *Session) do(ctx context.Context, fn func(*game.Game) error) error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case s.reqs <- req:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	s.touch()
	// Once taken, fn has run or is running; its result is the only answer.
	return <-req.reply
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.game.Settings().RenderPeriod)
	defer ticker.Stop()
	flip := time.NewTimer(time.Hour)
	flip.Stop()
	defer flip.Stop()

	var armedAt time.Time
	armed := false
	won := false
	s.log.Debug().Int("pairs", s.game.Pairs()).Msg("session started")

	for {
		if at, ok := s.game.NextDue(); ok && (!armed || !at.Equal(armedAt)) {
			flip.Reset(time.Until(at))
			armedAt, armed = at, true
		}

		select {
		case <-ctx.Done():
			s.log.Debug().Err(ctx.Err()).Msg("session cancelled")
			return
		case <-s.stop:
			s.log.Debug().Msg("session stopped")
			return
		case req := <-s.reqs:
			req.reply <- req.fn(s.game)
			if !won && s.game.Won() {
				won = true
				s.log.Info().Int("moves", s.game.Moves()).Msg("game won")
			}
		case <-flip.C:
			armed = false
			n := s.game.RunDue(armedAt)
			s.log.Trace().Int("flipped", n).Msg("mismatch flip-back")
		case <-ticker.C:
			s.publish()
		}
	}
}

// publish renders once and hands the frame to every subscriber.
func (s *Session) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	f, err := render.Capture(s.game)
	if err != nil {
		s.log.Error().Err(err).Msg("render")
		return
	}
	for _, ch := range s.subs {
		select {
		case <-ch: // drop the stale frame
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}

func viewOf(g *game.Game) (View, error) {
	f, err := render.Capture(g)
	if err != nil {
		return View{}, err
	}
	v := View{
		GameID: g.ID(),
		Frame:  f,
		Status: g.DisplayStatus().String(),
		Score:  g.Score(),
		Pairs:  g.Pairs(),
		Moves:  g.Moves(),
		Won:    g.Won(),
	}
	if p, ok := g.Pending(); ok {
		v.Pending = &p
	}
	return v, nil
}
