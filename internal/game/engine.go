// internal/game/engine.go
//
// Core game engine for a single memory (matching pairs) session.
// Responsibilities:
//   - Lay out two cards per symbol and shuffle them once (Fisher–Yates).
//   - Run the two-card reveal/compare/resolve protocol.
//   - Keep score and the Start/Mismatch/Matched status; Win is derived.
//   - Queue mismatch flip-backs as explicit tasks that the caller fires.
//
// Notes:
//   - The engine holds no goroutines or timers. Callers serialize every
//     entry point onto one timeline (see internal/session).
//   - Time only enters through the injected clock, so tests run instantly.
package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// flipBack turns a mismatched pair face-down once fireAt has passed.
type flipBack struct {
	a, b   int
	fireAt time.Time
}

// Game holds the state of one play session.
type Game struct {
	id       string
	settings Settings
	board    []Card
	score    int
	pending  *int
	status   Status
	moves    int
	tasks    []flipBack // ordered by fireAt
	rng      *rand.Rand
	now      func() time.Time
}

// Option customizes a Game at construction.
type Option func(*Game)

// WithSeed makes the shuffle reproducible.
func WithSeed(seed int64) Option {
	return func(g *Game) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock replaces time.Now as the source of flip-back deadlines.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithID sets the game identifier instead of a random UUID.
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// New constructs a game that has not been dealt yet; call Init before play.
func New(settings Settings, opts ...Option) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.Symbols = append([]string(nil), settings.Symbols...)
	g := &Game{
		id:       uuid.NewString(),
		settings: settings,
		status:   StatusStart,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g, nil
}

// Init deals the board: symbol k goes to positions 2k and 2k+1, then every
// position is swapped with a uniformly chosen position at or before it,
// walking from the last slot to the first.
func (g *Game) Init() error {
	if g.board != nil {
		return ErrAlreadyInitialized
	}
	n := g.settings.BoardSize()
	board := make([]Card, n)
	for i := range board {
		board[i] = NewCard(g.settings.Symbols[i/2])
	}
	g.rng.Shuffle(n, func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})
	g.board = board
	return nil
}

// HandleReveal flips the card at index and resolves the turn when it is the
// second card revealed.
//
// Revealing a card that is already face-up or found does nothing. A mismatch
// leaves both cards visible and schedules them to turn back after
// Settings.MismatchDelay; other cards can be revealed meanwhile.
func (g *Game) HandleReveal(index int) error {
	if err := g.checkIndex(index); err != nil {
		return err
	}
	card := &g.board[index]
	if card.FaceUp || card.Found {
		return nil
	}
	card.Flip()

	if g.pending == nil {
		i := index
		g.pending = &i
		return g.checkInvariants()
	}

	prev := &g.board[*g.pending]
	prevIdx := *g.pending
	g.pending = nil
	g.moves++

	if card.Matches(prev) {
		g.score++
		card.MarkFound()
		prev.MarkFound()
		g.status = StatusMatched
	} else {
		g.status = StatusMismatch
		g.schedule(flipBack{a: index, b: prevIdx, fireAt: g.now().Add(g.settings.MismatchDelay)})
	}
	return g.checkInvariants()
}

// schedule inserts t after every task due no later than it.
func (g *Game) schedule(t flipBack) {
	i := sort.Search(len(g.tasks), func(i int) bool { return g.tasks[i].fireAt.After(t.fireAt) })
	g.tasks = append(g.tasks, flipBack{})
	copy(g.tasks[i+1:], g.tasks[i:])
	g.tasks[i] = t
}

// RunDue fires every flip-back whose deadline is at or before now and
// reports how many ran.
func (g *Game) RunDue(now time.Time) int {
	n := 0
	for len(g.tasks) > 0 && !g.tasks[0].fireAt.After(now) {
		t := g.tasks[0]
		g.tasks = g.tasks[1:]
		g.turnDown(t.a)
		g.turnDown(t.b)
		n++
	}
	return n
}

// NextDue returns the deadline of the earliest pending flip-back.
func (g *Game) NextDue() (time.Time, bool) {
	if len(g.tasks) == 0 {
		return time.Time{}, false
	}
	return g.tasks[0].fireAt, true
}

func (g *Game) turnDown(i int) {
	if c := &g.board[i]; c.FaceUp && !c.Found {
		c.Flip()
	}
}

// Render draws the current message and every card. It never mutates state.
func (g *Game) Render(s Surface) error {
	if g.board == nil {
		return ErrNotInitialized
	}
	s.DrawMessage(g.settings.Messages.For(g.DisplayStatus()))
	for i := range g.board {
		g.board[i].Render(s, i)
	}
	return nil
}

// DisplayStatus resolves the status to show: Win whenever every pair is
// found, otherwise the last transition.
func (g *Game) DisplayStatus() Status {
	if g.Won() {
		return StatusWin
	}
	return g.status
}

// Status returns the last transition recorded by HandleReveal.
func (g *Game) Status() Status { return g.status }

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Settings returns the settings the game was built with.
func (g *Game) Settings() Settings { return g.settings }

// Score is the number of matched pairs.
func (g *Game) Score() int { return g.score }

// Pairs is the number of pairs on the board.
func (g *Game) Pairs() int { return len(g.settings.Symbols) }

// Moves counts resolved turns (second reveals), matched or not.
func (g *Game) Moves() int { return g.moves }

// Initialized reports whether Init has dealt the board.
func (g *Game) Initialized() bool { return g.board != nil }

// Won reports whether every pair has been found.
func (g *Game) Won() bool { return g.board != nil && g.score == g.Pairs() }

// Pending returns the card awaiting a second reveal, if any.
func (g *Game) Pending() (int, bool) {
	if g.pending == nil {
		return 0, false
	}
	return *g.pending, true
}

// ScheduledFlips is the number of flip-backs not yet fired.
func (g *Game) ScheduledFlips() int { return len(g.tasks) }

// Card returns a copy of the card at index.
func (g *Game) Card(index int) (Card, error) {
	if err := g.checkIndex(index); err != nil {
		return Card{}, err
	}
	return g.board[index], nil
}

// Cards returns a copy of the board.
func (g *Game) Cards() []Card {
	return append([]Card(nil), g.board...)
}

func (g *Game) checkIndex(index int) error {
	if g.board == nil {
		return ErrNotInitialized
	}
	if index < 0 || index >= len(g.board) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(g.board))
	}
	return nil
}

// checkInvariants verifies the bookkeeping after a mutation.
func (g *Game) checkInvariants() error {
	if g.pending != nil {
		if c := g.board[*g.pending]; !c.FaceUp || c.Found {
			return fmt.Errorf("%w: pending card %d is not an open unmatched card", ErrInvariantViolation, *g.pending)
		}
	}
	found := 0
	for _, c := range g.board {
		if c.Found {
			found++
			if !c.FaceUp {
				return fmt.Errorf("%w: found card is face-down", ErrInvariantViolation)
			}
		}
	}
	if found != 2*g.score || g.score > g.Pairs() {
		return fmt.Errorf("%w: score %d with %d found cards", ErrInvariantViolation, g.score, found)
	}
	return nil
}
