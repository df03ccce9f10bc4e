package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/game"
)

const testSeed = 99

func testSettings() game.Settings {
	s := game.DefaultSettings()
	s.MismatchDelay = 30 * time.Millisecond
	s.RenderPeriod = 5 * time.Millisecond
	return s
}

// layout deals a throwaway game with testSeed to learn where symbols land.
func layout(t *testing.T) []game.Card {
	t.Helper()
	g, err := game.New(testSettings(), game.WithSeed(testSeed))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	return g.Cards()
}

func startSession(t *testing.T) *Session {
	t.Helper()
	g, err := game.New(testSettings(), game.WithSeed(testSeed))
	if err != nil {
		t.Fatal(err)
	}
	s := New(g, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	return s
}

func mismatch(cards []game.Card) (int, int) {
	for j := 1; j < len(cards); j++ {
		if cards[j].Symbol != cards[0].Symbol {
			return 0, j
		}
	}
	return -1, -1
}

func pairOf(cards []game.Card, i int) int {
	for j := range cards {
		if j != i && cards[j].Symbol == cards[i].Symbol {
			return j
		}
	}
	return -1
}

func TestRevealBeforeStart(t *testing.T) {
	g, _ := game.New(testSettings())
	s := New(g, zerolog.Nop())
	if _, err := s.Reveal(context.Background(), 0); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestStartTwice(t *testing.T) {
	s := startSession(t)
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestRevealMatch(t *testing.T) {
	cards := layout(t)
	s := startSession(t)
	ctx := context.Background()

	v, err := s.Reveal(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Pending == nil || *v.Pending != 0 {
		t.Errorf("expected pending 0, got %v", v.Pending)
	}
	if v.Frame.Sprites[0] != cards[0].Symbol {
		t.Errorf("expected %q face-up at 0, got %q", cards[0].Symbol, v.Frame.Sprites[0])
	}

	v, err = s.Reveal(ctx, pairOf(cards, 0))
	if err != nil {
		t.Fatal(err)
	}
	if v.Score != 1 || v.Status != "matched" || v.Pending != nil {
		t.Errorf("unexpected view after match: %+v", v)
	}
}

func TestRevealMismatchFlipsBack(t *testing.T) {
	cards := layout(t)
	i, j := mismatch(cards)
	s := startSession(t)
	ctx := context.Background()

	if _, err := s.Reveal(ctx, i); err != nil {
		t.Fatal(err)
	}
	v, err := s.Reveal(ctx, j)
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != "mismatch" {
		t.Errorf("expected mismatch, got %s", v.Status)
	}
	if v.Frame.Sprites[i] == game.BackSprite || v.Frame.Sprites[j] == game.BackSprite {
		t.Error("mismatched pair should stay visible until the delay elapses")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v, err = s.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if v.Frame.Sprites[i] == game.BackSprite && v.Frame.Sprites[j] == game.BackSprite {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pair never flipped back: %v", v.Frame.Sprites)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if v.Score != 0 {
		t.Errorf("expected score 0, got %d", v.Score)
	}

	v, err = s.Reveal(ctx, i)
	if err != nil {
		t.Fatal(err)
	}
	if v.Pending == nil || *v.Pending != i {
		t.Errorf("card %d should be accepted again, pending=%v", i, v.Pending)
	}
}

func TestRevealInvalidIndex(t *testing.T) {
	s := startSession(t)
	if _, err := s.Reveal(context.Background(), 16); !errors.Is(err, game.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSubscribeReceivesFrames(t *testing.T) {
	s := startSession(t)
	frames, cancel := s.Subscribe()
	defer cancel()

	select {
	case f := <-frames:
		if f.Message != "Memory Game" || len(f.Sprites) != 16 {
			t.Errorf("unexpected frame %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame within 2s")
	}
}

func TestConcurrentReveals(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := s.Reveal(ctx, idx); err != nil {
				t.Errorf("Reveal(%d): %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	v, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Score > v.Pairs || v.Moves > 8 {
		t.Errorf("impossible state after concurrent reveals: %+v", v)
	}
}

func TestStop(t *testing.T) {
	g, _ := game.New(testSettings())
	s := New(g, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	if _, err := s.Snapshot(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestLastActiveAdvances(t *testing.T) {
	s := startSession(t)
	before := s.LastActive()
	time.Sleep(2 * time.Millisecond)
	if _, err := s.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.LastActive().After(before) {
		t.Error("snapshot should refresh LastActive")
	}
}

func TestRevealWithCancelledContextChangesNothing(t *testing.T) {
	s := startSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for n := 0; n < 50; n++ {
		if _, err := s.Reveal(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
	v, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Frame.Sprites[0] != game.BackSprite || v.Pending != nil {
		t.Errorf("a rejected reveal must leave the board alone, got %+v", v)
	}
}

func TestCancelDuringRevealReportsOutcome(t *testing.T) {
	s := startSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The context is cancelled while the reveal runs on the loop.
	err := s.do(ctx, func(g *game.Game) error {
		cancel()
		return g.HandleReveal(0)
	})
	if err != nil {
		t.Fatalf("reveal was applied, expected no error, got %v", err)
	}
	v, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Pending == nil || *v.Pending != 0 {
		t.Errorf("expected card 0 pending, got %v", v.Pending)
	}
}

func TestFailedStartLeavesSessionStopped(t *testing.T) {
	g, _ := game.New(testSettings())
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	s := New(g, zerolog.Nop())
	if err := s.Start(context.Background()); !errors.Is(err, game.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Done should be closed after a failed start")
	}
	s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.Snapshot(ctx); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted on retry, got %v", err)
	}
}
