package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/session"
)

func newSession(t *testing.T, id string) *session.Session {
	t.Helper()
	g, err := game.New(game.DefaultSettings(), game.WithID(id))
	if err != nil {
		t.Fatal(err)
	}
	s := session.New(g, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession(t, "abc")
	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStopsSession(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession(t, "abc")
	_ = st.Save(ctx, s)
	if err := st.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("deleted session still running")
	}
}

func TestSweepEvictsIdle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	old := newSession(t, "old")
	_ = st.Save(ctx, old)
	time.Sleep(60 * time.Millisecond)
	fresh := newSession(t, "fresh")
	_ = st.Save(ctx, fresh)

	if n := st.Sweep(ctx, 30*time.Millisecond); n != 1 {
		t.Errorf("expected 1 evicted session, got %d", n)
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Error("idle session should be evicted")
	}
	if _, err := st.Get(ctx, "fresh"); err != nil {
		t.Errorf("active session evicted: %v", err)
	}
}
