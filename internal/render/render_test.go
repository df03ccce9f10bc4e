package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/robalobadob/memory/internal/game"
)

func TestRecorderGrowsSprites(t *testing.T) {
	var r Recorder
	r.Draw("rocket", 2)
	r.DrawMessage("hello")
	f := r.Frame()
	if f.Message != "hello" {
		t.Errorf("expected message hello, got %q", f.Message)
	}
	if len(f.Sprites) != 3 || f.Sprites[2] != "rocket" {
		t.Errorf("unexpected sprites %v", f.Sprites)
	}
}

func TestCaptureFreshGame(t *testing.T) {
	g, err := game.New(game.DefaultSettings(), game.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Capture(g); err == nil {
		t.Error("capturing an undealt game should fail")
	}
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	f, err := Capture(g)
	if err != nil {
		t.Fatal(err)
	}
	if f.Message != "Memory Game" {
		t.Errorf("expected start message, got %q", f.Message)
	}
	if len(f.Sprites) != 16 {
		t.Fatalf("expected 16 sprites, got %d", len(f.Sprites))
	}
	for i, s := range f.Sprites {
		if s != game.BackSprite {
			t.Errorf("sprite %d: expected back, got %q", i, s)
		}
	}
}

func TestTextPrint(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{Message: "Try again", Sprites: []string{"back", "rocket", "back", "guy"}}
	if err := NewText(&buf).Print(f); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"== Try again ==", "[0]", "rocket", "[2]", "guy"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected header plus one row, got:\n%s", out)
	}
}
