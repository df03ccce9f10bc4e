// internal/render/text.go
//
// Plain-text frame output for terminal play.
// Face-down cards print as their position ("[3]") so the player knows what
// to type; face-up cards print their symbol.

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/memory/internal/game"
)

const defaultColumns = 4

// Text writes frames as a fixed-width grid, one row per Columns cards.
type Text struct {
	W       io.Writer
	Columns int
}

// NewText returns a Text surface with the classic 4x4 layout.
func NewText(w io.Writer) *Text { return &Text{W: w, Columns: defaultColumns} }

// Print writes f, numbering face-down cards so the player can pick them.
func (t *Text) Print(f Frame) error {
	cols := t.Columns
	if cols <= 0 {
		cols = defaultColumns
	}
	width := len("[99]")
	for _, s := range f.Sprites {
		if len(s) > width {
			width = len(s)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", f.Message)
	for i, s := range f.Sprites {
		label := s
		if s == game.BackSprite {
			label = fmt.Sprintf("[%d]", i)
		}
		fmt.Fprintf(&b, "%-*s", width+2, label)
		if (i+1)%cols == 0 || i == len(f.Sprites)-1 {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(t.W, b.String())
	return err
}
