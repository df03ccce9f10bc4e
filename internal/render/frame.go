// internal/render/frame.go
//
// Surfaces for the game engine.
//   - Recorder captures a single rendered frame as plain data (JSON views,
//     websocket pushes, MCP tool results).
//   - Text prints a frame as a grid for terminal play.
package render

import "github.com/robalobadob/memory/internal/game"

// Frame is everything one render pass drew.
type Frame struct {
	Message string   `json:"message"`
	Sprites []string `json:"sprites"` // sprite key per board position
}

// Recorder is a game.Surface that stores what was drawn.
type Recorder struct {
	frame Frame
}

var _ game.Surface = (*Recorder)(nil)

// DrawMessage implements game.Surface.
func (r *Recorder) DrawMessage(text string) { r.frame.Message = text }

// Draw implements game.Surface. The sprite list grows to fit position.
func (r *Recorder) Draw(spriteKey string, position int) {
	if position < 0 {
		return
	}
	for len(r.frame.Sprites) <= position {
		r.frame.Sprites = append(r.frame.Sprites, "")
	}
	r.frame.Sprites[position] = spriteKey
}

// Frame returns a copy of the recorded frame.
func (r *Recorder) Frame() Frame {
	return Frame{
		Message: r.frame.Message,
		Sprites: append([]string(nil), r.frame.Sprites...),
	}
}

// Capture renders g once and returns the frame.
func Capture(g *game.Game) (Frame, error) {
	var r Recorder
	if err := g.Render(&r); err != nil {
		return Frame{}, err
	}
	return r.Frame(), nil
}
