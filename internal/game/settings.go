// internal/game/settings.go
//
// Game parameters and their defaults.
// Responsibilities:
//   - Symbols (two cards each), status messages, mismatch delay and
//     render period.
//   - DefaultSettings: the classic 16-card board.
//   - Validate: reject settings that cannot build a well-formed board.

package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultMismatchDelay = 400 * time.Millisecond
	defaultRenderPeriod  = 16 * time.Millisecond
)

// defaultSymbols are the eight card kinds of the classic board.
var defaultSymbols = []string{"8-ball", "potato", "dinosaur", "kronos", "rocket", "unicorn", "guy", "zeppelin"}

// Messages holds the text drawn for each status.
type Messages struct {
	Start    string `yaml:"start" json:"start"`
	Win      string `yaml:"win" json:"win"`
	Mismatch string `yaml:"mismatch" json:"mismatch"`
	Match    string `yaml:"match" json:"match"`
}

// For returns the message shown for status s.
func (m Messages) For(s Status) string {
	switch s {
	case StatusWin:
		return m.Win
	case StatusMismatch:
		return m.Mismatch
	case StatusMatched:
		return m.Match
	default:
		return m.Start
	}
}

// Settings parameterizes a game. The board holds two cards per symbol.
type Settings struct {
	Symbols       []string      `yaml:"symbols" json:"symbols"`
	Messages      Messages      `yaml:"messages" json:"messages"`
	MismatchDelay time.Duration `yaml:"mismatch_delay" json:"mismatchDelay"`
	RenderPeriod  time.Duration `yaml:"render_period" json:"renderPeriod"`
}

// DefaultSettings returns the classic 16-card configuration.
func DefaultSettings() Settings {
	return Settings{
		Symbols: append([]string(nil), defaultSymbols...),
		Messages: Messages{
			Start:    "Memory Game",
			Win:      "You Win!!!",
			Mismatch: "Try again",
			Match:    "Match found!!!",
		},
		MismatchDelay: defaultMismatchDelay,
		RenderPeriod:  defaultRenderPeriod,
	}
}

// BoardSize is the number of cards a game built from s lays out.
func (s Settings) BoardSize() int { return 2 * len(s.Symbols) }

// Validate checks that s can build a well-formed board.
func (s Settings) Validate() error {
	if len(s.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols", ErrInvalidSettings)
	}
	seen := make(map[string]struct{}, len(s.Symbols))
	for _, sym := range s.Symbols {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("%w: empty symbol", ErrInvalidSettings)
		}
		if sym == BackSprite {
			return fmt.Errorf("%w: symbol %q is reserved for the card back", ErrInvalidSettings, sym)
		}
		if _, dup := seen[sym]; dup {
			return fmt.Errorf("%w: duplicate symbol %q", ErrInvalidSettings, sym)
		}
		seen[sym] = struct{}{}
	}
	if s.Messages.Start == "" || s.Messages.Win == "" || s.Messages.Mismatch == "" || s.Messages.Match == "" {
		return fmt.Errorf("%w: all four messages are required", ErrInvalidSettings)
	}
	if s.MismatchDelay <= 0 {
		return fmt.Errorf("%w: mismatch delay must be positive", ErrInvalidSettings)
	}
	if s.RenderPeriod <= 0 {
		return fmt.Errorf("%w: render period must be positive", ErrInvalidSettings)
	}
	return nil
}
