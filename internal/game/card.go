// internal/game/card.go
//
// A single board card.
// Responsibilities:
//   - Track whether the card is face-up and whether its pair was found.
//   - Compare two cards by symbol.
//   - Draw the symbol or the card back onto a Surface.

package game

// Card is one board cell. Two cards with the same Symbol form a pair.
type Card struct {
	Symbol string `json:"symbol"`
	FaceUp bool   `json:"faceUp"`
	Found  bool   `json:"found"`
}

// NewCard returns a face-down card showing symbol when revealed.
func NewCard(symbol string) Card {
	return Card{Symbol: symbol}
}

// Flip turns the card over.
func (c *Card) Flip() { c.FaceUp = !c.FaceUp }

// Matches reports whether c and other belong to the same pair.
func (c *Card) Matches(other *Card) bool { return c.Symbol == other.Symbol }

// MarkFound records that the card's pair has been matched.
func (c *Card) MarkFound() { c.Found = true }

// Render draws the front sprite when face-up and the back sprite otherwise.
func (c *Card) Render(s Surface, pos int) {
	if c.FaceUp {
		s.Draw(c.Symbol, pos)
		return
	}
	s.Draw(BackSprite, pos)
}
