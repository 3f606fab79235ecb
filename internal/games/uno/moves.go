package uno

// Play puts the card at Index of the player's hand on the discard pile.
// Color picks the colour for a wild in the same step; leave it empty to
// choose afterwards with ChooseColor. Uno declares the player's last card.
type Play struct {
	Index int
	Color Color
	Uno   bool
}

// Draw accepts a pending penalty or draws one card voluntarily
type Draw struct{}

// Pass ends the turn after a voluntary draw turned up a playable card
type Pass struct{}

// ChooseColor resolves the colour after a wild was played without one
type ChooseColor struct {
	Color Color
}

// Catch penalises Target for holding one card without having called Uno.
// Any seated player may catch, on or off turn.
type Catch struct {
	Target string
}

func (Play) MoveName() string        { return "play" }
func (Draw) MoveName() string        { return "draw" }
func (Pass) MoveName() string        { return "pass" }
func (ChooseColor) MoveName() string { return "choose_color" }
func (Catch) MoveName() string       { return "catch" }
