package uno

import (
	"fmt"
	"strings"
)

// Color of an Uno card. Wild cards carry ColorWild until played.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// Colors lists the four playable colours in deck order
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Playable reports whether c can be chosen after a wild
func (c Color) Playable() bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// Value is a card face: a digit or an action
type Value string

const (
	ValueSkip         Value = "skip"
	ValueReverse      Value = "reverse"
	ValueDrawTwo      Value = "draw_two"
	ValueWild         Value = "wild"
	ValueWildDrawFour Value = "wild_draw_four"
)

// Card is an immutable Uno card
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// IsWild reports whether the card lets the player pick a colour
func (c Card) IsWild() bool {
	return c.Value == ValueWild || c.Value == ValueWildDrawFour
}

// IsNumber reports whether the card is a plain 0–9 card
func (c Card) IsNumber() bool {
	return len(c.Value) == 1 && c.Value[0] >= '0' && c.Value[0] <= '9'
}

// Points is the card's value when scoring the loser hands
func (c Card) Points() int64 {
	switch {
	case c.IsNumber():
		return int64(c.Value[0] - '0')
	case c.IsWild():
		return 50
	default:
		return 20
	}
}

func (c Card) String() string {
	var face string
	switch c.Value {
	case ValueSkip:
		face = "Skip"
	case ValueReverse:
		face = "Reverse"
	case ValueDrawTwo:
		face = "Draw Two"
	case ValueWild:
		return "Wild"
	case ValueWildDrawFour:
		return "Wild Draw Four"
	default:
		face = string(c.Value)
	}
	return fmt.Sprintf("%s %s", title(string(c.Color)), face)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DeckSize is the number of cards in a full Uno deck
const DeckSize = 108

// NewDeck builds the full 108-card deck in a fixed order
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, color := range Colors {
		cards = append(cards, Card{Color: color, Value: "0"})
		for copies := 0; copies < 2; copies++ {
			for d := '1'; d <= '9'; d++ {
				cards = append(cards, Card{Color: color, Value: Value(string(d))})
			}
			cards = append(cards,
				Card{Color: color, Value: ValueSkip},
				Card{Color: color, Value: ValueReverse},
				Card{Color: color, Value: ValueDrawTwo},
			)
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards,
			Card{Color: ColorWild, Value: ValueWild},
			Card{Color: ColorWild, Value: ValueWildDrawFour},
		)
	}
	return cards
}
