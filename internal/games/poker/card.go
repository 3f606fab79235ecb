package poker

import "fmt"

// Suit of a playing card
type Suit int8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank of a playing card, 2 through 14 (ace high)
type Rank int8

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Card is an immutable playing card
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

var suitSymbols = [...]string{"♣", "♦", "♥", "♠"}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitSymbols[s]
}

func (r Rank) String() string {
	switch r {
	case 10:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= 2 && r <= 9 {
		return fmt.Sprintf("%d", r)
	}
	return "?"
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// NewDeck builds a standard 52-card deck in a fixed order
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for s := Clubs; s <= Spades; s++ {
		for r := Rank(2); r <= Ace; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}
