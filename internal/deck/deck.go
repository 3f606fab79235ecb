// Package deck holds the ordered card piles shared by the card game engines.
package deck

import (
	"errors"

	"github.com/KirkDiggler/tablebot/internal/rng"
)

// ErrEmpty is returned when drawing from an empty pile
var ErrEmpty = errors.New("deck is empty")

// Pile is an ordered, mutable sequence of cards. The top of the pile is the
// last element.
type Pile[T any] struct {
	cards []T
}

// New returns a pile holding a copy of cards, bottom first
func New[T any](cards []T) *Pile[T] {
	out := make([]T, len(cards))
	copy(out, cards)
	return &Pile[T]{cards: out}
}

// Len returns the number of cards in the pile
func (p *Pile[T]) Len() int {
	return len(p.cards)
}

// Cards returns a copy of the pile, bottom first
func (p *Pile[T]) Cards() []T {
	out := make([]T, len(p.cards))
	copy(out, p.cards)
	return out
}

// Shuffle permutes the pile in place with Fisher–Yates
func (p *Pile[T]) Shuffle(src rng.Source) {
	Shuffle(p.cards, src)
}

// Draw removes and returns the top card
func (p *Pile[T]) Draw() (T, error) {
	var zero T
	if len(p.cards) == 0 {
		return zero, ErrEmpty
	}
	top := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return top, nil
}

// Peek returns the top card without removing it
func (p *Pile[T]) Peek() (T, bool) {
	var zero T
	if len(p.cards) == 0 {
		return zero, false
	}
	return p.cards[len(p.cards)-1], true
}

// Push places cards on top of the pile in order
func (p *Pile[T]) Push(cards ...T) {
	p.cards = append(p.cards, cards...)
}

// PushBottom places cards underneath the pile
func (p *Pile[T]) PushBottom(cards ...T) {
	out := make([]T, 0, len(cards)+len(p.cards))
	out = append(out, cards...)
	p.cards = append(out, p.cards...)
}

// TakeAllButTop empties the pile except for its top card and returns the
// removed cards. Used to rebuild a draw pile from a discard pile.
func (p *Pile[T]) TakeAllButTop() []T {
	if len(p.cards) <= 1 {
		return nil
	}
	taken := make([]T, len(p.cards)-1)
	copy(taken, p.cards[:len(p.cards)-1])
	p.cards = []T{p.cards[len(p.cards)-1]}
	return taken
}

// Shuffle permutes cards in place. Every permutation is equally likely given
// a uniform source.
func Shuffle[T any](cards []T, src rng.Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
