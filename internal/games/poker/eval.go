package poker

import "sort"

// Category is a hand class. Higher categories beat lower ones.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card", "One Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush",
}

func (c Category) String() string {
	if c < HighCard || c > StraightFlush {
		return "Unknown"
	}
	return categoryNames[c]
}

// HandValue ranks a five-card hand: category first, then tiebreak ranks in
// order of significance.
type HandValue struct {
	Category Category `json:"category"`
	Tiebreak []Rank   `json:"tiebreak"`
}

// Compare returns 1 if h beats o, -1 if o beats h and 0 on an exact tie
func (h HandValue) Compare(o HandValue) int {
	if h.Category != o.Category {
		if h.Category > o.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(h.Tiebreak) && i < len(o.Tiebreak); i++ {
		if h.Tiebreak[i] != o.Tiebreak[i] {
			if h.Tiebreak[i] > o.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Name describes the hand, e.g. "Straight Flush" or "Royal Flush"
func (h HandValue) Name() string {
	if h.Category == StraightFlush && len(h.Tiebreak) > 0 && h.Tiebreak[0] == Ace {
		return "Royal Flush"
	}
	return h.Category.String()
}

// Evaluate returns the best five-card value among cards. It needs at least
// five cards.
func Evaluate(cards []Card) HandValue {
	if len(cards) < 5 {
		return HandValue{Category: HighCard}
	}
	var best HandValue
	found := false
	var five [5]Card
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			v := evaluateFive(five)
			if !found || v.Compare(best) > 0 {
				best = v
				found = true
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			five[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

func evaluateFive(cards [5]Card) HandValue {
	counts := make(map[Rank]int, 5)
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	type group struct {
		rank  Rank
		count int
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	ranks := make([]Rank, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}

	high, straight := straightHigh(ranks)
	switch {
	case straight && flush:
		return HandValue{Category: StraightFlush, Tiebreak: []Rank{high}}
	case groups[0].count == 4:
		return HandValue{Category: FourOfAKind, Tiebreak: ranks}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandValue{Category: FullHouse, Tiebreak: ranks}
	case flush:
		return HandValue{Category: Flush, Tiebreak: ranks}
	case straight:
		return HandValue{Category: Straight, Tiebreak: []Rank{high}}
	case groups[0].count == 3:
		return HandValue{Category: ThreeOfAKind, Tiebreak: ranks}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandValue{Category: TwoPair, Tiebreak: ranks}
	case groups[0].count == 2:
		return HandValue{Category: OnePair, Tiebreak: ranks}
	default:
		return HandValue{Category: HighCard, Tiebreak: ranks}
	}
}

// straightHigh takes five distinct ranks sorted high to low and reports the
// straight's top card. The wheel (A-2-3-4-5) plays as five high.
func straightHigh(ranks []Rank) (Rank, bool) {
	if len(ranks) != 5 {
		return 0, false
	}
	if ranks[0]-ranks[4] == 4 {
		return ranks[0], true
	}
	if ranks[0] == Ace && ranks[1] == 5 && ranks[4] == 2 {
		return 5, true
	}
	return 0, false
}
