package poker

// Fold gives up the hand
type Fold struct{}

// Check passes the action when nothing is owed
type Check struct{}

// Call matches the current bet, going all-in when the stack is short
type Call struct{}

// Raise increases the current bet by Amount. Amount must be at least the
// minimum raise and the player must be able to cover it.
type Raise struct {
	Amount int64
}

// AllIn pushes the whole stack
type AllIn struct{}

func (Fold) MoveName() string  { return "fold" }
func (Check) MoveName() string { return "check" }
func (Call) MoveName() string  { return "call" }
func (Raise) MoveName() string { return "raise" }
func (AllIn) MoveName() string { return "all_in" }
