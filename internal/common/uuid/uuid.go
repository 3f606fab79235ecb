package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/KirkDiggler/tablebot/internal/common/uuid Generator

// Generator hands out identifiers for sessions, matches and ledger entries
type Generator interface {
	NewID() string
}

// Random implements Generator with random (version 4) UUIDs
type Random struct{}

func New() *Random {
	return &Random{}
}

// NewID returns a new random UUID string
func (r *Random) NewID() string {
	return uuid.NewString()
}
