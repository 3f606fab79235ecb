package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/registry"
	"github.com/KirkDiggler/tablebot/internal/rng"
	"github.com/KirkDiggler/tablebot/internal/services/game"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages
	random rng.Source
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (*service, error) {
	s := &service{}
	if config != nil {
		s.random = config.Random
	}
	if s.random == nil {
		s.random = rng.New(nil)
	}
	return s, nil
}

func (s *service) pick(messages []string) string {
	return messages[s.random.Intn(len(messages))]
}

// GetJoinGameMessage returns a message for when a player joins a game
func (s *service) GetJoinGameMessage(ctx context.Context, input *GetJoinGameMessageInput) (*GetJoinGameMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var messages []string
	switch input.Kind {
	case games.KindPoker:
		messages = []string{
			"%s pulls up a chair and stacks their chips.",
			"%s buys in. Hide your tells.",
			"%s joins the table. Shuffle up and deal!",
			"Fresh chips from %s. The table likes that.",
		}
	default:
		messages = []string{
			"%s grabs a hand of cards.",
			"%s is in! Somebody is getting a Draw Four.",
			"%s joins the table. Keep your wilds close.",
			"Welcome, %s. Don't forget to call Uno.",
		}
	}

	msg := fmt.Sprintf(s.pick(messages), input.PlayerName)
	if input.Seated > 0 {
		msg = fmt.Sprintf("%s (%d seated)", msg, input.Seated)
	}

	return &GetJoinGameMessageOutput{
		Message: msg,
		Tone:    ToneFunny,
	}, nil
}

// GetTurnMessage returns a nudge for the player whose turn it is
func (s *service) GetTurnMessage(ctx context.Context, input *GetTurnMessageInput) (*GetTurnMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	messages := []string{
		"%s, you're up.",
		"Your move, %s.",
		"All eyes on %s.",
	}
	if input.Kind == games.KindPoker {
		messages = append(messages, "Action is on %s.")
	}

	return &GetTurnMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.PlayerName),
	}, nil
}

// GetGameOverMessage announces how a game ended
func (s *service) GetGameOverMessage(ctx context.Context, input *GetGameOverMessageInput) (*GetGameOverMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	switch input.Status {
	case models.MatchStatusCompleted:
		winners := strings.Join(input.WinnerNames, " and ")
		if len(input.WinnerNames) > 1 {
			return &GetGameOverMessageOutput{
				Title:   "Split pot!",
				Message: fmt.Sprintf(s.pick([]string{"%s chop it up.", "%s split the spoils.", "Nobody blinks: %s share the pot."}), winners),
				Tone:    ToneCelebration,
			}, nil
		}
		var messages []string
		if input.Kind == games.KindPoker {
			messages = []string{"%s rakes in the pot!", "%s takes it down!", "Ship it to %s!"}
		} else {
			messages = []string{"%s is out of cards and wins!", "UNO! %s takes the game.", "%s empties their hand. Game over!"}
		}
		return &GetGameOverMessageOutput{
			Title:   "Game over",
			Message: fmt.Sprintf(s.pick(messages), winners),
			Tone:    ToneCelebration,
		}, nil

	case models.MatchStatusAborted:
		return &GetGameOverMessageOutput{
			Title:   "Game aborted",
			Message: "Something went wrong at the table and the game had to stop. No results were recorded.",
			Tone:    ToneNeutral,
		}, nil
	}

	title := "Game cancelled"
	var messages []string
	switch input.Reason {
	case registry.ReasonLobbyTimeout:
		title = "Lobby closed"
		messages = []string{
			"Not enough takers. The lobby timed out.",
			"The lobby sat empty for too long and closed.",
		}
	case registry.ReasonIdleTimeout:
		title = "Table cleared"
		messages = []string{
			"Nobody moved for a while, so the table was cleared.",
			"The cards went cold. Game abandoned for inactivity.",
		}
	default:
		messages = []string{
			"The game was called off.",
			"Cards are back in the box. Game cancelled.",
		}
	}

	return &GetGameOverMessageOutput{
		Title:   title,
		Message: s.pick(messages),
		Tone:    ToneNeutral,
	}, nil
}

// GetErrorMessage turns a rejected move or failed command into a
// user-friendly notice
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil || input.Err == nil {
		return nil, errors.New("input and error cannot be nil")
	}

	var rejection games.Rejection
	if errors.As(input.Err, &rejection) {
		return &GetErrorMessageOutput{
			Title:     "Not so fast",
			Message:   s.pick(rejectionMessages(rejection)),
			Ephemeral: true,
		}, nil
	}

	var gameErr game.GameError
	if errors.As(input.Err, &gameErr) {
		if errors.Is(input.Err, game.ErrSessionAborted) {
			return &GetErrorMessageOutput{
				Title:   "Game aborted",
				Message: "Something went wrong at the table and the game had to stop.",
			}, nil
		}
		return &GetErrorMessageOutput{
			Title:     "Can't do that",
			Message:   gameErrorMessage(gameErr),
			Ephemeral: true,
		}, nil
	}

	return &GetErrorMessageOutput{
		Title: "Oops",
		Message: s.pick([]string{
			"Something went wrong! Try again in a moment.",
			"The dealer dropped the deck. Try again.",
		}),
		Ephemeral: true,
	}, nil
}

func rejectionMessages(r games.Rejection) []string {
	switch r {
	case games.ErrNotYourTurn:
		return []string{
			"Patience! It's not your turn yet.",
			"Hold your horses, someone else is up.",
			"Wait your turn! The action will come to you.",
		}
	case games.ErrIllegalMove:
		return []string{
			"That move isn't allowed right now.",
			"Nice try, but the rules say no.",
		}
	case games.ErrGameNotActive:
		return []string{
			"The game isn't running right now.",
		}
	case games.ErrNotInGame:
		return []string{
			"You're not playing in this game.",
			"Spectators can't touch the cards!",
		}
	case games.ErrInsufficientChips:
		return []string{
			"You don't have the chips for that.",
			"Your stack can't cover that bet.",
		}
	}
	return []string{"That move isn't recognised."}
}

func gameErrorMessage(err game.GameError) string {
	switch err {
	case game.ErrStaleAction:
		return "That button is from an older turn. Use the latest message."
	case game.ErrGameNotFound:
		return "There's no game running in this channel. Start one!"
	case game.ErrGameAlreadyExists:
		return "A game is already running in this channel."
	case game.ErrGameAlreadyStarted:
		return "This game has already started. Catch the next one!"
	case game.ErrGameFull:
		return "This table is full."
	case game.ErrNotEnoughPlayers:
		return "You need more players before dealing."
	case game.ErrPlayerAlreadyInGame:
		return "You're already in this game."
	case game.ErrPlayerInOtherGame:
		return "You're still seated at a game in another channel. Leave that one first."
	case game.ErrPlayerNotInGame:
		return "You're not playing in this game."
	case game.ErrNotCreator:
		return "Only the player who opened the game can do that."
	}
	// Sentence-case the raw error text
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
