package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// GameCommand handles the /game command
type GameCommand struct {
	BaseCommand
	bot *Bot
}

// NewGameCommand creates a new game command handler
func NewGameCommand(bot *Bot) *GameCommand {
	return &GameCommand{
		BaseCommand: BaseCommand{
			Name:        "game",
			Description: "Play Uno or Texas Hold'em in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "uno",
					Description: "Open an Uno table",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "poker",
					Description: "Open a Texas Hold'em table",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join the table in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave the table, forfeiting if the game is running",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Deal the cards",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "abandon",
					Description: "Cancel the game in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "hand",
					Description: "Show your cards",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Post the table again",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "List recent games in this channel",
				},
			},
		},
		bot: bot,
	}
}

// Handle processes a Discord interaction for the game command
func (c *GameCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	ctx := context.Background()
	channelID := i.ChannelID
	userID, username := interactionUser(i)

	sub, _ := subcommand(data)
	switch sub {
	case "uno":
		return c.bot.create(ctx, s, i, games.KindUno)
	case "poker":
		return c.bot.create(ctx, s, i, games.KindPoker)
	case "join":
		return c.bot.join(ctx, s, i, channelID, userID, username)
	case "leave":
		return c.bot.leave(ctx, s, i, channelID, userID)
	case "start":
		return c.bot.start(ctx, s, i, channelID, userID)
	case "abandon":
		return c.bot.abandon(ctx, s, i, channelID, userID)
	case "hand":
		return c.bot.showHand(ctx, s, i, channelID, userID)
	case "show":
		return c.handleShow(ctx, s, i, channelID)
	case "history":
		return c.handleHistory(ctx, s, i, channelID)
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

// handleShow reposts the table, moving it to the bottom of the channel
func (c *GameCommand) handleShow(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) error {
	out, err := c.bot.gameService.GetGame(ctx, &game.GetGameInput{ChannelID: channelID})
	if err != nil {
		return c.bot.respondError(ctx, s, i, err)
	}
	return c.bot.respondTable(ctx, s, i, &tableUpdate{
		game:    out.Game,
		kind:    out.Game.Kind,
		content: c.bot.turnMessage(ctx, out.Game),
	})
}

func (c *GameCommand) handleHistory(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) error {
	out, err := c.bot.gameService.GetHistory(ctx, &game.GetHistoryInput{ChannelID: channelID})
	if err != nil {
		return c.bot.respondError(ctx, s, i, err)
	}
	return RespondWithEmbed(s, i, renderHistory(out.Matches))
}
