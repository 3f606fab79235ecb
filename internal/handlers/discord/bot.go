package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/registry"
	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/KirkDiggler/tablebot/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Bot represents the Discord bot instance
type Bot struct {
	session          *discordgo.Session
	commands         map[string]CommandHandler
	commandIDs       map[string]string // Maps command name to command ID
	gameService      game.Service
	messagingService messaging.Service
	logger           *zap.Logger
	config           *Config

	// tables maps a channel to the message showing its game
	mu     sync.Mutex
	tables map[string]string
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Services
	GameService      game.Service
	MessagingService messaging.Service

	// Optional; defaults to a no-op logger
	Logger *zap.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &Bot{
		session:          session,
		commands:         make(map[string]CommandHandler),
		commandIDs:       make(map[string]string),
		gameService:      cfg.GameService,
		messagingService: cfg.MessagingService,
		logger:           logger,
		config:           cfg,
		tables:           make(map[string]string),
	}

	// Register the interaction handler
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range []CommandHandler{
		NewGameCommand(b),
		NewRollCommand(b),
		NewStatsCommand(b),
	} {
		if err := b.RegisterCommand(cmd); err != nil {
			return fmt.Errorf("failed to register %s command: %w", cmd.GetName(), err)
		}
	}

	b.logger.Info("bot is running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn("failed to delete command",
				zap.String("command", cmdName),
				zap.String("command_id", cmdID),
				zap.Error(err))
		}
	}

	return b.session.Close()
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// RegisterCommand registers a command with Discord. Commands are registered
// for GuildID when it is set and globally otherwise.
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info("registered command",
		zap.String("command", cmd.GetName()),
		zap.String("command_id", createdCmd.ID),
		zap.String("guild_id", b.config.GuildID))

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.Error("failed to handle command", zap.String("command", name), zap.Error(err))
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.Error("failed to handle component",
				zap.String("custom_id", i.MessageComponentData().CustomID),
				zap.Error(err))
		}
	}
}

// handleComponentInteraction decodes a button click and dispatches it
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	action, err := DecodeAction(i.MessageComponentData().CustomID)
	if err != nil {
		if errors.Is(err, ErrNotOurs) {
			return RespondWithEphemeralMessage(s, i, "That button no longer does anything.")
		}
		return err
	}

	ctx := context.Background()
	channelID := i.ChannelID
	userID, username := interactionUser(i)

	switch action.Verb {
	case VerbJoin:
		return b.join(ctx, s, i, channelID, userID, username)
	case VerbLeave:
		return b.leave(ctx, s, i, channelID, userID)
	case VerbStart:
		return b.start(ctx, s, i, channelID, userID)
	case VerbAbandon:
		return b.abandon(ctx, s, i, channelID, userID)
	case VerbHand:
		return b.showHand(ctx, s, i, channelID, userID)
	}

	move, err := action.Move()
	if err != nil {
		return err
	}
	return b.act(ctx, s, i, channelID, userID, move, action.Version)
}

// tableUpdate is the outcome of a table command, ready to be shown
type tableUpdate struct {
	// game is nil once the game has closed
	game       *game.Game
	kind       games.Kind
	content    string
	settlement *game.Settlement
}

// respondTable shows the table. Clicks on the table message edit it in place;
// slash commands and clicks on private messages post a fresh table.
func (b *Bot) respondTable(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, u *tableUpdate) error {
	var msg *discordgo.MessageSend
	var over *messaging.GetGameOverMessageOutput
	if u.settlement != nil {
		over = b.gameOverMessage(ctx, u.kind, u.settlement, "")
	}

	if u.game != nil {
		msg = renderTable(u.game)
	} else if over != nil {
		msg = renderClosedTable(u.kind, over.Title, over.Message)
	} else {
		msg = renderClosedTable(u.kind, "Closed", "This table has closed.")
	}
	msg.Content = u.content
	data := messageSendToData(msg)

	inPlace := i.Type == discordgo.InteractionMessageComponent && !isEphemeral(i)
	if inPlace {
		if err := UpdateWithData(s, i, data); err != nil {
			return err
		}
		b.trackTable(i.ChannelID, i.Message.ID, u.game)
	} else {
		if err := RespondWithData(s, i, data); err != nil {
			return err
		}
		if sent, err := s.InteractionResponse(i.Interaction); err != nil {
			b.logger.Warn("failed to fetch table message", zap.Error(err))
		} else {
			b.trackTable(i.ChannelID, sent.ID, u.game)
		}
	}

	// a finished game keeps its final table; the announcement goes below it
	if over != nil && u.game != nil {
		b.announce(s, i.ChannelID, over)
	}
	return nil
}

func (b *Bot) trackTable(channelID, messageID string, g *game.Game) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g == nil || g.Phase.IsTerminal() {
		delete(b.tables, channelID)
		return
	}
	b.tables[channelID] = messageID
}

func (b *Bot) tableMessage(channelID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.tables[channelID]
	return id, ok
}

// refreshTable edits the channel's table message after a move made from a
// private message
func (b *Bot) refreshTable(ctx context.Context, s *discordgo.Session, channelID string, g *game.Game) {
	messageID, ok := b.tableMessage(channelID)
	if !ok {
		return
	}
	msg := renderTable(g)
	msg.Content = b.turnMessage(ctx, g)
	b.editTable(s, channelID, messageID, msg)
	b.trackTable(channelID, messageID, g)
}

func (b *Bot) editTable(s *discordgo.Session, channelID, messageID string, msg *discordgo.MessageSend) {
	components := msg.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Content:    &msg.Content,
		Embeds:     &msg.Embeds,
		Components: &components,
	})
	if err != nil {
		b.logger.Warn("failed to edit table message",
			zap.String("channel_id", channelID),
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

func (b *Bot) announce(s *discordgo.Session, channelID string, over *messaging.GetGameOverMessageOutput) {
	if _, err := s.ChannelMessageSendEmbed(channelID, renderGameOver(over)); err != nil {
		b.logger.Warn("failed to announce game over", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) gameOverMessage(ctx context.Context, kind games.Kind, settlement *game.Settlement, reason registry.Reason) *messaging.GetGameOverMessageOutput {
	out, err := b.messagingService.GetGameOverMessage(ctx, &messaging.GetGameOverMessageInput{
		Kind:        kind,
		Status:      settlement.Status,
		WinnerNames: mentions(settlement.Winners),
		Reason:      reason,
	})
	if err != nil {
		b.logger.Warn("failed to get game over message", zap.Error(err))
		return &messaging.GetGameOverMessageOutput{Title: "Game over", Message: "The game has ended."}
	}
	return out
}

func (b *Bot) turnMessage(ctx context.Context, g *game.Game) string {
	if g == nil || g.Phase != games.PhaseActive || g.Turn == "" {
		return ""
	}
	out, err := b.messagingService.GetTurnMessage(ctx, &messaging.GetTurnMessageInput{
		PlayerName: mention(g.Turn),
		Kind:       g.Kind,
	})
	if err != nil {
		return fmt.Sprintf("%s, you're up.", mention(g.Turn))
	}
	return out.Message
}

// respondError turns a failed command into a notice. Rejections and known
// game errors are expected; anything else is logged.
func (b *Bot) respondError(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	var gameErr game.GameError
	if !games.IsRejection(err) && !errors.As(err, &gameErr) {
		b.logger.Error("command failed",
			zap.String("channel_id", i.ChannelID),
			zap.Error(err))
	}

	msg, msgErr := b.messagingService.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{Err: err})
	if msgErr != nil {
		return RespondWithEphemeralMessage(s, i, "Something went wrong.")
	}
	return RespondWithData(s, i, renderError(msg))
}

// AnnounceExpired tells a channel that its game timed out. The registry calls
// it through OnExpire after the game service recorded the match.
func (b *Bot) AnnounceExpired(ctx context.Context, summary registry.Summary, reason registry.Reason, settlement *game.Settlement) {
	if settlement == nil {
		settlement = &game.Settlement{Status: models.MatchStatusAbandoned}
	}
	over := b.gameOverMessage(ctx, summary.Kind, settlement, reason)

	if messageID, ok := b.tableMessage(summary.ChannelID); ok {
		b.editTable(b.session, summary.ChannelID, messageID, renderClosedTable(summary.Kind, over.Title, over.Message))
		b.trackTable(summary.ChannelID, messageID, nil)
	}
	b.announce(b.session, summary.ChannelID, over)
}

func (b *Bot) create(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, kind games.Kind) error {
	userID, username := interactionUser(i)
	out, err := b.gameService.CreateGame(ctx, &game.CreateGameInput{
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		CreatorID:   userID,
		CreatorName: username,
		Kind:        kind,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	b.logger.Info("table opened",
		zap.String("channel_id", i.ChannelID),
		zap.String("session_id", out.Game.SessionID),
		zap.String("kind", string(kind)))

	return b.respondTable(ctx, s, i, &tableUpdate{game: out.Game, kind: kind})
}

func (b *Bot) join(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID, username string) error {
	out, err := b.gameService.JoinGame(ctx, &game.JoinGameInput{
		ChannelID:  channelID,
		PlayerID:   userID,
		PlayerName: username,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	content := ""
	joinMsg, err := b.messagingService.GetJoinGameMessage(ctx, &messaging.GetJoinGameMessageInput{
		PlayerName: mention(userID),
		Kind:       out.Game.Kind,
		Seated:     len(out.Game.Players),
	})
	if err == nil {
		content = joinMsg.Message
	}

	return b.respondTable(ctx, s, i, &tableUpdate{game: out.Game, kind: out.Game.Kind, content: content})
}

func (b *Bot) leave(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	kind := b.kindOf(ctx, channelID)
	out, err := b.gameService.LeaveGame(ctx, &game.LeaveGameInput{
		ChannelID: channelID,
		PlayerID:  userID,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	content := fmt.Sprintf("%s left the table.", mention(userID))
	if out.Forfeited {
		content = fmt.Sprintf("%s forfeited.", mention(userID))
	}
	if out.Game != nil {
		kind = out.Game.Kind
		if out.Settlement == nil {
			content += " " + b.turnMessage(ctx, out.Game)
		}
	}

	return b.respondTable(ctx, s, i, &tableUpdate{
		game:       out.Game,
		kind:       kind,
		content:    content,
		settlement: out.Settlement,
	})
}

func (b *Bot) start(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	out, err := b.gameService.StartGame(ctx, &game.StartGameInput{
		ChannelID: channelID,
		PlayerID:  userID,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	return b.respondTable(ctx, s, i, &tableUpdate{
		game:    out.Game,
		kind:    out.Game.Kind,
		content: b.turnMessage(ctx, out.Game),
	})
}

func (b *Bot) abandon(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	out, err := b.gameService.AbandonGame(ctx, &game.AbandonGameInput{
		ChannelID: channelID,
		PlayerID:  userID,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	return b.respondTable(ctx, s, i, &tableUpdate{
		kind:       out.Game.Kind,
		settlement: &game.Settlement{Status: models.MatchStatusAbandoned},
	})
}

// showHand opens, or refreshes in place, the player's private hand
func (b *Bot) showHand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	out, err := b.gameService.GetHand(ctx, &game.GetHandInput{
		ChannelID: channelID,
		PlayerID:  userID,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	data := renderHand(userID, out)
	if i.Type == discordgo.InteractionMessageComponent && isEphemeral(i) {
		return UpdateWithData(s, i, data)
	}
	return RespondWithData(s, i, data)
}

// act applies a move. Moves made from the private hand refresh that hand and
// edit the public table; moves made on the table edit it in place.
func (b *Bot) act(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string, move games.Move, version uint64) error {
	out, err := b.gameService.Act(ctx, &game.ActInput{
		ChannelID: channelID,
		PlayerID:  userID,
		Move:      move,
		Version:   version,
	})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}

	if !isEphemeral(i) {
		return b.respondTable(ctx, s, i, &tableUpdate{
			game:       out.Game,
			kind:       out.Game.Kind,
			content:    b.turnMessage(ctx, out.Game),
			settlement: out.Settlement,
		})
	}

	if out.Settlement != nil {
		err = UpdateWithData(s, i, &discordgo.InteractionResponseData{
			Content:    "The game is over.",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		})
		b.refreshTable(ctx, s, channelID, out.Game)
		b.announce(s, channelID, b.gameOverMessage(ctx, out.Game.Kind, out.Settlement, ""))
		return err
	}

	hand, err := b.gameService.GetHand(ctx, &game.GetHandInput{ChannelID: channelID, PlayerID: userID})
	if err != nil {
		return b.respondError(ctx, s, i, err)
	}
	if err := UpdateWithData(s, i, renderHand(userID, hand)); err != nil {
		return err
	}
	b.refreshTable(ctx, s, channelID, out.Game)
	return nil
}

// kindOf looks up the channel's game type before a call that may close it
func (b *Bot) kindOf(ctx context.Context, channelID string) games.Kind {
	out, err := b.gameService.GetGame(ctx, &game.GetGameInput{ChannelID: channelID})
	if err != nil {
		return ""
	}
	return out.Game.Kind
}
