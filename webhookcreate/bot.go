package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"gorm.io/gorm"
)

// Version, CommitSHA and BuildTime are set at build time with -ldflags
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

const shutdownAnnouncementInterval = 10 * time.Second

// Bot is the top-level runtime. It owns the discord session, the
// interaction webhook server, the admin API, the database and the
// paginator, and routes incoming interactions to [Commands].
type Bot struct {
	config *Config

	db         *gorm.DB
	writeDB    DBI
	dbNotifier DBNotifier

	logger *slog.Logger

	discord                   *Discord
	api                       *API
	discordWebhookServer      *DiscordWebhookServer
	webhookInteractionHandler func(c *gin.Context)

	commands  *Commands
	paginator *Paginator
	router    *navigationRouter

	// componentHandlers route message component interactions by the
	// custom ID prefix (the part before the first ':')
	componentHandlers map[string]func(ctx context.Context, h InteractionHandler)

	signalStop    chan struct{}
	signalReady   chan struct{}
	eventShutdown chan struct{}

	// prevents concurrent runs
	runMu     sync.Mutex
	runtimeWG *sync.WaitGroup
	startedAt time.Time

	getInteractionHandlerFunc func(
		ctx context.Context,
		i *discordgo.InteractionCreate,
	) InteractionHandler
}

// New creates a [Bot] from config. Nothing is connected or opened
// until [Bot.Run] is called.
func New(config *Config) (*Bot, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	var errs []error
	for name, missing := range map[string]bool{
		"bot":        config.Bot == nil,
		"discord":    config.Discord == nil,
		"ai":         config.AI == nil,
		"image_gen":  config.ImageGen == nil,
		"lookup":     config.Lookup == nil,
		"pagination": config.Pagination == nil,
		"api":        config.API == nil,
	} {
		if missing {
			errs = append(errs, fmt.Errorf("missing config section: %s", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if config.DatabaseType != dbTypeSQLite && config.DatabaseType != dbTypePostgres {
		return nil, fmt.Errorf("invalid database type: %q", config.DatabaseType)
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: time.Minute}
	}

	handler := tint.NewHandler(
		defaultLogWriter,
		&tint.Options{Level: levelOrInfo(config.LogLevel), AddSource: true},
	)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	discordgo.Logger = discordgoLoggerFunc(
		context.Background(),
		tint.NewHandler(
			defaultLogWriter,
			&tint.Options{Level: levelOrInfo(config.Discord.DiscordGoLogLevel), AddSource: true},
		),
	)

	b := &Bot{
		config:        config,
		logger:        logger,
		signalReady:   make(chan struct{}, 1),
		eventShutdown: make(chan struct{}, 1),
		runtimeWG:     &sync.WaitGroup{},
	}

	config.Discord.httpClient = config.HTTPClient
	disc, err := newDiscord(config.Discord, newComponentLogger(config.Discord.LogLevel, "discord"))
	if err != nil {
		return nil, fmt.Errorf("error configuring discord: %w", err)
	}
	b.discord = disc

	b.router = newNavigationRouter()
	b.paginator = NewPaginator(
		b.router,
		timeScheduler{},
		newComponentLogger(config.Pagination.LogLevel, "pagination"),
	)

	b.commands = newCommands(
		*config.Bot,
		*config.Pagination,
		disc,
		b.paginator,
		newLookupClient(*config.Lookup, config.HTTPClient),
		newAIClient(*config.AI, *config.ImageGen, config.HTTPClient),
		logger.With(loggerNameKey, "commands"),
	)

	b.componentHandlers = map[string]func(ctx context.Context, h InteractionHandler){
		paginationCustomIDPrefix: b.router.handleComponent,
	}

	api, apiErr := newAPI(b, config.API)
	if apiErr != nil {
		errs = append(errs, fmt.Errorf("error configuring api: %w", apiErr))
	}
	b.api = api

	if config.Discord.WebhookServer.Enabled {
		srv, whErr := newWebhookServer(b, config.Discord.WebhookServer)
		if whErr != nil {
			errs = append(errs, fmt.Errorf("error configuring webhook server: %w", whErr))
		}
		b.discordWebhookServer = srv
	}
	if err = errors.Join(errs...); err != nil {
		return nil, err
	}
	return b, nil
}

func levelOrInfo(lv *slog.LevelVar) slog.Leveler {
	if lv == nil {
		return slog.LevelInfo
	}
	return lv
}

func (b *Bot) ValidateConfig() error {
	return b.config.Validate()
}

// RegisterSlashCommands overwrites the application's slash commands
// with the current command set
func (b *Bot) RegisterSlashCommands(options ...discordgo.RequestOption) (
	[]*discordgo.ApplicationCommand,
	error,
) {
	if b.discord.session == nil {
		disc, err := b.discord.newSession()
		if err != nil {
			return nil, err
		}
		b.discord.session = disc
	}
	return b.discord.registerCommands(options...)
}

// Run connects to discord and serves interactions until ctx is
// canceled or a stop signal is received, then shuts down.
func (b *Bot) Run(ctx context.Context) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	b.signalStop = make(chan struct{}, 1)
	b.startedAt = time.Now()
	b.commands.startedAt = b.startedAt
	logger := b.logger

	if err := b.ValidateConfig(); err != nil {
		logger.Error("invalid config", tint.Err(err))
		return err
	}

	ctx = WithLogger(ctx, logger)
	runtimeWG := &sync.WaitGroup{}
	b.runtimeWG = runtimeWG

	b.webhookInteractionHandler = webhookReceiveHandler(ctx, b)

	logger.LogAttrs(ctx, slog.LevelInfo, "starting", slog.Any("config", b.config), slog.String("version", Version))
	if b.signalReady == nil {
		b.signalReady = make(chan struct{}, 1)
	}

	// canceling this context starts a graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-b.signalStop:
			logger.Warn("got stop signal, canceling")
			cancel()
		case <-ctx.Done():
			logger.Warn("context canceled, sending stop signal")
			b.signalStop <- struct{}{}
		}
	}()

	if b.config.API.Enabled {
		go func() {
			httpErr := b.api.Serve(ctx)
			if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "error serving api HTTP", tint.Err(httpErr))
			}
		}()
	}

	startCtx, startCancel := context.WithTimeout(ctx, b.config.StartupTimeout)
	defer startCancel()

	initErr := make(chan error, 1)
	go func() {
		logger.Debug("initializing run...")
		initErr <- b.initRun(startCtx)
	}()

	select {
	case <-startCtx.Done():
		return errors.New("startup cancelled or timed out")
	case err := <-initErr:
		if err != nil {
			logger.ErrorContext(ctx, "init error", tint.Err(err))
			if b.api != nil && b.api.listener != nil {
				go func() {
					if e := b.api.listener.Close(); e != nil {
						logger.ErrorContext(ctx, "error closing listener", tint.Err(e))
					}
				}()
			}
			return err
		}
		logger.InfoContext(ctx, "init complete")
	}

	if err := b.initDiscordSession(ctx, runtimeWG); err != nil {
		logger.ErrorContext(ctx, "error creating discord session", tint.Err(err))
		return err
	}

	if b.discordWebhookServer != nil {
		runtimeWG.Add(1)
		go func() {
			defer runtimeWG.Done()
			httpErr := b.discordWebhookServer.Serve(ctx)
			if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "error serving webhook HTTP", tint.Err(httpErr))
			}
		}()
	}

	logger.InfoContext(ctx, "connecting to discord")
	if err := b.discord.session.Open(); err != nil {
		logger.ErrorContext(ctx, "error connecting to discord!", tint.Err(err))
		return fmt.Errorf("error connecting to discord: %w", err)
	}
	if status := b.config.Discord.CustomStatus; status != "" {
		go func() {
			if statusErr := b.discord.session.UpdateCustomStatus(status); statusErr != nil {
				logger.Error("error updating discord status", tint.Err(statusErr))
			}
		}()
	}
	if b.config.Discord.RegisterCommands {
		if _, err := b.RegisterSlashCommands(discordgo.WithContext(ctx)); err != nil {
			logger.ErrorContext(ctx, "error registering commands", tint.Err(err))
		}
	}

	select {
	case b.signalReady <- struct{}{}:
		logger.InfoContext(ctx, "sent ready signal")
	default:
	}

	runtimeWG.Add(1)
	go func() {
		defer runtimeWG.Done()
		if e := b.dbNotifier.Listen(ctx); e != nil {
			logger.ErrorContext(ctx, "error listening for stop signals", tint.Err(e))
		}
	}()

	// block until something cancels the runtime context, generally an
	// interrupt or the quit endpoint
	<-ctx.Done()

	return b.shutdown(ctx, runtimeWG)
}

func (b *Bot) initRun(ctx context.Context) error {
	b.logger.Debug("initializing DB...")
	if err := b.initDB(ctx); err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	b.logger.Debug("finished initializing DB")

	notifier, err := newDBNotifier(
		b.config.DatabaseType,
		b.config.Database,
		b.writeDB,
		b.signalStop,
		b.logger,
	)
	if err != nil {
		return fmt.Errorf("error creating db notifier: %w", err)
	}
	b.dbNotifier = notifier
	return nil
}

func (b *Bot) initDB(ctx context.Context) error {
	logger, ok := ContextLogger(ctx)
	if !ok || logger == nil {
		logger = b.logger
	}

	handler := tint.NewHandler(
		defaultLogWriter, &tint.Options{
			Level:     levelOrInfo(b.config.DatabaseLogLevel),
			AddSource: true,
		},
	)
	gormLogger := newGORMLogger(handler, b.config.DatabaseSlowThreshold)
	db, err := getDB(b.config.DatabaseType, b.config.Database, gormLogger)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	b.db = db
	b.writeDB = NewDatabase(
		db,
		logger.With(loggerNameKey, "database"),
		b.config.DatabaseType == dbTypePostgres,
	)
	b.commands.writeDB = b.writeDB

	logger.Debug("migrating database...")
	if err = migrateDB(ctx, db); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

func (b *Bot) initDiscordSession(ctx context.Context, runtimeWG *sync.WaitGroup) error {
	logger := b.logger.With(loggerNameKey, "discord_session")

	if b.discord.session == nil {
		disc, err := b.discord.newSession()
		if err != nil {
			return fmt.Errorf("error creating discord session: %w", err)
		}
		b.discord.session = disc
	}

	ctx = WithLogger(ctx, logger)

	for _, h := range b.discord.discordgoRemoveHandlerFuncs {
		h()
	}

	b.discord.session.SetIdentify(
		discordgo.Identify{
			Intents:  b.config.Discord.GatewayIntents,
			Presence: discordgo.GatewayStatusUpdate{Status: string(discordgo.StatusOnline)},
		},
	)

	session := b.discord.session
	b.discord.discordgoRemoveHandlerFuncs = []func(){
		session.AddHandler(b.discord.handlerConnect()),
		session.AddHandler(b.discord.handlerDisconnect()),
		session.AddHandler(b.discord.handlerReady()),
		session.AddHandler(b.discord.handlerGuildCreate()),
		session.AddHandler(b.discord.handlerGuildDelete()),
		session.AddHandler(
			func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
				handler := b.getInteractionHandlerFunc(ctx, i)
				runtimeWG.Add(1)
				go func() {
					defer runtimeWG.Done()
					b.handleInteraction(ctx, handler)
				}()
			},
		),
		session.AddHandler(
			func(_ *discordgo.Session, m *discordgo.MessageCreate) {
				runtimeWG.Add(1)
				go func() {
					defer runtimeWG.Done()
					b.handleDiscordMessage(ctx, m)
				}()
			},
		),
	}

	if b.getInteractionHandlerFunc == nil {
		b.getInteractionHandlerFunc = func(
			_ context.Context,
			i *discordgo.InteractionCreate,
		) InteractionHandler {
			return GatewayHandler{
				session:     b.discord.session,
				interaction: i,
				logger: b.logger.With(
					slog.Group("interaction", interactionLogAttrs(*i)...),
				),
			}
		}
	}
	return nil
}

// shutdown waits for in-flight interactions, closes every open
// pagination session, then stops the HTTP servers and the discord
// session. If that doesn't finish within ShutdownTimeout, the servers
// are closed forcefully.
func (b *Bot) shutdown(ctx context.Context, runtimeWG *sync.WaitGroup) error {
	b.logger.WarnContext(ctx, "shutting down")
	defer func() {
		if b.eventShutdown != nil {
			go func() {
				b.eventShutdown <- struct{}{}
			}()
		}
	}()

	shutdownStart := time.Now()
	shutdownTimeout := b.config.ShutdownTimeout
	if shutdownTimeout.Seconds() == 0 {
		b.logger.Warn("immediate shutdown")
		b.forceClose()
		return errors.New("immediate shutdown requested")
	}
	shutdownDeadline := shutdownStart.Add(shutdownTimeout)

	announcementTicker := time.NewTicker(shutdownAnnouncementInterval)
	defer announcementTicker.Stop()

	b.logger.InfoContext(
		ctx,
		"exiting!",
		"shutdown_timeout", shutdownTimeout,
		"shutdown_started", shutdownStart,
		"shutdown_deadline", shutdownDeadline,
	)

	closeCtx, closeCancel := context.WithDeadline(context.Background(), shutdownDeadline)
	defer closeCancel()

	gracefulShutdownCh := make(chan struct{}, 1)
	go func() {
		runtimeWG.Wait()
		runtimeStopEnd := time.Now()
		b.logger.InfoContext(
			ctx,
			"finished handling in-flight requests",
			"runtime_stop_duration", runtimeStopEnd.Sub(shutdownStart),
		)

		// sessions are closed before the gateway, so their controls
		// can still be removed
		active := b.paginator.ActiveSessions()
		b.paginator.Shutdown(closeCtx)
		b.logger.InfoContext(ctx, "closed pagination sessions", "count", active)

		stopWG := &sync.WaitGroup{}

		if b.api != nil && b.api.httpServer != nil {
			stopWG.Add(1)
			go func() {
				defer stopWG.Done()
				b.logger.InfoContext(ctx, "stopping http server")
				_ = b.api.httpServer.Shutdown(closeCtx)
				b.logger.InfoContext(ctx, "http server stopped")
			}()
		}

		if b.discordWebhookServer != nil {
			stopWG.Add(1)
			go func() {
				defer stopWG.Done()
				b.logger.InfoContext(ctx, "stopping webhook http server")
				_ = b.discordWebhookServer.httpServer.Shutdown(closeCtx)
				b.logger.InfoContext(ctx, "webhook http server stopped")
			}()
		}

		if b.discord.session != nil {
			stopWG.Add(1)
			go func() {
				defer stopWG.Done()
				b.logger.InfoContext(ctx, "closing discord session")
				_ = b.discord.session.Close()
				b.logger.InfoContext(ctx, "discord session closed")
				if n := len(b.discord.discordgoRemoveHandlerFuncs); n > 0 {
					b.logger.InfoContext(ctx, fmt.Sprintf("removing %d discord handlers", n))
					for _, h := range b.discord.discordgoRemoveHandlerFuncs {
						h()
					}
					b.discord.discordgoRemoveHandlerFuncs = nil
				}
			}()
		}

		stopWG.Wait()
		gracefulShutdownCh <- struct{}{}
	}()

	for {
		select {
		case <-gracefulShutdownCh:
			closeCancel()
			shutdownEnded := time.Now()
			b.logger.InfoContext(
				ctx,
				"shutdown complete",
				"shutdown_ended", shutdownEnded,
				"shutdown_duration", shutdownEnded.Sub(shutdownStart),
			)
			return nil
		case <-announcementTicker.C:
			b.logger.Warn(fmt.Sprintf("time until hard shutdown: %s", time.Until(shutdownDeadline)))
		case <-closeCtx.Done():
			b.logger.Warn("in-flight requests did not stop in time, forcing close")
			b.forceClose()
			return errors.New("in-flight requests did not stop in time")
		}
	}
}

func (b *Bot) forceClose() {
	if b.api != nil && b.api.httpServer != nil {
		go func() {
			_ = b.api.httpServer.Close()
		}()
	}
	if b.discordWebhookServer != nil {
		go func() {
			_ = b.discordWebhookServer.httpServer.Close()
		}()
	}
}

// handleInteraction logs the interaction and routes it by type. It's
// used for interactions received by both the gateway and the webhook
// server.
func (b *Bot) handleInteraction(ctx context.Context, handler InteractionHandler) {
	defer func() {
		if rc := recover(); rc != nil {
			b.handleRecover(ctx, rc)
		}
	}()

	i := handler.GetInteraction()
	logger := handler.Logger()

	// pings are sent by discord to verify the webhook endpoint, and have
	// no user attached
	if i.Type == discordgo.InteractionPing {
		_ = handler.Respond(ctx, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
		return
	}

	discordUser := getDiscordUser(i)
	if discordUser == nil {
		logger.ErrorContext(ctx, "no user found in interaction", "interaction", structToSlogValue(i))
		return
	}

	ctx = WithLogger(ctx, logger)
	logger.InfoContext(ctx, "received new interaction", "user", structToSlogValue(discordUser))

	wg := &sync.WaitGroup{}
	defer wg.Wait()

	if b.writeDB != nil {
		interactionLog, err := newInteractionLog(i, discordUser, handler.InteractionReceiveMethod())
		if err != nil {
			logger.ErrorContext(ctx, "error marshaling interaction", tint.Err(err))
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, createErr := b.writeDB.Create(
					context.WithoutCancel(ctx),
					interactionLog,
				); createErr != nil {
					logger.ErrorContext(ctx, "error logging interaction", tint.Err(createErr))
				}
			}()
		}
	}

	if discordUser.Bot {
		logger.WarnContext(ctx, "user is bot, ignoring", "user", discordUser)
		return
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		prefix, _, _ := strings.Cut(customID, ":")
		componentHandler, ok := b.componentHandlers[prefix]
		if !ok {
			logger.WarnContext(ctx, "no handler for component", "custom_id", customID)
			return
		}
		componentHandler(ctx, handler)
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, handler)
	default:
		logger.WarnContext(ctx, "unhandled interaction type", "type", i.Type.String())
	}
}

// handleCommand decodes and executes a slash command, reporting any
// failure to the user and recording the outcome as a [CommandLog].
func (b *Bot) handleCommand(ctx context.Context, handler InteractionHandler) {
	i := handler.GetInteraction()
	logger := handler.Logger()

	if i.GuildID == "" {
		_ = respondContent(ctx, handler, replyGuildOnly, true)
		return
	}

	data := i.ApplicationCommandData()
	req, err := DecodeCommandRequest(data)
	if err != nil {
		logger.WarnContext(ctx, "error decoding command", tint.Err(err))
		reply := replyCommandError
		if errors.Is(err, ErrUnknownCommand) {
			reply = replyUnknownSubcommand
		}
		_ = respondContent(ctx, handler, reply, true)
		return
	}

	tracked := newTrackedHandler(handler)
	start := time.Now()
	cmdErr := b.commands.Handle(ctx, tracked, req)
	duration := time.Since(start)

	if cmdErr != nil {
		logger.ErrorContext(
			ctx,
			fmt.Sprintf("error executing %s", data.Name),
			tint.Err(cmdErr),
			"subcommand", req.SubcommandName(),
		)
		if e := replyContent(ctx, tracked, replyCommandError, true); e != nil {
			logger.ErrorContext(ctx, "error reporting command failure", tint.Err(e))
		}
	} else {
		logger.InfoContext(ctx, "command finished", "duration", duration)
	}

	if b.writeDB == nil {
		return
	}
	cmdLog := &CommandLog{
		InteractionID: i.ID,
		Command:       req.CommandName(),
		Subcommand:    req.SubcommandName(),
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
		DurationMS:    duration.Milliseconds(),
	}
	if u := getDiscordUser(i); u != nil {
		cmdLog.UserID = u.ID
	}
	if cmdErr != nil {
		cmdLog.Error = cmdErr.Error()
	}
	if _, err = b.writeDB.Create(context.WithoutCancel(ctx), cmdLog); err != nil {
		logger.ErrorContext(ctx, "error saving command log", tint.Err(err))
	}
}

// handleDiscordMessage replies with an introduction when a message
// mentions the bot
func (b *Bot) handleDiscordMessage(ctx context.Context, m *discordgo.MessageCreate) {
	defer func() {
		if rc := recover(); rc != nil {
			b.handleRecover(ctx, rc)
		}
	}()

	logger, ok := ContextLogger(ctx)
	if !ok || logger == nil {
		logger = b.logger
	}
	if m == nil || m.Message == nil {
		return
	}
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.MentionEveryone {
		logger.DebugContext(ctx, "ignoring message mentioning everyone", "message_id", m.ID)
		return
	}

	botUser := b.discord.BotUser()
	if !messageMentionsUser(m.Message, botUser.ID) {
		return
	}

	dm := NewDiscordMessage(m.Message)
	logger.InfoContext(ctx, "bot mentioned", "message", dm)

	embed, components := b.mentionReply(m.Message, botUser)
	_, err := b.discord.session.ChannelMessageSendComplex(
		m.ChannelID,
		&discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		logger.ErrorContext(ctx, "error sending mention reply", tint.Err(err))
	} else {
		dm.Replied = true
	}

	if b.writeDB != nil {
		if _, e := b.writeDB.Create(context.WithoutCancel(ctx), &dm); e != nil {
			logger.ErrorContext(ctx, "error saving discord message", tint.Err(e))
		}
	}
}

func (b *Bot) mentionReply(
	m *discordgo.Message,
	botUser *discordgo.User,
) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	cfg := b.config.Bot
	invite := inviteURL(botUser.ID, DefaultMentionInvitePermission)

	embed := &discordgo.MessageEmbed{
		Title:       "Hi, i'm Bot",
		Description: "Use with commands via Discord / commands",
		Color:       cfg.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "📨┆Invite me",
				Value: fmt.Sprintf("Invite Bot in your own server! [Click here](%s)", invite),
			},
			{
				Name: "❓┇I don't see any slash commands",
				Value: "The bot may not have permissions for this. Open the invite link again " +
					"and select your server. The bot then gets the correct permissions",
			},
			{
				Name:  "❓┆Need support?",
				Value: fmt.Sprintf("For questions you can join our [support server](%s)!", cfg.SupportLink),
			},
			{
				Name:  "🐞┆Error?",
				Value: "Error Feedback: `/bot feedback`!",
			},
		},
		Footer:    requestedByFooter(m.Author),
		Timestamp: embedTimestamp(time.Now()),
	}
	if botUser.Avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: botUser.AvatarURL("")}
	}

	buttons := []discordgo.Button{linkButton("Invite Bot", invite)}
	if cfg.supportConfigured() {
		buttons = append(buttons, linkButton("Support Server", cfg.SupportLink))
	}
	return embed, linkRow(buttons...)
}

func (*Bot) handleRecover(ctx context.Context, rc any) {
	logger, ok := ContextLogger(ctx)
	if logger == nil || !ok {
		logger = slog.Default()
	}
	stackTrace := string(debug.Stack())
	switch v := rc.(type) {
	case error:
		logger.ErrorContext(ctx, "recovered from panic", tint.Err(v), "stack_trace", stackTrace)
	case string:
		logger.ErrorContext(ctx, "recovered from panic", tint.Err(errors.New(v)), "stack_trace", stackTrace)
	default:
		logger.ErrorContext(ctx, "recovered from panic", "panic_arg", rc, "stack_trace", stackTrace)
	}
}

// SignalReady returns a channel which receives once the bot has
// connected and is handling interactions
func (b *Bot) SignalReady() <-chan struct{} {
	return b.signalReady
}

// SignalStop requests a graceful shutdown of a running bot
func (b *Bot) SignalStop() {
	select {
	case b.signalStop <- struct{}{}:
	default:
	}
}
