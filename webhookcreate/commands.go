package webhookcreate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	replyUnknownSubcommand = "❌ Unknown subcommand."
	replyOwnerOnly         = "❌ This command is only available to the bot owner."
	replyGuildOnly         = "❌ Commands only work in servers."
	replyCommandError      = "There was an error while executing this command!"

	inviteScopes = "bot%20applications.commands"

	webhooksPerPage = 5
	guildsPerPage   = 5
	rolesPerPage    = 10
	scriptsPerPage  = 5

	// embed field values are limited to 1024 characters
	embedFieldLimit = 1024
)

// Commands executes decoded slash commands. It holds everything a
// command needs, so handlers never reach back into [Bot].
type Commands struct {
	config     BotConfig
	pagination PaginationConfig
	discord    *Discord
	paginator  *Paginator
	lookup     *lookupClient
	ai         *aiClient
	writeDB    DBI
	logger     *slog.Logger

	startedAt time.Time
	now       func() time.Time
	randInt   func(n int) int
}

func newCommands(
	config BotConfig,
	pagination PaginationConfig,
	discord *Discord,
	paginator *Paginator,
	lookup *lookupClient,
	ai *aiClient,
	logger *slog.Logger,
) *Commands {
	return &Commands{
		config:     config,
		pagination: pagination,
		discord:    discord,
		paginator:  paginator,
		lookup:     lookup,
		ai:         ai,
		logger:     logger,
		startedAt:  time.Now(),
		now:        time.Now,
		randInt:    rand.IntN,
	}
}

// Handle dispatches req to its command handler. A returned error means
// the command failed in a way the handler didn't report to the user.
func (c *Commands) Handle(ctx context.Context, h InteractionHandler, req CommandRequest) error {
	switch r := req.(type) {
	case WebhookCreateRequest:
		return c.webhookCreate(ctx, h, r)
	case WebhookDeleteRequest:
		return c.webhookDelete(ctx, h, r)
	case WebhookListRequest:
		return c.webhookList(ctx, h)
	case WebhookSayRequest:
		return c.webhookSay(ctx, h, r)
	case BotInviteRequest:
		return c.botInvite(ctx, h)
	case BotUptimeRequest:
		return c.botUptime(ctx, h)
	case BotHelpRequest:
		return c.botHelp(ctx, h)
	case BotInfoRequest:
		return c.botInfo(ctx, h)
	case BotStatsRequest:
		return c.botStats(ctx, h)
	case BotServerListRequest:
		return c.botServerList(ctx, h)
	case BotLeaveRequest:
		return c.botLeave(ctx, h, r)
	case BotSupportRequest:
		return c.botSupport(ctx, h)
	case BotFeedbackRequest:
		return c.botFeedback(ctx, h, r)
	case RolesRequest:
		return c.roles(ctx, h)
	case RoleInfoRequest:
		return c.roleInfo(ctx, h, r)
	case ServerInfoRequest:
		return c.serverInfo(ctx, h)
	case ServerIconRequest:
		return c.serverIcon(ctx, h)
	case EmojiInfoRequest:
		return c.emojiInfo(ctx, h, r)
	case EmojiImageRequest:
		return c.emojiImage(ctx, h, r)
	case UserAvatarRequest:
		return c.userAvatar(ctx, h, r)
	case UserBannerRequest:
		return c.userBanner(ctx, h, r)
	case ColorInfoRequest:
		return c.colorInfo(ctx, h, r)
	case RandomColorRequest:
		return c.randomColor(ctx, h)
	case GitHubRequest:
		return c.github(ctx, h, r)
	case ShortenRequest:
		return c.shorten(ctx, h, r)
	case StockRequest:
		return c.stock(ctx, h)
	case ImagesAnimalRequest:
		return c.animalImage(ctx, h, r)
	case ScriptsSearchRequest:
		return c.scriptSearch(ctx, h, r)
	case AIChatbotRequest:
		return c.chatbot(ctx, h, r)
	case AIImagineRequest:
		return c.imagine(ctx, h, r)
	}
	return respondContent(ctx, h, replyUnknownSubcommand, true)
}

func (c *Commands) session() DiscordSessionHandler {
	return c.discord.session
}

func (c *Commands) applicationID() string {
	return c.discord.BotUser().ID
}

func (c *Commands) isOwner(u *discordgo.User) bool {
	return u != nil && c.config.OwnerID != "" && u.ID == c.config.OwnerID
}

// paginate starts a pagination session bound to the interaction's
// original response, which must already be acknowledged.
func (c *Commands) paginate(
	ctx context.Context,
	h InteractionHandler,
	pages []Page,
	idleTimeout time.Duration,
	opts ...SessionOption,
) error {
	var ownerID string
	if u := getDiscordUser(h.GetInteraction()); u != nil {
		ownerID = u.ID
	}
	opts = append([]SessionOption{WithSessionLogger(h.Logger())}, opts...)
	_, err := c.paginator.Start(ctx, newInteractionRenderer(h), pages, ownerID, idleTimeout, opts...)
	return err
}

// reply sends embeds as the initial response, or edits them into the
// original response if the interaction was already acknowledged.
func reply(
	ctx context.Context,
	h InteractionHandler,
	ephemeral bool,
	components []discordgo.MessageComponent,
	embeds ...*discordgo.MessageEmbed,
) error {
	if t, ok := h.(*trackedHandler); ok && t.Responded() {
		return editEmbeds(ctx, h, components, embeds...)
	}
	data := &discordgo.InteractionResponseData{Embeds: embeds, Components: components}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return h.Respond(
		ctx,
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		},
	)
}

// replyContent is reply for plain text
func replyContent(ctx context.Context, h InteractionHandler, content string, ephemeral bool) error {
	if t, ok := h.(*trackedHandler); ok && t.Responded() {
		return editContent(ctx, h, content)
	}
	return respondContent(ctx, h, content, ephemeral)
}

// containerEmbed renders a block of text sections as a single embed,
// with the sections separated by blank lines.
func containerEmbed(color int, sections ...string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       color,
		Description: truncate(strings.Join(sections, "\n\n"), 4096),
	}
}

func embedTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func requestedByFooter(u *discordgo.User) *discordgo.MessageEmbedFooter {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedFooter{
		Text:    "Requested by: " + u.Username,
		IconURL: u.AvatarURL(""),
	}
}

func linkButton(label, url string) discordgo.Button {
	return discordgo.Button{Label: label, Style: discordgo.LinkButton, URL: url}
}

func linkRow(buttons ...discordgo.Button) []discordgo.MessageComponent {
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		if b.URL == "" {
			continue
		}
		row.Components = append(row.Components, b)
	}
	if len(row.Components) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{row}
}

// inviteURL returns the OAuth2 URL used to add the bot to a guild
func inviteURL(applicationID string, permissions int64) string {
	return fmt.Sprintf(
		"https://discord.com/api/oauth2/authorize?client_id=%s&permissions=%d&scope=%s",
		applicationID,
		permissions,
		inviteScopes,
	)
}

// supportButtons returns the 'Invite Bot' and (when configured)
// 'Support Server' link buttons
func (c *Commands) supportButtons(invite string) []discordgo.MessageComponent {
	buttons := []discordgo.Button{linkButton("Invite Bot", invite)}
	if c.config.supportConfigured() {
		buttons = append(buttons, linkButton("Support Server", c.config.SupportLink))
	}
	return linkRow(buttons...)
}

func yesNo(b bool) string {
	if b {
		return "✅ Yes"
	}
	return "❌ No"
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
