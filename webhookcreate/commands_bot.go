package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const (
	helpWebhookCommands = "`/webhook create` - Create a new webhook\n" +
		"`/webhook delete` - Delete a webhook\n" +
		"`/webhook list` - List all webhooks\n" +
		"`/webhook say` - Send a message through a webhook"
	helpBotCommands = "`/bot invite` - Get bot invite link\n" +
		"`/bot uptime` - Check bot uptime\n" +
		"`/bot help` - Show this help message\n" +
		"`/bot info` - Get bot information\n" +
		"`/bot stats` - Get bot statistics"
	helpOwnerCommands = "`/bot serverlist` - List all servers\n" +
		"`/bot leave <serverid>` - Leave a server"
)

func (c *Commands) botInvite(ctx context.Context, h InteractionHandler) error {
	embed := &discordgo.MessageEmbed{
		Title: "🔗 Bot Invite Link",
		Description: fmt.Sprintf(
			"[Click here to invite me to your server!](%s)",
			inviteURL(c.applicationID(), c.config.InvitePermissions),
		),
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Permissions Included",
				Value: "• Manage Webhooks\n• Send Messages\n• Use Slash Commands",
			},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) botUptime(ctx context.Context, h InteractionHandler) error {
	embed := &discordgo.MessageEmbed{
		Title:       "⏰ Bot Uptime",
		Description: fmt.Sprintf("I've been running for **%s**", formatUptime(c.now().Sub(c.startedAt))),
		Color:       c.config.embedColor(),
		Timestamp:   embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) botHelp(ctx context.Context, h InteractionHandler) error {
	embed := &discordgo.MessageEmbed{
		Title:       "🤖 Bot Help",
		Description: "Here are all the available commands:",
		Color:       c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔗 Webhook Commands", Value: helpWebhookCommands},
			{Name: "🤖 Bot Commands", Value: helpBotCommands},
			{Name: "👑 Owner Only Commands", Value: helpOwnerCommands},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Use the commands to get started!"},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) botInfo(ctx context.Context, h InteractionHandler) error {
	bu := c.discord.BotUser()
	embed := &discordgo.MessageEmbed{
		Title: "📋 Bot Information",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Name", Value: valueOr(bu.String(), "Unknown"), Inline: true},
			{Name: "Bot ID", Value: bu.ID, Inline: true},
			{Name: "Created", Value: discordTimestamp(snowflakeTime(bu.ID)), Inline: true},
			{Name: "Go Version", Value: runtime.Version(), Inline: true},
			{Name: "Discordgo Version", Value: discordgo.VERSION, Inline: true},
			{Name: "Platform", Value: runtime.GOOS + "/" + runtime.GOARCH, Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: bu.AvatarURL("")},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) botStats(ctx context.Context, h InteractionHandler) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	guilds := c.discord.guilds
	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Statistics",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏠 Servers", Value: strconv.Itoa(guilds.Len()), Inline: true},
			{Name: "👥 Users", Value: formatNumber(guilds.memberCount()), Inline: true},
			{Name: "📢 Channels", Value: strconv.Itoa(guilds.channelCount()), Inline: true},
			{Name: "⚡ Commands", Value: strconv.Itoa(len(applicationCommands())), Inline: true},
			{
				Name:   "🏓 Ping",
				Value:  fmt.Sprintf("%dms", c.session().HeartbeatLatency().Milliseconds()),
				Inline: true,
			},
			{
				Name:   "💾 Memory",
				Value:  fmt.Sprintf("%.2f MB", float64(mem.HeapAlloc)/1024/1024),
				Inline: true,
			},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) botServerList(ctx context.Context, h InteractionHandler) error {
	if !c.isOwner(getDiscordUser(h.GetInteraction())) {
		return respondContent(ctx, h, replyOwnerOnly, true)
	}
	if err := deferResponse(ctx, h, true); err != nil {
		return err
	}

	guilds := c.discord.guilds.list()
	if len(guilds) == 0 {
		return editContent(ctx, h, "📭 Bot is not in any servers.")
	}
	return c.paginate(ctx, h, c.serverListPages(guilds), c.pagination.IdleTimeout)
}

func (c *Commands) serverListPages(guilds []*discordgo.Guild) []Page {
	chunks := chunkItems(guildsPerPage, guilds...)
	pages := make([]Page, 0, len(chunks))
	now := embedTimestamp(c.now())

	for pageIndex, chunk := range chunks {
		embed := &discordgo.MessageEmbed{
			Title:     fmt.Sprintf("🏠 Server List (Page %d/%d)", pageIndex+1, len(chunks)),
			Color:     c.config.embedColor(),
			Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total: %d servers", len(guilds))},
			Timestamp: now,
		}
		for n, g := range chunk {
			embed.Fields = append(
				embed.Fields,
				&discordgo.MessageEmbedField{
					Name: fmt.Sprintf("%d. %s", pageIndex*guildsPerPage+n+1, g.Name),
					Value: fmt.Sprintf(
						"**ID:** `%s`\n**Members:** %d\n**Owner:** <@%s>\n**Created:** %s",
						g.ID,
						g.MemberCount,
						g.OwnerID,
						discordTimestamp(snowflakeTime(g.ID)),
					),
				},
			)
		}
		pages = append(pages, Page{Embeds: []*discordgo.MessageEmbed{embed}})
	}
	return pages
}

func (c *Commands) botLeave(ctx context.Context, h InteractionHandler, r BotLeaveRequest) error {
	i := h.GetInteraction()
	u := getDiscordUser(i)
	if !c.isOwner(u) {
		return respondContent(ctx, h, replyOwnerOnly, true)
	}

	g, ok := c.discord.guilds.get(r.ServerID)
	if !ok {
		return respondContent(ctx, h, "❌ I am not in a server with that ID, or the ID is invalid.", true)
	}
	if g.ID == i.GuildID {
		return respondContent(ctx, h, "❌ I cannot leave this server while you are using commands in it.", true)
	}

	if err := c.session().GuildLeave(g.ID, discordgo.WithContext(ctx)); err != nil {
		h.Logger().ErrorContext(ctx, "error leaving guild", tint.Err(err), "guild_id", g.ID)
		return respondContent(ctx, h, "❌ An error occurred while trying to leave the server.", true)
	}
	c.discord.guilds.remove(g.ID)

	embed := &discordgo.MessageEmbed{
		Title: "✅ Left Server Successfully",
		Color: c.config.errorColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server Name", Value: g.Name, Inline: true},
			{Name: "Server ID", Value: g.ID, Inline: true},
			{Name: "Member Count", Value: strconv.Itoa(g.MemberCount), Inline: true},
			{Name: "Left by", Value: u.String(), Inline: true},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, true, embed)
}

func (c *Commands) botSupport(ctx context.Context, h InteractionHandler) error {
	if !c.config.supportConfigured() {
		return respondContent(ctx, h, "❌ Support server link is not configured.", true)
	}
	embed := &discordgo.MessageEmbed{
		Title: "🆘 Support Server",
		Description: fmt.Sprintf(
			"Need help? Join our support server!\n\n[Click here to join](%s)",
			c.config.SupportLink,
		),
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "💡 What you can get help with:",
				Value: "• Bot commands and features\n• Technical issues\n" +
					"• Feature requests\n• General questions",
			},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

// botFeedback posts the user's message to the feedback channel and
// records it as a [Feedback] row, whether or not it was delivered.
func (c *Commands) botFeedback(ctx context.Context, h InteractionHandler, r BotFeedbackRequest) error {
	if !c.config.feedbackConfigured() {
		return respondContent(ctx, h, "❌ Feedback channel is not configured.", true)
	}
	i := h.GetInteraction()
	u := getDiscordUser(i)
	logger := h.Logger()

	guildName := "Unknown"
	if g, ok := c.discord.guilds.get(i.GuildID); ok && g.Name != "" {
		guildName = g.Name
	}

	feedback := &Feedback{
		UserID:    u.ID,
		Username:  u.String(),
		GuildID:   i.GuildID,
		GuildName: guildName,
		ChannelID: i.ChannelID,
		Message:   r.Message,
	}
	defer func() {
		if c.writeDB == nil {
			return
		}
		if _, err := c.writeDB.Create(context.WithoutCancel(ctx), feedback); err != nil {
			logger.ErrorContext(ctx, "error saving feedback", tint.Err(err))
		}
	}()

	feedbackEmbed := &discordgo.MessageEmbed{
		Title: "💬 New Feedback Received",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "From User", Value: fmt.Sprintf("%s (%s)", u, u.ID), Inline: true},
			{Name: "Server", Value: fmt.Sprintf("%s (%s)", guildName, i.GuildID), Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", i.ChannelID), Inline: true},
			{Name: "Feedback Message", Value: truncate(r.Message, embedFieldLimit)},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("")},
		Timestamp: embedTimestamp(c.now()),
	}
	_, err := c.session().ChannelMessageSendComplex(
		c.config.FeedbackChannelID,
		&discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{feedbackEmbed}},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		logger.ErrorContext(ctx, "error sending feedback", tint.Err(err))
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil &&
			restErr.Response.StatusCode == http.StatusNotFound {
			return respondContent(ctx, h, "❌ Feedback channel not found.", true)
		}
		return respondContent(
			ctx,
			h,
			"❌ An error occurred while sending your feedback. Please try again later.",
			true,
		)
	}
	feedback.Delivered = true

	confirm := &discordgo.MessageEmbed{
		Title:       "✅ Feedback Sent Successfully",
		Description: "Thank you for your feedback! Your message has been sent to the developers.",
		Color:       c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your Message", Value: truncateWithEllipsis(r.Message, embedFieldLimit)},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, true, confirm)
}
