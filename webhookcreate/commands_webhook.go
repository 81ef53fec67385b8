package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

var webhookURLPattern = regexp.MustCompile(
	`https://discord(?:app)?\.com/api/webhooks/(\d+)/([A-Za-z0-9_-]+)`,
)

// parseWebhookURL returns the webhook ID and token from a webhook URL
func parseWebhookURL(s string) (id string, token string, ok bool) {
	m := webhookURLPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func webhookURL(wh *discordgo.Webhook) string {
	return fmt.Sprintf("https://discord.com/api/webhooks/%s/%s", wh.ID, wh.Token)
}

// isRESTError reports whether err is a non-2xx response from discord,
// as opposed to a transport failure
func isRESTError(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr)
}

func (c *Commands) webhookCreate(ctx context.Context, h InteractionHandler, r WebhookCreateRequest) error {
	if err := deferResponse(ctx, h, true); err != nil {
		return err
	}
	i := h.GetInteraction()
	u := getDiscordUser(i)

	channelID := r.ChannelID
	if channelID == "" {
		channelID = i.ChannelID
	}
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("Webhook-%d", c.now().UnixMilli())
	}

	wh, err := c.session().WebhookCreate(
		channelID,
		name,
		"",
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(fmt.Sprintf("Webhook created by %s via bot command", u)),
	)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error creating webhook", tint.Err(err), "channel_id", channelID)
		return editContent(
			ctx,
			h,
			"❌ Failed to create webhook. Make sure I have permission to manage webhooks in that channel.",
		)
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Webhook Created Successfully",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Name", Value: wh.Name, Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", wh.ChannelID), Inline: true},
			{Name: "ID", Value: wh.ID, Inline: true},
			{Name: "URL", Value: fmt.Sprintf("||%s||", webhookURL(wh))},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Created by " + u.String()},
		Timestamp: embedTimestamp(c.now()),
	}
	return editEmbeds(ctx, h, nil, embed)
}

func (c *Commands) webhookDelete(ctx context.Context, h InteractionHandler, r WebhookDeleteRequest) error {
	if err := deferResponse(ctx, h, true); err != nil {
		return err
	}
	id, token, ok := parseWebhookURL(r.WebhookURL)
	if !ok {
		return editContent(ctx, h, "❌ Invalid webhook URL format.")
	}

	if _, err := c.session().WebhookDeleteWithToken(id, token, discordgo.WithContext(ctx)); err != nil {
		h.Logger().ErrorContext(ctx, "error deleting webhook", tint.Err(err), "webhook_id", id)
		if isRESTError(err) {
			return editContent(
				ctx,
				h,
				"❌ Failed to delete webhook. The webhook may not exist or the URL is invalid.",
			)
		}
		return editContent(ctx, h, "❌ An error occurred while deleting the webhook.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Webhook Deleted Successfully",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Webhook ID", Value: id, Inline: true},
			{Name: "Deleted by", Value: getDiscordUser(h.GetInteraction()).String(), Inline: true},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	return editEmbeds(ctx, h, nil, embed)
}

func (c *Commands) webhookList(ctx context.Context, h InteractionHandler) error {
	if err := deferResponse(ctx, h, true); err != nil {
		return err
	}
	i := h.GetInteraction()

	webhooks, err := c.session().GuildWebhooks(i.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		h.Logger().ErrorContext(ctx, "error listing webhooks", tint.Err(err))
		return editContent(
			ctx,
			h,
			"❌ Failed to fetch webhooks. Make sure I have permission to manage webhooks.",
		)
	}
	if len(webhooks) == 0 {
		return editContent(ctx, h, "📭 No webhooks found in this server.")
	}

	return c.paginate(ctx, h, c.webhookPages(webhooks), c.pagination.IdleTimeout)
}

func (c *Commands) webhookPages(webhooks []*discordgo.Webhook) []Page {
	chunks := chunkItems(webhooksPerPage, webhooks...)
	pages := make([]Page, 0, len(chunks))
	now := embedTimestamp(c.now())

	for pageIndex, chunk := range chunks {
		embed := &discordgo.MessageEmbed{
			Title:     fmt.Sprintf("🔗 Server Webhooks (Page %d/%d)", pageIndex+1, len(chunks)),
			Color:     c.config.embedColor(),
			Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total: %d webhooks", len(webhooks))},
			Timestamp: now,
		}
		for n, wh := range chunk {
			embed.Fields = append(
				embed.Fields,
				&discordgo.MessageEmbedField{
					Name: fmt.Sprintf("%d. %s", pageIndex*webhooksPerPage+n+1, wh.Name),
					Value: fmt.Sprintf(
						"**Channel:** <#%s>\n**ID:** `%s`\n**Created:** %s",
						wh.ChannelID,
						wh.ID,
						discordTimestamp(snowflakeTime(wh.ID)),
					),
				},
			)
		}
		pages = append(pages, Page{Embeds: []*discordgo.MessageEmbed{embed}})
	}
	return pages
}

func (c *Commands) webhookSay(ctx context.Context, h InteractionHandler, r WebhookSayRequest) error {
	if err := deferResponse(ctx, h, true); err != nil {
		return err
	}
	id, token, ok := parseWebhookURL(r.WebhookURL)
	if !ok {
		return editContent(ctx, h, "❌ Invalid webhook URL format.")
	}

	params := &discordgo.WebhookParams{
		Content:   r.Message,
		Username:  r.Username,
		AvatarURL: r.AvatarURL,
	}
	if _, err := c.session().WebhookExecute(id, token, true, params, discordgo.WithContext(ctx)); err != nil {
		h.Logger().ErrorContext(ctx, "error executing webhook", tint.Err(err), "webhook_id", id)
		if isRESTError(err) {
			return editContent(
				ctx,
				h,
				"❌ Failed to send message through webhook. The webhook may be invalid or deleted.",
			)
		}
		return editContent(ctx, h, "❌ An error occurred while sending the message.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Message Sent Successfully",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Message", Value: truncate(r.Message, embedFieldLimit)},
			{Name: "Sent by", Value: getDiscordUser(h.GetInteraction()).String(), Inline: true},
		},
		Timestamp: embedTimestamp(c.now()),
	}
	if r.Username != "" {
		embed.Fields = append(
			embed.Fields,
			&discordgo.MessageEmbedField{Name: "Username", Value: r.Username, Inline: true},
		)
	}
	return editEmbeds(ctx, h, nil, embed)
}
