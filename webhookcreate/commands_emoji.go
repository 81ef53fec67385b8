package webhookcreate

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const replyEmojiNotFound = "❌ Emoji not found in this server. Please make sure the emoji exists and try again."

var customEmojiPattern = regexp.MustCompile(`<a?:([^:]+):(\d+)>`)

// findGuildEmoji matches input against the guild's emojis. A custom
// emoji mention is matched by its ID, anything else by name or ID.
func findGuildEmoji(emojis []*discordgo.Emoji, input string) *discordgo.Emoji {
	if m := customEmojiPattern.FindStringSubmatch(input); m != nil {
		for _, e := range emojis {
			if e.ID == m[2] {
				return e
			}
		}
		return nil
	}
	for _, e := range emojis {
		if e.Name == input || e.ID == input {
			return e
		}
	}
	return nil
}

func emojiImageURL(e *discordgo.Emoji, size int) string {
	ext := "png"
	if e.Animated {
		ext = "gif"
	}
	return fmt.Sprintf("%s/emojis/%s.%s?size=%d", cdnBaseURL, e.ID, ext, size)
}

// lookupEmoji defers the response, then finds the requested emoji. A nil
// emoji with a nil error means the not-found reply was already sent.
func (c *Commands) lookupEmoji(
	ctx context.Context,
	h InteractionHandler,
	input string,
	failure string,
) (*discordgo.Emoji, error) {
	if err := deferResponse(ctx, h, false); err != nil {
		return nil, err
	}
	emojis, err := c.session().GuildEmojis(h.GetInteraction().GuildID, discordgo.WithContext(ctx))
	if err != nil {
		h.Logger().ErrorContext(ctx, "error getting guild emojis", tint.Err(err))
		return nil, editContent(ctx, h, failure)
	}
	e := findGuildEmoji(emojis, input)
	if e == nil {
		return nil, editContent(ctx, h, replyEmojiNotFound)
	}
	return e, nil
}

func (c *Commands) emojiInfo(ctx context.Context, h InteractionHandler, r EmojiInfoRequest) error {
	e, err := c.lookupEmoji(ctx, h, r.Emoji, "❌ Failed to get emoji information.")
	if e == nil {
		return err
	}

	guildName := h.GetInteraction().GuildID
	if g, ok := c.discord.guilds.get(guildName); ok && g.Name != "" {
		guildName = g.Name
	}
	kind := "Static"
	if e.Animated {
		kind = "Animated"
	}

	embed := &discordgo.MessageEmbed{
		Title: "📝 Emoji Information",
		Color: c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Name", Value: e.Name, Inline: true},
			{Name: "ID", Value: e.ID, Inline: true},
			{Name: "Type", Value: kind, Inline: true},
			{Name: "Created", Value: discordTimestamp(snowflakeTime(e.ID)), Inline: true},
			{Name: "Managed", Value: yesNo(e.Managed), Inline: true},
			{Name: "Available", Value: yesNo(e.Available), Inline: true},
			{Name: "Usage", Value: "`" + e.MessageFormat() + "`"},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: emojiImageURL(e, 512)},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Guild: " + guildName},
		Timestamp: embedTimestamp(c.now()),
	}
	return editEmbeds(ctx, h, nil, embed)
}

func (c *Commands) emojiImage(ctx context.Context, h InteractionHandler, r EmojiImageRequest) error {
	e, err := c.lookupEmoji(ctx, h, r.Emoji, "❌ Failed to get emoji image.")
	if e == nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:     e.Name + " - 4096x4096",
		Color:     c.config.embedColor(),
		Image:     &discordgo.MessageEmbedImage{URL: emojiImageURL(e, 4096)},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Emoji ID: " + e.ID},
		Timestamp: embedTimestamp(c.now()),
	}
	return editEmbeds(ctx, h, nil, embed)
}
