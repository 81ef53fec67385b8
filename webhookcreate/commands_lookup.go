package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const (
	notSpecified = "Not specified"

	// mentionInvitePermissions is the permission set used by the invite
	// buttons outside of `/bot invite`
	mentionInvitePermissions = DefaultMentionInvitePermission
)

// stockCategories are the Grow a Garden shop categories shown by
// `/stock`, with the most items shown for each
var stockCategories = []struct {
	name  string
	items func(s *Stock) *[]StockItem
	limit int
}{
	{"**SEEDS STOCK**:", func(s *Stock) *[]StockItem { return s.Seeds }, 9},
	{"**GEAR STOCK**:", func(s *Stock) *[]StockItem { return s.Gear }, 9},
	{"**EGG STOCK**:", func(s *Stock) *[]StockItem { return s.Eggs }, 4},
	{"**EVENT STOCK**:", func(s *Stock) *[]StockItem { return s.Event }, 2},
	{"**COSMETICS STOCK**:", func(s *Stock) *[]StockItem { return s.Cosmetics }, 10},
}

func errorDetails(err error) string {
	return "**Error Details:**\n" + valueOr(err.Error(), "Unknown error occurred")
}

func (c *Commands) github(ctx context.Context, h InteractionHandler, r GitHubRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	user, err := c.lookup.GitHubUser(ctx, r.Username)
	if err != nil {
		if statusCode(err) == 404 {
			return editEmbeds(
				ctx,
				h,
				nil,
				containerEmbed(
					c.config.errorColor(),
					fmt.Sprintf("❌ **GitHub User Not Found**\nUser **%s** was not found on GitHub.", r.Username),
				),
			)
		}
		h.Logger().ErrorContext(ctx, "error fetching github user", tint.Err(err), "username", r.Username)
		return editEmbeds(
			ctx,
			h,
			nil,
			containerEmbed(
				c.config.errorColor(),
				fmt.Sprintf(
					"❌ **GitHub Lookup Failed**\nSorry, I couldn't fetch information for **%s**. "+
						"Please try again later.",
					r.Username,
				),
				errorDetails(err),
			),
		)
	}

	twitter := notSpecified
	if user.TwitterUsername != "" {
		twitter = "@" + user.TwitterUsername
	}
	embed := containerEmbed(
		c.config.embedColor(),
		fmt.Sprintf("🐙 **GitHub Profile: %s**\n**Name:** %s", user.Login, valueOr(user.Name, notSpecified)),
		fmt.Sprintf(
			"**📋 Profile Information**\n**Bio:** %s\n**Location:** %s\n**Company:** %s\n"+
				"**Blog:** %s\n**Twitter:** %s",
			valueOr(user.Bio, notSpecified),
			valueOr(user.Location, notSpecified),
			valueOr(user.Company, notSpecified),
			valueOr(user.Blog, notSpecified),
			twitter,
		),
		fmt.Sprintf(
			"**📊 GitHub Statistics**\n**Public Repos:** %s\n**Followers:** %s\n"+
				"**Following:** %s\n**Public Gists:** %s",
			formatNumber(user.PublicRepos),
			formatNumber(user.Followers),
			formatNumber(user.Following),
			formatNumber(user.PublicGists),
		),
		fmt.Sprintf(
			"**📅 Account Information**\n**Created:** <t:%d:F>\n**Last Updated:** <t:%d:R>",
			user.CreatedAt.Unix(),
			user.UpdatedAt.Unix(),
		),
		"**🔗 Quick Actions**\nView profile or invite our bot to your server!",
		"Requested by: "+getDiscordUser(h.GetInteraction()).String(),
	)
	if user.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL}
	}

	buttons := []discordgo.Button{
		linkButton("View GitHub Profile", user.HTMLURL),
		linkButton("Invite Bot", inviteURL(c.applicationID(), mentionInvitePermissions)),
	}
	if c.config.supportConfigured() {
		buttons = append(buttons, linkButton("Join Server", c.config.SupportLink))
	}
	return editEmbeds(ctx, h, linkRow(buttons...), embed)
}

// validShortenURL reports whether s is an absolute http(s) URL
func validShortenURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// shortenErrorMessage describes why shortening failed
func shortenErrorMessage(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return "❌ **Request Timeout**\nThe URL shortening service is taking too long to respond. " +
			"Please try again later."
	case errors.Is(err, ErrInvalidResponse):
		return "❌ **Invalid Response**\nThe URL shortening service returned an invalid response."
	case statusCode(err) == 0 && errors.As(err, new(*url.Error)):
		return "❌ **Network Error**\nCannot connect to the URL shortening service. The service might be down."
	}
	return "❌ **URL Shortening Failed**\nSorry, I couldn't shorten that URL. Please try again later."
}

func (c *Commands) shorten(ctx context.Context, h InteractionHandler, r ShortenRequest) error {
	if !validShortenURL(r.URL) {
		return reply(
			ctx,
			h,
			true,
			nil,
			containerEmbed(
				c.config.errorColor(),
				"❌ **Invalid URL**\nPlease provide a valid URL (must include http:// or https://)",
			),
		)
	}
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}

	short, err := c.lookup.ShortenURL(ctx, r.URL)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error shortening url", tint.Err(err))
		return editEmbeds(
			ctx,
			h,
			nil,
			containerEmbed(c.config.errorColor(), shortenErrorMessage(err), errorDetails(err)),
		)
	}

	embed := containerEmbed(
		c.config.embedColor(),
		"🔗 **URL Shortened Successfully**\nYour long URL has been shortened!",
		"**Original URL:**\n"+truncateWithEllipsis(r.URL, 100),
		"**Shortened URL:**\n"+short,
		"Requested by: "+getDiscordUser(h.GetInteraction()).String(),
	)
	return editEmbeds(
		ctx,
		h,
		linkRow(linkButton("Open Original", r.URL), linkButton("Open Shortened", short)),
		embed,
	)
}

func formatStockCategory(items []StockItem, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		value := "0"
		if item.Value != nil {
			value = valueOr(fmt.Sprint(item.Value), "0")
		}
		lines = append(lines, fmt.Sprintf("%s - %s", valueOr(item.Name, "Unknown"), value))
	}
	if len(lines) == 0 {
		return "No items available"
	}
	return truncate(strings.Join(lines, "\n"), embedFieldLimit)
}

func (c *Commands) stockEmbed(stock *Stock) *discordgo.MessageEmbed {
	bot := c.discord.BotUser()
	embed := &discordgo.MessageEmbed{
		Color:     c.config.embedColor(),
		Timestamp: embedTimestamp(c.now()),
	}
	if bot != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    bot.Username + " • Grow a Garden Stocks",
			IconURL: bot.AvatarURL(""),
		}
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: bot.AvatarURL("")}
	}
	for _, category := range stockCategories {
		items := category.items(stock)
		if items == nil {
			continue
		}
		embed.Fields = append(
			embed.Fields,
			&discordgo.MessageEmbedField{
				Name:  category.name,
				Value: formatStockCategory(*items, category.limit),
			},
		)
	}
	return embed
}

func (c *Commands) stock(ctx context.Context, h InteractionHandler) error {
	if err := respondContent(ctx, h, "Loading...", false); err != nil {
		return err
	}
	stock, err := c.lookup.Stock(ctx)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error fetching stock", tint.Err(err))
		return editEmbeds(
			ctx,
			h,
			nil,
			&discordgo.MessageEmbed{
				Title:       "❌ Error",
				Description: "Failed to fetch stock data from the API. Please try again later.",
				Color:       c.config.errorColor(),
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Error Details", Value: truncate(err.Error(), embedFieldLimit)},
				},
				Timestamp: embedTimestamp(c.now()),
			},
		)
	}
	return editEmbeds(ctx, h, nil, c.stockEmbed(stock))
}

// animalTitle turns an animal type like 'red_panda' into 'Red panda'
func animalTitle(animal string) string {
	name := strings.Replace(animal, "_", " ", 1)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (c *Commands) animalImage(ctx context.Context, h InteractionHandler, r ImagesAnimalRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	imageURL, err := c.lookup.AnimalImage(ctx, r.Animal)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error fetching animal image", tint.Err(err), "animal", r.Animal)
		return editEmbeds(
			ctx,
			h,
			nil,
			&discordgo.MessageEmbed{
				Title:       "❌ Image Fetch Failed",
				Description: fmt.Sprintf("Sorry, I couldn't fetch a %s image. Please try again later.", r.Animal),
				Color:       c.config.errorColor(),
				Timestamp:   embedTimestamp(c.now()),
			},
		)
	}
	return editEmbeds(
		ctx,
		h,
		nil,
		&discordgo.MessageEmbed{
			Title:     fmt.Sprintf("🐾 Random %s Image", animalTitle(r.Animal)),
			Color:     c.config.embedColor(),
			Image:     &discordgo.MessageEmbedImage{URL: imageURL},
			Footer:    requestedByFooter(getDiscordUser(h.GetInteraction())),
			Timestamp: embedTimestamp(c.now()),
		},
	)
}

func (c *Commands) scriptSearch(ctx context.Context, h InteractionHandler, r ScriptsSearchRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	scripts, err := c.lookup.SearchScripts(ctx, r.Query)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error searching scripts", tint.Err(err))
		return editEmbeds(
			ctx,
			h,
			nil,
			containerEmbed(
				c.config.errorColor(),
				"❌ **ScriptBlox Search Failed**\nSorry, I couldn't search ScriptBlox. Please try again later.",
				errorDetails(err),
			),
		)
	}
	if len(scripts) == 0 {
		return editEmbeds(
			ctx,
			h,
			nil,
			containerEmbed(
				c.config.errorColor(),
				fmt.Sprintf("🔍 **ScriptBlox Search**\nNo scripts found for query: **%s**", r.Query),
			),
		)
	}

	u := getDiscordUser(h.GetInteraction())
	return c.paginate(
		ctx,
		h,
		c.scriptPages(r.Query, scripts),
		c.pagination.ScriptSearchIdleTimeout,
		WithRejectNotice(fmt.Sprintf("Only **%s** can use these buttons.", u.Username)),
	)
}

func (c *Commands) scriptPages(query string, scripts []Script) []Page {
	chunks := chunkItems(scriptsPerPage, scripts...)
	pages := make([]Page, 0, len(chunks))

	for pageIndex, chunk := range chunks {
		sections := []string{
			fmt.Sprintf(
				"🔍 **ScriptBlox Search Results**\nSearch query: **%s**\nTotal results: %d",
				query,
				len(scripts),
			),
		}
		buttons := make([]discordgo.Button, 0, len(chunk))
		for n, s := range chunk {
			verified := "❌"
			if s.Verified {
				verified = "✅"
			}
			sections = append(
				sections,
				fmt.Sprintf(
					"**%d. %s**\n**Game:** %s\n**Verified:** %s\n**Views:** %s",
					pageIndex*scriptsPerPage+n+1,
					valueOr(s.Title, "Untitled Script"),
					valueOr(s.Game.Name, "Unknown Game"),
					verified,
					formatNumber(s.Views),
				),
			)
			buttons = append(buttons, linkButton("View Script", c.lookup.scriptURL(s)))
		}
		pages = append(
			pages,
			Page{
				Embeds:     []*discordgo.MessageEmbed{containerEmbed(c.config.embedColor(), sections...)},
				Components: linkRow(buttons...),
			},
		)
	}
	return pages
}
