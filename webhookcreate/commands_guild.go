package webhookcreate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	cdnBaseURL = "https://cdn.discordapp.com"

	// memberSampleLimit is the most members fetched for member-derived
	// counts (role members, boosters)
	memberSampleLimit = 1000

	permissionManageWebhooks         int64 = 1 << 29
	permissionUseApplicationCommands int64 = 1 << 31
)

var titleCaser = cases.Title(language.English)

var verificationLevels = map[discordgo.VerificationLevel]string{
	discordgo.VerificationLevelNone:     "None",
	discordgo.VerificationLevelLow:      "Low",
	discordgo.VerificationLevelMedium:   "Medium",
	discordgo.VerificationLevelHigh:     "High",
	discordgo.VerificationLevelVeryHigh: "Very High",
}

type permissionGroup int

const (
	permissionGroupGeneral permissionGroup = iota
	permissionGroupAdministrative
	permissionGroupText
	permissionGroupVoice
)

// permissionNames is every named permission bit, in bit order
var permissionNames = []struct {
	bit   int64
	name  string
	group permissionGroup
}{
	{1 << 0, "CreateInstantInvite", permissionGroupGeneral},
	{1 << 1, "KickMembers", permissionGroupAdministrative},
	{1 << 2, "BanMembers", permissionGroupAdministrative},
	{1 << 3, "Administrator", permissionGroupAdministrative},
	{1 << 4, "ManageChannels", permissionGroupAdministrative},
	{1 << 5, "ManageGuild", permissionGroupAdministrative},
	{1 << 6, "AddReactions", permissionGroupText},
	{1 << 7, "ViewAuditLog", permissionGroupGeneral},
	{1 << 8, "PrioritySpeaker", permissionGroupGeneral},
	{1 << 9, "Stream", permissionGroupGeneral},
	{1 << 10, "ViewChannel", permissionGroupGeneral},
	{1 << 11, "SendMessages", permissionGroupText},
	{1 << 12, "SendTTSMessages", permissionGroupGeneral},
	{1 << 13, "ManageMessages", permissionGroupAdministrative},
	{1 << 14, "EmbedLinks", permissionGroupText},
	{1 << 15, "AttachFiles", permissionGroupText},
	{1 << 16, "ReadMessageHistory", permissionGroupText},
	{1 << 17, "MentionEveryone", permissionGroupText},
	{1 << 18, "UseExternalEmojis", permissionGroupText},
	{1 << 19, "ViewGuildInsights", permissionGroupGeneral},
	{1 << 20, "Connect", permissionGroupVoice},
	{1 << 21, "Speak", permissionGroupVoice},
	{1 << 22, "MuteMembers", permissionGroupVoice},
	{1 << 23, "DeafenMembers", permissionGroupVoice},
	{1 << 24, "MoveMembers", permissionGroupVoice},
	{1 << 25, "UseVAD", permissionGroupVoice},
	{1 << 26, "ChangeNickname", permissionGroupGeneral},
	{1 << 27, "ManageNicknames", permissionGroupAdministrative},
	{1 << 28, "ManageRoles", permissionGroupAdministrative},
	{1 << 29, "ManageWebhooks", permissionGroupAdministrative},
	{1 << 30, "ManageGuildExpressions", permissionGroupGeneral},
	{1 << 31, "UseApplicationCommands", permissionGroupGeneral},
	{1 << 32, "RequestToSpeak", permissionGroupGeneral},
	{1 << 33, "ManageEvents", permissionGroupGeneral},
	{1 << 34, "ManageThreads", permissionGroupGeneral},
	{1 << 35, "CreatePublicThreads", permissionGroupGeneral},
	{1 << 36, "CreatePrivateThreads", permissionGroupGeneral},
	{1 << 37, "UseExternalStickers", permissionGroupGeneral},
	{1 << 38, "SendMessagesInThreads", permissionGroupGeneral},
	{1 << 39, "UseEmbeddedActivities", permissionGroupGeneral},
	{1 << 40, "ModerateMembers", permissionGroupGeneral},
	{1 << 41, "ViewCreatorMonetizationAnalytics", permissionGroupGeneral},
	{1 << 42, "UseSoundboard", permissionGroupGeneral},
	{1 << 43, "CreateGuildExpressions", permissionGroupGeneral},
	{1 << 44, "CreateEvents", permissionGroupGeneral},
	{1 << 45, "UseExternalSounds", permissionGroupGeneral},
	{1 << 46, "SendVoiceMessages", permissionGroupGeneral},
	{1 << 49, "SendPolls", permissionGroupGeneral},
	{1 << 50, "UseExternalApps", permissionGroupGeneral},
}

// permissionList returns the names of the permissions set in perms
func permissionList(perms int64) []string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			names = append(names, p.name)
		}
	}
	return names
}

// permissionsSection renders the grouped permission list shown by
// `/roleinfo`, limited to one embed field
func permissionsSection(perms int64) string {
	groups := map[permissionGroup][]string{}
	count := 0
	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			groups[p.group] = append(groups[p.group], "• "+p.name)
			count++
		}
	}
	if count == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**🔐 Permissions (%d)**\n", count)
	for _, g := range []struct {
		group permissionGroup
		title string
	}{
		{permissionGroupAdministrative, "Administrative"},
		{permissionGroupGeneral, "General"},
		{permissionGroupText, "Text"},
		{permissionGroupVoice, "Voice"},
	} {
		if names := groups[g.group]; len(names) > 0 {
			fmt.Fprintf(&sb, "\n**%s:**\n%s\n", g.title, strings.Join(names, "\n"))
		}
	}
	return truncate(strings.TrimRight(sb.String(), "\n"), embedFieldLimit)
}

// sortedRoles returns roles other than @everyone, highest first
func sortedRoles(guildID string, roles []*discordgo.Role) []*discordgo.Role {
	out := make([]*discordgo.Role, 0, len(roles))
	for _, r := range roles {
		if r.ID != guildID {
			out = append(out, r)
		}
	}
	sort.SliceStable(
		out, func(i, j int) bool {
			return out[i].Position > out[j].Position
		},
	)
	return out
}

// guildName returns the cached guild name, falling back to a REST lookup
func (c *Commands) guildName(ctx context.Context, guildID string) string {
	if g, ok := c.discord.guilds.get(guildID); ok && g.Name != "" {
		return g.Name
	}
	g, err := c.session().Guild(guildID, discordgo.WithContext(ctx))
	if err != nil || g == nil {
		return "this server"
	}
	return g.Name
}

func (c *Commands) roles(ctx context.Context, h InteractionHandler) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	i := h.GetInteraction()

	all, err := c.session().GuildRoles(i.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		h.Logger().ErrorContext(ctx, "error getting guild roles", tint.Err(err))
		return editContent(ctx, h, "❌ Failed to fetch server roles. Please try again later.")
	}
	roles := sortedRoles(i.GuildID, all)
	if len(roles) == 0 {
		return editContent(ctx, h, "📭 No roles found in this server (excluding @everyone).")
	}

	pages := c.rolePages(c.guildName(ctx, i.GuildID), roles, i)
	return c.paginate(ctx, h, pages, c.pagination.IdleTimeout, WithRejectNotice(DefaultRejectNotice))
}

func (c *Commands) rolePages(guildName string, roles []*discordgo.Role, i *discordgo.InteractionCreate) []Page {
	chunks := chunkItems(rolesPerPage, roles...)
	pages := make([]Page, 0, len(chunks))
	now := embedTimestamp(c.now())
	u := getDiscordUser(i)

	for pageIndex, chunk := range chunks {
		var sb strings.Builder
		for n, r := range chunk {
			fmt.Fprintf(&sb, "`#%d.` <@&%s> - `[%s]`\n", pageIndex*rolesPerPage+n+1, r.ID, r.ID)
		}
		embed := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("List of Roles in %s - %d roles", guildName, len(roles)),
			Description: sb.String(),
			Color:       c.config.embedColor(),
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf(
					"• Page %d/%d | Requested by %s",
					pageIndex+1,
					len(chunks),
					memberDisplayName(i),
				),
				IconURL: u.AvatarURL(""),
			},
			Timestamp: now,
		}
		pages = append(pages, Page{Embeds: []*discordgo.MessageEmbed{embed}})
	}
	return pages
}

// guildMembers fetches the first page of guild members. Listing members
// requires the privileged members intent, so callers treat an error as
// "unknown" rather than a failure.
func (c *Commands) guildMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	return c.session().GuildMembers(guildID, "", memberSampleLimit, discordgo.WithContext(ctx))
}

func (c *Commands) roleInfo(ctx context.Context, h InteractionHandler, r RoleInfoRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	i := h.GetInteraction()
	logger := h.Logger()

	var (
		roles   []*discordgo.Role
		members []*discordgo.Member
		membErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(
		func() error {
			var err error
			roles, err = c.session().GuildRoles(i.GuildID, discordgo.WithContext(gctx))
			return err
		},
	)
	g.Go(
		func() error {
			members, membErr = c.guildMembers(gctx, i.GuildID)
			return nil
		},
	)
	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "error getting role info", tint.Err(err))
		return c.roleInfoError(ctx, h, err)
	}

	role := r.Role
	for _, gr := range roles {
		if gr.ID == r.RoleID {
			role = gr
			break
		}
	}
	if role == nil {
		return c.roleInfoError(ctx, h, fmt.Errorf("role %s not found", r.RoleID))
	}

	memberCount := "Unknown"
	if membErr == nil {
		n := 0
		for _, m := range members {
			for _, id := range m.Roles {
				if id == role.ID {
					n++
					break
				}
			}
		}
		memberCount = formatNumber(n)
	} else {
		logger.DebugContext(ctx, "unable to list members", tint.Err(membErr))
	}

	managed := "❌ No"
	if role.Managed {
		managed = "✅ Yes (Bot/Integration)"
	}
	created := snowflakeTime(role.ID).Unix()

	sections := []string{
		fmt.Sprintf(
			"🎭 **Role Information**\n**Name:** %s\n**ID:** `%s`\n**Mention:** <@&%s>",
			role.Name, role.ID, role.ID,
		),
		fmt.Sprintf(
			"**📊 Role Details**\n**Position:** %d/%d\n**Color:** #%06x\n**Hoisted:** %s\n"+
				"**Mentionable:** %s\n**Managed:** %s\n**Members:** %s",
			role.Position, len(roles), role.Color,
			yesNo(role.Hoist), yesNo(role.Mentionable), managed, memberCount,
		),
		fmt.Sprintf("**📅 Creation Info**\n**Created:** <t:%d:F>\n**Created:** <t:%d:R>", created, created),
	}
	if role.ID != i.GuildID {
		if perms := permissionsSection(role.Permissions); perms != "" {
			sections = append(sections, perms)
		}
	}
	sections = append(sections, "Requested by "+memberDisplayName(i))

	return editEmbeds(ctx, h, nil, containerEmbed(c.config.embedColor(), sections...))
}

func (c *Commands) roleInfoError(ctx context.Context, h InteractionHandler, err error) error {
	return editEmbeds(
		ctx,
		h,
		nil,
		containerEmbed(
			c.config.errorColor(),
			"❌ **Error**\nFailed to fetch role information. Please try again later.\n\n"+
				"**Error Details:**\n"+valueOr(err.Error(), "Unknown error occurred"),
		),
	)
}

// formatGuildFeatures converts feature flags like ANIMATED_ICON to
// 'Animated Icon'
func formatGuildFeatures(features []discordgo.GuildFeature) string {
	if len(features) == 0 {
		return "None"
	}
	names := make([]string, 0, len(features))
	for _, f := range features {
		names = append(names, titleCaser.String(strings.ReplaceAll(strings.ToLower(string(f)), "_", " ")))
	}
	return truncateWithEllipsis(strings.Join(names, ", "), embedFieldLimit)
}

func (c *Commands) serverInfo(ctx context.Context, h InteractionHandler) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	i := h.GetInteraction()
	logger := h.Logger()

	var (
		guild    *discordgo.Guild
		channels []*discordgo.Channel
		roles    []*discordgo.Role
		members  []*discordgo.Member
		membErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(
		func() error {
			var err error
			guild, err = c.session().GuildWithCounts(i.GuildID, discordgo.WithContext(gctx))
			return err
		},
	)
	g.Go(
		func() error {
			var err error
			channels, err = c.session().GuildChannels(i.GuildID, discordgo.WithContext(gctx))
			return err
		},
	)
	g.Go(
		func() error {
			var err error
			roles, err = c.session().GuildRoles(i.GuildID, discordgo.WithContext(gctx))
			return err
		},
	)
	g.Go(
		func() error {
			members, membErr = c.guildMembers(gctx, i.GuildID)
			return nil
		},
	)
	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "error getting server info", tint.Err(err))
		return editContent(ctx, h, "❌ Failed to fetch server information.")
	}

	var text, voice, categories int
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText:
			text++
		case discordgo.ChannelTypeGuildVoice:
			voice++
		case discordgo.ChannelTypeGuildCategory:
			categories++
		}
	}
	var animated int
	for _, e := range guild.Emojis {
		if e.Animated {
			animated++
		}
	}
	boosters := "N/A"
	if membErr == nil {
		n := 0
		for _, m := range members {
			if m.PremiumSince != nil {
				n++
			}
		}
		boosters = formatNumber(n)
	}

	owner := "<@" + guild.OwnerID + ">"
	if u, err := c.session().User(guild.OwnerID, discordgo.WithContext(ctx)); err == nil && u != nil {
		owner = u.String()
	}

	embed := &discordgo.MessageEmbed{
		Title:     guild.Name + " Server Information",
		Color:     c.config.embedColor(),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server ID: " + guild.ID},
		Timestamp: embedTimestamp(c.now()),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   fmt.Sprintf("**__Server Roles__ [ %d ]**", len(roles)),
				Value:  fmt.Sprintf("Total roles in this server: **%d**", len(roles)),
				Inline: true,
			},
			{
				Name: "**__Boost Status__**",
				Value: fmt.Sprintf(
					"**Level:** %d\n**Boosts:** %d\n**Boosters:** %s",
					guild.PremiumTier, guild.PremiumSubscriptionCount, boosters,
				),
				Inline: true,
			},
			{
				Name: "**__Emoji Info__**",
				Value: fmt.Sprintf(
					"**Total:** %d\n**Static:** %d\n**Animated:** %d",
					len(guild.Emojis), len(guild.Emojis)-animated, animated,
				),
				Inline: true,
			},
			{
				Name: "**__Channels__**",
				Value: fmt.Sprintf(
					"**Total:** %d\n**Text:** %d\n**Voice:** %d\n**Categories:** %d",
					text+voice+categories, text, voice, categories,
				),
				Inline: true,
			},
			{Name: "**__Features__**", Value: formatGuildFeatures(guild.Features), Inline: true},
			{
				Name: "**__General Stats__**",
				Value: fmt.Sprintf(
					"**Total Members:** %s\n**Online:** %s\n**Created:** %s",
					formatNumber(guild.ApproximateMemberCount),
					formatNumber(guild.ApproximatePresenceCount),
					discordTimestamp(snowflakeTime(guild.ID)),
				),
				Inline: true,
			},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guildIconURL(guild, "png", 256)}
	}
	if guild.Description != "" {
		embed.Fields = append(
			embed.Fields,
			&discordgo.MessageEmbedField{Name: "**__Description__**", Value: guild.Description},
		)
	}
	embed.Fields = append(
		embed.Fields,
		&discordgo.MessageEmbedField{
			Name: "**__About__**",
			Value: fmt.Sprintf(
				"**Owner:** %s\n**Region:** %s\n**Verification Level:** %s",
				owner,
				valueOr(string(guild.PreferredLocale), "Unknown"),
				valueOr(verificationLevels[guild.VerificationLevel], "Unknown"),
			),
		},
	)
	return editEmbeds(ctx, h, nil, embed)
}

func guildIconURL(g *discordgo.Guild, ext string, size int) string {
	return fmt.Sprintf("%s/icons/%s/%s.%s?size=%d", cdnBaseURL, g.ID, g.Icon, ext, size)
}

func (c *Commands) serverIcon(ctx context.Context, h InteractionHandler) error {
	i := h.GetInteraction()
	guild, ok := c.discord.guilds.get(i.GuildID)
	if !ok || guild.Name == "" {
		var err error
		guild, err = c.session().Guild(i.GuildID, discordgo.WithContext(ctx))
		if err != nil {
			h.Logger().ErrorContext(ctx, "error getting guild", tint.Err(err))
			return respondContent(ctx, h, "❌ Failed to fetch the server icon.", true)
		}
	}
	if guild.Icon == "" {
		return respondContent(ctx, h, "❌ This server doesn't have an icon set.", true)
	}

	png := guildIconURL(guild, "png", 1024)
	embed := &discordgo.MessageEmbed{
		Title: guild.Name + "'s Server Icon",
		Color: c.config.embedColor(),
		Description: fmt.Sprintf(
			"[**PNG**](%s) | [**JPG**](%s) | [**WEBP**](%s)",
			png,
			guildIconURL(guild, "jpg", 1024),
			guildIconURL(guild, "webp", 1024),
		),
		Image:     &discordgo.MessageEmbedImage{URL: png},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server ID: " + guild.ID},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

// userAvatarURL returns the user's avatar as a png, or their default
// avatar if they haven't set one
func userAvatarURL(u *discordgo.User, size int) string {
	if u.Avatar == "" {
		return u.AvatarURL("")
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png?size=%d", cdnBaseURL, u.ID, u.Avatar, size)
}

func userBannerURL(u *discordgo.User, size int) string {
	return fmt.Sprintf("%s/banners/%s/%s.png?size=%d", cdnBaseURL, u.ID, u.Banner, size)
}

func (c *Commands) userAvatar(ctx context.Context, h InteractionHandler, r UserAvatarRequest) error {
	u := r.User
	if u == nil {
		u = getDiscordUser(h.GetInteraction())
	}
	embed := &discordgo.MessageEmbed{
		Title: u.String() + "'s Avatar",
		Color: c.config.embedColor(),
		Description: fmt.Sprintf(
			"**Download Links:**\n[512x512](%s) | [1024x1024](%s) | [2048x2048](%s)",
			userAvatarURL(u, 512),
			userAvatarURL(u, 1024),
			userAvatarURL(u, 2048),
		),
		Image:     &discordgo.MessageEmbedImage{URL: userAvatarURL(u, 1024)},
		Footer:    &discordgo.MessageEmbedFooter{Text: "User ID: " + u.ID},
		Timestamp: embedTimestamp(c.now()),
	}
	return respondEmbeds(ctx, h, false, embed)
}

func (c *Commands) userBanner(ctx context.Context, h InteractionHandler, r UserBannerRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	target := r.User
	if target == nil {
		target = getDiscordUser(h.GetInteraction())
	}

	// banners aren't included in interaction payloads
	u, err := c.session().User(target.ID, discordgo.WithContext(ctx))
	if err != nil {
		h.Logger().ErrorContext(ctx, "error getting user", tint.Err(err), "user_id", target.ID)
		return editContent(ctx, h, "❌ Failed to fetch the user's banner.")
	}
	if u.Banner == "" {
		return editContent(ctx, h, fmt.Sprintf("❌ %s doesn't have a banner set.", target))
	}

	embed := &discordgo.MessageEmbed{
		Title: target.String() + "'s Banner",
		Color: c.config.embedColor(),
		Description: fmt.Sprintf(
			"**Download Links:**\n[512x512](%s) | [1024x1024](%s) | [2048x2048](%s)",
			userBannerURL(u, 512),
			userBannerURL(u, 1024),
			userBannerURL(u, 2048),
		),
		Image:     &discordgo.MessageEmbedImage{URL: userBannerURL(u, 1024)},
		Footer:    &discordgo.MessageEmbedFooter{Text: "User ID: " + u.ID},
		Timestamp: embedTimestamp(c.now()),
	}
	if u.AccentColor != 0 {
		embed.Fields = append(
			embed.Fields,
			&discordgo.MessageEmbedField{
				Name:   "Accent Color",
				Value:  fmt.Sprintf("#%06x", u.AccentColor),
				Inline: true,
			},
		)
	}
	return editEmbeds(ctx, h, nil, embed)
}
