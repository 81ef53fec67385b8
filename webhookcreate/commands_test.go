package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newComponentInteraction returns a button click on customID by u
func newComponentInteraction(u *discordgo.User, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        "300000000000000002",
			AppID:     "100000000000000001",
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   "400000000000000001",
			ChannelID: "500000000000000001",
			Member:    &discordgo.Member{User: u},
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}

func ownerUser(t testing.TB, c *Commands) *discordgo.User {
	t.Helper()
	u := newDiscordUser(t)
	u.ID = c.config.OwnerID
	return u
}

// navCustomID returns the custom ID of the navigation button for action
// in the last row of edit
func navCustomID(t testing.TB, edit *discordgo.WebhookEdit, action NavAction) string {
	t.Helper()
	require.NotNil(t, edit.Components)
	components := *edit.Components
	require.NotEmpty(t, components)
	row, ok := components[len(components)-1].(discordgo.ActionsRow)
	require.True(t, ok, "expected an actions row, got %T", components[len(components)-1])
	for _, c := range row.Components {
		b, isButton := c.(discordgo.Button)
		if !isButton {
			continue
		}
		if _, a, parsed := parsePaginationCustomID(b.CustomID); parsed && a == action {
			return b.CustomID
		}
	}
	t.Fatalf("no %s button in row", action)
	return ""
}

func hasNavigationRow(edit *discordgo.WebhookEdit) bool {
	if edit.Components == nil {
		return false
	}
	for _, c := range *edit.Components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if b, isButton := rc.(discordgo.Button); isButton {
				if _, _, parsed := parsePaginationCustomID(b.CustomID); parsed {
					return true
				}
			}
		}
	}
	return false
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantID    string
		wantToken string
		wantOK    bool
	}{
		{
			name:      "discord.com",
			url:       "https://discord.com/api/webhooks/123456789/abc_DEF-123",
			wantID:    "123456789",
			wantToken: "abc_DEF-123",
			wantOK:    true,
		},
		{
			name:      "discordapp.com",
			url:       "https://discordapp.com/api/webhooks/42/tok",
			wantID:    "42",
			wantToken: "tok",
			wantOK:    true,
		},
		{
			name:   "not a webhook",
			url:    "https://example.com/api/webhooks/42/tok",
			wantOK: false,
		},
		{
			name:   "missing token",
			url:    "https://discord.com/api/webhooks/42/",
			wantOK: false,
		},
		{
			name:   "empty",
			url:    "",
			wantOK: false,
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				id, token, ok := parseWebhookURL(tc.url)
				assert.Equal(t, tc.wantOK, ok)
				assert.Equal(t, tc.wantID, id)
				assert.Equal(t, tc.wantToken, token)
			},
		)
	}
}

func TestCommands_WebhookCreate(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	u := newDiscordUser(t)
	h := newStubInteractionHandler(t, newCommandInteraction(t, u, CommandWebhook))

	err := c.Handle(
		context.Background(),
		h,
		WebhookCreateRequest{
			commandRef: commandRef{command: CommandWebhook, subcommand: subcommandCreate},
			ChannelID:  "500000000000000099",
			Name:       "alerts",
		},
	)
	require.NoError(t, err)

	resp := h.lastResponse(t)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, resp.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	require.Len(t, session.webhooks, 1)
	wh := session.webhooks[0]
	assert.Equal(t, "alerts", wh.Name)
	assert.Equal(t, "500000000000000099", wh.ChannelID)

	edit := h.lastEdit(t)
	require.NotNil(t, edit.Embeds)
	require.Len(t, *edit.Embeds, 1)
	embed := (*edit.Embeds)[0]
	assert.Equal(t, "✅ Webhook Created Successfully", embed.Title)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "<#500000000000000099>", embed.Fields[1].Value)
	assert.Equal(
		t,
		fmt.Sprintf("||https://discord.com/api/webhooks/%s/token-alerts||", wh.ID),
		embed.Fields[3].Value,
	)
}

func TestCommands_WebhookCreate_Defaults(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	i := newCommandInteraction(t, newDiscordUser(t), CommandWebhook)
	h := newStubInteractionHandler(t, i)

	err := c.Handle(
		context.Background(),
		h,
		WebhookCreateRequest{commandRef: commandRef{command: CommandWebhook, subcommand: subcommandCreate}},
	)
	require.NoError(t, err)
	require.Len(t, session.webhooks, 1)
	assert.Equal(t, i.ChannelID, session.webhooks[0].ChannelID)
	assert.Equal(
		t,
		fmt.Sprintf("Webhook-%d", c.now().UnixMilli()),
		session.webhooks[0].Name,
	)
}

func TestCommands_WebhookCreate_Error(t *testing.T) {
	session := newMockDiscordSession(t)
	session.setErr("WebhookCreate", errors.New("missing permissions"))
	c, _ := newTestCommands(t, session)
	h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandWebhook))

	err := c.Handle(
		context.Background(),
		h,
		WebhookCreateRequest{commandRef: commandRef{command: CommandWebhook, subcommand: subcommandCreate}},
	)
	require.NoError(t, err)

	edit := h.lastEdit(t)
	require.NotNil(t, edit.Content)
	assert.Contains(t, *edit.Content, "Failed to create webhook")
}

func TestCommands_WebhookDelete(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		err         error
		wantContent string
		wantTitle   string
	}{
		{
			name:        "invalid url",
			url:         "https://example.com/nope",
			wantContent: "❌ Invalid webhook URL format.",
		},
		{
			name: "rest error",
			url:  "https://discord.com/api/webhooks/42/tok",
			err: &discordgo.RESTError{
				Response: &http.Response{StatusCode: http.StatusNotFound},
			},
			wantContent: "❌ Failed to delete webhook. The webhook may not exist or the URL is invalid.",
		},
		{
			name:        "transport error",
			url:         "https://discord.com/api/webhooks/42/tok",
			err:         errors.New("connection reset"),
			wantContent: "❌ An error occurred while deleting the webhook.",
		},
		{
			name:      "deleted",
			url:       "https://discord.com/api/webhooks/42/tok",
			wantTitle: "✅ Webhook Deleted Successfully",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				if tc.err != nil {
					session.setErr("WebhookDeleteWithToken", tc.err)
				}
				c, _ := newTestCommands(t, session)
				h := newStubInteractionHandler(
					t,
					newCommandInteraction(t, newDiscordUser(t), CommandWebhook),
				)

				err := c.Handle(
					context.Background(),
					h,
					WebhookDeleteRequest{
						commandRef: commandRef{command: CommandWebhook, subcommand: subcommandDelete},
						WebhookURL: tc.url,
					},
				)
				require.NoError(t, err)

				edit := h.lastEdit(t)
				if tc.wantContent != "" {
					require.NotNil(t, edit.Content)
					assert.Equal(t, tc.wantContent, *edit.Content)
					assert.Empty(t, session.deletedWebhooks)
					return
				}
				require.NotNil(t, edit.Embeds)
				assert.Equal(t, tc.wantTitle, (*edit.Embeds)[0].Title)
				assert.Equal(t, []string{"42"}, session.deletedWebhooks)
			},
		)
	}
}

func TestCommands_WebhookSay(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandWebhook))

	err := c.Handle(
		context.Background(),
		h,
		WebhookSayRequest{
			commandRef: commandRef{command: CommandWebhook, subcommand: subcommandSay},
			WebhookURL: "https://discord.com/api/webhooks/42/tok",
			Message:    "hello there",
			Username:   "announcer",
			AvatarURL:  "https://example.com/a.png",
		},
	)
	require.NoError(t, err)

	require.Len(t, session.executed, 1)
	assert.Equal(t, "hello there", session.executed[0].Content)
	assert.Equal(t, "announcer", session.executed[0].Username)
	assert.Equal(t, "https://example.com/a.png", session.executed[0].AvatarURL)

	edit := h.lastEdit(t)
	require.NotNil(t, edit.Embeds)
	embed := (*edit.Embeds)[0]
	assert.Equal(t, "✅ Message Sent Successfully", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "announcer", embed.Fields[2].Value)
}

func TestCommands_WebhookSay_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantContent string
	}{
		{
			name:        "rest error",
			err:         &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}},
			wantContent: "❌ Failed to send message through webhook. The webhook may be invalid or deleted.",
		},
		{
			name:        "transport error",
			err:         errors.New("timeout"),
			wantContent: "❌ An error occurred while sending the message.",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				session.setErr("WebhookExecute", tc.err)
				c, _ := newTestCommands(t, session)
				h := newStubInteractionHandler(
					t,
					newCommandInteraction(t, newDiscordUser(t), CommandWebhook),
				)
				err := c.Handle(
					context.Background(),
					h,
					WebhookSayRequest{
						commandRef: commandRef{command: CommandWebhook, subcommand: subcommandSay},
						WebhookURL: "https://discord.com/api/webhooks/42/tok",
						Message:    "hi",
					},
				)
				require.NoError(t, err)
				edit := h.lastEdit(t)
				require.NotNil(t, edit.Content)
				assert.Equal(t, tc.wantContent, *edit.Content)
			},
		)
	}
}

func TestCommands_WebhookList_Empty(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandWebhook))

	err := c.Handle(
		context.Background(),
		h,
		WebhookListRequest{commandRef: commandRef{command: CommandWebhook, subcommand: subcommandList}},
	)
	require.NoError(t, err)
	edit := h.lastEdit(t)
	require.NotNil(t, edit.Content)
	assert.Equal(t, "📭 No webhooks found in this server.", *edit.Content)
	assert.Equal(t, 0, c.paginator.ActiveSessions())
}

// TestCommands_WebhookList_Pagination drives a webhook list through the
// navigation router: a stranger's click is rejected, the owner's click
// advances the page, and the idle timeout strips the controls.
func TestCommands_WebhookList_Pagination(t *testing.T) {
	session := newMockDiscordSession(t)
	for n := 0; n < 7; n++ {
		session.webhooks = append(
			session.webhooks,
			&discordgo.Webhook{
				ID:        fmt.Sprintf("8000000000000000%02d", n),
				Name:      fmt.Sprintf("hook-%d", n),
				ChannelID: "500000000000000001",
			},
		)
	}
	c, scheduler := newTestCommands(t, session)
	router, ok := c.paginator.subscriber.(*navigationRouter)
	require.True(t, ok)

	ctx := context.Background()
	owner := newDiscordUser(t)
	h := newStubInteractionHandler(t, newCommandInteraction(t, owner, CommandWebhook))

	err := c.Handle(
		ctx,
		h,
		WebhookListRequest{commandRef: commandRef{command: CommandWebhook, subcommand: subcommandList}},
	)
	require.NoError(t, err)
	require.Equal(t, 1, c.paginator.ActiveSessions())

	first := h.lastEdit(t)
	require.NotNil(t, first.Embeds)
	assert.Equal(t, "🔗 Server Webhooks (Page 1/2)", (*first.Embeds)[0].Title)
	assert.Len(t, (*first.Embeds)[0].Fields, webhooksPerPage)
	require.True(t, hasNavigationRow(first))
	nextID := navCustomID(t, first, NavNext)

	t.Run(
		"stranger rejected", func(t *testing.T) {
			stranger := &discordgo.User{ID: "200000000000000777", Username: "stranger"}
			click := newStubInteractionHandler(t, newComponentInteraction(stranger, nextID))
			router.handleComponent(ctx, click)

			resp := click.lastResponse(t)
			assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
			assert.Equal(t, DefaultRejectNotice, resp.Data.Content)
			assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
			assert.Equal(t, "🔗 Server Webhooks (Page 1/2)", (*h.lastEdit(t).Embeds)[0].Title)
			assert.Zero(t, click.editCount())
		},
	)

	var ownerClick *stubInteractionHandler
	t.Run(
		"owner advances", func(t *testing.T) {
			commandEdits := h.editCount()
			ownerClick = newStubInteractionHandler(t, newComponentInteraction(owner, nextID))
			router.handleComponent(ctx, ownerClick)

			resp := ownerClick.lastResponse(t)
			assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, resp.Type)

			// the page is edited through the click's token
			assert.Equal(t, commandEdits, h.editCount())
			second := ownerClick.lastEdit(t)
			require.NotNil(t, second.Embeds)
			embed := (*second.Embeds)[0]
			assert.Equal(t, "🔗 Server Webhooks (Page 2/2)", embed.Title)
			require.Len(t, embed.Fields, 2)
			assert.Equal(t, "6. hook-5", embed.Fields[0].Name)
			assert.Equal(t, "Total: 7 webhooks", embed.Footer.Text)
			assert.True(t, hasNavigationRow(second))
		},
	)

	t.Run(
		"idle timeout strips controls", func(t *testing.T) {
			require.NotNil(t, ownerClick)
			commandEdits := h.editCount()
			scheduler.fireLatest(t)

			// the final render uses the most recent accepted click
			assert.Equal(t, commandEdits, h.editCount())
			require.Equal(t, 2, ownerClick.editCount())
			final := ownerClick.lastEdit(t)
			assert.False(t, hasNavigationRow(final))
			assert.Equal(t, "🔗 Server Webhooks (Page 2/2)", (*final.Embeds)[0].Title)
			assert.Equal(t, 0, c.paginator.ActiveSessions())

			late := newStubInteractionHandler(t, newComponentInteraction(owner, nextID))
			router.handleComponent(ctx, late)
			assert.Equal(t, paginationExpiredNotice, late.lastResponse(t).Data.Content)
			assert.Zero(t, late.editCount())
		},
	)
}

func TestCommands_WebhookPages(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)

	tests := []struct {
		count     int
		wantPages int
		wantLast  int
	}{
		{count: 1, wantPages: 1, wantLast: 1},
		{count: 5, wantPages: 1, wantLast: 5},
		{count: 6, wantPages: 2, wantLast: 1},
		{count: 11, wantPages: 3, wantLast: 1},
	}
	for _, tc := range tests {
		t.Run(
			fmt.Sprintf("%d webhooks", tc.count), func(t *testing.T) {
				webhooks := make([]*discordgo.Webhook, tc.count)
				for n := range webhooks {
					webhooks[n] = &discordgo.Webhook{ID: "900000000000000001", Name: fmt.Sprintf("w%d", n)}
				}
				pages := c.webhookPages(webhooks)
				require.Len(t, pages, tc.wantPages)
				last := pages[len(pages)-1]
				require.Len(t, last.Embeds, 1)
				assert.Len(t, last.Embeds[0].Fields, tc.wantLast)
				assert.Equal(
					t,
					fmt.Sprintf("🔗 Server Webhooks (Page %d/%d)", tc.wantPages, tc.wantPages),
					last.Embeds[0].Title,
				)
			},
		)
	}
}

func TestCommands_ServerListPages(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)

	guilds := make([]*discordgo.Guild, 12)
	for n := range guilds {
		guilds[n] = &discordgo.Guild{
			ID:          fmt.Sprintf("4000000000000001%02d", n),
			Name:        fmt.Sprintf("guild %d", n),
			MemberCount: n * 10,
			OwnerID:     "200000000000000005",
		}
	}
	pages := c.serverListPages(guilds)
	require.Len(t, pages, 3)
	assert.Equal(t, "🏠 Server List (Page 3/3)", pages[2].Embeds[0].Title)
	require.Len(t, pages[2].Embeds[0].Fields, 2)
	assert.Equal(t, "11. guild 10", pages[2].Embeds[0].Fields[0].Name)
	assert.Contains(t, pages[2].Embeds[0].Fields[0].Value, "**Members:** 100")
	assert.Equal(t, "Total: 12 servers", pages[0].Embeds[0].Footer.Text)
}

func TestCommands_OwnerOnly(t *testing.T) {
	tests := []struct {
		name string
		req  CommandRequest
	}{
		{
			name: "serverlist",
			req:  BotServerListRequest{commandRef{command: CommandBot, subcommand: subcommandServerList}},
		},
		{
			name: "leave",
			req: BotLeaveRequest{
				commandRef: commandRef{command: CommandBot, subcommand: subcommandLeave},
				ServerID:   "400000000000000002",
			},
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				c, _ := newTestCommands(t, session)
				h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandBot))

				require.NoError(t, c.Handle(context.Background(), h, tc.req))
				resp := h.lastResponse(t)
				assert.Equal(t, replyOwnerOnly, resp.Data.Content)
				assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
				assert.Empty(t, session.leftGuilds)
			},
		)
	}
}

func TestCommands_BotServerList(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	c.discord.guilds.put(&discordgo.Guild{ID: "400000000000000001", Name: "home", MemberCount: 3})

	h := newStubInteractionHandler(t, newCommandInteraction(t, ownerUser(t, c), CommandBot))
	err := c.Handle(
		context.Background(),
		h,
		BotServerListRequest{commandRef{command: CommandBot, subcommand: subcommandServerList}},
	)
	require.NoError(t, err)

	edit := h.lastEdit(t)
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, "🏠 Server List (Page 1/1)", (*edit.Embeds)[0].Title)
	assert.False(t, hasNavigationRow(edit), "single page lists have no controls")
	assert.Equal(t, 0, c.paginator.ActiveSessions())
}

func TestCommands_BotLeave(t *testing.T) {
	tests := []struct {
		name        string
		serverID    string
		wantContent string
		wantLeft    []string
	}{
		{
			name:        "unknown server",
			serverID:    "499999999999999999",
			wantContent: "❌ I am not in a server with that ID, or the ID is invalid.",
		},
		{
			name:        "current server",
			serverID:    "400000000000000001",
			wantContent: "❌ I cannot leave this server while you are using commands in it.",
		},
		{
			name:     "left",
			serverID: "400000000000000002",
			wantLeft: []string{"400000000000000002"},
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				c, _ := newTestCommands(t, session)
				c.discord.guilds.put(&discordgo.Guild{ID: "400000000000000001", Name: "home"})
				c.discord.guilds.put(&discordgo.Guild{ID: "400000000000000002", Name: "away", MemberCount: 9})

				h := newStubInteractionHandler(t, newCommandInteraction(t, ownerUser(t, c), CommandBot))
				err := c.Handle(
					context.Background(),
					h,
					BotLeaveRequest{
						commandRef: commandRef{command: CommandBot, subcommand: subcommandLeave},
						ServerID:   tc.serverID,
					},
				)
				require.NoError(t, err)

				resp := h.lastResponse(t)
				assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
				assert.Equal(t, tc.wantLeft, session.leftGuilds)
				if tc.wantContent != "" {
					assert.Equal(t, tc.wantContent, resp.Data.Content)
					assert.Equal(t, 2, c.discord.guilds.Len())
					return
				}
				require.Len(t, resp.Data.Embeds, 1)
				assert.Equal(t, "✅ Left Server Successfully", resp.Data.Embeds[0].Title)
				assert.Equal(t, "away", resp.Data.Embeds[0].Fields[0].Value)
				_, stillCached := c.discord.guilds.get(tc.serverID)
				assert.False(t, stillCached)
			},
		)
	}
}

func TestCommands_BotFeedback(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	db := gormDB(t)
	c.writeDB = NewDatabase(db, testLogger(t), false)
	c.discord.guilds.put(&discordgo.Guild{ID: "400000000000000001", Name: "home"})

	u := newDiscordUser(t)
	h := newStubInteractionHandler(t, newCommandInteraction(t, u, CommandBot))
	err := c.Handle(
		context.Background(),
		h,
		BotFeedbackRequest{
			commandRef: commandRef{command: CommandBot, subcommand: subcommandFeedback},
			Message:    "more colors please",
		},
	)
	require.NoError(t, err)

	sent := session.sentMessages()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Embeds, 1)
	assert.Equal(t, "💬 New Feedback Received", sent[0].Embeds[0].Title)
	assert.Equal(t, "home (400000000000000001)", sent[0].Embeds[0].Fields[1].Value)

	resp := h.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Equal(t, "✅ Feedback Sent Successfully", resp.Data.Embeds[0].Title)

	var saved Feedback
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, u.ID, saved.UserID)
	assert.Equal(t, "home", saved.GuildName)
	assert.Equal(t, "more colors please", saved.Message)
	assert.True(t, saved.Delivered)
}

func TestCommands_BotFeedback_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantContent string
	}{
		{
			name:        "channel not found",
			err:         &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}},
			wantContent: "❌ Feedback channel not found.",
		},
		{
			name:        "other error",
			err:         errors.New("boom"),
			wantContent: "❌ An error occurred while sending your feedback. Please try again later.",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				session.setErr("ChannelMessageSendComplex", tc.err)
				c, _ := newTestCommands(t, session)
				db := gormDB(t)
				c.writeDB = NewDatabase(db, testLogger(t), false)

				h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandBot))
				err := c.Handle(
					context.Background(),
					h,
					BotFeedbackRequest{
						commandRef: commandRef{command: CommandBot, subcommand: subcommandFeedback},
						Message:    "hello",
					},
				)
				require.NoError(t, err)
				assert.Equal(t, tc.wantContent, h.lastResponse(t).Data.Content)

				var saved Feedback
				require.NoError(t, db.First(&saved).Error)
				assert.False(t, saved.Delivered)
				assert.Equal(t, "Unknown", saved.GuildName)
			},
		)
	}
}

func TestCommands_BotFeedback_NotConfigured(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	c.config.FeedbackChannelID = ""

	h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandBot))
	err := c.Handle(
		context.Background(),
		h,
		BotFeedbackRequest{
			commandRef: commandRef{command: CommandBot, subcommand: subcommandFeedback},
			Message:    "hello",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "❌ Feedback channel is not configured.", h.lastResponse(t).Data.Content)
	assert.Empty(t, session.sentMessages())
}

func TestCommands_BotSupport(t *testing.T) {
	tests := []struct {
		name        string
		link        string
		wantContent string
	}{
		{name: "configured", link: "https://discord.gg/support"},
		{name: "empty", link: "", wantContent: "❌ Support server link is not configured."},
		{
			name:        "placeholder",
			link:        PlaceholderSupportLink,
			wantContent: "❌ Support server link is not configured.",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				c, _ := newTestCommands(t, session)
				c.config.SupportLink = tc.link

				h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandBot))
				err := c.Handle(
					context.Background(),
					h,
					BotSupportRequest{commandRef{command: CommandBot, subcommand: subcommandSupport}},
				)
				require.NoError(t, err)

				resp := h.lastResponse(t)
				if tc.wantContent != "" {
					assert.Equal(t, tc.wantContent, resp.Data.Content)
					return
				}
				require.Len(t, resp.Data.Embeds, 1)
				assert.Contains(t, resp.Data.Embeds[0].Description, tc.link)
			},
		)
	}
}

func TestCommands_BotInfoResponses(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	c.startedAt = c.now().Add(-(26*time.Hour + 3*time.Minute))
	c.discord.guilds.put(
		&discordgo.Guild{
			ID:          "400000000000000001",
			Name:        "home",
			MemberCount: 1500,
			Channels:    []*discordgo.Channel{{ID: "1"}, {ID: "2"}},
		},
	)

	tests := []struct {
		name  string
		req   CommandRequest
		check func(t *testing.T, embed *discordgo.MessageEmbed)
	}{
		{
			name: "invite",
			req:  BotInviteRequest{commandRef{command: CommandBot, subcommand: subcommandInvite}},
			check: func(t *testing.T, embed *discordgo.MessageEmbed) {
				assert.Equal(t, "🔗 Bot Invite Link", embed.Title)
				assert.Contains(t, embed.Description, "client_id=100000000000000001")
			},
		},
		{
			name: "uptime",
			req:  BotUptimeRequest{commandRef{command: CommandBot, subcommand: subcommandUptime}},
			check: func(t *testing.T, embed *discordgo.MessageEmbed) {
				assert.Equal(
					t,
					fmt.Sprintf("I've been running for **%s**", formatUptime(26*time.Hour+3*time.Minute)),
					embed.Description,
				)
			},
		},
		{
			name: "help",
			req:  BotHelpRequest{commandRef{command: CommandBot, subcommand: subcommandHelp}},
			check: func(t *testing.T, embed *discordgo.MessageEmbed) {
				require.Len(t, embed.Fields, 3)
				assert.Equal(t, helpOwnerCommands, embed.Fields[2].Value)
			},
		},
		{
			name: "info",
			req:  BotInfoRequest{commandRef{command: CommandBot, subcommand: subcommandInfo}},
			check: func(t *testing.T, embed *discordgo.MessageEmbed) {
				assert.Equal(t, "📋 Bot Information", embed.Title)
				assert.Equal(t, "100000000000000001", embed.Fields[1].Value)
			},
		},
		{
			name: "stats",
			req:  BotStatsRequest{commandRef{command: CommandBot, subcommand: subcommandStats}},
			check: func(t *testing.T, embed *discordgo.MessageEmbed) {
				require.Len(t, embed.Fields, 6)
				assert.Equal(t, "1", embed.Fields[0].Value)
				assert.Equal(t, formatNumber(1500), embed.Fields[1].Value)
				assert.Equal(t, "2", embed.Fields[2].Value)
				assert.Equal(t, fmt.Sprint(len(applicationCommands())), embed.Fields[3].Value)
				assert.Equal(t, "42ms", embed.Fields[4].Value)
				assert.True(t, strings.HasSuffix(embed.Fields[5].Value, " MB"))
			},
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandBot))
				require.NoError(t, c.Handle(context.Background(), h, tc.req))

				resp := h.lastResponse(t)
				assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
				require.Len(t, resp.Data.Embeds, 1)
				tc.check(t, resp.Data.Embeds[0])
			},
		)
	}
}

type unhandledRequest struct{ commandRef }

func TestCommands_Handle_Unknown(t *testing.T) {
	session := newMockDiscordSession(t)
	c, _ := newTestCommands(t, session)
	h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), "nope"))

	require.NoError(t, c.Handle(context.Background(), h, unhandledRequest{}))
	assert.Equal(t, replyUnknownSubcommand, h.lastResponse(t).Data.Content)
}

func TestLinkRow(t *testing.T) {
	assert.Nil(t, linkRow(linkButton("a", ""), linkButton("b", "")))

	row := linkRow(linkButton("a", "https://example.com"), linkButton("b", ""))
	require.Len(t, row, 1)
	actions, ok := row[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, actions.Components, 1)
	assert.Equal(t, "https://example.com", actions.Components[0].(discordgo.Button).URL)
}
