package webhookcreate

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommandRequest(t *testing.T) {
	role := &discordgo.Role{ID: "300000000000000001", Name: "Moderator"}
	target := &discordgo.User{ID: "200000000000000009", Username: "someone"}

	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want CommandRequest
	}{
		{
			name: "webhook create",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandWebhook,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(
						subcommandCreate,
						stringOption(optionChannel, "400000000000000001"),
						stringOption(optionName, "  Alerts "),
					),
				},
			},
			want: WebhookCreateRequest{
				commandRef: commandRef{command: CommandWebhook, subcommand: subcommandCreate},
				ChannelID:  "400000000000000001",
				Name:       "Alerts",
			},
		},
		{
			name: "webhook say",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandWebhook,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(
						subcommandSay,
						stringOption(optionWebhookURL, "https://discord.com/api/webhooks/1/abc"),
						stringOption(optionMessage, "hello"),
						stringOption(optionUsername, "Announcer"),
					),
				},
			},
			want: WebhookSayRequest{
				commandRef: commandRef{command: CommandWebhook, subcommand: subcommandSay},
				WebhookURL: "https://discord.com/api/webhooks/1/abc",
				Message:    "hello",
				Username:   "Announcer",
			},
		},
		{
			name: "images animal",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandImages,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name:    subcommandGroupAnml,
						Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommandOption("red_panda")},
					},
				},
			},
			want: ImagesAnimalRequest{
				commandRef: commandRef{command: CommandImages, subcommand: subcommandGroupAnml},
				Animal:     "red_panda",
			},
		},
		{
			name: "roleinfo resolved",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandRoleInfo,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: optionRole, Type: discordgo.ApplicationCommandOptionRole, Value: role.ID},
				},
				Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
					Roles: map[string]*discordgo.Role{role.ID: role},
				},
			},
			want: RoleInfoRequest{
				commandRef: commandRef{command: CommandRoleInfo},
				RoleID:     role.ID,
				Role:       role,
			},
		},
		{
			name: "emoji info",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandEmoji,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandInfo, stringOption(optionEmoji, " <:pepe:900000000000000001> ")),
				},
			},
			want: EmojiInfoRequest{
				commandRef: commandRef{command: CommandEmoji, subcommand: subcommandInfo},
				Emoji:      "<:pepe:900000000000000001>",
			},
		},
		{
			name: "emoji image",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandEmoji,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandImage, stringOption(optionEmoji, "pepe")),
				},
			},
			want: EmojiImageRequest{
				commandRef: commandRef{command: CommandEmoji, subcommand: subcommandImage},
				Emoji:      "pepe",
			},
		},
		{
			name: "user avatar with target",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandUser,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(
						subcommandAvatar,
						&discordgo.ApplicationCommandInteractionDataOption{
							Name:  optionUser,
							Type:  discordgo.ApplicationCommandOptionUser,
							Value: target.ID,
						},
					),
				},
				Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
					Users: map[string]*discordgo.User{target.ID: target},
				},
			},
			want: UserAvatarRequest{
				commandRef: commandRef{command: CommandUser, subcommand: subcommandAvatar},
				User:       target,
			},
		},
		{
			name: "user banner without target",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandUser,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandBanner),
				},
			},
			want: UserBannerRequest{
				commandRef: commandRef{command: CommandUser, subcommand: subcommandBanner},
			},
		},
		{
			name: "bot leave",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandBot,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandLeave, stringOption(optionServerID, " 500000000000000001 ")),
				},
			},
			want: BotLeaveRequest{
				commandRef: commandRef{command: CommandBot, subcommand: subcommandLeave},
				ServerID:   "500000000000000001",
			},
		},
		{
			name: "scripts search",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandScripts,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandScriptBlox, stringOption(optionQuery, "admin")),
				},
			},
			want: ScriptsSearchRequest{
				commandRef: commandRef{command: CommandScripts, subcommand: subcommandScriptBlox},
				Query:      "admin",
			},
		},
		{
			name: "random color",
			data: discordgo.ApplicationCommandInteractionData{Name: CommandRandomColor},
			want: RandomColorRequest{commandRef{command: CommandRandomColor}},
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				got, err := DecodeCommandRequest(tc.data)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			},
		)
	}
}

func TestDecodeCommandRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    discordgo.ApplicationCommandInteractionData
		wantErr error
	}{
		{
			name: "missing webhook url",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandWebhook,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandDelete),
				},
			},
			wantErr: ErrMissingOption,
		},
		{
			name: "blank message",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandWebhook,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(
						subcommandSay,
						stringOption(optionWebhookURL, "https://discord.com/api/webhooks/1/abc"),
						stringOption(optionMessage, "   "),
					),
				},
			},
			wantErr: ErrMissingOption,
		},
		{
			name: "missing emoji",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandEmoji,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption(subcommandImage),
				},
			},
			wantErr: ErrMissingOption,
		},
		{
			name:    "missing hex color",
			data:    discordgo.ApplicationCommandInteractionData{Name: CommandColorInfo},
			wantErr: ErrMissingOption,
		},
		{
			name:    "unknown command",
			data:    discordgo.ApplicationCommandInteractionData{Name: "nope"},
			wantErr: ErrUnknownCommand,
		},
		{
			name: "unknown subcommand",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandBot,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					subcommandOption("restart"),
				},
			},
			wantErr: ErrUnknownCommand,
		},
		{
			name: "unknown subcommand group",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandImages,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name:    "vehicle",
						Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommandOption("car")},
					},
				},
			},
			wantErr: ErrUnknownCommand,
		},
		{
			name: "empty subcommand group",
			data: discordgo.ApplicationCommandInteractionData{
				Name: CommandImages,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: subcommandGroupAnml, Type: discordgo.ApplicationCommandOptionSubCommandGroup},
				},
			},
			wantErr: ErrUnknownCommand,
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				_, err := DecodeCommandRequest(tc.data)
				assert.ErrorIs(t, err, tc.wantErr)
			},
		)
	}
}

func TestApplicationCommands(t *testing.T) {
	commands := applicationCommands()
	seen := map[string]bool{}
	for _, cmd := range commands {
		assert.False(t, seen[cmd.Name], "duplicate command %q", cmd.Name)
		seen[cmd.Name] = true
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		assert.Equal(t, []discordgo.InteractionContextType{discordgo.InteractionContextGuild}, *cmd.Contexts)
	}
	for _, name := range []string{
		CommandWebhook, CommandBot, CommandRoles, CommandRoleInfo, CommandServer, CommandUser,
		CommandColorInfo, CommandRandomColor, CommandGitHub, CommandShorten, CommandStock,
		CommandImages, CommandScripts, CommandAI, CommandEmoji,
	} {
		assert.True(t, seen[name], "missing command %q", name)
	}
}
