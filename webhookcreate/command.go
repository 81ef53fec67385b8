package webhookcreate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandWebhook     = "webhook"
	CommandBot         = "bot"
	CommandRoles       = "roles"
	CommandRoleInfo    = "roleinfo"
	CommandServer      = "server"
	CommandUser        = "user"
	CommandColorInfo   = "colorinfo"
	CommandRandomColor = "randomcolor"
	CommandGitHub      = "github"
	CommandShorten     = "shorten"
	CommandStock       = "stock"
	CommandImages      = "images"
	CommandScripts     = "scripts"
	CommandAI          = "ai"
	CommandEmoji       = "emoji"
)

const (
	subcommandCreate     = "create"
	subcommandDelete     = "delete"
	subcommandList       = "list"
	subcommandSay        = "say"
	subcommandInvite     = "invite"
	subcommandUptime     = "uptime"
	subcommandHelp       = "help"
	subcommandInfo       = "info"
	subcommandStats      = "stats"
	subcommandServerList = "serverlist"
	subcommandLeave      = "leave"
	subcommandSupport    = "support"
	subcommandFeedback   = "feedback"
	subcommandIcon       = "icon"
	subcommandAvatar     = "avatar"
	subcommandBanner     = "banner"
	subcommandScriptBlox = "scriptblox"
	subcommandImagine    = "imagine"
	subcommandChatbot    = "chatbot"
	subcommandGroupAnml  = "animal"
	subcommandImage      = "image"
)

const (
	optionChannel    = "channel"
	optionName       = "name"
	optionWebhookURL = "webhook_url"
	optionMessage    = "message"
	optionUsername   = "username"
	optionAvatarURL  = "avatar_url"
	optionServerID   = "serverid"
	optionRole       = "role"
	optionUser       = "user"
	optionHexColor   = "hexcolor"
	optionURL        = "url"
	optionQuery      = "query"
	optionPrompt     = "prompt"
	optionEmoji      = "emoji"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingOption  = errors.New("missing required option")
)

// animalTypes are the subcommands of `/images animal`, in display order
var animalTypes = []string{"dog", "cat", "fox", "bird", "koala", "panda", "red_panda"}

// applicationCommands returns every slash command the bot registers.
// All of them are guild-only.
func applicationCommands() []*discordgo.ApplicationCommand {
	guildOnly := []discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	manageWebhooks := permissionManageWebhooks
	useAppCommands := permissionUseApplicationCommands

	str := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	sub := func(
		name, description string,
		options ...*discordgo.ApplicationCommandOption,
	) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     options,
		}
	}

	animals := make([]*discordgo.ApplicationCommandOption, 0, len(animalTypes))
	for _, a := range animalTypes {
		animals = append(
			animals,
			sub(a, fmt.Sprintf("Get a random %s image", strings.ReplaceAll(a, "_", " "))),
		)
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     CommandWebhook,
			Description:              "Manage webhooks in this server",
			DefaultMemberPermissions: &manageWebhooks,
			Options: []*discordgo.ApplicationCommandOption{
				sub(
					subcommandCreate, "Create a new webhook",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        optionChannel,
						Description: "Channel to create webhook in (defaults to current channel)",
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildText,
							discordgo.ChannelTypeGuildNews,
						},
					},
					str(optionName, "Name for the webhook (optional)", false),
				),
				sub(
					subcommandDelete, "Delete a webhook",
					str(optionWebhookURL, "The webhook URL to delete", true),
				),
				sub(subcommandList, "List all webhooks in this server"),
				sub(
					subcommandSay, "Send a message through a webhook",
					str(optionWebhookURL, "The webhook URL to use", true),
					str(optionMessage, "The message to send", true),
					str(optionUsername, "Custom username for the webhook", false),
					str(optionAvatarURL, "Custom avatar URL for the webhook", false),
				),
			},
		},
		{
			Name:        CommandBot,
			Description: "Bot management and information commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(subcommandInvite, "Get the bot invite link"),
				sub(subcommandUptime, "Check how long the bot has been running"),
				sub(subcommandHelp, "Get help with bot commands"),
				sub(subcommandInfo, "Get information about the bot"),
				sub(subcommandStats, "Get bot statistics"),
				sub(subcommandServerList, "List all servers the bot is in (Owner only)"),
				sub(
					subcommandLeave, "Make the bot leave a server (Owner only)",
					str(optionServerID, "The ID of the server to leave", true),
				),
				sub(subcommandSupport, "Get the support server link"),
				sub(
					subcommandFeedback, "Send feedback to the developers",
					str(optionMessage, "Your feedback message", true),
				),
			},
		},
		{
			Name:        CommandRoles,
			Description: "Display all roles in the server with pagination",
		},
		{
			Name:                     CommandRoleInfo,
			Description:              "Display detailed information about a role",
			DefaultMemberPermissions: &useAppCommands,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        optionRole,
					Description: "The role to get information about",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandServer,
			Description: "Server information commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(subcommandInfo, "Show detailed server information"),
				sub(subcommandIcon, "Show the server icon with download links"),
			},
		},
		{
			Name:        CommandEmoji,
			Description: "Emoji information commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(
					subcommandInfo, "Get information about an emoji",
					str(optionEmoji, "The emoji to get info about", true),
				),
				sub(
					subcommandImage, "Display emoji image in 4096 resolution",
					str(optionEmoji, "The emoji to display image for", true),
				),
			},
		},
		{
			Name:        CommandUser,
			Description: "User information commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(
					subcommandAvatar, "Show a user's avatar",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        optionUser,
						Description: "The user whose avatar to show",
					},
				),
				sub(
					subcommandBanner, "Show a user's banner",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        optionUser,
						Description: "The user whose banner to show",
					},
				),
			},
		},
		{
			Name:                     CommandColorInfo,
			Description:              "Get detailed information about a hex color",
			DefaultMemberPermissions: &useAppCommands,
			Options: []*discordgo.ApplicationCommandOption{
				str(optionHexColor, "Hex color code (e.g., #ff0000 or ff0000)", true),
			},
		},
		{
			Name:                     CommandRandomColor,
			Description:              "Generate a random color",
			DefaultMemberPermissions: &useAppCommands,
		},
		{
			Name:                     CommandGitHub,
			Description:              "Get GitHub user information",
			DefaultMemberPermissions: &useAppCommands,
			Options: []*discordgo.ApplicationCommandOption{
				str(optionUsername, "GitHub username to lookup", true),
			},
		},
		{
			Name:                     CommandShorten,
			Description:              "Shorten a URL using URL shortener service",
			DefaultMemberPermissions: &useAppCommands,
			Options: []*discordgo.ApplicationCommandOption{
				str(optionURL, "The URL to shorten", true),
			},
		},
		{
			Name:        CommandStock,
			Description: "Display current Grow a Garden stock information",
		},
		{
			Name:                     CommandImages,
			Description:              "Get random images",
			DefaultMemberPermissions: &useAppCommands,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        subcommandGroupAnml,
					Description: "Get random animal images",
					Options:     animals,
				},
			},
		},
		{
			Name:        CommandScripts,
			Description: "Script-related commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(
					subcommandScriptBlox, "Search for scripts on ScriptBlox",
					str(optionQuery, "Search query for scripts", true),
				),
			},
		},
		{
			Name:        CommandAI,
			Description: "AI-powered commands",
			Options: []*discordgo.ApplicationCommandOption{
				sub(
					subcommandImagine, "Generate an image from a text prompt",
					str(optionPrompt, "The prompt to generate an image from", true),
				),
				sub(
					subcommandChatbot, "Chat with AI",
					str(optionPrompt, "Your message to the AI", true),
				),
			},
		},
	}

	for _, c := range commands {
		c.Type = discordgo.ChatApplicationCommand
		c.Contexts = &guildOnly
	}
	return commands
}

// CommandRequest is a decoded slash command invocation. Each
// (command, subcommand) pair has its own concrete type.
type CommandRequest interface {
	CommandName() string
	SubcommandName() string
}

type commandRef struct {
	command    string
	subcommand string
}

func (c commandRef) CommandName() string    { return c.command }
func (c commandRef) SubcommandName() string { return c.subcommand }

type WebhookCreateRequest struct {
	commandRef
	ChannelID string
	Name      string
}

type WebhookDeleteRequest struct {
	commandRef
	WebhookURL string
}

type WebhookListRequest struct {
	commandRef
}

type WebhookSayRequest struct {
	commandRef
	WebhookURL string
	Message    string
	Username   string
	AvatarURL  string
}

type BotInviteRequest struct{ commandRef }
type BotUptimeRequest struct{ commandRef }
type BotHelpRequest struct{ commandRef }
type BotInfoRequest struct{ commandRef }
type BotStatsRequest struct{ commandRef }
type BotServerListRequest struct{ commandRef }
type BotSupportRequest struct{ commandRef }

type BotLeaveRequest struct {
	commandRef
	ServerID string
}

type BotFeedbackRequest struct {
	commandRef
	Message string
}

type RolesRequest struct{ commandRef }

// RoleInfoRequest carries the resolved role, when discord sent it
type RoleInfoRequest struct {
	commandRef
	RoleID string
	Role   *discordgo.Role
}

// EmojiInfoRequest looks up a guild emoji by its mention
// ('<:name:id>'), ID, or name.
type EmojiInfoRequest struct {
	commandRef
	Emoji string
}

type EmojiImageRequest struct {
	commandRef
	Emoji string
}

type ServerInfoRequest struct{ commandRef }
type ServerIconRequest struct{ commandRef }

// UserAvatarRequest targets User, or the invoking user when nil
type UserAvatarRequest struct {
	commandRef
	User *discordgo.User
}

// UserBannerRequest targets User, or the invoking user when nil
type UserBannerRequest struct {
	commandRef
	User *discordgo.User
}

type ColorInfoRequest struct {
	commandRef
	HexColor string
}

type RandomColorRequest struct{ commandRef }

type GitHubRequest struct {
	commandRef
	Username string
}

type ShortenRequest struct {
	commandRef
	URL string
}

type StockRequest struct{ commandRef }

type ImagesAnimalRequest struct {
	commandRef
	Animal string
}

type ScriptsSearchRequest struct {
	commandRef
	Query string
}

type AIChatbotRequest struct {
	commandRef
	Prompt string
}

type AIImagineRequest struct {
	commandRef
	Prompt string
}

// commandOptions indexes options by name
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func newCommandOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	m := make(commandOptions, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// str returns the option's value as a string, or "" when not present
func (o commandOptions) str(name string) string {
	opt, ok := o[name]
	if !ok || opt.Value == nil {
		return ""
	}
	if s, ok := opt.Value.(string); ok {
		return s
	}
	return fmt.Sprint(opt.Value)
}

func (o commandOptions) required(name string) (string, error) {
	v := strings.TrimSpace(o.str(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingOption, name)
	}
	return v, nil
}

// DecodeCommandRequest converts the interaction data of a slash command
// into its concrete request type.
func DecodeCommandRequest(data discordgo.ApplicationCommandInteractionData) (CommandRequest, error) {
	name := data.Name
	var sub string
	opts := newCommandOptions(data.Options)

	if len(data.Options) > 0 {
		first := data.Options[0]
		switch first.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			if len(first.Options) == 0 {
				return nil, fmt.Errorf("%w: %s %s (no subcommand)", ErrUnknownCommand, name, first.Name)
			}
			if name == CommandImages && first.Name == subcommandGroupAnml {
				return ImagesAnimalRequest{
					commandRef: commandRef{command: name, subcommand: first.Name},
					Animal:     first.Options[0].Name,
				}, nil
			}
			return nil, fmt.Errorf("%w: %s %s", ErrUnknownCommand, name, first.Name)
		case discordgo.ApplicationCommandOptionSubCommand:
			sub = first.Name
			opts = newCommandOptions(first.Options)
		}
	}
	ref := commandRef{command: name, subcommand: sub}

	var err error
	switch name {
	case CommandWebhook:
		switch sub {
		case subcommandCreate:
			return WebhookCreateRequest{
				commandRef: ref,
				ChannelID:  opts.str(optionChannel),
				Name:       strings.TrimSpace(opts.str(optionName)),
			}, nil
		case subcommandDelete:
			r := WebhookDeleteRequest{commandRef: ref}
			r.WebhookURL, err = opts.required(optionWebhookURL)
			return r, err
		case subcommandList:
			return WebhookListRequest{commandRef: ref}, nil
		case subcommandSay:
			r := WebhookSayRequest{
				commandRef: ref,
				Username:   strings.TrimSpace(opts.str(optionUsername)),
				AvatarURL:  strings.TrimSpace(opts.str(optionAvatarURL)),
			}
			if r.WebhookURL, err = opts.required(optionWebhookURL); err != nil {
				return nil, err
			}
			r.Message, err = opts.required(optionMessage)
			return r, err
		}
	case CommandBot:
		switch sub {
		case subcommandInvite:
			return BotInviteRequest{ref}, nil
		case subcommandUptime:
			return BotUptimeRequest{ref}, nil
		case subcommandHelp:
			return BotHelpRequest{ref}, nil
		case subcommandInfo:
			return BotInfoRequest{ref}, nil
		case subcommandStats:
			return BotStatsRequest{ref}, nil
		case subcommandServerList:
			return BotServerListRequest{ref}, nil
		case subcommandSupport:
			return BotSupportRequest{ref}, nil
		case subcommandLeave:
			r := BotLeaveRequest{commandRef: ref}
			r.ServerID, err = opts.required(optionServerID)
			return r, err
		case subcommandFeedback:
			r := BotFeedbackRequest{commandRef: ref}
			r.Message, err = opts.required(optionMessage)
			return r, err
		}
	case CommandRoles:
		return RolesRequest{ref}, nil
	case CommandRoleInfo:
		r := RoleInfoRequest{commandRef: ref}
		if r.RoleID, err = opts.required(optionRole); err != nil {
			return nil, err
		}
		if data.Resolved != nil {
			r.Role = data.Resolved.Roles[r.RoleID]
		}
		return r, nil
	case CommandServer:
		switch sub {
		case subcommandInfo:
			return ServerInfoRequest{ref}, nil
		case subcommandIcon:
			return ServerIconRequest{ref}, nil
		}
	case CommandUser:
		var target *discordgo.User
		if id := opts.str(optionUser); id != "" && data.Resolved != nil {
			target = data.Resolved.Users[id]
		}
		switch sub {
		case subcommandAvatar:
			return UserAvatarRequest{commandRef: ref, User: target}, nil
		case subcommandBanner:
			return UserBannerRequest{commandRef: ref, User: target}, nil
		}
	case CommandEmoji:
		switch sub {
		case subcommandInfo:
			r := EmojiInfoRequest{commandRef: ref}
			r.Emoji, err = opts.required(optionEmoji)
			return r, err
		case subcommandImage:
			r := EmojiImageRequest{commandRef: ref}
			r.Emoji, err = opts.required(optionEmoji)
			return r, err
		}
	case CommandColorInfo:
		r := ColorInfoRequest{commandRef: ref}
		r.HexColor, err = opts.required(optionHexColor)
		return r, err
	case CommandRandomColor:
		return RandomColorRequest{ref}, nil
	case CommandGitHub:
		r := GitHubRequest{commandRef: ref}
		r.Username, err = opts.required(optionUsername)
		return r, err
	case CommandShorten:
		r := ShortenRequest{commandRef: ref}
		r.URL, err = opts.required(optionURL)
		return r, err
	case CommandStock:
		return StockRequest{ref}, nil
	case CommandScripts:
		if sub == subcommandScriptBlox {
			r := ScriptsSearchRequest{commandRef: ref}
			r.Query, err = opts.required(optionQuery)
			return r, err
		}
	case CommandAI:
		switch sub {
		case subcommandChatbot:
			r := AIChatbotRequest{commandRef: ref}
			r.Prompt, err = opts.required(optionPrompt)
			return r, err
		case subcommandImagine:
			r := AIImagineRequest{commandRef: ref}
			r.Prompt, err = opts.required(optionPrompt)
			return r, err
		}
	}

	if sub != "" {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownCommand, name, sub)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}
