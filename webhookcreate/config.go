//nolint:lll // struct tags can't be split
package webhookcreate

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/cors"
)

const (
	EnvvarSetEnvPrefix    = "WEBHOOKCREATE_ENV_PREFIX"
	DefaultEnvPrefix      = "WC"
	DefaultDatabaseType   = dbTypeSQLite
	DefaultDatabase       = "webhookcreate.sqlite3"
	DefaultLogLevel       = slog.LevelInfo
	DefaultStartupTimeout = 30 * time.Second

	DefaultShutdownTimeout = 30 * time.Second

	DefaultEmbedColor              = "#0099ff"
	DefaultErrorColor              = "#ff0000"
	PlaceholderSupportLink         = "https://discord.gg/your-support-server"
	PlaceholderFeedbackChannelID   = "1234567890123456789"
	DefaultInvitePermissions       = 536870912
	DefaultMentionInvitePermission = 8

	DefaultPaginationIdleTimeout   = 60 * time.Second
	DefaultScriptSearchIdleTimeout = 180 * time.Second
	DefaultPaginationLogLevel      = slog.LevelInfo

	DefaultAIBaseURL           = "https://api.groq.com/openai/v1"
	DefaultAIModel             = "llama-3.3-70b-versatile"
	DefaultAIMaxTokens         = 1000
	DefaultAITemperature       = 0.7
	DefaultAIRequestsPerSecond = 1
	DefaultAILogLevel          = slog.LevelInfo
	DefaultImageGenURL         = "http://67.220.85.146:6207/image"
	DefaultImageGenTimeout     = 2 * time.Minute

	DefaultLookupTimeout           = 10 * time.Second
	DefaultLookupUserAgent         = "Discord Bot"
	DefaultLookupRequestsPerSecond = 5
	DefaultLookupLogLevel          = slog.LevelInfo
	DefaultGitHubAPIURL            = "https://api.github.com"
	DefaultTinyURLAPIURL           = "https://tinyurl.com/api-create.php"
	DefaultScriptBloxURL           = "https://scriptblox.com"
	DefaultStockAPIURL             = "https://growagarden.gg/api/stock"

	DefaultReadTimeout                       = 5 * time.Second
	DefaultReadHeaderTimeout                 = 5 * time.Second
	DefaultWriteTimeout                      = 10 * time.Second
	DefaultIdleTimeout                       = 30 * time.Second
	DefaultDiscordWebhookServerListen        = "127.0.0.1:5001"
	DefaultDiscordWebhookServerTLSminVersion = tls.VersionTLS12
	DefaultDiscordGatewayIntent              = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	DefaultDiscordWebhookLogLevel            = slog.LevelInfo
	DefaultDiscordLogLevel                   = slog.LevelInfo
	DefaultDiscordgoLogLevel                 = slog.LevelWarn
	DefaultDiscordCustomStatus               = "/bot help"

	DefaultAPIListen               = "127.0.0.1:5000"
	DefaultAPITLSMinVersion        = tls.VersionTLS12
	DefaultAPISessionMaxAge        = 6 * time.Hour
	DefaultAPILogLevel             = slog.LevelInfo
	DefaultAPICORSAllowCredentials = true

	DefaultDatabaseSlowThreshold = 200 * time.Millisecond
	DefaultDatabaseLogLevel      = slog.LevelWarn
	defaultListenNetwork         = "tcp"
)

// DiscordInteractionReceiveMethod is how an interaction reached the bot
type DiscordInteractionReceiveMethod string

var (
	discordInteractionReceiveMethodGateway DiscordInteractionReceiveMethod = "gateway"
	discordInteractionReceiveMethodWebhook DiscordInteractionReceiveMethod = "webhook"
)

var (
	DefaultCORSAllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		http.MethodOptions,
		http.MethodHead,
	}
	DefaultCORSAllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-Requested-With",
		xRequestIDHeader,
	}
	DefaultCORSExposeHeaders = []string{
		"Content-Type",
		"Content-Length",
		xRequestIDHeader,
	}
	DefaultCORSMaxAge = 12 * time.Hour
)

type Config struct {
	// Database connection string
	Database string `yaml:"database" mapstructure:"database" json:"database"`

	// DatabaseType specifies the type of database, either 'sqlite' or 'postgres'
	DatabaseType string `yaml:"database_type" mapstructure:"database_type" json:"database_type" binding:"oneof=sqlite postgres"`

	// DatabaseLogLevel sets the log level for database operations
	DatabaseLogLevel *slog.LevelVar `yaml:"database_log_level" mapstructure:"database_log_level" json:"database_log_level"`

	// DatabaseSlowThreshold is the duration threshold for identifying slow database queries
	DatabaseSlowThreshold time.Duration `yaml:"database_slow_threshold" mapstructure:"database_slow_threshold" json:"database_slow_threshold"`

	// Bot holds the settings handed to every command handler
	Bot *BotConfig `yaml:"bot" mapstructure:"bot" json:"bot" binding:"required"`

	// Discord configures the connection to discord
	Discord *DiscordConfig `yaml:"discord" mapstructure:"discord" json:"discord" binding:"required"`

	// AI configures the OpenAI-compatible chat endpoint used by `/ai chatbot`
	AI *AIConfig `yaml:"ai" mapstructure:"ai" json:"ai" binding:"required"`

	// ImageGen configures the image endpoint used by `/ai imagine`
	ImageGen *ImageGenConfig `yaml:"image_gen" mapstructure:"image_gen" json:"image_gen" binding:"required"`

	// Lookup configures outbound requests to third-party APIs
	Lookup *LookupConfig `yaml:"lookup" mapstructure:"lookup" json:"lookup" binding:"required"`

	// Pagination configures paginated command responses
	Pagination *PaginationConfig `yaml:"pagination" mapstructure:"pagination" json:"pagination" binding:"required"`

	// API configures the admin API server
	API *APIConfig `yaml:"api" mapstructure:"api" json:"api" binding:"required"`

	// LogLevel is the base log level, for the default logger
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// StartupTimeout sets a limit on the amount of time the bot has to
	// connect to the database and discord. If this is passed, the bot will
	// abort startup.
	StartupTimeout time.Duration `yaml:"startup_timeout" mapstructure:"startup_timeout" json:"startup_timeout" binding:"min=1s"`

	// ShutdownTimeout is the time to allow for a graceful shutdown. After this
	// elapses, the bot will force close all connections and exit.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`

	// Development enables debug-mode routing and pprof
	Development bool `yaml:"development" mapstructure:"development" json:"development"`

	HTTPClient *http.Client `yaml:"-" mapstructure:"-" json:"-" log:"[redacted]"`
}

func (c Config) LogValue() slog.Value {
	return structToSlogValue(c)
}

const redactedValue = "[redacted]"

// Redacted returns a copy of the config with secrets replaced, for
// printing. Sections are copied, so the original is left untouched.
func (c Config) Redacted() Config {
	redact := func(s string) string {
		if s == "" {
			return s
		}
		return redactedValue
	}
	if c.Discord != nil {
		d := *c.Discord
		d.Token = redact(d.Token)
		c.Discord = &d
	}
	if c.AI != nil {
		a := *c.AI
		a.Token = redact(a.Token)
		c.AI = &a
	}
	if c.ImageGen != nil {
		ig := *c.ImageGen
		ig.APIKey = redact(ig.APIKey)
		c.ImageGen = &ig
	}
	if c.API != nil {
		api := *c.API
		api.Secret = redact(api.Secret)
		c.API = &api
	}
	c.HTTPClient = nil
	return c
}

// Validate checks the config's `binding` tags, along with settings
// which can't be expressed as tags.
func (c *Config) Validate() error {
	var errs []error
	if err := structValidator.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if c.Bot != nil {
		if _, err := parseHexColor(c.Bot.EmbedColor); err != nil {
			errs = append(errs, fmt.Errorf("bot.embed_color: %w", err))
		}
		if _, err := parseHexColor(c.Bot.ErrorColor); err != nil {
			errs = append(errs, fmt.Errorf("bot.error_color: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BotConfig holds the settings read by command handlers. It's handed to
// [Commands] on creation rather than looked up at runtime.
type BotConfig struct {
	// EmbedColor is the hex color (ex: '#0099ff') used for normal embeds
	EmbedColor string `yaml:"embed_color" mapstructure:"embed_color" json:"embed_color" binding:"required"`

	// ErrorColor is the hex color used for error embeds
	ErrorColor string `yaml:"error_color" mapstructure:"error_color" json:"error_color" binding:"required"`

	// OwnerID is the discord user ID allowed to run owner-only commands
	OwnerID string `yaml:"owner_id" mapstructure:"owner_id" json:"owner_id"`

	// SupportLink is an invite link to the bot's support server
	SupportLink string `yaml:"support_link" mapstructure:"support_link" json:"support_link" binding:"omitempty,url"`

	// FeedbackChannelID is where `/bot feedback` messages are sent
	FeedbackChannelID string `yaml:"feedback_channel_id" mapstructure:"feedback_channel_id" json:"feedback_channel_id" binding:"omitempty,number"`

	// InvitePermissions is the permission integer used in `/bot invite` links
	InvitePermissions int64 `yaml:"invite_permissions" mapstructure:"invite_permissions" json:"invite_permissions" binding:"min=0"`
}

func (b BotConfig) LogValue() slog.Value {
	return structToSlogValue(b)
}

func (b BotConfig) embedColor() int {
	c, _ := parseHexColor(b.EmbedColor)
	return c.Int()
}

func (b BotConfig) errorColor() int {
	c, _ := parseHexColor(b.ErrorColor)
	return c.Int()
}

func (b BotConfig) supportConfigured() bool {
	return b.SupportLink != "" && b.SupportLink != PlaceholderSupportLink
}

func (b BotConfig) feedbackConfigured() bool {
	return b.FeedbackChannelID != "" && b.FeedbackChannelID != PlaceholderFeedbackChannelID
}

// DiscordConfig configures the discord bot itself.
type DiscordConfig struct {
	// Discord bot token (from the 'Bot' tab in the discord dev portal)
	Token string `yaml:"token" mapstructure:"token" json:"token" log:"[redacted]" binding:"required"`

	// Discord application ID (from the 'General Information' tab in the discord dev portal)
	ApplicationID string `yaml:"application_id" mapstructure:"application_id" json:"application_id" binding:"required"`

	// Required when receiving webhook events rather than websockets
	WebhookServer DiscordWebhookServerConfig `yaml:"webhook_server" mapstructure:"webhook_server" json:"webhook_server"`

	// GuildID specifies the guild ID used when registering slash commands.
	// Leave empty for commands to be registered as global.
	GuildID string `yaml:"guild_id" mapstructure:"guild_id" json:"guild_id"`

	// Base discord logging level
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Log level for the `discordgo` library's logger
	DiscordGoLogLevel *slog.LevelVar `yaml:"discordgo_log_level" mapstructure:"discordgo_log_level" json:"discordgo_log_level"`

	// Discord gateway intents. See: https://discord.com/developers/docs/topics/gateway#gateway-intents
	GatewayIntents discordgo.Intent `yaml:"gateway_intents" mapstructure:"gateway_intents" json:"gateway_intents"`

	// CustomStatus is set as the bot's status once connected
	CustomStatus string `yaml:"custom_status" mapstructure:"custom_status" json:"custom_status"`

	// RegisterCommands, if true, overwrites the bot's slash commands on startup
	RegisterCommands bool `yaml:"register_commands" mapstructure:"register_commands" json:"register_commands"`

	httpClient *http.Client
}

// DiscordWebhookServerConfig configures the server which receives
// interactions via HTTP POST, rather than over the gateway.
type DiscordWebhookServerConfig struct {
	// Determines if the webhook server should be active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// The address and port on which the server should listen (e.g., "127.0.0.1:5001").
	Listen string `yaml:"listen" mapstructure:"listen" json:"listen" binding:"required_if=Enabled true"`

	// Configuration for SSL/TLS.
	SSL *SSLConfig `yaml:"ssl" mapstructure:"ssl" json:"ssl"`

	// The public key used for verifying Discord interaction POST requests.
	// In the Discord dev portal for your bot, this is under 'General Information'
	PublicKey string `yaml:"public_key" mapstructure:"public_key" json:"public_key" binding:"required_if=Enabled true"`

	// The logging level for the webhook server.
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout"`

	// Amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout" json:"read_header_timeout"`

	// Maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout"`

	// Maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout"`
}

// AIConfig configures the OpenAI-compatible chat completion endpoint
type AIConfig struct {
	// API token (ex: a Groq API key)
	Token string `yaml:"token" mapstructure:"token" json:"token" log:"[redacted]"`

	// BaseURL of the OpenAI-compatible API
	BaseURL string `yaml:"base_url" mapstructure:"base_url" json:"base_url" binding:"required,url"`

	// Model used for chat completions
	Model string `yaml:"model" mapstructure:"model" json:"model" binding:"required"`

	// MaxTokens is the completion token limit
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" json:"max_tokens" binding:"min=1"`

	// Temperature is the sampling temperature
	Temperature float32 `yaml:"temperature" mapstructure:"temperature" json:"temperature" binding:"min=0,max=2"`

	// RequestsPerSecond limits outgoing completion requests
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" json:"requests_per_second" binding:"gt=0"`

	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`
}

// ImageGenConfig configures the image generation endpoint
type ImageGenConfig struct {
	URL     string        `yaml:"url" mapstructure:"url" json:"url" binding:"required,url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key" json:"api_key" log:"[redacted]"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" json:"timeout" binding:"min=1s"`
}

// LookupConfig configures requests made to third-party APIs by the
// lookup commands (github, shorten, stock, images, scripts)
type LookupConfig struct {
	// Timeout for each request
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" json:"timeout" binding:"min=1s"`

	// UserAgent sent with each request
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent" json:"user_agent" binding:"required"`

	// RequestsPerSecond limits outgoing requests, across all lookup commands
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" json:"requests_per_second" binding:"gt=0"`

	GitHubURL     string `yaml:"github_url" mapstructure:"github_url" json:"github_url" binding:"required,url"`
	TinyURLURL    string `yaml:"tinyurl_url" mapstructure:"tinyurl_url" json:"tinyurl_url" binding:"required,url"`
	ScriptBloxURL string `yaml:"scriptblox_url" mapstructure:"scriptblox_url" json:"scriptblox_url" binding:"required,url"`
	StockURL      string `yaml:"stock_url" mapstructure:"stock_url" json:"stock_url" binding:"required,url"`

	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`
}

// PaginationConfig configures paginated command responses
type PaginationConfig struct {
	// IdleTimeout is how long navigation buttons stay active after the
	// last accepted click
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" binding:"min=1s"`

	// ScriptSearchIdleTimeout overrides IdleTimeout for `/scripts scriptblox`
	ScriptSearchIdleTimeout time.Duration `yaml:"script_search_idle_timeout" mapstructure:"script_search_idle_timeout" json:"script_search_idle_timeout" binding:"min=1s"`

	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`
}

// APIConfig configures the admin API server
type APIConfig struct {
	// Enabled starts the admin API alongside the bot
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// The address and port on which the server should listen (e.g., "127.0.0.1:5000").
	Listen string `yaml:"listen" mapstructure:"listen" json:"listen" binding:"required_if=Enabled true"`

	// The network type for listening (e.g., "tcp", "tcp4", "tcp6", "unix").
	ListenNetwork string `yaml:"listen_network" mapstructure:"listen_network" json:"listen_network" binding:"omitempty,oneof=tcp tcp4 tcp6 unix"`

	// Secret used for signing cookies
	Secret string `yaml:"secret" mapstructure:"secret" json:"secret" log:"[redacted]"`

	// Configuration for SSL/TLS.
	SSL *SSLConfig `yaml:"ssl" mapstructure:"ssl" json:"ssl"`

	// The logging level for the API server.
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Cross-origin configuration
	CORS CORSConfig `yaml:"cors" mapstructure:"cors" json:"cors"`

	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout" json:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout"`

	// Max age for session cookies
	SessionMaxAge time.Duration `yaml:"session_max_age" mapstructure:"session_max_age" json:"session_max_age" binding:"omitempty,min=10m,max=24h"`

	// If true, the SameSite attribute of the session cookie will be set to 'None'
	Development bool `yaml:"development" mapstructure:"development" json:"development"`
}

// SSLConfig specifies cert paths and the TLS version to use
type SSLConfig struct {
	// Path to an SSL certificate
	CertFile string `yaml:"cert_file" mapstructure:"cert_file" json:"cert_file"`

	// Path to an SSL cert key
	KeyFile string `yaml:"key_file" mapstructure:"key_file" json:"key_file"`

	// Minimum TLS version
	TLSMinVersion uint16 `yaml:"tls_min_version" mapstructure:"tls_min_version" json:"tls_min_version"`
}

// CORSConfig specifies cross-origin resource sharing settings
type CORSConfig struct {
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins" json:"allow_origins"`
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods" json:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers" json:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers" mapstructure:"expose_headers" json:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials" json:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age" json:"max_age"`
}

func (c CORSConfig) GINConfig() cors.Config {
	return cors.Config{
		AllowOrigins:     c.AllowOrigins,
		AllowMethods:     c.AllowMethods,
		AllowHeaders:     c.AllowHeaders,
		MaxAge:           c.MaxAge,
		ExposeHeaders:    c.ExposeHeaders,
		AllowCredentials: c.AllowCredentials,
	}
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{},
		AllowMethods:     append([]string(nil), DefaultCORSAllowMethods...),
		AllowHeaders:     append([]string(nil), DefaultCORSAllowHeaders...),
		ExposeHeaders:    append([]string(nil), DefaultCORSExposeHeaders...),
		MaxAge:           DefaultCORSMaxAge,
		AllowCredentials: DefaultAPICORSAllowCredentials,
	}
}

func newLevelVar(level slog.Level) *slog.LevelVar {
	lv := &slog.LevelVar{}
	lv.Set(level)
	return lv
}

// DefaultConfig returns a Config with all default settings populated
func DefaultConfig() *Config {
	return &Config{
		DatabaseType:          DefaultDatabaseType,
		Database:              DefaultDatabase,
		DatabaseLogLevel:      newLevelVar(DefaultDatabaseLogLevel),
		DatabaseSlowThreshold: DefaultDatabaseSlowThreshold,
		LogLevel:              newLevelVar(DefaultLogLevel),
		StartupTimeout:        DefaultStartupTimeout,
		ShutdownTimeout:       DefaultShutdownTimeout,
		Bot: &BotConfig{
			EmbedColor:        DefaultEmbedColor,
			ErrorColor:        DefaultErrorColor,
			InvitePermissions: DefaultInvitePermissions,
		},
		Discord: &DiscordConfig{
			WebhookServer: DiscordWebhookServerConfig{
				Listen: DefaultDiscordWebhookServerListen,
				SSL: &SSLConfig{
					TLSMinVersion: DefaultDiscordWebhookServerTLSminVersion,
				},
				LogLevel:          newLevelVar(DefaultDiscordWebhookLogLevel),
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
				ReadTimeout:       DefaultReadTimeout,
				WriteTimeout:      DefaultWriteTimeout,
				IdleTimeout:       DefaultIdleTimeout,
			},
			GatewayIntents:    DefaultDiscordGatewayIntent,
			LogLevel:          newLevelVar(DefaultDiscordLogLevel),
			DiscordGoLogLevel: newLevelVar(DefaultDiscordgoLogLevel),
			CustomStatus:      DefaultDiscordCustomStatus,
		},
		AI: &AIConfig{
			BaseURL:           DefaultAIBaseURL,
			Model:             DefaultAIModel,
			MaxTokens:         DefaultAIMaxTokens,
			Temperature:       DefaultAITemperature,
			RequestsPerSecond: DefaultAIRequestsPerSecond,
			LogLevel:          newLevelVar(DefaultAILogLevel),
		},
		ImageGen: &ImageGenConfig{
			URL:     DefaultImageGenURL,
			Timeout: DefaultImageGenTimeout,
		},
		Lookup: &LookupConfig{
			Timeout:           DefaultLookupTimeout,
			UserAgent:         DefaultLookupUserAgent,
			RequestsPerSecond: DefaultLookupRequestsPerSecond,
			GitHubURL:         DefaultGitHubAPIURL,
			TinyURLURL:        DefaultTinyURLAPIURL,
			ScriptBloxURL:     DefaultScriptBloxURL,
			StockURL:          DefaultStockAPIURL,
			LogLevel:          newLevelVar(DefaultLookupLogLevel),
		},
		Pagination: &PaginationConfig{
			IdleTimeout:             DefaultPaginationIdleTimeout,
			ScriptSearchIdleTimeout: DefaultScriptSearchIdleTimeout,
			LogLevel:                newLevelVar(DefaultPaginationLogLevel),
		},
		API: &APIConfig{
			Listen:        DefaultAPIListen,
			ListenNetwork: defaultListenNetwork,
			SSL: &SSLConfig{
				TLSMinVersion: DefaultAPITLSMinVersion,
			},
			LogLevel:          newLevelVar(DefaultAPILogLevel),
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ReadTimeout:       DefaultReadTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			SessionMaxAge:     DefaultAPISessionMaxAge,
			CORS:              DefaultCORSConfig(),
		},
	}
}
