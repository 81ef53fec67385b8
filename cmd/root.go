package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/bucu0368/Webhook-Create/webhookcreate"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg        = webhookcreate.DefaultConfig()
	configFile string
)

// levelSettings are the settings parsed into *slog.LevelVar
var levelSettings = []string{
	"log_level",
	"database_log_level",
	"discord.log_level",
	"discord.discordgo_log_level",
	"discord.webhook_server.log_level",
	"ai.log_level",
	"lookup.log_level",
	"pagination.log_level",
	"api.log_level",
}

// stringSliceSettings are given as space-separated strings in the
// environment
var stringSliceSettings = []string{
	"api.cors.allow_headers",
	"api.cors.allow_origins",
	"api.cors.allow_methods",
	"api.cors.expose_headers",
}

var rootCmd = &cobra.Command{
	Use:   "webhookcreate [flags]",
	Short: "Discord bot for managing webhooks, with server, color and lookup utilities",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.Unmarshal(
			cfg,
			viper.DecodeHook(
				mapstructure.ComposeDecodeHookFunc(
					mapstructure.StringToTimeDurationHookFunc(),
					LevelToStringHookFunc(),
				),
			),
		)
	},
	SilenceUsage: true,
}

func getLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case slog.LevelDebug.String():
		return slog.LevelDebug, nil
	case slog.LevelInfo.String():
		return slog.LevelInfo, nil
	case slog.LevelWarn.String():
		return slog.LevelWarn, nil
	case slog.LevelError.String():
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// LevelToStringHookFunc decodes level names (ex: 'INFO') into
// *slog.LevelVar
func LevelToStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Ptr {
			return data, nil
		}
		if t.Elem() != reflect.TypeOf(slog.LevelVar{}) {
			return data, nil
		}
		lvl, err := getLogLevel(data.(string))
		if err != nil {
			return nil, err
		}
		lvlVar := &slog.LevelVar{}
		lvlVar.Set(lvl)
		return lvlVar, nil
	}
}

// Execute runs the root command, canceling its context on SIGINT,
// SIGTERM or SIGHUP.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	rootCmd.SetContext(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(
		signals,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer func() {
		signal.Stop(signals)
		cancel()
	}()
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setDefaults() {
	d := webhookcreate.DefaultConfig()

	viper.SetDefault("database", d.Database)
	viper.SetDefault("database_type", d.DatabaseType)
	viper.SetDefault("database_slow_threshold", d.DatabaseSlowThreshold)
	viper.SetDefault("database_log_level", webhookcreate.DefaultDatabaseLogLevel.String())
	viper.SetDefault("development", false)
	viper.SetDefault("log_level", webhookcreate.DefaultLogLevel.String())
	viper.SetDefault("startup_timeout", d.StartupTimeout)
	viper.SetDefault("shutdown_timeout", d.ShutdownTimeout)

	// Bot settings
	viper.SetDefault("bot.embed_color", d.Bot.EmbedColor)
	viper.SetDefault("bot.error_color", d.Bot.ErrorColor)
	viper.SetDefault("bot.owner_id", "")
	viper.SetDefault("bot.support_link", "")
	viper.SetDefault("bot.feedback_channel_id", "")
	viper.SetDefault("bot.invite_permissions", d.Bot.InvitePermissions)

	// Discord config
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.application_id", "")
	viper.SetDefault("discord.guild_id", "")
	viper.SetDefault("discord.log_level", webhookcreate.DefaultDiscordLogLevel.String())
	viper.SetDefault("discord.discordgo_log_level", webhookcreate.DefaultDiscordgoLogLevel.String())
	viper.SetDefault("discord.gateway_intents", d.Discord.GatewayIntents)
	viper.SetDefault("discord.custom_status", d.Discord.CustomStatus)
	viper.SetDefault("discord.register_commands", false)

	// Discord: Webhook server
	wh := d.Discord.WebhookServer
	viper.SetDefault("discord.webhook_server.enabled", false)
	viper.SetDefault("discord.webhook_server.listen", wh.Listen)
	viper.SetDefault("discord.webhook_server.public_key", "")
	viper.SetDefault("discord.webhook_server.read_timeout", wh.ReadTimeout)
	viper.SetDefault("discord.webhook_server.read_header_timeout", wh.ReadHeaderTimeout)
	viper.SetDefault("discord.webhook_server.write_timeout", wh.WriteTimeout)
	viper.SetDefault("discord.webhook_server.idle_timeout", wh.IdleTimeout)
	viper.SetDefault("discord.webhook_server.log_level", webhookcreate.DefaultDiscordWebhookLogLevel.String())
	viper.SetDefault("discord.webhook_server.ssl.tls_min_version", wh.SSL.TLSMinVersion)

	// AI chat and image generation
	viper.SetDefault("ai.token", "")
	viper.SetDefault("ai.base_url", d.AI.BaseURL)
	viper.SetDefault("ai.model", d.AI.Model)
	viper.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	viper.SetDefault("ai.temperature", d.AI.Temperature)
	viper.SetDefault("ai.requests_per_second", d.AI.RequestsPerSecond)
	viper.SetDefault("ai.log_level", webhookcreate.DefaultAILogLevel.String())
	viper.SetDefault("image_gen.url", d.ImageGen.URL)
	viper.SetDefault("image_gen.api_key", "")
	viper.SetDefault("image_gen.timeout", d.ImageGen.Timeout)

	// Lookups
	viper.SetDefault("lookup.timeout", d.Lookup.Timeout)
	viper.SetDefault("lookup.user_agent", d.Lookup.UserAgent)
	viper.SetDefault("lookup.requests_per_second", d.Lookup.RequestsPerSecond)
	viper.SetDefault("lookup.github_url", d.Lookup.GitHubURL)
	viper.SetDefault("lookup.tinyurl_url", d.Lookup.TinyURLURL)
	viper.SetDefault("lookup.scriptblox_url", d.Lookup.ScriptBloxURL)
	viper.SetDefault("lookup.stock_url", d.Lookup.StockURL)
	viper.SetDefault("lookup.log_level", webhookcreate.DefaultLookupLogLevel.String())

	// Pagination
	viper.SetDefault("pagination.idle_timeout", d.Pagination.IdleTimeout)
	viper.SetDefault("pagination.script_search_idle_timeout", d.Pagination.ScriptSearchIdleTimeout)
	viper.SetDefault("pagination.log_level", webhookcreate.DefaultPaginationLogLevel.String())

	// API config
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.listen", d.API.Listen)
	viper.SetDefault("api.listen_network", d.API.ListenNetwork)
	viper.SetDefault("api.secret", "")
	viper.SetDefault("api.development", false)
	viper.SetDefault("api.session_max_age", d.API.SessionMaxAge)
	viper.SetDefault("api.read_timeout", d.API.ReadTimeout)
	viper.SetDefault("api.read_header_timeout", d.API.ReadHeaderTimeout)
	viper.SetDefault("api.write_timeout", d.API.WriteTimeout)
	viper.SetDefault("api.idle_timeout", d.API.IdleTimeout)
	viper.SetDefault("api.log_level", webhookcreate.DefaultAPILogLevel.String())
	viper.SetDefault("api.ssl.tls_min_version", d.API.SSL.TLSMinVersion)

	// API: CORS config
	viper.SetDefault("api.cors.allow_headers", d.API.CORS.AllowHeaders)
	viper.SetDefault("api.cors.allow_methods", d.API.CORS.AllowMethods)
	viper.SetDefault("api.cors.expose_headers", d.API.CORS.ExposeHeaders)
	viper.SetDefault("api.cors.allow_origins", []string{})
	viper.SetDefault("api.cors.max_age", d.API.CORS.MaxAge)
	viper.SetDefault("api.cors.allow_credentials", d.API.CORS.AllowCredentials)
}

func initConfig() {
	if configFile == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}
	} else if err := godotenv.Load(configFile); err != nil {
		log.Printf("error loading env file %q: %v", configFile, err)
	}

	setDefaults()

	fatalErr := func(err error) {
		if err != nil {
			log.Fatalf("error: %v", err)
		}
	}
	// no defaults, so these must be bound explicitly
	fatalErr(viper.BindEnv("discord.webhook_server.ssl.cert_file"))
	fatalErr(viper.BindEnv("discord.webhook_server.ssl.key_file"))
	fatalErr(viper.BindEnv("api.ssl.cert_file"))
	fatalErr(viper.BindEnv("api.ssl.key_file"))

	envPrefix := os.Getenv(webhookcreate.EnvvarSetEnvPrefix)
	if envPrefix == "" {
		envPrefix = webhookcreate.DefaultEnvPrefix
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, key := range stringSliceSettings {
		viper.Set(key, viper.GetStringSlice(key))
	}

	for _, key := range levelSettings {
		lvl, err := levelStringToLevelVar(viper.GetString(key))
		if err != nil {
			log.Fatalf("error parsing %s: %v", key, err)
		}
		viper.Set(key, lvl)
	}
}

func levelStringToLevelVar(lvl string) (*slog.LevelVar, error) {
	level := &slog.LevelVar{}
	err := level.UnmarshalText([]byte(lvl))
	return level, err
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Env file to load settings from",
	)
}
