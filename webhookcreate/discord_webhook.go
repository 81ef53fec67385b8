package webhookcreate

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

// DiscordWebhookServer receives interactions as HTTP POST requests,
// when the gateway isn't used for them.
type DiscordWebhookServer struct {
	config     DiscordWebhookServerConfig
	httpServer *http.Server
	engine     *gin.Engine
	logger     *slog.Logger
}

func (d *DiscordWebhookServer) Serve(_ context.Context) error {
	if d.httpServer.TLSConfig == nil {
		d.logger.Warn("starting server without TLS")
		return d.httpServer.ListenAndServe()
	}
	return d.httpServer.ListenAndServeTLS("", "")
}

// newWebhookServer creates and returns a new [DiscordWebhookServer], and/or
// any errors that occurred during creation.
func newWebhookServer(
	b *Bot,
	config DiscordWebhookServerConfig,
) (*DiscordWebhookServer, error) {
	r := gin.New()
	srv := &DiscordWebhookServer{
		config: config,
		engine: r,
		logger: newComponentLogger(config.LogLevel, "discord_webhook"),
	}

	httpServer := &http.Server{
		Addr:              config.Listen,
		Handler:           r,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}
	tlsCfg, e := tlsConfig(config.SSL)
	if e != nil {
		return nil, fmt.Errorf("error loading webhook SSL certs: %w", e)
	}
	httpServer.TLSConfig = tlsCfg
	srv.httpServer = httpServer

	if b.config.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		r.Use(gin.Recovery())
	}
	r.Use(
		requestIDMiddleware(),
		ginLoggingMiddleware(srv.logger),
		discordRequestAuthenticationMiddleware(b.discord.publicKey),
	)

	r.POST(
		apiDiscordInteractions,
		func(c *gin.Context) {
			if b.webhookInteractionHandler == nil {
				c.JSON(http.StatusServiceUnavailable, httpError{Error: "not ready"})
				return
			}
			b.webhookInteractionHandler(c)
		},
	)
	return srv, nil
}

// WebhookHandler is a handler for Discord interactions received via webhook.
// The initial response is written as the HTTP response body, while
// everything after that (edits, follow-ups) goes through the REST API.
// See: https://discord.com/developers/docs/interactions/receiving-and-responding#responding-to-an-interaction
//
//nolint:lll  // can't split link
type WebhookHandler struct {
	InteractionHandler
	responses chan *discordgo.InteractionResponse
	once      *sync.Once
}

func newWebhookHandler(h InteractionHandler) WebhookHandler {
	return WebhookHandler{
		InteractionHandler: h,
		responses:          make(chan *discordgo.InteractionResponse, 1),
		once:               &sync.Once{},
	}
}

func (WebhookHandler) InteractionReceiveMethod() DiscordInteractionReceiveMethod {
	return discordInteractionReceiveMethodWebhook
}

// Respond hands the response to the waiting HTTP request. Only the
// first response can be sent this way.
func (w WebhookHandler) Respond(
	ctx context.Context,
	response *discordgo.InteractionResponse,
) error {
	sent := false
	w.once.Do(
		func() {
			w.responses <- response
			sent = true
		},
	)
	if !sent {
		return fmt.Errorf("interaction already responded to")
	}
	w.Logger().DebugContext(ctx, "queued webhook response", "response_type", response.Type)
	return nil
}

// webhookReceiveHandler returns a [gin.Handler] for handling Discord webhook
// interactions
func webhookReceiveHandler(ctx context.Context, b *Bot) func(c *gin.Context) {
	return func(c *gin.Context) {
		requestID, _ := c.Get(xRequestIDHeader)
		logger := ginContextLogger(c).With(
			slog.Group(
				"webhook_request",
				"remote_ip", c.RemoteIP(),
				xRequestIDHeader, requestID,
			),
		)

		body, err := io.ReadAll(c.Request.Body)
		_ = c.Request.Body.Close()
		if err != nil {
			logger.ErrorContext(c, "error getting raw data", tint.Err(err))
			c.JSON(http.StatusInternalServerError, httpError{Error: "error getting raw data"})
			return
		}

		var interaction discordgo.InteractionCreate
		if e := json.Unmarshal(body, &interaction); e != nil {
			logger.ErrorContext(c, "error unmarshalling body", tint.Err(e))
			c.JSON(http.StatusBadRequest, httpError{Error: "error unmarshalling body"})
			return
		}
		i := &interaction

		handler := newWebhookHandler(b.getInteractionHandlerFunc(ctx, i))
		runCtx := WithLogger(ctx, logger)

		done := make(chan struct{})
		b.runtimeWG.Add(1)
		go func() {
			defer b.runtimeWG.Done()
			defer close(done)
			b.handleInteraction(runCtx, handler)
		}()

		select {
		case resp := <-handler.responses:
			c.JSON(http.StatusOK, resp)
		case <-done:
			select {
			case resp := <-handler.responses:
				c.JSON(http.StatusOK, resp)
			default:
				logger.WarnContext(c, "interaction handled without a response")
				c.Status(http.StatusNoContent)
			}
		case <-c.Request.Context().Done():
			logger.WarnContext(c, "request closed before a response was ready")
		}
	}
}

// discordRequestAuthenticationMiddleware is a middleware for verifying Discord
// webhook requests.
// See: https://discord.com/developers/docs/interactions/overview#setting-up-an-endpoint-validating-security-request-headers
//
//nolint:lll // can't split link
func discordRequestAuthenticationMiddleware(publicKey ed25519.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(publicKey) != ed25519.PublicKeySize || !verifyRequest(c.Request, publicKey) {
			ginContextLogger(c).WarnContext(c, "invalid signature")
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpError{Error: "invalid signature"})
			return
		}
		c.Next()
	}
}

// verifyRequest checks the request's ed25519 signature over the
// timestamp header and body. The body is restored so it can be
// read again by the handler.
func verifyRequest(r *http.Request, key ed25519.PublicKey) bool {
	signature := r.Header.Get("X-Signature-Ed25519")
	if signature == "" {
		return false
	}

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	if len(sig) != ed25519.SignatureSize || sig[63]&224 != 0 {
		return false
	}

	timestamp := r.Header.Get("X-Signature-Timestamp")
	if timestamp == "" {
		return false
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(key, msg, sig)
}
