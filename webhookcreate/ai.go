package webhookcreate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	aiLogger = "ai"

	noAIResponse = "No response generated."
)

// ChatCompletionClient is the part of the OpenAI client used for
// `/ai chatbot`
type ChatCompletionClient interface {
	CreateChatCompletion(
		ctx context.Context,
		request openai.ChatCompletionRequest,
	) (response openai.ChatCompletionResponse, err error)
}

// aiClient handles `/ai` requests: chat completions against an
// OpenAI-compatible API, and image generation.
type aiClient struct {
	client     ChatCompletionClient
	httpClient *http.Client
	config     AIConfig
	imageGen   ImageGenConfig
	logger     *slog.Logger

	requestLimiter *rate.Limiter
	mu             sync.RWMutex // protects requestLimiter
}

func newAIClient(config AIConfig, imageGen ImageGenConfig, httpClient *http.Client) *aiClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	clientCfg := openai.DefaultConfig(config.Token)
	clientCfg.BaseURL = config.BaseURL
	clientCfg.HTTPClient = httpClient

	return &aiClient{
		client:         openai.NewClientWithConfig(clientCfg),
		httpClient:     httpClient,
		config:         config,
		imageGen:       imageGen,
		logger:         newComponentLogger(config.LogLevel, aiLogger),
		requestLimiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// SetRequestLimit replaces the completion request limit
func (a *aiClient) SetRequestLimit(rps float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requestLimiter = rate.NewLimiter(rate.Limit(rps), 1)
}

func (a *aiClient) waitOnRequestLimiter(ctx context.Context) error {
	a.mu.RLock()
	limiter := a.requestLimiter
	a.mu.RUnlock()
	return limiter.Wait(ctx)
}

// Chat sends prompt as a single user message, returning the first
// choice's content
func (a *aiClient) Chat(ctx context.Context, prompt string) (string, error) {
	if err := a.waitOnRequestLimiter(ctx); err != nil {
		return "", err
	}
	req := openai.ChatCompletionRequest{
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	a.logger.DebugContext(ctx, "creating chat completion", "model", req.Model)

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.ErrorContext(ctx, "error creating chat completion", tint.Err(err))
		return "", err
	}
	a.logger.InfoContext(
		ctx,
		"chat completion created",
		"id", resp.ID,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return noAIResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// chatErrorMessage returns the message shown when a chat completion
// fails, based on the API's status code
func chatErrorMessage(err error) string {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	status := 0
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusUnauthorized:
		return "API key is invalid or missing. Please check the AI token configuration."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please try again later."
	}
	return "Sorry, I couldn't process your request. Please try again later."
}

// GeneratedImage is the image generation API response
type GeneratedImage struct {
	Prompt   string `json:"prompt"`
	ImageID  string `json:"imageId"`
	Status   string `json:"status"`
	Duration any    `json:"duration"`
	Image    string `json:"image"`
}

// Imagine requests an image for prompt from the image generation API
func (a *aiClient) Imagine(ctx context.Context, prompt string) (*GeneratedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, a.imageGen.Timeout)
	defer cancel()

	u := a.imageGen.URL + "?prompt=" + url.QueryEscape(prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", a.imageGen.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, URL: a.imageGen.URL}
	}
	var img GeneratedImage
	if err = json.Unmarshal(body, &img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &img, nil
}

func (c *Commands) chatbot(ctx context.Context, h InteractionHandler, r AIChatbotRequest) error {
	if err := deferResponse(ctx, h, false); err != nil {
		return err
	}
	answer, err := c.ai.Chat(ctx, r.Prompt)
	if err != nil {
		h.Logger().ErrorContext(ctx, "chatbot error", tint.Err(err))
		return editEmbeds(
			ctx,
			h,
			nil,
			&discordgo.MessageEmbed{
				Title:       "❌ Chatbot Error",
				Description: chatErrorMessage(err),
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
			Title: "🤖 AI Chatbot",
			Color: c.config.embedColor(),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "❓ Your Question", Value: truncateWithEllipsis(r.Prompt, embedFieldLimit)},
				{Name: "🤖 AI Response", Value: truncateWithEllipsis(answer, embedFieldLimit)},
			},
			Footer:    requestedByFooter(getDiscordUser(h.GetInteraction())),
			Timestamp: embedTimestamp(c.now()),
		},
	)
}

func (c *Commands) imagine(ctx context.Context, h InteractionHandler, r AIImagineRequest) error {
	loading := &discordgo.MessageEmbed{
		Title:       "🎨 Generating Image...",
		Description: "Please wait while I create your image.",
		Color:       c.config.embedColor(),
		Timestamp:   embedTimestamp(c.now()),
	}
	if err := respondEmbeds(ctx, h, false, loading); err != nil {
		return err
	}

	img, err := c.ai.Imagine(ctx, r.Prompt)
	if err != nil {
		h.Logger().ErrorContext(ctx, "error generating image", tint.Err(err))
		return editEmbeds(
			ctx,
			h,
			nil,
			&discordgo.MessageEmbed{
				Title:       "❌ Image Generation Failed",
				Description: "Sorry, I couldn't generate the image. Please try again later.",
				Color:       c.config.errorColor(),
				Timestamp:   embedTimestamp(c.now()),
			},
		)
	}

	duration := "N/A"
	if img.Duration != nil {
		duration = valueOr(fmt.Sprint(img.Duration), "N/A")
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🎨 Image Generated",
		Description: fmt.Sprintf("**Prompt:**\n```%s```", strings.ReplaceAll(valueOr(img.Prompt, r.Prompt), "```", "")),
		Color:       c.config.embedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Information",
				Value: fmt.Sprintf(
					"**imageId:** %s\n**status:** %s\n**duration:** %s",
					valueOr(img.ImageID, "N/A"),
					valueOr(img.Status, "completed"),
					duration,
				),
			},
		},
		Footer:    requestedByFooter(getDiscordUser(h.GetInteraction())),
		Timestamp: embedTimestamp(c.now()),
	}
	if img.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: img.Image}
	}
	return editEmbeds(
		ctx,
		h,
		c.supportButtons(inviteURL(c.applicationID(), mentionInvitePermissions)),
		embed,
	)
}
