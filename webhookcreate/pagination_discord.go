package webhookcreate

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"
)

const (
	paginationCustomIDPrefix = "page"
	paginationExpiredNotice  = "❌ These buttons have expired."
)

var navButtonEmoji = map[NavAction]string{
	NavFirst:    "⏪",
	NavPrevious: "⬅️",
	NavNext:     "➡️",
	NavLast:     "⏩",
}

func newSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// paginationCustomID returns the component custom ID for the given
// session and action, ex: `page:01J9Z...:next`
func paginationCustomID(sessionID string, action NavAction) string {
	return fmt.Sprintf("%s:%s:%s", paginationCustomIDPrefix, sessionID, action)
}

// parsePaginationCustomID is the inverse of paginationCustomID
func parsePaginationCustomID(customID string) (sessionID string, action NavAction, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != paginationCustomIDPrefix {
		return "", "", false
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], NavAction(parts[2]), true
}

// navigationRow builds the five-button row for the given controls
func navigationRow(sessionID string, c *NavControls) discordgo.ActionsRow {
	button := func(action NavAction, disabled bool) discordgo.Button {
		return discordgo.Button{
			Style:    discordgo.PrimaryButton,
			Disabled: disabled,
			CustomID: paginationCustomID(sessionID, action),
			Emoji:    &discordgo.ComponentEmoji{Name: navButtonEmoji[action]},
		}
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			button(NavFirst, c.FirstDisabled),
			button(NavPrevious, c.PreviousDisabled),
			discordgo.Button{
				Label:    c.Label(),
				Style:    discordgo.SecondaryButton,
				Disabled: true,
				CustomID: paginationCustomID(sessionID, NavIndicator),
			},
			button(NavNext, c.NextDisabled),
			button(NavLast, c.LastDisabled),
		},
	}
}

type clickHandlerKey struct{}

// withClickHandler attaches the handler of the button click being
// processed, so the renderer can answer through the click's token.
func withClickHandler(ctx context.Context, h InteractionHandler) context.Context {
	return context.WithValue(ctx, clickHandlerKey{}, h)
}

func clickHandlerFromContext(ctx context.Context) (InteractionHandler, bool) {
	h, ok := ctx.Value(clickHandlerKey{}).(InteractionHandler)
	return h, ok
}

// interactionRenderer renders pages by editing the message the session
// is bound to. The first render goes through the interaction that started
// the session. After that, each render goes through the most recent
// button click, since interaction tokens expire 15 minutes after they're
// issued and a session can outlive the original one.
// Calls are serialized by the session.
type interactionRenderer struct {
	handler InteractionHandler
}

func newInteractionRenderer(h InteractionHandler) *interactionRenderer {
	return &interactionRenderer{handler: h}
}

func (r *interactionRenderer) RenderPage(
	ctx context.Context,
	session *PaginationSession,
	page Page,
	controls *NavControls,
) error {
	if click, ok := clickHandlerFromContext(ctx); ok {
		r.handler = click
	}

	components := make([]discordgo.MessageComponent, 0, len(page.Components)+1)
	components = append(components, page.Components...)
	if controls != nil {
		components = append(components, navigationRow(session.ID, controls))
	}
	embeds := page.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	content := page.Content

	_, err := r.handler.Edit(
		ctx,
		&discordgo.WebhookEdit{
			Content:    &content,
			Embeds:     &embeds,
			Components: &components,
		},
	)
	return err
}

// componentResponder answers a navigation button click
type componentResponder struct {
	handler InteractionHandler
}

func (c componentResponder) Reject(ctx context.Context, notice string) error {
	return c.handler.Respond(
		ctx,
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: notice,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		},
	)
}

func (c componentResponder) Acknowledge(ctx context.Context) error {
	return c.handler.Respond(
		ctx,
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		},
	)
}

// navigationRouter delivers pagination button clicks to the session
// named in the button's custom ID.
type navigationRouter struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, ev NavigationEvent)
}

func newNavigationRouter() *navigationRouter {
	return &navigationRouter{
		handlers: map[string]func(ctx context.Context, ev NavigationEvent){},
	}
}

type routerSubscription struct {
	router    *navigationRouter
	sessionID string
	once      sync.Once
}

func (s *routerSubscription) Unsubscribe() {
	s.once.Do(
		func() {
			s.router.mu.Lock()
			delete(s.router.handlers, s.sessionID)
			s.router.mu.Unlock()
		},
	)
}

func (r *navigationRouter) SubscribeNavigation(
	sessionID string,
	onEvent func(ctx context.Context, ev NavigationEvent),
) Subscription {
	r.mu.Lock()
	r.handlers[sessionID] = onEvent
	r.mu.Unlock()
	return &routerSubscription{router: r, sessionID: sessionID}
}

// handleComponent is registered as the component handler for the
// pagination custom ID prefix.
func (r *navigationRouter) handleComponent(ctx context.Context, handler InteractionHandler) {
	i := handler.GetInteraction()
	logger := handler.Logger()
	sessionID, action, ok := parsePaginationCustomID(i.MessageComponentData().CustomID)
	if !ok {
		logger.WarnContext(ctx, "malformed pagination custom ID", "custom_id", i.MessageComponentData().CustomID)
		return
	}

	r.mu.RLock()
	onEvent, ok := r.handlers[sessionID]
	r.mu.RUnlock()

	responder := componentResponder{handler: handler}
	if !ok {
		logger.InfoContext(ctx, "navigation on expired session", "session_id", sessionID)
		_ = responder.Reject(ctx, paginationExpiredNotice)
		return
	}

	var actorID string
	if u := getDiscordUser(i); u != nil {
		actorID = u.ID
	}
	onEvent(
		withClickHandler(ctx, handler),
		NavigationEvent{
			ActorID:   actorID,
			Action:    action,
			Responder: responder,
		},
	)
}

// timeScheduler implements TimerScheduler with time.AfterFunc
type timeScheduler struct{}

func (timeScheduler) ScheduleOnce(d time.Duration, cb func()) CancelableTimer {
	return time.AfterFunc(d, cb)
}
