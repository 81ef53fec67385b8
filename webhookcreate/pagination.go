package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

var (
	// ErrInvalidPageSet is returned by [Paginator.Start] when no pages
	// are given, or the session parameters can't produce a valid session.
	ErrInvalidPageSet = errors.New("invalid page set")

	// ErrUnauthorizedActor is returned by [PaginationSession.OnNavigate]
	// when someone other than the session owner operates a control.
	ErrUnauthorizedActor = errors.New("unauthorized actor")
)

// NavAction is a navigation control activated on a paginated response.
type NavAction string

const (
	NavFirst     NavAction = "first"
	NavPrevious  NavAction = "previous"
	NavIndicator NavAction = "indicator"
	NavNext      NavAction = "next"
	NavLast      NavAction = "last"
)

// DefaultRejectNotice is sent to a user who operates someone else's
// navigation controls, when the session doesn't set its own notice.
const DefaultRejectNotice = "❌ You cannot use these buttons."

// RenderError wraps a failure returned by a [PageRenderer].
type RenderError struct {
	SessionID string
	Index     int
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf(
		"render failed (session=%s page=%d): %s",
		e.SessionID,
		e.Index,
		e.Err,
	)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Page is a pre-rendered unit of display content. The paginator never
// inspects it, it's handed back to the renderer as-is.
type Page struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// NavControls describes the state of the navigation controls rendered
// alongside a page.
type NavControls struct {
	Index            int
	Total            int
	FirstDisabled    bool
	PreviousDisabled bool
	NextDisabled     bool
	LastDisabled     bool
}

// Label is the text shown on the (always disabled) page indicator
func (n NavControls) Label() string {
	return fmt.Sprintf("%d/%d", n.Index+1, n.Total)
}

func newNavControls(index, total int) *NavControls {
	return &NavControls{
		Index:            index,
		Total:            total,
		FirstDisabled:    index == 0,
		PreviousDisabled: index == 0,
		NextDisabled:     index == total-1,
		LastDisabled:     index == total-1,
	}
}

// PageRenderer displays or updates the response a session is bound to.
// A nil controls value means the page is rendered without navigation.
type PageRenderer interface {
	RenderPage(
		ctx context.Context,
		session *PaginationSession,
		page Page,
		controls *NavControls,
	) error
}

// NavigationResponder answers a single navigation event. Reject sends a
// notice only the actor can see, Acknowledge accepts the event so the
// response can be updated in place.
type NavigationResponder interface {
	Reject(ctx context.Context, notice string) error
	Acknowledge(ctx context.Context) error
}

// NavigationEvent is a control activation on a paginated response
type NavigationEvent struct {
	ActorID   string
	Action    NavAction
	Responder NavigationResponder
}

// Subscription is returned by [NavigationSubscriber.SubscribeNavigation],
// and stops delivery of events when unsubscribed.
type Subscription interface {
	Unsubscribe()
}

// NavigationSubscriber delivers navigation events for a session until
// the subscription is released.
type NavigationSubscriber interface {
	SubscribeNavigation(
		sessionID string,
		onEvent func(ctx context.Context, ev NavigationEvent),
	) Subscription
}

// CancelableTimer is a pending one-shot callback
type CancelableTimer interface {
	Stop() bool
}

// TimerScheduler schedules one-shot callbacks
type TimerScheduler interface {
	ScheduleOnce(d time.Duration, cb func()) CancelableTimer
}

// SessionOption configures a [PaginationSession] created by [Paginator.Start]
type SessionOption func(s *PaginationSession)

// WithRejectNotice sets the notice sent to non-owners who operate the
// session's controls.
func WithRejectNotice(notice string) SessionOption {
	return func(s *PaginationSession) {
		s.rejectNotice = notice
	}
}

// WithSessionLogger overrides the logger used by the session
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *PaginationSession) {
		s.logger = logger
	}
}

// Paginator creates and tracks [PaginationSession] values. The subscriber
// and scheduler are shared by every session, while each session gets
// the renderer bound to its own response.
type Paginator struct {
	subscriber NavigationSubscriber
	scheduler  TimerScheduler
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	mu       sync.Mutex
	sessions map[string]*PaginationSession
}

// NewPaginator returns a [Paginator] using the given subscriber and
// scheduler. If logger is nil, slog.Default is used.
func NewPaginator(
	subscriber NavigationSubscriber,
	scheduler TimerScheduler,
	logger *slog.Logger,
) *Paginator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paginator{
		subscriber: subscriber,
		scheduler:  scheduler,
		logger:     logger,
		now:        time.Now,
		newID:      newSessionID,
		sessions:   map[string]*PaginationSession{},
	}
}

// Start renders the first page and, if there's more than one page,
// subscribes to navigation events and arms the idle timer.
// A single page is rendered without controls, and the returned session
// is already terminal.
func (p *Paginator) Start(
	ctx context.Context,
	renderer PageRenderer,
	pages []Page,
	ownerID string,
	idleTimeout time.Duration,
	opts ...SessionOption,
) (*PaginationSession, error) {
	if len(pages) == 0 {
		return nil, ErrInvalidPageSet
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner ID required", ErrInvalidPageSet)
	}
	if idleTimeout <= 0 {
		return nil, fmt.Errorf(
			"%w: idle timeout must be positive, got %s",
			ErrInvalidPageSet,
			idleTimeout,
		)
	}

	s := &PaginationSession{
		ID:           p.newID(),
		pages:        append([]Page(nil), pages...),
		ownerID:      ownerID,
		idleTimeout:  idleTimeout,
		rejectNotice: DefaultRejectNotice,
		renderer:     renderer,
		paginator:    p,
		baseCtx:      context.WithoutCancel(ctx),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = p.logger
	}
	s.logger = s.logger.With(
		slog.Group(
			"pagination",
			"session_id", s.ID,
			"owner_id", ownerID,
			"pages", len(pages),
		),
	)

	if len(pages) == 1 {
		s.closed = true
		s.terminal = true
		if err := renderer.RenderPage(ctx, s, pages[0], nil); err != nil {
			return s, &RenderError{SessionID: s.ID, Index: 0, Err: err}
		}
		return s, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := renderer.RenderPage(
		ctx,
		s,
		pages[0],
		newNavControls(0, len(pages)),
	); err != nil {
		s.closed = true
		return s, &RenderError{SessionID: s.ID, Index: 0, Err: err}
	}

	s.subscription = p.subscriber.SubscribeNavigation(s.ID, s.handleEvent)
	s.armTimer()

	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()

	s.logger.DebugContext(ctx, "pagination session started")
	return s, nil
}

// ActiveSessions returns the number of sessions which haven't closed
func (p *Paginator) ActiveSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Shutdown closes every active session, performing each session's
// final render.
func (p *Paginator) Shutdown(ctx context.Context) {
	p.mu.Lock()
	active := make([]*PaginationSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		active = append(active, s)
	}
	p.mu.Unlock()

	for _, s := range active {
		s.Close(ctx)
	}
}

func (p *Paginator) forget(id string) {
	p.mu.Lock()
	delete(p.sessions, id)
	p.mu.Unlock()
}

// PaginationSession is the navigation state for one paginated response.
type PaginationSession struct {
	// ID identifies the session in component custom IDs
	ID string

	pages        []Page
	ownerID      string
	idleTimeout  time.Duration
	rejectNotice string
	renderer     PageRenderer
	paginator    *Paginator
	logger       *slog.Logger
	baseCtx      context.Context

	mu           sync.Mutex
	index        int
	deadline     time.Time
	closed       bool
	terminal     bool
	timer        CancelableTimer
	timerGen     uint64
	subscription Subscription
}

// OwnerID returns the ID of the only user allowed to navigate
func (s *PaginationSession) OwnerID() string {
	return s.ownerID
}

// Len returns the number of pages
func (s *PaginationSession) Len() int {
	return len(s.pages)
}

// CurrentIndex returns the index of the page currently displayed
func (s *PaginationSession) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Deadline returns the time at which the session will close if no
// further navigation is accepted. It's zero for terminal sessions.
func (s *PaginationSession) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Closed reports whether the session has stopped accepting navigation
func (s *PaginationSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Terminal reports whether the session was created with a single page,
// and so never accepted navigation.
func (s *PaginationSession) Terminal() bool {
	return s.terminal
}

func (s *PaginationSession) handleEvent(ctx context.Context, ev NavigationEvent) {
	if err := s.OnNavigate(ctx, ev); err != nil && !errors.Is(err, ErrUnauthorizedActor) {
		s.logger.ErrorContext(ctx, "navigation failed", tint.Err(err))
	}
}

// OnNavigate applies a navigation event. Events from anyone but the owner
// are rejected with [ErrUnauthorizedActor], without changing the page or
// resetting the idle timer. Render failures are logged, not returned.
// Events received after the session closed are ignored.
func (s *PaginationSession) OnNavigate(ctx context.Context, ev NavigationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.DebugContext(ctx, "ignoring navigation on closed session", "action", ev.Action)
		return nil
	}

	if ev.ActorID != s.ownerID {
		s.logger.InfoContext(
			ctx,
			"rejected navigation from non-owner",
			"actor_id", ev.ActorID,
			"action", ev.Action,
		)
		if ev.Responder != nil {
			if err := ev.Responder.Reject(ctx, s.rejectNotice); err != nil {
				s.logger.ErrorContext(ctx, "error sending rejection notice", tint.Err(err))
			}
		}
		return ErrUnauthorizedActor
	}

	last := len(s.pages) - 1
	switch ev.Action {
	case NavFirst:
		s.index = 0
	case NavPrevious:
		s.index = max(0, s.index-1)
	case NavNext:
		s.index = min(last, s.index+1)
	case NavLast:
		s.index = last
	default:
		// not navigation, so the timer and page are left alone
		s.logger.WarnContext(ctx, "unknown navigation action", "action", ev.Action)
		if ev.Responder != nil {
			if err := ev.Responder.Acknowledge(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error acknowledging navigation", tint.Err(err))
			}
		}
		return nil
	}

	if ev.Responder != nil {
		if err := ev.Responder.Acknowledge(ctx); err != nil {
			s.logger.ErrorContext(ctx, "error acknowledging navigation", tint.Err(err))
		}
	}

	s.armTimer()

	if err := s.renderer.RenderPage(
		ctx,
		s,
		s.pages[s.index],
		newNavControls(s.index, len(s.pages)),
	); err != nil {
		rerr := &RenderError{SessionID: s.ID, Index: s.index, Err: err}
		s.logger.ErrorContext(ctx, "error rendering page", tint.Err(rerr))
	}
	return nil
}

// Close renders the current page without controls and stops listening
// for navigation. Only the first call has any effect.
func (s *PaginationSession) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(ctx)
}

// armTimer cancels any pending idle timer and schedules a new one.
// Must be called with s.mu held.
func (s *PaginationSession) armTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.deadline = s.paginator.now().Add(s.idleTimeout)
	s.timer = s.paginator.scheduler.ScheduleOnce(
		s.idleTimeout,
		func() { s.onIdle(gen) },
	)
}

func (s *PaginationSession) onIdle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a callback that lost the race with a rearm is stale
	if gen != s.timerGen {
		return
	}
	s.logger.DebugContext(s.baseCtx, "pagination session idle, closing")
	s.closeLocked(s.baseCtx)
}

func (s *PaginationSession) closeLocked(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	if s.subscription != nil {
		s.subscription.Unsubscribe()
		s.subscription = nil
	}
	s.paginator.forget(s.ID)

	if err := s.renderer.RenderPage(ctx, s, s.pages[s.index], nil); err != nil {
		rerr := &RenderError{SessionID: s.ID, Index: s.index, Err: err}
		s.logger.ErrorContext(ctx, "error rendering final page", tint.Err(rerr))
	}
}
