package webhookcreate

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	ginPprof "github.com/gin-contrib/pprof"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	pprofPrefix               = "/debug"
	apiPrefix                 = "/api"
	apiPathQuit               = "/quit"
	apiPathLogin              = "/login"
	apiPathLogout             = "/logout"
	apiPathRegisterCommands   = "/discord/register_commands"
	apiPathLoggedIn           = "/logged_in"
	apiHealthCheck            = "/healthz"
	apiDiscordInteractions    = "/discord/interactions"
	apiPathGetDiscordMessages = "/discord_messages"
	apiPathFeedback           = "/feedback"
	apiPathInteractions       = "/interactions"
	apiPathCommandLogs        = "/command_logs"
	apiPathPagination         = "/pagination"
)

const (
	xRequestIDHeader = "X-Request-ID"
	sessionVarName   = "user"
	sessionVarField  = "username"

	defaultPageLimit = 25
)

var (
	Ascending  Sort = "asc"
	Descending Sort = "desc"
)

// API is the admin HTTP server. It reports bot health, lists what the
// bot has recorded, and lets an operator re-register commands or stop
// the bot.
type API struct {
	config              *APIConfig
	httpServer          *http.Server
	listener            net.Listener
	engine              *gin.Engine
	store               CookieStore
	loginRequestLimiter *rate.Limiter
	requestMetrics      map[string]int
	requestMetricsMu    sync.Mutex
	logger              *slog.Logger

	handlers *APIHandlers
}

// newAPI sets up the gin engine, session store, middleware and routes
// for the admin API.
func newAPI(b *Bot, config *APIConfig) (*API, error) {
	r := gin.New()

	api := &API{
		config:              config,
		engine:              r,
		requestMetrics:      map[string]int{},
		loginRequestLimiter: rate.NewLimiter(rate.Limit(1), 1),
		logger:              newComponentLogger(config.LogLevel, "api"),
	}
	apiHandlers := NewAPIHandlers(b, config, api.logger)
	api.handlers = apiHandlers
	api.store = apiHandlers.store
	r.Use(sessions.Sessions(sessionVarName, apiHandlers.store))

	tlsCfg, e := tlsConfig(config.SSL)
	if e != nil {
		return nil, fmt.Errorf("error loading SSL certs: %w", e)
	}

	api.httpServer = &http.Server{
		Addr:              config.Listen,
		Handler:           r,
		TLSConfig:         tlsCfg,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	corsConfig := config.CORS.GINConfig()
	if len(corsConfig.AllowOrigins) == 0 {
		if config.Development {
			corsConfig.AllowOrigins = []string{"*"}
			corsConfig.AllowCredentials = false
		} else {
			corsConfig.AllowAllOrigins = false
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	}

	if !config.Development {
		r.Use(gin.Recovery())
	}
	r.Use(
		requestIDMiddleware(),
		ginLoggingMiddleware(api.logger),
		metricMiddleware(api),
		cors.New(corsConfig),
	)

	r.POST(apiPathLogin, apiHandlers.loginHandler)
	r.GET(apiHealthCheck, apiHandlers.healthCheck)
	r.POST(apiPathLogout, apiHandlers.logoutHandler)

	if config.Development {
		ginPprof.Register(r, pprofPrefix)
		runtime.SetMutexProfileFraction(1)
		runtime.SetBlockProfileRate(1)
	}

	r.NoRoute(
		func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusNotFound, httpError{Error: "not found"})
		},
	)

	protected := r.Group(apiPrefix)
	protected.Use(authMiddleware(api))

	protected.GET(apiPathLoggedIn, apiHandlers.loggedIn)
	protected.GET(apiPathFeedback, apiHandlers.getFeedback)
	protected.GET(apiPathGetDiscordMessages, apiHandlers.getDiscordMessages)
	protected.GET(apiPathInteractions, apiHandlers.getInteractionLogs)
	protected.GET(apiPathCommandLogs, apiHandlers.getCommandLogs)
	protected.GET(apiPathPagination, apiHandlers.getPaginationStatus)
	protected.POST(apiPathRegisterCommands, apiHandlers.discordRegisterCommands)
	protected.POST(apiPathQuit, apiHandlers.botQuit)

	return api, nil
}

// Serve listens on the configured address and serves the API until the
// server is shut down. TLS is used when certs are configured.
func (a *API) Serve(ctx context.Context) error {
	if a.listener == nil {
		network := a.config.ListenNetwork
		if network == "" {
			network = defaultListenNetwork
		}
		listenCfg := &net.ListenConfig{}
		ln, err := listenCfg.Listen(ctx, network, a.config.Listen)
		if err != nil {
			return fmt.Errorf("error listening on %s: %w", a.config.Listen, err)
		}
		if a.httpServer.TLSConfig != nil {
			ln = tls.NewListener(ln, a.httpServer.TLSConfig)
		} else {
			a.logger.WarnContext(ctx, "starting api without TLS")
		}
		a.listener = ln
	}
	a.logger.InfoContext(ctx, "api listening", "addr", a.listener.Addr().String())
	return a.httpServer.Serve(a.listener)
}

func (a *API) getSessionUsername(c *gin.Context) (string, error) {
	session, err := a.store.Get(c.Request, sessionVarName)
	if err != nil {
		return "", err
	}
	username, ok := session.Values[sessionVarField]
	if !ok {
		return "", errors.New("username not found in session")
	}
	s, ok := username.(string)
	if !ok || s == "" {
		return "", errors.New("username not set")
	}
	return s, nil
}

type CookieStore interface {
	sessions.Store
}

func NewCookieStore(keyPairs ...[]byte) CookieStore {
	return &cookieStore{gsessions.NewCookieStore(keyPairs...)}
}

type cookieStore struct {
	*gsessions.CookieStore
}

func (c *cookieStore) Options(options sessions.Options) {
	c.CookieStore.Options = options.ToGorillaOptions()
}

// APIHandlers contains the handlers for the admin API endpoints
type APIHandlers struct {
	b      *Bot
	config *APIConfig
	logger *slog.Logger
	store  CookieStore
}

// NewAPIHandlers sets up the session store used by the admin API. If
// no secret is configured, a random one is generated, so sessions won't
// survive a restart.
func NewAPIHandlers(b *Bot, config *APIConfig, logger *slog.Logger) *APIHandlers {
	var secretKey []byte
	switch sk := config.Secret; {
	case sk == "":
		logger.Warn(
			"api secret not set, generating random secret " +
				"(sessions will not persist across restarts)",
		)
		secretKey = securecookie.GenerateRandomKey(64)
	default:
		secretKey = derive64ByteKey(sk)
	}

	store := NewCookieStore(secretKey)
	store.Options(sessionOptions(config))
	return &APIHandlers{b: b, config: config, logger: logger, store: store}
}

func sessionOptions(config *APIConfig) sessions.Options {
	sameSite := http.SameSiteStrictMode
	if config.Development {
		sameSite = http.SameSiteNoneMode
	}
	return sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		SameSite: sameSite,
	}
}

// loginHandler checks the given credentials against the stored
// [AdminCredentials] and, if they match, starts a session.
//
// Responses:
//   - 200 OK: the user was logged in
//   - 400 Bad Request: the payload is invalid
//   - 401 Unauthorized: the credentials are wrong, or not set
//   - 429 Too Many Requests: rate limited
//   - 500 Internal Server Error: session or password verification failed
func (h *APIHandlers) loginHandler(c *gin.Context) {
	logger := ginContextLogger(c)
	if !h.b.api.loginRequestLimiter.Allow() {
		logger.Warn("login rate limited")
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	var login userLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	creds, err := GetAdminCredentials(c, h.b.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("admin credentials not set")
		} else {
			logger.Error("error getting admin credentials", tint.Err(err))
		}
		c.JSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
		return
	}

	if login.Username != creds.Username {
		logger.Warn("admin username incorrect", "username", login.Username)
		c.JSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
		return
	}
	valid, err := creds.Verify(login.Password)
	if err != nil {
		logger.Error("error verifying password", tint.Err(err))
		ginReplyError(c, "internal server error")
		return
	}
	if !valid {
		logger.Warn("invalid login attempt", "username", login.Username)
		c.JSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
		return
	}

	session, err := h.store.New(c.Request, sessionVarName)
	if err != nil {
		logger.Error("error creating session", tint.Err(err))
		ginReplyError(c, "internal server error")
		return
	}
	opts := sessionOptions(h.config)
	session.Options = opts.ToGorillaOptions()
	session.Values[sessionVarField] = login.Username
	if err = session.Save(c.Request, c.Writer); err != nil {
		logger.Error("error saving session", tint.Err(err))
		ginReplyError(c, "internal server error")
		return
	}
	logger.Info("saved user session", "username", login.Username)
	c.JSON(http.StatusOK, loggedInResponse{Username: login.Username})
}

// healthCheck reports gateway connectivity, guild count and the number
// of pagination sessions currently accepting clicks.
func (h *APIHandlers) healthCheck(c *gin.Context) {
	resp := healthCheckResponse{}
	if h.b.discord != nil {
		resp.DiscordGatewayConnected = h.b.discord.connected.Load()
		resp.Guilds = h.b.discord.guilds.Len()
	}
	if h.b.paginator != nil {
		resp.ActivePaginationSessions = h.b.paginator.ActiveSessions()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *APIHandlers) logoutHandler(c *gin.Context) {
	logger := ginContextLogger(c)
	session, err := h.store.Get(c.Request, sessionVarName)
	if err != nil {
		logger.Error("error getting session", tint.Err(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	session.Values[sessionVarField] = ""
	session.Options.MaxAge = -1
	if err = session.Save(c.Request, c.Writer); err != nil {
		logger.Error("error saving cookie", tint.Err(err))
	}
	ginReplyMessage(c, "logged out")
}

func (h *APIHandlers) loggedIn(c *gin.Context) {
	username, err := h.b.api.getSessionUsername(c)
	if err != nil {
		ginContextLogger(c).Warn("error getting session username", tint.Err(err))
		c.JSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, loggedInResponse{Username: username})
}

// discordRegisterCommands overwrites the bot's slash commands.
//
// Responses:
//   - 201 Created: returns the registered commands
//   - 500 Internal Server Error: registration failed
func (h *APIHandlers) discordRegisterCommands(c *gin.Context) {
	log := ginContextLogger(c)
	log.Info("registering commands")

	created, err := h.b.RegisterSlashCommands()
	if err != nil {
		log.Error("error registering commands", tint.Err(err))
		ginReplyError(c, "error registering commands")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// botQuit sends a stop signal through the [DBNotifier], so every
// running instance shuts down.
func (h *APIHandlers) botQuit(c *gin.Context) {
	log := ginContextLogger(c)
	log.Warn("sending stop signal")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if h.b.dbNotifier == nil {
		c.JSON(http.StatusServiceUnavailable, httpError{Error: "bot not running"})
		return
	}

	doneCh := make(chan bool, 1)
	go func() {
		doneCh <- h.b.dbNotifier.Stop(ctx)
	}()
	select {
	case ok := <-doneCh:
		if !ok {
			log.Warn("stop signal not delivered")
		}
		ginReplyMessage(c, "quitting")
	case <-ctx.Done():
		log.Warn("timeout sending stop signal")
		c.JSON(http.StatusGatewayTimeout, httpError{Error: "timeout sending stop signal"})
	}
}

// getPaginationStatus reports the number of active pagination sessions
func (h *APIHandlers) getPaginationStatus(c *gin.Context) {
	resp := paginationStatusResponse{}
	if h.b.paginator != nil {
		resp.ActiveSessions = h.b.paginator.ActiveSessions()
	}
	if h.b.config != nil && h.b.config.Pagination != nil {
		resp.IdleTimeout = h.b.config.Pagination.IdleTimeout.String()
		resp.ScriptSearchIdleTimeout = h.b.config.Pagination.ScriptSearchIdleTimeout.String()
	}
	c.JSON(http.StatusOK, resp)
}

// GetFeedbackQuery filters `/api/feedback`
type GetFeedbackQuery struct {
	Pagination
	UserID  *string `form:"user_id"`
	GuildID *string `form:"guild_id"`
}

func (h *APIHandlers) getFeedback(c *gin.Context) {
	var query GetFeedbackQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: "invalid query parameters"})
		return
	}
	query.setDefaults(Descending)

	db := h.b.db.WithContext(c).Model(&Feedback{})
	if query.UserID != nil {
		db = db.Where(columnUserID+" = ?", *query.UserID)
	}
	if query.GuildID != nil {
		db = db.Where("guild_id = ?", *query.GuildID)
	}

	var feedback []Feedback
	total, err := findPage(db, query.Pagination, &feedback)
	if err != nil {
		ginContextLogger(c).ErrorContext(c, "error retrieving feedback", tint.Err(err))
		ginReplyError(c, "error retrieving feedback")
		return
	}
	c.JSON(http.StatusOK, listResponse[Feedback]{
		Total: total, Offset: query.Offset, Limit: query.Limit, Items: feedback,
	})
}

func (h *APIHandlers) getDiscordMessages(c *gin.Context) {
	var pagination Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: "invalid pagination"})
		return
	}
	pagination.setDefaults(Ascending)

	var messages []DiscordMessage
	total, err := findPage(h.b.db.WithContext(c).Model(&DiscordMessage{}), pagination, &messages)
	if err != nil {
		ginContextLogger(c).ErrorContext(c, "error getting discord messages", tint.Err(err))
		ginReplyError(c, "error getting discord messages")
		return
	}
	c.JSON(http.StatusOK, listResponse[DiscordMessage]{
		Total: total, Offset: pagination.Offset, Limit: pagination.Limit, Items: messages,
	})
}

// GetInteractionLogsQuery filters `/api/interactions`
type GetInteractionLogsQuery struct {
	Pagination
	UserID *string `form:"user_id"`
	Type   *string `form:"type"`
}

func (h *APIHandlers) getInteractionLogs(c *gin.Context) {
	var query GetInteractionLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: "invalid query parameters"})
		return
	}
	query.setDefaults(Descending)

	db := h.b.db.WithContext(c).Model(&InteractionLog{})
	if query.UserID != nil {
		db = db.Where(columnUserID+" = ?", *query.UserID)
	}
	if query.Type != nil {
		db = db.Where("type = ?", *query.Type)
	}

	var logs []InteractionLog
	total, err := findPage(db, query.Pagination, &logs)
	if err != nil {
		ginContextLogger(c).ErrorContext(c, "error retrieving interactions", tint.Err(err))
		ginReplyError(c, "error retrieving interactions")
		return
	}
	c.JSON(http.StatusOK, listResponse[InteractionLog]{
		Total: total, Offset: query.Offset, Limit: query.Limit, Items: logs,
	})
}

// GetCommandLogsQuery filters `/api/command_logs`
type GetCommandLogsQuery struct {
	Pagination
	Command    *string `form:"command"`
	UserID     *string `form:"user_id"`
	ErrorsOnly bool    `form:"errors_only"`
}

func (h *APIHandlers) getCommandLogs(c *gin.Context) {
	var query GetCommandLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: "invalid query parameters"})
		return
	}
	query.setDefaults(Descending)

	db := h.b.db.WithContext(c).Model(&CommandLog{})
	if query.Command != nil {
		db = db.Where("command = ?", strings.ToLower(*query.Command))
	}
	if query.UserID != nil {
		db = db.Where(columnUserID+" = ?", *query.UserID)
	}
	if query.ErrorsOnly {
		db = db.Where("error <> ''")
	}

	var logs []CommandLog
	total, err := findPage(db, query.Pagination, &logs)
	if err != nil {
		ginContextLogger(c).ErrorContext(c, "error retrieving command logs", tint.Err(err))
		ginReplyError(c, "error retrieving command logs")
		return
	}
	c.JSON(http.StatusOK, listResponse[CommandLog]{
		Total: total, Offset: query.Offset, Limit: query.Limit, Items: logs,
	})
}

// findPage counts the rows matched by db, then loads one page of them
// into dest, ordered by ID.
func findPage(db *gorm.DB, p Pagination, dest any) (int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, err
	}
	order := "id asc"
	if p.Order == Descending {
		order = "id desc"
	}
	if err := db.Order(order).Limit(p.Limit).Offset(p.Offset).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Pagination represents the pagination parameters for API requests.
//
// Fields:
//   - Limit: The maximum number of records to return.
//   - Order: The order in which to return the records (ascending or descending).
//   - Offset: The number of records to skip before starting to return records.
type Pagination struct {
	Limit  int  `form:"limit" binding:"omitempty,min=1,max=100"`
	Order  Sort `form:"order" binding:"omitempty,oneof=asc desc"`
	Offset int  `form:"offset" binding:"omitempty,min=0"`
}

func (p *Pagination) setDefaults(order Sort) {
	if p.Order == "" {
		p.Order = order
	}
	if p.Limit == 0 {
		p.Limit = defaultPageLimit
	}
}

// Sort is the order results are returned in
type Sort string

type listResponse[T any] struct {
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Items  []T   `json:"items"`
}

type loggedInResponse struct {
	Username string `json:"username"`
}

type healthCheckResponse struct {
	DiscordGatewayConnected  bool `json:"discord_gateway_connected"`
	Guilds                   int  `json:"guilds"`
	ActivePaginationSessions int  `json:"active_pagination_sessions"`
}

type paginationStatusResponse struct {
	ActiveSessions          int    `json:"active_sessions"`
	IdleTimeout             string `json:"idle_timeout"`
	ScriptSearchIdleTimeout string `json:"script_search_idle_timeout"`
}

type httpReply struct {
	Message string `json:"message"`
}

// httpError is an error message returned to the client
type httpError struct {
	Error string `json:"error"`
}

type userLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authMiddleware aborts with 401 unless the request carries a session
// with a username set.
func authMiddleware(a *API) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := ginContextLogger(c)
		session, err := a.store.Get(c.Request, sessionVarName)
		if err != nil || session == nil {
			if err != nil {
				logger.Error("error getting session", tint.Err(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
			return
		}

		username, ok := session.Values[sessionVarField].(string)
		if !ok || username == "" {
			logger.Warn("username not found in session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpError{Error: "unauthorized"})
			return
		}

		logger.Debug("got session", sessionVarField, username)
		c.Next()
	}
}

// requestIDMiddleware sets a random request ID on the context and
// the response headers.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := generateRandomHexString(32)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(xRequestIDHeader, id)
		c.Header(xRequestIDHeader, id)
		c.Next()
	}
}

// ginContextLogger returns the slog.Logger from the given gin context,
// or, if it doesn't exist, creates a logger with request details included,
// and sets the logger in the context so the next call to ginContextLogger
// will return the new logger.
func ginContextLogger(c *gin.Context) *slog.Logger {
	if logger, ok := c.Get(string(loggerContextKey)); ok {
		if requestLogger, ok := logger.(*slog.Logger); ok {
			return requestLogger
		}
	}
	return setGinContextLogger(c, slog.Default())
}

func setGinContextLogger(c *gin.Context, base *slog.Logger) *slog.Logger {
	requestID, _ := c.Get(xRequestIDHeader)
	path := c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		path = path + "?" + raw
	}

	requestLogger := base.With(
		slog.Group(
			"request",
			"method", c.Request.Method,
			"path", path,
			"remote_addr", c.Request.RemoteAddr,
			"remote_ip", c.RemoteIP(),
			"user_agent", c.Request.UserAgent(),
		),
		slog.Any(xRequestIDHeader, requestID),
	)
	c.Set(string(loggerContextKey), requestLogger)
	return requestLogger
}

// ginLoggingMiddleware logs each request's outcome and duration,
// including any errors added to the gin context.
func ginLoggingMiddleware(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := setGinContextLogger(c, base)
		c.Next()
		latency := time.Since(start)

		response := slog.Group(
			"response",
			"status_code", c.Writer.Status(),
			"body_size", c.Writer.Size(),
		)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			requestLogger.Error(
				fmt.Sprintf("%s %s finished with errors", c.Request.Method, c.Request.URL.Path),
				"duration", latency,
				"errors", errs.Errors(),
				response,
			)
			return
		}
		requestLogger.Info(
			fmt.Sprintf("%s %s finished", c.Request.Method, c.Request.URL.Path),
			"duration", latency,
			response,
		)
	}
}

// metricMiddleware counts requests per method and path
func metricMiddleware(a *API) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		a.requestMetricsMu.Lock()
		a.requestMetrics[key]++
		a.requestMetricsMu.Unlock()
		c.Next()
	}
}

// ginReplyMessage sends a JSON response with a message,
// with HTTP status code 200, via the gin context.
func ginReplyMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, httpReply{Message: message})
}

// ginReplyError aborts with a JSON error message and HTTP status 500
func ginReplyError(c *gin.Context, err string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, httpError{Error: err})
}
