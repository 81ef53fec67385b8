package webhookcreate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	dbTypeSQLite              = "sqlite"
	dbTypePostgres            = "postgres"
	postgresNotifyChannelStop = "webhookcreate_stop"
	columnUserID              = "user_id"
	columnInteractionID       = "interaction_id"
)

var (
	sqliteMaxOpenConns    = 1
	sqliteMaxIdleConns    = 1
	sqliteMaxConnLifetime = 5 * time.Minute
	sqliteExecPragma      = []string{
		"pragma journal_mode=WAL;",
		"pragma synchronous = normal;",
		"pragma temp_store = memory;",
		"pragma foreign_keys = ON;",
	}
	dbOperationTimeout    = 30 * time.Second
	dbNotifierSendTimeout = 15 * time.Second
	dbNotifierRetryDelay  = 5 * time.Second
)

// ModelUnixTime is an embeddable model with Unix timestamps for
// creation, update, and deletion.
type ModelUnixTime struct {
	CreatedAt int64          `gorm:"autoCreateTime:milli" json:"created_at,omitempty"`
	UpdatedAt int64          `gorm:"autoUpdateTime:milli" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ModelUintID is an embeddable auto-incrementing primary key
type ModelUintID struct {
	ID uint `gorm:"primarykey" json:"id"`
}

// InteractionLog records every interaction received, before it's handled
//
//nolint:lll // struct tags can't be split
type InteractionLog struct {
	ModelUintID
	Method        DiscordInteractionReceiveMethod `json:"method" gorm:"type:string"`
	InteractionID string                          `json:"interaction_id" gorm:"not null"`
	Type          string                          `json:"type" gorm:"type:string"`
	UserID        string                          `json:"user_id" gorm:"not null"`
	Username      string                          `json:"username" gorm:"type:string"`
	GuildID       string                          `json:"guild_id" gorm:"type:string"`
	ChannelID     string                          `json:"channel_id" gorm:"type:string"`
	Payload       string                          `json:"payload" gorm:"type:string"`
	CreatedAt     int64                           `gorm:"autoCreateTime:milli" json:"created_at,omitempty"`
}

func newInteractionLog(
	i *discordgo.InteractionCreate,
	u *discordgo.User,
	method DiscordInteractionReceiveMethod,
) (*InteractionLog, error) {
	p, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("error marshaling interaction: %w", err)
	}
	return &InteractionLog{
		InteractionID: i.ID,
		Type:          i.Type.String(),
		UserID:        u.ID,
		Username:      u.String(),
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
		Payload:       string(p),
		Method:        method,
	}, nil
}

// CommandLog records the outcome of a slash command
type CommandLog struct {
	ModelUintID
	ModelUnixTime
	InteractionID string `json:"interaction_id" gorm:"index"`
	Command       string `json:"command" gorm:"index"`
	Subcommand    string `json:"subcommand"`
	UserID        string `json:"user_id" gorm:"index"`
	GuildID       string `json:"guild_id"`
	ChannelID     string `json:"channel_id"`
	DurationMS    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
}

// Feedback is a message submitted with `/bot feedback`
type Feedback struct {
	ModelUintID
	ModelUnixTime
	UserID    string `json:"user_id" gorm:"index"`
	Username  string `json:"username"`
	GuildID   string `json:"guild_id"`
	GuildName string `json:"guild_name"`
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
	Delivered bool   `json:"delivered"`
}

// DiscordMessage logs an incoming discord message which mentioned the bot
type DiscordMessage struct {
	ModelUintID
	ModelUnixTime
	MessageID  string `json:"message_id"`
	Content    string `json:"content"`
	ChannelID  string `json:"channel_id"`
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Replied    bool   `json:"replied"`
}

func NewDiscordMessage(m *discordgo.Message) DiscordMessage {
	user := m.Author
	if user == nil && m.Member != nil {
		user = m.Member.User
	}
	dm := DiscordMessage{
		MessageID: m.ID,
		Content:   m.Content,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}
	if user != nil {
		dm.UserID = user.ID
		dm.Username = user.Username
		dm.GlobalName = user.GlobalName
	}
	return dm
}

func (m DiscordMessage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("message_id", m.MessageID),
		slog.String("channel_id", m.ChannelID),
		slog.String("guild_id", m.GuildID),
		slog.String(columnUserID, m.UserID),
		slog.String("username", m.Username),
	)
}

// AdminCredentials holds the admin API login. Only one row is used.
type AdminCredentials struct {
	ModelUintID
	ModelUnixTime
	Username string `json:"username" gorm:"not null"`
	Password string `json:"-" gorm:"not null" log:"[redacted]"`
}

// Verify reports whether password matches the stored hash
func (a AdminCredentials) Verify(password string) (bool, error) {
	return verifyPassword(a.Password, password)
}

// GetAdminCredentials returns the most recently set admin credentials,
// or gorm.ErrRecordNotFound if none are set.
func GetAdminCredentials(ctx context.Context, db *gorm.DB) (*AdminCredentials, error) {
	var creds AdminCredentials
	if err := db.WithContext(ctx).Last(&creds).Error; err != nil {
		return nil, err
	}
	return &creds, nil
}

// SetAdminCredentials hashes the password and stores the admin login,
// replacing any previous one.
func SetAdminCredentials(ctx context.Context, db *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("admin username is required")
	}
	if password == "" {
		return errors.New("admin password is required")
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return db.WithContext(ctx).Transaction(
		func(tx *gorm.DB) error {
			if e := tx.Where("1 = 1").Delete(&AdminCredentials{}).Error; e != nil {
				return e
			}
			return tx.Create(&AdminCredentials{Username: username, Password: hashed}).Error
		},
	)
}

// DBI is the set of database operations used by the bot, so that
// writes can be serialized (for sqlite) and given a default deadline.
type DBI interface {
	DB() *gorm.DB
	Create(ctx context.Context, value any, omit ...string) (rowsAffected int64, err error)
	Updates(ctx context.Context, model any, values any) (rowsAffected int64, err error)
	Save(ctx context.Context, value any, omit ...string) (rowsAffected int64, err error)
	Delete(ctx context.Context, value any, conds ...any) (rowsAffected int64, err error)
	Transaction(
		ctx context.Context,
		fc func(tx *gorm.DB) error,
		opts ...*sql.TxOptions,
	) (err error)
}

type database struct {
	db                     *gorm.DB
	mu                     sync.Mutex
	logger                 *slog.Logger
	enableConcurrentWrites bool
}

// NewDatabase returns a DBI wrapping the given connection. Unless
// enableConcurrentWrites is set, writes are serialized.
func NewDatabase(db *gorm.DB, log *slog.Logger, enableConcurrentWrites bool) DBI {
	if log == nil {
		log = slog.Default()
	}
	return &database{
		db:                     db,
		logger:                 log.With(loggerNameKey, "writedb"),
		enableConcurrentWrites: enableConcurrentWrites,
	}
}

func (d *database) DB() *gorm.DB {
	return d.db
}

// begin takes the write lock (if needed) and applies the default
// operation timeout, returning a func to release both.
func (d *database) begin(ctx context.Context) (context.Context, func()) {
	if !d.enableConcurrentWrites {
		d.mu.Lock()
	}
	cancel := func() {}
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, dbOperationTimeout)
	}
	return ctx, func() {
		cancel()
		if !d.enableConcurrentWrites {
			d.mu.Unlock()
		}
	}
}

func (d *database) Create(ctx context.Context, value any, omit ...string) (
	rowsAffected int64,
	err error,
) {
	ctx, done := d.begin(ctx)
	defer done()

	db := d.db.WithContext(ctx)
	if len(omit) > 0 {
		db = db.Omit(omit...)
	}
	rv := db.Create(value)
	return rv.RowsAffected, rv.Error
}

func (d *database) Updates(ctx context.Context, model, values any) (
	rowsAffected int64,
	err error,
) {
	ctx, done := d.begin(ctx)
	defer done()

	rv := d.db.WithContext(ctx).Model(model).Updates(values)
	return rv.RowsAffected, rv.Error
}

func (d *database) Save(ctx context.Context, value any, omit ...string) (
	rowsAffected int64,
	err error,
) {
	ctx, done := d.begin(ctx)
	defer done()

	db := d.db.WithContext(ctx)
	if len(omit) > 0 {
		db = db.Omit(omit...)
	}
	rv := db.Save(value)
	return rv.RowsAffected, rv.Error
}

func (d *database) Delete(ctx context.Context, value any, conds ...any) (
	rowsAffected int64,
	err error,
) {
	ctx, done := d.begin(ctx)
	defer done()

	rv := d.db.WithContext(ctx).Delete(value, conds...)
	return rv.RowsAffected, rv.Error
}

func (d *database) Transaction(
	ctx context.Context,
	fc func(tx *gorm.DB) error,
	opts ...*sql.TxOptions,
) error {
	ctx, done := d.begin(ctx)
	defer done()

	return d.db.WithContext(ctx).Transaction(fc, opts...)
}

// CreateDB initializes and returns a GORM database connection based on the
// specified database type, and migrates all models.
func CreateDB(ctx context.Context, databaseType string, database string) (*gorm.DB, error) {
	handler := tint.NewHandler(
		defaultLogWriter,
		&tint.Options{
			Level:     slog.LevelWarn,
			AddSource: true,
		},
	)
	dbLogger := slog.New(handler).With(loggerNameKey, "database")
	dbLogger.InfoContext(
		ctx,
		"initializing database",
		"database_type", databaseType,
		"database", database,
	)

	db, err := getDB(databaseType, database, newGORMLogger(handler, 500*time.Millisecond))
	if err != nil {
		return db, err
	}
	if err = migrateDB(ctx, db); err != nil {
		return db, err
	}
	return db, nil
}

func migrateDB(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(
		func(tx *gorm.DB) error {
			return tx.Migrator().AutoMigrate(
				&InteractionLog{},
				&CommandLog{},
				&Feedback{},
				&DiscordMessage{},
				&AdminCredentials{},
			)
		},
	)
}

// getDB initializes and returns a GORM database connection based on the
// specified database type.
func getDB(
	databaseType string,
	database string,
	gormLogger *gormStructuredLogger,
) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	switch databaseType {
	case dbTypeSQLite:
		if parentDir := filepath.Dir(database); parentDir != "" {
			if err := os.MkdirAll(parentDir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, err
			}
		}
		db, err := gorm.Open(sqlite.Open(database), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(sqliteMaxOpenConns)
		sqlDB.SetMaxIdleConns(sqliteMaxIdleConns)
		sqlDB.SetConnMaxLifetime(sqliteMaxConnLifetime)
		for _, pragma := range sqliteExecPragma {
			if err = db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("error executing %q: %w", pragma, err)
			}
		}
		return db, nil
	case dbTypePostgres:
		return gorm.Open(postgres.Open(database), cfg)
	default:
		return nil, fmt.Errorf(
			"unsupported database type: %s (must be %q or %q)",
			databaseType, dbTypeSQLite, dbTypePostgres,
		)
	}
}

// DBNotifier broadcasts a stop signal to every bot instance sharing
// the database.
type DBNotifier interface {
	// Stop sends a shutdown signal to all bots
	Stop(context.Context) bool

	// ID returns the identifier for this notifier. DBNotifier instances
	// use this ID to filter out their own notifications.
	ID() string

	// Listen blocks, forwarding received stop signals, until ctx is done
	Listen(ctx context.Context) error
}

func newDBNotifier(
	databaseType string,
	dsn string,
	db DBI,
	signalStop chan<- struct{},
	logger *slog.Logger,
) (DBNotifier, error) {
	notifyID, err := generateRandomHexString(16)
	if err != nil {
		return nil, err
	}
	log := logger.With(loggerNameKey, "db_notifier")
	switch databaseType {
	case dbTypeSQLite:
		return &localNotifier{logger: log, signalStop: signalStop, id: notifyID}, nil
	case dbTypePostgres:
		return &postgresNotifier{
			logger:     log,
			db:         db,
			dsn:        dsn,
			signalStop: signalStop,
			pgNotifyID: notifyID,
		}, nil
	default:
		return nil, fmt.Errorf("invalid database type: %q", databaseType)
	}
}

// localNotifier signals only the current process. It's used with sqlite,
// where only one instance can share the database.
type localNotifier struct {
	logger     *slog.Logger
	signalStop chan<- struct{}
	id         string
}

func (s *localNotifier) Listen(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *localNotifier) Stop(ctx context.Context) bool {
	s.logger.InfoContext(ctx, "notifying stop signal")
	select {
	case s.signalStop <- struct{}{}:
		return true
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "timeout sending stop signal")
		return false
	}
}

func (s *localNotifier) ID() string {
	return s.id
}

// postgresNotifier uses LISTEN/NOTIFY to signal every instance
type postgresNotifier struct {
	logger     *slog.Logger
	db         DBI
	dsn        string
	signalStop chan<- struct{}
	pgNotifyID string
}

func (p *postgresNotifier) ID() string {
	return p.pgNotifyID
}

func (p *postgresNotifier) Stop(ctx context.Context) bool {
	notifyErr := p.db.DB().WithContext(ctx).Exec(
		"SELECT pg_notify(?, ?)",
		postgresNotifyChannelStop,
		p.ID(),
	).Error
	if notifyErr != nil {
		p.logger.ErrorContext(ctx, "error sending NOTIFY to stop bot", tint.Err(notifyErr))
		return false
	}
	p.logger.InfoContext(ctx, "sent stop signal", "pg_notify_id", p.ID())

	// NOTIFY from ourselves is ignored by Listen, so signal locally too
	select {
	case p.signalStop <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	return true
}

func (p *postgresNotifier) Listen(ctx context.Context) error {
	logger := p.logger.With("channel", postgresNotifyChannelStop)
	logger.InfoContext(ctx, "starting db listener")

	config, err := pgxpool.ParseConfig(p.dsn)
	if err != nil {
		return fmt.Errorf("error parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("error creating connection pool: %w", err)
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("error acquiring connection: %w", err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "LISTEN "+postgresNotifyChannelStop); err != nil {
		return fmt.Errorf("error setting up listener: %w", err)
	}
	logger.InfoContext(ctx, "started listening on channel")

	for ctx.Err() == nil {
		notification, e := conn.Conn().WaitForNotification(ctx)
		if e != nil {
			if ctx.Err() != nil {
				break
			}
			logger.ErrorContext(ctx, "error waiting for notification", tint.Err(e))
			time.Sleep(dbNotifierRetryDelay)
			continue
		}
		if notification.Payload == p.ID() {
			logger.DebugContext(ctx, "received notification from self, ignoring")
			continue
		}

		logger.InfoContext(ctx, "received stop signal via NOTIFY", "payload", notification.Payload)
		select {
		case p.signalStop <- struct{}{}:
			logger.InfoContext(ctx, "forwarded stop signal")
		case <-time.After(dbNotifierSendTimeout):
			logger.WarnContext(ctx, "timed out forwarding stop signal")
		}
	}
	return nil
}
