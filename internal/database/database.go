package database

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// pure-Go sqlite driver registered as "sqlite"
	"modernc.org/sqlite"

	"dndinfo/internal/pkg/logger"
)

// sqlite's builtin LOWER folds ASCII only; replace it so searches fold
// Cyrillic names the way postgres does.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

type options struct {
	log    *logger.Logger
	silent bool
}

type Option func(*options)

// WithLogger reports the chosen backend through log.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// Silent turns off gorm's SQL logging.
func Silent() Option {
	return func(o *options) { o.silent = true }
}

// IsPostgres reports whether dsn points at PostgreSQL.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &gorm.Config{}
	if o.silent {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	if IsPostgres(dsn) {
		o.log.Info("connecting to postgres")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	o.log.Info("using sqlite", "dsn", dsn)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// sqlite has a single writer; an in-memory database lives as long as its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates the tables for models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
