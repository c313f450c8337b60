// Package catalog stores class metadata in a relational database and serves
// it as a metadata.Service.
//
// Three tables hold the data: classes, class_supertypes (direct edges) and
// class_annotations. Lookup walks the supertype edges to build the full
// ancestor set of a class. PostgreSQL and MySQL/MariaDB are supported
// through gorm.
package catalog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
)

// Catalog is a metadata.Service backed by gorm. It is safe for concurrent use.
type Catalog struct {
	db   *gorm.DB
	cfg  Config
	root string

	observer observability.Observer
	logger   Logger
}

var _ metadata.Service = (*Catalog)(nil)

// New opens the database described by cfg and configures the pool.
func New(cfg Config) (*Catalog, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s database instance: %w", cfg.Driver, err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 50
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 25
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime <= 0 {
		maxLifetime = time.Minute
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return NewWithDB(db, cfg), nil
}

// NewWithDB wraps an already opened gorm handle.
func NewWithDB(db *gorm.DB, cfg Config) *Catalog {
	root := cfg.RootType
	if root == "" {
		root = metadata.DefaultRootType
	}
	return &Catalog{db: db, cfg: cfg, root: root}
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return postgres.Open(postgresDSN(cfg.Connection)), nil
	case DriverMySQL:
		return mysql.Open(mysqlDSN(cfg.Connection)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

func postgresDSN(c Connection) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.DbName, sslMode)
}

func mysqlDSN(c Connection) string {
	port := c.Port
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, port, c.DbName)
	if c.TLS != "" {
		dsn += "&tls=" + c.TLS
	}
	return dsn
}

// WithObserver sets the operation observer and returns c.
func (c *Catalog) WithObserver(o observability.Observer) *Catalog {
	c.observer = o
	return c
}

// WithLogger sets the logger and returns c.
func (c *Catalog) WithLogger(l Logger) *Catalog {
	c.logger = l
	return c
}

// DB returns the underlying gorm handle.
func (c *Catalog) DB() *gorm.DB {
	return c.db
}

// Migrate creates or updates the catalog tables.
func (c *Catalog) Migrate(ctx context.Context) error {
	start := time.Now()
	err := c.db.WithContext(ctx).AutoMigrate(&classRow{}, &supertypeRow{}, &annotationRow{})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMigrationFailed, wrapTranslated(err))
	}
	c.observeOperation("migrate", "classes", "", time.Since(start), err, 0, nil)
	return err
}

// Ping checks the database connection.
func (c *Catalog) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// Close closes the connection pool.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Catalog) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, md map[string]interface{}) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentCatalog,
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    md,
	})
}

func (c *Catalog) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (c *Catalog) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
