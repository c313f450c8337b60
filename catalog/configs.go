package catalog

import (
	"context"
	"time"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config describes the catalog database.
type Config struct {
	// Driver is DriverPostgres or DriverMySQL (also used for MariaDB).
	//
	// Default: "postgres"
	Driver string `yaml:"driver" env:"DRIVER" envDefault:"postgres"`

	Connection Connection `yaml:"connection"`

	ConnectionDetails ConnectionDetails `yaml:"connection_details"`

	// RootType is treated as an ancestor of every class.
	//
	// Default: "java.lang.Object"
	RootType string `yaml:"root_type" env:"ROOT_TYPE"`

	// AutoMigrate creates the tables when the catalog starts.
	AutoMigrate bool `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
}

// Connection holds the database address and credentials.
type Connection struct {
	Host     string `yaml:"host" env:"HOST" envDefault:"localhost"`
	Port     string `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD" json:"-"` //nolint:gosec
	DbName   string `yaml:"db_name" env:"DB_NAME"`

	// SSLMode is passed to Postgres, e.g. "disable" or "require".
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE" envDefault:"disable"`

	// TLS is passed to MySQL as the tls DSN parameter.
	TLS string `yaml:"tls" env:"TLS"`
}

// ConnectionDetails tunes the connection pool.
type ConnectionDetails struct {
	// Default: 50
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`

	// Default: 25
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`

	// Default: 1m
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// Logger is the subset of logger.Logger used by the catalog.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
