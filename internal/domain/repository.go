// Package domain defines the core types and interfaces of the BCE service.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Exception items
	SaveExceptionItem(ctx context.Context, tenantID string, item *ExceptionItem) error
	GetExceptionItem(ctx context.Context, tenantID string, itemNo int) (*ExceptionItem, error)

	// Booking code to cabin reference data
	SaveRBDCabins(ctx context.Context, tenantID string, rows []RBDCabin) error
	ListRBDCabins(ctx context.Context, tenantID string) ([]RBDCabin, error)

	// Travel segment indicators
	SaveTSIDefinition(ctx context.Context, tenantID string, def *TSIDefinition) error
	ListTSIDefinitions(ctx context.Context, tenantID string) ([]*TSIDefinition, error)

	// Zones
	SaveZone(ctx context.Context, tenantID string, zone *Zone) error
	ListZones(ctx context.Context, tenantID string) ([]*Zone, error)

	// Verdicts
	SaveVerdict(ctx context.Context, tenantID string, v *Verdict) error
	GetVerdict(ctx context.Context, tenantID string, verdictID string) (*Verdict, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `yaml:"driver" json:"driver" env:"BCE_DB_DRIVER"`

	// SQLite specific
	SQLitePath string `yaml:"sqlitePath" json:"sqlitePath" env:"BCE_SQLITE_PATH"`

	// PostgreSQL specific
	PostgresHost     string `yaml:"postgresHost" json:"postgresHost" env:"BCE_PG_HOST"`
	PostgresPort     int    `yaml:"postgresPort" json:"postgresPort" env:"BCE_PG_PORT"`
	PostgresUser     string `yaml:"postgresUser" json:"postgresUser" env:"BCE_PG_USER"`
	PostgresPassword string `yaml:"postgresPassword" json:"-" env:"BCE_PG_PASSWORD"`
	PostgresDB       string `yaml:"postgresDb" json:"postgresDb" env:"BCE_PG_DB"`
	PostgresSSLMode  string `yaml:"postgresSslMode" json:"postgresSslMode" env:"BCE_PG_SSLMODE"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"maxOpenConns" json:"maxOpenConns" env:"BCE_DB_MAX_OPEN"`
	MaxIdleConns    int           `yaml:"maxIdleConns" json:"maxIdleConns" env:"BCE_DB_MAX_IDLE"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" json:"connMaxLifetime" env:"BCE_DB_CONN_LIFETIME"`
}
