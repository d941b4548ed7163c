package domain

import "time"

// Config holds the complete BCE service configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`

	// Tier selects the infrastructure preset.
	Tier Tier `yaml:"tier" json:"tier" env:"BCE_TIER"`

	Validator  ValidatorConfig  `yaml:"validator" json:"validator"`
	Repository RepositoryConfig `yaml:"repository" json:"repository"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	EventBus   EventBusConfig   `yaml:"eventBus" json:"eventBus"`
	Worker     WorkerConfig     `yaml:"worker" json:"worker"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"BCE_HOST"`
	Port         int           `yaml:"port" json:"port" env:"BCE_PORT"`
	ReadTimeout  time.Duration `yaml:"readTimeout" json:"readTimeout" env:"BCE_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" json:"writeTimeout" env:"BCE_WRITE_TIMEOUT"`
}

// ValidatorConfig holds the construction flags of every validator the
// service builds.
type ValidatorConfig struct {
	PartOfLocalJourney bool `yaml:"partOfLocalJourney" json:"partOfLocalJourney" env:"BCE_PART_OF_LOCAL_JOURNEY"`
	SkipFlownCat31     bool `yaml:"skipFlownCat31" json:"skipFlownCat31" env:"BCE_SKIP_FLOWN_CAT31"`
	UseExceptionIndex  bool `yaml:"useExceptionIndex" json:"useExceptionIndex" env:"BCE_EXCEPTION_INDEX"`
}

// WorkerConfig holds settings of the asynchronous validation worker.
type WorkerConfig struct {
	Enabled     bool     `yaml:"enabled" json:"enabled" env:"BCE_WORKER"`
	TenantIDs   []string `yaml:"tenantIds" json:"tenantIds" env:"BCE_WORKER_TENANTS" env-separator:","`
	WorkerCount int      `yaml:"workerCount" json:"workerCount" env:"BCE_WORKER_COUNT"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"BCE_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format" env:"BCE_LOG_FORMAT"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs the W3C trace context propagator, so requests
	// carrying a traceparent header keep their trace ID.
	Enabled bool `yaml:"enabled" json:"enabled" env:"BCE_TRACING"`
}

// Tier represents the deployment tier.
type Tier string

const (
	// TierCommunity runs on SQLite, Go channels and an in-process LRU.
	TierCommunity Tier = "community"

	// TierPro runs on PostgreSQL, NATS and Redis.
	TierPro Tier = "pro"
)

// DefaultConfig returns the Community tier configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Tier: TierCommunity,
		Validator: ValidatorConfig{
			UseExceptionIndex: true,
		},
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./bce.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
			SequenceTTL:  10 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Worker: WorkerConfig{
			Enabled:     true,
			WorkerCount: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ProConfig returns the Pro tier configuration.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "bce",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
		LocalTTL:       time.Minute,
		SequenceTTL:    30 * time.Minute,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5 * time.Second,
	}
	cfg.Worker.WorkerCount = 16
	cfg.Tracing.Enabled = true
	return cfg
}
