package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the settings of the tracking API server.
type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	DispatchWorkers int    `env:"DISPATCH_WORKERS, default=8"`
	NodeID          uint16 `env:"NODE_ID,          default=1"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=livetracker"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// TrackerConfig holds the settings of the tracking client.
type TrackerConfig struct {
	ServerURL    string        `env:"TRACKER_SERVER_URL,    default=http://localhost:8080"`
	Token        string        `env:"TRACKER_TOKEN"`
	PollInterval time.Duration `env:"TRACKER_POLL_INTERVAL, default=5s"`
	HTTPTimeout  time.Duration `env:"TRACKER_HTTP_TIMEOUT,  default=0s"`
	LogLevel     string        `env:"LOG_LEVEL,             default=info"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadTracker reads the tracking client configuration. Unlike Load it returns
// the error so the CLI can report it.
func LoadTracker(ctx context.Context) (*TrackerConfig, error) {
	var cfg TrackerConfig
	if err := process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads an optional .env file. A missing file is not an error.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

func process(ctx context.Context, cfg any) error {
	return envconfig.Process(ctx, cfg)
}
