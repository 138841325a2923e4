package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	DatabaseName string
	StoreTimeout time.Duration
	AMQPURL      string
	AMQPQueue    string
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("quickpoll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (DSN, mongodb:// URI or redis address)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Store type (memory, sqlite, postgres, mongo or redis)")
	fs.StringVar(&cfg.DatabaseName, "db-name", "", "Database name (mongo)")
	fs.DurationVar(&cfg.StoreTimeout, "timeout", 0, "Timeout for a single store call")

	// Event publishing (optional)
	fs.StringVar(&cfg.AMQPURL, "amqp", "", "RabbitMQ URL for poll events")
	fs.StringVar(&cfg.AMQPQueue, "queue", "", "RabbitMQ queue for poll events")

	fs.StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Real environment wins over the dotenv file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8090 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = StoreSQLite
		}
	}
	switch cfg.DatabaseType {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo, StoreRedis:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != StoreMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseName == "" {
		cfg.DatabaseName = os.Getenv("DATABASE_NAME")
		if cfg.DatabaseName == "" {
			cfg.DatabaseName = "polls"
		}
	}

	if cfg.StoreTimeout == 0 {
		if s := os.Getenv("STORE_TIMEOUT"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid STORE_TIMEOUT env variable")
			}
			cfg.StoreTimeout = d
		} else {
			cfg.StoreTimeout = 5 * time.Second
		}
	}

	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("RABBITMQ_URL")
	}
	if cfg.AMQPQueue == "" {
		cfg.AMQPQueue = os.Getenv("RABBITMQ_QUEUE")
		if cfg.AMQPQueue == "" {
			cfg.AMQPQueue = "poll-events"
		}
	}

	return cfg, nil
}
