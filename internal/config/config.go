package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is not set")
	ErrInvalidTTL    = errors.New("token ttl must be positive")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrIncompleteDB  = errors.New("postgres storage requires db user and db_name")
)

type Config struct {
	Env           string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"debug"`
	HTTP          HTTP          `yaml:"http"`
	Auth          Auth          `yaml:"auth"`
	Storage       Storage       `yaml:"storage"`
	Redis         Redis         `yaml:"redis"`
	Kafka         Kafka         `yaml:"kafka"`
	Elasticsearch Elasticsearch `yaml:"elasticsearch"`
}

type HTTP struct {
	Host              string        `yaml:"host" env:"HOST"`
	Port              int           `yaml:"port" env:"PORT" env-default:"3001"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
	CORSOrigins       []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	Users     []User        `yaml:"users"`
}

// User is a seeded account. PasswordHash is a bcrypt hash, see cmd/hashpass.
type User struct {
	Id           int64  `yaml:"id"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	SkipSeed   bool   `yaml:"skip_seed" env:"STORAGE_SKIP_SEED"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"tasks.db"`
	DB         DB     `yaml:"db"`
}

type DB struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"db_name" env:"DB_NAME"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Kafka struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"task-events"`
}

type Elasticsearch struct {
	Addresses []string `yaml:"addresses" env:"ES_ADDRESSES" env-separator:","`
	Index     string   `yaml:"index" env:"ES_INDEX" env-default:"tasks"`
}

// Address is the listen address for the HTTP server.
func (h HTTP) Address() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads an optional .env file, then the YAML file named by
// CONFIG_PATH (if any), then the environment.
func LoadConfig() (*Config, error) {
	godotenv.Load()
	return Load(os.Getenv("CONFIG_PATH"))
}

func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return ErrInvalidTTL
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DB.User == "" || c.Storage.DB.DBName == "" {
			return ErrIncompleteDB
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}
	return nil
}
