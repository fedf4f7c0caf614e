package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

// Supported storage drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBConfig holds relational database configuration
type DBConfig struct {
	Driver          string          `env:"DRIVER" envDefault:"mongo"`
	Host            string          `env:"HOST" envDefault:"localhost"`
	Port            string          `env:"PORT" envDefault:"5432"`
	User            string          `env:"USER" envDefault:"postgres"`
	Password        string          `env:"PASSWORD" envDefault:"password"`
	DBName          string          `env:"NAME" envDefault:"user_service"`
	SSLMode         string          `env:"SSL_MODE" envDefault:"disable"`
	SQLitePath      string          `env:"SQLITE_PATH" envDefault:"user_service.db"`
	MaxIdleConns    int             `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int             `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration   `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	LogLevel        logger.LogLevel `env:"LOG_LEVEL" envDefault:"warn"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MongoConfig holds document database configuration
type MongoConfig struct {
	URI            string        `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE" envDefault:"user_service"`
	Collection     string        `env:"COLLECTION" envDefault:"users"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"5000"`
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// SecurityConfig holds password hashing configuration
type SecurityConfig struct {
	BcryptSaltRounds int `env:"BCRYPT_SALT_ROUNDS" envDefault:"10"`
}

// HashCost returns the salt rounds clamped into the range bcrypt accepts
func (c SecurityConfig) HashCost() int {
	switch {
	case c.BcryptSaltRounds < bcrypt.MinCost:
		return bcrypt.MinCost
	case c.BcryptSaltRounds > bcrypt.MaxCost:
		return bcrypt.MaxCost
	default:
		return c.BcryptSaltRounds
	}
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string `env:"METRICS_PREFIX" envDefault:"user_service"`
}

// Config holds all configuration
type Config struct {
	ServiceName string      `env:"SERVICE_NAME" envDefault:"user-service"`
	DB          DBConfig    `envPrefix:"DB_"`
	Mongo       MongoConfig `envPrefix:"MONGO_"`
	Server      ServerConfig
	Security    SecurityConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	return Parse()
}

// Parse builds the configuration from environment variables only
func Parse() (*Config, error) {
	cfg := &Config{}
	opts := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(logger.Info): parseLogLevel,
		},
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.DB.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	fields := []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("db_driver", c.DB.Driver),
		zap.Int("bcrypt_salt_rounds", c.Security.HashCost()),
	}

	switch c.DB.Driver {
	case DriverMongo:
		fields = append(fields,
			zap.String("mongo_database", c.Mongo.Database),
			zap.String("mongo_collection", c.Mongo.Collection))
	case DriverPostgres:
		fields = append(fields,
			zap.String("db_host", c.DB.Host),
			zap.String("db_port", c.DB.Port),
			zap.String("db_user", c.DB.User),
			zap.String("db_name", c.DB.DBName))
	case DriverSQLite:
		fields = append(fields, zap.String("sqlite_path", c.DB.SQLitePath))
	}
	return fields
}

func parseLogLevel(value string) (any, error) {
	switch value {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	default:
		return nil, fmt.Errorf("unknown gorm log level %q", value)
	}
}
