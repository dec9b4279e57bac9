package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeDatabase = "database"
	ModeMemory   = "memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string        `json:"server_address"`
	DatabaseDSN      string        `json:"database_dsn"`
	PgMigrationsPath string        `json:"pg_migrations_path"`
	EnableHTTPS      bool          `json:"enable_https"`
	TLSCertPath      string        `json:"tls_cert_path"`
	TLSKeyPath       string        `json:"tls_key_path"`
	GRPCAddress      string        `json:"grpc_address"`
	LogLevel         string        `json:"log_level"`
	ShutdownTimeout  time.Duration `json:"-"`
	Mode             string        `json:"-"`
}

// NewConfig читает конфигурацию из аргументов командной строки, окружения и файлов.
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load собирает конфигурацию. Приоритет: флаги, переменные окружения,
// JSON-файл конфигурации, значения по умолчанию.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ошибку игнорируем, если файла нет

	fs := flag.NewFlagSet("recommender", flag.ContinueOnError)
	serverAddress := fs.String("a", "", "server address")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	migrationsPath := fs.String("m", "", "path to SQL migrations (embedded by default)")
	enableHTTPS := fs.Bool("s", false, "enable HTTPS")
	tlsCertPath := fs.String("cert", "", "path to TLS certificate")
	tlsKeyPath := fs.String("key", "", "path to TLS key")
	grpcAddress := fs.String("g", "", "gRPC health server address")
	logLevel := fs.String("l", "", "log level (debug, info)")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Значения по умолчанию
	cfg := &Config{
		ServerAddress: "localhost:8080",
		TLSCertPath:   "cert.pem",
		TLSKeyPath:    "key.pem",
		LogLevel:      "info",
	}

	// Загружаем JSON-конфигурацию (если указана)
	if *configPath == "" {
		*configPath = v.GetString("CONFIG")
	}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", *configPath, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", *configPath, err)
		}
	}

	// Если переменные окружения заданы, они перекрывают JSON
	override := func(key string, target *string) {
		if val := v.GetString(key); val != "" {
			*target = val
		}
	}
	override("SERVER_ADDRESS", &cfg.ServerAddress)
	override("DATABASE_DSN", &cfg.DatabaseDSN)
	override("PG_MIGRATIONS_PATH", &cfg.PgMigrationsPath)
	override("TLS_CERT_PATH", &cfg.TLSCertPath)
	override("TLS_KEY_PATH", &cfg.TLSKeyPath)
	override("GRPC_ADDRESS", &cfg.GRPCAddress)
	override("LOG_LEVEL", &cfg.LogLevel)
	if v.GetString("ENABLE_HTTPS") != "" {
		cfg.EnableHTTPS = v.GetBool("ENABLE_HTTPS")
	}
	cfg.ShutdownTimeout = v.GetDuration("SHUTDOWN_TIMEOUT")

	// Флаги имеют наивысший приоритет
	flagOverride := func(val string, target *string) {
		if val != "" {
			*target = val
		}
	}
	flagOverride(*serverAddress, &cfg.ServerAddress)
	flagOverride(*databaseDSN, &cfg.DatabaseDSN)
	flagOverride(*migrationsPath, &cfg.PgMigrationsPath)
	flagOverride(*tlsCertPath, &cfg.TLSCertPath)
	flagOverride(*tlsKeyPath, &cfg.TLSKeyPath)
	flagOverride(*grpcAddress, &cfg.GRPCAddress)
	flagOverride(*logLevel, &cfg.LogLevel)
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}

	// Определяем режим работы
	if cfg.DatabaseDSN != "" {
		cfg.Mode = ModeDatabase
	} else {
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return fmt.Errorf("TLS certificate and key are required when HTTPS is enabled")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}
