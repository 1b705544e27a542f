package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultConfigPath = "src/internal/config/cfg.yml"

type Configuration struct {
	Logs      LogsSettings      `mapstructure:"logs"`
	App       Application       `mapstructure:"app"`
	Database  Database          `mapstructure:"database"`
	Queue     QueueConfig       `mapstructure:"queue"`
	Redis     Redis             `mapstructure:"redis"`
	Security  SecuritySettings  `mapstructure:"security"`
	Server    ServerSettings    `mapstructure:"server"`
	Cors      CorsSettings      `mapstructure:"cors"`
	Bootstrap BootstrapSettings `mapstructure:"bootstrap"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name    string `mapstructure:"name"`
	Timeout int    `mapstructure:"timeout"`
	Version string `mapstructure:"version"`
}

type Database struct {
	Url          string `mapstructure:"url"`
	DbName       string `mapstructure:"dbname"`
	Debug        bool   `mapstructure:"debug"`
	MaxOpenConns int    `mapstructure:"max-open-conns"`
	Timeout      int    `mapstructure:"timeout"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange-type"`
	RoutingKey   string `mapstructure:"routing-key"`
	Durable      bool   `mapstructure:"durable"`
	AutoDelete   bool   `mapstructure:"auto-delete"`
	Internal     bool   `mapstructure:"internal"`
	NoWait       bool   `mapstructure:"no-wait"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	UserSecret             string `mapstructure:"user-secret"`
	AdminSecret            string `mapstructure:"admin-secret"`
	TokenExpirationMinutes int    `mapstructure:"token-expiration-minutes"`
	BcryptCost             int    `mapstructure:"bcrypt-cost"`
	LoginMaxAttempts       int    `mapstructure:"login-max-attempts"`
	LoginWindowMinutes     int    `mapstructure:"login-window-minutes"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
	// TrustedProxies lists proxy addresses or CIDRs whose forwarding headers are honored.
	// Empty means the client address is always the socket peer.
	TrustedProxies []string `mapstructure:"trusted-proxies"`
}

type CorsSettings struct {
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type BootstrapSettings struct {
	AdminEmail    string `mapstructure:"admin-email"`
	AdminPassword string `mapstructure:"admin-password"`
	AdminName     string `mapstructure:"admin-name"`
}

func Load() *Configuration {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := Read(path)
	if err != nil {
		logrus.WithError(err).Panicf("Error reading config file %s", path)
	}
	logrus.Info("Configuration loaded")

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Panic("Invalid configuration")
	}

	return cfg
}

// Read parses the yml file at path without applying environment overrides.
func Read(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	v.SetDefault("app.timeout", 10)
	v.SetDefault("database.timeout", 10)
	v.SetDefault("security.token-expiration-minutes", 1440)
	v.SetDefault("server.port", "8000")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Cors.AllowedOrigins = NormalizeOrigins(cfg.Cors.AllowedOrigins)
	return &cfg, nil
}

func applyEnv(cfg *Configuration) {
	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		cfg.Security.UserSecret = secret
	}

	if secret := os.Getenv("ADMIN_SECRET_KEY"); secret != "" {
		cfg.Security.AdminSecret = secret
	}

	if dbUrl := os.Getenv("DATABASE_URL"); dbUrl != "" {
		cfg.Database.Url = dbUrl
	}

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.DbName = dbName
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Cors.AllowedOrigins = NormalizeOrigins(strings.Split(origins, ","))
	}

	if email := os.Getenv("DEFAULT_ADMIN_EMAIL"); email != "" {
		cfg.Bootstrap.AdminEmail = email
	}

	if password := os.Getenv("DEFAULT_ADMIN_PASSWORD"); password != "" {
		cfg.Bootstrap.AdminPassword = password
	}

	if name := os.Getenv("DEFAULT_ADMIN_NAME"); name != "" {
		cfg.Bootstrap.AdminName = name
	}

	if redisUrl := os.Getenv("REDIS_URL"); redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	if rabbitmqUrl := os.Getenv("RABBITMQ_URL"); rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		cfg.Server.TrustedProxies = NormalizeOrigins(strings.Split(proxies, ","))
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logs.Level = level
	}
}

// Validate rejects configurations the service cannot run safely with.
func (c *Configuration) Validate() error {
	if c.Security.UserSecret == "" || c.Security.AdminSecret == "" {
		return errors.New("both user and admin signing secrets are required")
	}
	if c.Security.UserSecret == c.Security.AdminSecret {
		return errors.New("user and admin signing secrets must differ")
	}
	if c.Security.TokenExpirationMinutes <= 0 {
		return errors.New("token expiration must be positive")
	}
	if c.Database.Url == "" {
		return errors.New("database url is required")
	}
	return nil
}

// NormalizeOrigins trims whitespace and trailing slashes and drops empty entries.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
