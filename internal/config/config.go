// Package config loads the server configuration: an optional YAML file,
// then environment overrides, then defaults and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MinTokenSecretLength matches what auth.NewTokenService accepts.
const MinTokenSecretLength = 16

// Load reads configPath (if not empty), applies environment overrides and
// validates the result. With no file, configuration comes from the
// environment alone, which is how hosted deployments run.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvPort                  = "PORT"
	EnvTokenSecret           = "ACCESS_TOKEN_SECRET"
	EnvProtectRoleAssignment = "PROTECT_ROLE_ASSIGNMENT"
	EnvStorageDriver         = "STORAGE_DRIVER"
	EnvMongoURI              = "MONGODB_URI"
	EnvMongoUser             = "DB_USER"
	EnvMongoPassword         = "DB_PASS"
	EnvSQLitePath            = "SQLITE_PATH"
	EnvPaymentSecretKey      = "PAYMENT_SECRET_KEY"
	EnvLogLevel              = "LOG_LEVEL"
	EnvLogFormat             = "LOG_FORMAT"
)

func applyEnvironmentOverrides(config *Config) {
	if portStr := os.Getenv(EnvPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Server.Port = port
		}
	}

	if secret := os.Getenv(EnvTokenSecret); secret != "" {
		config.Auth.TokenSecret = secret
	}

	if protect := os.Getenv(EnvProtectRoleAssignment); protect != "" {
		if b, err := strconv.ParseBool(protect); err == nil {
			config.Auth.ProtectRoleAssignment = b
		}
	}

	if driver := os.Getenv(EnvStorageDriver); driver != "" {
		config.Storage.Driver = driver
	}

	if uri := os.Getenv(EnvMongoURI); uri != "" {
		config.Storage.MongoURI = uri
	}

	if user := os.Getenv(EnvMongoUser); user != "" {
		config.Storage.MongoUser = user
	}

	if pass := os.Getenv(EnvMongoPassword); pass != "" {
		config.Storage.MongoPassword = pass
	}

	if path := os.Getenv(EnvSQLitePath); path != "" {
		config.Storage.SQLitePath = path
	}

	if key := os.Getenv(EnvPaymentSecretKey); key != "" {
		config.Payment.SecretKey = key
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}

	if format := os.Getenv(EnvLogFormat); format != "" {
		config.Log.Format = format
	}
}

func validateConfig(config *Config) error {
	if err := config.validateServerConfig(); err != nil {
		return err
	}
	if err := config.validateAuthConfig(); err != nil {
		return err
	}
	if err := config.validateStorageConfig(); err != nil {
		return err
	}
	if err := config.validateLogConfig(); err != nil {
		return err
	}
	config.validateCORSConfig()
	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = DefaultServerConfig.ShutdownTimeoutSeconds
	}
	return nil
}

func (c *Config) validateAuthConfig() error {
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required (or set %s)", EnvTokenSecret)
	}
	if len(c.Auth.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("auth.token_secret must be at least %d characters", MinTokenSecretLength)
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = DefaultAuthConfig.BcryptCost
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 31")
	}
	return nil
}

func (c *Config) validateStorageConfig() error {
	s := &c.Storage
	if s.Driver == "" {
		s.Driver = DefaultStorageConfig.Driver
	}
	if s.Database == "" {
		s.Database = DefaultStorageConfig.Database
	}

	switch s.Driver {
	case StorageMongo:
		if s.MongoURI != "" {
			return nil
		}
		if s.MongoUser == "" || s.MongoPassword == "" {
			return fmt.Errorf("storage: mongo needs mongo_uri (%s) or mongo_user and mongo_password (%s, %s)",
				EnvMongoURI, EnvMongoUser, EnvMongoPassword)
		}
		if s.MongoCluster == "" {
			s.MongoCluster = DefaultStorageConfig.MongoCluster
		}
		s.MongoURI = atlasURI(s.MongoUser, s.MongoPassword, s.MongoCluster)
	case StorageSQLite:
		if s.SQLitePath == "" {
			s.SQLitePath = DefaultStorageConfig.SQLitePath
		}
	default:
		return fmt.Errorf("invalid storage driver: %s, options are %s or %s", s.Driver, StorageMongo, StorageSQLite)
	}
	return nil
}

// atlasURI builds an SRV connection string; the credentials are escaped
// because Atlas passwords routinely contain '@' or ':'.
func atlasURI(user, password, cluster string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, password),
		Host:     cluster,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCORSConfig() {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", l.Level)
}

// NewLogger builds the process logger described by l.
func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
