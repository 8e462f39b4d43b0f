package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
// For the sqlite driver Database is the file path.
type DatabaseConfig struct {
	Driver           string
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ResetOnStart     bool
}

// AuthConfig holds the token issuer the API trusts
type AuthConfig struct {
	Domain     string
	Issuer     string
	Audience   string
	JWKSURL    string
	Algorithms []string
	// CacheTTL of zero fetches the key set once per process
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// LoadOptions points Load at optional files
type LoadOptions struct {
	// ConfigFile is a YAML file with the same flat keys as the environment
	ConfigFile string
	// EnvFile is loaded into the environment before reading variables
	EnvFile string
}

// Load reads configuration from defaults, an optional config file, a .env
// file and the environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	setDefaults(v)

	if err := v.BindEnv("server_port", "PORT", "SERVER_PORT"); err != nil {
		return nil, err
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("casting")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Environment: v.GetString("environment"),
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Port:            v.GetInt("server_port"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			IdleTimeout:     v.GetDuration("server_idle_timeout"),
			RequestTimeout:  v.GetDuration("server_request_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
			AllowedOrigins:  splitList(v.GetString("cors_allowed_origins")),
		},
		Database: DatabaseConfig{
			Driver:           strings.ToLower(v.GetString("db_driver")),
			ConnectionString: v.GetString("database_url"),
			Host:             v.GetString("db_host"),
			Port:             v.GetInt("db_port"),
			User:             v.GetString("db_user"),
			Password:         v.GetString("db_password"),
			Database:         v.GetString("db_name"),
			SSLMode:          v.GetString("db_sslmode"),
			MaxOpenConns:     v.GetInt("db_max_open_conns"),
			MaxIdleConns:     v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime:  v.GetDuration("db_conn_max_lifetime"),
			ResetOnStart:     v.GetBool("db_reset_on_start"),
		},
		Auth: loadAuthConfig(v),
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("rate_limit_enabled"),
			Requests: v.GetInt("rate_limit_requests"),
			Window:   v.GetDuration("rate_limit_window"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  v.GetString("log_level"),
			LogFormat: v.GetString("log_format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_read_timeout", 15*time.Second)
	v.SetDefault("server_write_timeout", 30*time.Second)
	v.SetDefault("server_idle_timeout", 60*time.Second)
	v.SetDefault("server_request_timeout", 30*time.Second)
	v.SetDefault("server_shutdown_timeout", 10*time.Second)
	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "casting")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db_reset_on_start", false)

	v.SetDefault("auth0_domain", "")
	v.SetDefault("auth_issuer", "")
	v.SetDefault("api_audience", "")
	v.SetDefault("auth_jwks_url", "")
	v.SetDefault("auth_algorithms", "RS256")
	v.SetDefault("auth_jwks_cache_ttl", time.Duration(0))
	v.SetDefault("auth_http_timeout", 10*time.Second)

	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_requests", 100)
	v.SetDefault("rate_limit_window", time.Minute)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// loadAuthConfig derives the issuer from the tenant domain when no explicit
// issuer is set
func loadAuthConfig(v *viper.Viper) AuthConfig {
	domain := strings.TrimSpace(v.GetString("auth0_domain"))
	issuer := strings.TrimSpace(v.GetString("auth_issuer"))
	if issuer == "" && domain != "" {
		host := strings.TrimSuffix(strings.TrimPrefix(domain, "https://"), "/")
		issuer = "https://" + host + "/"
	}

	return AuthConfig{
		Domain:      domain,
		Issuer:      issuer,
		Audience:    v.GetString("api_audience"),
		JWKSURL:     v.GetString("auth_jwks_url"),
		Algorithms:  splitList(v.GetString("auth_algorithms")),
		CacheTTL:    v.GetDuration("auth_jwks_cache_ttl"),
		HTTPTimeout: v.GetDuration("auth_http_timeout"),
	}
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "pgx":
		if c.Database.ConnectionString == "" {
			if c.Database.Host == "" {
				return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
			}
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	case "sqlite":
		if c.Database.ConnectionString == "" && c.Database.Database == "" {
			return fmt.Errorf("sqlite requires DATABASE_URL or DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.IsProduction() && !c.Auth.Enabled() {
		return fmt.Errorf("auth issuer is required in production: set AUTH0_DOMAIN or AUTH_ISSUER")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requires positive RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Enabled reports whether an issuer is configured
func (a AuthConfig) Enabled() bool {
	return a.Issuer != ""
}

// Validate checks the auth settings that are set are coherent
func (a AuthConfig) Validate() error {
	if !a.Enabled() {
		return nil
	}
	if a.Audience == "" {
		return fmt.Errorf("API_AUDIENCE is required when an issuer is configured")
	}
	if a.CacheTTL < 0 {
		return fmt.Errorf("AUTH_JWKS_CACHE_TTL must not be negative")
	}
	for _, alg := range a.Algorithms {
		if strings.EqualFold(alg, "none") {
			return fmt.Errorf("algorithm %q is not allowed", alg)
		}
	}
	return nil
}

// DSN returns the driver connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	if c.Driver == "sqlite" {
		return c.Database
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c DatabaseConfig) LogString() string {
	if c.Driver == "sqlite" {
		return fmt.Sprintf("file=%s", c.DSN())
	}
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil && u.Host != "" {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// splitList splits a comma separated setting, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
