package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cassandra CassandraConfig `yaml:"cassandra"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Accept,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"300"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// CassandraConfig holds cluster connection settings.
//
// Contact points are optional here: a caller may pass them explicitly to
// the connection provider instead.
type CassandraConfig struct {
	ContactPointsRaw  string        `yaml:"contact_points"     env:"CASSANDRA_CONTACT_POINTS"`
	Port              int           `yaml:"port"               env:"CASSANDRA_PORT"               env-default:"9042"`
	Keyspace          string        `yaml:"keyspace"           env:"CASSANDRA_KEYSPACE"           env-default:"users"`
	Consistency       string        `yaml:"consistency"        env:"CASSANDRA_CONSISTENCY"        env-default:"QUORUM"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"    env:"CASSANDRA_CONNECT_TIMEOUT"    env-default:"5s"`
	RequestTimeout    time.Duration `yaml:"request_timeout"    env:"CASSANDRA_REQUEST_TIMEOUT"    env-default:"10s"`
	QueryTimeout      time.Duration `yaml:"query_timeout"      env:"CASSANDRA_QUERY_TIMEOUT"      env-default:"5s"`
	ReplicationFactor int           `yaml:"replication_factor" env:"CASSANDRA_REPLICATION_FACTOR" env-default:"1"`

	// ContactPoints is parsed from ContactPointsRaw during validation.
	ContactPoints []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"json"`
	Console    bool   `yaml:"console"      env:"LOG_CONSOLE"      env-default:"true"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"1"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"5"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"              env-default:"120"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"1m"`
}
