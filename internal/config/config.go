package config

import "time"

// TelemetryConfig is the root configuration for a telemetryd instance.
type TelemetryConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Fanout   FanoutConfig   `yaml:"fanout"`
	Database DatabaseConfig `yaml:"database"`
}

// InstanceConfig identifies this telemetry daemon.
type InstanceConfig struct {
	ID   string `yaml:"id"`
	Site string `yaml:"site"`
}

// ServerConfig holds the HTTP/WebSocket ingress settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MetricsConfig holds telemetry engine settings.
type MetricsConfig struct {
	PersistInterval time.Duration `yaml:"persist_interval"`
	CheckInterval   time.Duration `yaml:"check_interval"`
	LogDir          string        `yaml:"log_dir"`
	WindowCapacity  int           `yaml:"window_capacity"`
}

// FanoutConfig holds subscriber registry and heartbeat settings.
type FanoutConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	QueueSize         int           `yaml:"queue_size"`
}

// DatabaseConfig holds the optional snapshot history database.
// When disabled, snapshots are persisted to the NDJSON log only.
type DatabaseConfig struct {
	Enabled bool     `yaml:"enabled"`
	History DBConfig `yaml:"history"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
