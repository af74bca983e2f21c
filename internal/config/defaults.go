package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort        = 8080
	DefaultWriteTimeout      = 5 * time.Second
	DefaultPersistInterval   = 60 * time.Second
	DefaultCheckInterval     = 1 * time.Second
	DefaultLogDir            = "logs"
	DefaultWindowCapacity    = 1000
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultQueueSize         = 32
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
)

func (c *TelemetryConfig) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}

	// Metrics defaults
	if c.Metrics.PersistInterval == 0 {
		c.Metrics.PersistInterval = DefaultPersistInterval
	}
	if c.Metrics.CheckInterval == 0 {
		c.Metrics.CheckInterval = DefaultCheckInterval
	}
	if c.Metrics.LogDir == "" {
		c.Metrics.LogDir = DefaultLogDir
	}
	if c.Metrics.WindowCapacity == 0 {
		c.Metrics.WindowCapacity = DefaultWindowCapacity
	}

	// Fanout defaults
	if c.Fanout.HeartbeatInterval == 0 {
		c.Fanout.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Fanout.QueueSize == 0 {
		c.Fanout.QueueSize = DefaultQueueSize
	}

	// Database defaults (only meaningful when enabled)
	applyDBDefaults(&c.Database.History)
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
