package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *TelemetryConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Metrics.PersistInterval <= 0 {
		return errors.New("metrics.persist_interval must be positive")
	}
	if c.Metrics.CheckInterval <= 0 {
		return errors.New("metrics.check_interval must be positive")
	}
	if c.Metrics.WindowCapacity < 1 {
		return errors.New("metrics.window_capacity must be >= 1")
	}

	if c.Fanout.HeartbeatInterval <= 0 {
		return errors.New("fanout.heartbeat_interval must be positive")
	}
	if c.Fanout.QueueSize < 1 {
		return errors.New("fanout.queue_size must be >= 1")
	}

	if c.Database.Enabled {
		if err := c.Database.History.validate("database.history"); err != nil {
			return err
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
