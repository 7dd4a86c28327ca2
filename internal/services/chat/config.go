// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// ResponderTimeout bounds one responder call. Zero leaves it unbounded.
	ResponderTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.ResponderTimeout < 0 {
		return fmt.Errorf("responder_timeout cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ResponderTimeout: 120 * time.Second,
	}
}
