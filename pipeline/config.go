package pipeline

import (
	"fmt"
	"time"

	"github.com/svnscha/knowledge/core"
)

// Config controls pipeline batching and timing.
type Config struct {
	// BatchSize is the maximum number of pending records fetched per cycle.
	BatchSize int

	// CycleDelay is the pause between processing cycles.
	CycleDelay time.Duration

	// StartupDelay is the warm-up pause before the first cycle, giving the
	// embedding service time to come up.
	StartupDelay time.Duration

	// SourceType is stamped on every embedding record the pipeline creates.
	SourceType string
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:    10,
		CycleDelay:   10 * time.Second,
		StartupDelay: 5 * time.Second,
		SourceType:   core.SourceTypeMessage,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: BatchSize must be positive", ErrInvalidConfig)
	}
	if c.CycleDelay < 0 {
		return fmt.Errorf("%w: CycleDelay must not be negative", ErrInvalidConfig)
	}
	if c.StartupDelay < 0 {
		return fmt.Errorf("%w: StartupDelay must not be negative", ErrInvalidConfig)
	}
	if c.SourceType == "" {
		return fmt.Errorf("%w: SourceType is required", ErrInvalidConfig)
	}
	return nil
}
