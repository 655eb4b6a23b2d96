package recurrence

import (
	"io"
	"log/slog"
)

// SearchWindowDays bounds NextOccurrence and PreviousOccurrence. An instance
// further away than this from the query date is reported as absent even if
// the rule would eventually produce it.
const SearchWindowDays = 365

// DefaultMaxOccurrences is the cap ExpandBounded applies when the config
// leaves MaxOccurrences unset. Expand itself is never capped.
const DefaultMaxOccurrences = 5000

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Logger receives debug output for rejected inputs and warnings for
	// truncated expansions. If nil, logging is disabled.
	Logger *slog.Logger

	// SearchWindowDays is the look-ahead/look-behind used by the
	// next/previous occurrence queries. Zero means SearchWindowDays.
	SearchWindowDays int

	// MaxOccurrences is the maximum number of instances ExpandBounded
	// returns before reporting truncation. Zero means DefaultMaxOccurrences.
	MaxOccurrences int
}

// DefaultEngineConfig provides sensible defaults for interactive views
var DefaultEngineConfig = EngineConfig{
	SearchWindowDays: SearchWindowDays,
	MaxOccurrences:   DefaultMaxOccurrences,
}

// LongRangeConfig widens the search window to ten years, for rules with a
// yearly pattern and large intervals
var LongRangeConfig = EngineConfig{
	SearchWindowDays: 10 * SearchWindowDays,
	MaxOccurrences:   4 * DefaultMaxOccurrences,
}

func (c EngineConfig) normalized() EngineConfig {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.SearchWindowDays <= 0 {
		c.SearchWindowDays = SearchWindowDays
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = DefaultMaxOccurrences
	}
	return c
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	config = config.normalized()
	return &Engine{
		config: config,
		logger: config.Logger,
	}
}
