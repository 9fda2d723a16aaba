package pagination

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/linkpager/pkg/transport"
)

// Direction restricts which fronts expand from the start page.
type Direction int

const (
	// Both expands forward and backward.
	Both Direction = iota
	// Forward follows rel="next" only.
	Forward
	// Backward follows rel="prev" only.
	Backward
)

// String returns the relation-style name of d.
func (d Direction) String() string {
	switch d {
	case Both:
		return "both"
	case Forward:
		return "next"
	case Backward:
		return "prev"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "next"/"forward", "prev"/"previous"/"backward",
// and ""/"both".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return Both, nil
	case "next", "forward":
		return Forward, nil
	case "prev", "previous", "backward":
		return Backward, nil
	default:
		return Both, fmt.Errorf("unknown direction %q", s)
	}
}

// Option configures a traversal.
// Config, Limit and Direction values are Options themselves.
type Option interface {
	apply(*Config)
}

// Config holds the full traversal configuration.
type Config struct {
	// Limit caps the number of requests issued across both fronts (0 = no limit)
	Limit int

	// Direction restricts expansion from the start page
	Direction Direction

	// Options supplies transport options per request (nil = none)
	Options transport.OptionsProvider

	// OnPartialFailure keeps failed pages as data instead of failing the traversal
	OnPartialFailure bool
}

// apply replaces everything set by earlier options.
func (c Config) apply(dst *Config) {
	*dst = c
}

// Limit is shorthand for Config.Limit.
type Limit int

func (l Limit) apply(c *Config) {
	c.Limit = int(l)
}

func (d Direction) apply(c *Config) {
	c.Direction = d
}

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) {
	f(c)
}

// WithOptions sets the per-request transport options provider.
func WithOptions(p transport.OptionsProvider) Option {
	return optionFunc(func(c *Config) {
		c.Options = p
	})
}

// WithStaticOptions passes the same transport options to every request.
func WithStaticOptions(o transport.RequestOptions) Option {
	return WithOptions(transport.Static(o))
}

// WithPartialFailure enables the lenient failure policy.
func WithPartialFailure() Option {
	return optionFunc(func(c *Config) {
		c.OnPartialFailure = true
	})
}

// resolveConfig folds opts into a Config and validates it.
func resolveConfig(opts []Option) (Config, error) {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}

	if cfg.Limit < 0 {
		return cfg, fmt.Errorf("%w (got %d)", ErrInvalidLimit, cfg.Limit)
	}

	switch cfg.Direction {
	case Both, Forward, Backward:
	default:
		return cfg, fmt.Errorf("invalid direction %d", int(cfg.Direction))
	}

	return cfg, nil
}
