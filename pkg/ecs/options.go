package ecs

import (
	"math"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxEntities is the default size of the entity ID space, including the null entity.
	DefaultMaxEntities = 5000
	// DefaultMaxComponents is the default number of distinct component types.
	DefaultMaxComponents = maskBits
)

// worldOptionsEnv holds the world configuration that can be set via environment variables.
type worldOptionsEnv struct {
	// Size of the entity ID space. Live entity IDs lie in [1, MaxEntities).
	MaxEntities int `env:"ECS_MAX_ENTITIES" envDefault:"5000"`

	// Maximum number of distinct component types, at most 64.
	MaxComponents int `env:"ECS_MAX_COMPONENTS" envDefault:"64"`
}

// loadWorldOptionsEnv loads the world configuration from environment variables.
func loadWorldOptionsEnv() (worldOptionsEnv, error) {
	cfg := worldOptionsEnv{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse world config")
	}
	return cfg, nil
}

// toOptions converts the environment configuration to WorldOptions.
func (cfg worldOptionsEnv) toOptions() WorldOptions {
	return WorldOptions{
		MaxEntities:   cfg.MaxEntities,
		MaxComponents: cfg.MaxComponents,
		Logger:        nil,
	}
}

// WorldOptions configures a World. Zero values fall back to the environment, then to the defaults.
type WorldOptions struct {
	MaxEntities   int             // Size of the entity ID space, including the null entity
	MaxComponents int             // Maximum number of distinct component types
	Logger        *zerolog.Logger // Logger for world events, discards everything if nil
}

// newDefaultWorldOptions creates WorldOptions with default values.
func newDefaultWorldOptions() WorldOptions {
	return WorldOptions{
		MaxEntities:   DefaultMaxEntities,
		MaxComponents: DefaultMaxComponents,
		Logger:        nil,
	}
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *WorldOptions) apply(newOpt WorldOptions) {
	if newOpt.MaxEntities != 0 {
		opt.MaxEntities = newOpt.MaxEntities
	}
	if newOpt.MaxComponents != 0 {
		opt.MaxComponents = newOpt.MaxComponents
	}
	if newOpt.Logger != nil {
		opt.Logger = newOpt.Logger
	}
}

// validate checks that all options are set and valid.
func (opt *WorldOptions) validate() error {
	if opt.MaxEntities < 2 {
		return eris.Errorf("max entities must be at least 2, got %d", opt.MaxEntities)
	}
	if int64(opt.MaxEntities) > math.MaxUint32 {
		return eris.Errorf("max entities must not exceed %d, got %d", uint64(math.MaxUint32), opt.MaxEntities)
	}
	if opt.MaxComponents < 1 {
		return eris.Errorf("max components must be at least 1, got %d", opt.MaxComponents)
	}
	if opt.MaxComponents > maskBits {
		return eris.Errorf("max components must not exceed the mask width %d, got %d", maskBits, opt.MaxComponents)
	}
	return nil
}
