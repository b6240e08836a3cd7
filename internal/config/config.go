// Package config loads run configurations from a YAML file, SWARMFIT_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/swarmfit/internal/swarm"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SWARMFIT_NPART=40.
const EnvPrefix = "SWARMFIT"

// Run describes one optimization run.
type Run struct {
	Algorithm  string         `mapstructure:"algorithm" json:"algorithm" yaml:"algorithm"`
	Function   string         `mapstructure:"function" json:"function" yaml:"function"`
	NDim       int            `mapstructure:"ndim" json:"ndim" yaml:"ndim"`
	NPart      int            `mapstructure:"npart" json:"npart" yaml:"npart"`
	Iters      int            `mapstructure:"iters" json:"iters" yaml:"iters"`
	Seed       int64          `mapstructure:"seed" json:"seed" yaml:"seed"`
	Tol        *float64       `mapstructure:"tol" json:"tol,omitempty" yaml:"tol,omitempty"`
	BoundsMode string         `mapstructure:"bounds_mode" json:"boundsMode" yaml:"bounds_mode"`
	Rand       string         `mapstructure:"rand" json:"rand" yaml:"rand"`
	Parallel   int            `mapstructure:"parallel" json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Params     map[string]any `mapstructure:"params" json:"params,omitempty" yaml:"params,omitempty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Run {
	return Run{
		Algorithm:  "pso",
		Function:   "sphere",
		NDim:       2,
		NPart:      20,
		Iters:      100,
		Seed:       42,
		BoundsMode: string(swarm.Clip),
		Rand:       "pcg64",
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"alg":         "algorithm",
	"func":        "function",
	"ndim":        "ndim",
	"npart":       "npart",
	"iters":       "iters",
	"seed":        "seed",
	"tol":         "tol",
	"bounds-mode": "bounds_mode",
	"rand":        "rand",
	"parallel":    "parallel",
}

// Load reads the optional YAML file at path and merges environment
// variables and the flags in fs that were set explicitly. Unset flags do
// not override file or environment values.
func Load(path string, fs *pflag.FlagSet) (Run, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("algorithm", def.Algorithm)
	v.SetDefault("function", def.Function)
	v.SetDefault("ndim", def.NDim)
	v.SetDefault("npart", def.NPart)
	v.SetDefault("iters", def.Iters)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("bounds_mode", def.BoundsMode)
	v.SetDefault("rand", def.Rand)
	v.SetDefault("parallel", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// tol has no default, so AutomaticEnv alone would not surface it to Unmarshal.
	if err := v.BindEnv("tol"); err != nil {
		return Run{}, fmt.Errorf("failed to bind tol: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Run{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return Run{}, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	var cfg Run
	if err := v.Unmarshal(&cfg); err != nil {
		return Run{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if v.IsSet("tol") {
		tol := v.GetFloat64("tol")
		cfg.Tol = &tol
	} else {
		cfg.Tol = nil
	}

	if err := cfg.Validate(); err != nil {
		return Run{}, err
	}
	return cfg, nil
}

// Validate checks the fields the engines do not check themselves.
func (r Run) Validate() error {
	if !swarm.Known(r.Algorithm) {
		return fmt.Errorf("unknown algorithm %q, want one of %v", r.Algorithm, swarm.AlgorithmNames())
	}
	switch swarm.Enforce(r.BoundsMode) {
	case swarm.Clip, swarm.Resample:
	default:
		return fmt.Errorf("unknown bounds mode %q, want clip or resample", r.BoundsMode)
	}
	if r.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", r.Parallel)
	}
	return nil
}
