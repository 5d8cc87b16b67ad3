// Package config loads runtime settings from accretion.cfg.json and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tomz197/accretion/internal/sim"
)

const (
	fileName  = "accretion.cfg.json"
	envPrefix = "ACCRETION"
)

// Range is a closed interval in the config file.
type Range struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

func (r Range) toSim() sim.Range {
	return sim.Range{Min: r.Min, Max: r.Max}
}

// PruneConfig holds the optional escape policy applied after each merge.
type PruneConfig struct {
	Enabled         bool    `json:"enabled" mapstructure:"enabled"`
	MaxEccentricity float64 `json:"maxEccentricity" mapstructure:"maxEccentricity"`
	MinPeriapsis    float64 `json:"minPeriapsis" mapstructure:"minPeriapsis"`
	MaxApoapsis     float64 `json:"maxApoapsis" mapstructure:"maxApoapsis"`
}

// SimulationConfig holds the parameters of a randomized system.
type SimulationConfig struct {
	BodyCount       int         `json:"bodyCount" mapstructure:"bodyCount"`
	Mu              float64     `json:"mu" mapstructure:"mu"`
	Seed            uint64      `json:"seed" mapstructure:"seed"`
	Eccentricity    Range       `json:"eccentricity" mapstructure:"eccentricity"`
	SemiMajorAxis   Range       `json:"semiMajorAxis" mapstructure:"semiMajorAxis"`
	Radius          Range       `json:"radius" mapstructure:"radius"`
	MaxInclination  float64     `json:"maxInclination" mapstructure:"maxInclination"`
	CollisionMargin float64     `json:"collisionMargin" mapstructure:"collisionMargin"`
	Prune           PruneConfig `json:"prune" mapstructure:"prune"`
}

// ViewConfig holds terminal viewer settings.
type ViewConfig struct {
	FPS       int     `json:"fps" mapstructure:"fps"`
	TimeScale float64 `json:"timeScale" mapstructure:"timeScale"`
	Scale     float64 `json:"scale" mapstructure:"scale"`
}

// SSHConfig holds the SSH server settings.
type SSHConfig struct {
	Host        string `json:"host" mapstructure:"host"`
	Port        string `json:"port" mapstructure:"port"`
	HostKeyPath string `json:"hostKeyPath" mapstructure:"hostKeyPath"`
}

// Config is the full set of runtime settings.
type Config struct {
	LogLevel   string           `json:"logLevel" mapstructure:"logLevel"`
	LogFile    string           `json:"logFile" mapstructure:"logFile"`
	Simulation SimulationConfig `json:"simulation" mapstructure:"simulation"`
	View       ViewConfig       `json:"view" mapstructure:"view"`
	SSH        SSHConfig        `json:"ssh" mapstructure:"ssh"`
}

func setDefaults() {
	def := sim.DefaultConfig()
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "accretion.log")

	viper.SetDefault("simulation.bodyCount", def.BodyCount)
	viper.SetDefault("simulation.mu", def.Mu)
	viper.SetDefault("simulation.seed", 0)
	viper.SetDefault("simulation.eccentricity.min", def.Distribution.Eccentricity.Min)
	viper.SetDefault("simulation.eccentricity.max", def.Distribution.Eccentricity.Max)
	viper.SetDefault("simulation.semiMajorAxis.min", def.Distribution.SemiMajorAxis.Min)
	viper.SetDefault("simulation.semiMajorAxis.max", def.Distribution.SemiMajorAxis.Max)
	viper.SetDefault("simulation.radius.min", def.Distribution.Radius.Min)
	viper.SetDefault("simulation.radius.max", def.Distribution.Radius.Max)
	viper.SetDefault("simulation.maxInclination", def.Distribution.MaxInclination)
	viper.SetDefault("simulation.collisionMargin", def.CollisionMargin)

	viper.SetDefault("simulation.prune.enabled", false)
	viper.SetDefault("simulation.prune.maxEccentricity", 0.95)
	viper.SetDefault("simulation.prune.minPeriapsis", 0.02)
	viper.SetDefault("simulation.prune.maxApoapsis", 2.0)

	viper.SetDefault("view.fps", 60)
	viper.SetDefault("view.timeScale", 1.0)
	viper.SetDefault("view.scale", 0.7)

	viper.SetDefault("ssh.host", "::")
	viper.SetDefault("ssh.port", "2222")
	viper.SetDefault("ssh.hostKeyPath", ".ssh/accretion_host_key")
}

// Load reads configuration from accretion.cfg.json in configDir, applies
// ACCRETION_* environment overrides and fills in defaults. A missing file is
// not an error.
func Load(configDir string) (*Config, error) {
	setDefaults()

	viper.SetConfigName(fileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

// Build converts the settings into a sim.Config. Validation is left to sim.New.
func (c SimulationConfig) Build() (sim.Config, error) {
	if c.BodyCount < 0 {
		return sim.Config{}, fmt.Errorf("%w: body count %d", sim.ErrInvalidConfig, c.BodyCount)
	}
	return sim.Config{
		BodyCount: c.BodyCount,
		Mu:        c.Mu,
		Seed:      c.Seed,
		Distribution: sim.Distribution{
			Eccentricity:   c.Eccentricity.toSim(),
			SemiMajorAxis:  c.SemiMajorAxis.toSim(),
			Radius:         c.Radius.toSim(),
			MaxInclination: c.MaxInclination,
		},
		CollisionMargin: c.CollisionMargin,
	}, nil
}

// Options returns the simulation options implied by the settings.
func (c SimulationConfig) Options() []sim.Option {
	if !c.Prune.Enabled {
		return nil
	}
	return []sim.Option{sim.WithPruner(sim.EscapePolicy{
		MaxEccentricity: c.Prune.MaxEccentricity,
		MinPeriapsis:    c.Prune.MinPeriapsis,
		MaxApoapsis:     c.Prune.MaxApoapsis,
	})}
}
