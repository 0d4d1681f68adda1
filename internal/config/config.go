// Package config loads xctools settings from flags, environment variables
// (XCTOOLS_*) and an optional YAML file, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyDerivedDataPath    = "derived_data_path"
	KeyRepo               = "repo"
	KeyHistoryBackend     = "history_backend"
	KeyLicensePatterns    = "license_patterns"
	KeyContributorAliases = "contributor_aliases"
	KeyDropUnmatched      = "drop_unmatched_contributors"
	KeyLogLevel           = "log_level"
	KeyLogJSON            = "log_json"

	EnvPrefix       = "XCTOOLS"
	DefaultFileName = ".xctools.yaml"
)

// History backends.
const (
	HistoryCLI    = "cli"
	HistoryNative = "native"
)

// AliasRule maps every spelling in Aliases to the canonical Name.
type AliasRule struct {
	Name    string   `mapstructure:"name"    validate:"required"`
	Aliases []string `mapstructure:"aliases" validate:"dive,required"`
}

// Config is the resolved xctools configuration.
type Config struct {
	// DerivedDataPath overrides both the Xcode preference and the default
	// ~/Library/Developer/Xcode/DerivedData location when non-empty.
	DerivedDataPath string `mapstructure:"derived_data_path"`

	// Repo is the git working tree mined for contributors.
	Repo string `mapstructure:"repo"`

	// HistoryBackend selects how commit authors are read: "cli" shells out
	// to git, "native" reads the object database with go-git.
	HistoryBackend string `mapstructure:"history_backend" validate:"oneof=cli native"`

	// LicensePatterns are doublestar patterns matched against lowercased
	// file names inside each package checkout.
	LicensePatterns []string `mapstructure:"license_patterns" validate:"min=1,dive,required,license_pattern"`

	ContributorAliases []AliasRule `mapstructure:"contributor_aliases" validate:"dive"`

	// DropUnmatchedContributors discards contributors whose first name
	// collides with an existing one without satisfying the merge rule,
	// instead of keeping them as distinct entries.
	DropUnmatchedContributors bool `mapstructure:"drop_unmatched_contributors"`

	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// DefaultAliases is the built-in contributor alias table.
func DefaultAliases() []AliasRule {
	return []AliasRule{
		{Name: "Kamaal Farah", Aliases: []string{"kamaal111", "Kamaal"}},
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDerivedDataPath, "")
	v.SetDefault(KeyRepo, ".")
	v.SetDefault(KeyHistoryBackend, HistoryCLI)
	v.SetDefault(KeyLicensePatterns, []string{"*license*"})
	v.SetDefault(KeyContributorAliases, DefaultAliases())
	v.SetDefault(KeyDropUnmatched, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogJSON, false)
}

// Load reads file (or ~/.xctools.yaml when file is empty and it exists),
// layers XCTOOLS_* environment variables on top and decodes the result.
// Flags must already be bound to v by the caller.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, DefaultFileName)
			if _, err := os.Stat(candidate); err == nil {
				file = candidate
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if filepath.Ext(file) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.DerivedDataPath = strings.TrimSpace(c.DerivedDataPath)
	c.HistoryBackend = strings.ToLower(strings.TrimSpace(c.HistoryBackend))
	for i := range c.ContributorAliases {
		c.ContributorAliases[i].Name = strings.TrimSpace(c.ContributorAliases[i].Name)
	}
}

// AliasTable flattens the alias rules into an alias -> canonical name map.
func (c *Config) AliasTable() map[string]string {
	table := make(map[string]string)
	for _, rule := range c.ContributorAliases {
		for _, alias := range rule.Aliases {
			table[alias] = rule.Name
		}
	}
	return table
}
