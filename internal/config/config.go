// Package config loads the scanner's own configuration from .larascan.yaml
// at the target root. Defaults are merged once at startup and the resulting
// struct is handed to every detector; nothing here is global.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// IgnoreRule suppresses findings of one detector and/or path prefix.
type IgnoreRule struct {
	Detector string `mapstructure:"detector"`
	Path     string `mapstructure:"path"`
	Reason   string `mapstructure:"reason"`
}

// ExternalTools toggles the audit commands the dependency detectors may run.
type ExternalTools struct {
	NpmAudit    bool `mapstructure:"npmAudit"`
	YarnAudit   bool `mapstructure:"yarnAudit"`
	NpmOutdated bool `mapstructure:"npmOutdated"`
}

type Config struct {
	Environment       string        `mapstructure:"environment"`
	CI                bool          `mapstructure:"ci"`
	SeverityThreshold string        `mapstructure:"severityThreshold"`
	IgnoreGlobs       []string      `mapstructure:"ignoreGlobs"`
	Ignore            []IgnoreRule  `mapstructure:"ignore"`
	Detectors         []string      `mapstructure:"detectors"` // allow-list of detector IDs; empty = all
	AdvisoryFeed      string        `mapstructure:"advisoryFeed"`
	BaseURL           string        `mapstructure:"baseUrl"`
	TimeBudgetMs      int           `mapstructure:"timeBudgetMs"`
	ToolTimeoutMs     int           `mapstructure:"toolTimeoutMs"`
	ExternalTools     ExternalTools `mapstructure:"externalTools"`
}

func Default() Config {
	return Config{
		Environment:       "production",
		SeverityThreshold: string(defaultThreshold),
		TimeBudgetMs:      60000,
		ToolTimeoutMs:     20000,
		ExternalTools:     ExternalTools{NpmAudit: true, YarnAudit: false, NpmOutdated: true},
	}
}

const defaultThreshold = "info"

// Load reads .larascan.yaml from root, merging defaults. A missing file is
// not an error; a malformed one is.
func Load(root string) (Config, string, error) {
	return load(root, "")
}

// LoadFile reads an explicitly named config file. Unlike Load, the file
// must exist.
func LoadFile(path string) (Config, string, error) {
	return load("", path)
}

func load(root, file string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".larascan")
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}
	v.SetEnvPrefix("LARASCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("severityThreshold", cfg.SeverityThreshold)
	v.SetDefault("timeBudgetMs", cfg.TimeBudgetMs)
	v.SetDefault("toolTimeoutMs", cfg.ToolTimeoutMs)
	v.SetDefault("externalTools.npmAudit", cfg.ExternalTools.NpmAudit)
	v.SetDefault("externalTools.yarnAudit", cfg.ExternalTools.YarnAudit)
	v.SetDefault("externalTools.npmOutdated", cfg.ExternalTools.NpmOutdated)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); file != "" || !notFound {
			return cfg, "", err
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, v.ConfigFileUsed(), err
	}
	return cfg, v.ConfigFileUsed(), nil
}
