// Package config loads the spog gateway settings from defaults, an optional
// config file, SPOG_* environment variables and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// VEX index sources
const (
	VexSourceNone     = "none"
	VexSourceFile     = "file"
	VexSourceArangoDB = "arangodb"
)

// Config holds the gateway settings
type Config struct {
	Port         string
	SBOMURL      string
	SBOMTimeout  time.Duration
	VexSource    string
	VexFile      string
	VexRefresh   time.Duration
	VexLimit     int
	MetricsRoute bool
}

// Load builds a Config. cfgFile may be empty; flags may be nil. Flags are bound
// by key name, so a flag named "sbom.url" overrides the sbom.url setting.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "3000")
	v.SetDefault("sbom.url", "http://localhost:8082")
	v.SetDefault("sbom.timeout", "30s")
	v.SetDefault("vex.source", VexSourceNone)
	v.SetDefault("vex.file", "")
	v.SetDefault("vex.refresh", "0s")
	v.SetDefault("vex.limit", 1000)
	v.SetDefault("metrics", true)

	v.SetEnvPrefix("SPOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// MS_PORT is the port variable shared by the ortelius microservices
	if err := v.BindEnv("port", "SPOG_PORT", "MS_PORT"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for _, key := range []string{"port", "sbom.url", "sbom.timeout", "vex.source", "vex.file", "vex.refresh", "vex.limit", "metrics"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		Port:         v.GetString("port"),
		SBOMURL:      v.GetString("sbom.url"),
		SBOMTimeout:  v.GetDuration("sbom.timeout"),
		VexSource:    strings.ToLower(v.GetString("vex.source")),
		VexFile:      v.GetString("vex.file"),
		VexRefresh:   v.GetDuration("vex.refresh"),
		VexLimit:     v.GetInt("vex.limit"),
		MetricsRoute: v.GetBool("metrics"),
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.SBOMURL == "" {
		return fmt.Errorf("sbom.url is required")
	}
	switch c.VexSource {
	case VexSourceNone, VexSourceArangoDB:
	case VexSourceFile:
		if c.VexFile == "" {
			return fmt.Errorf("vex.file is required when vex.source is %q", VexSourceFile)
		}
	default:
		return fmt.Errorf("unknown vex.source %q", c.VexSource)
	}
	if c.VexLimit <= 0 {
		return fmt.Errorf("vex.limit must be positive, got %d", c.VexLimit)
	}
	if c.VexRefresh < 0 {
		return fmt.Errorf("vex.refresh must not be negative")
	}
	return nil
}
