package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	Scan      ScanConfig      `mapstructure:"scan"      yaml:"scan"`
	Search    SearchConfig    `mapstructure:"search"    yaml:"search"`
}

func LoadConfig() (*BaseConfig, error) {
	cfg := &BaseConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
