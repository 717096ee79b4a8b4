package config

// ExtractorConfig holds metadata extractor configuration
type ExtractorConfig struct {
	// Type selects the extractor implementation ("exiftool" or "native")
	Type string `mapstructure:"type" yaml:"type"`

	// Command is the external tool invoked by the exiftool extractor
	Command string `mapstructure:"command" yaml:"command"`

	// Timeout bounds a single extraction, e.g. "30s"
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// ScanConfig holds batch processing configuration
type ScanConfig struct {
	BatchSize int      `mapstructure:"batch_size" yaml:"batch_size"`
	Workers   int      `mapstructure:"workers"    yaml:"workers"`
	Patterns  []string `mapstructure:"patterns"   yaml:"patterns"`
}

// SearchConfig holds search defaults
type SearchConfig struct {
	// DefaultKey is the metadata field searched when none is given.
	// Exiftool reports the generation parameters of AI images under
	// "Parameters".
	DefaultKey string `mapstructure:"default_key" yaml:"default_key"`
}
