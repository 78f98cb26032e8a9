package model

import "time"

// Config is the complete mathsheet configuration
type Config struct {
	Worksheet    WorksheetDefaults  `yaml:"worksheet" mapstructure:"worksheet"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
}

// WorksheetDefaults seeds the generate flags; the values are raw, unparsed specs
type WorksheetDefaults struct {
	A               string `yaml:"a" mapstructure:"a"`
	B               string `yaml:"b" mapstructure:"b"`
	Ops             string `yaml:"ops" mapstructure:"ops"`
	Pages           int    `yaml:"pages" mapstructure:"pages"`
	Title           string `yaml:"title" mapstructure:"title"`
	Answers         bool   `yaml:"answers" mapstructure:"answers"`
	Numbered        bool   `yaml:"numbered" mapstructure:"numbered"`
	AvoidNegative   bool   `yaml:"avoid_negative" mapstructure:"avoid_negative"`
	IntegerDivision bool   `yaml:"integer_division" mapstructure:"integer_division"`
}

// OutputConfig controls where documents go and how chatty the CLI is
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	DateFormat string `yaml:"date_format" mapstructure:"date_format"` // Go layout for the footer date stamp
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// CacheConfig configures reuse of seeded documents
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles document writes per output directory
type RateLimitingConfig struct {
	WritesPerSecond float64 `yaml:"writes_per_second" mapstructure:"writes_per_second"`
	BurstSize       int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	gen := DefaultGenerationConfig()
	return &Config{
		Worksheet: WorksheetDefaults{
			A:               gen.ASpec,
			B:               gen.BSpec,
			Ops:             gen.OpsSpec,
			Pages:           gen.Pages,
			Title:           gen.Header,
			Answers:         gen.ShowAnswers,
			Numbered:        gen.Numbered,
			AvoidNegative:   gen.AvoidNegative,
			IntegerDivision: gen.IntegerDivision,
		},
		Output: OutputConfig{
			Dir:        ".",
			DateFormat: "2006-01-02",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".mathsheet-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			WritesPerSecond: 20,
			BurstSize:       5,
		},
	}
}

// GenerationConfig converts the defaults into a generation request config
func (w WorksheetDefaults) GenerationConfig() GenerationConfig {
	return GenerationConfig{
		ASpec:           w.A,
		BSpec:           w.B,
		OpsSpec:         w.Ops,
		Pages:           w.Pages,
		Header:          w.Title,
		ShowAnswers:     w.Answers,
		Numbered:        w.Numbered,
		AvoidNegative:   w.AvoidNegative,
		IntegerDivision: w.IntegerDivision,
	}
}
