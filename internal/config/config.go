package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SourceNames are the platforms the engine knows how to extract from.
var SourceNames = []string{"jooble", "jsearch", "linkedjobs", "careerjet", "board"}

// Plan overrides a vendor's built-in monthly quota ceilings.
type Plan struct {
	MaxRequestsPerMonth int `yaml:"max_requests_per_month"`
	MaxJobsPerMonth     int `yaml:"max_jobs_per_month"`
	MaxJobsPerCall      int `yaml:"max_jobs_per_call"`
}

// Source configures one platform: whether it runs, how to reach it, and
// which careers (each a list of search terms) to extract for it.
type Source struct {
	Enabled   bool                `yaml:"enabled"`
	APIKey    string              `yaml:"api_key,omitempty"`
	BaseURL   string              `yaml:"base_url,omitempty"`   // board only
	Country   string              `yaml:"country,omitempty"`    // careerjet
	IncludeAI bool                `yaml:"include_ai,omitempty"` // linkedjobs
	Plan      *Plan               `yaml:"plan,omitempty"`
	Careers   map[string][]string `yaml:"careers"`
}

type Config struct {
	App struct {
		DataDir           string  `yaml:"data_dir"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"app"`

	Sources map[string]Source `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Enabled returns the names of enabled sources, in the fixed SourceNames
// order so runs are reproducible.
func (c Config) Enabled() []string {
	var out []string
	for _, name := range SourceNames {
		if s, ok := c.Sources[name]; ok && s.Enabled {
			out = append(out, name)
		}
	}
	return out
}
