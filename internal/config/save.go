package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.RequestsPerSecond < 0 {
		errs = append(errs, "app.requests_per_second must be >= 0")
	}

	for name, src := range cfg.Sources {
		if !slices.Contains(SourceNames, name) {
			errs = append(errs, fmt.Sprintf("sources.%s is not a known platform", name))
			continue
		}
		if !src.Enabled {
			continue
		}
		if len(src.Careers) == 0 {
			errs = append(errs, fmt.Sprintf("sources.%s.careers must have at least 1 career", name))
		}
		for career, terms := range src.Careers {
			if career == "" {
				errs = append(errs, fmt.Sprintf("sources.%s has an empty career name", name))
			}
			if len(terms) == 0 {
				errs = append(errs, fmt.Sprintf("sources.%s.careers[%q] must have at least 1 search term", name, career))
			}
			for i, term := range terms {
				if term == "" {
					errs = append(errs, fmt.Sprintf("sources.%s.careers[%q][%d] cannot be empty", name, career, i))
				}
			}
		}
		if p := src.Plan; p != nil {
			if p.MaxRequestsPerMonth < 0 || p.MaxJobsPerMonth < 0 || p.MaxJobsPerCall < 0 {
				errs = append(errs, fmt.Sprintf("sources.%s.plan values must be >= 0", name))
			}
		}
		if name == "board" && src.BaseURL == "" {
			errs = append(errs, "sources.board.base_url is required")
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

func joinLines(lines []string) string {
	out := ""
	for i, s := range lines {
		if i > 0 {
			out += "\n- "
		}
		out += s
	}
	return out
}
