package main

import (
	"fmt"
	"os"
	"path/filepath"

	"jobcorpus-engine/internal/config"
	"jobcorpus-engine/internal/corpus"
	"jobcorpus-engine/internal/extlog"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/quota"
	"jobcorpus-engine/internal/secrets"
	"jobcorpus-engine/internal/source/board"
	"jobcorpus-engine/internal/source/careerjet"
	"jobcorpus-engine/internal/source/jooble"
	"jobcorpus-engine/internal/source/jsearch"
	"jobcorpus-engine/internal/source/linkedjobs"
	"jobcorpus-engine/internal/source/util"
)

// env holds everything a command needs from the data tree.
type env struct {
	cfg     config.Config
	dataDir string
	layout  corpus.Layout
	logs    *extlog.Store
}

// loadEnv resolves the data dir (flag, then JOBCORPUS_DATA_DIR, then the
// working directory), seeds the user config on first run, and loads it.
func loadEnv(cfgFlag string) (*env, error) {
	dataDir := os.Getenv("JOBCORPUS_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	cfgPath := cfgFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			return nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.App.DataDir != "" {
		dataDir = cfg.App.DataDir
	}

	return &env{
		cfg:     cfg,
		dataDir: dataDir,
		layout:  corpus.Layout{OutputsDir: filepath.Join(dataDir, "outputs")},
		logs:    extlog.NewStore(filepath.Join(dataDir, "logs")),
	}, nil
}

func (e *env) catalogPath() string {
	return filepath.Join(e.dataDir, "catalog.db")
}

// buildSource wires one configured platform into its client.
func (e *env) buildSource(name string) (extract.Source, error) {
	sc := e.cfg.Sources[name]

	rps := e.cfg.App.RequestsPerSecond
	if rps <= 0 {
		rps = 4 // stays under the strictest vendor's 5 rps
	}
	hc := util.NewClient(util.NewHostLimiter(rps, 1))

	key := secrets.APIKey(name, sc.APIKey)

	switch name {
	case "jooble":
		if key == "" {
			return nil, fmt.Errorf("no API key for jooble (try: engine set-key jooble)")
		}
		return jooble.New(key, hc), nil
	case "jsearch":
		if key == "" {
			return nil, fmt.Errorf("no API key for jsearch (try: engine set-key jsearch)")
		}
		return jsearch.New(key, hc), nil
	case "linkedjobs":
		if key == "" {
			return nil, fmt.Errorf("no API key for linkedjobs (try: engine set-key linkedjobs)")
		}
		c := linkedjobs.New(key, hc, sc.IncludeAI)
		if sc.Plan != nil {
			c.OverridePlan(quota.Plan{
				MaxRequestsPerMonth: sc.Plan.MaxRequestsPerMonth,
				MaxJobsPerMonth:     sc.Plan.MaxJobsPerMonth,
				MaxJobsPerCall:      sc.Plan.MaxJobsPerCall,
			})
		}
		return c, nil
	case "careerjet":
		return careerjet.New(sc.Country, hc), nil
	case "board":
		return board.New(sc.BaseURL, sc.Country, hc), nil
	}
	return nil, fmt.Errorf("unknown source %q", name)
}
