package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jobcorpus-engine/internal/catalog"
	"jobcorpus-engine/internal/corpus"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/secrets"
)

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default: <data_dir>/config.yml)")
	sourcesFlag := fs.String("sources", "all", "comma-separated sources to run, or 'all'")
	careersFlag := fs.String("careers", "", "comma-separated careers to run (default: all configured)")
	restart := fs.Bool("restart", false, "re-run queries even if already extracted today")
	timeout := fs.Duration("timeout", 30*time.Minute, "per-source time budget")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*cfgPath)
	if err != nil {
		return err
	}

	selected, err := selectSources(e, *sourcesFlag)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		log.Printf("[engine] no sources selected, nothing to do")
		return nil
	}
	log.Printf("[engine] running sources: %s", strings.Join(selected, ", "))

	cat, err := catalog.Open(e.catalogPath())
	if err != nil {
		log.Printf("[catalog] unavailable (%v), continuing without run history", err)
		cat = nil
	} else {
		defer cat.Close()
	}

	runner := &extract.Runner{
		Layout:  e.layout,
		Logs:    e.logs,
		Catalog: cat,
		Restart: *restart,
	}

	// Sources own disjoint subtrees, so they run concurrently; careers
	// within one source stay sequential (single writer per source tree).
	var g errgroup.Group
	careersTouched := map[string]bool{}

	for _, name := range selected {
		src, err := e.buildSource(name)
		if err != nil {
			log.Printf("[%s] skipped: %v", name, err)
			continue
		}
		careers := filterCareers(e.cfg.Sources[name].Careers, *careersFlag)
		if len(careers) == 0 {
			log.Printf("[%s] no matching careers, skipped", name)
			continue
		}
		for c := range careers {
			careersTouched[c] = true
		}

		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			defer cancel()

			log.Printf("[%s] running...", src.Name())
			if err := runner.RunSource(ctx, src, careers); err != nil {
				// best effort: one failing source never cancels siblings
				log.Printf("[%s] error: %v", src.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	names := make([]string, 0, len(careersTouched))
	for c := range careersTouched {
		names = append(names, c)
	}
	slices.Sort(names)
	for _, career := range names {
		if _, _, err := corpus.MergeGlobalCareer(e.layout, career); err != nil {
			log.Printf("[corpus] global merge for %q failed: %v", career, err)
		}
	}

	log.Printf("[engine] done")
	return nil
}

func runMergeGlobal(args []string) error {
	fs := flag.NewFlagSet("merge-global", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default: <data_dir>/config.yml)")
	career := fs.String("career", "", "merge only this career (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*cfgPath)
	if err != nil {
		return err
	}

	careers, err := listGlobalCareers(e.layout, *career)
	if err != nil {
		return err
	}
	for _, c := range careers {
		if _, _, err := corpus.MergeGlobalCareer(e.layout, c); err != nil {
			log.Printf("[corpus] global merge for %q failed: %v", c, err)
		}
	}
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default: <data_dir>/config.yml)")
	runs := fs.Int("runs", 10, "recent runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*cfgPath)
	if err != nil {
		return err
	}

	careers, err := listGlobalCareers(e.layout, "")
	if err == nil {
		fmt.Println("corpus rows per career (global merged):")
		for _, c := range careers {
			t, rerr := corpus.ReadTable(e.layout.GlobalMergedFile(c))
			if rerr != nil {
				fmt.Printf("  %-40s (not merged yet)\n", c)
				continue
			}
			fmt.Printf("  %-40s %d\n", c, len(t.Rows))
		}
	}

	cat, err := catalog.Open(e.catalogPath())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	ctx := context.Background()
	totals, err := cat.SourceTotals(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\nextraction totals per source:")
	for _, t := range totals {
		fmt.Printf("  %-12s runs=%-5d rows=%d\n", t.Source, t.Runs, t.RowsAdded)
	}

	recent, err := cat.RecentRuns(ctx, *runs)
	if err != nil {
		return err
	}
	fmt.Println("\nrecent runs:")
	for _, r := range recent {
		fmt.Printf("  %s  %-12s %-28s %q pages %d-%d rows=%d\n",
			r.RunDate, r.Source, r.Career, r.Query, r.StartPage, r.LastPage, r.RowsAdded)
	}
	return nil
}

func runSetKey(args []string) error {
	fs := flag.NewFlagSet("set-key", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: engine set-key <source>")
	}
	source := fs.Arg(0)

	fmt.Printf("API key for %s: ", source)
	rd := bufio.NewReader(os.Stdin)
	key, err := rd.ReadString('\n')
	if err != nil {
		return err
	}
	if err := secrets.SetAPIKey(source, strings.TrimSpace(key)); err != nil {
		return err
	}
	fmt.Println("stored in OS keychain")
	return nil
}

func selectSources(e *env, flagValue string) ([]string, error) {
	enabled := e.cfg.Enabled()
	if flagValue == "all" || flagValue == "" {
		return enabled, nil
	}
	var out []string
	for _, name := range strings.Split(flagValue, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !slices.Contains(enabled, name) {
			return nil, fmt.Errorf("source %q is not enabled in config", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// filterCareers narrows a source's configured careers to the ones named in
// the comma-separated flag value; empty means all.
func filterCareers(all map[string][]string, flagValue string) map[string][]string {
	if strings.TrimSpace(flagValue) == "" {
		return all
	}
	want := map[string]bool{}
	for _, c := range strings.Split(flagValue, ",") {
		if c = strings.TrimSpace(c); c != "" {
			want[c] = true
		}
	}
	out := map[string][]string{}
	for career, terms := range all {
		if want[career] {
			out[career] = terms
		}
	}
	return out
}

// listGlobalCareers returns career folder names under the global tree,
// un-slugged careers are not recoverable so folder names are used as-is.
func listGlobalCareers(lay corpus.Layout, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	dir := lay.OutputsDir + string(os.PathSeparator) + corpus.GlobalDirName
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no global corpus tree yet (%s)", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	slices.Sort(out)
	return out, nil
}
