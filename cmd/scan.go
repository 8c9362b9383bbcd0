package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/pipeline"
	"github.com/civic-atlas/appointments-watch/internal/registry"
	"github.com/civic-atlas/appointments-watch/pkg/crol"
	"github.com/civic-atlas/appointments-watch/pkg/opendata"
)

var (
	scanSince       string
	scanUntil       string
	scanMinScore    int
	scanCorroborate bool
	scanFormat      string
	scanOutput      string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the personnel-change feed for appointment candidates",
	Long:  "Fetches personnel-change records for the date range, matches each record's agency against the registry, scores matched records, and reports ranked candidates with recommended actions.",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanSince, "since", "", "start date (YYYY-MM-DD, default lookback window)")
	scanCmd.Flags().StringVar(&scanUntil, "until", "", "end date (YYYY-MM-DD, default today)")
	scanCmd.Flags().IntVar(&scanMinScore, "min-score", -1, "drop candidates scoring below this (default from config)")
	scanCmd.Flags().BoolVar(&scanCorroborate, "corroborate", false, "cross-check matched candidates against the notice board")
	scanCmd.Flags().StringVar(&scanFormat, "format", "markdown", "output format: markdown, csv, or json")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "write report to file instead of stdout")
	scanCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file extending the built-in dictionaries")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	since, until, err := resolveRange(scanSince, scanUntil, cfg.Scan.LookbackDays)
	if err != nil {
		return err
	}

	norm, err := loadNormalizer()
	if err != nil {
		return err
	}

	orgs, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return eris.Wrap(err, "load registry")
	}

	limiter := initLimiter()
	cache := initCache()
	defer cache.Close()

	feed := opendata.NewClient(opendata.Config{
		BaseURL:  cfg.Feed.BaseURL,
		Dataset:  cfg.Feed.Dataset,
		PageSize: cfg.Feed.PageSize,
		MaxPages: cfg.Feed.MaxPages,
	}, limiter, cache)

	corroborate := scanCorroborate || cfg.Scan.Corroborate
	var notices crol.Client
	if corroborate {
		notices = crol.NewClient(crol.Config{
			BaseURL:   cfg.CROL.BaseURL,
			SectionID: cfg.CROL.SectionID,
			MaxPages:  cfg.CROL.MaxPages,
		}, limiter, cache)
	}

	scanner := pipeline.NewScanner(feed, notices, norm, orgs)
	scanner.Corroborate = corroborate
	scanner.MinScore = cfg.Scan.MinScore
	if scanMinScore >= 0 {
		scanner.MinScore = scanMinScore
	}

	zap.L().Info("starting scan",
		zap.Time("since", since),
		zap.Time("until", until),
		zap.Int("organizations", len(orgs)),
	)

	candidates, sum, err := scanner.Scan(ctx, since, until)
	if err != nil {
		return eris.Wrap(err, "scan")
	}

	out, closeOut, err := openOutput(scanOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	switch scanFormat {
	case "csv":
		err = pipeline.WriteCandidatesCSV(out, candidates)
	case "json":
		err = pipeline.WriteCandidatesJSON(out, candidates, sum)
	case "markdown":
		_, err = io.WriteString(out, pipeline.FormatReport(candidates, sum))
	default:
		return eris.Errorf("unknown format %q", scanFormat)
	}
	if err != nil {
		return eris.Wrap(err, "write report")
	}

	return nil
}

// resolveRange turns the --since/--until flags into a concrete window,
// defaulting to the configured lookback ending today.
func resolveRange(sinceFlag, untilFlag string, lookbackDays int) (time.Time, time.Time, error) {
	until := time.Now().Truncate(24 * time.Hour)
	if untilFlag != "" {
		t, err := time.Parse("2006-01-02", untilFlag)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrap(err, "parse --until")
		}
		until = t
	}

	since := until.AddDate(0, 0, -lookbackDays)
	if sinceFlag != "" {
		t, err := time.Parse("2006-01-02", sinceFlag)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrap(err, "parse --since")
		}
		since = t
	}

	if since.After(until) {
		return time.Time{}, time.Time{}, eris.Errorf("--since %s is after --until %s",
			since.Format("2006-01-02"), until.Format("2006-01-02"))
	}
	return since, until, nil
}

// openOutput returns the report writer, stdout when no path is given.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open output file")
	}
	return f, func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "close %s: %v\n", path, cerr)
		}
	}, nil
}
