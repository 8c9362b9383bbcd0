package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/departure"
	"github.com/civic-atlas/appointments-watch/internal/pipeline"
	"github.com/civic-atlas/appointments-watch/internal/registry"
	"github.com/civic-atlas/appointments-watch/pkg/crol"
)

var (
	depSince  string
	depUntil  string
	depFormat string
	depOutput string
)

var departuresCmd = &cobra.Command{
	Use:   "departures",
	Short: "Cross-check listed officers against departure notices",
	Long:  "For each registry organization with a current officer on file, searches the notice board for separation notices naming that officer and reports scored matches.",
	RunE:  runDepartures,
}

func init() {
	departuresCmd.Flags().StringVar(&depSince, "since", "", "start date (YYYY-MM-DD, default lookback window)")
	departuresCmd.Flags().StringVar(&depUntil, "until", "", "end date (YYYY-MM-DD, default today)")
	departuresCmd.Flags().StringVar(&depFormat, "format", "markdown", "output format: markdown, csv, or json")
	departuresCmd.Flags().StringVar(&depOutput, "output", "", "write report to file instead of stdout")
	departuresCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file extending the built-in dictionaries")
	rootCmd.AddCommand(departuresCmd)
}

func runDepartures(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	since, until, err := resolveRange(depSince, depUntil, cfg.Departure.LookbackDays)
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

	notices := crol.NewClient(crol.Config{
		BaseURL:   cfg.CROL.BaseURL,
		SectionID: cfg.CROL.SectionID,
		MaxPages:  cfg.CROL.MaxPages,
	}, limiter, cache)

	checker := departure.NewChecker(norm, notices, cfg.Departure.Concurrency)

	zap.L().Info("starting departure check",
		zap.Time("since", since),
		zap.Time("until", until),
		zap.Int("organizations", len(orgs)),
	)

	results := checker.CheckAll(ctx, orgs, since, until)

	out, closeOut, err := openOutput(depOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	switch depFormat {
	case "csv":
		err = pipeline.WriteDeparturesCSV(out, results)
	case "json":
		err = pipeline.WriteDeparturesJSON(out, results)
	case "markdown":
		_, err = io.WriteString(out, pipeline.FormatDepartureReport(results))
	default:
		return eris.Errorf("unknown format %q", depFormat)
	}
	if err != nil {
		return eris.Wrap(err, "write report")
	}

	return nil
}
