package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"twharvest/pkg/config"
	"twharvest/pkg/harvest"
	"twharvest/pkg/handle"
	"twharvest/pkg/logger"
	"twharvest/pkg/stats"
	"twharvest/pkg/storage"
	"twharvest/pkg/ui"
)

var (
	// Harvest command flags
	inputFile   string
	outputPath  string
	strategyArg string
	concurrency int
	executable  string
	scratchDir  string
	maxAttempts int
	probeURL    string
	noProgress  bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [accounts...]",
	Short: "Harvest tweets of one or more accounts",
	Long: `Harvest every tweet of the given accounts and write them as line-delimited
JSON records.

Accounts are numeric ids, profile URLs or handles (with or without "@"). They
are taken from the arguments and from --input, a YAML or JSON file holding
either a list of accounts or a mapping with an "accounts" key.

Records go to stdout unless --output names a file, which is replaced
atomically once the job is done.`,
	Example: `  # Harvest two accounts to stdout
  twharvest harvest @nasa https://twitter.com/esa/

  # Harvest a list, forcing interval scans with 4 scraper processes
  twharvest harvest --input accounts.yaml --strategy interval --concurrency 4 -o tweets.ndjson`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().StringVarP(&inputFile, "input", "i", "", "YAML/JSON file listing accounts")
	harvestCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	harvestCmd.Flags().StringVar(&strategyArg, "strategy", "", "fetch strategy: auto, interval or profile")
	harvestCmd.Flags().IntVar(&concurrency, "concurrency", 0, "scraper processes per interval scan (1-8)")
	harvestCmd.Flags().StringVar(&executable, "executable", "", "scraper executable")
	harvestCmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "directory for temporary scraper output")
	harvestCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempts per scraper request")
	harvestCmd.Flags().StringVar(&probeURL, "probe-url", "", "base URL of profile pages probed in auto mode")
	harvestCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress line")
}

func harvestFlags() map[string]interface{} {
	flags := globalFlags()
	if strategyArg != "" {
		flags["strategy"] = strategyArg
	}
	if executable != "" {
		flags["executable"] = executable
	}
	if scratchDir != "" {
		flags["scratch-dir"] = scratchDir
	}
	if concurrency != 0 {
		flags["concurrency"] = concurrency
	}
	if maxAttempts != 0 {
		flags["max-attempts"] = maxAttempts
	}
	if probeURL != "" {
		flags["probe-url"] = probeURL
	}
	if outputPath != "" {
		flags["output"] = outputPath
	}
	if noProgress {
		flags["progress"] = false
	}
	return flags
}

func runHarvest(cmd *cobra.Command, args []string) error {
	refs := argReferences(args)
	if inputFile != "" {
		fromFile, err := readReferences(inputFile)
		if err != nil {
			return err
		}
		refs = append(refs, fromFile...)
	}
	if len(refs) == 0 {
		return fmt.Errorf("no accounts given; pass them as arguments or with --input")
	}

	cfg, err := config.Load(configFile, harvestFlags())
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("twharvest starting")

	collector := stats.NewCollector()
	job, err := harvest.NewFromConfig(cfg, collector, log)
	if err != nil {
		return err
	}

	// The progress line only makes sense on an interactive terminal
	var display *ui.ProgressDisplay
	if cfg.Progress.Enabled && ui.IsTerminal(os.Stderr) && !ui.IsQuietMode() {
		display = ui.NewProgressDisplay()
		job = job.WithProgress(display.Update)
	}

	ui.PrintHighlight("twharvest " + version)
	ui.PrintInfo("Accounts", fmt.Sprintf("%d", len(refs)))
	ui.PrintInfo("Strategy", cfg.Scraper.StrategyMode)

	start := time.Now()
	res := job.Run(context.Background(), refs)
	if display != nil {
		display.Finish()
	}

	sink := storage.NewWriterSink(cmd.OutOrStdout())
	if cfg.Output.Path != "" {
		sink = storage.NewFileSink(cfg.Output.Path)
	}
	if err := sink.Write(res.Records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	printSummary(res, cfg.Output.Path, time.Since(start))
	if res.Total > 0 && res.Success == 0 {
		return fmt.Errorf("all %d accounts failed", res.Total)
	}
	return nil
}

func printSummary(res harvest.Result, path string, elapsed time.Duration) {
	ui.PrintSuccess(fmt.Sprintf("Harvested %d tweets from %d/%d accounts in %s",
		len(res.Records), res.Success, res.Total, ui.FormatDuration(elapsed)))
	if path != "" {
		ui.PrintInfo("Output", path)
	}
	for _, f := range res.Failures {
		ui.PrintWarning("Failed "+f.Term, f.Reason)
	}
}

// resolveAll collects references from args and --input and resolves them
func resolveAll(args []string) ([]handle.Reference, []handle.Handle, error) {
	refs := argReferences(args)
	if inputFile != "" {
		fromFile, err := readReferences(inputFile)
		if err != nil {
			return nil, nil, err
		}
		refs = append(refs, fromFile...)
	}
	return refs, handle.ResolveAll(refs), nil
}
