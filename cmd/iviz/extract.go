package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shuyu-lab/insightviz/internal/bundle"
	"github.com/shuyu-lab/insightviz/internal/config"
	"github.com/shuyu-lab/insightviz/internal/insight"
)

// ExtractBatchResult holds results from a batch extraction.
type ExtractBatchResult struct {
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Results   []*bundle.Result `json:"results"`
}

var extractCmd = &cobra.Command{
	Use:   "extract [dataset...]",
	Short: "Build visualization bundles from run outputs",
	Long: `Extract scored insights from configured run directories and emit the
visualization payload for each dataset.

For every dataset this scans the runs root for run_* directories
(skipping runs marked with error.json), collects insights with a
non-null score from insights_validated.json, sorts them by score, and
samples first/last plus evenly spaced points at the dataset interval.
Sampled images are copied to img/interactive_<key>/sample_<i>.png and
the bundle is written to data/interactive_<key>.json.

A dataset that yields zero insights is logged and skipped; the batch
continues with the remaining datasets.

Examples:
  iviz extract                  # Process all configured datasets
  iviz extract diabetes         # Process a single dataset
  iviz extract --dry-run        # Preview what would be processed
  iviz extract -o json          # Emit the batch summary as JSON`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(&config.Config{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	keys, err := selectDatasets(cfg, args)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no datasets configured")
	}

	if GetDryRun() {
		return outputExtractDryRun(cfg, keys)
	}

	loader := insight.NewLoader(logger)
	builder := bundle.NewBuilder(cfg.OutputBase, logger)

	var results []*bundle.Result
	failed := 0
	for _, key := range keys {
		res, err := extractDataset(loader, builder, key, cfg.Datasets[key])
		if err != nil {
			// Per-dataset failures never terminate the batch.
			logger.Error("dataset failed",
				zap.String("dataset", key),
				zap.Error(err))
			failed++
			continue
		}
		results = append(results, res)
	}

	return outputExtractBatchResult(results, failed)
}

// extractDataset runs the load -> sample -> emit pipeline for one dataset.
func extractDataset(loader *insight.Loader, builder *bundle.Builder, key string, ds config.Dataset) (*bundle.Result, error) {
	logger.Info("loading insights",
		zap.String("dataset", key),
		zap.String("runs", ds.RunsPath))

	insights, err := loader.Load(ds.RunsPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("insights loaded",
		zap.String("dataset", key),
		zap.Int("count", len(insights)))

	return builder.Build(key, ds.DisplayName, ds.Interval, insights)
}

// selectDatasets resolves the dataset keys to process: all configured
// keys in sorted order, or the requested subset.
func selectDatasets(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return cfg.Keys(), nil
	}
	for _, key := range args {
		if _, ok := cfg.Datasets[key]; !ok {
			return nil, fmt.Errorf("unknown dataset: %s", key)
		}
	}
	return args, nil
}

// outputExtractDryRun prints what would be processed without doing work.
func outputExtractDryRun(cfg *config.Config, keys []string) error {
	if GetOutput() == "json" {
		preview := make(map[string]config.Dataset, len(keys))
		for _, key := range keys {
			preview[key] = cfg.Datasets[key]
		}
		data, err := json.MarshalIndent(preview, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal dry-run preview: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("Would process %d dataset(s):\n", len(keys))
	for _, key := range keys {
		ds := cfg.Datasets[key]
		fmt.Printf("  - %s (%s, interval %d)\n", key, ds.RunsPath, ds.Interval)
	}
	return nil
}

// outputExtractBatchResult prints the batch summary as JSON or text.
func outputExtractBatchResult(results []*bundle.Result, failed int) error {
	if GetOutput() == "json" {
		result := ExtractBatchResult{
			Processed: len(results),
			Failed:    failed,
			Results:   results,
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal extract batch result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	for _, res := range results {
		fmt.Printf("%s: %d insights, avg=%.2f, sampled=%d -> %s\n",
			res.Dataset, res.Total, res.AvgScore, res.Sampled, res.BundlePath)
	}
	fmt.Printf("Processed: %d, Failed: %d\n", len(results), failed)
	return nil
}
