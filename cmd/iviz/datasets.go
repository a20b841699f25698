package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shuyu-lab/insightviz/internal/config"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List configured datasets",
	Long:  `Display the datasets from the config file with their runs paths and sampling intervals.`,
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(cfg.Datasets, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal datasets: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	keys := cfg.Keys()
	if len(keys) == 0 {
		fmt.Println("No datasets configured")
		return nil
	}
	for _, key := range keys {
		ds := cfg.Datasets[key]
		name := ds.DisplayName
		if name == "" {
			name = key
		}
		fmt.Printf("%-16s %s (interval %d)\n", key, name, ds.Interval)
		fmt.Printf("%-16s   %s\n", "", ds.RunsPath)
	}
	return nil
}
