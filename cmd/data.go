package cmd

import (
	"context"
	"fmt"
	"os"

	"academic-records/internal/config"
	"academic-records/pkg/logger"

	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Data file management",
	Long:  "Create and inspect the flat files that hold the records",
}

var dataInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create missing data files",
	Long:  "Create header-only files for every missing entity and the default admin account",
	Run:   runDataInit,
}

var dataStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data file status",
	Long:  "Display path, record count, skipped rows and capacity of every entity file",
	Run:   runDataStatus,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataInitCmd)
	dataCmd.AddCommand(dataStatusCmd)
}

func runDataInit(cmd *cobra.Command, args []string) {
	app, err := newApplication(config.Get())
	if err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer app.close()

	created, err := app.prepare(context.Background())
	if err != nil {
		logger.Error("Initialization failed: %v", err)
		os.Exit(1)
	}

	for _, path := range created {
		fmt.Printf("Created %s\n", path)
	}
	fmt.Println("Data files ready!")
}

func runDataStatus(cmd *cobra.Command, args []string) {
	app, err := newApplication(config.Get())
	if err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer app.close()

	stats, err := app.repos.Stats(context.Background())

	fmt.Println("Data Status:")
	fmt.Println("============")
	for _, s := range stats {
		capacity := "unlimited"
		if s.Capacity > 0 {
			capacity = fmt.Sprintf("%d", s.Capacity)
		}
		fmt.Printf("%-12s %-32s records=%-6d skipped=%-4d capacity=%s", s.Name, s.Path, s.Records, s.Skipped, capacity)
		if s.Truncated {
			fmt.Print(" [truncated]")
		}
		fmt.Println()
	}

	if err != nil {
		logger.Error("Failed to read some data files: %v", err)
		os.Exit(1)
	}
}
