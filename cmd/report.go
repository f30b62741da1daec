package cmd

import (
	"context"
	"fmt"
	"os"

	"academic-records/internal/config"
	"academic-records/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	reportClassID int
	reportOutput  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a class diary",
	Long: `Render the lesson diary of one class.
The report is printed to stdout unless --output names a file.`,
	Run: func(cmd *cobra.Command, args []string) {
		runReport()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportClassID, "class", "c", 0, "class id")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to this file")
	reportCmd.MarkFlagRequired("class")
}

func runReport() {
	app, err := newApplication(config.Get())
	if err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer app.close()

	ctx := context.Background()
	if reportOutput == "" {
		if _, err := app.reports.GenerateClassReport(ctx, reportClassID, os.Stdout); err != nil {
			logger.Error("Failed to generate report: %v", err)
			os.Exit(1)
		}
		return
	}

	n, err := app.reports.WriteClassReport(ctx, reportClassID, reportOutput)
	if err != nil {
		logger.Error("Failed to generate report: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Report for class %d written to %s (%d lessons)\n", reportClassID, reportOutput, n)
}
