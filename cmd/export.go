package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the annotation ledger to a CSV file",
	Long: `Download every annotation row from the Google Sheets ledger and write
it to a local CSV file, optionally filtered to a single annotator.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("output", "annotations.csv", "Output CSV file")
	exportCmd.Flags().String("annotator", "", "Only export rows for this annotator id")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	led, err := ledger.Connect(cmd.Context(), ledger.SheetsConfig{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		Worksheet:       cfg.Sheets.Worksheet,
	})
	if err != nil {
		return fmt.Errorf("connecting to the annotation ledger: %w", err)
	}

	rows, err := led.Rows(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading the annotation ledger: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("ledger is empty, nothing to export")
	}

	output := mustGetString(cmd, "output")
	annotator := mustGetString(cmd, "annotator")

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ledger.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	// The annotator id sits in the second ledger column.
	const annotatorCol = 1

	bar := progressbar.Default(int64(len(rows)-1), "exporting annotations")
	exported := 0
	for _, row := range rows[1:] {
		bar.Add(1)
		record := make([]string, len(ledger.Header))
		for i := range record {
			if i < len(row) {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if annotator != "" && record[annotatorCol] != annotator {
			continue
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
		exported++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing output file: %w", err)
	}

	fmt.Printf("\nExported %d annotations to %s\n", exported, output)
	return nil
}
