package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate the pair catalog and print its stats",
	Long: `Load the pair catalog CSV, run the same validation the server runs at
startup, and print per-dataset and per-label counts. Useful before
deploying a new catalog.`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().String("file", "", "Pair catalog CSV file (overrides CATALOG_PATH)")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path := mustGetString(cmd, "file")
	if path == "" {
		path = config.Load().Catalog.Path
	}
	if path == "" {
		return errors.New("CATALOG_PATH environment variable or --file flag is required")
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("catalog is invalid: %w", err)
	}

	labels := make(map[string]int)
	datasets := make(map[string]int)
	identities := make(map[string]struct{})
	var malformed []int
	for _, rec := range cat.Records() {
		normalized := strings.ToLower(strings.TrimSpace(rec.GroundTruth))
		labels[normalized]++
		datasets[catalog.DatasetPrefix(rec.ImageA)]++
		if rec.CelebID != "" {
			identities[rec.CelebID] = struct{}{}
		}
		if _, err := catalog.ParseLabel(rec.GroundTruth); err != nil {
			malformed = append(malformed, rec.Index)
		}
	}

	fmt.Printf("Catalog %s is valid\n", path)
	fmt.Printf("  Pairs: %d\n", cat.Len())
	if len(identities) > 0 {
		fmt.Printf("  Identities: %d\n", len(identities))
	}
	fmt.Println("  Ground truth:")
	for label, count := range labels {
		fmt.Printf("    %-10s %d\n", label, count)
	}
	fmt.Println("  Datasets:")
	for _, name := range cat.Datasets() {
		fmt.Printf("    %-10s %d\n", name, datasets[name])
	}
	if len(malformed) > 0 {
		fmt.Printf("  Warning: %d pairs have a ground truth outside same/different %v\n", len(malformed), malformed)
		fmt.Println("  These pairs always count as answered incorrectly - fix or flag them")
	}
	return nil
}
