package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facepair",
	Short: "A web service for collecting face pair annotations",
	Long: `Face Pair is a web service for collecting human judgments on face
image pairs. Annotators decide whether two photos show the same person,
explain their reasoning, and reflect on mistakes; every completed
annotation is appended to a shared Google Sheets ledger.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
