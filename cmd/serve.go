package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/images"
	"github.com/annolab/facepair/internal/ledger"
	"github.com/annolab/facepair/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation web server",
	Long: `Start the Face Pair annotation web server.
The server loads the pair catalog, connects to the Google Sheets ledger
and serves the annotation and review APIs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("catalog", "", "Pair catalog CSV file (overrides CATALOG_PATH)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (overrides WEB_SESSION_SECRET)")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// connectLedger opens the Google Sheets ledger. A misconfigured or
// unreachable spreadsheet degrades to the disabled ledger: annotators can
// browse but every submit fails with a retryable error.
func connectLedger(ctx context.Context, cfg *config.Config) ledger.Ledger {
	led, err := ledger.Connect(ctx, ledger.SheetsConfig{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		Worksheet:       cfg.Sheets.Worksheet,
	})
	if err != nil {
		fmt.Printf("Warning: annotation ledger unavailable: %v\n", err)
		fmt.Println("Running without persistence - submissions will fail until the ledger is back")
		return ledger.Disabled{}
	}
	fmt.Printf("Connected to annotation ledger (spreadsheet %s)\n", cfg.Sheets.SpreadsheetID)
	return led
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	catalogPath := mustGetString(cmd, "catalog")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if catalogPath == "" {
		return errors.New("CATALOG_PATH environment variable or --catalog flag is required")
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("loading pair catalog: %w", err)
	}
	fmt.Printf("Loaded %d pairs from %s\n", cat.Len(), catalogPath)

	mode, err := images.ParseMode(cfg.Images.Mode)
	if err != nil {
		return err
	}
	if mode == images.ModeLocal && cfg.Images.BasePath == "" {
		return errors.New("IMAGE_BASE_PATH is required in local image mode")
	}
	if mode == images.ModeURL && cfg.Images.BaseURL == "" {
		return errors.New("IMAGE_BASE_URL is required in url image mode")
	}
	resolver := images.NewResolver(mode, cfg.Images.BasePath, cfg.Images.BaseURL)

	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}

	led := connectLedger(cmd.Context(), cfg)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, cat, led, resolver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Pair annotation server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
