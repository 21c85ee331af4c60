// Command itemctl imports spreadsheets into, and lists items from, an item
// backend, and manages the reference backend's database schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/InventoryUI/internal/backend"
	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/importer"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
)

var (
	cfg        *config.Config
	backendURL string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "itemctl",
	Short:         "Command line tools for the inventory item backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if backendURL == "" {
			backendURL = cfg.Backend.URL
		}
		if logLevel == "" {
			logLevel = cfg.Logging.Level
		}
		logging.Setup("itemctl", logLevel, cfg.Logging.Format)
		return nil
	},
}

// newService wires the same service the UI uses against the selected
// backend, with timeout applied to every backend request.
func newService(timeout time.Duration) (*core.Service, error) {
	client, err := backend.New(backendURL, backend.WithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	pipeline := importer.New(client, importer.WithMaxFileSize(cfg.Import.MaxFileSize))
	return core.NewService(client, pipeline, core.ServiceConfig{
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: 1,
		MaxImportWait:        cfg.Import.MaxWaitTime,
	}), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "item backend base URL (default from BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
