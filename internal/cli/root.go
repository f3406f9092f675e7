// Package cli provides the command-line interface for routinely.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"routinely/internal/assistant"
	"routinely/internal/catalog"
	"routinely/internal/config"
	"routinely/internal/session"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and session state, initialized in PersistentPreRunE.
	cfg          config.Config
	logger       *slog.Logger
	logCleanup   func() error
	products     *catalog.Cache
	store        *session.FileStore
	selection    *session.SelectionStore
	orchestrator *assistant.Orchestrator
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "routinely",
	Short: "Product advisor and routine builder",
	Long: `Routinely is a product advisor: browse a beauty product catalog,
pick the products you own or plan to buy, and have an assistant build a
personalized routine from your selection or answer related questions.

The selection survives restarts; requests go through the routinely
gateway so no provider credential ever lives on this machine.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip session setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		// Load the catalog, then restore the saved selection against it.
		products = catalog.New(cfg.CatalogURL, logger)
		if _, err := products.Load(cmd.Context()); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		store = session.NewFileStore(cfg.DataDir)
		selection = session.NewSelectionStore(store, logger)

		ids, err := store.LoadSelection()
		if err != nil {
			logger.Warn("failed to load saved selection, starting empty", "error", err)
		}
		selection.Restore(ids, products.FindByID)

		history := session.NewHistory(assistant.SystemPrompt)
		client := assistant.NewClient(cfg.GatewayURL, cfg.RequestTimeout)
		orchestrator = assistant.NewOrchestrator(client, history, selection, cfg.Model, logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(selectedCmd)
	rootCmd.AddCommand(routineCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}
