package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"billdocs/internal/config"
	"billdocs/internal/logger"
)

var version = "1.0.0"

// cfg is set by Execute before any command runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "billdocs",
	Short: "Create, preview, export and keep invoices, quotations and receipts",
	Long: `billdocs manages simple billing documents for one business.

The document being edited lives in a session file (YAML, or JSON when the
name ends in .json). Commands change the session, save it to the local
document store, or export it as PDF or PNG. Exporting saves the document
first and then starts the next one with the number advanced.

Configuration is read from the environment or a .env file:
  BILLDOCS_DATA_PATH        SQLite file holding saved documents (billdocs.db)
  BILLDOCS_CURRENCY_SYMBOL  Symbol printed before amounts (₦)
  BILLDOCS_IMAGE_SCALE      Pixel density of PNG exports, at least 2
  BILLDOCS_OUTPUT_DIR       Directory exported files are written to (.)
  LOG_LEVEL, LOG_FORMAT     Logging (info, console)`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with cfg.
func Execute(c *config.Config) {
	if c != nil {
		cfg = c
	}
	log := logger.WithComponent("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Debug().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("session", "s", "session.yaml", "Session file holding the document being edited")
	rootCmd.PersistentFlags().String("data", "", "Override BILLDOCS_DATA_PATH")
}
