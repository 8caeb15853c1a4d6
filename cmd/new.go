package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"billdocs/internal/document"
	"billdocs/internal/logger"
	"billdocs/internal/session"
	"billdocs/pkg/models"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new document in the session file",
	Long: `Start a blank document using the stored business profile.

The new document has one empty line item, number 001 unless --number is
given, and today's date.`,
	Example: `  # Start an invoice
  billdocs new

  # Start a quotation in a separate session file
  billdocs new --type quotation -s quote.yaml

  # Replace the current session
  billdocs new --force --number 120`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringP("type", "t", string(models.DocumentTypeInvoice), "Document type: invoice, quotation or receipt")
	newCmd.Flags().String("number", "", "Document number (default 001)")
	newCmd.Flags().Bool("force", false, "Overwrite an existing session file")
}

func runNew(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("new")

	docType, _ := cmd.Flags().GetString("type")
	number, _ := cmd.Flags().GetString("number")
	force, _ := cmd.Flags().GetBool("force")
	path := sessionPath(cmd)

	if !document.Known(models.DocumentType(docType)) {
		return fmt.Errorf("unknown document type %q: use invoice, quotation or receipt", docType)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("session file %s already exists. Use --force to replace it", path)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profiles.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load business profile: %w", err)
	}

	s := session.New(profile, time.Now())
	s.Document.Type = models.DocumentType(docType)
	if number != "" {
		s.Document.DocumentNumber = number
	}
	if err := saveSession(cmd, s); err != nil {
		return err
	}

	log.Info().
		Str("session", path).
		Str("document_type", docType).
		Str("document_number", s.Document.DocumentNumber).
		Msg("New document started")
	fmt.Printf("Started %s %s in %s\n", docType, s.Document.DocumentNumber, path)
	return nil
}
