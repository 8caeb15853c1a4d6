package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billdocs/internal/export"
	"billdocs/internal/logger"
	"billdocs/internal/render"
	"billdocs/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <pdf|image>",
	Short: "Save the document, write it as PDF or PNG and start the next one",
	Long: `Export the session's document.

The document is saved first (created, or updated when it was loaded with
'documents edit'). It is then rendered and written to the output
directory as <type>_<number>.pdf or .png. After a successful export the
session starts the next document: client, items, notes and VAT are
cleared and the number is advanced. Business details and the document
type are kept.

If rendering fails the saved record is kept and the session is left as
it was, so the export can be retried.`,
	Example: `  billdocs export pdf
  billdocs export image -o ~/Documents/receipts`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(export.ActionPDF), string(export.ActionImage)},
	RunE:      runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output directory (default BILLDOCS_OUTPUT_DIR)")
}

func parseFormat(arg string) (export.Action, error) {
	switch arg {
	case "pdf":
		return export.ActionPDF, nil
	case "image", "png":
		return export.ActionImage, nil
	}
	return "", fmt.Errorf("unknown format %q: use pdf or image", arg)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	action, err := parseFormat(args[0])
	if err != nil {
		return err
	}
	outputDir, _ := cmd.Flags().GetString("output")

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	if err := checkDocument(s, log); err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orchestrator.Run(cmd.Context(), s, action)
	if err != nil {
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) && exportErr.Stage == export.StageRender {
			// The record exists now; keep its id so a retry updates it.
			if saveErr := saveSession(cmd, s); saveErr != nil {
				log.Warn().Err(saveErr).Msg("Failed to write session after render failure")
			}
		}
		return handleExportError(err, log)
	}

	// The session is written before the file so the reset is never lost;
	// the record can always be exported again with 'documents download'.
	if err := saveSession(cmd, s); err != nil {
		return err
	}
	path, err := writeOutput(outputDir, res.Output)
	if err != nil {
		log.Error().Err(err).Str("record_id", res.RecordID).Msg("Failed to write exported file")
		return fmt.Errorf("%w. The document was saved; run 'billdocs documents download %s %s' to retry", err, res.RecordID, args[0])
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Next document: %s %s\n", s.Document.Type, s.Document.DocumentNumber)
	return nil
}

// handleExportError provides user-friendly error messages for failed actions
func handleExportError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Action failed")

	var exportErr *export.ExportError
	errors.As(err, &exportErr)

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("canceled")
	case errors.Is(err, render.ErrLogoDecode):
		return fmt.Errorf("the business logo could not be read. Set a PNG, JPEG, GIF, WebP or BMP logo with 'billdocs profile logo <file>' or remove it with --clear")
	case errors.Is(err, render.ErrRasterize):
		return fmt.Errorf("the image could not be produced: %w", err)
	case errors.Is(err, render.ErrPDF):
		return fmt.Errorf("the PDF could not be produced: %w", err)
	case errors.Is(err, store.ErrRecordNotFound):
		return fmt.Errorf("no saved document with that id. Run 'billdocs documents list' to see saved documents")
	case errors.Is(err, export.ErrUnknownAction):
		return fmt.Errorf("unknown export format: use pdf or image")
	case exportErr != nil && exportErr.Stage == export.StagePersist:
		return fmt.Errorf("the document could not be saved, nothing was exported: %w", err)
	default:
		return fmt.Errorf("action failed: %w", err)
	}
}
