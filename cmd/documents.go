package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"billdocs/internal/format"
	"billdocs/internal/ledger"
	"billdocs/internal/logger"
	"billdocs/internal/session"
	"billdocs/internal/store"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Work with saved documents",
	Long: `List, inspect, reopen, delete and re-export saved documents.

Record ids may be shortened to any unique prefix.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved documents, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Load a saved document into the session for editing",
	Long: `Replace the session's document with a saved one. Later saves and exports
update that record instead of creating a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsEdit,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsDownloadCmd = &cobra.Command{
	Use:   "download <id> <pdf|image>",
	Short: "Export a saved document again without changing it or the session",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentsDownload,
}

var documentsLedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Write all saved documents to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsLedger,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(
		documentsListCmd,
		documentsShowCmd,
		documentsEditCmd,
		documentsDeleteCmd,
		documentsDownloadCmd,
		documentsLedgerCmd,
	)

	documentsListCmd.Flags().Bool("json", false, "Print records as JSON")
	documentsEditCmd.Flags().Bool("force", false, "Discard unsaved changes in the current session")
	documentsDownloadCmd.Flags().StringP("output", "o", "", "Output directory (default BILLDOCS_OUTPUT_DIR)")
	documentsLedgerCmd.Flags().StringP("output", "o", "", "Output file (default <output dir>/"+ledger.FileName+")")
}

// resolveRecordID accepts a full record id or a unique prefix of one.
func resolveRecordID(ctx context.Context, a *app, prefix string) (string, error) {
	records, err := a.documents.List(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range records {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("record id %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", store.ErrRecordNotFound, prefix)
	}
	return match, nil
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.documents.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list saved documents: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No saved documents.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNUMBER\tCLIENT\tTOTAL\tCREATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Type,
			r.DocumentNumber,
			r.ClientName,
			format.Money(cfg.CurrencySymbol, r.Total),
			r.DateCreated.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveRecordID(cmd.Context(), a, args[0])
	if err != nil {
		return handleExportError(err, log)
	}
	rec, err := a.documents.Get(cmd.Context(), id)
	if err != nil {
		return handleExportError(err, log)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runDocumentsEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")
	force, _ := cmd.Flags().GetBool("force")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveRecordID(cmd.Context(), a, args[0])
	if err != nil {
		return handleExportError(err, log)
	}

	s, err := session.ReadFile(sessionPath(cmd))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		profile, err := a.profiles.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load business profile: %w", err)
		}
		s = session.New(profile, time.Now())
	case err != nil:
		return err
	case s.EditingDocumentID == "" && !force && hasContent(s):
		return fmt.Errorf("the session holds an unsaved document. Save or export it first, or use --force")
	}

	if err := a.orchestrator.Load(cmd.Context(), s, id); err != nil {
		return handleExportError(err, log)
	}
	if err := saveSession(cmd, s); err != nil {
		return err
	}
	fmt.Printf("Editing %s %s (record %s) in %s\n", s.Document.Type, s.Document.DocumentNumber, id, sessionPath(cmd))
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveRecordID(cmd.Context(), a, args[0])
	if err != nil {
		return handleExportError(err, log)
	}

	// The session, if any, forgets the record so the next save creates a new one.
	s, readErr := session.ReadFile(sessionPath(cmd))
	if readErr != nil {
		s = nil
	}
	wasEditing := s != nil && s.EditingDocumentID == id
	if err := a.orchestrator.Delete(cmd.Context(), s, id); err != nil {
		return handleExportError(err, log)
	}
	if wasEditing {
		if err := saveSession(cmd, s); err != nil {
			return err
		}
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}

func runDocumentsDownload(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")
	outputDir, _ := cmd.Flags().GetString("output")

	action, err := parseFormat(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveRecordID(cmd.Context(), a, args[0])
	if err != nil {
		return handleExportError(err, log)
	}
	res, err := a.orchestrator.ExportRecord(cmd.Context(), id, action)
	if err != nil {
		return handleExportError(err, log)
	}

	path, err := writeOutput(outputDir, res.Output)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runDocumentsLedger(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, ledger.FileName)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.documents.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list saved documents: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	if err := ledger.Export(records, cfg.CurrencySymbol, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	log.Info().Str("output_file", outputPath).Int("records", len(records)).Msg("Ledger written")
	fmt.Printf("Wrote %s (%d documents)\n", outputPath, len(records))
	return nil
}

// hasContent reports whether s holds anything worth keeping.
func hasContent(s *session.Session) bool {
	d := s.Document
	if d.Client.Name != "" || d.Notes != "" {
		return true
	}
	for _, item := range d.LineItems {
		if item.Description != "" || item.Rate != 0 {
			return true
		}
	}
	return false
}
