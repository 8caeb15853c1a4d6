package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billdocs/internal/logger"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the session's document to the document store",
	Long: `Save the document being edited. The first save creates a record; later
saves of the same session update it. The session is kept as it is.`,
	Args: cobra.NoArgs,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("save")

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

	res, err := a.orchestrator.Save(cmd.Context(), s)
	if err != nil {
		return handleExportError(err, log)
	}
	if err := saveSession(cmd, s); err != nil {
		return err
	}

	fmt.Printf("Saved %s %s (record %s)\n", s.Document.Type, s.Document.DocumentNumber, res.RecordID)
	return nil
}
