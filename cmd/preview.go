package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billdocs/internal/logger"
	"billdocs/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the preview layout of the session's document as JSON",
	Long: `Build the on-screen preview of the document being edited and print it
as a JSON tree. Nothing is saved and the session is not changed.`,
	Example: `  billdocs preview
  billdocs preview -o preview.json`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("preview")
	outputPath, _ := cmd.Flags().GetString("output")

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	out, err := render.NewPreviewRenderer(cfg.RenderOptions()).Render(s.Snapshot())
	if err != nil {
		return handleExportError(err, log)
	}

	if outputPath == "" {
		if _, err := os.Stdout.Write(out.Data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Println()
		return nil
	}

	if err := os.WriteFile(outputPath, out.Data, 0o644); err != nil {
		log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output_file", outputPath).Int("bytes", len(out.Data)).Msg("Preview written to file")
	return nil
}
