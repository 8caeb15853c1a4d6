package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billdocs/internal/export"
	"billdocs/internal/logger"
	"billdocs/internal/render"
	"billdocs/internal/session"
	"billdocs/internal/storage"
	"billdocs/internal/store"
)

// app wires the stores and the orchestrator for one command run.
type app struct {
	slot         *storage.SQLiteSlot
	documents    *store.Store
	profiles     *store.ProfileStore
	orchestrator *export.Orchestrator
	log          zerolog.Logger
}

func openApp(cmd *cobra.Command) (*app, error) {
	log := logger.WithComponent("app")

	dataPath, _ := cmd.Flags().GetString("data")
	if dataPath == "" {
		dataPath = cfg.DataPath
	}
	if dir := filepath.Dir(dataPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	slot, err := storage.OpenSQLiteSlot(dataPath)
	if err != nil {
		log.Error().Err(err).Str("data_path", dataPath).Msg("Failed to open document store")
		return nil, fmt.Errorf("failed to open document store %s: %w", dataPath, err)
	}

	documents := store.New(slot, cfg.DocumentsKey)
	log.Debug().Str("data_path", dataPath).Msg("Document store opened")

	return &app{
		slot:         slot,
		documents:    documents,
		profiles:     store.NewProfileStore(slot, cfg.ProfileKey),
		orchestrator: export.New(documents, cfg.RenderOptions()),
		log:          log,
	}, nil
}

func (a *app) Close() {
	if err := a.slot.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close document store")
	}
}

func sessionPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("session")
	return path
}

func loadSession(cmd *cobra.Command) (*session.Session, error) {
	path := sessionPath(cmd)
	s, err := session.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no session file at %s. Run 'billdocs new' first", path)
		}
		return nil, err
	}
	return s, nil
}

func saveSession(cmd *cobra.Command, s *session.Session) error {
	return session.WriteFile(sessionPath(cmd), s)
}

// writeOutput stores a rendered file in dir and returns its path.
func writeOutput(dir string, out *render.Output) (string, error) {
	if dir == "" {
		dir = cfg.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, out.Name)
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
