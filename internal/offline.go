package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opdeck/opdeck/internal/backup"
	"github.com/opdeck/opdeck/internal/storage"
)

// offlineBackup wires just enough of the stack for the export/import
// commands, without HTTP, index, or watcher.
func offlineBackup(cfg *Config, logger *slog.Logger) (*backup.Service, error) {
	provider, err := storage.NewFS(cfg.Data.Path, cfg.Data.QuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	store, err := storage.New(provider, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return backup.New(store, logger), nil
}

// RunExport writes a full archive to path, or stdout when path is "-".
func RunExport(cfg *Config, path string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	bk, err := offlineBackup(cfg, logger)
	if err != nil {
		return err
	}
	archive, err := bk.ExportAll()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RunImport restores an archive from path, or stdin when path is "-".
func RunImport(cfg *Config, path string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	bk, err := offlineBackup(cfg, logger)
	if err != nil {
		return err
	}
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("import: read: %w", err)
	}
	return bk.ImportAll(data)
}
