// Package exporter writes extraction results to files.
package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/use-agent/sianpdf/models"
)

// Exporter writes payloads into a single directory.
type Exporter struct {
	dir string
}

// New returns an Exporter rooted at dir. The directory is created on the
// first export if it does not exist.
func New(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{dir: dir}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes payload to <dir>/<filename> and returns the final path.
//
// The payload is first written to a temporary file next to the target and
// renamed into place once complete, so readers never see a partial file.
// The temporary file is closed and removed on every path, including
// encode failures and cancellation.
func (e *Exporter) Export(ctx context.Context, filename string, payload Payload) (string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", exportErr("failed to create export directory", err)
	}

	tmp, err := os.CreateTemp(e.dir, "."+name+".*.tmp")
	if err != nil {
		return "", exportErr("failed to create temporary file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("export: failed to remove temporary file", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	if err := payload.Encode(tmp); err != nil {
		return "", exportErr("failed to write payload", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", exportErr("failed to flush payload", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", exportErr("failed to set file mode", err)
	}
	if err := tmp.Close(); err != nil {
		return "", exportErr("failed to close temporary file", err)
	}

	if err := ctx.Err(); err != nil {
		return "", exportErr("export canceled", err)
	}

	target := filepath.Join(e.dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		return "", exportErr("failed to move export into place", err)
	}
	committed = true

	slog.Info("export written", "path", target, "entries", payload.Len())
	return target, nil
}

// Write streams payload to w without touching the filesystem.
func (e *Exporter) Write(w io.Writer, payload Payload) error {
	if err := payload.Encode(w); err != nil {
		return exportErr("failed to write payload", err)
	}
	return nil
}

// SanitizeFilename reduces filename to a bare name inside the export
// directory, rejecting names with no usable base.
func SanitizeFilename(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if filename == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", models.NewExtractError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid export filename %q", filename), nil)
	}
	return name, nil
}

func exportErr(msg string, err error) *models.ExtractError {
	return models.NewExtractError(models.ErrCodeExport, msg, err)
}
