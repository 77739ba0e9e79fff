package portal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"civicintel/internal/fileutil"
	"civicintel/internal/logging"
	"civicintel/internal/services"
)

// DownloadAgenda saves a clip's agenda PDF into dir, returning the path.
// An already-downloaded agenda is returned as-is; a clip with no agenda
// URL returns an empty path and no error.
func (c *Client) DownloadAgenda(ctx context.Context, clip Clip, dir string, logger *slog.Logger) (string, error) {
	return c.downloadDocument(ctx, clip.AgendaURL, dir, clip.ID+"_agenda.pdf", logger)
}

// DownloadMinutes saves a clip's minutes PDF into dir, returning the path.
func (c *Client) DownloadMinutes(ctx context.Context, clip Clip, dir string, logger *slog.Logger) (string, error) {
	return c.downloadDocument(ctx, clip.MinutesURL, dir, clip.ID+"_minutes.pdf", logger)
}

func (c *Client) downloadDocument(ctx context.Context, url, dir, filename string, logger *slog.Logger) (string, error) {
	if url == "" {
		return "", nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create document directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err == nil {
		logger.Debug("document already downloaded", logging.String("file", filename))
		return path, nil
	}

	body, err := c.get(ctx, url, "application/pdf")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "portal", "download document", url, err)
	}

	if err := fileutil.WriteFileAtomic(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	logger.Info("document saved",
		logging.String("file", filename),
		logging.Float64("kilobytes", float64(len(body))/1024))
	return path, nil
}
