package legistar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"civicintel/internal/fileutil"
	"civicintel/internal/logging"
	"civicintel/internal/services"
)

// DownloadAgenda saves an event's agenda PDF into dir, returning the path.
// Already-downloaded agendas are returned as-is; events with no agenda URL
// return an empty path and no error.
func (c *Client) DownloadAgenda(ctx context.Context, event Event, dir string, logger *slog.Logger) (string, error) {
	filename := fmt.Sprintf("legistar_%s_%d_agenda.pdf", c.client, event.ID)
	return c.downloadDocument(ctx, event.AgendaURL, dir, filename, logger)
}

// DownloadMinutes saves an event's minutes PDF into dir, returning the path.
func (c *Client) DownloadMinutes(ctx context.Context, event Event, dir string, logger *slog.Logger) (string, error) {
	filename := fmt.Sprintf("legistar_%s_%d_minutes.pdf", c.client, event.ID)
	return c.downloadDocument(ctx, event.MinutesURL, dir, filename, logger)
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "legistar", "download document", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "legistar", "download document", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "legistar", "download document",
			fmt.Sprintf("%s: status %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 128<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "legistar", "download document", url, err)
	}

	if err := fileutil.WriteFileAtomic(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	logger.Info("document saved",
		logging.String("file", filename),
		logging.Float64("kilobytes", float64(len(body))/1024))
	return path, nil
}
