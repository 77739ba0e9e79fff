package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"civicintel/internal/services"
)

// Entry is one video from a channel listing.
type Entry struct {
	ID         string
	Title      string
	UploadDate string
	Duration   float64
	URL        string
}

// Lister defines the behaviour discovery needs from the channel source.
type Lister interface {
	List(ctx context.Context, channelURL string, max int) ([]Entry, error)
}

// Downloader defines the behaviour the acquisition stage needs.
type Downloader interface {
	DownloadAudio(ctx context.Context, videoURL, destPath, format, quality string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	listTimeout     time.Duration
	downloadTimeout time.Duration
	exec            Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	client := &Client{
		binary:          binary,
		listTimeout:     2 * time.Minute,
		downloadTimeout: 30 * time.Minute,
		exec:            commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// List returns flat-playlist metadata for the newest videos on a channel.
// yt-dlp emits one JSON object per line; lines that fail to parse are
// skipped rather than failing the whole listing, since channels routinely
// contain upcoming premieres and members-only stubs with partial metadata.
func (c *Client) List(ctx context.Context, channelURL string, max int) ([]Entry, error) {
	channelURL = strings.TrimSpace(channelURL)
	if channelURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ytdlp", "list", "channel url required", nil)
	}
	if max <= 0 {
		max = 25
	}

	listCtx := ctx
	if c.listTimeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, c.listTimeout)
		defer cancel()
	}

	args := []string{
		"--flat-playlist",
		"--dump-json",
		"--playlist-end", strconv.Itoa(max),
		channelURL,
	}

	var entries []Entry
	err := c.exec.Run(listCtx, c.binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			return
		}
		var raw listingLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return
		}
		if raw.ID == "" {
			return
		}
		entries = append(entries, Entry{
			ID:         raw.ID,
			Title:      raw.Title,
			UploadDate: raw.UploadDate,
			Duration:   raw.Duration,
			URL:        raw.url(),
		})
	})
	if err != nil {
		if errors.Is(listCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "ytdlp", "list", channelURL, err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "list", channelURL, err)
	}
	return entries, nil
}

type listingLine struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	UploadDate string  `json:"upload_date"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
	RawURL     string  `json:"url"`
}

func (l listingLine) url() string {
	if l.WebpageURL != "" {
		return l.WebpageURL
	}
	if strings.HasPrefix(l.RawURL, "http") {
		return l.RawURL
	}
	return "https://www.youtube.com/watch?v=" + l.ID
}

// DownloadAudio extracts audio from a video into destPath. yt-dlp picks the
// container it can actually produce, so after the run the client falls back
// to a glob over sibling extensions and renames the result into place.
func (c *Client) DownloadAudio(ctx context.Context, videoURL, destPath, format, quality string) (string, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", services.Wrap(services.ErrConfiguration, "ytdlp", "download", "video url required", nil)
	}
	if destPath == "" {
		return "", services.Wrap(services.ErrConfiguration, "ytdlp", "download", "destination path required", nil)
	}
	if format == "" {
		format = "mp3"
	}
	if quality == "" {
		quality = "64K"
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("create audio directory: %w", err)
	}

	dlCtx := ctx
	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		dlCtx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	outTemplate := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ".%(ext)s"
	args := []string{
		"-x",
		"--audio-format", format,
		"--audio-quality", quality,
		"--no-playlist",
		"-o", outTemplate,
		videoURL,
	}

	if err := c.exec.Run(dlCtx, c.binary, args, nil); err != nil {
		if errors.Is(dlCtx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "ytdlp", "download", videoURL, err)
		}
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", videoURL, err)
	}

	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	}

	produced, err := findProducedAudio(destPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "no audio file produced", err)
	}
	if produced != destPath {
		if err := os.Rename(produced, destPath); err != nil {
			// Keep the file under its actual extension if the rename fails.
			return produced, nil
		}
	}
	return destPath, nil
}

// findProducedAudio locates the output file when yt-dlp wrote a different
// extension than requested (m4a, webm, opus).
func findProducedAudio(destPath string) (string, error) {
	base := strings.TrimSuffix(destPath, filepath.Ext(destPath))
	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".part", ".ytdl", ".json":
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("no output matching %s.*", base)
}

// commandExecutor executes commands using os/exec.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var lastErrLine string
	var mu sync.Mutex

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
	}

	wg.Add(2)
	go scan(stdout, func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	})
	go scan(stderr, func(line string) {
		if strings.TrimSpace(line) != "" {
			mu.Lock()
			lastErrLine = strings.TrimSpace(line)
			mu.Unlock()
		}
	})
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		mu.Lock()
		detail := lastErrLine
		mu.Unlock()
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
