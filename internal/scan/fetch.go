package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultBaseURL serves e-rara page scans at 2000px height.
const DefaultBaseURL = "https://www.e-rara.ch/download/webcache/2000/"

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	BaseURL  string
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
	Logger   *slog.Logger
}

// Fetcher downloads page scans into a Cache directory.
type Fetcher struct {
	baseURL  string
	client   *http.Client
	cache    *Cache
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// NewFetcher creates a fetcher writing into cache.
func NewFetcher(cache *Cache, cfg FetcherConfig) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay == 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Fetcher{
		baseURL:  cfg.BaseURL,
		client:   cfg.Client,
		cache:    cache,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
	}
}

// errNotFound stops retries: a missing scan will not appear on retry.
var errNotFound = errors.New("scan not found")

// Fetch downloads the scan of a page unless it is already cached.
// It reports whether a download happened.
func (f *Fetcher) Fetch(ctx context.Context, pageID int) (bool, error) {
	if f.cache.Has(pageID) {
		return false, nil
	}
	if err := os.MkdirAll(f.cache.Dir(), 0o755); err != nil {
		return false, fmt.Errorf("failed to create scan directory: %w", err)
	}

	url := f.baseURL + strconv.Itoa(pageID)
	err := retry.Do(
		func() error {
			return f.download(ctx, url, f.cache.Path(pageID))
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errNotFound)
		}),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("retrying scan download", "page", pageID, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to fetch scan %d: %w", pageID, err)
	}
	f.logger.Debug("fetched scan", "page", pageID)
	return true, nil
}

// download writes url to path through a temporary file so that an
// interrupted transfer never leaves a partial scan behind.
func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", url, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".scan-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
