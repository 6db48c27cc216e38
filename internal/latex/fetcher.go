package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// pngSignature starts every PNG file.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxImageBytes bounds a single download.
const maxImageBytes = 5 << 20

// ErrNotPNG is returned when a download does not carry PNG data.
var ErrNotPNG = errors.New("response is not a PNG image")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Config controls image downloads.
type Config struct {
	Timeout    time.Duration // per request
	UserAgent  string
	Attempts   uint          // total tries for transport errors
	RetryDelay time.Duration // initial backoff between tries
	CacheTTL   time.Duration // how long downloaded images are kept
}

// DefaultConfig returns a 15 second timeout, three tries and a one hour cache.
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
		CacheTTL:   time.Hour,
	}
}

// Fetcher downloads rendered LaTeX images and caches them in memory.
type Fetcher struct {
	client *http.Client
	cfg    Config
	cache  *cache.Cache
	log    logrus.FieldLogger
}

// NewFetcher creates a Fetcher. A nil client uses one with cfg.Timeout.
func NewFetcher(cfg Config, client *http.Client, log logrus.FieldLogger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &Fetcher{
		client: client,
		cfg:    cfg,
		cache:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:    log,
	}
}

// Download fetches url and returns the PNG bytes. Transport failures are
// retried; HTTP status errors and non-PNG bodies are not.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	if v, ok := f.cache.Get(url); ok {
		return v.([]byte), nil
	}

	data, err := retry.DoWithData(
		func() ([]byte, error) {
			return f.fetch(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(f.cfg.Attempts),
		retry.Delay(f.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			f.log.WithError(err).WithFields(logrus.Fields{
				"url":     url,
				"attempt": n + 1,
			}).Debug("retrying latex image download")
		}),
	)
	if err != nil {
		f.log.WithError(err).WithField("url", url).Warn("latex image download failed")
		return nil, err
	}

	f.cache.SetDefault(url, data)
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, ErrNotPNG
	}
	return data, nil
}

func isTransient(err error) bool {
	var status *StatusError
	switch {
	case errors.As(err, &status):
		return false
	case errors.Is(err, ErrNotPNG):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
