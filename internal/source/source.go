// Package source loads spreadsheet bytes from a local path or an HTTP URL
// with a configurable size ceiling.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocolly/colly/v2"

	"github.com/gridglot/gridglot/internal/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures loading.
type Options struct {
	// MaxSize caps the input in bytes; 0 means no limit.
	MaxSize int64

	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxSize:   50 * 1024 * 1024,
		Timeout:   30 * time.Second,
		UserAgent: defaultUserAgent,
	}
}

// IsRemote reports whether the location is an HTTP(S) URL rather than a
// local path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Load reads the spreadsheet bytes behind a path or URL.
func Load(ctx context.Context, location string, opts Options) ([]byte, error) {
	if IsRemote(location) {
		return download(ctx, location, opts)
	}
	return readFile(location, opts)
}

func readFile(path string, opts Options) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if opts.MaxSize > 0 && info.Size() > opts.MaxSize {
		return nil, fmt.Errorf("file %s is %s, exceeds the %s limit",
			path, humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(opts.MaxSize)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger.Debug("loaded local file", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return data, nil
}

func download(ctx context.Context, targetURL string, opts Options) ([]byte, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.MaxSize > 0 {
		// One byte of headroom so an oversize download is detectable
		// rather than silently truncated at the limit.
		c.MaxBodySize = int(opts.MaxSize) + 1
	} else {
		c.MaxBodySize = 0
	}

	var body []byte
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		logger.Debug("download response received",
			"url", targetURL,
			"status", r.StatusCode,
			"size", humanize.Bytes(uint64(len(r.Body))))
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("download failed (status %d): %w", status, err)
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	if opts.MaxSize > 0 && int64(len(body)) > opts.MaxSize {
		return nil, fmt.Errorf("download from %s exceeds the %s limit",
			targetURL, humanize.Bytes(uint64(opts.MaxSize)))
	}

	return body, nil
}
