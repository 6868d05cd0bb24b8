package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxExportSize caps how much of a single export is read.
const maxExportSize = 32 << 20

// Client fetches exports from URLs or local files.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client whose HTTP requests time out after timeout.
func NewClient(timeout time.Duration, version string) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "finboard/" + version,
	}
}

// Export is the raw body of one source.
type Export struct {
	Source string
	Body   []byte
}

// IsRemote reports whether loc is fetched over HTTP.
func IsRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// Fetch reads the export at loc, which is an http(s) URL or a file path.
func (c *Client) Fetch(ctx context.Context, loc string) ([]byte, error) {
	if !IsRemote(loc) {
		data, err := os.ReadFile(strings.TrimPrefix(loc, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", loc, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/tab-separated-values, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", loc, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// FetchAll fetches every location concurrently. The result keeps the order
// of locs. The first failure cancels the remaining fetches.
func (c *Client) FetchAll(ctx context.Context, locs []string) ([]Export, error) {
	out := make([]Export, len(locs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, loc := range locs {
		i, loc := i, loc
		eg.Go(func() error {
			body, err := c.Fetch(gctx, loc)
			if err != nil {
				return err
			}
			out[i] = Export{Source: loc, Body: body}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
