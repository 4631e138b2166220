package palette

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFetchBytes caps the download size of a remote logo.
const maxFetchBytes = 10 << 20

var defaultClient = &http.Client{Timeout: 15 * time.Second}

// FetchError reports a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("palette: fetch %s: status %d", e.URL, e.StatusCode)
}

// Fetch downloads url and extracts its palette.  A nil client uses a
// default with a 15-second timeout.  Transport errors, non-2xx responses,
// and decode failures are all returned to the caller.
func Fetch(ctx context.Context, client *http.Client, url string, opts Options) (Result, error) {
	if client == nil {
		client = defaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("palette: fetch %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("palette: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	return FromReader(io.LimitReader(resp.Body, maxFetchBytes), opts)
}
