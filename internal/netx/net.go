// Package netx has the HTTP plumbing for fetching file content from
// object-storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchURL downloads the content at url with a plain GET. Non-200
// responses are reported as errors with the response body included.
func FetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch failed: %s; body: %s", resp.Status, string(b))
	}

	return io.ReadAll(resp.Body)
}
