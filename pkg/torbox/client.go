// Package torbox is a minimal TorBox API client used as the secondary
// source of torrent file listings.
package torbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amaumene/packarr/pkg/httputil"
)

// ErrRateLimited is returned when the API answers HTTP 429.
var ErrRateLimited = errors.New("torbox: rate limited")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: httputil.NewHTTPClient(30 * time.Second),
		baseURL:    "https://api.torbox.app/v1/api",
		apiKey:     apiKey,
	}
}

// FileEntry is one file of a torrent, indexed from 1.
type FileEntry struct {
	Index int
	Path  string
	Size  int64
}

// Listing is the file listing of one torrent.
type Listing struct {
	Name  string
	Files []FileEntry
}

type torrentInfoResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
	Data    struct {
		Name  string `json:"name"`
		Hash  string `json:"hash"`
		Size  int64  `json:"size"`
		Files []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"files"`
	} `json:"data"`
}

// ListFiles returns the file listing TorBox holds for the torrent
// identified by infoHash.
func (c *Client) ListFiles(ctx context.Context, infoHash string) (*Listing, error) {
	params := url.Values{}
	params.Set("hash", infoHash)

	endpoint := fmt.Sprintf("%s/torrents/torrentinfo?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result torrentInfoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("torbox API error: %s", result.Detail)
	}

	listing := &Listing{Name: result.Data.Name}
	for i, f := range result.Data.Files {
		listing.Files = append(listing.Files, FileEntry{
			Index: i + 1,
			Path:  f.Name,
			Size:  f.Size,
		})
	}
	return listing, nil
}
