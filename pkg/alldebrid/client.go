// Package alldebrid is a minimal AllDebrid API client used to list the
// files of a torrent the service has cached.
package alldebrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amaumene/packarr/pkg/httputil"
)

// ErrRateLimited is returned when the API answers HTTP 429.
var ErrRateLimited = errors.New("alldebrid: rate limited")

// ErrNotReady is returned when the magnet is known but its file listing
// is not available yet.
var ErrNotReady = errors.New("alldebrid: magnet not ready")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	agent      string
}

// NewClient creates a client authenticating with apiKey. The agent
// string identifies the application in every API call, as the AllDebrid
// API requires.
func NewClient(apiKey, agent string) *Client {
	return &Client{
		httpClient: httputil.NewHTTPClient(30 * time.Second),
		baseURL:    "https://api.alldebrid.com/v4",
		apiKey:     apiKey,
		agent:      agent,
	}
}

// FileEntry is one file of a magnet, indexed from 1 in the order the
// API reports it.
type FileEntry struct {
	Index int
	Path  string
	Size  int64
}

// Listing is the file listing of one magnet.
type Listing struct {
	Name  string
	Files []FileEntry
}

type magnetUploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		Magnets []struct {
			ID    int64  `json:"id"`
			Hash  string `json:"hash"`
			Name  string `json:"name"`
			Size  int64  `json:"size"`
			Ready bool   `json:"ready"`
		} `json:"magnets"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type magnetFilesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Magnets []struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
			Links []struct {
				Link     string `json:"link"`
				Filename string `json:"filename"`
				Size     int64  `json:"size"`
			} `json:"links"`
		} `json:"magnets"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListFiles returns the file listing of the torrent identified by
// infoHash. The magnet is registered first, which is instantaneous for
// content AllDebrid already caches.
func (c *Client) ListFiles(ctx context.Context, infoHash string) (*Listing, error) {
	magnetID, name, err := c.uploadMagnet(ctx, infoHash)
	if err != nil {
		return nil, err
	}

	listing, err := c.magnetFiles(ctx, magnetID)
	if err != nil {
		return nil, err
	}
	if listing.Name == "" {
		listing.Name = name
	}
	return listing, nil
}

func (c *Client) uploadMagnet(ctx context.Context, infoHash string) (int64, string, error) {
	endpoint := fmt.Sprintf("%s/magnet/upload", c.baseURL)

	formData := url.Values{}
	formData.Set("agent", c.agent)
	formData.Set("apikey", c.apiKey)
	formData.Add("magnets[]", fmt.Sprintf("magnet:?xt=urn:btih:%s", infoHash))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result magnetUploadResponse
	if err := c.do(req, &result); err != nil {
		return 0, "", err
	}

	if result.Error != nil {
		return 0, "", fmt.Errorf("alldebrid API error: %s - %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Data.Magnets) == 0 {
		return 0, "", fmt.Errorf("alldebrid returned no magnet for hash %s", infoHash)
	}

	magnet := result.Data.Magnets[0]
	if !magnet.Ready {
		return 0, "", ErrNotReady
	}
	return magnet.ID, magnet.Name, nil
}

func (c *Client) magnetFiles(ctx context.Context, magnetID int64) (*Listing, error) {
	params := url.Values{}
	params.Set("agent", c.agent)
	params.Set("apikey", c.apiKey)
	params.Set("id", fmt.Sprintf("%d", magnetID))

	endpoint := fmt.Sprintf("%s/magnet/files?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result magnetFilesResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, fmt.Errorf("alldebrid API error: %s - %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Data.Magnets) == 0 {
		return nil, fmt.Errorf("alldebrid returned no files for magnet %d", magnetID)
	}

	magnet := result.Data.Magnets[0]
	listing := &Listing{Name: magnet.Name}
	for i, link := range magnet.Links {
		listing.Files = append(listing.Files, FileEntry{
			Index: i + 1,
			Path:  link.Filename,
			Size:  link.Size,
		})
	}
	return listing, nil
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
