package alldebrid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	var uploadAgent, filesAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/magnet/upload":
			require.NoError(t, r.ParseForm())
			uploadAgent = r.Form.Get("agent")
			w.Write([]byte(`{"status":"success","data":{"magnets":[{"id":7,"name":"Show.S01.1080p","ready":true}]}}`))
		case "/magnet/files":
			filesAgent = r.URL.Query().Get("agent")
			w.Write([]byte(`{"status":"success","data":{"magnets":[{"id":7,"name":"Show.S01.1080p","ready":true,` +
				`"links":[{"link":"https://example.com/dl/1","filename":"Show.S01/Show.S01E01.mkv","size":2000000000}]}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient("key", "packarr")
	client.baseURL = srv.URL

	listing, err := client.ListFiles(context.Background(), "aabbccddeeff00112233445566778899aabbccdd")
	require.NoError(t, err)
	assert.Equal(t, "Show.S01.1080p", listing.Name)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, 1, listing.Files[0].Index)
	assert.Equal(t, "Show.S01/Show.S01E01.mkv", listing.Files[0].Path)
	assert.Equal(t, int64(2000000000), listing.Files[0].Size)

	// Both endpoints must identify the application via the agent param.
	assert.Equal(t, "packarr", uploadAgent)
	assert.Equal(t, "packarr", filesAgent)
}

func TestListFilesRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("key", "packarr")
	client.baseURL = srv.URL

	_, err := client.ListFiles(context.Background(), "aabbccddeeff00112233445566778899aabbccdd")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestListFilesNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"magnets":[{"id":7,"name":"Show.S01.1080p","ready":false}]}}`))
	}))
	defer srv.Close()

	client := NewClient("key", "packarr")
	client.baseURL = srv.URL

	_, err := client.ListFiles(context.Background(), "aabbccddeeff00112233445566778899aabbccdd")
	assert.ErrorIs(t, err, ErrNotReady)
}
