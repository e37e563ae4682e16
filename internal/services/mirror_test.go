package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/packarr/pkg/bencode"
	"github.com/amaumene/packarr/pkg/logger"
)

// mirrorTorrent returns raw single-file torrent metadata and the info
// hash a well-behaved mirror would serve it under.
func mirrorTorrent(t *testing.T) ([]byte, string) {
	t.Helper()

	data := []byte("d4:infod6:lengthi2000000000e4:name21:Show.S01E01.1080p.mkvee")
	torrent, err := bencode.ParseTorrent(data)
	require.NoError(t, err)
	return data, torrent.InfoHash
}

func TestMirrorFirstSuccessWinsAndCancelsLosers(t *testing.T) {
	data, hash := mirrorTorrent(t)

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer fast.Close()

	slowCancelled := make(chan struct{}, 1)
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			slowCancelled <- struct{}{}
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()

	provider := NewMirrorProvider([]string{
		slow.URL + "/torrent/%s",
		fast.URL + "/torrent/%s",
	}, logger.New())

	listing, err := provider.ListFiles(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, "mirror", listing.Source)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "Show.S01E01.1080p.mkv", listing.Files[0].Path)

	// The winning mirror must not wait for the slow one, and winning
	// must cancel the in-flight request to the slow one.
	select {
	case <-slowCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("losing mirror request was not cancelled")
	}
}

func TestMirrorFallsThroughFailingMirror(t *testing.T) {
	data, hash := mirrorTorrent(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer broken.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer good.Close()

	provider := NewMirrorProvider([]string{
		broken.URL + "/torrent/%s",
		good.URL + "/torrent/%s",
	}, logger.New())

	listing, err := provider.ListFiles(context.Background(), hash)
	require.NoError(t, err)
	require.Len(t, listing.Files, 1)
}

func TestMirrorRejectsWrongTorrent(t *testing.T) {
	data, hash := mirrorTorrent(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	provider := NewMirrorProvider([]string{srv.URL + "/torrent/%s"}, logger.New())

	// A mirror answering with metadata for a different torrent must be
	// treated as a failure, not trusted.
	require.NotEqual(t, testHash, hash)
	_, err := provider.ListFiles(context.Background(), testHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong torrent")
}

func TestMirrorNoMirrorsConfigured(t *testing.T) {
	provider := NewMirrorProvider(nil, logger.New())

	_, err := provider.ListFiles(context.Background(), testHash)
	require.Error(t, err)
}
