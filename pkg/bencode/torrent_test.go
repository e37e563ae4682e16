package bencode

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleFileTorrent(name string, length int64) []byte {
	info := fmt.Sprintf("d6:lengthi%de4:name%d:%se", length, len(name), name)
	return []byte(fmt.Sprintf("d8:announce31:http://tracker.example/announce4:info%se", info))
}

func multiFileTorrent() []byte {
	info := "d5:files" +
		"l" +
		"d6:lengthi2000000000e4:pathl21:Show.S01E01.1080p.mkvee" +
		"d6:lengthi2100000000e4:pathl8:Season 221:Show.S02E01.1080p.mkvee" +
		"d6:lengthi5000e4:pathl10:readme.txtee" +
		"e" +
		"4:name13:Show.Complete" +
		"e"
	return []byte("d4:info" + info + "e")
}

func TestParseTorrentSingleFile(t *testing.T) {
	data := singleFileTorrent("Movie.2015.1080p.mkv", 1500000000)

	torrent, err := ParseTorrent(data)
	require.NoError(t, err)

	assert.Equal(t, "Movie.2015.1080p.mkv", torrent.Name)
	require.Len(t, torrent.Files, 1)
	assert.Equal(t, 1, torrent.Files[0].Index)
	assert.Equal(t, "Movie.2015.1080p.mkv", torrent.Files[0].Path)
	assert.Equal(t, int64(1500000000), torrent.Files[0].Size)
	assert.Equal(t, int64(1500000000), torrent.TotalSize())
}

func TestParseTorrentMultiFile(t *testing.T) {
	torrent, err := ParseTorrent(multiFileTorrent())
	require.NoError(t, err)

	assert.Equal(t, "Show.Complete", torrent.Name)
	require.Len(t, torrent.Files, 3)

	assert.Equal(t, "Show.Complete/Show.S01E01.1080p.mkv", torrent.Files[0].Path)
	assert.Equal(t, "Show.Complete/Season 2/Show.S02E01.1080p.mkv", torrent.Files[1].Path)
	assert.Equal(t, "Show.Complete/readme.txt", torrent.Files[2].Path)

	// Indices are 1-based and follow listing order.
	for i, f := range torrent.Files {
		assert.Equal(t, i+1, f.Index)
	}
}

func TestInfoHashCoversRawSpan(t *testing.T) {
	// The hash must be the SHA-1 of the exact bytes of the info value as
	// it appears in the buffer.
	data := singleFileTorrent("Movie.mkv", 42)

	start, end, err := infoSpan(data)
	require.NoError(t, err)
	expected := sha1.Sum(data[start:end])

	torrent, err := ParseTorrent(data)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(expected[:]), torrent.InfoHash)
	assert.Len(t, torrent.InfoHash, 40)
}

func TestInfoHashDeterministic(t *testing.T) {
	data := multiFileTorrent()

	first, err := ParseTorrent(data)
	require.NoError(t, err)
	second, err := ParseTorrent(data)
	require.NoError(t, err)

	assert.Equal(t, first.InfoHash, second.InfoHash)
}

func TestInfoHashIgnoresSiblingKeys(t *testing.T) {
	// Two torrents with identical info dictionaries but different
	// announce URLs must share an info hash.
	info := "d6:lengthi42e4:name9:Movie.mkve"
	a := []byte("d8:announce11:http://a.io4:info" + info + "e")
	b := []byte("d8:announce11:http://b.io4:info" + info + "e")

	ta, err := ParseTorrent(a)
	require.NoError(t, err)
	tb, err := ParseTorrent(b)
	require.NoError(t, err)

	assert.Equal(t, ta.InfoHash, tb.InfoHash)
}

func TestParseTorrentMissingInfo(t *testing.T) {
	_, err := ParseTorrent([]byte("d8:announce11:http://a.ioe"))
	assert.ErrorIs(t, err, ErrMissingInfo)
}

func TestParseTorrentNotADict(t *testing.T) {
	_, err := ParseTorrent([]byte("l4:spame"))
	require.Error(t, err)
}
