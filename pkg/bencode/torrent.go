package bencode

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrMissingInfo is returned when a torrent has no info dictionary.
var ErrMissingInfo = errors.New("bencode: torrent has no info dictionary")

// File is one member of a torrent's file listing. Indices start at 1 to
// match the numbering used by debrid provider APIs.
type File struct {
	Index int
	Path  string
	Size  int64
}

// Torrent is the decoded metadata of a .torrent file.
type Torrent struct {
	InfoHash string // 40-char lowercase hex SHA-1 of the info dictionary
	Name     string
	Files    []File
}

// TotalSize returns the sum of all file sizes in the torrent.
func (t *Torrent) TotalSize() int64 {
	var total int64
	for _, f := range t.Files {
		total += f.Size
	}
	return total
}

// ParseTorrent decodes a .torrent buffer, derives its info hash and
// flattens the file listing.
//
// The hash is computed over the exact byte span the info dictionary
// occupies in the original buffer, never over a re-serialization, so the
// digest matches what trackers and debrid services report regardless of
// how the encoder ordered or typed its fields.
func ParseTorrent(data []byte) (*Torrent, error) {
	top, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	dict, ok := top.(map[string]interface{})
	if !ok {
		return nil, syntaxErr(0, "top-level value is not a dictionary")
	}

	info, ok := dict["info"].(map[string]interface{})
	if !ok {
		return nil, ErrMissingInfo
	}

	start, end, err := infoSpan(data)
	if err != nil {
		return nil, err
	}
	digest := sha1.Sum(data[start:end])

	torrent := &Torrent{
		InfoHash: hex.EncodeToString(digest[:]),
		Name:     stringField(info, "name"),
	}
	torrent.Files = listFiles(info, torrent.Name)

	return torrent, nil
}

// infoSpan walks the top-level dictionary and returns the [start, end)
// byte range of the raw value stored under the "info" key.
func infoSpan(data []byte) (int, int, error) {
	if len(data) == 0 || data[0] != 'd' {
		return 0, 0, syntaxErr(0, "top-level value is not a dictionary")
	}

	pos := 1
	for pos < len(data) && data[pos] != 'e' {
		key, next, err := decodeString(data, pos)
		if err != nil {
			return 0, 0, err
		}

		valueStart := next
		_, valueEnd, err := decodeValue(data, valueStart)
		if err != nil {
			return 0, 0, err
		}

		if string(key) == "info" {
			return valueStart, valueEnd, nil
		}
		pos = valueEnd
	}

	return 0, 0, ErrMissingInfo
}

// listFiles flattens the info dictionary into a 1-based file listing.
// Multi-file torrents join each entry's path segments under the torrent
// name; single-file torrents produce exactly one entry.
func listFiles(info map[string]interface{}, name string) []File {
	entries, multi := info["files"].([]interface{})
	if !multi {
		length, _ := info["length"].(int64)
		return []File{{Index: 1, Path: name, Size: length}}
	}

	files := make([]File, 0, len(entries))
	for i, entry := range entries {
		fileDict, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		segments, _ := fileDict["path"].([]interface{})
		parts := make([]string, 0, len(segments)+1)
		if name != "" {
			parts = append(parts, name)
		}
		for _, seg := range segments {
			if s, ok := seg.(string); ok {
				parts = append(parts, s)
			}
		}

		length, _ := fileDict["length"].(int64)
		files = append(files, File{
			Index: i + 1,
			Path:  strings.Join(parts, "/"),
			Size:  length,
		})
	}

	return files
}

func stringField(dict map[string]interface{}, key string) string {
	if s, ok := dict[key].(string); ok {
		return s
	}
	return ""
}
