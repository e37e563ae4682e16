// Package bencode decodes the binary .torrent format and derives the
// torrent's info hash from the raw info dictionary bytes.
package bencode

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// SyntaxError reports malformed bencode data at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %s at offset %d", e.Msg, e.Offset)
}

func syntaxErr(offset int, format string, v ...interface{}) *SyntaxError {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, v...)}
}

// Decode parses a single bencoded value from the start of data.
// It returns the decoded value and the number of bytes consumed.
//
// Dictionaries decode to map[string]interface{}, lists to []interface{},
// integers to int64. Byte strings decode to string when they are valid
// UTF-8, otherwise to []byte so binary payloads (piece hashes) survive
// the round trip uncorrupted.
func Decode(data []byte) (interface{}, int, error) {
	return decodeValue(data, 0)
}

func decodeValue(data []byte, pos int) (interface{}, int, error) {
	if pos >= len(data) {
		return nil, pos, syntaxErr(pos, "unexpected end of data")
	}

	switch c := data[pos]; {
	case c == 'd':
		return decodeDict(data, pos)
	case c == 'l':
		return decodeList(data, pos)
	case c == 'i':
		return decodeInt(data, pos)
	case c >= '0' && c <= '9':
		raw, next, err := decodeString(data, pos)
		if err != nil {
			return nil, pos, err
		}
		if utf8.Valid(raw) {
			return string(raw), next, nil
		}
		return raw, next, nil
	default:
		return nil, pos, syntaxErr(pos, "invalid type prefix %q", c)
	}
}

func decodeDict(data []byte, pos int) (map[string]interface{}, int, error) {
	dict := make(map[string]interface{})
	pos++ // consume 'd'

	for {
		if pos >= len(data) {
			return nil, pos, syntaxErr(pos, "unterminated dictionary")
		}
		if data[pos] == 'e' {
			return dict, pos + 1, nil
		}

		key, next, err := decodeString(data, pos)
		if err != nil {
			return nil, pos, err
		}

		value, next, err := decodeValue(data, next)
		if err != nil {
			return nil, pos, err
		}

		dict[string(key)] = value
		pos = next
	}
}

func decodeList(data []byte, pos int) ([]interface{}, int, error) {
	var list []interface{}
	pos++ // consume 'l'

	for {
		if pos >= len(data) {
			return nil, pos, syntaxErr(pos, "unterminated list")
		}
		if data[pos] == 'e' {
			return list, pos + 1, nil
		}

		value, next, err := decodeValue(data, pos)
		if err != nil {
			return nil, pos, err
		}

		list = append(list, value)
		pos = next
	}
}

func decodeInt(data []byte, pos int) (int64, int, error) {
	start := pos
	pos++ // consume 'i'

	var negative bool
	if pos < len(data) && data[pos] == '-' {
		negative = true
		pos++
	}

	var value int64
	digits := 0
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		digit := int64(data[pos] - '0')
		if value > (math.MaxInt64-digit)/10 {
			return 0, start, syntaxErr(start, "integer overflows int64")
		}
		value = value*10 + digit
		digits++
		pos++
	}

	if digits == 0 {
		return 0, start, syntaxErr(start, "integer with no digits")
	}
	if pos >= len(data) || data[pos] != 'e' {
		return 0, start, syntaxErr(start, "unterminated integer")
	}
	if negative {
		value = -value
	}

	return value, pos + 1, nil
}

func decodeString(data []byte, pos int) ([]byte, int, error) {
	start := pos

	var length int
	digits := 0
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		length = length*10 + int(data[pos]-'0')
		// A length no buffer can satisfy is rejected while the digits
		// are still small, before the accumulator can wrap.
		if length > len(data) {
			return nil, start, syntaxErr(start, "string length exceeds input size")
		}
		digits++
		pos++
	}

	if digits == 0 {
		return nil, start, syntaxErr(start, "expected string length")
	}
	if pos >= len(data) || data[pos] != ':' {
		return nil, start, syntaxErr(start, "missing ':' after string length")
	}
	pos++

	if pos+length > len(data) {
		return nil, start, syntaxErr(start, "string length %d exceeds remaining data", length)
	}

	return data[pos : pos+length], pos + length, nil
}
