package bencode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalars(t *testing.T) {
	value, n, err := Decode([]byte("i42e"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)
	assert.Equal(t, 4, n)

	value, _, err = Decode([]byte("i-7e"))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), value)

	value, n, err = Decode([]byte("4:spam"))
	require.NoError(t, err)
	assert.Equal(t, "spam", value)
	assert.Equal(t, 6, n)
}

func TestDecodeBinaryString(t *testing.T) {
	// Invalid UTF-8 must come back as raw bytes, not a mangled string.
	value, _, err := Decode([]byte("3:\xff\xfe\x01"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe, 0x01}, value)
}

func TestDecodeList(t *testing.T) {
	value, _, err := Decode([]byte("l4:spami42ee"))
	require.NoError(t, err)

	list, ok := value.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "spam", list[0])
	assert.Equal(t, int64(42), list[1])
}

func TestDecodeDict(t *testing.T) {
	value, _, err := Decode([]byte("d3:cow3:moo4:spaml1:a1:bee"))
	require.NoError(t, err)

	dict, ok := value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "moo", dict["cow"])
	assert.Equal(t, []interface{}{"a", "b"}, dict["spam"])
}

func TestDecodeNested(t *testing.T) {
	value, _, err := Decode([]byte("d4:infod4:name4:test6:lengthi100eee"))
	require.NoError(t, err)

	dict := value.(map[string]interface{})
	info, ok := dict["info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test", info["name"])
	assert.Equal(t, int64(100), info["length"])
}

func TestDecodeHugeLengthPrefix(t *testing.T) {
	// A length prefix wider than the int range must fail cleanly. A
	// wrapped accumulator would either panic slicing past the buffer or
	// decode a truncated string as if the input were valid.
	for _, input := range []string{
		"18446744073709551615:x",
		"18446744073709551617:a",
		"99999999999999999999999999:abc",
	} {
		_, _, err := Decode([]byte(input))
		require.Error(t, err, input)

		var syntaxErr *SyntaxError
		assert.ErrorAs(t, err, &syntaxErr, input)
	}
}

func TestDecodeIntegerBounds(t *testing.T) {
	value, _, err := Decode([]byte("i9223372036854775807e"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), value)

	_, _, err = Decode([]byte("i9223372036854775808e"))
	require.Error(t, err)

	var syntaxErr *SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad prefix", "x42e"},
		{"unterminated int", "i42"},
		{"int without digits", "ie"},
		{"unterminated dict", "d3:cow3:moo"},
		{"unterminated list", "l4:spam"},
		{"string too long", "10:abc"},
		{"missing colon", "4spam"},
		{"length prefix overflow", "18446744073709551615:x"},
		{"length prefix wraparound", "18446744073709551617:a"},
		{"integer overflow", "i92233720368547758089e"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tc.input))
			require.Error(t, err)

			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}
