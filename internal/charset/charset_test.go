package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	errs "kifudb/internal/errors"
)

func encodeWith(t *testing.T, e encoding.Encoding, s string) []byte {
	t.Helper()
	b, err := e.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDecodeUTF8(t *testing.T) {
	const text = "(;GM[1]PB[柯洁])"

	got, err := Decode([]byte(text), "")
	require.NoError(t, err)
	assert.Equal(t, text, got)

	got, err = Decode(append([]byte{0xEF, 0xBB, 0xBF}, text...), "")
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestDecodeSniffed(t *testing.T) {
	const text = "(;GM[1]CA[gb2312]PB[古力]PW[常昊]RE[黑中盘胜])"
	raw := encodeWith(t, simplifiedchinese.GBK, text)

	got, err := Decode(raw, "")
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestDecodeFallback(t *testing.T) {
	cases := []string{
		"(;GM[1]PB[古力])",
		// a wrong UTF-8 label is common in converted archives
		"(;GM[1]CA[UTF-8]PB[古力])",
		"(;GM[1]CA[klingon]PB[古力])",
	}
	for _, text := range cases {
		got, err := Decode(encodeWith(t, simplifiedchinese.GB18030, text), "")
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestDecodeDeclared(t *testing.T) {
	const text = "(;GM[1]PB[聶衛平])"
	raw := encodeWith(t, traditionalchinese.Big5, text)

	got, err := Decode(raw, "Big5")
	require.NoError(t, err)
	assert.Equal(t, text, got)

	_, err = Decode(raw, "klingon")
	assert.ErrorIs(t, err, errs.ErrUnknownCharset)

	_, err = Decode(raw, "utf-8")
	assert.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "GB2312", Sniff([]byte("(;GM[1]FF[4]CA[ GB2312 ]SZ[19])")))
	assert.Equal(t, "", Sniff([]byte("(;GM[1]SZ[19])")))

	long := make([]byte, sniffLimit)
	for i := range long {
		long[i] = ' '
	}
	assert.Equal(t, "", Sniff(append(long, "CA[gbk]"...)))
}
