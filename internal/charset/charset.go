// Package charset turns raw record bytes into UTF-8 text. Old Chinese, Korean
// and Japanese archives are rarely UTF-8, and their CA property is often wrong
// or missing.
package charset

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	errs "kifudb/internal/errors"
)

// Fallback is used for bytes that are neither valid UTF-8 nor labelled with
// a charset we know. Most such records come from Chinese sites.
var Fallback encoding.Encoding = simplifiedchinese.GB18030

var (
	bom = []byte{0xEF, 0xBB, 0xBF}
	// CA sits in the root node, so the head of the file is enough.
	caProperty = regexp.MustCompile(`CA\s*\[([^\]]*)\]`)
)

const sniffLimit = 4096

// Lookup returns the encoding for a label such as "GB2312", "gbk", "Big5" or
// "shift_jis".
func Lookup(name string) (encoding.Encoding, error) {
	e, err := htmlindex.Get(strings.TrimSpace(name))
	if err != nil {
		return nil, errors.Wrapf(errs.ErrUnknownCharset, "charset %q", name)
	}
	return e, nil
}

// Sniff returns the charset named by the CA property near the start of data,
// or "" when there is none.
func Sniff(data []byte) string {
	head := data
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	m := caProperty.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}

// Decode converts data to UTF-8. A declared charset wins and must be known.
// Otherwise the CA property is consulted; a UTF-8 label on bytes that are not
// UTF-8 is ignored and the Fallback is used instead.
func Decode(data []byte, declared string) (string, error) {
	data = bytes.TrimPrefix(data, bom)

	if declared != "" {
		e, err := Lookup(declared)
		if err != nil {
			return "", err
		}
		return decode(data, e)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	if label := Sniff(data); label != "" {
		if e, err := Lookup(label); err == nil && !isUTF8(e) {
			return decode(data, e)
		}
	}
	return decode(data, Fallback)
}

func isUTF8(e encoding.Encoding) bool {
	name, err := htmlindex.Name(e)
	return err == nil && name == "utf-8"
}

func decode(data []byte, e encoding.Encoding) (string, error) {
	if isUTF8(e) {
		if !utf8.Valid(data) {
			return "", errors.Wrap(errs.ErrMalformedRecord, "charset: invalid utf-8")
		}
		return string(data), nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), e.NewDecoder()))
	if err != nil {
		return "", errors.Wrap(err, "charset: decode")
	}
	return string(out), nil
}
