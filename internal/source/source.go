// Package source reads tracer exports from disk and normalizes them to UTF-8.
//
// Hospital exports arrive as UTF-8 (usually with a byte-order mark), UTF-16
// from spreadsheet "Unicode text" saves, or the Thai Windows code page. The
// auto mode picks between them without user input.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names a supported input character set.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16       Encoding = "utf-16"
	EncodingWindows874  Encoding = "windows-874"
	EncodingWindows1252 Encoding = "windows-1252"
)

// ErrEmptyFile is returned for zero-byte input.
var ErrEmptyFile = errors.New("empty file")

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Encodings lists every accepted encoding name.
func Encodings() []Encoding {
	return []Encoding{EncodingAuto, EncodingUTF8, EncodingUTF16, EncodingWindows874, EncodingWindows1252}
}

// ParseEncoding resolves a user-supplied encoding name. Blank means auto.
func ParseEncoding(name string) (Encoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16":
		return EncodingUTF16, nil
	case "windows-874", "cp874", "tis-620", "tis620":
		return EncodingWindows874, nil
	case "windows-1252", "cp1252", "latin1":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadFile loads path and decodes it to UTF-8 text.
func ReadFile(path string, enc Encoding) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, err := Decode(data, enc)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return text, nil
}

// Decode converts raw bytes in the given encoding to a UTF-8 string.
func Decode(data []byte, enc Encoding) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if enc == "" || enc == EncodingAuto {
		enc = detect(data)
	}
	switch enc {
	case EncodingUTF8:
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	case EncodingUTF16:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data)
	case EncodingWindows874:
		return decodeWith(charmap.Windows874, data)
	case EncodingWindows1252:
		return decodeWith(charmap.Windows1252, data)
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

func detect(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16
	case utf8.Valid(data):
		return EncodingUTF8
	default:
		return EncodingWindows874
	}
}

func decodeWith(e encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("transcode: %w", err)
	}
	return string(out), nil
}
