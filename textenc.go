package tabclean

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8BOM is the utf-8 byte-order marker.
var UTF8BOM = []byte{'\xef', '\xbb', '\xbf'}

var (
	utf16LEBOM = []byte{'\xff', '\xfe'}
	utf16BEBOM = []byte{'\xfe', '\xff'}
)

// fallbackEncoding decodes text that chardet could not classify.
var fallbackEncoding encoding.Encoding = charmap.Windows1252

// DetectEncoding returns the charset label of content, "UTF-8" when the
// content is valid UTF-8.
func DetectEncoding(content []byte) (string, error) {
	switch {
	case bytes.HasPrefix(content, utf16LEBOM):
		return "UTF-16LE", nil
	case bytes.HasPrefix(content, utf16BEBOM):
		return "UTF-16BE", nil
	}
	if utf8.Valid(content) {
		return "UTF-8", nil
	}

	results, err := chardet.NewTextDetector().DetectAll(content)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", chardet.NotDetectedError
	}
	return results[0].Charset, nil
}

// DecodeText converts content to a UTF-8 string and returns the detected
// charset label. A leading UTF-8 BOM is removed.
func DecodeText(content []byte) (string, string, error) {
	label, err := DetectEncoding(content)
	if err != nil {
		label = "windows-1252"
		out, _, err := transform.Bytes(fallbackEncoding.NewDecoder(), content)
		if err != nil {
			return "", label, fmt.Errorf("decode as %s: %w", label, err)
		}
		return string(out), label, nil
	}

	if label == "UTF-8" {
		return string(bytes.TrimPrefix(content, UTF8BOM)), label, nil
	}

	enc := lookupEncoding(label)
	if enc == nil {
		return "", label, fmt.Errorf("unknown encoding: %s", label)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return "", label, fmt.Errorf("decode as %s: %w", label, err)
	}
	return string(bytes.TrimPrefix(out, UTF8BOM)), label, nil
}

func lookupEncoding(label string) encoding.Encoding {
	switch strings.ToUpper(label) {
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	}
	enc, _ := charset.Lookup(label)
	return enc
}
