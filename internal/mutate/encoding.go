package mutate

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/mleduque/modda/internal/manifest"
)

func codecFor(enc manifest.Encoding) (*charmap.Charmap, bool) {
	switch enc {
	case manifest.EncodingWin1252:
		return charmap.Windows1252, true
	case manifest.EncodingWin1251:
		return charmap.Windows1251, true
	default:
		return nil, false
	}
}

// decodeText converts raw into UTF-8 text using the declared encoding.
func decodeText(raw []byte, enc manifest.Encoding) (string, error) {
	cm, ok := codecFor(enc)
	if !ok {
		return string(raw), nil
	}
	out, err := cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding as %v: %w", enc, err)
	}
	return string(out), nil
}

// encodeText converts UTF-8 text back to the declared encoding for writing.
func encodeText(text string, enc manifest.Encoding) ([]byte, error) {
	cm, ok := codecFor(enc)
	if !ok {
		return []byte(text), nil
	}
	out, err := cm.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding as %v: %w", enc, err)
	}
	return out, nil
}

// decodeAdvisory reads raw as UTF-8; on invalid UTF-8 it falls back to a
// WIN1252 decode (the encoding most Infinity Engine mod files use when not
// UTF-8) and reports that the fallback was used so the caller can log it.
func decodeAdvisory(raw []byte) (text string, usedFallback bool, err error) {
	if utf8.Valid(raw) {
		return string(raw), false, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, fmt.Errorf("content is not valid UTF-8 and WIN1252 fallback failed: %w", err)
	}
	return string(decoded), true, nil
}
