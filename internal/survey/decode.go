package survey

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned by ReadText when the input exceeds its limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadText reads an uploaded file into a string.
//
// A UTF-8 or UTF-16 byte order mark selects the decoding and is dropped;
// without one the bytes are read as UTF-8. Invalid sequences become U+FFFD so
// spreadsheet exports with stray bytes still parse. limit <= 0 disables the
// size check.
func ReadText(r io.Reader, limit int64) (string, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(raw)) > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(decoded), nil
}
