package shell

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// resolveEncoding looks up a character encoding by its IANA name or alias
// (e.g. "utf-8", "cp866", "latin1").
func resolveEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		// The index knows the name but carries no decoder for it.
		return nil, fmt.Errorf("encoding %q has no decoder", name)
	}
	return enc, nil
}

// decode converts captured process output to a string. Bytes that are not
// valid under the encoding are a data error, not replaced silently. The
// UTF-8 decoder in x/text substitutes U+FFFD instead of erroring, so that
// path is validated explicitly.
func decode(enc encoding.Encoding, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode process output: invalid UTF-8 byte sequence")
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode process output: %w", err)
	}
	return string(out), nil
}
