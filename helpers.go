// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SWF 6 and later store strings as UTF-8.
const minUTF8Version = 6

// NullTerminatedString reads a NUL terminated string starting at the byte
// aligned position pos. The terminator must be inside the tag body.
// Strings in files older than SWF 6 are decoded as Windows-1252.
func (c TagContext) NullTerminatedString(pos int) (string, int, error) {
	b, _, err := c.Buf.Bytes(pos, c.Remaining(pos))
	if err != nil {
		return "", pos, err
	}
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", pos, fmt.Errorf("%w: string is not terminated within the tag body", ErrMalformedTag)
	}
	s, err := decodeString(b[:i], c.Version)
	if err != nil {
		return "", pos, err
	}
	return s, pos + 8*(i+1), nil
}

func decodeString(b []byte, version uint8) (string, error) {
	if version >= minUTF8Version {
		return string(b), nil
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", newInvalidFormatError(fmt.Errorf("decoding string: %w", err))
	}
	return string(s), nil
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

func firstUpper(s string) string {
	if s == "" {
		return ""
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
