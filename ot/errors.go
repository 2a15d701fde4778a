package ot

import "errors"

var (
	// ErrInvalidFontData is returned when the font binary cannot be parsed
	// as a single-font SFNT stream.
	ErrInvalidFontData = errors.New("ot: invalid font data")

	// ErrMissingTable is returned when a table required for patching is
	// absent from the font.
	ErrMissingTable = errors.New("ot: required table missing")

	// ErrUnsupportedFormat is returned when the font lacks a mechanism this
	// module depends on, e.g. CFF-only outlines or an unsupported cmap.
	ErrUnsupportedFormat = errors.New("ot: unsupported font format")

	// ErrNamespaceExhausted is returned when no more glyph identifiers can
	// be allocated in the font's glyph namespace.
	ErrNamespaceExhausted = errors.New("ot: glyph namespace exhausted")

	// ErrGlyphNotFound is returned when a codepoint has no glyph in the font.
	ErrGlyphNotFound = errors.New("ot: glyph not found")
)
