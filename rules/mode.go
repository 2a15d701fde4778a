package rules

import (
	"errors"
	"fmt"
	"strings"
)

// OutputMode selects a visual grouping treatment. Modes may be combined;
// each enabled mode contributes its transform to the variant glyphs and its
// rule flavor to the compiled program.
type OutputMode uint8

const (
	// Underline draws a bar below alternating groups of three digits.
	Underline OutputMode = iota
	// InsertComma appends the font's comma glyph after each complete group.
	InsertComma
	// Squish narrows the advance of non-final group positions, visually
	// clustering each group without adding ink.
	Squish
	// MonoMiniComma appends a small fixed-width tick suited to monospaced
	// contexts instead of the font's comma.
	MonoMiniComma

	numOutputModes = iota
)

func (m OutputMode) String() string {
	switch m {
	case Underline:
		return "underline"
	case InsertComma:
		return "commas"
	case Squish:
		return "squish"
	case MonoMiniComma:
		return "mono-commas"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ErrUnsupportedMode flags an output mode with no corresponding rule stage
// or glyph transform.
var ErrUnsupportedMode = errors.New("rules: unsupported output mode")

// ModeSet is a set of output modes.
type ModeSet uint8

// Modes builds a ModeSet.
func Modes(modes ...OutputMode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s |= 1 << m
	}
	return s
}

// Has returns true if mode m is enabled.
func (s ModeSet) Has(m OutputMode) bool {
	return s&(1<<m) != 0
}

// IsEmpty returns true if no mode is enabled.
func (s ModeSet) IsEmpty() bool {
	return s == 0
}

// Validate rejects mode bits outside the known mode range.
func (s ModeSet) Validate() error {
	if s>>numOutputModes != 0 {
		return fmt.Errorf("%w: unknown mode bit in %08b", ErrUnsupportedMode, uint8(s))
	}
	if s.Has(InsertComma) && s.Has(MonoMiniComma) {
		return fmt.Errorf("%w: commas and mono-commas are mutually exclusive", ErrUnsupportedMode)
	}
	return nil
}

func (s ModeSet) String() string {
	var parts []string
	for m := OutputMode(0); m < numOutputModes; m++ {
		if s.Has(m) {
			parts = append(parts, m.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}
