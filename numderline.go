/*
Package numderline patches OpenType fonts so that long digit runs become
readable without locale support: every third digit of a number gets a visual
group marker, baked directly into the font as glyph variants and contextual
substitution rules.

A patched font carries one variant glyph per digit and group role. The
font's `GSUB` table is extended with a `calt` feature which relabels digit
runs at shaping time, so any text renderer that applies standard contextual
alternates will show the grouping. No rendering-side code is required.

Grouping styles are combinable: underlines below alternating groups,
synthetic thousands separators (real commas or narrow tick marks for
monospaced fonts), and slightly squished digit advances that open a gap at
group boundaries.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package numderline

import (
	"fmt"

	"github.com/npillmayer/numderline/rules"
	"github.com/npillmayer/numderline/variant"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'numderline.font'.
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}

// Config collects every knob of a patch run. The zero value is not usable;
// start from DefaultConfig and adjust.
type Config struct {
	Modes        rules.ModeSet // grouping styles to bake in
	MaxRunLength int           // digit runs longer than this overflow
	Decimals     bool          // treat digits after a decimal point as groupable
	SquishAll    bool          // squish short runs and lone digits as well
	Target       rules.Target  // capability profile of the emitted rules
	Rename       bool          // rewrite the name table to a derived family name
	Verify       bool          // shape sample texts through the patched font

	// Geometry values are in font units. A zero value is replaced by a
	// default derived from the font's unitsPerEm.
	UnderlineOffset    int16   // distance of the group bar below the baseline
	UnderlineThickness int16   // height of the group bar
	SquishFraction     float64 // advance reduction for non-boundary digits
	GroupShift         int16   // horizontal nudge towards the group center
	TickWidth          int16   // advance of the generated mini separator
}

// DefaultConfig returns the configuration of a plain underline patch.
func DefaultConfig() Config {
	return Config{
		Modes:        rules.Modes(rules.Underline),
		MaxRunLength: 20,
		Decimals:     true,
		Target:       rules.TargetReverseScan,
		Rename:       true,
	}
}

// GroupConfig returns the shift-and-squish preset: no underlines, every
// digit run squished, and each group nudged 100 units towards its center.
// The opened gaps alone make the grouping visible.
func GroupConfig() Config {
	c := DefaultConfig()
	c.Modes = rules.Modes(rules.Squish)
	c.GroupShift = 100
	c.SquishAll = true
	return c
}

// Validate checks config fields which the rule compiler does not cover.
func (c Config) Validate() error {
	if err := c.Modes.Validate(); err != nil {
		return err
	}
	if c.SquishFraction < 0 || c.SquishFraction >= 1 {
		return fmt.Errorf("%w: squish fraction %g outside [0,1)", rules.ErrConfig, c.SquishFraction)
	}
	if c.SquishAll && !c.Modes.Has(rules.Squish) {
		return fmt.Errorf("%w: SquishAll needs the Squish mode", rules.ErrConfig)
	}
	if c.UnderlineThickness < 0 || c.TickWidth < 0 {
		return fmt.Errorf("%w: negative glyph geometry", rules.ErrConfig)
	}
	return nil
}

// geometry resolves zero-valued geometry fields against the font's
// unitsPerEm, following the proportions of common text fonts.
func (c Config) geometry(unitsPerEm uint16) variant.Geometry {
	g := variant.Geometry{
		UnderlineOffset:    c.UnderlineOffset,
		UnderlineThickness: c.UnderlineThickness,
		SquishFraction:     c.SquishFraction,
		GroupShift:         c.GroupShift,
		TickWidth:          c.TickWidth,
	}
	upem := int16(unitsPerEm / 2) // guard against overflow in the derivations
	if g.UnderlineOffset == 0 {
		g.UnderlineOffset = upem / 5
	}
	if g.UnderlineThickness == 0 {
		g.UnderlineThickness = upem / 10
	}
	if g.SquishFraction == 0 && c.Modes.Has(rules.Squish) {
		g.SquishFraction = 0.15
	}
	if g.TickWidth == 0 && c.Modes.Has(rules.MonoMiniComma) {
		g.TickWidth = upem / 6
	}
	return g
}
