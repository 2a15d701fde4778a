package variant

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
)

// ErrDuplicateVariant flags two generated glyphs for the same key. This is
// an internal invariant violation, not a property of the input font.
var ErrDuplicateVariant = errors.New("duplicate variant glyph for key")

// Base describes the digit glyph a variant family is derived from.
type Base struct {
	Digit   rules.DigitClass
	Glyph   ot.GlyphID
	Advance uint16
	Lsb     int16
	BBox    ot.BBox
}

// Geometry holds the construction parameters in font units.
type Geometry struct {
	UnderlineOffset    int16   // distance of the bar's top below the baseline
	UnderlineThickness int16   // bar height
	SquishFraction     float64 // advance reduction for squished positions
	GroupShift         int16   // horizontal huddle offset, 0 disables
	TickWidth          int16   // advance of the mini separator tick
}

// Helpers names the pre-allocated glyphs variants may reference as
// components. Bars maps a digit advance width to its underline bar glyph;
// Comma is the font's own comma, zero when the font has none.
type Helpers struct {
	Bars         map[uint16]ot.GlyphID
	Tick         ot.GlyphID
	Comma        ot.GlyphID
	CommaAdvance uint16
	CommaBBox    ot.BBox
}

// Glyph is one generated variant: the encoded composite glyph record plus
// its horizontal metrics.
type Glyph struct {
	Data    []byte
	Advance uint16
	Lsb     int16
	BBox    ot.BBox
}

// UnderlineBar encodes the bar glyph underlining one digit cell of the
// given advance width. One bar serves every digit sharing that advance.
func UnderlineBar(width uint16, geom Geometry) ([]byte, ot.BBox) {
	bbox := barBBox(width, geom)
	return ot.EncodeSimpleGlyph([]ot.Rect{{BBox: bbox}}), bbox
}

func barBBox(width uint16, geom Geometry) ot.BBox {
	return ot.BBox{
		XMin: 0,
		YMin: -geom.UnderlineOffset - geom.UnderlineThickness,
		XMax: int16(width),
		YMax: -geom.UnderlineOffset,
	}
}

// MiniTick encodes the narrow separator mark used instead of a full comma
// when advances must stay near-monospaced. It sits on the baseline and
// fills its whole advance.
func MiniTick(geom Geometry) ([]byte, ot.BBox) {
	bbox := tickBBox(geom)
	return ot.EncodeSimpleGlyph([]ot.Rect{{BBox: bbox}}), bbox
}

func tickBBox(geom Geometry) ot.BBox {
	h := geom.UnderlineOffset + geom.UnderlineThickness
	return ot.BBox{
		XMin: 0,
		YMin: -h,
		XMax: geom.TickWidth,
		YMax: 0,
	}
}

// Generate builds every variant glyph for one base digit: the seven label
// families plus the overflow copy. The result maps each key to exactly one
// glyph; base outlines are referenced as components, never duplicated.
func Generate(base Base, modes rules.ModeSet, geom Geometry, help Helpers) (map[Key]Glyph, error) {
	out := make(map[Key]Glyph, rules.NumFamilies+1)
	for f := 0; f < rules.NumFamilies; f++ {
		key := FamilyKey(base.Digit, f)
		g, err := generateOne(base, key, modes, geom, help)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, key.Name())
		}
		out[key] = g
	}
	key := OverflowKey(base.Digit)
	out[key] = Glyph{
		Data:    ot.EncodeCompositeGlyph(base.BBox, []ot.Component{{Glyph: base.Glyph}}),
		Advance: base.Advance,
		Lsb:     base.Lsb,
		BBox:    base.BBox,
	}
	tracer().Debugf("generated %d variants for digit %d", len(out), base.Digit)
	return out, nil
}

func generateOne(base Base, key Key, modes rules.ModeSet, geom Geometry, help Helpers) (Glyph, error) {
	var dx int16
	if geom.GroupShift != 0 {
		switch key.Pos {
		case 0:
			dx = -geom.GroupShift
		case 2:
			dx = geom.GroupShift
		}
	}
	comps := []ot.Component{{Glyph: base.Glyph, DX: dx}}
	bbox := shifted(base.BBox, dx)
	adv := base.Advance
	//
	if modes.Has(rules.Squish) && key.Squished() {
		adv -= uint16(math.Round(float64(adv) * geom.SquishFraction))
	}
	if modes.Has(rules.Underline) && key.Underlined() {
		bar, ok := help.Bars[base.Advance]
		if !ok {
			return Glyph{}, fmt.Errorf("%w: underline bar for advance %d",
				ot.ErrGlyphNotFound, base.Advance)
		}
		comps = append(comps, ot.Component{Glyph: bar})
		bbox = bbox.Union(barBBox(base.Advance, geom))
	}
	if key.SeparatorBearing() {
		at := int16(base.Advance) + dx
		switch {
		case modes.Has(rules.InsertComma):
			if help.Comma == 0 {
				return Glyph{}, fmt.Errorf("%w: comma", ot.ErrGlyphNotFound)
			}
			comps = append(comps, ot.Component{Glyph: help.Comma, DX: at})
			bbox = bbox.Union(shifted(help.CommaBBox, at))
			adv += help.CommaAdvance
		case modes.Has(rules.MonoMiniComma):
			if help.Tick == 0 {
				return Glyph{}, fmt.Errorf("%w: separator tick", ot.ErrGlyphNotFound)
			}
			comps = append(comps, ot.Component{Glyph: help.Tick, DX: at})
			bbox = bbox.Union(shifted(tickBBox(geom), at))
			adv += uint16(geom.TickWidth)
		}
	}
	return Glyph{
		Data:    ot.EncodeCompositeGlyph(bbox, comps),
		Advance: adv,
		Lsb:     bbox.XMin,
		BBox:    bbox,
	}, nil
}

func shifted(b ot.BBox, dx int16) ot.BBox {
	return ot.BBox{XMin: b.XMin + dx, YMin: b.YMin, XMax: b.XMax + dx, YMax: b.YMax}
}
