package assemble

// Synthetic in-memory test fonts: a minimal TrueType font with the digits,
// comma, period and one letter, enough for the patching pipeline end to
// end. No binary fixtures involved.

import (
	"testing"

	"github.com/npillmayer/numderline/ot"
)

const (
	synthUnitsPerEm   = 1000
	synthDigitAdvance = 600
	synthMarkAdvance  = 250
	synthNumGlyphs    = 14 // .notdef, 0-9, comma, period, 'a'
)

func synthHead(indexToLocFormat int16, bbox ot.BBox) []byte {
	out := make([]byte, 54)
	putU32t(out, 0, 0x00010000) // version
	putU32t(out, 12, 0x5F0F3CF5)
	putU16t(out, 18, synthUnitsPerEm)
	putU16t(out, 36, uint16(bbox.XMin))
	putU16t(out, 38, uint16(bbox.YMin))
	putU16t(out, 40, uint16(bbox.XMax))
	putU16t(out, 42, uint16(bbox.YMax))
	putU16t(out, 46, 8) // lowestRecPPEM
	putU16t(out, 50, uint16(indexToLocFormat))
	return out
}

func synthMaxp(numGlyphs int) []byte {
	out := make([]byte, 32)
	putU32t(out, 0, 0x00010000)
	putU16t(out, 4, uint16(numGlyphs))
	putU16t(out, 6, 4)  // maxPoints
	putU16t(out, 8, 1)  // maxContours
	putU16t(out, 14, 2) // maxZones
	return out
}

func synthHhea(numberOfHMetrics int) []byte {
	out := make([]byte, 36)
	descender := int16(-200)
	putU32t(out, 0, 0x00010000)
	putU16t(out, 4, 800)                // ascender
	putU16t(out, 6, uint16(descender))
	putU16t(out, 10, 700)            // advanceWidthMax
	putU16t(out, 18, 1)              // caretSlopeRise
	putU16t(out, 34, uint16(numberOfHMetrics))
	return out
}

func synthCmap() []byte {
	groups := [][3]uint32{
		{0x2C, 0x2C, 11}, // comma
		{0x2E, 0x2E, 12}, // period
		{0x30, 0x39, 1},  // digits
		{0x61, 0x61, 13}, // 'a'
	}
	sub := make([]byte, 0, 16+len(groups)*12)
	sub = appendU16(sub, 12)
	sub = appendU16(sub, 0)
	sub = appendU32(sub, uint32(16+len(groups)*12))
	sub = appendU32(sub, 0)
	sub = appendU32(sub, uint32(len(groups)))
	for _, g := range groups {
		sub = appendU32(sub, g[0])
		sub = appendU32(sub, g[1])
		sub = appendU32(sub, g[2])
	}
	out := make([]byte, 0, 12+len(sub))
	out = appendU16(out, 0)
	out = appendU16(out, 1)
	out = appendU32(out, 3<<16|10) // platform 3, encoding 10
	out = appendU32(out, 12)       // subtable offset
	return append(out, sub...)
}

func synthName(family, full, postscript string) []byte {
	type entry struct {
		id    uint16
		value string
	}
	entries := []entry{
		{ot.NameIDFamily, family},
		{ot.NameIDSubfamily, "Regular"},
		{ot.NameIDFull, full},
		{ot.NameIDPostscript, postscript},
	}
	var storage []byte
	header := make([]byte, 0, 6+12*len(entries))
	header = appendU16(header, 0)
	header = appendU16(header, uint16(len(entries)))
	header = appendU16(header, uint16(6+12*len(entries)))
	for _, e := range entries {
		var utf16be []byte
		for _, r := range e.value {
			utf16be = appendU16(utf16be, uint16(r))
		}
		header = appendU16(header, 3)      // platform
		header = appendU16(header, 1)      // encoding
		header = appendU16(header, 0x0409) // language
		header = appendU16(header, e.id)
		header = appendU16(header, uint16(len(utf16be)))
		header = appendU16(header, uint16(len(storage)))
		storage = append(storage, utf16be...)
	}
	return append(header, storage...)
}

// synthFont builds a complete parseable font binary. When gsub is non-nil
// it is included as a pre-existing GSUB table.
func synthFont(t *testing.T, gsub []byte) []byte {
	t.Helper()
	glyfB := ot.NewGlyfBuilder(nil, nil)
	glyfB.Append(nil) // .notdef
	var metrics []ot.LongHorMetric
	metrics = append(metrics, ot.LongHorMetric{})
	bbox := ot.BBox{}
	addGlyph := func(r ot.Rect, advance uint16) {
		glyfB.Append(ot.EncodeSimpleGlyph([]ot.Rect{r}))
		metrics = append(metrics, ot.LongHorMetric{AdvanceWidth: advance, Lsb: r.XMin})
		bbox = bbox.Union(r.BBox)
	}
	for d := 0; d < 10; d++ {
		addGlyph(ot.Rect{BBox: ot.BBox{XMin: 50, YMin: 0, XMax: 550, YMax: 700}}, synthDigitAdvance)
	}
	addGlyph(ot.Rect{BBox: ot.BBox{XMin: 40, YMin: -150, XMax: 200, YMax: 100}}, synthMarkAdvance) // comma
	addGlyph(ot.Rect{BBox: ot.BBox{XMin: 40, YMin: 0, XMax: 200, YMax: 120}}, synthMarkAdvance)    // period
	addGlyph(ot.Rect{BBox: ot.BBox{XMin: 40, YMin: 0, XMax: 460, YMax: 500}}, 500)                 // 'a'

	glyf, loca, indexToLocFormat := glyfB.Build()
	hmtx := make([]byte, 0, len(metrics)*4)
	for _, m := range metrics {
		hmtx = appendU16(hmtx, m.AdvanceWidth)
		hmtx = appendU16(hmtx, uint16(m.Lsb))
	}

	b := ot.NewFontBuilder(0x00010000)
	b.AddTable(ot.TagHead, synthHead(indexToLocFormat, bbox))
	b.AddTable(ot.TagMaxp, synthMaxp(synthNumGlyphs))
	b.AddTable(ot.TagHhea, synthHhea(synthNumGlyphs))
	b.AddTable(ot.TagHmtx, hmtx)
	b.AddTable(ot.TagCmap, synthCmap())
	b.AddTable(ot.TagGlyf, glyf)
	b.AddTable(ot.TagLoca, loca)
	b.AddTable(ot.TagName, synthName("Test Family", "Test Family Regular", "TestFamily-Regular"))
	if gsub != nil {
		b.AddTable(ot.TagGSUB, gsub)
	}
	bin, err := b.Build()
	if err != nil {
		t.Fatalf("building synthetic font: %v", err)
	}
	return bin
}

// test-local big-endian put helpers working on fixed-size buffers
func putU16t(b []byte, at int, v uint16) {
	b[at] = byte(v >> 8)
	b[at+1] = byte(v)
}

func putU32t(b []byte, at int, v uint32) {
	b[at] = byte(v >> 24)
	b[at+1] = byte(v >> 16)
	b[at+2] = byte(v >> 8)
	b[at+3] = byte(v)
}
