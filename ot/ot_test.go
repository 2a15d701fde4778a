package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	bin := buildTestFont(t)
	otf, err := Parse(bin)
	if err != nil {
		t.Fatal(err)
	}
	if otf.Header.FontType != 0x00010000 {
		t.Fatalf("expected TrueType font type, got 0x%08x", otf.Header.FontType)
	}
	if otf.NumGlyphs() != 3 {
		t.Errorf("expected 3 glyphs, got %d", otf.NumGlyphs())
	}
	if !otf.HasTrueTypeOutlines() {
		t.Error("expected TrueType outlines")
	}
	if g := otf.GlyphIndex('0'); g != 1 {
		t.Errorf("expected glyph 1 for '0', got %d", g)
	}
	if g := otf.GlyphIndex('A'); g != 0 {
		t.Errorf("expected notdef for unmapped codepoint, got %d", g)
	}
	if adv := otf.HMtx.AdvanceWidth(1); adv != 600 {
		t.Errorf("expected advance 600 for glyph 1, got %d", adv)
	}
	if lsb := otf.HMtx.Lsb(2); lsb != 40 {
		t.Errorf("expected lsb 40 for glyph 2, got %d", lsb)
	}
	outline := otf.Glyf.Outline(1)
	bbox := outline.BBox()
	if bbox.XMin != 50 || bbox.YMax != 700 {
		t.Errorf("unexpected bbox for glyph 1: %+v", bbox)
	}
	if !otf.Glyf.Outline(0).IsEmpty() {
		t.Error("expected notdef to have an empty outline")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	if _, err := Parse([]byte("too short")); !errors.Is(err, ErrInvalidFontData) {
		t.Errorf("expected ErrInvalidFontData for short input, got %v", err)
	}
	bogus := make([]byte, 12)
	copy(bogus, "XXXX")
	if _, err := Parse(bogus); err == nil {
		t.Error("expected error for unrecognized font type")
	}
	ttc := make([]byte, 12)
	copy(ttc, "ttcf")
	if _, err := Parse(ttc); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for collection, got %v", err)
	}
}

func TestParseMissingTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	b := NewFontBuilder(0x00010000)
	b.AddTable(TagMaxp, testMaxp(1))
	bin, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(bin); !errors.Is(err, ErrMissingTable) {
		t.Errorf("expected ErrMissingTable, got %v", err)
	}
}

func TestCMapFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	// one segment for the digits plus the mandatory 0xFFFF terminator
	sub := make([]byte, 0, 32)
	sub = appendU16(sub, 4)  // format
	sub = appendU16(sub, 32) // length
	sub = appendU16(sub, 0)  // language
	sub = appendU16(sub, 4)  // segCountX2
	sub = appendU16(sub, 4)  // searchRange
	sub = appendU16(sub, 1)  // entrySelector
	sub = appendU16(sub, 0)  // rangeShift
	sub = appendU16(sub, 0x39)
	sub = appendU16(sub, 0xFFFF) // endCodes
	sub = appendU16(sub, 0)      // reservedPad
	sub = appendU16(sub, 0x30)
	sub = appendU16(sub, 0xFFFF) // startCodes
	delta := 1 - 0x30            // idDelta: '0' maps to glyph 1
	sub = appendU16(sub, uint16(delta))
	sub = appendU16(sub, 1)
	sub = appendU16(sub, 0)
	sub = appendU16(sub, 0) // idRangeOffsets

	table := make([]byte, 0, 12+len(sub))
	table = appendU16(table, 0)
	table = appendU16(table, 1)
	table = appendU16(table, 3) // platform
	table = appendU16(table, 1) // encoding: Windows BMP
	table = appendU32(table, 12)
	table = append(table, sub...)

	cmap, err := parseCMap(table)
	if err != nil {
		t.Fatal(err)
	}
	if g := cmap.Lookup('5'); g != 6 {
		t.Errorf("expected glyph 6 for '5', got %d", g)
	}
	if g := cmap.Lookup('A'); g != 0 {
		t.Errorf("expected notdef for 'A', got %d", g)
	}
	if g := cmap.Lookup('𝟘'); g != 0 {
		t.Errorf("expected notdef beyond the BMP, got %d", g)
	}
}

func TestNameRewrite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	name, err := parseName(testName("Demo Family"))
	if err != nil {
		t.Fatal(err)
	}
	if v := name.Get(NameIDFamily); v != "Demo Family" {
		t.Fatalf("expected family name, got %q", v)
	}
	rewritten := name.Rewrite(func(nameID uint16, value string) (string, bool) {
		if nameID == NameIDFamily {
			return value + " Patched", true
		}
		return "", false
	})
	name2, err := parseName(rewritten)
	if err != nil {
		t.Fatal(err)
	}
	if v := name2.Get(NameIDFamily); v != "Demo Family Patched" {
		t.Errorf("expected rewritten family name, got %q", v)
	}
	if v := name2.Get(NameIDSubfamily); v != "Regular" {
		t.Errorf("expected untouched subfamily, got %q", v)
	}
}

func TestGlyfBuilderAppend(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	b := NewGlyfBuilder(nil, nil)
	b.Append(nil) // notdef
	simple := EncodeSimpleGlyph([]Rect{{BBox{XMin: 0, YMin: -100, XMax: 500, YMax: -50}}})
	b.Append(simple)
	b.Append(EncodeCompositeGlyph(BBox{XMin: 0, YMin: -100, XMax: 500, YMax: 700}, []Component{
		{Glyph: 1, DX: 0, DY: 0},
		{Glyph: 1, DX: 0, DY: 800},
	}))
	glyf, loca, indexToLocFormat := b.Build()
	if indexToLocFormat != 0 {
		t.Fatalf("expected short loca format, got %d", indexToLocFormat)
	}
	locaT, err := parseLoca(loca, 3, indexToLocFormat)
	if err != nil {
		t.Fatal(err)
	}
	off, length, ok := locaT.Range(1)
	if !ok || length == 0 {
		t.Fatalf("expected data range for glyph 1, got ok=%v len=%d", ok, length)
	}
	if int(off)+int(length) > len(glyf) {
		t.Fatal("glyph 1 range exceeds glyf table")
	}
	glyfT := &GlyfTable{data: glyf, loca: locaT}
	if bbox := glyfT.Outline(1).BBox(); bbox.YMin != -100 || bbox.XMax != 500 {
		t.Errorf("unexpected bbox for appended glyph: %+v", bbox)
	}
	if !glyfT.Outline(0).IsEmpty() {
		t.Error("expected empty notdef outline")
	}
}

func TestHmtxRewrite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	otf, err := Parse(buildTestFont(t))
	if err != nil {
		t.Fatal(err)
	}
	extra := []LongHorMetric{{AdvanceWidth: 850, Lsb: 10}}
	rewritten := otf.HMtx.Rewrite(extra)
	if len(rewritten) != (3+1)*4 {
		t.Fatalf("expected 4 long metrics, got %d bytes", len(rewritten))
	}
	hm, err := parseHMtx(rewritten, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if adv := hm.AdvanceWidth(3); adv != 850 {
		t.Errorf("expected advance 850 for appended glyph, got %d", adv)
	}
	if adv := hm.AdvanceWidth(1); adv != 600 {
		t.Errorf("expected original advance 600 preserved, got %d", adv)
	}
}

func TestHeaderedTableRewrites(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	otf, err := Parse(buildTestFont(t))
	if err != nil {
		t.Fatal(err)
	}
	head, err := parseHead(otf.Head.Rewrite(BBox{XMin: -10, YMin: -200, XMax: 900, YMax: 750}, 1))
	if err != nil {
		t.Fatal(err)
	}
	if head.YMin != -200 || head.IndexToLocFormat != 1 {
		t.Errorf("head rewrite not applied: %+v", head)
	}
	if head.UnitsPerEm != otf.Head.UnitsPerEm {
		t.Error("head rewrite must not touch unitsPerEm")
	}
	maxp, err := parseMaxP(otf.MaxP.Rewrite(90))
	if err != nil {
		t.Fatal(err)
	}
	if maxp.NumGlyphs != 90 {
		t.Errorf("expected 90 glyphs after rewrite, got %d", maxp.NumGlyphs)
	}
	hhea, err := parseHHea(otf.HHea.Rewrite(90))
	if err != nil {
		t.Fatal(err)
	}
	if hhea.NumberOfHMetrics != 90 {
		t.Errorf("expected 90 hmetrics after rewrite, got %d", hhea.NumberOfHMetrics)
	}
	if hhea.Ascender != otf.HHea.Ascender {
		t.Error("hhea rewrite must not touch ascender")
	}
}

func TestBuilderChecksums(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	bin := buildTestFont(t)
	// the whole-font checksum must come out as the magic constant
	sum := calcChecksum(bin)
	if sum != 0xB1B0AFBA {
		t.Errorf("expected font checksum 0xB1B0AFBA, got 0x%08x", sum)
	}
}

func TestTagRoundTrip(t *testing.T) {
	if T("GSUB") != TagGSUB {
		t.Error("tag from string mismatch")
	}
	if TagGSUB.String() != "GSUB" {
		t.Errorf("tag to string mismatch: %q", TagGSUB.String())
	}
	if T("ab").String() != "ab  " {
		t.Errorf("short tags must be padded, got %q", T("ab").String())
	}
}

func TestBBoxUnion(t *testing.T) {
	a := BBox{XMin: 0, YMin: 0, XMax: 100, YMax: 100}
	b := BBox{XMin: -50, YMin: 20, XMax: 80, YMax: 150}
	u := a.Union(b)
	if u.XMin != -50 || u.YMin != 0 || u.XMax != 100 || u.YMax != 150 {
		t.Errorf("unexpected union: %+v", u)
	}
}

// --- Synthetic font construction -------------------------------------------

// buildTestFont builds a tiny font with three glyphs: notdef, '0' and '1'.
func buildTestFont(t *testing.T) []byte {
	t.Helper()
	glyfB := NewGlyfBuilder(nil, nil)
	glyfB.Append(nil)
	glyfB.Append(EncodeSimpleGlyph([]Rect{{BBox{XMin: 50, YMin: 0, XMax: 550, YMax: 700}}}))
	glyfB.Append(EncodeSimpleGlyph([]Rect{{BBox{XMin: 40, YMin: 0, XMax: 560, YMax: 700}}}))
	glyf, loca, indexToLocFormat := glyfB.Build()

	var hmtx []byte
	hmtx = appendU16(hmtx, 0)
	hmtx = appendU16(hmtx, 0)
	hmtx = appendU16(hmtx, 600)
	hmtx = appendU16(hmtx, 50)
	hmtx = appendU16(hmtx, 600)
	hmtx = appendU16(hmtx, 40)

	b := NewFontBuilder(0x00010000)
	b.AddTable(TagHead, testHead(indexToLocFormat))
	b.AddTable(TagMaxp, testMaxp(3))
	b.AddTable(TagHhea, testHhea(3))
	b.AddTable(TagHmtx, hmtx)
	b.AddTable(TagCmap, testCmap12())
	b.AddTable(TagGlyf, glyf)
	b.AddTable(TagLoca, loca)
	b.AddTable(TagName, testName("Demo Family"))
	bin, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return bin
}

func testHead(indexToLocFormat int16) []byte {
	out := make([]byte, headTableLen)
	putU32(out, 0, 0x00010000)
	putU32(out, 12, 0x5F0F3CF5) // magicNumber
	putU16(out, 18, 1000)       // unitsPerEm
	putU16(out, 36, 40)
	putU16(out, 40, 560)
	putU16(out, 42, 700)
	putU16(out, 50, uint16(indexToLocFormat))
	return out
}

func testMaxp(numGlyphs int) []byte {
	out := make([]byte, 32)
	putU32(out, 0, 0x00010000)
	putU16(out, 4, uint16(numGlyphs))
	return out
}

func testHhea(numberOfHMetrics int) []byte {
	out := make([]byte, hheaTableLen)
	descender := int16(-200)
	putU32(out, 0, 0x00010000)
	putU16(out, 4, 800)
	putU16(out, 6, uint16(descender))
	putU16(out, 34, uint16(numberOfHMetrics))
	return out
}

func testCmap12() []byte {
	sub := make([]byte, 0, 16+12)
	sub = appendU16(sub, 12)
	sub = appendU16(sub, 0)
	sub = appendU32(sub, 16+12)
	sub = appendU32(sub, 0)
	sub = appendU32(sub, 1)
	sub = appendU32(sub, 0x30)
	sub = appendU32(sub, 0x31)
	sub = appendU32(sub, 1)
	out := make([]byte, 0, 12+len(sub))
	out = appendU16(out, 0)
	out = appendU16(out, 1)
	out = appendU32(out, 3<<16|10)
	out = appendU32(out, 12)
	return append(out, sub...)
}

func testName(family string) []byte {
	type entry struct {
		id    uint16
		value string
	}
	entries := []entry{
		{NameIDFamily, family},
		{NameIDSubfamily, "Regular"},
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
		header = appendU16(header, 3)
		header = appendU16(header, 1)
		header = appendU16(header, 0x0409)
		header = appendU16(header, e.id)
		header = appendU16(header, uint16(len(utf16be)))
		header = appendU16(header, uint16(len(storage)))
		storage = append(storage, utf16be...)
	}
	return append(header, storage...)
}
