package assemble

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
	"github.com/npillmayer/numderline/variant"
)

// Assemble patches a parsed font with the compiled grouping program: it
// generates and allocates the variant glyphs, rewrites the outline and
// metric tables, bakes the program into GSUB and, when rename is set,
// rewrites the name table. The input font is not modified; the result is a
// complete font binary.
func Assemble(f *ot.Font, prog *rules.Program, geom variant.Geometry, rename bool) ([]byte, error) {
	if !f.HasTrueTypeOutlines() {
		return nil, fmt.Errorf("%w: font has no TrueType outlines", ot.ErrUnsupportedFormat)
	}
	bases, err := digitBases(f)
	if err != nil {
		return nil, err
	}
	bind, tables, err := buildGlyphs(f, prog, geom, bases)
	if err != nil {
		return nil, err
	}
	existing := f.Table(ot.TagGSUB)
	gsub, err := buildGSUB(prog, bind, existing)
	if err != nil {
		return nil, err
	}

	b := ot.NewFontBuilder(f.Header.FontType)
	for _, tag := range f.TableTags() {
		b.AddTable(tag, f.Table(tag))
	}
	for tag, data := range tables {
		b.AddTable(tag, data)
	}
	b.AddTable(ot.TagGSUB, gsub)
	if rename && f.Name != nil {
		b.AddTable(ot.TagName, renameTable(f.Name, ModName(prog, geom)))
	}
	return b.Build()
}

// digitBases locates the base digit glyphs through cmap and collects their
// outlines and metrics.
func digitBases(f *ot.Font) ([10]variant.Base, error) {
	var bases [10]variant.Base
	for d := 0; d < 10; d++ {
		gid := f.GlyphIndex(rune('0' + d))
		if gid == 0 {
			return bases, fmt.Errorf("%w: digit %q", ot.ErrGlyphNotFound, '0'+d)
		}
		bases[d] = variant.Base{
			Digit:   rules.DigitClass(d),
			Glyph:   gid,
			Advance: f.HMtx.AdvanceWidth(gid),
			Lsb:     f.HMtx.Lsb(gid),
			BBox:    f.Glyf.Outline(gid).BBox(),
		}
	}
	return bases, nil
}

// buildGlyphs allocates IDs for the helper and variant glyphs, appends
// their outlines and metrics, and returns the symbol binding together with
// the rewritten glyf, loca, hmtx, hhea, maxp and head tables.
func buildGlyphs(f *ot.Font, prog *rules.Program, geom variant.Geometry, bases [10]variant.Base) (*binding, map[ot.Tag][]byte, error) {
	help := variant.Helpers{}
	next := f.NumGlyphs()

	// glyph count up front, so we fail before touching anything
	count := 10 * (rules.NumFamilies + 1)
	var barAdvances []uint16
	if prog.Modes.Has(rules.Underline) {
		seen := make(map[uint16]bool)
		for _, b := range bases {
			if !seen[b.Advance] {
				seen[b.Advance] = true
				barAdvances = append(barAdvances, b.Advance)
			}
		}
		sort.Slice(barAdvances, func(i, j int) bool { return barAdvances[i] < barAdvances[j] })
		count += len(barAdvances)
	}
	if prog.Modes.Has(rules.MonoMiniComma) {
		count++
	}
	if next+count > 0x10000 {
		return nil, nil, fmt.Errorf("%w: %d glyphs needed on top of %d",
			ot.ErrNamespaceExhausted, count, next)
	}

	glyfB := ot.NewGlyfBuilder(f.Glyf, f.Loca)
	var extra []ot.LongHorMetric
	bbox := ot.BBox{XMin: f.Head.XMin, YMin: f.Head.YMin, XMax: f.Head.XMax, YMax: f.Head.YMax}
	appendGlyph := func(data []byte, adv uint16, lsb int16, bb ot.BBox) ot.GlyphID {
		gid := ot.GlyphID(next)
		next++
		glyfB.Append(data)
		extra = append(extra, ot.LongHorMetric{AdvanceWidth: adv, Lsb: lsb})
		bbox = bbox.Union(bb)
		return gid
	}

	if prog.Modes.Has(rules.Underline) {
		help.Bars = make(map[uint16]ot.GlyphID, len(barAdvances))
		for _, adv := range barAdvances {
			data, bb := variant.UnderlineBar(adv, geom)
			help.Bars[adv] = appendGlyph(data, adv, bb.XMin, bb)
		}
	}
	if prog.Modes.Has(rules.MonoMiniComma) {
		data, bb := variant.MiniTick(geom)
		help.Tick = appendGlyph(data, uint16(geom.TickWidth), bb.XMin, bb)
	}
	if prog.Modes.Has(rules.InsertComma) {
		comma := f.GlyphIndex(',')
		if comma == 0 {
			return nil, nil, fmt.Errorf("%w: comma", ot.ErrGlyphNotFound)
		}
		help.Comma = comma
		help.CommaAdvance = f.HMtx.AdvanceWidth(comma)
		help.CommaBBox = f.Glyf.Outline(comma).BBox()
	}

	var famGids [rules.NumFamilies][10]ot.GlyphID
	var overflowGids [10]ot.GlyphID
	for d := 0; d < 10; d++ {
		out, err := variant.Generate(bases[d], prog.Modes, geom, help)
		if err != nil {
			return nil, nil, err
		}
		for fam := 0; fam < rules.NumFamilies; fam++ {
			g := out[variant.FamilyKey(rules.DigitClass(d), fam)]
			famGids[fam][d] = appendGlyph(g.Data, g.Advance, g.Lsb, g.BBox)
		}
		g := out[variant.OverflowKey(rules.DigitClass(d))]
		overflowGids[d] = appendGlyph(g.Data, g.Advance, g.Lsb, g.BBox)
	}
	tracer().Infof("allocated %d glyphs, font now has %d", count, next)

	bind := newBinding()
	var digitGids []ot.GlyphID
	for _, b := range bases {
		digitGids = append(digitGids, b.Glyph)
	}
	bind.bind(rules.SymDigit, digitGids)
	if period := f.GlyphIndex('.'); period != 0 {
		bind.bind(rules.SymDecimal, []ot.GlyphID{period})
	}
	for fam := 0; fam < rules.NumFamilies; fam++ {
		bind.bind(rules.FamilySymbol(fam), famGids[fam][:])
	}
	bind.bind(rules.SymOverflow, overflowGids[:])

	glyf, loca, indexToLocFormat := glyfB.Build()
	tables := map[ot.Tag][]byte{
		ot.TagGlyf: glyf,
		ot.TagLoca: loca,
		ot.TagHmtx: f.HMtx.Rewrite(extra),
		ot.TagHhea: f.HHea.Rewrite(next),
		ot.TagMaxp: f.MaxP.Rewrite(next),
		ot.TagHead: f.Head.Rewrite(bbox, indexToLocFormat),
	}
	return bind, tables, nil
}

// ModName derives the modification name for font renaming. The name is
// concatenated from the enabled features, so "Numderline" results from
// underlines alone and "NommasShift100" from commas plus a group shift.
// The shift-100, squish-all preset shortens to "Group".
func ModName(prog *rules.Program, geom variant.Geometry) string {
	name := "N"
	switch {
	case prog.Modes.Has(rules.MonoMiniComma):
		name += "onoCommas"
	case prog.Modes.Has(rules.InsertComma):
		name += "ommas"
	}
	if prog.Modes.Has(rules.Underline) {
		name += "umderline"
	}
	if prog.SquishAll && geom.GroupShift == 100 && geom.SquishFraction == 0.15 {
		// the canonical shift-and-squish preset gets a short name
		name += "Group"
	} else {
		if geom.GroupShift != 0 {
			name += "Shift" + strconv.Itoa(int(geom.GroupShift))
		}
		if prog.Modes.Has(rules.Squish) && geom.SquishFraction != 0 {
			s := strconv.FormatFloat(geom.SquishFraction, 'g', -1, 64)
			name += "Squish" + strings.ReplaceAll(s, ".", "p")
			if prog.SquishAll {
				name += "All"
			}
		}
	}
	if !prog.Decimals {
		name += "NoDecimals"
	}
	return name
}

// renameTable rewrites the naming-relevant entries: family and full names
// get a " with <mod>" suffix, the PostScript name a camel-cased "With<mod>"
// before its style part.
func renameTable(name *ot.NameTable, mod string) []byte {
	return name.Rewrite(func(nameID uint16, value string) (string, bool) {
		switch nameID {
		case ot.NameIDFamily, ot.NameIDFull, ot.NameIDPrefFamily, ot.NameIDCompatFull:
			return value + " with " + mod, true
		case ot.NameIDPostscript:
			base, style, found := strings.Cut(value, "-")
			out := base + "With" + mod
			if found {
				out += "-" + style
			}
			return out, true
		}
		return "", false
	})
}
