package ot

import (
	"fmt"
	"sort"
)

// FontHeader is a directory of the top-level tables in a font. If the font
// file contains only one font, the table directory will begin at byte 0.
//
// OpenType fonts that contain TrueType outlines should use the value of
// 0x00010000 for the FontType. OpenType fonts containing CFF data use
// 0x4F54544F ('OTTO' re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Font represents the internal structure of an OpenType font.
// It is used to navigate and rewrite tables for the patching task.
type Font struct {
	Binary []byte // the original font binary, unchanged
	Header *FontHeader
	tables map[Tag][]byte // raw per-table views into Binary

	Head *HeadTable // typed access to head, mandatory
	MaxP *MaxPTable // typed access to maxp, mandatory
	HHea *HHeaTable // typed access to hhea
	HMtx *HMtxTable // typed access to hmtx
	Loca *LocaTable // typed access to loca (TrueType outlines only)
	Glyf *GlyfTable // typed access to glyf (TrueType outlines only)
	CMap *CMapTable // typed access to cmap
	Name *NameTable // typed access to name, optional
}

// Parse parses a single-font OpenType binary. The input slice is retained
// and must not change while the font is in use.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, ErrInvalidFontData
	}
	fontType := u32(data)
	switch fontType {
	case 0x00010000, 0x74727565: // TrueType outlines ('true' is the old Apple tag)
	case 0x4F54544F: // 'OTTO'
	case 0x74746366: // 'ttcf'
		return nil, fmt.Errorf("%w: font collections are not supported", ErrUnsupportedFormat)
	default:
		return nil, errFontFormat(fmt.Sprintf("unrecognized font type 0x%08x", fontType))
	}
	font := &Font{
		Binary: data,
		Header: &FontHeader{
			FontType:   fontType,
			TableCount: u16(data[4:]),
		},
		tables: make(map[Tag][]byte),
	}
	n := int(font.Header.TableCount)
	if len(data) < 12+n*16 {
		return nil, ErrInvalidFontData
	}
	for i := 0; i < n; i++ {
		rec := data[12+i*16:]
		tag := Tag(u32(rec))
		off := u32(rec[8:])
		size := u32(rec[12:])
		if int(off)+int(size) > len(data) || int(off)+int(size) < int(off) {
			return nil, errFontFormat(fmt.Sprintf("table %s extends beyond end of font", tag))
		}
		font.tables[tag] = data[off : off+size]
	}
	if err := font.parseRequiredTables(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed font with %d tables", len(font.tables))
	return font, nil
}

func (f *Font) parseRequiredTables() (err error) {
	headData, ok := f.tables[TagHead]
	if !ok {
		return fmt.Errorf("%w: head", ErrMissingTable)
	}
	if f.Head, err = parseHead(headData); err != nil {
		return err
	}
	maxpData, ok := f.tables[TagMaxp]
	if !ok {
		return fmt.Errorf("%w: maxp", ErrMissingTable)
	}
	if f.MaxP, err = parseMaxP(maxpData); err != nil {
		return err
	}
	hheaData, ok := f.tables[TagHhea]
	if !ok {
		return fmt.Errorf("%w: hhea", ErrMissingTable)
	}
	if f.HHea, err = parseHHea(hheaData); err != nil {
		return err
	}
	hmtxData, ok := f.tables[TagHmtx]
	if !ok {
		return fmt.Errorf("%w: hmtx", ErrMissingTable)
	}
	f.HMtx, err = parseHMtx(hmtxData, int(f.HHea.NumberOfHMetrics), f.MaxP.NumGlyphs)
	if err != nil {
		return err
	}
	cmapData, ok := f.tables[TagCmap]
	if !ok {
		return fmt.Errorf("%w: cmap", ErrMissingTable)
	}
	if f.CMap, err = parseCMap(cmapData); err != nil {
		return err
	}
	if nameData, ok := f.tables[TagName]; ok {
		if f.Name, err = parseName(nameData); err != nil {
			return err
		}
	}
	// glyf/loca only exist for TrueType-outline fonts
	if locaData, ok := f.tables[TagLoca]; ok {
		f.Loca, err = parseLoca(locaData, f.MaxP.NumGlyphs, f.Head.IndexToLocFormat)
		if err != nil {
			return err
		}
		glyfData, ok := f.tables[TagGlyf]
		if !ok {
			return fmt.Errorf("%w: glyf", ErrMissingTable)
		}
		f.Glyf = &GlyfTable{data: glyfData, loca: f.Loca}
	}
	return nil
}

// Table returns the raw bytes of the font table for a given tag, or nil if
// the font has no such table.
func (f *Font) Table(tag Tag) []byte {
	return f.tables[tag]
}

// HasTable returns true if the font contains a table for tag.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// TableTags returns the tags of all tables contained in the font, sorted.
func (f *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.MaxP.NumGlyphs
}

// GlyphIndex looks up the glyph for a codepoint. It returns 0 (notdef) if
// the codepoint is not covered by the font's character map.
func (f *Font) GlyphIndex(r rune) GlyphID {
	return f.CMap.Lookup(r)
}

// HasTrueTypeOutlines returns true if the font carries glyf/loca outline
// tables. CFF-outline fonts cannot be patched by this module.
func (f *Font) HasTrueTypeOutlines() bool {
	return f.Glyf != nil
}
