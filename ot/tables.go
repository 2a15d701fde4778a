package ot

// Typed views of the fixed-layout tables head, maxp and hhea.

// HeadTable is the font header table. We keep the raw bytes around: most
// fields pass through a patch unchanged and only a handful are rewritten.
type HeadTable struct {
	raw              []byte
	UnitsPerEm       uint16
	XMin, YMin       int16
	XMax, YMax       int16
	IndexToLocFormat int16
}

const headTableLen = 54

func parseHead(data []byte) (*HeadTable, error) {
	if len(data) < headTableLen {
		return nil, errFontFormat("head table too short")
	}
	return &HeadTable{
		raw:              data,
		UnitsPerEm:       u16(data[18:]),
		XMin:             i16(data[36:]),
		YMin:             i16(data[38:]),
		XMax:             i16(data[40:]),
		YMax:             i16(data[42:]),
		IndexToLocFormat: i16(data[50:]),
	}, nil
}

// Rewrite returns a copy of the head table with the bounding box,
// indexToLocFormat and checksumAdjustment fields replaced. The adjustment is
// zeroed; FontBuilder computes the final value over the whole font.
func (h *HeadTable) Rewrite(bbox BBox, indexToLocFormat int16) []byte {
	out := make([]byte, len(h.raw))
	copy(out, h.raw)
	putU32(out, 8, 0) // checksumAdjustment
	putU16(out, 36, uint16(bbox.XMin))
	putU16(out, 38, uint16(bbox.YMin))
	putU16(out, 40, uint16(bbox.XMax))
	putU16(out, 42, uint16(bbox.YMax))
	putU16(out, 50, uint16(indexToLocFormat))
	return out
}

// BBox is a glyph or font bounding box in font units.
type BBox struct {
	XMin, YMin, XMax, YMax int16
}

// Union extends b to cover o.
func (b BBox) Union(o BBox) BBox {
	if o.XMin < b.XMin {
		b.XMin = o.XMin
	}
	if o.YMin < b.YMin {
		b.YMin = o.YMin
	}
	if o.XMax > b.XMax {
		b.XMax = o.XMax
	}
	if o.YMax > b.YMax {
		b.YMax = o.YMax
	}
	return b
}

// MaxPTable is the maximum-profile table.
type MaxPTable struct {
	raw       []byte
	Version   uint32
	NumGlyphs int
}

func parseMaxP(data []byte) (*MaxPTable, error) {
	if len(data) < 6 {
		return nil, errFontFormat("maxp table too short")
	}
	m := &MaxPTable{
		raw:       data,
		Version:   u32(data),
		NumGlyphs: int(u16(data[4:])),
	}
	if m.Version == 0x00010000 && len(data) < 32 {
		return nil, errFontFormat("maxp version 1.0 table too short")
	}
	return m, nil
}

// Rewrite returns a copy of the maxp table with numGlyphs replaced and, for
// version 1.0 tables, the composite-glyph maxima raised to cover the
// two-component variant glyphs added by the patch.
func (m *MaxPTable) Rewrite(numGlyphs int) []byte {
	out := make([]byte, len(m.raw))
	copy(out, m.raw)
	putU16(out, 4, uint16(numGlyphs))
	if m.Version == 0x00010000 {
		if u16(out[28:]) < 3 {
			putU16(out, 28, 3) // maxComponentElements
		}
		if u16(out[30:]) < 2 {
			putU16(out, 30, 2) // maxComponentDepth
		}
	}
	return out
}

// HHeaTable is the horizontal header table.
type HHeaTable struct {
	raw              []byte
	Ascender         int16
	Descender        int16
	NumberOfHMetrics uint16
}

const hheaTableLen = 36

func parseHHea(data []byte) (*HHeaTable, error) {
	if len(data) < hheaTableLen {
		return nil, errFontFormat("hhea table too short")
	}
	return &HHeaTable{
		raw:              data,
		Ascender:         i16(data[4:]),
		Descender:        i16(data[6:]),
		NumberOfHMetrics: u16(data[34:]),
	}, nil
}

// Rewrite returns a copy of the hhea table with numberOfHMetrics replaced.
func (h *HHeaTable) Rewrite(numberOfHMetrics int) []byte {
	out := make([]byte, len(h.raw))
	copy(out, h.raw)
	putU16(out, 34, uint16(numberOfHMetrics))
	return out
}
