package ot

// LocaTable is the index-to-location table: it maps glyph IDs to byte ranges
// inside the glyf table.
type LocaTable struct {
	offsets   []uint32
	numGlyphs int
	isShort   bool // true for the short format (16-bit offsets)
}

func parseLoca(data []byte, numGlyphs int, indexToLocFormat int16) (*LocaTable, error) {
	l := &LocaTable{
		numGlyphs: numGlyphs,
		isShort:   indexToLocFormat == 0,
	}
	numEntries := numGlyphs + 1 // loca has numGlyphs+1 entries
	l.offsets = make([]uint32, numEntries)
	if l.isShort {
		if len(data) < numEntries*2 {
			return nil, errFontFormat("loca table too short")
		}
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = uint32(u16(data[i*2:])) * 2
		}
	} else {
		if len(data) < numEntries*4 {
			return nil, errFontFormat("loca table too short")
		}
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = u32(data[i*4:])
		}
	}
	return l, nil
}

// Range returns the byte range of a glyph within the glyf table.
func (l *LocaTable) Range(g GlyphID) (offset, length uint32, ok bool) {
	if int(g) >= l.numGlyphs {
		return 0, 0, false
	}
	start := l.offsets[g]
	end := l.offsets[g+1]
	if end < start {
		return 0, 0, false
	}
	return start, end - start, true
}

// IsShort returns true if the table uses the short (16-bit) format.
func (l *LocaTable) IsShort() bool {
	return l.isShort
}

// GlyfTable provides access to glyph outline data.
type GlyfTable struct {
	data []byte
	loca *LocaTable
}

// GlyphOutline is the raw glyf-encoded data of a single glyph.
type GlyphOutline struct {
	Data             []byte
	NumberOfContours int16 // -1 for composite, >= 0 for simple
}

// Bytes returns the underlying glyf table data.
func (g *GlyfTable) Bytes() []byte {
	return g.data
}

// Outline returns the outline data for a glyph, or nil for out-of-range
// glyph IDs. Glyphs without an outline (such as space) yield an empty
// outline with zero contours.
func (g *GlyfTable) Outline(gid GlyphID) *GlyphOutline {
	offset, length, ok := g.loca.Range(gid)
	if !ok || int(offset)+int(length) > len(g.data) {
		return nil
	}
	if length == 0 {
		return &GlyphOutline{}
	}
	data := g.data[offset : offset+length]
	if len(data) < 10 {
		return nil
	}
	return &GlyphOutline{
		Data:             data,
		NumberOfContours: i16(data),
	}
}

// IsEmpty returns true if the glyph has no outline data.
func (o *GlyphOutline) IsEmpty() bool {
	return o == nil || len(o.Data) == 0
}

// BBox returns the glyph's bounding box as stored in its header.
func (o *GlyphOutline) BBox() BBox {
	if o.IsEmpty() {
		return BBox{}
	}
	return BBox{
		XMin: i16(o.Data[2:]),
		YMin: i16(o.Data[4:]),
		XMax: i16(o.Data[6:]),
		YMax: i16(o.Data[8:]),
	}
}

// --- Outline construction --------------------------------------------------

// The patcher only ever creates two shapes of glyph data: simple glyphs with
// rectangular contours (underline bars, separator ticks) and composite
// glyphs referencing existing glyphs. Both are encoded here so that callers
// stay free of glyf binary details.

// Rect is a filled axis-aligned rectangle contour in font units.
type Rect struct {
	BBox
}

// EncodeSimpleGlyph encodes one or more rectangle contours as a simple glyph.
// Contours are emitted clockwise (y-up), i.e. as solid ink.
func EncodeSimpleGlyph(rects []Rect) []byte {
	bbox := rects[0].BBox
	for _, r := range rects[1:] {
		bbox = bbox.Union(r.BBox)
	}
	out := make([]byte, 0, 10+len(rects)*(2+4+16)+2)
	out = appendU16(out, uint16(len(rects))) // numberOfContours
	out = appendU16(out, uint16(bbox.XMin))
	out = appendU16(out, uint16(bbox.YMin))
	out = appendU16(out, uint16(bbox.XMax))
	out = appendU16(out, uint16(bbox.YMax))
	for i := range rects {
		out = appendU16(out, uint16(i*4+3)) // endPtsOfContours
	}
	out = appendU16(out, 0) // instructionLength
	for range rects {
		// four on-curve points per contour, coordinates as 2-byte deltas
		out = append(out, 0x01, 0x01, 0x01, 0x01)
	}
	prevX, prevY := int16(0), int16(0)
	xDeltas := make([]int16, 0, len(rects)*4)
	yDeltas := make([]int16, 0, len(rects)*4)
	for _, r := range rects {
		// top-left, top-right, bottom-right, bottom-left: clockwise with y up
		pts := [4][2]int16{
			{r.XMin, r.YMax},
			{r.XMax, r.YMax},
			{r.XMax, r.YMin},
			{r.XMin, r.YMin},
		}
		for _, p := range pts {
			xDeltas = append(xDeltas, p[0]-prevX)
			yDeltas = append(yDeltas, p[1]-prevY)
			prevX, prevY = p[0], p[1]
		}
	}
	for _, dx := range xDeltas {
		out = appendU16(out, uint16(dx))
	}
	for _, dy := range yDeltas {
		out = appendU16(out, uint16(dy))
	}
	return out
}

// Component is one entry of a composite glyph: a referenced glyph placed at
// an (x, y) offset.
type Component struct {
	Glyph GlyphID
	DX    int16
	DY    int16
}

// Composite glyph component flags.
const (
	flagArg1And2AreWords = 0x0001
	flagArgsAreXYValues  = 0x0002
	flagRoundXYToGrid    = 0x0004
	flagMoreComponents   = 0x0020
)

// EncodeCompositeGlyph encodes a composite glyph from components with the
// given overall bounding box.
func EncodeCompositeGlyph(bbox BBox, components []Component) []byte {
	out := make([]byte, 0, 10+len(components)*8)
	out = appendU16(out, 0xffff) // numberOfContours = -1
	out = appendU16(out, uint16(bbox.XMin))
	out = appendU16(out, uint16(bbox.YMin))
	out = appendU16(out, uint16(bbox.XMax))
	out = appendU16(out, uint16(bbox.YMax))
	for i, comp := range components {
		flags := uint16(flagArg1And2AreWords | flagArgsAreXYValues | flagRoundXYToGrid)
		if i < len(components)-1 {
			flags |= flagMoreComponents
		}
		out = appendU16(out, flags)
		out = appendU16(out, uint16(comp.Glyph))
		out = appendU16(out, uint16(comp.DX))
		out = appendU16(out, uint16(comp.DY))
	}
	return out
}

// GlyfBuilder appends new glyphs to an existing glyf table and produces the
// rewritten glyf and loca tables. Existing glyph data is carried over
// verbatim.
type GlyfBuilder struct {
	glyf    []byte
	offsets []uint32
}

// NewGlyfBuilder starts from the original glyf and loca tables. It may be
// called with (nil, nil) to build a glyf table from scratch.
func NewGlyfBuilder(glyf *GlyfTable, loca *LocaTable) *GlyfBuilder {
	b := &GlyfBuilder{}
	if glyf != nil {
		b.glyf = append(b.glyf, glyf.data...)
		b.offsets = append(b.offsets, loca.offsets...)
	} else {
		b.offsets = append(b.offsets, 0)
	}
	// the appended region must start 2-byte aligned for the short loca format
	for len(b.glyf)%2 != 0 {
		b.glyf = append(b.glyf, 0)
	}
	b.offsets[len(b.offsets)-1] = uint32(len(b.glyf))
	return b
}

// Append adds one glyph's outline data and returns nothing; glyph IDs are
// assigned by the caller in append order.
func (b *GlyfBuilder) Append(data []byte) {
	b.glyf = append(b.glyf, data...)
	for len(b.glyf)%2 != 0 {
		b.glyf = append(b.glyf, 0)
	}
	b.offsets = append(b.offsets, uint32(len(b.glyf)))
}

// Build returns the new glyf and loca tables plus the indexToLocFormat the
// rewritten head table must carry. The short format is used whenever all
// offsets fit.
func (b *GlyfBuilder) Build() (glyf, loca []byte, indexToLocFormat int16) {
	short := uint32(len(b.glyf)) <= 0xFFFF*2
	for _, off := range b.offsets {
		if off%2 != 0 { // short loca stores offset/2
			short = false
			break
		}
	}
	if short {
		loca = make([]byte, 0, len(b.offsets)*2)
		for _, off := range b.offsets {
			loca = appendU16(loca, uint16(off/2))
		}
		return b.glyf, loca, 0
	}
	loca = make([]byte, 0, len(b.offsets)*4)
	for _, off := range b.offsets {
		loca = appendU32(loca, off)
	}
	return b.glyf, loca, 1
}
