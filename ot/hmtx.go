package ot

// HMtxTable is the horizontal metrics table.
type HMtxTable struct {
	metrics          []LongHorMetric
	lastAdvanceWidth uint16
	numGlyphs        int
}

// LongHorMetric contains the advance width and left side bearing for a glyph.
type LongHorMetric struct {
	AdvanceWidth uint16
	Lsb          int16
}

func parseHMtx(data []byte, numberOfHMetrics, numGlyphs int) (*HMtxTable, error) {
	if numberOfHMetrics <= 0 || numberOfHMetrics > numGlyphs {
		return nil, errFontFormat("hhea numberOfHMetrics out of range")
	}
	if len(data) < numberOfHMetrics*4+(numGlyphs-numberOfHMetrics)*2 {
		return nil, errFontFormat("hmtx table too short")
	}
	h := &HMtxTable{
		metrics:   make([]LongHorMetric, numGlyphs),
		numGlyphs: numGlyphs,
	}
	off := 0
	for i := 0; i < numberOfHMetrics; i++ {
		h.metrics[i].AdvanceWidth = u16(data[off:])
		h.metrics[i].Lsb = i16(data[off+2:])
		off += 4
	}
	h.lastAdvanceWidth = h.metrics[numberOfHMetrics-1].AdvanceWidth
	// glyphs beyond numberOfHMetrics share the last advance width
	for i := numberOfHMetrics; i < numGlyphs; i++ {
		h.metrics[i].AdvanceWidth = h.lastAdvanceWidth
		h.metrics[i].Lsb = i16(data[off:])
		off += 2
	}
	return h, nil
}

// AdvanceWidth returns the advance width for a glyph.
func (h *HMtxTable) AdvanceWidth(g GlyphID) uint16 {
	if int(g) >= len(h.metrics) {
		return h.lastAdvanceWidth
	}
	return h.metrics[g].AdvanceWidth
}

// Lsb returns the left side bearing for a glyph.
func (h *HMtxTable) Lsb(g GlyphID) int16 {
	if int(g) >= len(h.metrics) {
		return 0
	}
	return h.metrics[g].Lsb
}

// NumGlyphs returns the number of glyphs covered by the table.
func (h *HMtxTable) NumGlyphs() int {
	return h.numGlyphs
}

// Rewrite serializes the metrics of all original glyphs plus the appended
// extra metrics as an hmtx table with one LongHorMetric per glyph (i.e.
// numberOfHMetrics == numGlyphs; the trailing shared-advance optimization is
// not re-applied).
func (h *HMtxTable) Rewrite(extra []LongHorMetric) []byte {
	out := make([]byte, 0, (len(h.metrics)+len(extra))*4)
	for _, m := range h.metrics {
		out = appendU16(out, m.AdvanceWidth)
		out = appendU16(out, uint16(m.Lsb))
	}
	for _, m := range extra {
		out = appendU16(out, m.AdvanceWidth)
		out = appendU16(out, uint16(m.Lsb))
	}
	return out
}
