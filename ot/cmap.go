package ot

// CMapTable is the character-to-glyph mapping. Only the lookup direction is
// needed for patching; the table itself is carried through unchanged.
type CMapTable struct {
	sub    []byte // the selected subtable
	format uint16
}

// Platform/encoding preference, best last: we pick the highest-ranked
// Unicode-capable subtable the font offers.
func cmapSubtableRank(platformID, encodingID uint16) int {
	switch {
	case platformID == 3 && encodingID == 10: // Windows, UCS-4
		return 4
	case platformID == 0 && encodingID >= 3: // Unicode 2.0+
		return 3
	case platformID == 3 && encodingID == 1: // Windows, BMP
		return 2
	case platformID == 0: // legacy Unicode
		return 1
	}
	return 0
}

func parseCMap(data []byte) (*CMapTable, error) {
	if len(data) < 4 {
		return nil, errFontFormat("cmap table too short")
	}
	numTables := int(u16(data[2:]))
	if len(data) < 4+numTables*8 {
		return nil, errFontFormat("cmap encoding records truncated")
	}
	best, bestRank := -1, 0
	for i := 0; i < numTables; i++ {
		rec := data[4+i*8:]
		rank := cmapSubtableRank(u16(rec), u16(rec[2:]))
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return nil, errFontFormat("cmap has no Unicode subtable")
	}
	off := u32(data[4+best*8+4:])
	if int(off)+4 > len(data) {
		return nil, errFontFormat("cmap subtable offset out of range")
	}
	sub := data[off:]
	format := u16(sub)
	if format != 4 && format != 12 {
		return nil, errFontFormat("cmap subtable format not supported")
	}
	return &CMapTable{sub: sub, format: format}, nil
}

// Lookup returns the glyph for a codepoint, or 0 (notdef) if unmapped.
func (c *CMapTable) Lookup(r rune) GlyphID {
	switch c.format {
	case 4:
		return c.lookupFormat4(r)
	case 12:
		return c.lookupFormat12(r)
	}
	return 0
}

func (c *CMapTable) lookupFormat4(r rune) GlyphID {
	if r > 0xFFFF {
		return 0
	}
	code := uint16(r)
	segCountX2 := int(u16(c.sub[6:]))
	endCodes := c.sub[14:]
	startCodes := c.sub[14+segCountX2+2:]
	idDeltas := c.sub[14+2*segCountX2+2:]
	idRangeOffsets := c.sub[14+3*segCountX2+2:]
	for seg := 0; seg*2 < segCountX2; seg++ {
		end := u16(endCodes[seg*2:])
		if code > end {
			continue
		}
		start := u16(startCodes[seg*2:])
		if code < start {
			return 0
		}
		idRangeOffset := u16(idRangeOffsets[seg*2:])
		delta := u16(idDeltas[seg*2:])
		if idRangeOffset == 0 {
			return GlyphID(code + delta)
		}
		// idRangeOffset is a byte offset from its own location into the
		// glyph index array
		idx := int(idRangeOffset) + seg*2 + int(code-start)*2
		if 14+3*segCountX2+2+idx+2 > len(c.sub) {
			return 0
		}
		g := u16(idRangeOffsets[idx:])
		if g == 0 {
			return 0
		}
		return GlyphID(g + delta)
	}
	return 0
}

func (c *CMapTable) lookupFormat12(r rune) GlyphID {
	nGroups := int(u32(c.sub[12:]))
	groups := c.sub[16:]
	lo, hi := 0, nGroups
	for lo < hi {
		mid := (lo + hi) / 2
		g := groups[mid*12:]
		start, end := u32(g), u32(g[4:])
		switch {
		case uint32(r) < start:
			hi = mid
		case uint32(r) > end:
			lo = mid + 1
		default:
			return GlyphID(u32(g[8:]) + uint32(r) - start)
		}
	}
	return 0
}
