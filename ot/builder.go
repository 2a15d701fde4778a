package ot

import (
	"sort"
)

// FontBuilder assembles a font binary from a set of tables. Tables that a
// patch does not touch are added with their original bytes, so the output
// stays byte-for-byte faithful to the input aside from the rewritten tables.
type FontBuilder struct {
	fontType uint32
	tables   map[Tag][]byte
}

// NewFontBuilder creates a FontBuilder for a font of the given type
// (0x00010000 for TrueType outlines).
func NewFontBuilder(fontType uint32) *FontBuilder {
	return &FontBuilder{
		fontType: fontType,
		tables:   make(map[Tag][]byte),
	}
}

// AddTable adds or replaces a table.
func (b *FontBuilder) AddTable(tag Tag, data []byte) {
	b.tables[tag] = data
}

// HasTable returns true if a table has been added for tag.
func (b *FontBuilder) HasTable(tag Tag) bool {
	_, ok := b.tables[tag]
	return ok
}

// Build produces the final font binary. Output is deterministic: table
// records are sorted by tag, each table padded to a 4-byte boundary, and the
// head table's checksumAdjustment is recomputed over the whole font.
func (b *FontBuilder) Build() ([]byte, error) {
	if len(b.tables) == 0 {
		return nil, ErrInvalidFontData
	}
	tags := make([]Tag, 0, len(b.tables))
	for tag := range b.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	numTables := len(tags)
	searchRange, entrySelector, rangeShift := calcSearchParams(numTables)

	headerSize := 12 + numTables*16
	dataSize := 0
	for _, tag := range tags {
		dataSize += padded4(len(b.tables[tag]))
	}
	out := make([]byte, headerSize+dataSize)

	putU32(out, 0, b.fontType)
	putU16(out, 4, uint16(numTables))
	putU16(out, 6, searchRange)
	putU16(out, 8, entrySelector)
	putU16(out, 10, rangeShift)

	offset := headerSize
	recordOff := 12
	headOffset := -1
	for _, tag := range tags {
		data := b.tables[tag]
		putU32(out, recordOff, uint32(tag))
		putU32(out, recordOff+4, calcChecksum(data))
		putU32(out, recordOff+8, uint32(offset))
		putU32(out, recordOff+12, uint32(len(data)))
		recordOff += 16
		copy(out[offset:], data)
		if tag == TagHead {
			headOffset = offset
		}
		offset += padded4(len(data))
	}

	if headOffset >= 0 && len(b.tables[TagHead]) >= 12 {
		// checksumAdjustment = 0xB1B0AFBA - checksum over the whole font,
		// computed with the adjustment field zeroed
		putU32(out, headOffset+8, 0)
		putU32(out, headOffset+8, 0xB1B0AFBA-calcChecksum(out))
	}
	return out, nil
}

func padded4(n int) int {
	if n%4 != 0 {
		return n + 4 - n%4
	}
	return n
}

// calcSearchParams calculates the binary-search parameters of the table
// directory.
func calcSearchParams(numTables int) (searchRange, entrySelector, rangeShift uint16) {
	entrySelector = 0
	power := 1
	for power*2 <= numTables {
		power *= 2
		entrySelector++
	}
	searchRange = uint16(power * 16)
	rangeShift = uint16(numTables*16) - searchRange
	return
}

// calcChecksum calculates the OpenType table checksum.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	length := len(data)
	for i := 0; i+4 <= length; i += 4 {
		sum += u32(data[i:])
	}
	if remaining := length % 4; remaining > 0 {
		var last uint32
		offset := length - remaining
		for i := 0; i < remaining; i++ {
			last |= uint32(data[offset+i]) << (24 - i*8)
		}
		sum += last
	}
	return sum
}
