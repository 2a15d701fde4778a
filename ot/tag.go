package ot

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation
// axis, script, language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	})
}

// Tags for the tables this module reads or rewrites.
var (
	TagHead = T("head")
	TagMaxp = T("maxp")
	TagHhea = T("hhea")
	TagHmtx = T("hmtx")
	TagLoca = T("loca")
	TagGlyf = T("glyf")
	TagCmap = T("cmap")
	TagName = T("name")
	TagGSUB = T("GSUB")
	TagCFF  = T("CFF ")
)

// GlyphID is a font-internal glyph identifier, i.e. an index into the font's
// glyph table. Glyph 0 is the "notdef" glyph by convention.
type GlyphID uint16
