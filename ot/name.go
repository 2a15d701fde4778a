package ot

import (
	"sort"
	"unicode/utf16"
)

// Name IDs of the naming-table entries a patch rewrites.
const (
	NameIDFamily      = 1
	NameIDSubfamily   = 2
	NameIDUniqueID    = 3
	NameIDFull        = 4
	NameIDPostscript  = 6
	NameIDPrefFamily  = 16
	NameIDCompatFull  = 18
)

// NameRecord is one entry of the naming table.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      []byte // raw bytes in the record's platform encoding
}

// NameTable is the font naming table.
type NameTable struct {
	records []NameRecord
}

func parseName(data []byte) (*NameTable, error) {
	if len(data) < 6 {
		return nil, errFontFormat("name table too short")
	}
	count := int(u16(data[2:]))
	stringOffset := int(u16(data[4:]))
	if len(data) < 6+count*12 {
		return nil, errFontFormat("name records truncated")
	}
	t := &NameTable{records: make([]NameRecord, 0, count)}
	for i := 0; i < count; i++ {
		rec := data[6+i*12:]
		length := int(u16(rec[8:]))
		offset := int(u16(rec[10:]))
		if stringOffset+offset+length > len(data) {
			continue // tolerate broken records in fonts we only read
		}
		t.records = append(t.records, NameRecord{
			PlatformID: u16(rec),
			EncodingID: u16(rec[2:]),
			LanguageID: u16(rec[4:]),
			NameID:     u16(rec[6:]),
			Value:      data[stringOffset+offset : stringOffset+offset+length],
		})
	}
	return t, nil
}

// isWideEncoding reports whether a record's string is UTF-16BE encoded.
func isWideEncoding(platformID uint16) bool {
	return platformID == 0 || platformID == 3
}

func decodeNameValue(rec NameRecord) string {
	if isWideEncoding(rec.PlatformID) {
		u := make([]uint16, 0, len(rec.Value)/2)
		for i := 0; i+1 < len(rec.Value); i += 2 {
			u = append(u, u16(rec.Value[i:]))
		}
		return string(utf16.Decode(u))
	}
	return string(rec.Value)
}

func encodeNameValue(rec NameRecord, s string) []byte {
	if isWideEncoding(rec.PlatformID) {
		u := utf16.Encode([]rune(s))
		out := make([]byte, 0, len(u)*2)
		for _, v := range u {
			out = appendU16(out, v)
		}
		return out
	}
	return []byte(s)
}

// Get returns the first decodable value for a name ID, preferring Windows
// records, or "" if the table has no such entry.
func (t *NameTable) Get(nameID uint16) string {
	var fallback string
	for _, rec := range t.records {
		if rec.NameID != nameID {
			continue
		}
		if rec.PlatformID == 3 {
			return decodeNameValue(rec)
		}
		if fallback == "" {
			fallback = decodeNameValue(rec)
		}
	}
	return fallback
}

// Rewrite serializes the naming table, transforming record values through
// the given function. transform receives the name ID and decoded value; it
// returns the replacement value and true, or false to keep the record
// unchanged.
func (t *NameTable) Rewrite(transform func(nameID uint16, value string) (string, bool)) []byte {
	records := make([]NameRecord, len(t.records))
	copy(records, t.records)
	for i, rec := range records {
		if v, changed := transform(rec.NameID, decodeNameValue(rec)); changed {
			records[i].Value = encodeNameValue(rec, v)
		}
	}
	// records must be sorted by platform, encoding, language, name ID
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.PlatformID != b.PlatformID {
			return a.PlatformID < b.PlatformID
		}
		if a.EncodingID != b.EncodingID {
			return a.EncodingID < b.EncodingID
		}
		if a.LanguageID != b.LanguageID {
			return a.LanguageID < b.LanguageID
		}
		return a.NameID < b.NameID
	})
	stringOffset := 6 + len(records)*12
	header := make([]byte, 0, stringOffset)
	header = appendU16(header, 0) // format
	header = appendU16(header, uint16(len(records)))
	header = appendU16(header, uint16(stringOffset))
	var storage []byte
	for _, rec := range records {
		header = appendU16(header, rec.PlatformID)
		header = appendU16(header, rec.EncodingID)
		header = appendU16(header, rec.LanguageID)
		header = appendU16(header, rec.NameID)
		header = appendU16(header, uint16(len(rec.Value)))
		header = appendU16(header, uint16(len(storage)))
		storage = append(storage, rec.Value...)
	}
	return append(header, storage...)
}
