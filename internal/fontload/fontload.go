/*
Package fontload reads OpenType fonts through an independent SFNT parser.
The patcher runs every input through it before the table codec takes over,
so corrupt files fail with a parser diagnostic up front.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontload

import (
	"fmt"
	"os"

	"golang.org/x/image/font/sfnt"
)

// ScalableFont couples the raw bytes of a font file with its parsed SFNT
// view. Fontname is the font's full name, or empty if the naming table
// carries none.
type ScalableFont struct {
	Fontname string
	Binary   []byte
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont reads and parses an OpenType font (TTF or OTF) file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	sf, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	return sf, nil
}

// ParseOpenTypeFont parses an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (*ScalableFont, error) {
	sf := &ScalableFont{Binary: fbytes}
	var err error
	sf.SFNT, err = sfnt.Parse(sf.Binary)
	if err != nil {
		return nil, err
	}
	// a missing full name is no reason to refuse the font
	if name, err := sf.SFNT.Name(nil, sfnt.NameIDFull); err == nil {
		sf.Fontname = name
	}
	return sf, nil
}
