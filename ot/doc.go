/*
Package ot provides access to the OpenType font tables which the Numderline
patching process reads and rewrites.

This is deliberately a low-level package: it exposes the SFNT table directory,
typed views of the tables we need (head, maxp, hhea, hmtx, loca, glyf, cmap,
name), and a builder that serializes a modified set of tables back into a
font binary. It will not interpret layout features or shape text; sibling
packages own those concerns.

Offsets in OpenType may be 2-byte or 4-byte values and tables come in a
variety of formats. Package `ot` hides format versions where it can and
surfaces an error where it cannot. Fonts in the wild contain entries
that—strictly speaking—infringe upon the OT specification; parsing is lenient
for tables we merely carry through unchanged, and strict for tables we have
to rewrite.

# Status

Font collections (*.ttc) and CFF-outline fonts are not supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'numderline.font'
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}
