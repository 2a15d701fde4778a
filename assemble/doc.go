/*
Package assemble bakes compiled grouping rules and generated digit variants
into a font binary.

Assembly is the only place where abstract labels meet concrete glyph IDs:
it allocates IDs for the variant and helper glyphs, extends the outline and
metric tables, serializes the rule stages into GSUB lookups under a `calt`
feature, and optionally rewrites the name table. Untouched tables are
carried over byte for byte, and the output is produced in one piece, so a
failing step never leaves a half-written font behind.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

All rights reserved.
*/
package assemble

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'numderline.font'.
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}
