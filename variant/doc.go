/*
Package variant constructs the digit variant glyphs a patched font needs.

For every decimal digit the patcher bakes up to eight visual variants into
the font, one per label family plus one for overflow positions. A variant
never copies or modifies the base outline: it is a TrueType composite glyph
referencing the base digit glyph, optionally together with small generated
helper glyphs (an underline bar, a separator tick) or the font's own comma.
Which decorations a family receives is a pure function of the family's
group position, group parity and run-finality together with the enabled
output modes, so generation is deterministic and side-effect free; glyph ID
allocation and table rewriting are left to the assemble package.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

All rights reserved.
*/
package variant

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'numderline.font'.
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}
