/*
Package rules compiles the digit-grouping logic into ordered contextual
substitution stages.

Grouping digits by their distance from the end of an unbounded-length run is
a global counting problem, but a shaping engine only offers local,
bounded-window pattern rules. The compiler therefore expresses the counter as
a small state machine over glyph labels, driven by repeated local-rule
application: digits of a run are first marked, then numbered right-to-left
through a six-cycle of label families which carries both the position within
a group of three and the alternating group parity.

The package is pure data transformation: stages are produced as tables of
pattern → replacement over an abstract symbol alphabet, and a reference
interpreter applies them to classified text. Binding symbols to concrete
glyphs and serializing stages into font tables is the assembling package's
concern; the substitution engine inside a font renderer is treated as an
interpreter that this package emits programs for.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package rules

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'numderline.font'
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}
