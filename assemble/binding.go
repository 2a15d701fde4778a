package assemble

import (
	"fmt"
	"sort"

	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
)

// binding maps the abstract rule alphabet onto concrete glyph IDs. Digit
// symbols bind to ten glyphs each (one per digit class, index = digit
// value); the decimal point binds to a single glyph. Symbols with no
// binding simply contribute nothing to a class, so a font without a period
// glyph still assembles.
type binding struct {
	gids map[rules.Symbol][]ot.GlyphID
}

func newBinding() *binding {
	return &binding{gids: make(map[rules.Symbol][]ot.GlyphID)}
}

func (b *binding) bind(s rules.Symbol, gids []ot.GlyphID) {
	b.gids[s] = gids
}

// coverage collects the glyph set of a rule class, sorted ascending as
// coverage tables require.
func (b *binding) coverage(c rules.Class) []ot.GlyphID {
	var out []ot.GlyphID
	for _, s := range c.Symbols() {
		out = append(out, b.gids[s]...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// mapping resolves a substitution map into parallel (covered, substitute)
// glyph arrays, ordered by covered glyph ID. Input and output symbol must
// bind to glyph lists of equal length: substitution is per digit class.
func (b *binding) mapping(subst map[rules.Symbol]rules.Symbol) (cov, out []ot.GlyphID, err error) {
	type pair struct{ in, out ot.GlyphID }
	var pairs []pair
	for from, to := range subst {
		ins, outs := b.gids[from], b.gids[to]
		if len(ins) != len(outs) {
			return nil, nil, fmt.Errorf("%w: %s and %s bind %d vs %d glyphs",
				ot.ErrInvalidFontData, from, to, len(ins), len(outs))
		}
		for i := range ins {
			pairs = append(pairs, pair{ins[i], outs[i]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].in < pairs[j].in })
	cov = make([]ot.GlyphID, len(pairs))
	out = make([]ot.GlyphID, len(pairs))
	for i, p := range pairs {
		cov[i] = p.in
		out[i] = p.out
	}
	return cov, out, nil
}
