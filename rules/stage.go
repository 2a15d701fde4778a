package rules

// Direction is the application direction of a stage's scan over the glyph
// buffer.
type Direction uint8

const (
	// LeftToRight scans forward; substitutions become visible to the
	// backtrack window of later positions within the same pass.
	LeftToRight Direction = iota
	// RightToLeft scans backward; substitutions become visible to the
	// lookahead window of later (i.e. further left) positions within the
	// same pass. This is the application mode of reverse chaining
	// substitution lookups.
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "right-to-left"
	}
	return "left-to-right"
}

// Rule is one contextual substitution rule: if the input position holds a
// symbol of Input and the neighboring positions match the Backtrack and
// Lookahead windows, the input symbol is replaced through Subst.
//
// Backtrack classes are ordered nearest-neighbor first, walking away from
// the input position to the left; Lookahead likewise to the right. A context
// window that extends beyond the buffer never matches.
//
// A rule with a nil Subst is an ignore rule: on a match, the position is
// left unchanged and no later rule of the same stage applies to it. This is
// the classic `ignore sub` idiom and, combined with rule order, expresses
// negative context.
type Rule struct {
	Backtrack []Class
	Input     Class
	Lookahead []Class
	Subst     map[Symbol]Symbol
}

// matches tests the rule at position i of the symbol buffer.
func (r *Rule) matches(syms []Symbol, i int) bool {
	if !r.Input.Contains(syms[i]) {
		return false
	}
	for j, c := range r.Backtrack {
		k := i - 1 - j
		if k < 0 || !c.Contains(syms[k]) {
			return false
		}
	}
	for j, c := range r.Lookahead {
		k := i + 1 + j
		if k >= len(syms) || !c.Contains(syms[k]) {
			return false
		}
	}
	return true
}

// Stage is an ordered set of rules applied in one directional pass over the
// buffer. Within a pass, rules are tried in order at each position and the
// first match wins. Stages are created by Compile and never mutated
// afterwards.
type Stage struct {
	Name      string
	Direction Direction
	Rules     []Rule
}

// apply runs one pass of the stage over the symbol buffer, in place.
func (st *Stage) apply(syms []Symbol) {
	n := len(syms)
	for step := 0; step < n; step++ {
		i := step
		if st.Direction == RightToLeft {
			i = n - 1 - step
		}
		for ri := range st.Rules {
			r := &st.Rules[ri]
			if !r.matches(syms, i) {
				continue
			}
			if r.Subst != nil {
				if out, ok := r.Subst[syms[i]]; ok {
					syms[i] = out
				}
			}
			break // first match wins, ignore rules block later ones
		}
	}
}

// Program is the compiled, ordered stage sequence together with the
// configuration it was compiled for.
type Program struct {
	Stages       []Stage
	Target       Target
	Modes        ModeSet
	MaxRunLength int
	Decimals     bool
	SquishAll    bool
}

// Apply runs the program over text and returns the final symbol per rune.
// This is the reference interpreter: it mimics the scan semantics of a
// shaping engine applying the serialized stages, and is what tests and
// verification compare against.
func (p *Program) Apply(text string) []Symbol {
	syms := symbolize([]rune(text))
	for i := range p.Stages {
		p.Stages[i].apply(syms)
	}
	return syms
}
