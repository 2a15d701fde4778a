package rules

import (
	"errors"
	"fmt"
)

// Target selects the rule-engine capabilities the compiler emits for.
type Target uint8

const (
	// TargetReverseScan emits a right-to-left numbering stage, mapping onto
	// reverse chaining substitution lookups. Grouping is exact for runs of
	// any length; MaxRunLength is only the guaranteed bound.
	TargetReverseScan Target = iota
	// TargetBoundedScan emits forward-only rules with lookahead windows of
	// up to MaxRunLength digits, for engines without a right-to-left
	// application mode. Runs longer than MaxRunLength degrade to the
	// overflow label.
	TargetBoundedScan
)

func (t Target) String() string {
	if t == TargetBoundedScan {
		return "bounded-scan"
	}
	return "reverse-scan"
}

// ErrConfig flags an invalid compiler configuration.
var ErrConfig = errors.New("rules: invalid configuration")

// Options configures compilation.
type Options struct {
	Modes        ModeSet
	MaxRunLength int  // exact-grouping bound, ≥ 1
	Decimals     bool // process digit runs after a decimal point
	SquishAll    bool // label every digit run, so squish ink reaches short runs too
	Target       Target
}

// Compile synthesizes the ordered stage sequence which relabels plain digit
// glyphs with their correct variant family, scanning from the right edge of
// each maximal digit run.
//
// Stage overview (the labels cycle so that family mod 3 is the position
// within a group of three and families 0,1,2,6 mark parity-0 groups):
//
//	anchor         digit with three digits following  → nd0
//	extend         digit preceded by nd0              → nd0
//	number         right-to-left: nd0 before nd(k)    → nd(k+1), six-cycle
//	overflow       unnumbered nd0 beyond the bound    → overflow
//	demote-lead    partial leading group, first digit → parity-1 family
//	demote-follow  partial leading group, second digit→ parity-1 family
//
// Runs of three or fewer digits never match the anchor stage and stay
// completely untouched, so no grouping ink ever appears in short runs.
// Options.SquishAll drops that gate and labels every digit run.
func Compile(opts Options) (*Program, error) {
	if err := opts.Modes.Validate(); err != nil {
		return nil, err
	}
	if opts.Modes.IsEmpty() {
		return nil, fmt.Errorf("%w: no output mode enabled", ErrConfig)
	}
	if opts.MaxRunLength < 1 {
		return nil, fmt.Errorf("%w: MaxRunLength must be at least 1, is %d", ErrConfig, opts.MaxRunLength)
	}
	if opts.SquishAll && !opts.Modes.Has(Squish) {
		return nil, fmt.Errorf("%w: SquishAll needs the Squish mode", ErrConfig)
	}
	switch opts.Target {
	case TargetReverseScan, TargetBoundedScan:
	default:
		return nil, fmt.Errorf("%w: unknown target %d", ErrConfig, opts.Target)
	}

	p := &Program{
		Target:       opts.Target,
		Modes:        opts.Modes,
		MaxRunLength: opts.MaxRunLength,
		Decimals:     opts.Decimals,
		SquishAll:    opts.SquishAll,
	}
	p.Stages = append(p.Stages, anchorStage(opts.Decimals, opts.SquishAll), extendStage())
	if opts.Target == TargetReverseScan {
		p.Stages = append(p.Stages, numberStageReverse(), overflowStage())
	} else {
		p.Stages = append(p.Stages, numberStageBounded(opts.MaxRunLength))
	}
	if opts.Modes.Has(Underline) {
		p.Stages = append(p.Stages, demoteLeadStage(), demoteFollowStage())
	}
	tracer().Debugf("compiled %d stages for modes %s, target %s",
		len(p.Stages), opts.Modes, opts.Target)
	return p, nil
}

// anchorStage marks every digit that has three more digits following it.
// Only runs of length ≥ 4 contain such a digit; together with the extend
// stage this marks all digits of long runs and leaves short runs alone.
//
// With decimals disabled, an ignore rule shields any digit whose left
// neighbor is the decimal point or a plain digit: the first fractional digit
// is blocked by the point, the rest by their (still plain) left neighbor,
// and no anchor can enter the fractional run. Integer runs are unaffected
// because their leftmost digit has no digit-ish left neighbor and the marks
// spread from there.
//
// With squishAll the length gate falls away: every digit not shielded by
// the decimals rule is marked, so the squish advance reduction reaches
// short runs and lone digits as well.
func anchorStage(decimals, squishAll bool) Stage {
	st := Stage{Name: "anchor", Direction: LeftToRight}
	if !decimals {
		st.Rules = append(st.Rules, Rule{
			Backtrack: []Class{C(SymDecimal, SymDigit)},
			Input:     C(SymDigit),
		})
	}
	anchor := Rule{
		Input:     C(SymDigit),
		Lookahead: []Class{C(SymDigit), C(SymDigit), C(SymDigit)},
		Subst:     map[Symbol]Symbol{SymDigit: SymND0},
	}
	if squishAll {
		anchor.Lookahead = nil
	}
	st.Rules = append(st.Rules, anchor)
	return st
}

// extendStage spreads the anchor mark to the right through the rest of the
// run; the left-to-right pass makes each fresh mark visible to the next
// position's backtrack.
func extendStage() Stage {
	return Stage{
		Name:      "extend",
		Direction: LeftToRight,
		Rules: []Rule{{
			Backtrack: []Class{C(SymND0)},
			Input:     C(SymDigit),
			Subst:     map[Symbol]Symbol{SymDigit: SymND0},
		}},
	}
}

// numberStageReverse numbers marked digits right-to-left. The run-final
// digit matches no rule (its right neighbor is no label) and therefore
// keeps nd0; every other digit takes the successor of its already-numbered
// right neighbor, with nd6 cycling back to nd1.
func numberStageReverse() Stage {
	st := Stage{Name: "number", Direction: RightToLeft}
	for k := 0; k < 6; k++ {
		next := k + 1
		st.Rules = append(st.Rules, Rule{
			Input:     C(SymND0),
			Lookahead: []Class{C(FamilySymbol(k))},
			Subst:     map[Symbol]Symbol{SymND0: FamilySymbol(next)},
		})
	}
	st.Rules = append(st.Rules, Rule{
		Input:     C(SymND0),
		Lookahead: []Class{C(SymND6)},
		Subst:     map[Symbol]Symbol{SymND0: SymND1},
	})
	return st
}

// overflowStage is the degrade path for engines that cut the reverse scan
// short: a still-unnumbered mark with a labeled right neighbor is beyond
// the supported run length and falls back to the overflow label. After a
// complete reverse scan the stage matches nothing.
func overflowStage() Stage {
	return Stage{
		Name:      "overflow",
		Direction: RightToLeft,
		Rules: []Rule{{
			Input:     C(SymND0),
			Lookahead: []Class{C(SymND0, SymND1, SymND2, SymND3, SymND4, SymND5, SymND6, SymOverflow)},
			Subst:     map[Symbol]Symbol{SymND0: SymOverflow},
		}},
	}
}

// numberStageBounded numbers marked digits in a single forward pass using
// lookahead windows: a mark followed by exactly d more marks sits at
// distance d from the run's end. Rules are ordered longest window first so
// that the first match pins the distance exactly; at and beyond maxRun the
// digit overflows. The run-final digit falls through all rules and keeps
// nd0.
func numberStageBounded(maxRun int) Stage {
	st := Stage{Name: "number", Direction: LeftToRight}
	window := func(d int) []Class {
		w := make([]Class, d)
		for i := range w {
			w[i] = C(SymND0)
		}
		return w
	}
	st.Rules = append(st.Rules, Rule{
		Input:     C(SymND0),
		Lookahead: window(maxRun),
		Subst:     map[Symbol]Symbol{SymND0: SymOverflow},
	})
	for d := maxRun - 1; d >= 1; d-- {
		st.Rules = append(st.Rules, Rule{
			Input:     C(SymND0),
			Lookahead: window(d),
			Subst:     map[Symbol]Symbol{SymND0: FamilySymbol(familyForDistance(d))},
		})
	}
	return st
}

// demoteLeadStage un-underlines a partial leading group. A run's leftmost
// digit carries nd1 or nd6 exactly when its group is incomplete yet marked
// for underlining; the ignore rule restricts the demotion to run-leading
// positions.
func demoteLeadStage() Stage {
	return Stage{
		Name:      "demote-lead",
		Direction: LeftToRight,
		Rules: []Rule{
			{
				Backtrack: []Class{ClassDigitish},
				Input:     C(SymND1, SymND6),
			},
			{
				Input: C(SymND1, SymND6),
				Subst: map[Symbol]Symbol{SymND1: SymND4, SymND6: SymND3},
			},
		},
	}
}

// demoteFollowStage finishes the two-digit partial group: the nd4 produced
// by demote-lead cannot precede nd6 in any naturally numbered run, so the
// pattern identifies exactly the group mate that still needs demoting.
func demoteFollowStage() Stage {
	return Stage{
		Name:      "demote-follow",
		Direction: LeftToRight,
		Rules: []Rule{{
			Backtrack: []Class{C(SymND4)},
			Input:     C(SymND6),
			Subst:     map[Symbol]Symbol{SymND6: SymND3},
		}},
	}
}
