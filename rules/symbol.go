package rules

import "fmt"

// DigitClass is the decimal value a digit glyph renders, 0…9.
type DigitClass uint8

// GroupPosition is a digit's offset within its group of three, counted from
// the run's end: the last digit of a run (and every third digit left of it)
// has position 0.
type GroupPosition uint8

// GroupParity alternates per complete group of three, counted from the
// rightmost group (which has parity 0).
type GroupParity uint8

// Symbol is the abstract alphabet the compiled stages operate on. Digits of
// a run are relabeled through the ND0…ND6 families; the family encodes group
// position, group parity and run-finality in one label, mirroring the seven
// glyph-copy families of the generated variants.
type Symbol uint8

const (
	// SymNone marks positions outside any digit run.
	SymNone Symbol = iota
	// SymDigit is an unprocessed digit glyph.
	SymDigit
	// SymDecimal is the decimal-point glyph; it only ever appears in rule
	// contexts, never as a rule input.
	SymDecimal
	// SymND0 doubles as the run marker during anchoring and as the final
	// label of the rightmost digit: a marked digit that never acquires a
	// number *is* the run-final position-0 digit.
	SymND0
	SymND1
	SymND2
	SymND3
	SymND4
	SymND5
	SymND6
	// SymOverflow labels digits beyond the supported run length; they render
	// as the unmodified base glyph.
	SymOverflow

	numSymbols = iota
)

func (s Symbol) String() string {
	switch s {
	case SymNone:
		return "·"
	case SymDigit:
		return "digit"
	case SymDecimal:
		return "decimal"
	case SymOverflow:
		return "overflow"
	default:
		if s >= SymND0 && s <= SymND6 {
			return fmt.Sprintf("nd%d", s-SymND0)
		}
	}
	return fmt.Sprintf("symbol(%d)", uint8(s))
}

// Family returns the variant family index 0…6 for the numbered labels, and
// false for any other symbol.
func (s Symbol) Family() (int, bool) {
	if s >= SymND0 && s <= SymND6 {
		return int(s - SymND0), true
	}
	return 0, false
}

// Numbered returns true for the numbered labels nd0…nd6.
func (s Symbol) Numbered() bool {
	return s >= SymND0 && s <= SymND6
}

// FamilySymbol is the inverse of Family.
func FamilySymbol(family int) Symbol {
	return SymND0 + Symbol(family)
}

// NumFamilies is the number of numbered label families nd0…nd6.
const NumFamilies = 7

// GroupPosition returns the distance mod 3 from the run end for a numbered
// label. A surviving ND0 is the run-final digit.
func (s Symbol) GroupPosition() (GroupPosition, bool) {
	f, ok := s.Family()
	if !ok {
		return 0, false
	}
	return GroupPosition(f % 3), true
}

// GroupParity returns the underline parity for a numbered label: parity 0 is
// the rightmost group. Families nd0, nd1, nd2 and nd6 belong to parity-0
// groups.
func (s Symbol) GroupParity() (GroupParity, bool) {
	f, ok := s.Family()
	if !ok {
		return 0, false
	}
	if f < 3 || f == 6 {
		return 0, true
	}
	return 1, true
}

// RunFinal returns true for the label of a run's last digit.
func (s Symbol) RunFinal() bool {
	return s == SymND0
}

// SeparatorBearing returns true for labels of position-0 digits which are
// not run-final, i.e. the digits a group separator follows.
func (s Symbol) SeparatorBearing() bool {
	return s == SymND3 || s == SymND6
}

// familyForDistance returns the label family for a digit at the given
// distance from its run's end: distance 0 keeps nd0 and distances ≥ 1 cycle
// through nd1…nd6, so that family mod 3 is the group position and the
// families 0,1,2,6 mark parity-0 groups.
func familyForDistance(distance int) int {
	if distance == 0 {
		return 0
	}
	return (distance-1)%6 + 1
}

// Class is a set of symbols, used for rule inputs and context windows.
type Class uint16

// C builds a Class from symbols.
func C(symbols ...Symbol) Class {
	var c Class
	for _, s := range symbols {
		c |= 1 << s
	}
	return c
}

// Contains returns true if the class contains symbol s.
func (c Class) Contains(s Symbol) bool {
	return c&(1<<s) != 0
}

// Symbols lists the members of the class in symbol order.
func (c Class) Symbols() []Symbol {
	var out []Symbol
	for s := Symbol(0); s < numSymbols; s++ {
		if c.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

// Convenience classes used by the compiler.
var (
	// ClassDigitish covers every symbol that occupies a digit position.
	ClassDigitish = C(SymDigit, SymND0, SymND1, SymND2, SymND3, SymND4, SymND5, SymND6, SymOverflow)
	// ClassNumbered covers all numbered label families.
	ClassNumbered = C(SymND0, SymND1, SymND2, SymND3, SymND4, SymND5, SymND6)
)
