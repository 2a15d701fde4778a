package variant

import (
	"fmt"

	"github.com/npillmayer/numderline/rules"
)

// Key identifies one variant glyph: the digit it renders together with the
// visual role it plays inside a grouped run. Keys correspond 1:1 to the
// label families of the rule alphabet, plus the overflow role.
type Key struct {
	Digit    rules.DigitClass
	Pos      rules.GroupPosition
	Parity   rules.GroupParity
	RunFinal bool
	Overflow bool
}

// KeyFor derives the variant key a label symbol selects for a digit.
// Non-label symbols (plain digits, decimal points) have no variant.
func KeyFor(digit rules.DigitClass, s rules.Symbol) (Key, bool) {
	if s == rules.SymOverflow {
		return OverflowKey(digit), true
	}
	f, ok := s.Family()
	if !ok {
		return Key{}, false
	}
	return FamilyKey(digit, f), true
}

// FamilyKey builds the key for a digit in label family 0…6.
func FamilyKey(digit rules.DigitClass, family int) Key {
	s := rules.FamilySymbol(family)
	pos, _ := s.GroupPosition()
	par, _ := s.GroupParity()
	return Key{
		Digit:    digit,
		Pos:      pos,
		Parity:   par,
		RunFinal: s.RunFinal(),
	}
}

// OverflowKey builds the key for a digit beyond the supported run length.
func OverflowKey(digit rules.DigitClass) Key {
	return Key{Digit: digit, Overflow: true}
}

// Family recovers the label family index from a key. It returns false for
// the overflow key, which belongs to no family.
func (k Key) Family() (int, bool) {
	if k.Overflow {
		return 0, false
	}
	for f := 0; f < rules.NumFamilies; f++ {
		s := rules.FamilySymbol(f)
		pos, _ := s.GroupPosition()
		par, _ := s.GroupParity()
		if pos == k.Pos && par == k.Parity && s.RunFinal() == k.RunFinal {
			return f, true
		}
	}
	return 0, false
}

// Name returns the glyph name for trace and inspection output, following
// the `nd<family>.<digit>` convention.
func (k Key) Name() string {
	if k.Overflow {
		return fmt.Sprintf("ndx.%d", k.Digit)
	}
	f, _ := k.Family()
	return fmt.Sprintf("nd%d.%d", f, k.Digit)
}

// Underlined returns true if the key's group carries the underline in
// underline mode. Parity-0 groups are underlined; overflow never is.
func (k Key) Underlined() bool {
	return !k.Overflow && k.Parity == 0
}

// SeparatorBearing returns true if a group separator trails this digit,
// i.e. for position-0 digits that do not end their run.
func (k Key) SeparatorBearing() bool {
	return !k.Overflow && k.Pos == 0 && !k.RunFinal
}

// Squished returns true if the key's advance shrinks in squish mode.
// Position-0 digits keep their full advance so the group gap survives.
func (k Key) Squished() bool {
	return !k.Overflow && k.Pos != 0
}
