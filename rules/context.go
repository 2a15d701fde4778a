package rules

// RunContext classifies one position of input text with respect to digit-run
// boundaries. Digit runs are maximal sequences of CtxDigit positions; any
// other classification resets run boundaries on both sides. In particular a
// decimal point does not merge the integer and fractional digit runs into
// one counting domain.
type RunContext uint8

const (
	// CtxOther is any position that plays no role in digit grouping.
	CtxOther RunContext = iota
	// CtxDigit is a decimal digit 0…9.
	CtxDigit
	// CtxDecimalPoint separates an integer part from a fractional part.
	CtxDecimalPoint
	// CtxSign is a leading plus or minus.
	CtxSign
	// CtxGroupSeparatorAlready is a separator mark already present in the
	// text; runs around it are short and stay untouched anyway.
	CtxGroupSeparatorAlready
)

// Classify maps a rune to its run context.
func Classify(r rune) RunContext {
	switch {
	case r >= '0' && r <= '9':
		return CtxDigit
	case r == '.':
		return CtxDecimalPoint
	case r == '+' || r == '-' || r == '−':
		return CtxSign
	case r == ',' || r == '\'':
		return CtxGroupSeparatorAlready
	}
	return CtxOther
}

// Digit returns the digit class of a rune classified CtxDigit.
func Digit(r rune) DigitClass {
	return DigitClass(r - '0')
}

// symbolize maps classified text to the initial symbol sequence a compiled
// program starts from.
func symbolize(text []rune) []Symbol {
	syms := make([]Symbol, len(text))
	for i, r := range text {
		switch Classify(r) {
		case CtxDigit:
			syms[i] = SymDigit
		case CtxDecimalPoint:
			syms[i] = SymDecimal
		default:
			syms[i] = SymNone
		}
	}
	return syms
}
