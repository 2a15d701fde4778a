package rules

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// render flattens a label sequence for comparison: numbered families print
// as their family digit, plain digits as 'd', decimal points as 'p',
// overflow as 'x' and everything else as '.'.
func render(syms []Symbol) string {
	var b strings.Builder
	for _, s := range syms {
		switch {
		case s == SymDigit:
			b.WriteByte('d')
		case s == SymDecimal:
			b.WriteByte('p')
		case s == SymOverflow:
			b.WriteByte('x')
		case s.Numbered():
			f, _ := s.Family()
			b.WriteByte(byte('0' + f))
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}

func labelize(t *testing.T, opts Options, text string) string {
	t.Helper()
	p, err := Compile(opts)
	if err != nil {
		t.Fatalf("compiling %q program: %v", text, err)
	}
	return render(p.Apply(text))
}

func TestApplyGrouping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	opts := Options{Modes: Modes(Underline), MaxRunLength: 20, Decimals: true}
	cases := []struct {
		text string
		want string
	}{
		// runs of three or fewer stay untouched
		{"7", "d"},
		{"42", "dd"},
		{"123", "ddd"},
		// four digits: one full group plus a demotion-free lead
		{"1234", "3210"},
		{"12345", "43210"},
		{"123456", "543210"},
		// leading partial groups get demoted off the underline parity
		{"1234567", "3543210"},
		{"12345678", "43543210"},
		// nine digits: three complete groups, no demotion
		{"123456789", "216543210"},
		{"1234567890", "3216543210"},
		// ten-cycle exercises the six-cycle wraparound twice
		{"12345678901234", "43543216543210"},
	}
	for _, c := range cases {
		if got := labelize(t, opts, c.text); got != c.want {
			t.Errorf("%q: labels %q, expected %q", c.text, got, c.want)
		}
	}
}

func TestApplyIndependentRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	opts := Options{Modes: Modes(Underline), MaxRunLength: 20, Decimals: true}
	cases := []struct {
		text string
		want string
	}{
		// any non-digit splits runs, each side labeled on its own
		{"a12345,67", ".43210.dd"},
		{"12 3456", "dd.3210"},
		{"1234x5678", "3210.3210"},
		// the decimal point splits too, fraction digits grouped independently
		{"1234.56789", "3210p43210"},
		{"1.5", "dpd"},
		{"0.1234", "dp3210"},
	}
	for _, c := range cases {
		if got := labelize(t, opts, c.text); got != c.want {
			t.Errorf("%q: labels %q, expected %q", c.text, got, c.want)
		}
	}
	// a short run after a comma restarts counting from zero
	if got := labelize(t, opts, "1234,567"); got != "3210.ddd" {
		t.Errorf("separator restart: got %q", got)
	}
}

func TestApplyDecimalsOff(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	opts := Options{Modes: Modes(Underline), MaxRunLength: 20, Decimals: false}
	cases := []struct {
		text string
		want string
	}{
		// fractional digits never group when decimals are off
		{"3.14159", "dpddddd"},
		{"1234.5678", "3210pdddd"},
		{"1234.56789012", "3210pdddddddd"},
		// integer runs unaffected by the ignore rule
		{"1234567", "3543210"},
	}
	for _, c := range cases {
		if got := labelize(t, opts, c.text); got != c.want {
			t.Errorf("%q: labels %q, expected %q", c.text, got, c.want)
		}
	}
}

func TestApplySquishAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	opts := Options{Modes: Modes(Squish), MaxRunLength: 20, Decimals: true, SquishAll: true}
	cases := []struct {
		text string
		want string
	}{
		// without the length gate even lone digits and short runs label up
		{"7", "0"},
		{"42", "10"},
		{"999", "210"},
		{"1234", "3210"},
		{"1234567", "6543210"},
		// short fractional runs label too
		{"1.5", "0p0"},
		{"3.14", "0p10"},
		{"a12,34", ".10.10"},
	}
	for _, c := range cases {
		if got := labelize(t, opts, c.text); got != c.want {
			t.Errorf("%q: labels %q, expected %q", c.text, got, c.want)
		}
	}
	// the decimals shield still wins over the dropped gate
	opts.Decimals = false
	if got := labelize(t, opts, "3.14159"); got != "0pddddd" {
		t.Errorf("decimals off: got %q", got)
	}
	// combined with underlines, partial leads demote as usual
	opts = Options{Modes: Modes(Underline, Squish), MaxRunLength: 20, Decimals: true, SquishAll: true}
	if got := labelize(t, opts, "42"); got != "40" {
		t.Errorf("underline demotion: got %q", got)
	}
}

func TestApplyBoundedOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	opts := Options{
		Modes:        Modes(Underline),
		MaxRunLength: 4,
		Decimals:     true,
		Target:       TargetBoundedScan,
	}
	cases := []struct {
		text string
		want string
	}{
		// within the bound the result matches the unbounded target
		{"123", "ddd"},
		{"1234", "3210"},
		// beyond the bound the rightmost digits stay correct, the rest overflow
		{"12345", "x3210"},
		{"123456", "xx3210"},
		{"12345678", "xxxx3210"},
		// runs are still independent under the bounded target
		{"12345.678", "x3210pddd"},
	}
	for _, c := range cases {
		if got := labelize(t, opts, c.text); got != c.want {
			t.Errorf("%q: labels %q, expected %q", c.text, got, c.want)
		}
	}
}

func TestApplyTargetsAgreeWithinBound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	reverse := Options{Modes: Modes(InsertComma), MaxRunLength: 12, Decimals: true}
	bounded := reverse
	bounded.Target = TargetBoundedScan
	texts := []string{
		"1", "12", "123", "1234", "123456789012",
		"9.99", "a1000b2000", "12345.6789",
	}
	for _, text := range texts {
		r := labelize(t, reverse, text)
		b := labelize(t, bounded, text)
		if r != b {
			t.Errorf("%q: reverse %q != bounded %q", text, r, b)
		}
	}
}

func TestUnderlineParityFollowsLabels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	p, err := Compile(Options{Modes: Modes(Underline), MaxRunLength: 20, Decimals: true})
	if err != nil {
		t.Fatal(err)
	}
	// "1234567": the rightmost group is underlined, the middle group and
	// the partial leading group are not.
	syms := p.Apply("1234567")
	underlined := make([]bool, len(syms))
	for i, s := range syms {
		if par, ok := s.GroupParity(); ok {
			underlined[i] = par == 0
		}
	}
	want := []bool{false, false, false, false, true, true, true}
	for i := range want {
		if underlined[i] != want[i] {
			t.Errorf("digit %d: underline = %v, expected %v", i, underlined[i], want[i])
		}
	}
}

func TestSeparatorPlacement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "numderline.font")
	defer teardown()
	//
	p, err := Compile(Options{Modes: Modes(InsertComma), MaxRunLength: 20, Decimals: true})
	if err != nil {
		t.Fatal(err)
	}
	// "1234567" renders as 1,234,567: separators trail the digits at
	// distances 6 and 3 from the right.
	syms := p.Apply("1234567")
	var seps []int
	for i, s := range syms {
		if s.SeparatorBearing() {
			seps = append(seps, i)
		}
	}
	if len(seps) != 2 || seps[0] != 0 || seps[1] != 3 {
		t.Errorf("separator positions = %v, expected [0 3]", seps)
	}
	// never a separator on the run-final digit, never in short runs
	for _, text := range []string{"123", "1234", "999999"} {
		for i, s := range p.Apply(text) {
			if s.RunFinal() && s.SeparatorBearing() {
				t.Errorf("%q digit %d: run-final label carries a separator", text, i)
			}
		}
	}
	for _, s := range p.Apply("123") {
		if s.SeparatorBearing() {
			t.Errorf("three-digit run must not grow separators")
		}
	}
}
