package assemble

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/harfbuzz"
	"github.com/go-text/typesetting/language"

	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
)

// ErrVerify flags a mismatch between the shaped glyph stream of a patched
// font and the reference interpreter's labeling.
var ErrVerify = errors.New("patched font does not shape as computed")

// Verify shapes sample strings with the patched font binary and checks the
// resulting glyph stream against the labeling the reference interpreter
// computes for the same text. The check is structural: positions the
// interpreter leaves plain must keep their cmap glyph, labeled positions
// must move off it, and equal (digit, label) pairs must land on the same
// variant glyph everywhere.
func Verify(patched []byte, prog *rules.Program, samples []string) error {
	parsed, err := ot.Parse(patched)
	if err != nil {
		return err
	}
	ft, err := font.ParseTTF(bytes.NewReader(patched))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	hbFont := harfbuzz.NewFont(ft)

	type slot struct {
		digit rules.DigitClass
		label rules.Symbol
	}
	seen := make(map[slot]ot.GlyphID)
	for _, sample := range samples {
		runes := []rune(sample)
		labels := prog.Apply(sample)

		buf := harfbuzz.NewBuffer()
		buf.Props.Direction = harfbuzz.LeftToRight
		buf.Props.Script = language.Latin
		buf.Props.Language = language.NewLanguage("en")
		buf.AddRunes(runes, 0, -1)
		buf.Shape(hbFont, nil)

		if len(buf.Info) != len(runes) {
			return fmt.Errorf("%w: %q shaped to %d glyphs for %d runes",
				ErrVerify, sample, len(buf.Info), len(runes))
		}
		for i, info := range buf.Info {
			got := ot.GlyphID(info.Glyph)
			base := parsed.GlyphIndex(runes[i])
			switch label := labels[i]; {
			case label == rules.SymNone, label == rules.SymDigit, label == rules.SymDecimal:
				if got != base {
					return fmt.Errorf("%w: %q position %d: plain rune shaped to glyph %d, cmap has %d",
						ErrVerify, sample, i, got, base)
				}
			default:
				if got == base {
					return fmt.Errorf("%w: %q position %d: label %s did not substitute",
						ErrVerify, sample, i, label)
				}
				s := slot{digit: rules.DigitClass(runes[i] - '0'), label: label}
				if prev, ok := seen[s]; ok && prev != got {
					return fmt.Errorf("%w: %q position %d: label %s maps to glyphs %d and %d",
						ErrVerify, sample, i, label, prev, got)
				}
				seen[s] = got
			}
		}
	}
	// distinct labels of one digit must not collapse onto one glyph
	byDigit := make(map[rules.DigitClass]map[ot.GlyphID]rules.Symbol)
	for s, gid := range seen {
		if byDigit[s.digit] == nil {
			byDigit[s.digit] = make(map[ot.GlyphID]rules.Symbol)
		}
		if other, ok := byDigit[s.digit][gid]; ok && other != s.label {
			return fmt.Errorf("%w: digit %d: labels %s and %s share glyph %d",
				ErrVerify, s.digit, other, s.label, gid)
		}
		byDigit[s.digit][gid] = s.label
	}
	tracer().Infof("verified %d samples against the patched font", len(samples))
	return nil
}
