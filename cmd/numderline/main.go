package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/numderline"
	"github.com/npillmayer/numderline/rules"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// tracer traces with key 'numderline.font'
func tracer() tracing.Trace {
	return tracing.Select("numderline.font")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":       "go",
		"trace.numderline.font": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Println("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	commando.
		SetExecutableName("numderline").
		SetVersion("v0.1.0").
		SetDescription("Patch fonts to visually group the digits of long numbers.")

	commando.
		Register("patch").
		SetDescription("Patch one or more font files with digit-grouping variants and rules.").
		SetShortDescription("patch fonts").
		AddArgument("fonts...", "font file paths (variadic argument parts joined by comma by commando)", "").
		AddFlag("out,o", "output directory", commando.String, "out").
		AddFlag("commas,c", "insert thousands-separator commas", commando.Bool, nil).
		AddFlag("mono-commas,m", "insert narrow tick separators for monospaced fonts", commando.Bool, nil).
		AddFlag("squish", "squish digit advances by this fraction (e.g. 0.15)", commando.String, "0").
		AddFlag("shift", "nudge digits towards their group center by this many font units", commando.Int, 0).
		AddFlag("squish-all", "squish short runs and lone digits as well", commando.Bool, nil).
		AddFlag("group,g", "shift-and-squish preset without underlines", commando.Bool, nil).
		AddFlag("no-underline,U", "do not underline alternating digit groups", commando.Bool, nil).
		AddFlag("no-decimals,D", "do not group digits after a decimal point", commando.Bool, nil).
		AddFlag("no-rename,R", "keep the original font names", commando.Bool, nil).
		AddFlag("max-run", "longest digit run that still gets grouped", commando.Int, 20).
		AddFlag("bounded", "emit forward-only rules with bounded lookahead windows", commando.Bool, nil).
		AddFlag("verify", "shape sample texts through the patched font", commando.Bool, nil).
		AddFlag("jobs,j", "number of fonts to patch concurrently", commando.Int, 4).
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Info").
		SetAction(runPatchCommand)

	commando.
		Register("demo").
		SetDescription("Show how sample numbers would be grouped, next to locale-formatted references.").
		SetShortDescription("preview grouping").
		AddArgument("samples...", "sample texts (variadic argument parts joined by comma by commando)", "").
		AddFlag("commas,c", "insert thousands-separator commas", commando.Bool, nil).
		AddFlag("mono-commas,m", "insert narrow tick separators for monospaced fonts", commando.Bool, nil).
		AddFlag("squish-all", "squish short runs and lone digits as well", commando.Bool, nil).
		AddFlag("group,g", "shift-and-squish preset without underlines", commando.Bool, nil).
		AddFlag("no-underline,U", "do not underline alternating digit groups", commando.Bool, nil).
		AddFlag("no-decimals,D", "do not group digits after a decimal point", commando.Bool, nil).
		AddFlag("max-run", "longest digit run that still gets grouped", commando.Int, 20).
		AddFlag("bounded", "emit forward-only rules with bounded lookahead windows", commando.Bool, nil).
		SetAction(runDemoCommand)

	commando.
		Register("inspect").
		SetDescription("Interactively inspect a font before or after patching.").
		SetShortDescription("inspect a font").
		AddArgument("font", "font file path", "").
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runInspectCommand)

	commando.Parse(nil)
}

func runPatchCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags["trace"])
	cfg, err := configFromFlags(flags)
	if err != nil {
		fatalf("%v", err)
	}
	cfg.Rename = !mustFlagBool(flags["no-rename"], "no-rename")
	cfg.Verify = mustFlagBool(flags["verify"], "verify")
	if squish := strings.TrimSpace(mustFlagString(flags["squish"], "squish")); squish != "0" {
		cfg.SquishFraction, err = strconv.ParseFloat(squish, 64)
		if err != nil {
			fatalf("invalid --squish flag: %v", err)
		}
		cfg.Modes = cfg.Modes | rules.Modes(rules.Squish)
	}
	if shift := mustFlagInt(flags["shift"], "shift"); shift != 0 {
		cfg.GroupShift = int16(shift)
	}
	paths := splitVariadic(args["fonts"])
	if len(paths) == 0 {
		fatalf("at least one font path is required")
	}
	outDir := strings.TrimSpace(mustFlagString(flags["out"], "out"))
	jobs := mustFlagInt(flags["jobs"], "jobs")

	outs, err := numderline.PatchAll(paths, outDir, cfg, jobs)
	if err != nil {
		pterm.Error.Printf("patching failed: %v\n", err)
		os.Exit(1)
	}
	for _, out := range outs {
		pterm.Info.Printf("wrote %s\n", out)
	}
}

func runDemoCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	cfg, err := configFromFlags(flags)
	if err != nil {
		fatalf("%v", err)
	}
	prog, err := rules.Compile(rules.Options{
		Modes:        cfg.Modes,
		MaxRunLength: cfg.MaxRunLength,
		Decimals:     cfg.Decimals,
		SquishAll:    cfg.SquishAll,
		Target:       cfg.Target,
	})
	if err != nil {
		fatalf("%v", err)
	}
	samples := splitVariadic(args["samples"])
	if len(samples) == 0 {
		samples = []string{"1234567", "123456789012", "3.14159265", "around 10000 items"}
	}
	en := message.NewPrinter(language.English)
	for _, sample := range samples {
		pterm.Println(sample)
		pterm.Println(annotate(sample, prog))
		if n, err := strconv.ParseInt(sample, 10, 64); err == nil {
			pterm.Printf("  en locale: %s\n", en.Sprintf("%d", n))
		}
	}
}

// annotate renders the grouping of a sample as a marker line: '_' under
// underlined digits, ''' after digits a separator would follow, 'x' under
// overflowed digits.
func annotate(sample string, prog *rules.Program) string {
	labels := prog.Apply(sample)
	var sb strings.Builder
	for _, s := range labels {
		switch {
		case s == rules.SymOverflow:
			sb.WriteByte('x')
			continue
		case s.SeparatorBearing():
			sb.WriteByte('\'')
			continue
		}
		if parity, ok := s.GroupParity(); ok && parity == 0 {
			sb.WriteByte('_')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// configFromFlags assembles the mode and rule settings shared by the patch
// and demo commands.
func configFromFlags(flags map[string]commando.FlagValue) (numderline.Config, error) {
	cfg := numderline.DefaultConfig()
	if mustFlagBool(flags["group"], "group") {
		cfg = numderline.GroupConfig()
	}
	if mustFlagBool(flags["no-underline"], "no-underline") {
		cfg.Modes = cfg.Modes &^ rules.Modes(rules.Underline)
	}
	if mustFlagBool(flags["commas"], "commas") {
		cfg.Modes = cfg.Modes | rules.Modes(rules.InsertComma)
	}
	if mustFlagBool(flags["mono-commas"], "mono-commas") {
		cfg.Modes = cfg.Modes | rules.Modes(rules.MonoMiniComma)
	}
	if mustFlagBool(flags["squish-all"], "squish-all") {
		cfg.Modes = cfg.Modes | rules.Modes(rules.Squish)
		cfg.SquishAll = true
	}
	if cfg.Modes.IsEmpty() {
		return cfg, fmt.Errorf("all grouping styles disabled, nothing to do")
	}
	cfg.MaxRunLength = mustFlagInt(flags["max-run"], "max-run")
	cfg.Decimals = !mustFlagBool(flags["no-decimals"], "no-decimals")
	if mustFlagBool(flags["bounded"], "bounded") {
		cfg.Target = rules.TargetBoundedScan
	}
	return cfg, cfg.Validate()
}

// splitVariadic undoes commando's joining of variadic argument parts.
func splitVariadic(arg commando.ArgValue) []string {
	var parts []string
	for _, p := range strings.Split(arg.Value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func setTraceLevel(flag commando.FlagValue) {
	tlevel, err := flag.GetString()
	if err != nil {
		fatalf("invalid --trace flag: %v", err)
	}
	switch tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		fatalf("invalid trace level: %s", tlevel)
	}
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "numderline: "+format+"\n", args...)
	os.Exit(1)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
