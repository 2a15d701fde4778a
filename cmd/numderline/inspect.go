package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/numderline/internal/fontload"
	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runInspectCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setTraceLevel(flags["trace"])
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	repl, err := readline.New("numderline > ")
	if err != nil {
		fatalf("%v", err)
	}
	intp := &Intp{repl: repl}
	if err := intp.loadFont(fontPath); err != nil {
		fatalf("%v", err)
	}
	pterm.Info.Printf("inspecting %q\n", intp.sf.Fontname)
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

// Intp is our interpreter object
type Intp struct {
	sf   *fontload.ScalableFont
	font *ot.Font
	repl *readline.Instance
	prog *rules.Program
}

func (intp *Intp) loadFont(path string) error {
	sf, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		return err
	}
	f, err := ot.Parse(sf.Binary)
	if err != nil {
		return err
	}
	prog, err := rules.Compile(rules.Options{
		Modes:        rules.Modes(rules.Underline),
		MaxRunLength: 20,
		Decimals:     true,
	})
	if err != nil {
		return err
	}
	intp.sf, intp.font, intp.prog = sf, f, prog
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := intp.execute(line); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(line string) (quit bool) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		pterm.Println("commands: info | tables | digits | rules | name <id> | labels <text> | quit")
	case "info":
		intp.info()
	case "tables":
		intp.tables()
	case "digits":
		intp.digits()
	case "rules":
		intp.rules()
	case "name":
		intp.name(rest)
	case "labels":
		intp.labels(rest)
	default:
		tracer().Errorf("unknown command %q, try help", cmd)
	}
	return false
}

func (intp *Intp) info() {
	f := intp.font
	pterm.Printf("full name:   %s\n", intp.sf.Fontname)
	pterm.Printf("glyphs:      %d\n", f.NumGlyphs())
	pterm.Printf("unitsPerEm:  %d\n", f.Head.UnitsPerEm)
	pterm.Printf("outlines:    TrueType=%v\n", f.HasTrueTypeOutlines())
	pterm.Printf("GSUB:        %v\n", f.HasTable(ot.TagGSUB))
}

func (intp *Intp) tables() {
	for _, tag := range intp.font.TableTags() {
		pterm.Printf("%s  %6d bytes\n", tag, len(intp.font.Table(tag)))
	}
}

func (intp *Intp) digits() {
	for d := '0'; d <= '9'; d++ {
		gid := intp.font.GlyphIndex(d)
		if gid == 0 {
			pterm.Printf("%c  <unmapped>\n", d)
			continue
		}
		pterm.Printf("%c  glyph %4d  advance %d\n", d, gid, intp.font.HMtx.AdvanceWidth(gid))
	}
}

// rules prints the stages a default patch would bake into this font.
func (intp *Intp) rules() {
	for i, stage := range intp.prog.Stages {
		pterm.Printf("stage %d: %-14s %-13s %d rule(s)\n",
			i, stage.Name, stage.Direction, len(stage.Rules))
	}
}

func (intp *Intp) name(arg string) {
	if intp.font.Name == nil {
		tracer().Errorf("font has no name table")
		return
	}
	var id uint16
	if _, err := fmt.Sscanf(strings.TrimSpace(arg), "%d", &id); err != nil {
		tracer().Errorf("usage: name <numeric name ID>")
		return
	}
	value := intp.font.Name.Get(id)
	if value == "" {
		pterm.Printf("name %d: <empty>\n", id)
		return
	}
	pterm.Printf("name %d: %q\n", id, value)
}

// labels previews how the digits of a text would be grouped, independently
// of the rules baked into the inspected font.
func (intp *Intp) labels(text string) {
	if strings.TrimSpace(text) == "" {
		tracer().Errorf("usage: labels <text>")
		return
	}
	pterm.Println(text)
	pterm.Println(annotate(text, intp.prog))
}
