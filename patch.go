package numderline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/numderline/assemble"
	"github.com/npillmayer/numderline/internal/fontload"
	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
)

// verifySamples are shaped through a freshly patched font whenever
// Config.Verify is set. They cover short runs, group boundaries, overflow,
// decimals and digits embedded in surrounding text.
var verifySamples = []string{
	"0",
	"42",
	"999",
	"1234",
	"1234567",
	"123456789012345678901234",
	"3.14159265",
	"total: 1000000 items, 7.5%",
}

// PatchFont compiles the substitution program described by cfg and rebuilds
// f with digit-variant glyphs and a matching `calt` feature. The returned
// bytes are a complete font file; f itself is left untouched.
func PatchFont(f *ot.Font, cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prog, err := rules.Compile(rules.Options{
		Modes:        cfg.Modes,
		MaxRunLength: cfg.MaxRunLength,
		Decimals:     cfg.Decimals,
		SquishAll:    cfg.SquishAll,
		Target:       cfg.Target,
	})
	if err != nil {
		return nil, err
	}
	patched, err := assemble.Assemble(f, prog, cfg.geometry(f.Head.UnitsPerEm), cfg.Rename)
	if err != nil {
		return nil, err
	}
	if cfg.Verify {
		if err := assemble.Verify(patched, prog, verifySamples); err != nil {
			return nil, err
		}
		tracer().Infof("patched font verified against %d sample strings", len(verifySamples))
	}
	return patched, nil
}

// PatchData patches a font given as raw bytes. The input is cross-checked
// with a second, independent font parser before patching starts, so that
// corrupt input fails early with a diagnostic instead of surfacing as an
// obscure table error later on.
func PatchData(data []byte, cfg Config) ([]byte, error) {
	sf, err := fontload.ParseOpenTypeFont(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ot.ErrInvalidFontData, err)
	}
	tracer().Infof("patching font %q", sf.Fontname)
	f, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	return PatchFont(f, cfg)
}

// PatchFile reads a font file, patches it and writes the result to outDir.
// The output file is named after the patched font's full name, falling back
// to the input file name if the font carries no usable naming table.
// PatchFile returns the path of the written file.
func PatchFile(path, outDir string, cfg Config) (string, error) {
	sf, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		return "", err
	}
	tracer().Infof("loaded %q from %s", sf.Fontname, filepath.Base(path))
	patched, err := PatchData(sf.Binary, cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, outputName(patched, path)+".ttf")
	if err := os.WriteFile(outPath, patched, 0o644); err != nil {
		return "", err
	}
	tracer().Infof("wrote %s (%d bytes)", outPath, len(patched))
	return outPath, nil
}

// outputName derives a file name from the patched font's full name.
// A “Source” vendor prefix does not survive into the output name.
func outputName(patched []byte, path string) string {
	var name string
	if pf, err := ot.Parse(patched); err == nil && pf.Name != nil {
		name = pf.Name.Get(ot.NameIDFull)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return strings.ReplaceAll(name, "Source ", "Sauce ")
}

// PatchAll patches a batch of font files into outDir, with at most workers
// files in flight at once. Results are returned in input order. The first
// failure is reported after all workers have drained; remaining files are
// still patched.
func PatchAll(paths []string, outDir string, cfg Config, workers int) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	outs := make([]string, len(paths))
	sem := make(chan struct{}, workers)
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		i, path := i, path
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			out, err := PatchFile(path, outDir, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tracer().Errorf("patching %s: %v", filepath.Base(path), err)
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				return
			}
			outs[i] = out
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return outs, nil
}
