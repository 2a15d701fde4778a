package assemble

import (
	"fmt"
	"sort"

	"github.com/npillmayer/numderline/ot"
	"github.com/npillmayer/numderline/rules"
)

// The scripts the grouping feature registers under, matching the language
// systems of the original feature file.
var scriptTags = []ot.Tag{ot.T("DFLT"), ot.T("latn"), ot.T("cyrl"), ot.T("grek"), ot.T("kana")}

var tagCalt = ot.T("calt")

const noRequiredFeature = 0xFFFF

// gsubModel is the editable form of a GSUB table: scripts and features as
// parsed records, lookups as self-contained binary blobs whose internal
// offsets are all relative to the blob start.
type gsubModel struct {
	scripts  []gsubScript
	features []gsubFeature
	lookups  [][]byte
}

type gsubScript struct {
	tag   ot.Tag
	dflt  *gsubLangSys
	langs []gsubLangSys
}

type gsubLangSys struct {
	tag      ot.Tag
	required uint16
	features []uint16
}

type gsubFeature struct {
	tag     ot.Tag
	lookups []uint16
}

// buildGSUB serializes the compiled program into a GSUB table. When the
// font already carries one, its scripts, features and lookups are
// preserved; the new lookups are appended and the new feature is announced
// to every language system.
func buildGSUB(prog *rules.Program, bind *binding, existing []byte) ([]byte, error) {
	model := &gsubModel{}
	if existing != nil {
		m, err := parseGSUB(existing)
		if err != nil {
			return nil, err
		}
		model = m
	}
	base := uint16(len(model.lookups))
	stageLookups, err := buildLookups(prog, bind, base)
	if err != nil {
		return nil, err
	}
	caltIndex := uint16(len(model.features))
	feature := gsubFeature{tag: tagCalt}
	for i := uint16(0); i < stageLookups.stageCount; i++ {
		feature.lookups = append(feature.lookups, base+i)
	}
	model.lookups = append(model.lookups, stageLookups.blobs...)
	model.features = append(model.features, feature)
	announceFeature(model, caltIndex)
	tracer().Debugf("GSUB: %d lookups (%d new), %d features, %d scripts",
		len(model.lookups), len(stageLookups.blobs), len(model.features), len(model.scripts))
	return serializeGSUB(model)
}

// announceFeature adds the feature index to every language system of every
// script, creating the default scripts where missing.
func announceFeature(model *gsubModel, idx uint16) {
	have := make(map[ot.Tag]bool)
	for i := range model.scripts {
		sc := &model.scripts[i]
		have[sc.tag] = true
		if sc.dflt == nil {
			sc.dflt = &gsubLangSys{required: noRequiredFeature}
		}
		sc.dflt.features = append(sc.dflt.features, idx)
		for j := range sc.langs {
			sc.langs[j].features = append(sc.langs[j].features, idx)
		}
	}
	for _, tag := range scriptTags {
		if have[tag] {
			continue
		}
		model.scripts = append(model.scripts, gsubScript{
			tag:  tag,
			dflt: &gsubLangSys{required: noRequiredFeature, features: []uint16{idx}},
		})
	}
	sort.Slice(model.scripts, func(i, j int) bool { return model.scripts[i].tag < model.scripts[j].tag })
}

// --- Compiling stages to lookups -------------------------------------------

type lookupSet struct {
	blobs      [][]byte
	stageCount uint16 // the first stageCount blobs are the feature's lookups
}

// buildLookups serializes every stage as one lookup. Left-to-right stages
// become chaining context lookups (type 6, format 3) whose rules dispatch
// into single substitution sub-lookups; right-to-left stages become reverse
// chaining single substitution lookups (type 8). Sub-lookups are appended
// after the stage lookups, so stage lookup indices stay contiguous and in
// stage order, which is the order the engine applies them in.
func buildLookups(prog *rules.Program, bind *binding, base uint16) (*lookupSet, error) {
	nStages := uint16(len(prog.Stages))
	// assign sub-lookup indices up front
	subIndex := make(map[int]map[int]uint16) // stage index -> rule index -> lookup index
	next := base + nStages
	for si := range prog.Stages {
		st := &prog.Stages[si]
		if st.Direction != rules.LeftToRight {
			continue
		}
		subIndex[si] = make(map[int]uint16)
		for ri := range st.Rules {
			if st.Rules[ri].Subst != nil {
				subIndex[si][ri] = next
				next++
			}
		}
	}
	set := &lookupSet{stageCount: nStages}
	for si := range prog.Stages {
		st := &prog.Stages[si]
		var blob []byte
		var err error
		if st.Direction == rules.LeftToRight {
			blob, err = chainLookup(st, bind, subIndex[si])
		} else {
			blob, err = reverseLookup(st, bind)
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", st.Name, err)
		}
		set.blobs = append(set.blobs, blob)
	}
	for si := range prog.Stages {
		st := &prog.Stages[si]
		if st.Direction != rules.LeftToRight {
			continue
		}
		for ri := range st.Rules {
			if st.Rules[ri].Subst == nil {
				continue
			}
			blob, err := singleSubstLookup(st.Rules[ri].Subst, bind)
			if err != nil {
				return nil, fmt.Errorf("stage %s rule %d: %w", st.Name, ri, err)
			}
			set.blobs = append(set.blobs, blob)
		}
	}
	return set, nil
}

// wrapLookup prepends the lookup header to its subtables.
func wrapLookup(lookupType uint16, subtables [][]byte) []byte {
	header := 6 + 2*len(subtables)
	out := make([]byte, 0, header)
	out = appendU16(out, lookupType)
	out = appendU16(out, 0) // lookupFlag
	out = appendU16(out, uint16(len(subtables)))
	offset := header
	for _, st := range subtables {
		out = appendU16(out, uint16(offset))
		offset += len(st)
	}
	for _, st := range subtables {
		out = append(out, st...)
	}
	return out
}

// chainLookup serializes a left-to-right stage as a chaining context
// lookup. Every rule is one format 3 subtable; subtables are tried in rule
// order and the first matching one wins. An ignore rule serializes with an
// empty substitution record list: it matches, consumes, and changes
// nothing.
func chainLookup(st *rules.Stage, bind *binding, subIndex map[int]uint16) ([]byte, error) {
	var subtables [][]byte
	for ri := range st.Rules {
		r := &st.Rules[ri]
		var covs [][]ot.GlyphID
		for _, c := range r.Backtrack {
			covs = append(covs, bind.coverage(c))
		}
		covs = append(covs, bind.coverage(r.Input))
		for _, c := range r.Lookahead {
			covs = append(covs, bind.coverage(c))
		}
		nSubst := 0
		if r.Subst != nil {
			nSubst = 1
		}
		headerLen := 2 + // format
			2 + 2*len(r.Backtrack) +
			2 + 2 + // inputGlyphCount == 1
			2 + 2*len(r.Lookahead) +
			2 + 4*nSubst
		out := make([]byte, 0, headerLen)
		out = appendU16(out, 3)
		covOff := headerLen
		covBytes := make([][]byte, len(covs))
		for i, cov := range covs {
			covBytes[i] = coverageTable(cov)
		}
		ci := 0
		nextCov := func() uint16 {
			off := uint16(covOff)
			covOff += len(covBytes[ci])
			ci++
			return off
		}
		out = appendU16(out, uint16(len(r.Backtrack)))
		for range r.Backtrack {
			out = appendU16(out, nextCov())
		}
		out = appendU16(out, 1)
		out = appendU16(out, nextCov())
		out = appendU16(out, uint16(len(r.Lookahead)))
		for range r.Lookahead {
			out = appendU16(out, nextCov())
		}
		out = appendU16(out, uint16(nSubst))
		if r.Subst != nil {
			out = appendU16(out, 0) // sequenceIndex
			out = appendU16(out, subIndex[ri])
		}
		for _, cb := range covBytes {
			out = append(out, cb...)
		}
		subtables = append(subtables, out)
	}
	return wrapLookup(6, subtables), nil
}

// reverseLookup serializes a right-to-left stage as a reverse chaining
// single substitution lookup. The substitution is inline: the covered
// glyphs map index-parallel to the substitute array.
func reverseLookup(st *rules.Stage, bind *binding) ([]byte, error) {
	var subtables [][]byte
	for ri := range st.Rules {
		r := &st.Rules[ri]
		if r.Subst == nil {
			return nil, fmt.Errorf("%w: ignore rule in a reverse stage", ot.ErrUnsupportedFormat)
		}
		cov, subst, err := bind.mapping(r.Subst)
		if err != nil {
			return nil, err
		}
		var covs [][]ot.GlyphID
		for _, c := range r.Backtrack {
			covs = append(covs, bind.coverage(c))
		}
		for _, c := range r.Lookahead {
			covs = append(covs, bind.coverage(c))
		}
		headerLen := 2 + 2 + // format, coverageOffset
			2 + 2*len(r.Backtrack) +
			2 + 2*len(r.Lookahead) +
			2 + 2*len(subst)
		inputCov := coverageTable(cov)
		covBytes := make([][]byte, len(covs))
		for i, c := range covs {
			covBytes[i] = coverageTable(c)
		}
		out := make([]byte, 0, headerLen)
		out = appendU16(out, 1)
		covOff := headerLen
		out = appendU16(out, uint16(covOff))
		covOff += len(inputCov)
		out = appendU16(out, uint16(len(r.Backtrack)))
		for i := range r.Backtrack {
			out = appendU16(out, uint16(covOff))
			covOff += len(covBytes[i])
		}
		out = appendU16(out, uint16(len(r.Lookahead)))
		for i := range r.Lookahead {
			out = appendU16(out, uint16(covOff))
			covOff += len(covBytes[len(r.Backtrack)+i])
		}
		out = appendU16(out, uint16(len(subst)))
		for _, g := range subst {
			out = appendU16(out, uint16(g))
		}
		out = append(out, inputCov...)
		for _, cb := range covBytes {
			out = append(out, cb...)
		}
		subtables = append(subtables, out)
	}
	return wrapLookup(8, subtables), nil
}

// singleSubstLookup serializes a substitution map as a single substitution
// lookup, format 2.
func singleSubstLookup(subst map[rules.Symbol]rules.Symbol, bind *binding) ([]byte, error) {
	cov, out, err := bind.mapping(subst)
	if err != nil {
		return nil, err
	}
	covOff := 6 + 2*len(out)
	st := make([]byte, 0, covOff)
	st = appendU16(st, 2)
	st = appendU16(st, uint16(covOff))
	st = appendU16(st, uint16(len(out)))
	for _, g := range out {
		st = appendU16(st, uint16(g))
	}
	st = append(st, coverageTable(cov)...)
	return wrapLookup(1, [][]byte{st}), nil
}

// coverageTable serializes a sorted glyph list as a format 1 coverage.
func coverageTable(gids []ot.GlyphID) []byte {
	out := make([]byte, 0, 4+2*len(gids))
	out = appendU16(out, 1)
	out = appendU16(out, uint16(len(gids)))
	for _, g := range gids {
		out = appendU16(out, uint16(g))
	}
	return out
}

// --- Parsing an existing GSUB ----------------------------------------------

// parseGSUB reads a GSUB table into the editable model. Lookups are not
// interpreted: each is carried as the byte region from its start to the
// start of the next lookup (or the table end), which keeps the
// lookup-relative subtable offsets valid without understanding every
// subtable format. A lookup whose subtable offsets escape this region
// cannot be carried safely.
func parseGSUB(data []byte) (*gsubModel, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("%w: GSUB table too short", ot.ErrInvalidFontData)
	}
	scriptOff := int(u16(data[4:]))
	featureOff := int(u16(data[6:]))
	lookupOff := int(u16(data[8:]))
	if scriptOff >= len(data) || featureOff >= len(data) || lookupOff >= len(data) {
		return nil, fmt.Errorf("%w: GSUB list offsets out of bounds", ot.ErrInvalidFontData)
	}
	model := &gsubModel{}
	var err error
	if model.scripts, err = parseScriptList(data[scriptOff:]); err != nil {
		return nil, err
	}
	if model.features, err = parseFeatureList(data[featureOff:]); err != nil {
		return nil, err
	}
	if model.lookups, err = parseLookupList(data[lookupOff:]); err != nil {
		return nil, err
	}
	return model, nil
}

func parseScriptList(data []byte) ([]gsubScript, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: truncated script list", ot.ErrInvalidFontData)
	}
	count := int(u16(data))
	if len(data) < 2+6*count {
		return nil, fmt.Errorf("%w: truncated script list", ot.ErrInvalidFontData)
	}
	var scripts []gsubScript
	for i := 0; i < count; i++ {
		rec := data[2+6*i:]
		tag := ot.Tag(u32(rec))
		off := int(u16(rec[4:]))
		if off >= len(data) {
			return nil, fmt.Errorf("%w: script record out of bounds", ot.ErrInvalidFontData)
		}
		script, err := parseScript(data[off:], tag)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func parseScript(data []byte, tag ot.Tag) (gsubScript, error) {
	sc := gsubScript{tag: tag}
	if len(data) < 4 {
		return sc, fmt.Errorf("%w: truncated script table", ot.ErrInvalidFontData)
	}
	dfltOff := int(u16(data))
	count := int(u16(data[2:]))
	if dfltOff > 0 {
		if dfltOff >= len(data) {
			return sc, fmt.Errorf("%w: default LangSys out of bounds", ot.ErrInvalidFontData)
		}
		ls, err := parseLangSys(data[dfltOff:], 0)
		if err != nil {
			return sc, err
		}
		sc.dflt = &ls
	}
	if len(data) < 4+6*count {
		return sc, fmt.Errorf("%w: truncated LangSys records", ot.ErrInvalidFontData)
	}
	for i := 0; i < count; i++ {
		rec := data[4+6*i:]
		lsTag := ot.Tag(u32(rec))
		off := int(u16(rec[4:]))
		if off >= len(data) {
			return sc, fmt.Errorf("%w: LangSys out of bounds", ot.ErrInvalidFontData)
		}
		ls, err := parseLangSys(data[off:], lsTag)
		if err != nil {
			return sc, err
		}
		sc.langs = append(sc.langs, ls)
	}
	return sc, nil
}

func parseLangSys(data []byte, tag ot.Tag) (gsubLangSys, error) {
	ls := gsubLangSys{tag: tag}
	if len(data) < 6 {
		return ls, fmt.Errorf("%w: truncated LangSys table", ot.ErrInvalidFontData)
	}
	ls.required = u16(data[2:])
	count := int(u16(data[4:]))
	if len(data) < 6+2*count {
		return ls, fmt.Errorf("%w: truncated LangSys feature indices", ot.ErrInvalidFontData)
	}
	for i := 0; i < count; i++ {
		ls.features = append(ls.features, u16(data[6+2*i:]))
	}
	return ls, nil
}

func parseFeatureList(data []byte) ([]gsubFeature, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: truncated feature list", ot.ErrInvalidFontData)
	}
	count := int(u16(data))
	if len(data) < 2+6*count {
		return nil, fmt.Errorf("%w: truncated feature list", ot.ErrInvalidFontData)
	}
	var features []gsubFeature
	for i := 0; i < count; i++ {
		rec := data[2+6*i:]
		tag := ot.Tag(u32(rec))
		off := int(u16(rec[4:]))
		if off+4 > len(data) {
			return nil, fmt.Errorf("%w: feature record out of bounds", ot.ErrInvalidFontData)
		}
		ft := data[off:]
		if params := u16(ft); params != 0 {
			tracer().Infof("GSUB: dropping feature parameters of '%s'", tag)
		}
		n := int(u16(ft[2:]))
		if len(ft) < 4+2*n {
			return nil, fmt.Errorf("%w: truncated feature table", ot.ErrInvalidFontData)
		}
		f := gsubFeature{tag: tag}
		for j := 0; j < n; j++ {
			f.lookups = append(f.lookups, u16(ft[4+2*j:]))
		}
		features = append(features, f)
	}
	return features, nil
}

func parseLookupList(data []byte) ([][]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: truncated lookup list", ot.ErrInvalidFontData)
	}
	count := int(u16(data))
	if len(data) < 2+2*count {
		return nil, fmt.Errorf("%w: truncated lookup list", ot.ErrInvalidFontData)
	}
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = int(u16(data[2+2*i:]))
	}
	// region of a lookup: from its offset to the next-larger offset
	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)
	regionEnd := func(start int) int {
		for _, o := range sorted {
			if o > start {
				return o
			}
		}
		return len(data)
	}
	lookups := make([][]byte, count)
	for i, off := range offsets {
		end := regionEnd(off)
		if off < 2 || off >= end || end > len(data) {
			return nil, fmt.Errorf("%w: lookup offset out of bounds", ot.ErrInvalidFontData)
		}
		region := data[off:end]
		if err := checkLookupRegion(region); err != nil {
			return nil, err
		}
		lookups[i] = region
	}
	return lookups, nil
}

// checkLookupRegion verifies that a lookup's subtable offsets stay inside
// the region the lookup is carried as.
func checkLookupRegion(region []byte) error {
	if len(region) < 6 {
		return fmt.Errorf("%w: truncated lookup table", ot.ErrInvalidFontData)
	}
	flag := u16(region[2:])
	n := int(u16(region[4:]))
	header := 6 + 2*n
	if flag&0x0010 != 0 { // useMarkFilteringSet
		header += 2
	}
	if len(region) < header {
		return fmt.Errorf("%w: truncated lookup table", ot.ErrInvalidFontData)
	}
	for i := 0; i < n; i++ {
		off := int(u16(region[6+2*i:]))
		if off < header || off >= len(region) {
			return fmt.Errorf("%w: lookup subtable outside its carrier region", ot.ErrUnsupportedFormat)
		}
	}
	return nil
}

// --- Serializing the model -------------------------------------------------

func serializeGSUB(model *gsubModel) ([]byte, error) {
	scriptList := serializeScriptList(model.scripts)
	featureList := serializeFeatureList(model.features)
	lookupList, err := serializeLookupList(model.lookups)
	if err != nil {
		return nil, err
	}
	const headerLen = 10
	scriptOff := headerLen
	featureOff := scriptOff + len(scriptList)
	lookupOff := featureOff + len(featureList)
	if lookupOff > 0xFFFF {
		return nil, fmt.Errorf("%w: GSUB list offsets exceed 16 bits", ot.ErrUnsupportedFormat)
	}
	out := make([]byte, 0, lookupOff+len(lookupList))
	out = appendU32(out, 0x00010000)
	out = appendU16(out, uint16(scriptOff))
	out = appendU16(out, uint16(featureOff))
	out = appendU16(out, uint16(lookupOff))
	out = append(out, scriptList...)
	out = append(out, featureList...)
	out = append(out, lookupList...)
	return out, nil
}

func serializeLangSys(ls *gsubLangSys) []byte {
	out := make([]byte, 0, 6+2*len(ls.features))
	out = appendU16(out, 0) // lookupOrder, reserved
	out = appendU16(out, ls.required)
	out = appendU16(out, uint16(len(ls.features)))
	for _, f := range ls.features {
		out = appendU16(out, f)
	}
	return out
}

func serializeScriptList(scripts []gsubScript) []byte {
	headerLen := 2 + 6*len(scripts)
	var bodies [][]byte
	for i := range scripts {
		sc := &scripts[i]
		scHeader := 4 + 6*len(sc.langs)
		body := make([]byte, 0, scHeader)
		off := scHeader
		var lsBytes [][]byte
		if sc.dflt != nil {
			b := serializeLangSys(sc.dflt)
			body = appendU16(body, uint16(off))
			off += len(b)
			lsBytes = append(lsBytes, b)
		} else {
			body = appendU16(body, 0)
		}
		body = appendU16(body, uint16(len(sc.langs)))
		for j := range sc.langs {
			b := serializeLangSys(&sc.langs[j])
			body = appendU32(body, uint32(sc.langs[j].tag))
			body = appendU16(body, uint16(off))
			off += len(b)
			lsBytes = append(lsBytes, b)
		}
		for _, b := range lsBytes {
			body = append(body, b...)
		}
		bodies = append(bodies, body)
	}
	out := make([]byte, 0, headerLen)
	out = appendU16(out, uint16(len(scripts)))
	off := headerLen
	for i := range scripts {
		out = appendU32(out, uint32(scripts[i].tag))
		out = appendU16(out, uint16(off))
		off += len(bodies[i])
	}
	for _, b := range bodies {
		out = append(out, b...)
	}
	return out
}

func serializeFeatureList(features []gsubFeature) []byte {
	headerLen := 2 + 6*len(features)
	out := make([]byte, 0, headerLen)
	out = appendU16(out, uint16(len(features)))
	off := headerLen
	for i := range features {
		out = appendU32(out, uint32(features[i].tag))
		out = appendU16(out, uint16(off))
		off += 4 + 2*len(features[i].lookups)
	}
	for i := range features {
		out = appendU16(out, 0) // featureParams
		out = appendU16(out, uint16(len(features[i].lookups)))
		for _, l := range features[i].lookups {
			out = appendU16(out, l)
		}
	}
	return out
}

func serializeLookupList(lookups [][]byte) ([]byte, error) {
	headerLen := 2 + 2*len(lookups)
	out := make([]byte, 0, headerLen)
	out = appendU16(out, uint16(len(lookups)))
	off := headerLen
	for _, l := range lookups {
		if off > 0xFFFF {
			return nil, fmt.Errorf("%w: lookup offset exceeds 16 bits", ot.ErrUnsupportedFormat)
		}
		out = appendU16(out, uint16(off))
		off += len(l)
	}
	for _, l := range lookups {
		out = append(out, l...)
	}
	return out, nil
}

// --- byte helpers ----------------------------------------------------------

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func u32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
