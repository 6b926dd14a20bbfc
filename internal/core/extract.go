package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"pocketclinic/pkg"
)

// Strategy names the extraction step that produced a record.
type Strategy string

const (
	StrategyStrict   Strategy = "strict"
	StrategyEmbedded Strategy = "embedded"
	StrategyKeyword  Strategy = "keyword"
	StrategyDefault  Strategy = "default"
)

// Structured reports whether the record came from a parsed JSON answer rather
// than lexical matching.
func (s Strategy) Structured() bool {
	return s == StrategyStrict || s == StrategyEmbedded
}

// Extraction is the result of running the extractor over one transcript.
type Extraction struct {
	Record   pkg.SymptomRecord
	Strategy Strategy
}

type attempt struct {
	strategy Strategy
	run      func(transcript string) (pkg.SymptomRecord, bool)
}

// SymptomExtractor turns a transcript, or a model's answer about one, into a
// SymptomRecord.  Attempts run in order and the first success wins.
type SymptomExtractor struct {
	chain []attempt
}

// NewSymptomExtractor returns an extractor with the standard chain:
// strict JSON, embedded JSON, keyword scan.
func NewSymptomExtractor() *SymptomExtractor {
	return &SymptomExtractor{chain: []attempt{
		{StrategyStrict, parseStrict},
		{StrategyEmbedded, parseEmbedded},
		{StrategyKeyword, scanKeywords},
	}}
}

// Extract always returns a record.  When no attempt succeeds every flag is
// false and the duration is absent.
func (e *SymptomExtractor) Extract(transcript string) Extraction {
	for _, a := range e.chain {
		if rec, ok := a.run(transcript); ok {
			return Extraction{Record: rec, Strategy: a.strategy}
		}
	}
	return Extraction{Record: pkg.SymptomRecord{}, Strategy: StrategyDefault}
}

var flagKeys = [...]string{"fever", "cough", "difficulty_breathing", "diarrhea"}

// parseStrict accepts a JSON object carrying boolean flags or a "symptoms"
// array.  Flags missing from the object are false.
func parseStrict(transcript string) (pkg.SymptomRecord, bool) {
	s := strings.TrimSpace(transcript)
	if s == "" || !gjson.Valid(s) {
		return pkg.SymptomRecord{}, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return pkg.SymptomRecord{}, false
	}
	if rec, ok := recordFromFlags(obj); ok {
		return rec, true
	}
	return recordFromSymptomList(obj)
}

// parseEmbedded runs parseStrict over the outermost brace-delimited span.
func parseEmbedded(transcript string) (pkg.SymptomRecord, bool) {
	start := strings.Index(transcript, "{")
	end := strings.LastIndex(transcript, "}")
	if start < 0 || end <= start {
		return pkg.SymptomRecord{}, false
	}
	return parseStrict(transcript[start : end+1])
}

// recordFromFlags needs at least one flag key holding a boolean.  A flag key
// holding anything else rejects the object.
func recordFromFlags(obj gjson.Result) (pkg.SymptomRecord, bool) {
	var flags [len(flagKeys)]bool
	found := false
	for i, key := range flagKeys {
		v := obj.Get(key)
		switch v.Type {
		case gjson.True, gjson.False:
			flags[i] = v.Bool()
			found = true
		case gjson.Null:
			// absent or null
		default:
			return pkg.SymptomRecord{}, false
		}
	}
	if !found {
		return pkg.SymptomRecord{}, false
	}
	rec := pkg.SymptomRecord{
		Fever:               flags[0],
		Cough:               flags[1],
		DifficultyBreathing: flags[2],
		Diarrhea:            flags[3],
	}
	if d, ok := durationField(obj); ok {
		rec = rec.WithDuration(d)
	}
	return rec, true
}

// recordFromSymptomList handles the {"symptoms": [...], "duration_days": N,
// "severity": "..."} shape by normalising it to text and scanning that.
func recordFromSymptomList(obj gjson.Result) (pkg.SymptomRecord, bool) {
	list := obj.Get("symptoms")
	if !list.IsArray() {
		return pkg.SymptomRecord{}, false
	}
	partial := PartialRecord{Severity: obj.Get("severity").String()}
	for _, item := range list.Array() {
		if item.Type == gjson.String {
			partial.Symptoms = append(partial.Symptoms, item.String())
		}
	}
	if d, ok := durationField(obj); ok {
		partial.DurationDays = &d
	}
	rec, _ := scanKeywords(NormalizeTranscript(partial))
	return rec, true
}

// Merge combines two records for the same report.  A flag set in either is
// set, and the longer duration wins.
func Merge(a, b pkg.SymptomRecord) pkg.SymptomRecord {
	out := pkg.SymptomRecord{
		Fever:               a.Fever || b.Fever,
		Cough:               a.Cough || b.Cough,
		DifficultyBreathing: a.DifficultyBreathing || b.DifficultyBreathing,
		Diarrhea:            a.Diarrhea || b.Diarrhea,
	}
	da, okA := a.Duration()
	db, okB := b.Duration()
	switch {
	case okA && (!okB || da >= db):
		out = out.WithDuration(da)
	case okB:
		out = out.WithDuration(db)
	}
	return out
}

func durationField(obj gjson.Result) (int, bool) {
	v := obj.Get("duration_days")
	if v.Type != gjson.Number || v.Num < 0 {
		return 0, false
	}
	return int(v.Int()), true
}

var (
	keywordPatterns = []struct {
		re  *regexp.Regexp
		set func(*pkg.SymptomRecord)
	}{
		{regexp.MustCompile(`(?i)\bfever\b|\bhot\b|\btemperature\b`), func(r *pkg.SymptomRecord) { r.Fever = true }},
		{regexp.MustCompile(`(?i)\bcough\b|\bcoughing\b`), func(r *pkg.SymptomRecord) { r.Cough = true }},
		{regexp.MustCompile(`(?i)difficulty\s+breathing|shortness\s+of\s+breath`), func(r *pkg.SymptomRecord) { r.DifficultyBreathing = true }},
		{regexp.MustCompile(`(?i)\bdiarrhea\b|\bloose\s+stools\b`), func(r *pkg.SymptomRecord) { r.Diarrhea = true }},
	}
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*days?\b`)
)

// scanKeywords matches fixed lexical triggers per flag.  It declines blank
// transcripts so the terminal default applies.
func scanKeywords(transcript string) (pkg.SymptomRecord, bool) {
	if strings.TrimSpace(transcript) == "" {
		return pkg.SymptomRecord{}, false
	}
	var rec pkg.SymptomRecord
	for _, p := range keywordPatterns {
		if p.re.MatchString(transcript) {
			p.set(&rec)
		}
	}
	if m := durationPattern.FindStringSubmatch(transcript); m != nil {
		// overflowing digit runs are not evidence of a duration
		if d, err := strconv.Atoi(m[1]); err == nil {
			rec = rec.WithDuration(d)
		}
	}
	return rec, true
}
