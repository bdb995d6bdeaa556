package preprocess

import (
	"regexp"
	"sort"
	"strings"

	"coin-design-enrich/pkg/model"
)

// Rule rewrites an alternative spelling to its canonical entity name.
type Rule struct {
	Alt       string
	Canonical string
}

var seedRules = []Rule{
	{Alt: "horseman", Canonical: "horse man"},
	{Alt: "horsemen", Canonical: "horse men"},
}

var romanSuffixes = []string{" I.", " II.", " III.", " IV.", " V."}

// BuildRules maps every alternative name of every entity to the entity's
// name, after the fixed seed rules. A later mapping for the same alternative
// replaces the canonical name but keeps the first position.
func BuildRules(entities []model.EntityRow) []Rule {
	rules := make([]Rule, 0, len(seedRules)+len(entities))
	index := make(map[string]int, cap(rules))
	add := func(alt, canonical string) {
		if i, ok := index[alt]; ok {
			rules[i].Canonical = canonical
			return
		}
		index[alt] = len(rules)
		rules = append(rules, Rule{Alt: alt, Canonical: canonical})
	}
	for _, r := range seedRules {
		add(r.Alt, r.Canonical)
	}
	for _, e := range entities {
		if e.AlternativeNamesEn == nil {
			continue
		}
		for _, alt := range strings.Split(*e.AlternativeNamesEn, ", ") {
			alt = strings.TrimSpace(alt)
			if alt == "" || alt == e.NameEn {
				continue
			}
			add(alt, e.NameEn)
		}
	}
	return rules
}

// HasRomanSuffix reports whether s contains a regnal numeral followed by a period, like "Ptolemy II.".
func HasRomanSuffix(s string) bool {
	for _, suf := range romanSuffixes {
		if strings.Contains(s, suf) {
			return true
		}
	}
	return false
}

// RejectRomanSuffix returns the rules whose alternative has no regnal numeral suffix.
func RejectRomanSuffix(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !HasRomanSuffix(r.Alt) {
			out = append(out, r)
		}
	}
	return out
}

// Preprocessor applies a rule table to design texts.
type Preprocessor struct {
	rules     []Rule
	canonical map[string]string
	re        *regexp.Regexp
}

// NewPreprocessor compiles rules into a single whole-word matcher. Longer
// alternatives are tried first so "horsemen" is not read as "horseman".
func NewPreprocessor(rules []Rule) *Preprocessor {
	p := &Preprocessor{rules: rules, canonical: make(map[string]string, len(rules))}
	alts := make([]string, 0, len(rules))
	for _, r := range rules {
		p.canonical[r.Alt] = r.Canonical
		alts = append(alts, r.Alt)
	}
	if len(alts) == 0 {
		return p
	}
	p.re = wordAlternation(alts)
	return p
}

// Rules returns the rule table in order.
func (p *Preprocessor) Rules() []Rule {
	return p.rules
}

// Apply replaces every whole-word alternative in text with its canonical name.
func (p *Preprocessor) Apply(text string) string {
	if p.re == nil {
		return text
	}
	return replaceGroup(p.re, text, func(m string) string {
		if c, ok := p.canonical[m]; ok {
			return c
		}
		return m
	})
}

// wordAlternation compiles `(^|\W)(alt1|alt2|...)(\W|$)`-style matching
// without lookarounds: group 2 is the term.
func wordAlternation(terms []string) *regexp.Regexp {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	quoted := make([]string, 0, len(sorted))
	for _, t := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return regexp.MustCompile(`(^|[^\p{L}\p{N}_])(` + strings.Join(quoted, "|") + `)($|[^\p{L}\p{N}_])`)
}

// termMatches returns the byte spans of group 2 of re in text. Matches may
// share a boundary character, so the scan restarts at each term end.
func termMatches(re *regexp.Regexp, text string) [][2]int {
	var spans [][2]int
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[4], pos+loc[5]
		spans = append(spans, [2]int{start, end})
		if end <= pos {
			break
		}
		pos = end
	}
	return spans
}

func replaceGroup(re *regexp.Regexp, text string, fn func(string) string) string {
	spans := termMatches(re, text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s[0]])
		b.WriteString(fn(text[s[0]:s[1]]))
		last = s[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
