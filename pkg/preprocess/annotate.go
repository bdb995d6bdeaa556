package preprocess

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"coin-design-enrich/pkg/model"
)

// Annotator tags dictionary entities in design texts.
type Annotator struct {
	class map[string]string
	re    *regexp.Regexp
}

// NewAnnotator indexes entity names and alternative names. A term listed
// under several classes keeps the first class in model.EntityClasses order.
func NewAnnotator(entities []model.EntityRow) *Annotator {
	rank := make(map[string]int, len(model.EntityClasses))
	for i, c := range model.EntityClasses {
		rank[c] = i
	}
	sorted := make([]model.EntityRow, 0, len(entities))
	for _, e := range entities {
		if _, ok := rank[e.Class]; ok {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Class] < rank[sorted[j].Class]
	})

	a := &Annotator{class: make(map[string]string)}
	add := func(term, class string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		if _, ok := a.class[term]; !ok {
			a.class[term] = class
		}
	}
	for _, e := range sorted {
		add(e.NameEn, e.Class)
		if e.AlternativeNamesEn != nil {
			for _, alt := range strings.Split(*e.AlternativeNamesEn, ", ") {
				add(alt, e.Class)
			}
		}
	}
	if len(a.class) == 0 {
		return a
	}
	terms := make([]string, 0, len(a.class))
	for t := range a.class {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	a.re = wordAlternation(terms)
	return a
}

// Annotate returns non-overlapping whole-word entity spans in start order.
// Offsets count runes.
func (a *Annotator) Annotate(text string) []model.Annotation {
	if a.re == nil {
		return nil
	}
	spans := termMatches(a.re, text)
	out := make([]model.Annotation, 0, len(spans))
	for _, s := range spans {
		out = append(out, model.Annotation{
			Start: utf8.RuneCountInString(text[:s[0]]),
			End:   utf8.RuneCountInString(text[:s[1]]),
			Label: a.class[text[s[0]:s[1]]],
		})
	}
	return out
}

// ListOfStrings returns the annotated surfaces of d with their labels.
// Spans outside the text are skipped.
func ListOfStrings(d model.Design) model.EntityList {
	runes := []rune(d.DesignEn)
	out := make(model.EntityList, 0, len(d.Annotations))
	for _, an := range d.Annotations {
		if an.Start < 0 || an.End > len(runes) || an.Start >= an.End {
			continue
		}
		out = append(out, model.NewMention(string(runes[an.Start:an.End]), an.Label))
	}
	return out
}
