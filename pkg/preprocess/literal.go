package preprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"coin-design-enrich/pkg/model"
)

var (
	spanLiteral   = regexp.MustCompile(`[\(\[]\s*(\d+)\s*,\s*(\d+)\s*,\s*(?:'([^']+)'|"([^"]+)")\s*[\)\]]`)
	spanSeparator = regexp.MustCompile(`^\s*,\s*$`)
)

// FormatAnnotations renders spans as `[(0, 9, 'PERSON'), (12, 15, 'OBJECT')]`.
func FormatAnnotations(spans []model.Annotation) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		parts = append(parts, fmt.Sprintf("(%d, %d, '%s')", s.Start, s.End, s.Label))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseAnnotations reads the list literal written by FormatAnnotations.
// Square-bracket tuples and double quotes are accepted too.
func ParseAnnotations(s string) ([]model.Annotation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.Errorf("annotations literal must be a list: %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []model.Annotation{}, nil
	}
	locs := spanLiteral.FindAllStringSubmatchIndex(inner, -1)
	if len(locs) == 0 {
		return nil, errors.Errorf("no annotation tuples in %q", s)
	}
	// every byte between the brackets must belong to a tuple or a separator
	prev := 0
	for i, loc := range locs {
		gap := inner[prev:loc[0]]
		if (i == 0 && gap != "") || (i > 0 && !spanSeparator.MatchString(gap)) {
			return nil, errors.Errorf("unexpected %q in annotations literal %q", gap, s)
		}
		prev = loc[1]
	}
	if tail := strings.TrimSpace(inner[prev:]); tail != "" && tail != "," {
		return nil, errors.Errorf("unexpected %q in annotations literal %q", tail, s)
	}
	out := make([]model.Annotation, 0, len(locs))
	for _, loc := range locs {
		group := func(g int) string {
			if loc[2*g] < 0 {
				return ""
			}
			return inner[loc[2*g]:loc[2*g+1]]
		}
		start, err := strconv.Atoi(group(1))
		if err != nil {
			return nil, errors.Wrapf(err, "annotation start %q", group(1))
		}
		end, err := strconv.Atoi(group(2))
		if err != nil {
			return nil, errors.Wrapf(err, "annotation end %q", group(2))
		}
		if end < start {
			return nil, errors.Errorf("annotation span (%d, %d) ends before it starts", start, end)
		}
		label := group(3)
		if label == "" {
			label = group(4)
		}
		out = append(out, model.Annotation{Start: start, End: end, Label: label})
	}
	return out, nil
}
