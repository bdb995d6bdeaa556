package repair

import (
	"regexp"
	"strings"
)

// Rule is one named text rewrite applied to a raw model completion.
type Rule struct {
	Name  string
	Apply func(string) string
}

func regexRule(name, pattern, repl string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Apply: func(s string) string {
			return re.ReplaceAllString(s, repl)
		},
	}
}

// Rule names, exported so tests and logs can refer to a single step.
const (
	RuleTrimFences         = "trim-fences"
	RuleStripHashComments  = "strip-hash-comments"
	RuleStripSlashComments = "strip-slash-comments"
	RuleQuoteBareKeys      = "quote-bare-keys"
	RuleDoubleQuoteValues  = "double-quote-values"
	RuleWrapArray          = "wrap-array"
	RuleUnquoteDesignID    = "unquote-design-id"
	RuleDropTrailingCommas = "drop-trailing-commas"
	RuleTuplesToArrays     = "tuples-to-arrays"
	RuleQuoteBareValues    = "quote-bare-values"
	RuleSeparateObjects    = "separate-objects"
)

// trimFences strips surrounding whitespace, markdown fences and a leading json language tag.
func trimFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "`")
	s = strings.TrimRight(s, "`")
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	return strings.TrimSpace(s)
}

func wrapArray(s string) string {
	if strings.HasPrefix(s, "[") {
		return s
	}
	return "[" + s + "]"
}

// BaseRules is the first repair tier, applied to completions that are not valid JSON.
// Comment stripping is line based and will also cut a '#' or '//' that sits
// inside a string value.
func BaseRules() []Rule {
	return []Rule{
		{Name: RuleTrimFences, Apply: trimFences},
		regexRule(RuleStripHashComments, `#.*`, ""),
		regexRule(RuleStripSlashComments, `//.*`, ""),
		regexRule(RuleQuoteBareKeys, `(\w+):`, `"${1}":`),
		regexRule(RuleDoubleQuoteValues, `: '([^']*)'`, `: "${1}"`),
		{Name: RuleWrapArray, Apply: wrapArray},
		regexRule(RuleUnquoteDesignID, `"design_id":\s*"(\d+)"`, `"design_id": ${1}`),
		{Name: RuleDropTrailingCommas, Apply: dropTrailingCommas},
		regexRule(RuleTuplesToArrays, `\(\s*"(.*?)"\s*,\s*"(.*?)"\s*\)`, `["${1}", "${2}"]`),
	}
}

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

func dropTrailingCommas(s string) string {
	s = trailingCommaObject.ReplaceAllString(s, "}")
	return trailingCommaArray.ReplaceAllString(s, "]")
}

// ExtendedRules is the second tier, tried only when the base output does not parse.
// Quoting bare values also turns numbers into strings; record coercion undoes that.
func ExtendedRules() []Rule {
	return []Rule{
		regexRule(RuleQuoteBareKeys, `(\w+):`, `"${1}":`),
		regexRule(RuleQuoteBareValues, `": (\w+)`, `": "${1}"`),
		regexRule(RuleSeparateObjects, `\}\s*\{`, `}, {`),
	}
}

// Apply runs rules in order.
func Apply(s string, rules []Rule) string {
	for _, r := range rules {
		s = r.Apply(s)
	}
	return s
}
