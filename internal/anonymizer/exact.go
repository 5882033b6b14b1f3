package anonymizer

import (
	"regexp"
	"strings"
)

// ExactRule replaces every non-overlapping occurrence of a literal substring.
type ExactRule struct {
	Name          string
	Pattern       string
	Replacement   string
	CaseSensitive bool

	// matcher is the quoted literal, compiled with (?i) when the rule is
	// case-insensitive. Using the regexp engine for both modes keeps the
	// scan Unicode-correct: case folding can change byte lengths, so a
	// lowered-copy index scan would misplace spans.
	matcher *regexp.Regexp
}

func newExactRule(name, pattern, replacement string, caseSensitive bool) (*ExactRule, error) {
	expr := regexp.QuoteMeta(pattern)
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	matcher, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExactRule{
		Name:          name,
		Pattern:       pattern,
		Replacement:   replacement,
		CaseSensitive: caseSensitive,
		matcher:       matcher,
	}, nil
}

func (r *ExactRule) ruleName() string { return r.Name }

// apply replaces all occurrences in one left-to-right pass. A replacement
// consumes its matched span; scanning resumes after it, never inside it, so
// "aa"->"b" on "aaaa" yields "bb".
func (r *ExactRule) apply(text string) (string, []MatchRecord) {
	locs := r.matcher.FindAllStringIndex(text, -1)
	if locs == nil {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	records := make([]MatchRecord, 0, len(locs))
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		b.WriteString(r.Replacement)
		records = append(records, MatchRecord{
			Rule:        r.Name,
			Start:       loc[0],
			End:         loc[1],
			Matched:     text[loc[0]:loc[1]],
			Replacement: r.Replacement,
		})
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), records
}
