package anonymizer

import (
	"regexp"
	"strings"
)

// PatternRule replaces every non-overlapping match of a regular expression.
// When Group is set, only that capture group's span inside each match is
// rewritten and the rest of the match is left untouched.
type PatternRule struct {
	Name        string
	Replacement string
	Group       string

	matcher *regexp.Regexp
	// groupIndex is the resolved capture group, 0 for the whole match.
	groupIndex int
}

func (r *PatternRule) ruleName() string { return r.Name }

// apply rewrites all matches in one pass. The replacement template supports
// backreferences ($1, ${name}) into the capture groups of each match.
//
// Zero-width spans are skipped entirely: no replacement, no record. The
// regexp engine already advances past an empty match on its own, so a
// zero-width pattern cannot loop, it just produces nothing. The same applies
// to a scoped group that did not participate in its match.
func (r *PatternRule) apply(text string) (string, []MatchRecord) {
	matches := r.matcher.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	var records []MatchRecord
	last := 0
	for _, m := range matches {
		start, end := m[2*r.groupIndex], m[2*r.groupIndex+1]
		if start < 0 || start == end {
			continue
		}
		replacement := string(r.matcher.ExpandString(nil, r.Replacement, text, m))
		b.WriteString(text[last:start])
		b.WriteString(replacement)
		records = append(records, MatchRecord{
			Rule:        r.Name,
			Start:       start,
			End:         end,
			Matched:     text[start:end],
			Replacement: replacement,
		})
		last = end
	}
	if records == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), records
}
