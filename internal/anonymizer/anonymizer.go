// Package anonymizer applies an ordered set of redaction rules to plain text.
//
// The engine is a pure fold: each rule runs once, in source order, against
// the output of the rules before it. That earlier rules may produce text a
// later rule also matches is intentional cascading; a rule file that maps
// "A"->"B" and then "B"->"C" turns "A" into "C". For the same reason,
// re-running the engine on its own output is not guaranteed to be a no-op.
// Given identical inputs the result is always identical.
package anonymizer

// Anonymize applies every rule of rs, in order, to text. It returns the
// redacted text and one MatchRecord per performed substitution in discovery
// order. It never fails: a compiled RuleSet is valid by construction, and a
// rule that matches nothing simply contributes nothing.
func Anonymize(text string, rs *RuleSet) (string, []MatchRecord) {
	if rs == nil || len(rs.rules) == 0 {
		return text, nil
	}

	records := make([]MatchRecord, 0)
	for _, r := range rs.rules {
		var recs []MatchRecord
		text, recs = r.apply(text)
		records = append(records, recs...)
	}
	return text, records
}
