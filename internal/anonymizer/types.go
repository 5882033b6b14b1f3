package anonymizer

// MatchRecord is one audit entry describing a performed substitution. Start
// and End are byte offsets into the working text as it was when the owning
// rule ran; after earlier rules have rewritten the text they no longer point
// into the original input.
type MatchRecord struct {
	Rule        string `json:"rule"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Matched     string `json:"matched"`
	Replacement string `json:"replacement"`
}

// rule is the closed set of rule variants. Exactly two implementations exist,
// ExactRule and PatternRule; new kinds are a deliberate schema change, not an
// extension point.
type rule interface {
	apply(text string) (string, []MatchRecord)
	ruleName() string
}

// RuleSet is an ordered, immutable sequence of compiled rules. Order is
// significant: earlier rules run first and their output is what later rules
// match against. A RuleSet is safe for concurrent use once compiled.
type RuleSet struct {
	rules []rule
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Names returns the rule names in application order.
func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.ruleName()
	}
	return names
}
