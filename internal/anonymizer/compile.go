package anonymizer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/docveil/docveil/internal/rules"
)

// InvalidRuleError reports a rule record that cannot be compiled. It is fatal
// for the whole run: a broken rule file means no safe processing, so it is
// surfaced before any document is touched.
type InvalidRuleError struct {
	Index  int    // position in the loaded rule list
	Name   string // rule name, if the record had one
	Reason string
	Err    error
}

func (e *InvalidRuleError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index+1)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid rule %s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid rule %s: %s", name, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error { return e.Err }

// Compile validates rule records and builds an immutable RuleSet, preserving
// source order. Any malformed record fails the whole compilation.
func Compile(specs []rules.Spec) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]rule, 0, len(specs))}
	for i, spec := range specs {
		r, err := compileOne(i, spec)
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

func compileOne(index int, spec rules.Spec) (rule, error) {
	if spec.Pattern == "" {
		return nil, &InvalidRuleError{Index: index, Name: spec.Name, Reason: "pattern must not be empty"}
	}
	if spec.Replacement == nil {
		return nil, &InvalidRuleError{Index: index, Name: spec.Name, Reason: "replacement is required"}
	}

	caseSensitive := true
	if spec.CaseSensitive != nil {
		caseSensitive = *spec.CaseSensitive
	}

	switch spec.Type {
	case rules.TypeExact:
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("exact-%d", index+1)
		}
		r, err := newExactRule(name, spec.Pattern, *spec.Replacement, caseSensitive)
		if err != nil {
			return nil, &InvalidRuleError{Index: index, Name: spec.Name, Reason: "pattern does not compile", Err: err}
		}
		return r, nil

	case rules.TypeRegex:
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("regex-%d", index+1)
		}
		expr := spec.Pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		matcher, err := regexp.Compile(expr)
		if err != nil {
			return nil, &InvalidRuleError{Index: index, Name: spec.Name, Reason: "pattern does not compile", Err: err}
		}
		groupIndex, err := resolveGroup(matcher, spec.Group)
		if err != nil {
			return nil, &InvalidRuleError{Index: index, Name: spec.Name, Reason: err.Error()}
		}
		return &PatternRule{
			Name:        name,
			Replacement: *spec.Replacement,
			Group:       spec.Group,
			matcher:     matcher,
			groupIndex:  groupIndex,
		}, nil

	default:
		return nil, &InvalidRuleError{Index: index, Name: spec.Name,
			Reason: fmt.Sprintf("unrecognized rule type %q", spec.Type)}
	}
}

// resolveGroup maps a group reference (numeric index or capture group name)
// onto the pattern's capture groups. Empty means the whole match.
func resolveGroup(matcher *regexp.Regexp, group string) (int, error) {
	if group == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(group); err == nil {
		if n < 1 || n > matcher.NumSubexp() {
			return 0, fmt.Errorf("group %d out of range, pattern has %d groups", n, matcher.NumSubexp())
		}
		return n, nil
	}
	if n := matcher.SubexpIndex(group); n >= 1 {
		return n, nil
	}
	return 0, fmt.Errorf("pattern has no capture group named %q", group)
}
