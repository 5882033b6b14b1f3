// Package rules loads anonymization rule files into primitive rule records.
//
// A rule file is YAML with three sections, all optional, all ordered:
//
//	knowledge_base:
//	  customers:
//	    - name: "KFC España"
//	      aliases: ["KFC Spain"]
//	      replacement: "[CLIENTE]"
//	exact_replacements:
//	  - pattern: "A12345678"
//	    replacement: "[CIF-REDACTED]"
//	regex_replacements:        # "entities" is accepted as an alias
//	  - pattern: '[\w.-]+@[\w.-]+'
//	    replacement_value: "[EMAIL-REDACTED]"
//
// Knowledge-base customers expand to case-insensitive exact rules placed ahead
// of everything else, so a customer name wins over generic rules that could
// also touch it. Loading produces records only; compilation and validation of
// patterns happens in the anonymizer package.
package rules

import (
	"fmt"

	"github.com/spf13/viper"
)

// Rule type tags understood by the engine.
const (
	TypeExact = "exact"
	TypeRegex = "regex"
)

// DefaultCustomerReplacement is used for knowledge-base customers that do not
// name their own replacement.
const DefaultCustomerReplacement = "[CLIENTE]"

// Spec is one primitive rule record as read from the rule file. Pointer fields
// distinguish "absent" from "present but empty", which matters for
// replacements: an empty replacement deletes the match, a missing one is a
// rule-file mistake.
type Spec struct {
	Type          string  `mapstructure:"type"`
	Name          string  `mapstructure:"name"`
	Pattern       string  `mapstructure:"pattern"`
	Replacement   *string `mapstructure:"replacement"`
	Group         string  `mapstructure:"group"`
	CaseSensitive *bool   `mapstructure:"case_sensitive"`
}

type exactEntry struct {
	Name          string  `mapstructure:"name"`
	Pattern       string  `mapstructure:"pattern"`
	Replacement   *string `mapstructure:"replacement"`
	CaseSensitive *bool   `mapstructure:"case_sensitive"`
}

type regexEntry struct {
	Name             string  `mapstructure:"name"`
	Pattern          string  `mapstructure:"pattern"`
	Replacement      *string `mapstructure:"replacement"`
	ReplacementValue *string `mapstructure:"replacement_value"`
	Group            string  `mapstructure:"group"`
	CaseSensitive    *bool   `mapstructure:"case_sensitive"`
}

type customerEntry struct {
	Name        string   `mapstructure:"name"`
	Aliases     []string `mapstructure:"aliases"`
	Replacement string   `mapstructure:"replacement"`
}

// Load reads the rule file at path and returns its rule records in
// application order: knowledge-base customers first, then exact replacements,
// then regex replacements, each in source order.
//
// Load uses its own viper instance; rule files are reloaded fresh on every
// pipeline run and must never leak state into the process-wide configuration.
func Load(path string) ([]Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var specs []Spec

	var customers []customerEntry
	if err := v.UnmarshalKey("knowledge_base.customers", &customers); err != nil {
		return nil, fmt.Errorf("invalid knowledge_base section: %w", err)
	}
	for _, c := range customers {
		replacement := c.Replacement
		if replacement == "" {
			replacement = DefaultCustomerReplacement
		}
		names := append([]string{c.Name}, c.Aliases...)
		for _, candidate := range names {
			if candidate == "" {
				continue
			}
			r := replacement
			insensitive := false
			specs = append(specs, Spec{
				Type:          TypeExact,
				Name:          c.Name,
				Pattern:       candidate,
				Replacement:   &r,
				CaseSensitive: &insensitive,
			})
		}
	}

	var exacts []exactEntry
	if err := v.UnmarshalKey("exact_replacements", &exacts); err != nil {
		return nil, fmt.Errorf("invalid exact_replacements section: %w", err)
	}
	for _, e := range exacts {
		specs = append(specs, Spec{
			Type:          TypeExact,
			Name:          e.Name,
			Pattern:       e.Pattern,
			Replacement:   e.Replacement,
			CaseSensitive: e.CaseSensitive,
		})
	}

	regexes, err := loadRegexSection(v)
	if err != nil {
		return nil, err
	}
	for _, e := range regexes {
		replacement := e.Replacement
		if replacement == nil {
			replacement = e.ReplacementValue
		}
		specs = append(specs, Spec{
			Type:          TypeRegex,
			Name:          e.Name,
			Pattern:       e.Pattern,
			Replacement:   replacement,
			Group:         e.Group,
			CaseSensitive: e.CaseSensitive,
		})
	}

	return specs, nil
}

// loadRegexSection reads regex_replacements, falling back to the legacy
// "entities" section name when the primary one is absent.
func loadRegexSection(v *viper.Viper) ([]regexEntry, error) {
	var entries []regexEntry
	if err := v.UnmarshalKey("regex_replacements", &entries); err != nil {
		return nil, fmt.Errorf("invalid regex_replacements section: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}
	if err := v.UnmarshalKey("entities", &entries); err != nil {
		return nil, fmt.Errorf("invalid entities section: %w", err)
	}
	return entries, nil
}
