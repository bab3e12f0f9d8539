package sanitize

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*
var defaultsFS embed.FS

// maxPasses bounds how often the rule table is applied to one text.
const maxPasses = 8

// ErrNoConvergence is returned for rule tables that keep changing a text.
var ErrNoConvergence = errors.New("replacement rules do not converge")

// Rule is one replacement, either literal or a regular expression.
type Rule struct {
	Pattern string
	Replace string
	Regexp  bool

	re *regexp.Regexp
}

// String returns the rule as shown in reports.
func (r Rule) String() string {
	if r.Regexp {
		return fmt.Sprintf("regexp %q -> %q", r.Pattern, r.Replace)
	}
	return fmt.Sprintf("%q -> %q", r.Pattern, r.Replace)
}

func (r Rule) apply(s string) string {
	if r.re != nil {
		return r.re.ReplaceAllString(s, r.Replace)
	}
	return strings.ReplaceAll(s, r.Pattern, r.Replace)
}

func (r Rule) matches(s string) bool {
	if r.re != nil {
		return r.re.MatchString(s)
	}
	return strings.Contains(s, r.Pattern)
}

// Rules is an ordered, immutable replacement table.
type Rules struct {
	rules []Rule
}

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Match   string `yaml:"match"`
	Regexp  string `yaml:"regexp"`
	Replace string `yaml:"replace"`
}

// DefaultRules returns the built-in replacement table.
func DefaultRules() (*Rules, error) {
	data, err := defaultsFS.ReadFile("defaults/replacements.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default rules: %w", err)
	}
	return ParseRules(data)
}

// LoadRules reads a replacement table from a YAML file. An empty path
// selects the built-in table.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules parses a YAML replacement table and checks that it converges.
func ParseRules(data []byte) (*Rules, error) {
	var file ruleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		switch {
		case spec.Match != "" && spec.Regexp != "":
			return nil, fmt.Errorf("rule %d: both match and regexp set", i)
		case spec.Match != "":
			rules = append(rules, Rule{Pattern: spec.Match, Replace: spec.Replace})
		case spec.Regexp != "":
			re, err := regexp.Compile(spec.Regexp)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			rules = append(rules, Rule{Pattern: spec.Regexp, Replace: spec.Replace, Regexp: true, re: re})
		default:
			return nil, fmt.Errorf("rule %d: neither match nor regexp set", i)
		}
	}

	r := &Rules{rules: rules}
	if err := r.checkConvergence(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRules builds a table from rules, compiling regular expressions.
func NewRules(rules []Rule) (*Rules, error) {
	out := make([]Rule, len(rules))
	for i, rule := range rules {
		if rule.Regexp {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			rule.re = re
		}
		out[i] = rule
	}
	r := &Rules{rules: out}
	if err := r.checkConvergence(); err != nil {
		return nil, err
	}
	return r, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int { return len(r.rules) }

// Rule returns the i-th rule.
func (r *Rules) Rule(i int) Rule { return r.rules[i] }

// Apply runs the table over s until no rule changes it.
func (r *Rules) Apply(s string) string {
	out, _ := r.apply(s, nil)
	return out
}

// apply runs passes until a fixed point. hit is called for every rule that
// matched. The bool result is false if maxPasses was reached.
func (r *Rules) apply(s string, hit func(i int)) (string, bool) {
	for range maxPasses {
		changed := false
		for i, rule := range r.rules {
			if !rule.matches(s) {
				continue
			}
			if hit != nil {
				hit(i)
			}
			if next := rule.apply(s); next != s {
				s = next
				changed = true
			}
		}
		if !changed {
			return s, true
		}
	}
	return s, false
}

var groupRef = regexp.MustCompile(`\$\{?\w+\}?`)

// checkConvergence runs the table over every rule's own pattern and
// replacement text. A rule whose output keeps being rewritten makes the
// table unusable.
func (r *Rules) checkConvergence() error {
	for i, rule := range r.rules {
		samples := []string{groupRef.ReplaceAllString(rule.Replace, "0")}
		if !rule.Regexp {
			samples = append(samples, rule.Pattern)
		}
		for _, p := range samples {
			if _, ok := r.apply(p, nil); !ok {
				return fmt.Errorf("rule %d (%s): %w", i, rule, ErrNoConvergence)
			}
		}
	}
	return nil
}
