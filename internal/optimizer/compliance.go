package optimizer

import (
	"regexp"
	"strings"

	"github.com/thewell/content-studio/internal/types"
)

// Compliance rule IDs.
const (
	RuleGuaranteedReturn      = "guaranteed_return"
	RuleDirectiveAdvice       = "directive_advice"
	RuleUnattributedStatistic = "unattributed_statistic"
)

// ComplianceRule is one independent check over a piece of copy.
type ComplianceRule interface {
	ID() string
	Message() string
	// Match returns the offending excerpt and true when the rule is violated.
	Match(text string) (string, bool)
}

// Rule is a ComplianceRule built from a predicate.
type Rule struct {
	RuleID    string
	Text      string
	Severity  string
	Predicate func(text string) (string, bool)
}

// ID implements ComplianceRule.
func (r Rule) ID() string { return r.RuleID }

// Message implements ComplianceRule.
func (r Rule) Message() string { return r.Text }

// Match implements ComplianceRule.
func (r Rule) Match(text string) (string, bool) { return r.Predicate(text) }

var (
	guaranteedPhrases = []string{"guaranteed return", "risk-free", "guaranteed profit"}
	guaranteeClaim    = regexp.MustCompile(`(?i)\bguarantee[sd]?\b[^.!?\n]*\b(returns?|profits?|gains?)\b`)
	directivePhrases  = []string{"you should invest", "buy now", "sell immediately"}
	percentPattern    = regexp.MustCompile(`\d+(\.\d+)?%`)
)

// DefaultRules returns the built-in compliance rules.
func DefaultRules() []ComplianceRule {
	return []ComplianceRule{
		Rule{
			RuleID:   RuleGuaranteedReturn,
			Text:     "Guaranteed-return language: returns cannot be promised or described as risk-free",
			Severity: types.SeverityError,
			Predicate: func(text string) (string, bool) {
				if phrase, ok := containsAny(text, guaranteedPhrases); ok {
					return phrase, true
				}
				if m := guaranteeClaim.FindString(text); m != "" {
					return m, true
				}
				return "", false
			},
		},
		Rule{
			RuleID:   RuleDirectiveAdvice,
			Text:     "Directive investment advice without a \"not financial advice\" disclaimer",
			Severity: types.SeverityError,
			Predicate: func(text string) (string, bool) {
				phrase, ok := containsAny(text, directivePhrases)
				if !ok || strings.Contains(strings.ToLower(text), "not financial advice") {
					return "", false
				}
				return phrase, true
			},
		},
		Rule{
			RuleID:   RuleUnattributedStatistic,
			Text:     "Percentage statistic without attribution (add \"Source:\" or \"according to\")",
			Severity: types.SeverityWarning,
			Predicate: func(text string) (string, bool) {
				m := percentPattern.FindString(text)
				if m == "" {
					return "", false
				}
				if _, attributed := containsAny(text, []string{"source:", "according to"}); attributed {
					return "", false
				}
				return m, true
			},
		},
	}
}

// Scanner evaluates a fixed set of compliance rules.
type Scanner struct {
	rules []ComplianceRule
}

// NewScanner creates a scanner. With no rules it uses DefaultRules.
func NewScanner(rules ...ComplianceRule) *Scanner {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Scanner{rules: append([]ComplianceRule(nil), rules...)}
}

// Scan returns one message per violated rule, in rule order. An empty result
// means the text is compliant.
func (s *Scanner) Scan(text string) []string {
	messages := []string{}
	for _, rule := range s.rules {
		if _, ok := rule.Match(text); ok {
			messages = append(messages, rule.Message())
		}
	}
	return messages
}

// Findings returns structured violations for text.
func (s *Scanner) Findings(text string) []types.Violation {
	findings := []types.Violation{}
	for _, rule := range s.rules {
		excerpt, ok := rule.Match(text)
		if !ok {
			continue
		}
		severity := types.SeverityError
		if r, isRule := rule.(Rule); isRule && r.Severity != "" {
			severity = r.Severity
		}
		findings = append(findings, types.Violation{
			RuleID:   rule.ID(),
			Severity: severity,
			Details:  rule.Message(),
			Source:   types.SourceLocal,
			Excerpt:  excerpt,
		})
	}
	return findings
}

var defaultScanner = NewScanner()

// ScanCompliance checks text against the default rules.
func ScanCompliance(content string) []string {
	return defaultScanner.Scan(content)
}

// containsAny reports the first phrase found in text, case-insensitively.
func containsAny(text string, phrases []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}
