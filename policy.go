package vellum

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Rule represents a single access rule in the policy system.
// It contains a compiled regular expression and the type of matching to perform.
type Rule struct {
	Pattern   *regexp.Regexp // Compiled regular expression pattern
	MatchType string         // Type of matching: "host" or "path"
}

// Policy represents the inclusion/exclusion rules and default behavior for
// deciding which requests are open to anonymous visitors. Requests denied
// by the policy require an authenticated admin session.
type Policy struct {
	IncludeRules map[string]Rule // Map of inclusion rules, key format: "pattern|matchType"
	ExcludeRules map[string]Rule // Map of exclusion rules, key format: "pattern|matchType"
	DefaultAllow bool            // Default behavior for requests not matching any rule
}

// NewPolicy creates a new Policy with the specified default behavior.
func NewPolicy(defaultAllow bool) *Policy {
	return &Policy{
		IncludeRules: make(map[string]Rule),
		ExcludeRules: make(map[string]Rule),
		DefaultAllow: defaultAllow,
	}
}

// DefaultPolicy returns the policy used when none is configured: everything
// is open except paths under /admin.
func DefaultPolicy() *Policy {
	policy := NewPolicy(true)
	// the pattern is valid, AddRule cannot fail here
	policy.AddRule("-^/admin", "path", true)
	return policy
}

// MatchesString determines if a given string is allowed based on matchType
func (p *Policy) MatchesString(input string, matchType string) bool {
	matchType = strings.ToLower(matchType)

	// Validate matchType
	if matchType != "host" && matchType != "path" {
		return p.DefaultAllow
	}

	target := input

	// Check exclusion rules first
	for _, rule := range p.ExcludeRules {
		if rule.MatchType != matchType {
			continue
		}
		if rule.Pattern.MatchString(target) {
			return false // Denied by exclude rule
		}
	}

	// Check inclusion rules
	for _, rule := range p.IncludeRules {
		if rule.MatchType != matchType {
			continue
		}
		if rule.Pattern.MatchString(target) {
			return true // Allowed by include rule
		}
	}

	// Default behavior
	return p.DefaultAllow
}

// ClearRules clears all inclusion and exclusion rules from the policy
func (p *Policy) ClearRules() {
	p.IncludeRules = make(map[string]Rule)
	p.ExcludeRules = make(map[string]Rule)
}

// AddRule adds a rule to the policy. A leading "-" on the pattern is
// stripped before compiling.
func (p *Policy) AddRule(pattern, matchType string, exclude bool) error {
	matchType = strings.ToLower(matchType)
	if matchType != "host" && matchType != "path" {
		return fmt.Errorf("invalid match type: %s", matchType)
	}

	trimmedPattern := strings.TrimPrefix(pattern, "-")
	compiled, err := regexp.Compile(trimmedPattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	rule := Rule{
		Pattern:   compiled,
		MatchType: matchType,
	}
	key := fmt.Sprintf("%s|%s", compiled.String(), matchType)

	if exclude {
		if _, exists := p.ExcludeRules[key]; exists {
			return fmt.Errorf("rule already exists in exclude list")
		}
		p.ExcludeRules[key] = rule
	} else {
		if _, exists := p.IncludeRules[key]; exists {
			return fmt.Errorf("rule already exists in include list")
		}
		p.IncludeRules[key] = rule
	}

	return nil
}

// RemoveRule removes a rule from the policy
func (p *Policy) RemoveRule(pattern, matchType string, exclude bool) error {
	matchType = strings.ToLower(matchType)
	key := fmt.Sprintf("%s|%s", strings.TrimPrefix(pattern, "-"), matchType)

	if exclude {
		if _, exists := p.ExcludeRules[key]; !exists {
			return fmt.Errorf("rule not found in exclude list")
		}
		delete(p.ExcludeRules, key)
	} else {
		if _, exists := p.IncludeRules[key]; !exists {
			return fmt.Errorf("rule not found in include list")
		}
		delete(p.IncludeRules, key)
	}

	return nil
}

// Matches determines if a *http.Request is open to anonymous visitors
func (p *Policy) Matches(req *http.Request) bool {
	host := req.Host
	path := req.URL.Path

	// Check exclusion rules first
	for _, rule := range p.ExcludeRules {
		var target string
		switch rule.MatchType {
		case "host":
			target = host
		case "path":
			target = path
		default:
			continue // Skip unknown match types
		}
		if rule.Pattern.MatchString(target) {
			return false // Denied by exclude rule
		}
	}

	// Check inclusion rules
	for _, rule := range p.IncludeRules {
		var target string
		switch rule.MatchType {
		case "host":
			target = host
		case "path":
			target = path
		default:
			continue // Skip unknown match types
		}
		if rule.Pattern.MatchString(target) {
			return true // Allowed by include rule
		}
	}

	// Default behavior
	return p.DefaultAllow
}
