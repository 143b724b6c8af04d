package security

import (
	"fmt"
	"regexp"
	"sync"

	"taxitalk/internal/config"
)

// Sanitizer masks PII in user questions before they reach the model or the
// interaction store. Masking is one-way: answers are derived from warehouse
// rows, so the original values are never needed back.
type Sanitizer struct {
	mu      sync.Mutex
	filters []piiFilter
	counter map[string]int
	enabled bool
}

type piiFilter struct {
	name    string
	pattern *regexp.Regexp
	prefix  string
}

var defaultFilters = []struct {
	name    string
	pattern string
	prefix  string
}{
	{"email", `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "EMAIL"},
	{"phone", `\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`, "PHONE"},
	{"card", `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, "CARD"},
	{"ssn", `\b\d{3}-\d{2}-\d{4}\b`, "SSN"},
}

// NewSanitizer creates a PII sanitizer from config.
func NewSanitizer(cfg config.PIIFilterConfig) *Sanitizer {
	s := &Sanitizer{
		counter: make(map[string]int),
		enabled: cfg.Enabled,
	}

	enableMap := map[string]bool{
		"email": cfg.FilterEmails,
		"phone": cfg.FilterPhones,
		"card":  cfg.FilterCards,
		"ssn":   cfg.FilterSSN,
	}

	for _, f := range defaultFilters {
		if enableMap[f.name] {
			s.filters = append(s.filters, piiFilter{
				name:    f.name,
				pattern: regexp.MustCompile(f.pattern),
				prefix:  f.prefix,
			})
		}
	}

	return s
}

// Sanitize replaces PII in text with numbered placeholders.
func (s *Sanitizer) Sanitize(text string) string {
	if !s.enabled || len(s.filters) == 0 {
		return text
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := text
	for _, f := range s.filters {
		result = f.pattern.ReplaceAllStringFunc(result, func(string) string {
			s.counter[f.prefix]++
			return fmt.Sprintf("[%s_%d]", f.prefix, s.counter[f.prefix])
		})
	}
	return result
}

// Reset restarts placeholder numbering, e.g. when a conversation is cleared.
func (s *Sanitizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = make(map[string]int)
}
