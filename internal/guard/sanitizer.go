package guard

import (
	"regexp"
	"strings"
)

// Sanitization neutralizes structural tokens that could forge role
// boundaries inside a single text block. It runs after detection, not
// instead of it: detection rejects outright, sanitization defangs
// whatever structural residue made it through.
var sanitizeRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Role name directly after a code-fence open
	{regexp.MustCompile("```\\s*(system|assistant|user)\\s*"), "``` "},
	// Special role-marker tokens
	{regexp.MustCompile(`<\|(system|assistant|user|im_start|im_end)\|>`), ""},
	// Bracketed system/instruction markers
	{regexp.MustCompile(`<<\s*(SYS|INST)\s*>>`), ""},
	// Closing instruction/system brackets
	{regexp.MustCompile(`\[/(INST|SYS)\]`), ""},
}

// Sanitize strips role-spoofing delimiter tokens and trims whitespace.
// Rules are re-applied until the text stops changing, so removing one
// token can never uncover another: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	s := text
	for {
		prev := s
		for _, r := range sanitizeRules {
			s = r.re.ReplaceAllString(s, r.repl)
		}
		if s == prev {
			break
		}
	}
	return strings.TrimSpace(s)
}
