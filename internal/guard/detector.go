// Package guard implements the defensive input layer for chat traffic:
// prompt-injection detection and delimiter sanitization.
//
// Detection is a first line of defense against common injection patterns.
// No pattern list is complete; the system prompt carries its own hardening
// and sanitization runs behind detection.
package guard

import "regexp"

// Rule is a single injection-detection rule. ID is only used for
// server-side logging; it is never returned to the caller.
type Rule struct {
	ID       string
	Category string
	re       *regexp.Regexp
}

// Detector applies a fixed, ordered rule set to untrusted text.
type Detector struct {
	rules []Rule
}

func rule(id, category, pattern string) Rule {
	return Rule{ID: id, Category: category, re: regexp.MustCompile(pattern)}
}

// NewDetector builds the default detector. Order only determines which
// rule ID gets reported; any match rejects.
func NewDetector() *Detector {
	return &Detector{rules: []Rule{
		// System prompt manipulation
		rule("ignore-previous", "system-prompt", `(?i)ignore\s+(all\s+)?(previous|above|prior)\s+(instructions?|prompts?|rules?)`),
		rule("disregard-previous", "system-prompt", `(?i)disregard\s+(all\s+)?(previous|above|prior)`),
		rule("forget-instructions", "system-prompt", `(?i)forget\s+(everything|all|your)\s+(above|previous|instructions?)`),
		rule("new-instructions", "system-prompt", `(?i)new\s+instructions?:`),
		rule("system-you-are", "system-prompt", `(?i)system\s*:\s*you\s+are`),
		rule("assistant-marker", "system-prompt", `(?i)assistant\s*:\s*`),
		rule("bracket-system", "system-prompt", `(?i)\[system\]`),
		rule("bracket-inst", "system-prompt", `(?i)\[inst\]`),
		rule("token-system", "system-prompt", `(?i)<\|system\|>`),
		rule("token-assistant", "system-prompt", `(?i)<\|assistant\|>`),
		rule("llama-sys", "system-prompt", `(?i)<<\s*SYS\s*>>`),

		// Role manipulation
		rule("pretend-to-be", "role-override", `(?i)pretend\s+(to\s+be|you'?re?\s+)`),
		rule("act-as", "role-override", `(?i)act\s+as\s+(if\s+you'?re?|a\s+different)`),
		rule("you-are-now", "role-override", `(?i)you\s+are\s+now\s+`),
		rule("switch-role", "role-override", `(?i)switch\s+(to\s+|your\s+)?(role|persona|character)`),
		rule("roleplay-as", "role-override", `(?i)roleplay\s+as`),

		// Instruction override / jailbreak
		rule("override-instructions", "jailbreak", `(?i)override\s+(your\s+)?(instructions?|programming|rules?)`),
		rule("bypass-restrictions", "jailbreak", `(?i)bypass\s+(your\s+)?(restrictions?|limitations?|filters?)`),
		rule("jailbreak", "jailbreak", `(?i)jailbreak`),
		rule("dan-mode", "jailbreak", `(?i)dan\s+mode`),
		rule("developer-mode", "jailbreak", `(?i)developer\s+mode`),

		// System prompt exfiltration
		rule("reveal-prompt", "exfiltration", `(?i)reveal\s+(your\s+)?(system\s+)?(prompt|instructions?)`),
		rule("show-prompt", "exfiltration", `(?i)show\s+(me\s+)?(your\s+)?(system\s+)?(prompt|instructions?)`),
		rule("what-instructions", "exfiltration", `(?i)what\s+(are\s+)?(your\s+)?(system\s+)?(instructions?|prompt)`),
		rule("print-prompt", "exfiltration", `(?i)print\s+(your\s+)?(system\s+)?(prompt|instructions?)`),
		rule("output-prompt", "exfiltration", `(?i)output\s+(your\s+)?(initial|system)\s+(prompt|instructions?)`),

		// Encoding / obfuscation
		rule("base64", "encoding", `(?i)base64\s*(decode|encode)`),
		rule("rot13", "encoding", `(?i)rot13`),
		rule("hex-encode", "encoding", `(?i)hex\s*(decode|encode)`),

		// Tool abuse
		rule("call-any-tool", "tool-abuse", `(?i)call\s+(any|all)\s+tools?`),
		rule("execute-code", "tool-abuse", `(?i)execute\s+(arbitrary|any)\s+(code|command)`),
	}}
}

// Detect reports whether text matches any injection rule. When it does,
// the ID of the first matching rule is returned for logging.
func (d *Detector) Detect(text string) (string, bool) {
	for _, r := range d.rules {
		if r.re.MatchString(text) {
			return r.ID, true
		}
	}
	return "", false
}
