package chat

import (
	"regexp"
	"strings"
)

// Verification evidence is parsed out of free-form model text, so this is
// a heuristic, not a protocol: when the agent phrases a successful
// verification unusually, the session simply stays unverified until a
// later turn evidences it. Extraction is strictly ordered: the looser
// patterns run only when the primary ones fail to match, never to find a
// "better" candidate.
var (
	// "Customer ID: <uuid>" with the label directly attached.
	reCustomerID = regexp.MustCompile(`[Cc]ustomer[_ ]?[Ii][Dd][:\s]*([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})`)

	// Fallback: a UUID in loose proximity of a verification-style word.
	reLooseID = regexp.MustCompile(`(?i)(?:verified|customer|id)[:\s]+.*?([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})`)

	// "verified, Jane Doe" / "Welcome Jane"
	reNameAfter = regexp.MustCompile(`(?:verified|welcome)[,:\s]+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

	// "Jane Doe has been verified"
	reNameBefore = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?:has been verified|is verified|verified)`)
)

// DeriveState inspects agent output for verification evidence and returns
// the resulting customer state. Once a session is verified the tracker
// never runs again and the input state is returned as-is. A name alone is
// not evidence; verification requires an extracted customer identifier.
func DeriveState(current CustomerState, agentOutput string) CustomerState {
	if current.Verified {
		return current
	}

	id := reCustomerID.FindStringSubmatch(agentOutput)
	if id == nil {
		id = reLooseID.FindStringSubmatch(agentOutput)
	}
	if id == nil {
		return current
	}

	name := "Customer"
	if m := reNameAfter.FindStringSubmatch(agentOutput); m != nil {
		name = strings.TrimSpace(m[1])
	} else if m := reNameBefore.FindStringSubmatch(agentOutput); m != nil {
		name = strings.TrimSpace(m[1])
	}

	return CustomerState{
		Verified:   true,
		CustomerID: id[1],
		Name:       name,
	}
}
