package keyword

import (
	"slices"
	"strings"
)

// Helper to check a single token against a list of tokens
func TokenInSet(tok string, set []string) bool {
	return slices.Contains(set, tok)
}

// Whether the token sequence contains the phrase as a contiguous run of whole tokens.
// The phrase is tokenized the same way as text.
func ContainsPhrase(tokens []string, phrase string) bool {
	want := TokenizeText(phrase)
	if len(want) == 0 {
		return false
	}
	// pad with spaces so that only whole tokens match
	return strings.Contains(" "+strings.Join(tokens, " ")+" ", " "+strings.Join(want, " ")+" ")
}
