package team

import (
	"errors"
	"strings"
)

var (
	// ErrNoSelection means the query was empty after trimming. Callers treat
	// this as a status read rather than a failed pick.
	ErrNoSelection = errors.New("no team selected")
	// ErrUnknownTeam means no token of the query resolved to a known team.
	ErrUnknownTeam = errors.New("unknown team")
)

// noiseSubstrings are fragments of multi-word city names that carry no
// signal on their own. They are stripped as substrings, not as tokens, which
// is deliberately crude: "new england" becomes " england" and resolves by
// location, while "green bay" collapses to the "green" location key.
var noiseSubstrings = []string{"new", "bay", "los", "city", "san"}

// Resolve normalizes a free-text team reference into a canonical identifier.
// Matching is deterministic: tokens are scanned left to right and the first
// token that resolves wins. Per token the lookup priority is nickname,
// nickname alias, location, location alias, scoreboard abbreviation.
func Resolve(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrNoSelection
	}

	cleaned := strings.ToLower(query)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	for _, noise := range noiseSubstrings {
		cleaned = strings.ReplaceAll(cleaned, noise, "")
	}

	for _, token := range strings.Fields(cleaned) {
		if name, ok := resolveToken(token); ok {
			return name, nil
		}
	}

	return "", ErrUnknownTeam
}

func resolveToken(token string) (string, bool) {
	if _, ok := nicknames[token]; ok {
		return token, true
	}
	if name, ok := nicknameAliases[token]; ok {
		return name, true
	}
	if name, ok := locations[token]; ok {
		return name, true
	}
	if location, ok := locationAliases[token]; ok {
		return locations[location], true
	}
	if name, ok := abbreviations[token]; ok {
		return name, true
	}
	return "", false
}
