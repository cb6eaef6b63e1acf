package links

import (
	"crypto/rand"
	"strings"
)

const (
	aliasAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	randomAliasLength = 5
	maxSuggestedAlias = 10
)

// SanitizeAlias lower-cases the input and strips every character outside
// [a-z0-9-]. It is applied on every keystroke, not only at submit.
func SanitizeAlias(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RandomAlias generates a 5-character lowercase base36 token. No uniqueness
// check is performed against existing aliases; collisions are accepted.
func RandomAlias() (string, error) {
	buf := make([]byte, randomAliasLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, randomAliasLength)
	for i := range buf {
		out[i] = aliasAlphabet[int(buf[i])%len(aliasAlphabet)]
	}
	return string(out), nil
}

// ShortURL derives the simulated short link for a provider/alias pair.
func ShortURL(provider Provider, alias string) string {
	return "https://" + string(provider) + "/" + alias
}

// clipSuggestedAlias sanitizes an analyzer-produced alias and truncates it to
// the 10-character suggestion budget.
func clipSuggestedAlias(raw string) string {
	alias := SanitizeAlias(raw)
	if len(alias) > maxSuggestedAlias {
		alias = alias[:maxSuggestedAlias]
	}
	return alias
}
