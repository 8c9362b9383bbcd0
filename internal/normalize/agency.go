package normalize

import (
	"strings"
)

// Normalizer applies the curated rules to agency and title strings.
type Normalizer struct {
	rules Rules
}

// New returns a Normalizer over the given rules.
func New(rules Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Rules exposes the dictionaries backing this normalizer.
func (n *Normalizer) Rules() Rules { return n.rules }

// Agency canonicalizes a raw agency string: lowercase, punctuation stripped,
// whitespace collapsed, then known abbreviations expanded token by token.
// The result is deterministic and idempotent.
func (n *Normalizer) Agency(raw string) string {
	s := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '&':
			b.WriteString(" and ")
		default:
			b.WriteByte(' ')
		}
	}

	parts := tokens(b.String())
	for i, t := range parts {
		if exp, ok := n.rules.AgencyAbbreviations[t]; ok {
			parts[i] = exp
		}
	}
	return strings.Join(parts, " ")
}

// AgencyTokens returns the normalized agency split into tokens with
// stopwords and common agency-noise words removed. Used for token-overlap
// comparison, where the generic words would otherwise dominate.
func (n *Normalizer) AgencyTokens(raw string) []string {
	stop := make(map[string]bool, len(n.rules.AgencyStopwords))
	for _, w := range n.rules.AgencyStopwords {
		stop[w] = true
	}

	var out []string
	for _, t := range tokens(n.Agency(raw)) {
		if !stop[t] {
			out = append(out, t)
		}
	}
	return out
}
