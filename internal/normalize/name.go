package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name is a parsed person name plus the lowercase variants used for matching.
// A Name is built once by NewName and never mutated afterwards.
type Name struct {
	Raw      string
	First    string
	Middle   string
	Last     string
	Suffix   string
	Variants map[string]bool
}

var titleCaser = cases.Title(language.English)

var nameSuffixes = map[string]string{
	"jr":  "Jr.",
	"jr.": "Jr.",
	"sr":  "Sr.",
	"sr.": "Sr.",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
}

// NewName parses a raw person name into its parts and builds the variant set.
// Both the feed's "LAST,FIRST MIDDLE" convention and natural "First Middle
// Last" order are recognized; a comma selects the former. Blank input yields
// an all-empty Name. Malformed input degrades to a best-effort partial parse,
// never an error.
func NewName(raw string) Name {
	n := Name{Raw: raw, Variants: map[string]bool{}}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return n
	}

	var first, middle, last string
	if i := strings.Index(trimmed, ","); i >= 0 {
		// "LAST,FIRST MIDDLE" feed convention.
		last = strings.TrimSpace(trimmed[:i])
		rest := tokens(trimmed[i+1:])
		rest, n.Suffix = stripSuffix(rest)
		var lastParts []string
		lastParts, n.Suffix = stripSuffixParts(tokens(last), n.Suffix)
		last = strings.Join(lastParts, " ")
		if len(rest) > 0 {
			first = rest[0]
		}
		if len(rest) > 1 {
			middle = strings.Join(rest[1:], " ")
		}
	} else {
		parts := tokens(trimmed)
		parts, n.Suffix = stripSuffix(parts)
		switch len(parts) {
		case 0:
		case 1:
			last = parts[0]
		case 2:
			first, last = parts[0], parts[1]
		default:
			first = parts[0]
			last = parts[len(parts)-1]
			middle = strings.Join(parts[1:len(parts)-1], " ")
		}
	}

	n.First = titleCaser.String(strings.ToLower(first))
	n.Middle = titleCaser.String(strings.ToLower(middle))
	n.Last = titleCaser.String(strings.ToLower(last))
	n.buildVariants()
	return n
}

// Full returns the title-cased "First Middle Last" form without the suffix.
func (n Name) Full() string {
	return strings.Join(nonEmpty(n.First, n.Middle, n.Last), " ")
}

// buildVariants populates the lowercase match-variant set: full name,
// first+last, first-initial+last, last-comma-first, and
// first+middle-initial+last.
func (n *Name) buildVariants() {
	first := strings.ToLower(n.First)
	middle := strings.ToLower(strings.TrimRight(n.Middle, "."))
	last := strings.ToLower(n.Last)

	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			n.Variants[v] = true
		}
	}

	add(strings.ToLower(n.Full()))
	if first != "" && last != "" {
		add(first + " " + last)
		add(first[:1] + " " + last)
		add(last + ", " + first)
	}
	if first != "" && middle != "" && last != "" {
		add(first + " " + middle[:1] + " " + last)
	}
}

// NameSimilarity scores two raw names in [0,1]: 1.0 for identical normalized
// full names, 0.9 when any match variants intersect, otherwise Jaccard token
// overlap boosted by +0.3 (capped at 1.0) when the last names match exactly.
// An empty side always scores 0.
func NameSimilarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	na, nb := NewName(a), NewName(b)

	fullA := strings.ToLower(na.Full())
	fullB := strings.ToLower(nb.Full())
	if fullA != "" && fullA == fullB {
		return 1.0
	}

	for v := range na.Variants {
		if nb.Variants[v] {
			return 0.9
		}
	}

	sim := jaccard(tokens(fullA), tokens(fullB))
	if na.Last != "" && na.Last == nb.Last {
		sim += 0.3
	}
	if sim > 1.0 {
		sim = 1.0
	}
	return sim
}

// jaccard computes set overlap of two token slices.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func tokens(s string) []string {
	return strings.Fields(strings.TrimSpace(s))
}

// stripSuffix removes a trailing generational suffix token, if present.
func stripSuffix(parts []string) ([]string, string) {
	return stripSuffixParts(parts, "")
}

func stripSuffixParts(parts []string, current string) ([]string, string) {
	if len(parts) == 0 {
		return parts, current
	}
	if sfx, ok := nameSuffixes[strings.ToLower(parts[len(parts)-1])]; ok {
		return parts[:len(parts)-1], sfx
	}
	return parts, current
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
