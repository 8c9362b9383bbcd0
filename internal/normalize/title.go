package normalize

import "strings"

// TitleRelevance scores how strongly a civil-service title suggests a
// principal-officer change, in [0,1]. A known title code wins outright;
// otherwise the title text is matched against the keyword tiers. Deputy-style
// medium phrases are checked before the high tier so that "deputy
// commissioner" does not inherit the weight of "commissioner". Unrecognized
// titles score a neutral 0.5.
func (n *Normalizer) TitleRelevance(code, text string) float64 {
	if code != "" {
		if w, ok := n.rules.TitleCodes[strings.TrimSpace(code)]; ok {
			return w
		}
	}

	t := strings.ToLower(text)
	if t == "" {
		return 0.5
	}

	for _, kw := range n.rules.TitleMediumKeywords {
		if strings.Contains(t, kw) {
			return 0.6
		}
	}
	for _, kw := range n.rules.TitleHighKeywords {
		if strings.Contains(t, kw) {
			return 1.0
		}
	}
	for _, kw := range n.rules.TitleLowKeywords {
		if strings.Contains(t, kw) {
			return 0.2
		}
	}
	return 0.5
}
