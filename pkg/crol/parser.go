package crol

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Notice container markup varies across board revisions; containers are
// located by their CSS class prefix and the content is matched as text.
var (
	containerRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*notice-result[^"]*"[^>]*>`)

	headerRe = regexp.MustCompile(`(?i)CHANGES IN PERSONNEL\s*-\s*(\d{1,2}/\d{1,2}/\d{4})\s+FOR\s+(.+?)\s+from\s+(.+?)\s+` +
		`(APPOINTED|PROMOTED|REINSTATED|DESIGNATED|RESIGNED|RETIRED|TERMINATED|DECEASED)\s*(\d{1,2}/\d{1,2}/\d{4})?`)

	// Matched against the raw chunk so the next tag bounds the capture; a
	// closing tag between the label and the value is tolerated.
	titleRe = regexp.MustCompile(`(?i)Employee Title:\s*(?:</[^>]+>\s*)*([^\n<]+)`)

	hrefRe = regexp.MustCompile(`(?i)<a[^>]+href="([^"]+)"`)

	displayRe = regexp.MustCompile(`(?i)Displaying\s+(\d+)\s*[-–]\s*(\d+)\s+of\s+(\d+)`)

	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spacesRe = regexp.MustCompile(`\s+`)
)

// ParseNotices extracts every parseable notice from a result page. A
// malformed container is skipped; it never fails the rest of the page.
func ParseNotices(html string) []Notice {
	var notices []Notice
	for _, chunk := range splitContainers(html) {
		n, ok := parseContainer(chunk)
		if !ok {
			continue
		}
		notices = append(notices, n)
	}
	return notices
}

// DisplayRange reports the "Displaying X-Y of Z" pagination marker when
// present. The client stops paging once Y reaches Z.
func DisplayRange(html string) (from, to, total int, ok bool) {
	m := displayRe.FindStringSubmatch(html)
	if m == nil {
		return 0, 0, 0, false
	}
	from, _ = strconv.Atoi(m[1])
	to, _ = strconv.Atoi(m[2])
	total, _ = strconv.Atoi(m[3])
	return from, to, total, true
}

// splitContainers cuts the page at each notice container opening tag. The
// leading chunk before the first container is dropped.
func splitContainers(html string) []string {
	locs := containerRe.FindAllStringIndex(html, -1)
	if len(locs) == 0 {
		return nil
	}
	var chunks []string
	for i, loc := range locs {
		end := len(html)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunks = append(chunks, html[loc[0]:end])
	}
	return chunks
}

func parseContainer(chunk string) (Notice, bool) {
	text := flattenText(chunk)

	m := headerRe.FindStringSubmatch(text)
	if m == nil {
		return Notice{}, false
	}

	n := Notice{
		EmployeeName: strings.TrimSpace(m[2]),
		AgencyName:   strings.TrimSpace(m[3]),
		Action:       strings.ToUpper(m[4]),
	}
	if t, err := time.Parse("1/2/2006", m[1]); err == nil {
		n.NoticeDate = &t
	}
	if m[5] != "" {
		if t, err := time.Parse("1/2/2006", m[5]); err == nil {
			n.EffectiveDate = &t
		}
	}

	if tm := titleRe.FindStringSubmatch(chunk); tm != nil {
		n.Title = flattenText(tm[1])
	}
	if hm := hrefRe.FindStringSubmatch(chunk); hm != nil {
		n.DetailURL = strings.TrimSpace(hm[1])
	}
	return n, true
}

// flattenText strips tags and collapses whitespace so the header pattern can
// match across markup line breaks.
func flattenText(chunk string) string {
	text := tagRe.ReplaceAllString(chunk, " ")
	text = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(text)
	return strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
}
