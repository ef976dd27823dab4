package gitlab

import (
	"net/http"
	"strings"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
)

// Link is one entry of an RFC 8288 Link header.
type Link struct {
	URL string
	Rel []string
}

// HasRel reports whether the link carries relation rel.
func (l Link) HasRel(rel string) bool {
	for _, candidate := range l.Rel {
		if strings.EqualFold(candidate, rel) {
			return true
		}
	}

	return false
}

// ParseLinkHeader parses a header of the form
// `<https://host/a?page=2>; rel="next", <https://host/a?page=9>; rel="last"`.
// Malformed entries are skipped.
func ParseLinkHeader(value string) []Link {
	var links []Link

	for _, entry := range splitLinkEntries(value) {
		entry = strings.TrimSpace(entry)
		if !strings.HasPrefix(entry, "<") {
			continue
		}

		end := strings.Index(entry, ">")
		if end < 0 {
			continue
		}

		link := Link{URL: entry[1:end]}

		for _, param := range strings.Split(entry[end+1:], ";") {
			name, val, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || !strings.EqualFold(strings.TrimSpace(name), "rel") {
				continue
			}

			val = strings.Trim(strings.TrimSpace(val), `"`)
			link.Rel = append(link.Rel, strings.Fields(val)...)
		}

		links = append(links, link)
	}

	return links
}

// splitLinkEntries splits on commas that are outside angle brackets.
func splitLinkEntries(value string) []string {
	var (
		entries []string
		depth   int
		start   int
	)

	for index, char := range value {
		switch char {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				entries = append(entries, value[start:index])
				start = index + 1
			}
		}
	}

	return append(entries, value[start:])
}

// NextLink returns the rel="next" URL from the Link (or Links) header.
func NextLink(header http.Header) (string, bool) {
	for _, name := range []string{constants.HeaderLink, constants.HeaderLinks} {
		for _, value := range header.Values(name) {
			for _, link := range ParseLinkHeader(value) {
				if link.HasRel("next") {
					return link.URL, true
				}
			}
		}
	}

	return "", false
}
