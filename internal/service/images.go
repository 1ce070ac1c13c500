package service

import (
	"regexp"
	"sort"
	"strings"
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	htmlImagePattern     = regexp.MustCompile(`(?i)<img\s[^>]*?src\s*=\s*["']([^"']+)["']`)
)

// ExtractImageURLs returns the image urls referenced in content, in order of
// first appearance, without duplicates.
func ExtractImageURLs(content string) []string {
	type match struct {
		pos int
		url string
	}
	var found []match
	for _, re := range []*regexp.Regexp{markdownImagePattern, htmlImagePattern} {
		for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
			found = append(found, match{pos: idx[0], url: content[idx[2]:idx[3]]})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	seen := make(map[string]struct{}, len(found))
	urls := make([]string, 0, len(found))
	for _, m := range found {
		u := strings.TrimSpace(m.url)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
