// Package parser extracts wikilinks and inline tags from note content.
package parser

import (
	"regexp"
	"strings"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Links returns deduplicated wikilink targets from content, normalising
// [[Target|Alias]] to Target.
func Links(content string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// Tags returns deduplicated inline #tags from content.
func Tags(content string) []string {
	matches := tagRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		t := m[1]
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
