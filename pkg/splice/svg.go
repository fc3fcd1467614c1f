package splice

import (
	"regexp"
	"strings"
)

var (
	xmlDeclRe   = regexp.MustCompile(`<\?xml[^>]*\?>`)
	doctypeRe   = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	betweenRe   = regexp.MustCompile(`>\s+<`)
	newlineRe   = regexp.MustCompile(`[ \t]*\r?\n[ \t\r\n]*`)
	idAttrRe    = regexp.MustCompile(`(\sid=")([^"]+)(")`)
	idRefRe     = regexp.MustCompile(`(url\(\s*['"]?#|href="#)([^"')\s]+)`)
)

// Inline prepares SVG markup for embedding in a markdown chapter. It drops
// the XML declaration and doctype, removes whitespace between tags, and
// turns every remaining line break into a single space so the markup is one
// line and cannot end the surrounding HTML block. It also prefixes
// every element id, and every url(#id) or href="#id" reference to it, with
// prefix so several inline SVGs can share one page.
func Inline(svg, prefix string) string {
	out := xmlDeclRe.ReplaceAllString(svg, "")
	out = doctypeRe.ReplaceAllString(out, "")
	out = betweenRe.ReplaceAllString(out, "><")
	out = strings.TrimSpace(out)
	out = newlineRe.ReplaceAllString(out, " ")
	if prefix == "" {
		return out
	}
	return PrefixIDs(out, prefix)
}

// PrefixIDs rewrites id="x" to id="prefix-x" and updates local references.
// References to ids not defined in svg are left unchanged.
func PrefixIDs(svg, prefix string) string {
	ids := make(map[string]struct{})
	for _, m := range idAttrRe.FindAllStringSubmatch(svg, -1) {
		ids[m[2]] = struct{}{}
	}
	if len(ids) == 0 {
		return svg
	}

	out := idAttrRe.ReplaceAllString(svg, "${1}"+prefix+"-${2}${3}")
	return idRefRe.ReplaceAllStringFunc(out, func(m string) string {
		g := idRefRe.FindStringSubmatch(m)
		if _, ok := ids[g[2]]; !ok {
			return m
		}
		return g[1] + prefix + "-" + g[2]
	})
}
