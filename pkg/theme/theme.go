// Package theme defers diagram colors to the reader's book theme.
//
// Renderers are told to paint with placeholder colors (for example d2 theme
// overrides or graphviz -N/-E attributes). After rendering, [Rewriter]
// replaces each placeholder with a CSS reference such as var(--fg), so one
// build renders correctly under every theme the reader can switch to.
//
// Only color emission points are rewritten: the SVG color presentation
// attributes and the same properties inside CSS declarations (style
// attributes and <style> elements), plus --color-* custom properties. A label that happens to contain a
// placeholder literal is left alone.
package theme

import (
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// Token configures one logical color.
type Token struct {
	// Placeholder is the literal the renderer emits, e.g. "#0A0F25".
	Placeholder string `json:"placeholder" toml:"placeholder"`
	// Reference replaces the placeholder. Defaults to "var(--<token>)".
	Reference string `json:"reference,omitempty" toml:"reference,omitempty"`
}

// Mapping maps token names to their configuration.
type Mapping map[string]Token

// colorProps are the properties whose values may carry a placeholder.
// Stylesheets may also set custom properties named --color-*, which d2 uses
// for markdown labels.
const colorProps = `fill|stroke|color|background-color|stop-color|flood-color|lighting-color`

var (
	attrRe      = regexp.MustCompile(`(?i)(\s)(` + colorProps + `)(\s*=\s*)("[^"]*"|'[^']*')`)
	styleAttrRe = regexp.MustCompile(`(?i)(\s)(style)(\s*=\s*)("[^"]*"|'[^']*')`)
	styleElemRe = regexp.MustCompile(`(?is)(<style[^>]*>)(.*?)(</style>)`)
	declRe      = regexp.MustCompile(`(?i)(^|[\s;{])(` + colorProps + `|--color-[a-z0-9-]+)(\s*:\s*)([^;}"']*)`)
)

type rule struct {
	token     string
	match     *regexp.Regexp
	reference string
}

// Rewriter replaces placeholders at color emission points.
// A zero or empty Rewriter leaves content unchanged.
type Rewriter struct {
	rules []rule
	byTok map[string]Token
}

// New validates m and builds a Rewriter. Tokens are applied in name order.
func New(m Mapping) (*Rewriter, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &Rewriter{byTok: make(map[string]Token, len(m))}
	seen := make(map[string]string, len(m))
	for _, name := range names {
		tok := m[name]
		if strings.TrimSpace(name) == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "theme: empty token name")
		}
		if tok.Placeholder == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "theme: token %q has no placeholder", name)
		}
		key := strings.ToLower(tok.Placeholder)
		if other, dup := seen[key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"theme: tokens %q and %q share placeholder %q", other, name, tok.Placeholder)
		}
		seen[key] = name
		if tok.Reference == "" {
			tok.Reference = "var(--" + name + ")"
		}
		r.byTok[name] = tok
		r.rules = append(r.rules, rule{
			token:     name,
			match:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(tok.Placeholder)),
			reference: tok.Reference,
		})
	}
	return r, nil
}

// Empty reports whether the rewriter has no tokens.
func (r *Rewriter) Empty() bool {
	return r == nil || len(r.rules) == 0
}

// Placeholder returns the placeholder configured for token.
func (r *Rewriter) Placeholder(token string) (string, bool) {
	if r == nil {
		return "", false
	}
	tok, ok := r.byTok[token]
	return tok.Placeholder, ok
}

// Tokens returns the configured token names in order.
func (r *Rewriter) Tokens() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.rules))
	for i, rl := range r.rules {
		out[i] = rl.token
	}
	return out
}

// Rewrite returns content with every placeholder at a color emission point
// replaced by its reference.
func (r *Rewriter) Rewrite(content string) string {
	if r.Empty() {
		return content
	}
	content = styleElemRe.ReplaceAllStringFunc(content, func(m string) string {
		g := styleElemRe.FindStringSubmatch(m)
		return g[1] + r.declarations(g[2]) + g[3]
	})
	content = styleAttrRe.ReplaceAllStringFunc(content, func(m string) string {
		g := styleAttrRe.FindStringSubmatch(m)
		quote, body := g[4][:1], g[4][1:len(g[4])-1]
		return g[1] + g[2] + g[3] + quote + r.declarations(body) + quote
	})
	return attrRe.ReplaceAllStringFunc(content, func(m string) string {
		g := attrRe.FindStringSubmatch(m)
		quote, body := g[4][:1], g[4][1:len(g[4])-1]
		return g[1] + g[2] + g[3] + quote + r.value(body) + quote
	})
}

func (r *Rewriter) declarations(css string) string {
	return declRe.ReplaceAllStringFunc(css, func(m string) string {
		g := declRe.FindStringSubmatch(m)
		return g[1] + g[2] + g[3] + r.value(g[4])
	})
}

// value replaces whole placeholder tokens in v. A placeholder that is only
// the prefix of a longer color, such as #000 in #0000ff, is not a match.
func (r *Rewriter) value(v string) string {
	for _, rl := range r.rules {
		locs := rl.match.FindAllStringIndex(v, -1)
		if locs == nil {
			continue
		}
		var b strings.Builder
		last := 0
		for _, loc := range locs {
			if !boundary(v, loc[0]-1) || !boundary(v, loc[1]) {
				continue
			}
			b.WriteString(v[last:loc[0]])
			b.WriteString(rl.reference)
			last = loc[1]
		}
		b.WriteString(v[last:])
		v = b.String()
	}
	return v
}

// boundary reports whether v[i] cannot continue a color token.
func boundary(v string, i int) bool {
	if i < 0 || i >= len(v) {
		return true
	}
	c := v[i]
	return !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '-' || c == '#')
}
