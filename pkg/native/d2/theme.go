package d2

import (
	"strings"

	"oss.terrastruct.com/d2/d2target"

	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

// Overrides returns d2 theme overrides that paint each theme slot named in
// rw with its placeholder color. Tokens that name no slot are ignored.
// It returns nil when no slot is overridden.
func Overrides(rw *theme.Rewriter) *d2target.ThemeOverrides {
	if rw == nil || rw.Empty() {
		return nil
	}
	o := &d2target.ThemeOverrides{}
	set := false
	for _, token := range rw.Tokens() {
		slot := slotFor(o, token)
		if slot == nil {
			continue
		}
		ph, _ := rw.Placeholder(token)
		*slot = &ph
		set = true
	}
	if !set {
		return nil
	}
	return o
}

func slotFor(o *d2target.ThemeOverrides, token string) **string {
	switch strings.ToUpper(token) {
	case "N1":
		return &o.N1
	case "N2":
		return &o.N2
	case "N3":
		return &o.N3
	case "N4":
		return &o.N4
	case "N5":
		return &o.N5
	case "N6":
		return &o.N6
	case "N7":
		return &o.N7
	case "B1":
		return &o.B1
	case "B2":
		return &o.B2
	case "B3":
		return &o.B3
	case "B4":
		return &o.B4
	case "B5":
		return &o.B5
	case "B6":
		return &o.B6
	case "AA2":
		return &o.AA2
	case "AA4":
		return &o.AA4
	case "AA5":
		return &o.AA5
	case "AB4":
		return &o.AB4
	case "AB5":
		return &o.AB5
	default:
		return nil
	}
}
