// Package diagram models rendered diagrams and flattens them into views.
//
// Some engines render one source into a tree of boards: alternative
// abstraction levels (layers), alternative variants (scenarios) and
// sequential states (steps). A [Result] holds that tree. [Flatten] turns it
// into the ordered list of [View] values the splicer embeds, one per board
// with content.
//
// Traversal is depth-first pre-order and children are always visited in the
// order layers, scenarios, steps, so a given source flattens identically on
// every run.
package diagram

import "strconv"

// Kind identifies one of the three child lists of a board.
type Kind int

const (
	KindLayer Kind = iota
	KindScenario
	KindStep
)

// Kinds lists the child kinds in traversal order.
var Kinds = [...]Kind{KindLayer, KindScenario, KindStep}

// String returns the plural field name used in relative ids and payloads.
func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layers"
	case KindScenario:
		return "scenarios"
	case KindStep:
		return "steps"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Result is one rendered board and its children.
type Result struct {
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	IsFolderOnly bool      `json:"isFolderOnly"`
	Content      string    `json:"content"`
	Layers       []*Result `json:"layers"`
	Scenarios    []*Result `json:"scenarios"`
	Steps        []*Result `json:"steps"`
}

// Leaf returns a childless result, as produced by single-view renderers.
func Leaf(title, content string) *Result {
	return &Result{Title: title, Content: content}
}

// Children returns the child list of kind k. A nil result has no children.
func (r *Result) Children(k Kind) []*Result {
	if r == nil {
		return nil
	}
	switch k {
	case KindLayer:
		return r.Layers
	case KindScenario:
		return r.Scenarios
	case KindStep:
		return r.Steps
	}
	return nil
}

// ChildCount implements [Tree].
func (r *Result) ChildCount(k Kind) int { return len(r.Children(k)) }

// Child implements [Tree].
func (r *Result) Child(k Kind, i int) Tree { return r.Children(k)[i] }

// DisplayTitle returns the title shown for the board: its title, then its
// name, then "index".
func (r *Result) DisplayTitle() string {
	switch {
	case r.Title != "":
		return r.Title
	case r.Name != "":
		return r.Name
	default:
		return "index"
	}
}
