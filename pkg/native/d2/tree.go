package d2

import (
	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2target"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
)

// targetTree and graphTree expose the laid-out and the compiled board trees
// as diagram.Tree so their shapes can be matched.
type targetTree struct{ d *d2target.Diagram }

func (t targetTree) boards(k diagram.Kind) []*d2target.Diagram {
	switch k {
	case diagram.KindLayer:
		return t.d.Layers
	case diagram.KindScenario:
		return t.d.Scenarios
	case diagram.KindStep:
		return t.d.Steps
	}
	return nil
}

func (t targetTree) ChildCount(k diagram.Kind) int { return len(t.boards(k)) }

func (t targetTree) Child(k diagram.Kind, i int) diagram.Tree {
	return targetTree{t.boards(k)[i]}
}

type graphTree struct{ g *d2graph.Graph }

func (t graphTree) boards(k diagram.Kind) []*d2graph.Graph {
	switch k {
	case diagram.KindLayer:
		return t.g.Layers
	case diagram.KindScenario:
		return t.g.Scenarios
	case diagram.KindStep:
		return t.g.Steps
	}
	return nil
}

func (t graphTree) ChildCount(k diagram.Kind) int { return len(t.boards(k)) }

func (t graphTree) Child(k diagram.Kind, i int) diagram.Tree {
	return graphTree{t.boards(k)[i]}
}
