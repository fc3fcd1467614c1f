package diagram

import (
	"strconv"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// View is one renderable board of a flattened diagram.
type View struct {
	Name    string   // unique name, assigned after flattening
	RelID   string   // "" for the root, then e.g. "layers_0_steps_1"
	Title   string   // board title
	Path    []string // titles from the root down to this board
	Content string
}

// Flatten walks r in pre-order, layers before scenarios before steps, and
// returns a view for every board with content. Folder-only and empty boards
// contribute their children only. Each tree in parallel must match r in
// shape or Flatten fails with STRUCTURAL_MISMATCH.
func Flatten(r *Result, parallel ...Tree) ([]View, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInternal, "flatten: nil result")
	}
	for _, p := range parallel {
		if err := Match(r, p); err != nil {
			return nil, err
		}
	}

	var views []View
	var walk func(n *Result, relID string, path []string)
	walk = func(n *Result, relID string, path []string) {
		path = append(path[:len(path):len(path)], n.DisplayTitle())
		if !n.IsFolderOnly && n.Content != "" {
			views = append(views, View{
				RelID:   relID,
				Title:   n.DisplayTitle(),
				Path:    path,
				Content: n.Content,
			})
		}
		for _, k := range Kinds {
			for i, c := range n.Children(k) {
				if c == nil {
					continue
				}
				walk(c, childID(relID, k, i), path)
			}
		}
	}
	walk(r, "", nil)
	return views, nil
}

func childID(parent string, k Kind, i int) string {
	id := k.String() + "_" + strconv.Itoa(i)
	if parent == "" {
		return id
	}
	return parent + "_" + id
}

// ViewName derives the name of a view from its block name. The root view
// shares the block name.
func ViewName(block, relID string) string {
	if relID == "" {
		return block
	}
	return block + "_" + relID
}
