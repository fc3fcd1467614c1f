package diagram

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// Tree is the shape of a board hierarchy. Engines that keep more than one
// representation of the same diagram (a laid-out tree and a semantic tree)
// expose both as a Tree so they can be checked with [Match].
type Tree interface {
	ChildCount(k Kind) int
	Child(k Kind, i int) Tree
}

// Match reports a STRUCTURAL_MISMATCH error if a and b disagree in the
// number of children of any kind at any board.
func Match(a, b Tree) error {
	return match(a, b, nil)
}

func match(a, b Tree, path []string) error {
	for _, k := range Kinds {
		na, nb := a.ChildCount(k), b.ChildCount(k)
		if na != nb {
			return errors.New(errors.ErrCodeStructuralMismatch,
				"%s count mismatch at %s: %d != %d", k, location(path), na, nb)
		}
		for i := 0; i < na; i++ {
			if err := match(a.Child(k, i), b.Child(k, i), append(path, fmt.Sprintf("%s[%d]", k, i))); err != nil {
				return err
			}
		}
	}
	return nil
}

func location(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, ".")
}
