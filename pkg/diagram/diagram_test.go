package diagram

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

func multiView() *Result {
	return &Result{
		Name:    "",
		Title:   "Overview",
		Content: "<svg>root</svg>",
		Layers: []*Result{
			{Name: "api", Content: "<svg>api</svg>"},
			{Name: "db", Content: "<svg>db</svg>"},
		},
		Steps: []*Result{
			{Name: "1", Content: "<svg>step</svg>"},
		},
	}
}

func TestFlattenOrder(t *testing.T) {
	for run := 0; run < 3; run++ {
		views, err := Flatten(multiView())
		if err != nil {
			t.Fatalf("Flatten() error = %v", err)
		}

		var ids []string
		for _, v := range views {
			ids = append(ids, v.RelID)
		}
		want := []string{"", "layers_0", "layers_1", "steps_0"}
		if diff := cmp.Diff(want, ids); diff != "" {
			t.Fatalf("run %d: RelIDs mismatch (-want +got):\n%s", run, diff)
		}
	}
}

func TestFlattenPaths(t *testing.T) {
	views, err := Flatten(multiView())
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := []View{
		{RelID: "", Title: "Overview", Path: []string{"Overview"}, Content: "<svg>root</svg>"},
		{RelID: "layers_0", Title: "api", Path: []string{"Overview", "api"}, Content: "<svg>api</svg>"},
		{RelID: "layers_1", Title: "db", Path: []string{"Overview", "db"}, Content: "<svg>db</svg>"},
		{RelID: "steps_0", Title: "1", Path: []string{"Overview", "1"}, Content: "<svg>step</svg>"},
	}
	if diff := cmp.Diff(want, views); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenFolderOnly(t *testing.T) {
	r := &Result{
		Name:         "root",
		IsFolderOnly: true,
		Content:      "<svg>ignored</svg>",
		Scenarios: []*Result{
			{Name: "empty", Steps: []*Result{{Name: "s", Content: "<svg>s</svg>"}}},
			{Name: "b", Content: "<svg>b</svg>"},
		},
	}

	views, err := Flatten(r)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	got := make([]string, len(views))
	for i, v := range views {
		got[i] = v.RelID
	}
	want := []string{"scenarios_0_steps_0", "scenarios_1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RelIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"root", "empty", "s"}, views[0].Path); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenLeaf(t *testing.T) {
	views, err := Flatten(Leaf("Graph", "<svg/>"))
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(views) != 1 || views[0].Title != "Graph" || views[0].RelID != "" {
		t.Errorf("Flatten(Leaf) = %+v", views)
	}
}

func TestFlattenNil(t *testing.T) {
	if _, err := Flatten(nil); err == nil {
		t.Error("Flatten(nil) error = nil, want error")
	}
}

func TestMatch(t *testing.T) {
	same := multiView()
	short := multiView()
	short.Layers = short.Layers[:1]
	deep := multiView()
	deep.Layers[1].Steps = []*Result{{Content: "x"}}

	tests := []struct {
		name    string
		other   Tree
		wantErr bool
		wantMsg string
	}{
		{"identical shape", same, false, ""},
		{"fewer layers", short, true, "layers count mismatch at root: 2 != 1"},
		{"nested steps", deep, true, "steps count mismatch at layers[1]: 0 != 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Match(multiView(), tt.other)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Match() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, errors.ErrCodeStructuralMismatch) {
				t.Errorf("Match() code = %v, want %v", errors.GetCode(err), errors.ErrCodeStructuralMismatch)
			}
			if got := errors.UserMessage(err); got != tt.wantMsg {
				t.Errorf("Match() message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestFlattenParallelMismatch(t *testing.T) {
	other := multiView()
	other.Steps = nil

	if _, err := Flatten(multiView(), other); !errors.Is(err, errors.ErrCodeStructuralMismatch) {
		t.Errorf("Flatten() error = %v, want %v", err, errors.ErrCodeStructuralMismatch)
	}
}

func TestViewName(t *testing.T) {
	if got := ViewName("ch_0", ""); got != "ch_0" {
		t.Errorf("ViewName(root) = %q, want %q", got, "ch_0")
	}
	if got := ViewName("ch_0", "layers_1"); got != "ch_0_layers_1" {
		t.Errorf("ViewName() = %q, want %q", got, "ch_0_layers_1")
	}
}

func TestMatchNilChildren(t *testing.T) {
	a := &Result{Layers: []*Result{nil}}
	b := &Result{Layers: []*Result{{Name: "x"}}}
	if err := Match(a, b); err != nil {
		t.Errorf("Match() error = %v, want nil board to match an empty board", err)
	}

	c := &Result{Layers: []*Result{{Name: "x", Steps: []*Result{{}}}}}
	if err := Match(a, c); !errors.Is(err, errors.ErrCodeStructuralMismatch) {
		t.Errorf("Match() error = %v, want %v", err, errors.ErrCodeStructuralMismatch)
	}

	views, err := Flatten(&Result{Content: "<svg/>", Layers: []*Result{nil}}, b)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(views) != 1 {
		t.Errorf("Flatten() = %d views, want 1", len(views))
	}
}
