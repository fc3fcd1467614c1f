package naming

import (
	"fmt"
	"sync"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Named Graph", "named_graph"},
		{"chapter", "chapter"},
		{"guide/Getting Started", "guide_getting_started"},
		{"  --weird__name--  ", "weird_name"},
		{"Ünïcode 2", "n_code_2"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		chapter string
		index   int
		label   string
		want    string
	}{
		{"chapter.md", 0, "", "chapter_0"},
		{"chapter.md", 1, "", "chapter_1"},
		{"chapter.md", 3, "Named Graph", "chapter_named_graph"},
		{"guide/setup.md", 0, "", "guide_setup_0"},
		{"", 2, "", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := BaseName(tt.chapter, tt.index, tt.label); got != tt.want {
				t.Errorf("BaseName(%q, %d, %q) = %q, want %q", tt.chapter, tt.index, tt.label, got, tt.want)
			}
		})
	}
}

func TestAllocateDisambiguates(t *testing.T) {
	table := NewTable()

	got := []string{
		table.Allocate("chapter.md", 0, "Graph"),
		table.Allocate("chapter.md", 1, "Graph"),
		table.Allocate("chapter.md", 2, "graph"),
		table.Allocate("chapter.md", 3, ""),
	}
	want := []string{"chapter_graph", "chapter_graph-2", "chapter_graph-3", "chapter_3"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Allocate #%d = %q, want %q", i, got[i], want[i])
		}
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
}

func TestReserve(t *testing.T) {
	table := NewTable()
	block := table.Allocate("a.md", 0, "")

	if got := table.Reserve(block); got != "a_0-2" {
		t.Errorf("Reserve(%q) = %q, want %q", block, got, "a_0-2")
	}
	if got := table.Reserve("a_0-layers_0"); got != "a_0-layers_0" {
		t.Errorf("Reserve() = %q, want %q", got, "a_0-layers_0")
	}
	if !table.Contains("a_0-layers_0") {
		t.Error("Contains() = false, want true")
	}
}

func TestAllocateStableAcrossTables(t *testing.T) {
	run := func() []string {
		table := NewTable()
		var names []string
		for _, ch := range []string{"a.md", "b.md", "a.md"} {
			for i := 0; i < 3; i++ {
				names = append(names, table.Allocate(ch, i, ""))
			}
		}
		return names
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("name #%d = %q then %q", i, first[i], second[i])
		}
	}
}

func TestReserveConcurrent(t *testing.T) {
	table := NewTable()
	const n = 64

	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = table.Reserve("same")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range results {
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
	}
	for i := 2; i <= n; i++ {
		if !seen[fmt.Sprintf("same-%d", i)] {
			t.Errorf("missing same-%d", i)
		}
	}
}
