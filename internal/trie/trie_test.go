package trie

import (
	"testing"
)

type rec struct {
	ID    int64
	Title string
}

func newTestTrie() *Trie[rec] {
	return New(func(r rec) int64 { return r.ID })
}

func ids(records []rec) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestInsertSearchRoundTrip(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Budget 2024", rec{ID: 1, Title: "Budget 2024"})

	tests := []struct {
		name   string
		prefix string
		want   int
	}{
		{"full title", "Budget 2024", 1},
		{"partial prefix", "Bud", 1},
		{"single char", "b", 1},
		{"different case", "BUDGET", 1},
		{"no match", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Search(tt.prefix, 10)
			if len(got) != tt.want {
				t.Errorf("Search(%q, 10) returned %d records, want %d", tt.prefix, len(got), tt.want)
			}
		})
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Hello World", rec{ID: 1, Title: "Hello World"})

	got := tr.Search("HELLO", 10)
	if len(got) != 1 {
		t.Fatalf("Search(\"HELLO\", 10) returned %d records, want 1", len(got))
	}
	if got[0].Title != "Hello World" {
		t.Errorf("stored payload lost original casing: got %q", got[0].Title)
	}
}

func TestSearchLimit(t *testing.T) {
	tr := newTestTrie()
	for i := int64(1); i <= 20; i++ {
		title := "poll " + string(rune('a'+i-1))
		tr.Insert(title, rec{ID: i, Title: title})
	}

	if got := tr.Search("poll", 5); len(got) != 5 {
		t.Errorf("Search(\"poll\", 5) returned %d records, want exactly 5", len(got))
	}
	if got := tr.Search("poll", 100); len(got) != 20 {
		t.Errorf("Search(\"poll\", 100) returned %d records, want all 20", len(got))
	}
}

func TestSearchNonPositiveLimit(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("abc", rec{ID: 1})

	if got := tr.Search("a", 0); len(got) != 0 {
		t.Errorf("Search with limit 0 returned %d records, want 0", len(got))
	}
	if got := tr.Search("a", -3); len(got) != 0 {
		t.Errorf("Search with negative limit returned %d records, want 0", len(got))
	}
}

func TestSearchShallowerFirst(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("polling station", rec{ID: 3})
	tr.Insert("poll", rec{ID: 1})
	tr.Insert("polls", rec{ID: 2})

	got := tr.Search("poll", 10)
	want := []int64{1, 2, 3}
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("Search(\"poll\", 10) returned %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Errorf("result order %v, want shallower records first: %v", gotIDs, want)
			break
		}
	}
}

func TestSearchInsertionOrderWithinNode(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("same title", rec{ID: 7})
	tr.Insert("same title", rec{ID: 3})
	tr.Insert("same title", rec{ID: 5})

	got := ids(tr.Search("same", 10))
	want := []int64{7, 3, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("within-node order = %v, want insertion order %v", got, want)
		}
	}
}

func TestInsertIdempotentForSameID(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Budget", rec{ID: 1, Title: "Budget"})
	tr.Insert("Budget", rec{ID: 1, Title: "Budget (updated)"})

	got := tr.Search("Budget", 10)
	if len(got) != 1 {
		t.Fatalf("re-inserting same id created duplicates: got %d records", len(got))
	}
	if got[0].Title != "Budget (updated)" {
		t.Errorf("payload not overwritten: got %q", got[0].Title)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestInsertEmptyTitleAtRoot(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("", rec{ID: 1})
	tr.Insert("abc", rec{ID: 2})

	got := ids(tr.Search("", 10))
	if len(got) != 2 || got[0] != 1 {
		t.Errorf("empty prefix search = %v, want root record first then subtree", got)
	}
}

func TestRemoveThenSearch(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Budget 2024", rec{ID: 1})
	tr.Remove("Budget 2024", 1)

	if got := tr.Search("Budget", 10); len(got) != 0 {
		t.Errorf("Search after remove returned %d records, want 0", len(got))
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d after removal, want 0", tr.Len())
	}
}

func TestRemoveIsNoOpOnAbsentPath(t *testing.T) {
	tr := newTestTrie()
	tr.Remove("Never Inserted", 1)

	tr.Insert("Budget", rec{ID: 1})
	tr.Remove("Budget 2024", 1) // longer path does not exist
	tr.Remove("budget", 99)     // path exists, id does not

	if got := tr.Search("Budget", 10); len(got) != 1 {
		t.Errorf("trie damaged by no-op removals: Search returned %d records, want 1", len(got))
	}
}

func TestRemoveOnlyTargetID(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Shared Title", rec{ID: 1})
	tr.Insert("shared title", rec{ID: 2})

	tr.Remove("Shared Title", 1)

	got := ids(tr.Search("shared", 10))
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Remove deleted more than the given id: remaining %v, want [2]", got)
	}
}

func TestRenameConsistency(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("Old Title", rec{ID: 1, Title: "Old Title"})
	tr.Remove("Old Title", 1)
	tr.Insert("New Title", rec{ID: 1, Title: "New Title"})

	if got := tr.Search("Old", 10); len(got) != 0 {
		t.Errorf("Search(\"Old\") after rename returned %d records, want 0", len(got))
	}
	got := tr.Search("New", 10)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Search(\"New\") after rename = %v, want the renamed record", ids(got))
	}
}

func TestRemovePrunesDeadBranches(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("abc", rec{ID: 1})
	tr.Insert("abde", rec{ID: 2})
	tr.Remove("abde", 2)

	// Pruning must not change observable behavior for surviving records.
	if got := tr.Search("ab", 10); len(got) != 1 {
		t.Fatalf("Search(\"ab\") after pruning sibling = %d records, want 1", len(got))
	}
	if got := tr.Search("abd", 10); len(got) != 0 {
		t.Errorf("pruned branch still matches: got %d records", len(got))
	}
	if len(tr.root.children['a'].children['b'].children) != 1 {
		t.Errorf("dead branch not pruned")
	}
}

func TestNonAlphanumericTitles(t *testing.T) {
	tr := newTestTrie()
	tr.Insert("¿Cuál es tu color favorito? 🎨", rec{ID: 1})

	if got := tr.Search("¿cuál", 10); len(got) != 1 {
		t.Errorf("non-alphanumeric title not searchable: got %d records, want 1", len(got))
	}
}
