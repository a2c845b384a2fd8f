package catalog

import "testing"

func TestSources_KnownRegion(t *testing.T) {
	t.Parallel()

	sources := Sources("EU")
	if len(sources) == 0 {
		t.Fatal("expected EU sources")
	}
	if sources[0].Name != "ESMA" {
		t.Errorf("first EU source: got %q, want ESMA", sources[0].Name)
	}
	for _, s := range sources {
		if s.URL == "" {
			t.Errorf("source %q has empty URL", s.Name)
		}
	}
}

func TestSources_UnknownRegionFallsBackToUS(t *testing.T) {
	t.Parallel()

	got := Sources("Atlantis")
	want := Sources("US")
	if len(got) != len(want) {
		t.Fatalf("fallback length: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSources_OrderIsStable(t *testing.T) {
	t.Parallel()

	first := Sources("US")
	for i := 0; i < 10; i++ {
		again := Sources("US")
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("iteration %d entry %d changed: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestSources_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := Sources("US")
	a[0].Name = "mutated"
	b := Sources("US")
	if b[0].Name == "mutated" {
		t.Error("Sources must return an independent copy")
	}
}

func TestHasRegion(t *testing.T) {
	t.Parallel()

	for _, r := range Regions() {
		if !HasRegion(r) {
			t.Errorf("HasRegion(%q) = false", r)
		}
	}
	if HasRegion("Mars") {
		t.Error("HasRegion(Mars) should be false")
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	if got := FullName("SEC"); got != "U.S. Securities and Exchange Commission" {
		t.Errorf("FullName(SEC) = %q", got)
	}
	if got := FullName("Some Blog"); got != "Some Blog" {
		t.Errorf("unknown source should map to itself, got %q", got)
	}
}
