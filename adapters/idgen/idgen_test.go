package idgen_test

import (
	"regexp"
	"sync"
	"testing"

	"github.com/artpar/fieldmap/adapters/idgen"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	id := g.New()
	if id == "" {
		t.Fatal("expected non-empty ID")
	}

	// UUID v4 format: 8-4-4-4-12 hex chars
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !uuidRegex.MatchString(id) {
		t.Errorf("ID %s doesn't match UUID v4 format", id)
	}
}

func TestUUID_New_Unique(t *testing.T) {
	g := idgen.UUID{}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.New()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("trace_")

	for i, want := range []string{"trace_1", "trace_2", "trace_3"} {
		if id := g.New(); id != want {
			t.Errorf("ID %d = %s, want %s", i, id, want)
		}
	}
}

func TestSequential_New_NoPrefix(t *testing.T) {
	g := idgen.NewSequential("")

	if id := g.New(); id != "1" {
		t.Errorf("ID = %s, want 1", id)
	}
}

func TestSequential_New_Concurrent(t *testing.T) {
	g := idgen.NewSequential("c")

	var wg sync.WaitGroup
	ids := make(chan string, 500)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ids <- g.New()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != 500 {
		t.Errorf("expected 500 unique IDs, got %d", len(seen))
	}
}
