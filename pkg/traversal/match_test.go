package traversal

import (
	"errors"
	"sort"
	"testing"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func TestMatchBasicJoin(t *testing.T) {
	g := modernGraph(t)

	// For every person, the co-creators of their software.
	res, err := G(g).V().HasLabel("person").As("a").
		Match(
			As("a").Out("created").As("s"),
			As("s").In("created").As("b"),
		).
		Select("b").By("name").
		ToList()
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 10 {
		// a=marko: (lop, marko|josh|peter); a=josh: (ripple, josh), (lop, x3); a=peter: (lop, x3)
		t.Errorf("join produced %d rows, want 10", len(res))
	}
}

func TestMatchPatternOrderIrrelevant(t *testing.T) {
	g := modernGraph(t)

	run := func(patterns ...*Traversal) []string {
		res, err := G(g).V().HasLabel("person").As("a").
			Match(patterns...).
			Select("b").By("name").
			ToList()
		if err != nil {
			t.Fatal(err)
		}
		out := names(t, res)
		sort.Strings(out)
		return out
	}

	forward := run(
		As("a").Out("created").As("s"),
		As("s").In("created").As("b"),
	)
	reversed := run(
		As("s").In("created").As("b"),
		As("a").Out("created").As("s"),
	)

	if len(forward) != len(reversed) {
		t.Fatalf("pattern order changed cardinality: %d vs %d", len(forward), len(reversed))
	}
	for i := range forward {
		if forward[i] != reversed[i] {
			t.Fatalf("pattern order changed results:\n%v\n%v", forward, reversed)
		}
	}
}

func TestMatchBoundEndpointCheck(t *testing.T) {
	g := modernGraph(t)

	// Both endpoints pre-bound: the pattern acts as a pure constraint.
	// marko knows josh AND josh created lop, so the pair survives.
	res, err := G(g).V().Has("name", graph.String("marko")).As("a").
		Out("knows").As("b").
		Match(
			As("b").Out("created").As("s"),
			As("a").Out("created").As("s"),
		).
		Select("b").By("name").
		ToList()
	if err != nil {
		t.Fatal(err)
	}
	got := names(t, res)
	if len(got) != 1 || got[0] != "josh" {
		t.Errorf("constrained pair = %v, want [josh]", got)
	}
}

func TestMatchFilterOnlyPattern(t *testing.T) {
	g := modernGraph(t)

	// A pattern without a trailing As is an existence constraint.
	res, err := G(g).V().HasLabel("person").As("a").
		Match(
			As("a").Out("created"),
		).
		Select("a").By("name").
		ToList()
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 {
		t.Errorf("existence constraint kept %d, want 3 creators", len(res))
	}
}

func TestMatchDeduplicatesCombinations(t *testing.T) {
	g := modernGraph(t)

	// Two patterns reaching the same binding through different hops must
	// not emit the combination twice.
	res, err := G(g).V().Has("name", graph.String("marko")).As("a").
		Match(
			As("a").Out("created").As("s"),
			As("a").OutE("created").InV().As("s"),
		).
		Select("s").By("name").
		ToList()
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 {
		t.Errorf("deduplication failed: %d rows, want 1", len(res))
	}
}

func TestMatchMalformedPattern(t *testing.T) {
	g := modernGraph(t)

	// Patterns must start with As.
	_, err := G(g).V().Match(Out("created").As("s")).ToList()
	if !errors.Is(err, ErrMalformedPattern) {
		t.Errorf("expected ErrMalformedPattern, got %v", err)
	}
}

func TestMatchDisconnectedPatterns(t *testing.T) {
	g := modernGraph(t)

	// "x" is bound by nothing: no evaluation order can root the second
	// pattern, which is a query bug, not an empty result.
	_, err := G(g).V().HasLabel("person").As("a").
		Match(
			As("a").Out("created").As("s"),
			As("x").Out("knows").As("y"),
		).
		ToList()
	if !errors.Is(err, ErrUnboundLabel) {
		t.Errorf("expected ErrUnboundLabel, got %v", err)
	}
}

func TestMatchSeedsUnboundStart(t *testing.T) {
	g := modernGraph(t)

	// With no binding in scope, the incoming element seeds the start label
	// that no pattern produces as its end.
	res, err := G(g).V().HasLabel("person").
		Match(
			As("p").Out("created").As("s"),
		).
		Select("s").By("name").
		ToList()
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 4 {
		t.Errorf("seeded match produced %d, want 4 created edges' heads", len(res))
	}
}

func TestMatchUnseededPatternOrderIrrelevant(t *testing.T) {
	g := modernGraph(t)

	// No outer As: the seed label must come from the pattern set itself,
	// so permuting the patterns cannot change which label the incoming
	// person binds to.
	run := func(patterns ...*Traversal) []string {
		res, err := G(g).V().HasLabel("person").
			Match(patterns...).
			Select("s").By("name").
			ToList()
		if err != nil {
			t.Fatal(err)
		}
		out := names(t, res)
		sort.Strings(out)
		return out
	}

	forward := run(
		As("p").Out("created").As("s"),
		As("s").In("created").As("q"),
	)
	reversed := run(
		As("s").In("created").As("q"),
		As("p").Out("created").As("s"),
	)

	// marko and peter each reach lop (3 creators); josh reaches lop and
	// ripple (1 creator). 10 combinations either way.
	if len(forward) != 10 {
		t.Fatalf("unseeded join produced %d rows, want 10", len(forward))
	}
	if len(reversed) != len(forward) {
		t.Fatalf("pattern order changed cardinality: %d vs %d", len(forward), len(reversed))
	}
	for i := range forward {
		if forward[i] != reversed[i] {
			t.Fatalf("pattern order changed results:\n%v\n%v", forward, reversed)
		}
	}
}
