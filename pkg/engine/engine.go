// Package engine provides the high-level, embedded interface for KektorGraph.
//
// It owns the in-memory graph store and the on-disk snapshot layer, and hands
// out traversal sources over the current graph. The store is load-once: a
// dataset is built (or read from a snapshot) in one shot and then queried
// read-only, so traversals never take locks on the hot path.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data/movies.kgr")
//	db, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	names, err := db.G().V().HasLabel("person").Values("name").ToList()
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/persistence"
	"github.com/sanonone/kektorgraph/pkg/traversal"
)

// Options configures the Engine.
type Options struct {
	// SnapshotPath is the .kgr file loaded on Open and written by Save.
	// If empty, the engine starts with an empty graph and Save requires
	// an explicit path.
	SnapshotPath string

	// Logger receives engine lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns a standard configuration for the given snapshot path.
func DefaultOptions(snapshotPath string) Options {
	return Options{SnapshotPath: snapshotPath}
}

// Engine is the main entry point for KektorGraph.
//
// Use Open() to initialize an Engine and Close() to shut it down. The graph
// it serves is replaced wholesale by Load; individual mutation of a served
// graph is not supported.
type Engine struct {
	opts Options
	log  *slog.Logger

	// mu guards the graph pointer swap on Load. Readers grab the pointer
	// once per traversal; the graphs themselves are immutable once served.
	mu sync.RWMutex
	g  *graph.Graph

	closeOnce sync.Once
}

// Open initializes an Engine, loading the snapshot at SnapshotPath if one
// exists. A missing snapshot file is not an error; the engine starts empty.
func Open(opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		opts: opts,
		log:  log,
		g:    graph.New(),
	}

	if opts.SnapshotPath != "" {
		if _, err := os.Stat(opts.SnapshotPath); err == nil {
			ds, err := persistence.LoadFile(opts.SnapshotPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load snapshot: %w", err)
			}
			if err := e.Load(ds); err != nil {
				return nil, fmt.Errorf("failed to build graph from snapshot: %w", err)
			}
			log.Info("snapshot loaded",
				"path", opts.SnapshotPath,
				"vertices", e.g.VertexCount(),
				"edges", e.g.EdgeCount())
		}
	}

	return e, nil
}

// Load builds a fresh graph from the dataset and atomically swaps it in,
// replacing whatever the engine was serving before. Traversals already in
// flight keep reading the old graph.
func (e *Engine) Load(ds *persistence.Dataset) error {
	g, err := persistence.BuildGraph(ds)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.g = g
	e.mu.Unlock()

	e.updateGauges(g)
	e.log.Info("dataset loaded", "vertices", g.VertexCount(), "edges", g.EdgeCount())
	return nil
}

// LoadFile reads a .kgr snapshot from disk and serves it.
func (e *Engine) LoadFile(path string) error {
	ds, err := persistence.LoadFile(path)
	if err != nil {
		return err
	}
	return e.Load(ds)
}

// Save writes the currently served graph to path as a .kgr snapshot.
// An empty path falls back to the configured SnapshotPath.
func (e *Engine) Save(path string) error {
	if path == "" {
		path = e.opts.SnapshotPath
	}
	if path == "" {
		return fmt.Errorf("no snapshot path configured")
	}

	g := e.Graph()
	ds := persistence.ExportDataset(g)
	if err := persistence.SaveFile(path, ds); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	e.log.Info("snapshot written", "path", path, "vertices", g.VertexCount(), "edges", g.EdgeCount())
	return nil
}

// Graph returns the graph currently served by the engine.
func (e *Engine) Graph() *graph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.g
}

// G returns a traversal source over the current graph, analogous to the
// Gremlin "g" entry point.
func (e *Engine) G() *traversal.Source {
	return traversal.G(e.Graph())
}

// Stats reports counts for the current graph.
func (e *Engine) Stats() graph.Stats {
	return e.Graph().Stats()
}

// Close shuts the engine down. The served graph is dropped; it does not
// write a final snapshot, call Save first if durability is needed.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.log.Info("engine closed")
	})
	return nil
}

func (e *Engine) updateGauges(g *graph.Graph) {
	st := g.Stats()
	metrics.TotalVertices.Reset()
	metrics.TotalEdges.Reset()
	for label, n := range st.VertexLabel {
		metrics.TotalVertices.WithLabelValues(label).Set(float64(n))
	}
	for label, n := range st.EdgeLabel {
		metrics.TotalEdges.WithLabelValues(label).Set(float64(n))
	}
}
