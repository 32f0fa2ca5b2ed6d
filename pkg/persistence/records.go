// Package persistence implements bulk loading and the on-disk snapshot
// format (.kgr) for KektorGraph.
//
// The store itself is load-once and read-only, so there is no write-ahead
// log: a snapshot is the only persisted artifact. Snapshots are sequences
// of CRC-framed, gob-encoded vertex and edge records, so a truncated or
// corrupted file is detected record-by-record instead of producing a
// silently wrong graph.
package persistence

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// VertexRecord is one decoded vertex of a dataset. Key is the external
// identifier edges refer to; it is not stored in the graph.
type VertexRecord struct {
	Key        string         `json:"key"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// EdgeRecord is one decoded edge of a dataset, referencing its endpoint
// vertices by Key.
type EdgeRecord struct {
	Label      string         `json:"label"`
	Out        string         `json:"out"`
	In         string         `json:"in"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Dataset is an already-decoded bulk-load input: every vertex first, then
// every edge. Where the records came from (snapshot file, JSON upload,
// code) is the caller's concern.
type Dataset struct {
	Vertices []VertexRecord `json:"vertices"`
	Edges    []EdgeRecord   `json:"edges"`
}

// BuildGraph loads a dataset into a fresh store. An edge referencing an
// unknown vertex key is a structural error and aborts the whole load.
func BuildGraph(ds *Dataset) (*graph.Graph, error) {
	g := graph.New()
	ids := make(map[string]graph.VertexID, len(ds.Vertices))

	for i, rec := range ds.Vertices {
		if _, dup := ids[rec.Key]; dup {
			return nil, fmt.Errorf("vertex %d: duplicate key %q", i, rec.Key)
		}
		props, err := convertProps(rec.Properties)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", rec.Key, err)
		}
		ids[rec.Key] = g.AddVertex(rec.Label, props)
	}

	for i, rec := range ds.Edges {
		out, ok := ids[rec.Out]
		if !ok {
			return nil, fmt.Errorf("edge %d (%s): out vertex %q: %w", i, rec.Label, rec.Out, graph.ErrDanglingReference)
		}
		in, ok := ids[rec.In]
		if !ok {
			return nil, fmt.Errorf("edge %d (%s): in vertex %q: %w", i, rec.Label, rec.In, graph.ErrDanglingReference)
		}
		props, err := convertProps(rec.Properties)
		if err != nil {
			return nil, fmt.Errorf("edge %d (%s): %w", i, rec.Label, err)
		}
		if _, err := g.AddEdge(rec.Label, out, in, props); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ExportDataset turns a store back into records, suitable for writing a
// snapshot. Vertex keys are the decimal arena identifiers.
func ExportDataset(g *graph.Graph) *Dataset {
	ds := &Dataset{}
	vc := g.AllVertices()
	for v, ok := vc.Next(); ok; v, ok = vc.Next() {
		ds.Vertices = append(ds.Vertices, VertexRecord{
			Key:        fmt.Sprintf("%d", v.ID()),
			Label:      v.Label(),
			Properties: nativeProps(v.Properties()),
		})
	}
	ec := g.AllEdges()
	for e, ok := ec.Next(); ok; e, ok = ec.Next() {
		ds.Edges = append(ds.Edges, EdgeRecord{
			Label:      e.Label(),
			Out:        fmt.Sprintf("%d", e.OutVertex()),
			In:         fmt.Sprintf("%d", e.InVertex()),
			Properties: nativeProps(e.Properties()),
		})
	}
	return ds
}

func convertProps(raw map[string]any) (map[string]graph.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	props := make(map[string]graph.Value, len(raw))
	for name, x := range raw {
		v, err := graph.FromNative(x)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		props[name] = v
	}
	return props, nil
}

func nativeProps(props map[string]graph.Value) map[string]any {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]any, len(props))
	for name, v := range props {
		out[name] = v.Native()
	}
	return out
}
