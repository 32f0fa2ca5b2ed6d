package server

import (
	"github.com/sanonone/kektorgraph/pkg/graph"
)

// VertexResponse is the wire form of a single vertex.
type VertexResponse struct {
	ID         uint32         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// VertexListResponse wraps a page of vertices.
type VertexListResponse struct {
	Count    int              `json:"count"`
	Vertices []VertexResponse `json:"vertices"`
}

// NeighborsResponse is the result of a neighbor expansion.
type NeighborsResponse struct {
	ID        uint32           `json:"id"`
	Direction string           `json:"direction"`
	Count     int              `json:"count"`
	Neighbors []VertexResponse `json:"neighbors"`
}

// LoadResponse reports the outcome of a bulk dataset load.
type LoadResponse struct {
	Status   string `json:"status"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
}

func vertexToResponse(v *graph.Vertex) VertexResponse {
	props := v.Properties()
	native := make(map[string]any, len(props))
	for name, val := range props {
		native[name] = val.Native()
	}
	return VertexResponse{
		ID:         uint32(v.ID()),
		Label:      v.Label(),
		Properties: native,
	}
}
