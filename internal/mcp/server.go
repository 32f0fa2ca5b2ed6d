// Package mcp exposes the graph over the Model Context Protocol so that
// LLM agents can inspect and query a loaded dataset.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorgraph/pkg/engine"
)

func NewMCPServer(eng *engine.Engine) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "KektorGraph",
		Version: "0.1.0",
	}, nil)

	// Register tools using the generic AddTool which inspects the arg structs.

	mcp.AddTool(s, &mcp.Tool{
		Name:        "describe_graph",
		Description: "Summarize the loaded graph: vertex/edge counts broken down by label.",
	}, service.DescribeGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_vertices",
		Description: "List vertices with a given label, optionally filtered by an exact property value.",
	}, service.FindVertices)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "explore_neighbors",
		Description: "Expand from a vertex to its adjacent vertices, optionally restricted by direction and edge label.",
	}, service.ExploreNeighbors)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "aggregate_property",
		Description: "Reduce a numeric property over all vertices of a label: count, sum, mean, min, or max.",
	}, service.AggregateProperty)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "group_count",
		Description: "Count vertices of a label grouped by a property value, largest groups first.",
	}, service.GroupCount)

	return s
}
