package mcp

// --- Tool Arguments ---

type DescribeGraphArgs struct{}

type DescribeGraphResult struct {
	Vertices     int            `json:"vertices"`
	Edges        int            `json:"edges"`
	VertexLabels map[string]int `json:"vertex_labels"`
	EdgeLabels   map[string]int `json:"edge_labels"`
}

type FindVerticesArgs struct {
	Label string `json:"label" jsonschema:"The vertex label to scan (e.g. 'person'),required"`
	Key   string `json:"key,omitempty" jsonschema:"Optional property name to filter on"`
	Value any    `json:"value,omitempty" jsonschema:"Property value to match (used with key)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max number of results (default 20)"`
}

type VertexInfo struct {
	ID         uint32         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

type FindVerticesResult struct {
	Count    int          `json:"count"`
	Vertices []VertexInfo `json:"vertices"`
}

type ExploreNeighborsArgs struct {
	VertexID  uint32 `json:"vertex_id" jsonschema:"The vertex to expand from,required"`
	Direction string `json:"direction,omitempty" jsonschema:"Direction of traversal: 'out', 'in', or 'both'. Default 'out',enum=out,enum=in,enum=both"`
	EdgeLabel string `json:"edge_label,omitempty" jsonschema:"Restrict the expansion to edges with this label"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max number of neighbors (default 20)"`
}

type ExploreNeighborsResult struct {
	Count     int          `json:"count"`
	Neighbors []VertexInfo `json:"neighbors"`
}

type AggregatePropertyArgs struct {
	Label    string `json:"label" jsonschema:"The vertex label to aggregate over,required"`
	Property string `json:"property" jsonschema:"The numeric property to reduce,required"`
	Function string `json:"function" jsonschema:"Reduction to apply,required,enum=count,enum=sum,enum=mean,enum=min,enum=max"`
}

type AggregatePropertyResult struct {
	Function string  `json:"function"`
	Value    float64 `json:"value"`
	Empty    bool    `json:"empty,omitempty"`
}

type GroupCountArgs struct {
	Label string `json:"label" jsonschema:"The vertex label to group,required"`
	Key   string `json:"key" jsonschema:"The property to group by,required"`
	Top   int    `json:"top,omitempty" jsonschema:"Return only the N largest groups (default all)"`
}

type GroupCountResult struct {
	Groups []GroupEntry `json:"groups"`
}

type GroupEntry struct {
	Key   any   `json:"key"`
	Count int64 `json:"count"`
}
