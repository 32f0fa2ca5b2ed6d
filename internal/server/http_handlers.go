package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

const defaultPageSize = 100

// registerHTTPHandlers sets up the REST API routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /graph/stats", s.handleStats)
	mux.HandleFunc("GET /graph/vertices", s.handleListVertices)
	mux.HandleFunc("GET /graph/vertices/range", s.handleRange)
	mux.HandleFunc("GET /graph/vertices/{id}", s.handleGetVertex)
	mux.HandleFunc("GET /graph/vertices/{id}/neighbors", s.handleNeighbors)
	mux.HandleFunc("POST /graph/load", s.handleLoad)
	mux.HandleFunc("POST /system/save", s.handleSave)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Engine.Stats())
}

// handleListVertices serves label scans and exact property lookups.
// With ?key=&value= it uses the property index, otherwise the label list.
func (s *Server) handleListVertices(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("http")()

	q := r.URL.Query()
	label := q.Get("label")
	key := q.Get("key")
	value := q.Get("value")
	limit := parseLimit(q.Get("limit"))

	g := s.Engine.Graph()

	var cursor *graph.VertexCursor
	switch {
	case key != "" && value != "":
		if label == "" {
			s.writeHTTPError(w, http.StatusBadRequest, "label is required for property lookups")
			return
		}
		cursor = g.VerticesByProperty(label, key, guessValue(value))
	case label != "":
		cursor = g.VerticesByLabel(label)
	default:
		cursor = g.AllVertices()
	}

	out := make([]VertexResponse, 0, limit)
	for v, ok := cursor.Next(); ok && len(out) < limit; v, ok = cursor.Next() {
		out = append(out, vertexToResponse(v))
	}

	s.writeHTTPResponse(w, http.StatusOK, VertexListResponse{Count: len(out), Vertices: out})
}

func (s *Server) handleGetVertex(w http.ResponseWriter, r *http.Request) {
	id, err := parseVertexID(r.PathValue("id"))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid vertex id")
		return
	}

	v, ok := s.Engine.Graph().Vertex(id)
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "vertex not found")
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, vertexToResponse(v))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("http")()

	id, err := parseVertexID(r.PathValue("id"))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid vertex id")
		return
	}

	g := s.Engine.Graph()
	if _, ok := g.Vertex(id); !ok {
		s.writeHTTPError(w, http.StatusNotFound, "vertex not found")
		return
	}

	q := r.URL.Query()
	direction := q.Get("direction")
	if direction == "" {
		direction = "out"
	}

	var labels []string
	if lbl := q.Get("label"); lbl != "" {
		labels = []string{lbl}
	}

	var neighbors []VertexResponse
	appendFrom := func(cursor *graph.EdgeCursor, inbound bool) {
		for e, ok := cursor.Next(); ok; e, ok = cursor.Next() {
			other := e.InVertex()
			if inbound {
				other = e.OutVertex()
			}
			if v, ok := g.Vertex(other); ok {
				neighbors = append(neighbors, vertexToResponse(v))
			}
		}
	}

	switch direction {
	case "out":
		appendFrom(g.OutEdges(id, labels...), false)
	case "in":
		appendFrom(g.InEdges(id, labels...), true)
	case "both":
		appendFrom(g.OutEdges(id, labels...), false)
		appendFrom(g.InEdges(id, labels...), true)
	default:
		s.writeHTTPError(w, http.StatusBadRequest, "direction must be out, in, or both")
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, NeighborsResponse{
		ID:        uint32(id),
		Direction: direction,
		Count:     len(neighbors),
		Neighbors: neighbors,
	})
}

// handleRange serves numeric range lookups over the B-Tree index.
// Bounds are [min, max): min inclusive, max exclusive.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("http")()

	q := r.URL.Query()
	label := q.Get("label")
	key := q.Get("key")
	if label == "" || key == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "label and key are required")
		return
	}

	lo, err := strconv.ParseFloat(q.Get("min"), 64)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "min must be a number")
		return
	}
	hi, err := strconv.ParseFloat(q.Get("max"), 64)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "max must be a number")
		return
	}

	vertices := s.Engine.Graph().VerticesInRange(label, key, lo, hi)
	out := make([]VertexResponse, 0, len(vertices))
	for _, v := range vertices {
		out = append(out, vertexToResponse(v))
	}

	s.writeHTTPResponse(w, http.StatusOK, VertexListResponse{Count: len(out), Vertices: out})
}

// handleLoad replaces the served graph with the dataset in the request body.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var ds persistence.Dataset
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON dataset")
		return
	}

	if err := s.Engine.Load(&ds); err != nil {
		s.writeHTTPError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st := s.Engine.Stats()
	s.writeHTTPResponse(w, http.StatusOK, LoadResponse{
		Status:   "OK",
		Vertices: st.Vertices,
		Edges:    st.Edges,
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	if err := s.Engine.Save(req.Path); err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

// --- Helpers ---

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}

func parseVertexID(raw string) (graph.VertexID, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return graph.VertexID(n), nil
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultPageSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	return n
}

// guessValue maps a query string to the typed value it most likely encodes:
// integer, then float, then plain string.
func guessValue(raw string) graph.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return graph.Int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return graph.Double(f)
	}
	return graph.String(raw)
}

func observeQuery(surface string) func() {
	start := time.Now()
	metrics.QueriesTotal.WithLabelValues(surface).Inc()
	return func() {
		metrics.QueryDuration.WithLabelValues(surface).Observe(time.Since(start).Seconds())
	}
}
