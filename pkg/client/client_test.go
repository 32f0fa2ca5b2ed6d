package client

import (
	"errors"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/sanonone/kektorgraph/internal/server"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

// testClient spins a real server over httptest and points a Client at it.
func testClient(t *testing.T, authToken string) *Client {
	t.Helper()

	eng, err := engine.Open(engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	err = eng.Load(&persistence.Dataset{
		Vertices: []persistence.VertexRecord{
			{Key: "marko", Label: "person", Properties: map[string]any{"name": "marko", "age": int64(29)}},
			{Key: "josh", Label: "person", Properties: map[string]any{"name": "josh", "age": int64(32)}},
			{Key: "lop", Label: "software", Properties: map[string]any{"name": "lop"}},
		},
		Edges: []persistence.EdgeRecord{
			{Label: "created", Out: "marko", In: "lop"},
			{Label: "created", Out: "josh", In: "lop"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := server.DefaultConfig()
	cfg.AuthToken = authToken
	srv, err := server.NewServer(eng, cfg)
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)
	c := New(host, port)
	if authToken != "" {
		c.WithAuthToken(authToken)
	}
	return c
}

func TestClientStats(t *testing.T) {
	c := testClient(t, "")

	st, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Vertices != 3 || st.Edges != 2 {
		t.Errorf("stats = %d/%d, want 3/2", st.Vertices, st.Edges)
	}
}

func TestClientVertices(t *testing.T) {
	c := testClient(t, "")

	// 1. Label scan
	list, err := c.FindVertices("person", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 {
		t.Errorf("person scan = %d, want 2", list.Count)
	}

	// 2. Property lookup with a typed value
	list, err = c.FindVertices("person", "age", "29", 0)
	if err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 {
		t.Fatalf("age lookup = %d, want 1", list.Count)
	}

	// 3. Single vertex by ID
	v, err := c.GetVertex(list.Vertices[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Properties["name"] != "marko" {
		t.Errorf("vertex = %v, want marko", v.Properties)
	}

	// 4. Missing vertex surfaces an APIError with the status
	_, err = c.GetVertex(999)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Errorf("missing vertex error = %v, want APIError 404", err)
	}
}

func TestClientNeighborsAndRange(t *testing.T) {
	c := testClient(t, "")

	n, err := c.Neighbors(2, "in", "created")
	if err != nil {
		t.Fatal(err)
	}
	if n.Count != 2 {
		t.Errorf("lop creators = %d, want 2", n.Count)
	}

	list, err := c.Range("person", "age", 29, 32)
	if err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 {
		t.Errorf("range [29,32) = %d, want 1", list.Count)
	}
}

func TestClientLoad(t *testing.T) {
	c := testClient(t, "")

	res, err := c.LoadDataset(&persistence.Dataset{
		Vertices: []persistence.VertexRecord{{Key: "x", Label: "thing"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Vertices != 1 || res.Edges != 0 {
		t.Errorf("load result = %d/%d, want 1/0", res.Vertices, res.Edges)
	}

	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Vertices != 1 {
		t.Errorf("server graph not replaced: %d vertices", st.Vertices)
	}
}

func TestClientAuth(t *testing.T) {
	c := testClient(t, "secret")

	// Authorized client works.
	if _, err := c.Stats(); err != nil {
		t.Fatalf("authorized request failed: %v", err)
	}

	// A client without the token gets 401.
	c.authToken = ""
	_, err := c.Stats()
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Errorf("unauthorized error = %v, want APIError 401", err)
	}

	// Health never needs the token.
	if err := c.Healthz(); err != nil {
		t.Errorf("healthz failed: %v", err)
	}
}
