package mcp

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/adapters/driven/embedding/zero"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/memory"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/nop"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/core/services"
	"github.com/atlus-labs/atlus/internal/generators/local"
	"github.com/atlus-labs/atlus/internal/normalisers"
	"github.com/atlus-labs/atlus/internal/postprocessors"
)

// newTestServer wires an MCP server over in-memory, degraded services
// and returns it with a freshly created graph.
func newTestServer(t *testing.T) (*Server, *domain.Graph) {
	t.Helper()
	store := memory.NewStore()
	index := nop.New()
	embedder := zero.New(3)
	linker := services.NewLinker(index, store.Adjacency(domain.AdjacencyEdges), domain.DefaultLinkerSettings())

	ports := &Ports{
		Graph: services.NewGraphService(store, index),
		Node:  services.NewNodeService(store, embedder, index, linker),
		Ingestion: services.NewIngestionService(store, normalisers.NewDefaultRegistry(),
			postprocessors.DefaultPipeline(2000, 100), local.New(), embedder, index, linker),
		OwnerID: "owner-1",
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	graph, err := ports.Graph.CreateGraph(context.Background(), driving.CreateGraphInput{Name: "Biology", OwnerID: "owner-1", Seed: true})
	require.NoError(t, err)
	return server, graph
}

func TestNewServer(t *testing.T) {
	t.Run("missing ports return errors", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingGraphService)
	})

	t.Run("valid ports create server", func(t *testing.T) {
		server, _ := newTestServer(t)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	server, _ := newTestServer(t)
	full := *server.ports

	tests := []struct {
		name   string
		mutate func(p *Ports)
		want   error
	}{
		{"no graph", func(p *Ports) { p.Graph = nil }, ErrMissingGraphService},
		{"no node", func(p *Ports) { p.Node = nil }, ErrMissingNodeService},
		{"no ingestion", func(p *Ports) { p.Ingestion = nil }, ErrMissingIngestionService},
		{"all set", func(*Ports) {}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := full
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestServer_RunHTTPAddressInUse(t *testing.T) {
	server, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = server.RunHTTP(context.Background(), ln.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func TestServer_ServeHTTPStopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.ServeHTTP(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+ln.Addr().String(), "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}

	_, err = net.Dial("tcp", ln.Addr().String())
	assert.Error(t, err)
}
