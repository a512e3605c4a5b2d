package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/adapters/driven/embedding/zero"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/memory"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/nop"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	coreservices "github.com/atlus-labs/atlus/internal/core/services"
	"github.com/atlus-labs/atlus/internal/generators/local"
	"github.com/atlus-labs/atlus/internal/normalisers"
	"github.com/atlus-labs/atlus/internal/postprocessors"
)

// setupTestServices installs services over an in-memory store with the
// local generator and no vector index.
func setupTestServices(t *testing.T) *Services {
	t.Helper()

	store := memory.NewStore()
	index := nop.New()
	embedder := zero.New(3)
	linker := coreservices.NewLinker(index, store.Adjacency(domain.AdjacencyEdges), domain.DefaultLinkerSettings())

	s := &Services{
		Graph: coreservices.NewGraphService(store, index),
		Node:  coreservices.NewNodeService(store, embedder, index, linker),
		Ingestion: coreservices.NewIngestionService(
			store,
			normalisers.NewDefaultRegistry(),
			postprocessors.DefaultPipeline(1500, 200),
			local.New(),
			embedder,
			index,
			linker,
		),
		Config:       memory.NewConfigStore(nil),
		Capabilities: map[string]string{"generator": "local", "vector": "none"},
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })
	return s
}

// runCommand executes the root command with args and returns what it
// wrote. Flags are reset first since cobra keeps their values between
// runs.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// createGraph makes an unseeded graph owned by the default owner.
func createGraph(t *testing.T, s *Services, name string) *domain.Graph {
	t.Helper()
	g, err := s.Graph.CreateGraph(context.Background(), driving.CreateGraphInput{
		Name:    name,
		Badge:   domain.BadgeNotes,
		OwnerID: DefaultOwner,
	})
	require.NoError(t, err)
	return g
}

// addNote adds a hand-written note to graphID.
func addNote(t *testing.T, s *Services, graphID, title, markdown string) *domain.Node {
	t.Helper()
	n, err := s.Ingestion.AddNote(context.Background(), driving.NoteInput{
		GraphID:  graphID,
		Title:    title,
		Markdown: markdown,
	})
	require.NoError(t, err)
	return n
}
