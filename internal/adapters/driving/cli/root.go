// Package cli implements the atlus command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/config"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/logger"
)

// DefaultOwner owns graphs created without --owner.
const DefaultOwner = "local"

// Command annotations controlling bootstrap.
const (
	annotationBootstrap = "atlus.bootstrap"
	bootstrapNone       = "none"
	bootstrapConfig     = "config"
)

var version = "dev"

// Services are the application services driven by the commands.
type Services struct {
	Graph     driving.GraphService
	Node      driving.NodeService
	Ingestion driving.IngestionService
	Config    driven.ConfigStore
	MCP       config.MCPConfig

	// Capabilities names the strategy chosen per capability, e.g.
	// "generator" -> "local".
	Capabilities map[string]string
	Warnings     []string

	// Close releases the store and the AI clients.
	Close func() error
}

// BootOptions are the global flags the bootstrapper needs.
type BootOptions struct {
	ConfigFile string
	Verbose    bool

	// ConfigOnly asks for the config store alone; no database is opened.
	ConfigOnly bool
}

// Bootstrapper builds the services once flags are parsed.
type Bootstrapper func(ctx context.Context, opts BootOptions) (*Services, error)

var (
	bootstrap Bootstrapper
	services  *Services

	graphService  driving.GraphService
	nodeService   driving.NodeService
	ingestService driving.IngestionService
	configStore   driven.ConfigStore
	mcpDefaults   = config.MCPConfig{Transport: "stdio", Listen: config.DefaultMCPListen}

	configFile string
	verbose    bool
	ownerID    string
)

var rootCmd = &cobra.Command{
	Use:   "atlus",
	Short: "Turn documents into a linked knowledge graph",
	Long: `Atlus turns PDFs, text, markdown and HTML into short notes, embeds
them and links every note to its nearest neighbours.

Without AI providers configured, notes are built by local heuristics
and similarity linking is skipped. Configure providers with
"atlus config set".`,
	SilenceUsage:       true,
	PersistentPreRunE:  bootstrapServices,
	PersistentPostRunE: closeServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.atlus/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", DefaultOwner, "owner of the graphs")
}

// Execute runs the root command with boot building the services.
func Execute(ctx context.Context, v string, boot Bootstrapper) error {
	version = v
	bootstrap = boot
	return rootCmd.ExecuteContext(ctx)
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	services = s
	if s == nil {
		graphService, nodeService, ingestService, configStore = nil, nil, nil, nil
		return
	}
	graphService = s.Graph
	nodeService = s.Node
	ingestService = s.Ingestion
	configStore = s.Config
	if s.MCP.Transport != "" {
		mcpDefaults = s.MCP
	}
}

func bootstrapServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	mode := bootstrapMode(cmd)
	if mode == bootstrapNone || bootstrap == nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), BootOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		ConfigOnly: mode == bootstrapConfig,
	})
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

func closeServices(_ *cobra.Command, _ []string) error {
	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services.Close = nil
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// bootstrapMode returns the nearest annotation on cmd or its parents.
func bootstrapMode(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if mode, ok := c.Annotations[annotationBootstrap]; ok {
			return mode
		}
	}
	return ""
}

func requireGraphService() error {
	if graphService == nil {
		return errors.New("graph service not configured")
	}
	return nil
}

func requireNodeService() error {
	if nodeService == nil {
		return errors.New("node service not configured")
	}
	return nil
}

func requireIngestService() error {
	if ingestService == nil {
		return errors.New("ingestion service not configured")
	}
	return nil
}
