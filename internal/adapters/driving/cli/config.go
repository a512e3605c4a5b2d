package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change configuration",
	Long: `Read and change ~/.atlus/config.toml. Keys use dotted notation
matching the TOML sections, e.g. llm.provider or linker.threshold.

Environment variables override the file: ATLUS_LLM_PROVIDER overrides
llm.provider.`,
	Annotations: map[string]string{annotationBootstrap: bootstrapConfig},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the values stored in the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	RunE:              runConfigGet,
	ValidArgsFunction: completeConfigKeys,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Booleans and numbers are stored typed;
everything else is stored as a string.

Examples:
  atlus config set llm.provider anthropic
  atlus config set linker.adjacency list
  atlus config set ingest.concurrency 4`,
	Args:              cobra.ExactArgs(2),
	RunE:              runConfigSet,
	ValidArgsFunction: completeConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show which capabilities are live and which are degraded",
	Long: `Loads the configuration, connects to the configured providers and
reports the strategy chosen for each capability. Providers that are not
configured or cannot be reached fall back to local heuristics.`,
	Args:        cobra.NoArgs,
	RunE:        runConfigCheck,
	Annotations: map[string]string{annotationBootstrap: ""},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func requireConfigStore() error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if err := requireConfigStore(); err != nil {
		return err
	}

	cmd.Printf("%s %s\n\n", keyStyle.Render("Config file:"), dimStyle.Render(configStore.Path()))
	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Println("No values set. Using defaults.")
		return nil
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, _ := configStore.Get(key)
		cmd.Printf("  %s = %s\n", key, displayValue(key, value))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := requireConfigStore(); err != nil {
		return err
	}
	key := args[0]
	if !config.IsKnownKey(key) {
		return unknownKeyError(key)
	}

	value, ok := configStore.Get(key)
	if !ok {
		cmd.Printf("%s is not set\n", key)
		return nil
	}
	cmd.Println(displayValue(key, value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireConfigStore(); err != nil {
		return err
	}
	key := args[0]
	if !config.IsKnownKey(key) {
		return unknownKeyError(key)
	}

	if err := configStore.Set(key, parseValue(args[1])); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	cmd.Printf("%s %s = %s\n", successMark, key, displayValue(key, args[1]))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if services == nil {
		return errors.New("services not configured")
	}

	names := make([]string, 0, len(services.Capabilities))
	for name := range services.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printKV(cmd.OutOrStdout(), name, services.Capabilities[name])
	}
	if len(services.Warnings) == 0 {
		cmd.Printf("\n%s All configured capabilities are reachable\n", successMark)
		return nil
	}
	cmd.Println()
	for _, w := range services.Warnings {
		cmd.Printf("%s %s\n", warnMark, w)
	}
	return nil
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.Keys(), ", "))
}

// parseValue stores booleans and numbers typed so the TOML file keeps
// their types.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// displayValue masks secrets.
func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if strings.HasSuffix(key, "api_key") || key == "storage.dsn" {
		return maskSecret(s)
	}
	return s
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
