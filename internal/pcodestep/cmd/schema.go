package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pcodestep/internal/config"
	"pcodestep/internal/replay"
)

var schemaCmd = &cobra.Command{
	Use:       "schema [config|trace]",
	Short:     "Generate JSON schema for configuration or traces",
	Long:      "Generate JSON schema for the pcodestep configuration file or the recorded trace format",
	Hidden:    true,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"config", "trace"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var schema any = config.Schema()
		if len(args) == 1 && args[0] == "trace" {
			schema = replay.Schema()
		}
		bts, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(bts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
