package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the active service catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadConfig().Catalog()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(map[string]any{"regions": cat.Regions()})
		if err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
