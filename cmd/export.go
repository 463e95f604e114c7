package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sage/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [path] [output.db]",
	Short: "Write the scope tree of a document to a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, logger, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		output := args[1]
		if err := export.WriteFile(cmd.Context(), output, g.Root(), export.WithLogger(logger)); err != nil {
			return err
		}
		st := g.Stats()
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d scopes and %d properties to %s\n", st.Scopes, st.Properties, output)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
