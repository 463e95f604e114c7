package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sage/internal/profile"
)

var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Summarize a document's scopes and property profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		st := g.Stats()
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "scopes:     %d\nproperties: %d\ndepth:      %d\n",
			st.Scopes, st.Properties, st.Depth); err != nil {
			return err
		}
		for _, tc := range st.Types {
			if _, err := fmt.Fprintf(out, "type %s: %d\n", tc.Tag, tc.Count); err != nil {
				return err
			}
		}

		p := profile.Analyze(g.Root())
		if len(p.Fields) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "FIELD\tKIND\tCOUNT\tDISTINCT\tNOTE"); err != nil {
			return err
		}
		for _, fs := range p.Sorted() {
			note := ""
			switch {
			case fs.Mixed():
				note = "mixed"
			case fs.Enum():
				note = "enum"
			}
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", fs.Path, fs.Kind(), fs.Count, fs.Cardinality, note); err != nil {
				return err
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
