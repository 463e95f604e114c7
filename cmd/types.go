package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types [path] [type...]",
	Short: "List scopes by type tag",
	Long: `With only a path, print every type tag and how many scopes carry it.
With one or more types, print the id and location of each matching scope in
document order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		idx := g.Index()

		if len(args) == 1 {
			for _, tc := range idx.Types() {
				if _, err := fmt.Fprintf(out, "%s\t%d\n", tc.Tag, tc.Count); err != nil {
					return err
				}
			}
			return nil
		}

		for _, s := range idx.FindByAnyType(args[1:]...) {
			path, err := idx.Path(s.ID())
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s\t%s\t/%s\n", s.ID(), s.TypeTag(), strings.Join(path, "/")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
