package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [path] [jsonpath]",
	Short: "Run a JSONPath expression over the scope tree",
	Long: `Run a JSONPath expression over the projected scope tree and print the
matches as a JSON array. Each scope projects to an object carrying "@scope"
(its id), "@type" (when tagged) and its properties; sequences project to arrays.`,
	Example: `  sage query movie.jsonld '$.actor[*].name'
  sage query --stable-ids movie.jsonld '$.director["@scope"]'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		res, err := g.Query(args[1])
		if err != nil {
			return err
		}
		if res == nil {
			res = []any{}
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(res, &oj.Options{Indent: 2, Sort: true}))
		return err
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
