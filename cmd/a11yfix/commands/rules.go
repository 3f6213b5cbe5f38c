package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective iframe title rules",
	Long: `Print the iframe rules in evaluation order. The first rule whose match
string occurs in an iframe's src decides its title.`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("yaml", false, "print as YAML, ready to paste into filter.extra_iframe_rules")
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := filterConfig(viper.GetViper())
	if err != nil {
		return err
	}
	rules := a11y.New(cfg).Rules()

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(rules); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMATCH\tTITLE")
	for i, r := range rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Match, r.Title)
	}
	return tw.Flush()
}
