package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/civic-atlas/appointments-watch/internal/match"
	"github.com/civic-atlas/appointments-watch/internal/registry"
)

var matchCmd = &cobra.Command{
	Use:   "match <agency name>",
	Short: "Match an agency name against the registry",
	Long:  "Runs the matcher against a single raw agency name and prints every registry organization it resolves to, with strategy and confidence. Useful for tuning the rules file.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file extending the built-in dictionaries")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")

	norm, err := loadNormalizer()
	if err != nil {
		return err
	}

	orgs, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return eris.Wrap(err, "load registry")
	}

	matcher := match.New(norm, orgs)
	matches := matcher.Match(raw)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Input:      %s\n", raw)
	fmt.Fprintf(out, "Normalized: %s\n\n", norm.Agency(raw))

	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(out, "%-12s %.2f  %s (%s)\n", m.Type, m.Confidence, m.MatchedName, m.RegistryID)
		fmt.Fprintf(out, "             matched %s: %q\n", m.MatchedField, m.MatchedValue)
	}

	return nil
}
