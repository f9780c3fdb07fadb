package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/lostwrite/pkg/rules"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the rules the shim would load",
	Long: `List the rules exactly as the shim loads them. A rule file the shim
would reject is reported as an error, since every write then passes through.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type listedRule struct {
	rules.Rule
	Offset int64 `json:"offset"`
	Usable bool  `json:"usable"`
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	loaded, err := loadRules(configPath())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		listed := make([]listedRule, 0, len(loaded))
		for _, r := range loaded {
			listed = append(listed, listedRule{Rule: r, Offset: r.Offset(), Usable: r.Usable()})
		}
		return writeJSON(out, listed)
	case outputPlain:
		lines := make([]string, 0, len(loaded))
		for _, r := range loaded {
			lines = append(lines, rules.Format(r))
		}
		return writePlain(out, lines)
	}

	rows := make([][]string, 0, len(loaded))
	for i, r := range loaded {
		usable := "yes"
		if !r.Usable() {
			usable = "no"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Path,
			strconv.FormatInt(r.Block, 10),
			strconv.FormatInt(r.BlockSize, 10),
			strconv.FormatInt(r.Offset(), 10),
			usable,
		})
	}
	return writeTable(out, []string{"#", "Datafile", "Block", "Block Size", "Offset", "Usable"}, rows)
}
