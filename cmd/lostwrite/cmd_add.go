package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/lostwrite/internal/errx"
	"github.com/jingkaihe/lostwrite/pkg/rules"
)

var addCmd = &cobra.Command{
	Use:   "add <datafile> <block> <block-size>",
	Short: "Add a lost write rule",
	Long: `Add a rule that makes the shim lose every pwrite64 of the given block.

The datafile must be the absolute path the database opened, as shown by
/proc/<pid>/fd. The write is lost when its offset is exactly block * block-size.`,
	Example: `  lostwrite add /u01/oradata/ORCL/users01.dbf 139 8192`,
	Args:    cobra.ExactArgs(3),
	RunE:    runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	r, err := parseRuleArgs(args)
	if err != nil {
		return err
	}

	path := configPath()
	existing, err := loadRules(path)
	if err != nil {
		return err
	}
	if len(existing) >= rules.MaxRules {
		return errx.With(ErrTooManyRules, " (%d): %s", rules.MaxRules, path)
	}

	if err := appendRule(path, r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (offset %d)\n", rules.Format(r), r.Offset())
	return nil
}
