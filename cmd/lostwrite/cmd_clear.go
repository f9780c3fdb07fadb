package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all lost write rules",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().Bool("keep-comments", false, "Keep comment lines")
	viper.BindPFlag("clear.keep-comments", clearCmd.Flags().Lookup("keep-comments"))

	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	keepComments := viper.GetBool("clear.keep-comments")
	if err := clearRules(configPath(), keepComments); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", configPath())
	return nil
}
