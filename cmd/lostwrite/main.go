package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/lostwrite/pkg/lostwrite"
)

var (
	version = "dev"
	commit  = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lostwrite",
	Short: "Manage lost write simulation rules",
	Long: `lostwrite manages the rule file read by the lost_write.so preload shim
and inspects the audit log it appends to.

The shim reads /tmp/lost_write.cfg on every pwrite64 call. Each rule line has
the form <datafile>,<block_no>,<block_size>; lines starting with # are
comments and at most 32 rules are honored.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetVersionTemplate("lostwrite {{.Version}} (commit: " + commit + ")\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "CLI config file (default is $HOME/.lostwrite/config.yaml)")
	rootCmd.PersistentFlags().String("config-file", lostwrite.DefaultConfigPath, "Lost write rule file")
	rootCmd.PersistentFlags().String("log-file", lostwrite.DefaultLogPath, "Lost write audit log")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format: table, plain or json (default: table on a terminal, plain otherwise)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	viper.BindPFlag("config-file", rootCmd.PersistentFlags().Lookup("config-file"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".lostwrite"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOSTWRITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// A missing CLI config file is fine; the flags carry the defaults.
	_ = viper.ReadInConfig()
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func configPath() string { return viper.GetString("config-file") }
func logPath() string    { return viper.GetString("log-file") }

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
