package main

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/lostwrite/internal/errx"
	"github.com/jingkaihe/lostwrite/pkg/audit"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the lost write audit log",
	Long: `Show the records the shim appended to the audit log. Each record is
annotated with the name of the writing process when it is still running.`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().Int("pid", 0, "Only show records of this process")
	logCmd.Flags().Bool("lost-only", false, "Only show lost writes")
	viper.BindPFlag("log.pid", logCmd.Flags().Lookup("pid"))
	viper.BindPFlag("log.lost-only", logCmd.Flags().Lookup("lost-only"))

	rootCmd.AddCommand(logCmd)
}

type logEntry struct {
	audit.Record
	Process string `json:"process,omitempty"`
}

func runLog(cmd *cobra.Command, args []string) error {
	pid := viper.GetInt("log.pid")
	lostOnly := viper.GetBool("log.lost-only")
	if pid < 0 {
		return errx.With(ErrInvalidPid, ": %d", pid)
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}

	records, err := audit.ReadFile(logPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errx.Wrap(ErrReadAuditLog, err)
	}

	names := processNames{}
	entries := make([]logEntry, 0, len(records))
	for _, rec := range records {
		if pid != 0 && rec.Pid != pid {
			continue
		}
		if lostOnly && rec.Kind != audit.RecordLost {
			continue
		}
		entries = append(entries, logEntry{Record: rec, Process: names.lookup(rec.Pid)})
	}

	out := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		return writeJSON(out, entries)
	case outputPlain:
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, e.Raw)
		}
		return writePlain(out, lines)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		block, datafile := "-", "-"
		if e.Kind == audit.RecordLost {
			block = strconv.FormatInt(e.Block, 10)
			datafile = e.Path
		}
		name := e.Process
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{strconv.Itoa(e.Pid), name, string(e.Kind), block, datafile})
	}
	return writeTable(out, []string{"PID", "Process", "Kind", "Block", "Datafile"}, rows)
}

// processNames caches process name lookups. Exited processes map to "".
type processNames map[int]string

func (n processNames) lookup(pid int) string {
	if name, ok := n[pid]; ok {
		return name
	}
	name := ""
	if p, err := process.NewProcess(int32(pid)); err == nil {
		name, _ = p.Name()
	}
	n[pid] = name
	return name
}
