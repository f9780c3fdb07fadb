package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/ncw/directio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/lostwrite/internal/errx"
	"github.com/jingkaihe/lostwrite/pkg/lostwrite"
	"github.com/jingkaihe/lostwrite/pkg/rules"
)

var probeCmd = &cobra.Command{
	Use:   "probe <datafile> <block> <block-size>",
	Short: "Check whether a write of a block would be lost",
	Long: `Write a marker over the block through the lost write interceptor, read the
block back and report whether the write was lost. When the marker reached the
datafile the original block contents are written back.

Only run this against datafiles that are not in use.`,
	Example: `  lostwrite probe /u01/oradata/ORCL/users01.dbf 139 8192`,
	Args:    cobra.ExactArgs(3),
	RunE:    runProbe,
}

func init() {
	probeCmd.Flags().Bool("direct", true, "Use O_DIRECT I/O (block size must be a multiple of 4096)")
	viper.BindPFlag("probe.direct", probeCmd.Flags().Lookup("direct"))

	rootCmd.AddCommand(probeCmd)
}

type probeResult struct {
	Rule     rules.Rule `json:"rule"`
	Offset   int64      `json:"offset"`
	Lost     bool       `json:"lost"`
	Restored bool       `json:"restored"`
	Marker   string     `json:"marker"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	direct := viper.GetBool("probe.direct")
	r, err := parseRuleArgs(args)
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	if direct && r.BlockSize%directio.BlockSize != 0 {
		return errx.With(ErrUnalignedBlockSize, " (%d): %d", directio.BlockSize, r.BlockSize)
	}

	f, err := openDatafile(r.Path, direct)
	if err != nil {
		return errx.With(ErrOpenDatafile, " %s: %w", r.Path, err)
	}
	defer f.Close()

	ic := lostwrite.New(lostwrite.Options{
		ConfigPath: configPath(),
		LogPath:    logPath(),
		Logger:     slog.Default(),
	})
	result, err := probeBlock(f, ic, r, direct)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		return writeJSON(out, result)
	case outputPlain:
		state := "persisted"
		if result.Lost {
			state = "lost"
		}
		return writePlain(out, []string{fmt.Sprintf("%s %s", rules.Format(r), state)})
	}
	return writeTable(out, []string{"Datafile", "Block", "Offset", "Lost", "Restored"}, [][]string{{
		r.Path,
		strconv.FormatInt(r.Block, 10),
		strconv.FormatInt(result.Offset, 10),
		strconv.FormatBool(result.Lost),
		strconv.FormatBool(result.Restored),
	}})
}

func openDatafile(path string, direct bool) (*os.File, error) {
	if direct {
		return directio.OpenFile(path, os.O_RDWR, 0)
	}
	return os.OpenFile(path, os.O_RDWR, 0)
}

func probeBlock(f *os.File, ic *lostwrite.Interceptor, r rules.Rule, direct bool) (probeResult, error) {
	off := r.Offset()
	result := probeResult{Rule: r, Offset: off, Marker: uuid.NewString()}

	original := newBlock(r.BlockSize, direct)
	if _, err := f.ReadAt(original, off); err != nil {
		return result, errx.With(ErrReadBlock, " %d of %s: %w", r.Block, r.Path, err)
	}

	marker := newBlock(r.BlockSize, direct)
	fillMarker(marker, original, result.Marker)

	lf := lostwrite.Wrap(f, ic)
	if _, err := lf.WriteAt(marker, off); err != nil {
		return result, errx.Wrap(ErrWriteBlock, err)
	}

	readBack := newBlock(r.BlockSize, direct)
	if _, err := f.ReadAt(readBack, off); err != nil {
		return result, errx.With(ErrReadBlock, " %d of %s: %w", r.Block, r.Path, err)
	}
	result.Lost = !bytes.Equal(readBack, marker)
	slog.Debug("probe complete", "datafile", r.Path, "block", r.Block, "marker", result.Marker, "lost", result.Lost)

	if !result.Lost {
		if _, err := f.WriteAt(original, off); err != nil {
			return result, errx.With(ErrRestoreBlock, " %d of %s: %w", r.Block, r.Path, err)
		}
		if err := f.Sync(); err != nil {
			return result, errx.With(ErrRestoreBlock, " %d of %s: %w", r.Block, r.Path, err)
		}
		result.Restored = true
	}
	return result, nil
}

func newBlock(size int64, direct bool) []byte {
	if direct {
		return directio.AlignedBlock(int(size))
	}
	return make([]byte, size)
}

// fillMarker fills block with a pattern that is guaranteed to differ from
// the current contents.
func fillMarker(block, current []byte, id string) {
	pattern := []byte("lostwrite-probe " + id + ";")
	for i := range block {
		block[i] = pattern[i%len(pattern)]
	}
	if bytes.Equal(block, current) {
		for i := range block {
			block[i] = ^block[i]
		}
	}
}
