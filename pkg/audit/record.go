package audit

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

const (
	pidPrefix       = "Pid "
	configErrorText = "ERROR: Failed to parse config file."
	lostPrefix      = "losing block "
	lostInfix       = " on write of datafile "
	infoPrefix      = "INFO: "
)

type RecordKind string

const (
	RecordLost        RecordKind = "lost"
	RecordConfigError RecordKind = "config_error"
	RecordInfo        RecordKind = "info"
)

// Record is one parsed audit log line.
type Record struct {
	Pid   int        `json:"pid"`
	Kind  RecordKind `json:"kind"`
	Block int64      `json:"block,omitempty"`
	Path  string     `json:"datafile,omitempty"`
	Raw   string     `json:"-"`
}

func ParseLine(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	rec := Record{Raw: line}

	rest, ok := strings.CutPrefix(line, pidPrefix)
	if !ok {
		return rec, errx.With(ErrUnknownLine, ": %q", line)
	}
	pidText, msg, ok := strings.Cut(rest, ": ")
	if !ok {
		return rec, errx.With(ErrUnknownLine, ": %q", line)
	}
	pid, err := strconv.Atoi(pidText)
	if err != nil {
		return rec, errx.With(ErrUnknownLine, ": %q", line)
	}
	rec.Pid = pid

	switch {
	case msg == configErrorText:
		rec.Kind = RecordConfigError
		return rec, nil
	case strings.HasPrefix(msg, infoPrefix):
		rec.Kind = RecordInfo
		return rec, nil
	case strings.HasPrefix(msg, lostPrefix):
		blockText, path, ok := strings.Cut(strings.TrimPrefix(msg, lostPrefix), lostInfix)
		if !ok {
			break
		}
		block, err := strconv.ParseInt(blockText, 10, 64)
		if err != nil {
			break
		}
		rec.Kind = RecordLost
		rec.Block = block
		rec.Path = path
		return rec, nil
	}
	return rec, errx.With(ErrUnknownLine, ": %q", line)
}

// Read parses every line of r. Unrecognized lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		rec, err := ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, errx.Wrap(ErrReadLog, err)
	}
	return records, nil
}

func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.Wrap(ErrReadLog, err)
	}
	defer f.Close()
	return Read(f)
}
