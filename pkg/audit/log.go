// Package audit appends and parses the lost write audit log.
//
// Every record is one line emitted with a single append write, so
// concurrent writers in unrelated processes never interleave inside a
// line.
package audit

import (
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/jingkaihe/lostwrite/internal/errx"
	"github.com/jingkaihe/lostwrite/pkg/rules"
)

// FileMode is the permission the log is created with (rw-rw----).
const FileMode = 0660

// Log is an append-only handle scoped to a single intercepted call.
type Log struct {
	fd int
}

func Open(path string) (*Log, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND|unix.O_CLOEXEC, FileMode)
	if err != nil {
		return nil, errx.With(ErrOpenLog, " %s: %w", path, err)
	}
	return &Log{fd: fd}, nil
}

// LostBlock records that the write of block to path was discarded.
func (l *Log) LostBlock(pid int, block int64, path string) error {
	return l.emit(pid, "losing block "+strconv.FormatInt(block, 10)+" on write of datafile "+path)
}

// ConfigError records that the config could not be parsed.
func (l *Log) ConfigError(pid int) error {
	return l.emit(pid, configErrorText)
}

// RuleInfo records a loaded rule.
func (l *Log) RuleInfo(pid int, r rules.Rule) error {
	return l.emit(pid, "INFO: datafile="+r.Path+
		", block="+strconv.FormatInt(r.Block, 10)+
		", block_size="+strconv.FormatInt(r.BlockSize, 10))
}

func (l *Log) Close() error {
	if l == nil || l.fd < 0 {
		return nil
	}
	err := unix.Close(l.fd)
	l.fd = -1
	return err
}

func (l *Log) emit(pid int, msg string) error {
	line := make([]byte, 0, len(pidPrefix)+len(msg)+24)
	line = append(line, pidPrefix...)
	line = strconv.AppendInt(line, int64(pid), 10)
	line = append(line, ": "...)
	line = append(line, msg...)
	line = append(line, '\n')

	for {
		n, err := unix.Write(l.fd, line)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errx.Wrap(ErrWriteLog, err)
		}
		if n != len(line) {
			return errx.With(ErrShortWrite, ": %d of %d bytes", n, len(line))
		}
		return nil
	}
}
