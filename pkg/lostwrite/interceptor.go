// Package lostwrite decides, per positional write, whether to honor it or
// to acknowledge it without writing anything.
//
// Every call reloads the rule file and opens its own audit log handle.
// Any setup failure falls back to the genuine primitive, so callers never
// observe an error they would not have seen without interception.
package lostwrite

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jingkaihe/lostwrite/pkg/audit"
	"github.com/jingkaihe/lostwrite/pkg/fdpath"
	"github.com/jingkaihe/lostwrite/pkg/pwrite"
	"github.com/jingkaihe/lostwrite/pkg/rules"
)

const (
	DefaultConfigPath = "/tmp/lost_write.cfg"
	DefaultLogPath    = "/tmp/lost_write.log"
)

type Options struct {
	ConfigPath string
	LogPath    string
	// Next is the genuine primitive. Defaults to pwrite.Syscall().
	Next pwrite.Primitive
	// Paths maps descriptors to datafile paths. Defaults to fdpath.Proc().
	Paths fdpath.Resolver
	// Pid identifies the process in audit lines. Defaults to os.Getpid.
	Pid func() int
	// Verbose dumps every loaded rule to the audit log on each call.
	Verbose bool
	Logger  *slog.Logger
}

type Interceptor struct {
	configPath string
	logPath    string
	next       pwrite.Primitive
	paths      fdpath.Resolver
	pid        func() int
	verbose    bool
	logger     *slog.Logger
}

func New(opts Options) *Interceptor {
	ic := &Interceptor{
		configPath: opts.ConfigPath,
		logPath:    opts.LogPath,
		next:       opts.Next,
		paths:      opts.Paths,
		pid:        opts.Pid,
		verbose:    opts.Verbose,
		logger:     opts.Logger,
	}
	if ic.configPath == "" {
		ic.configPath = DefaultConfigPath
	}
	if ic.logPath == "" {
		ic.logPath = DefaultLogPath
	}
	if ic.next == nil {
		ic.next = pwrite.Syscall()
	}
	if ic.paths == nil {
		ic.paths = fdpath.Proc()
	}
	if ic.pid == nil {
		ic.pid = os.Getpid
	}
	if ic.logger == nil {
		ic.logger = slog.New(slog.DiscardHandler)
	}
	return ic
}

// Pwrite loses the write when a rule matches fd and off, reporting len(p)
// bytes written. Otherwise it forwards the call unchanged and returns the
// genuine result.
func (ic *Interceptor) Pwrite(fd int, p []byte, off int64) (int, error) {
	d := ic.Decide(fd, off)
	if d.Lose {
		return len(p), nil
	}
	return ic.next.Pwrite(fd, p, off)
}

// Decide evaluates the rules for a write at off on fd. When the write is
// to be lost the audit line has already been appended.
func (ic *Interceptor) Decide(fd int, off int64) Decision {
	pid := ic.pid()

	// The log gates the whole interception: without it nothing is lost.
	log, err := audit.Open(ic.logPath)
	if err != nil {
		ic.logger.Debug("audit log unavailable", "pid", pid, "error", err)
		return passThrough(ReasonLogUnavailable)
	}
	defer log.Close()

	loaded, err := rules.Load(ic.configPath)
	if err != nil {
		if errors.Is(err, rules.ErrOpenConfig) && errors.Is(err, fs.ErrNotExist) {
			return passThrough(ReasonConfigUnavailable)
		}
		ic.logger.Debug("config rejected", "pid", pid, "error", err)
		_ = log.ConfigError(pid)
		if errors.Is(err, rules.ErrOpenConfig) {
			return passThrough(ReasonConfigUnavailable)
		}
		return passThrough(ReasonConfigMalformed)
	}

	if ic.verbose {
		for _, r := range loaded {
			_ = log.RuleInfo(pid, r)
		}
	}
	if len(loaded) == 0 {
		return passThrough(ReasonNoMatch)
	}

	path, err := ic.paths.Resolve(fd)
	if err != nil || path == "" {
		ic.logger.Debug("descriptor path unresolved", "pid", pid, "fd", fd, "error", err)
		return passThrough(ReasonPathUnresolved)
	}

	matched, ok := rules.Match(loaded, path, off)
	if !ok {
		return passThrough(ReasonNoMatch)
	}
	if err := log.LostBlock(pid, matched.Block, path); err != nil {
		ic.logger.Debug("audit append failed", "pid", pid, "error", err)
	}
	ic.logger.Debug("losing write", "pid", pid, "fd", fd, "offset", off, "block", matched.Block, "datafile", path)
	return Decision{Lose: true, Reason: ReasonMatched, Block: matched.Block, Path: path}
}
