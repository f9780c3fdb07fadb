package main

import "errors"

// Rule file errors
var (
	ErrInvalidBlock  = errors.New("invalid block number")
	ErrInvalidSize   = errors.New("invalid block size")
	ErrInvalidRule   = errors.New("invalid rule")
	ErrTooManyRules  = errors.New("rule file already holds the maximum number of rules")
	ErrLoadRules     = errors.New("load rules")
	ErrWriteRules    = errors.New("write rule file")
	ErrUnknownOutput = errors.New("unknown output format")
	ErrInvalidPid    = errors.New("invalid pid")
	ErrReadAuditLog  = errors.New("read audit log")
	ErrRenderOutput  = errors.New("render output")
)

// Probe errors
var (
	ErrUnalignedBlockSize = errors.New("block size must be a multiple of the direct I/O block size")
	ErrOpenDatafile       = errors.New("open datafile")
	ErrReadBlock          = errors.New("read block")
	ErrWriteBlock         = errors.New("write probe block")
	ErrRestoreBlock       = errors.New("restore block")
)
