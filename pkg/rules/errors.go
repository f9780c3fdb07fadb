package rules

import "errors"

var (
	ErrOpenConfig    = errors.New("open lost write config")
	ErrReadConfig    = errors.New("read lost write config")
	ErrMalformedLine = errors.New("malformed lost write config line")
	ErrLineTooLong   = errors.New("lost write config line too long")

	ErrRelativePath     = errors.New("datafile path must be absolute")
	ErrInvalidPath      = errors.New("datafile path contains a delimiter")
	ErrInvalidBlock     = errors.New("block number must be positive")
	ErrInvalidBlockSize = errors.New("block size must be positive")
)
