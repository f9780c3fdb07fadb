// Package rules loads lost write rules from the line-oriented config file
// and matches intercepted writes against them.
package rules

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

const (
	// MaxRules bounds how many rules a single load honors.
	MaxRules = 32
	// MaxLineLen bounds a config line, newline excluded.
	MaxLineLen = 512

	commentMarker = '#'
	delimiter     = ","
)

// Rule names one block of one datafile whose writes are lost.
type Rule struct {
	Path      string `json:"datafile"`
	Block     int64  `json:"block"`
	BlockSize int64  `json:"block_size"`
}

// Offset is the byte offset the block starts at.
func (r Rule) Offset() int64 {
	return r.Block * r.BlockSize
}

// Usable reports whether the rule can ever match. Numeric fields that do
// not parse load as zero, so zero marks a rule as unusable.
func (r Rule) Usable() bool {
	if r.Path == "" || r.Block <= 0 || r.BlockSize <= 0 {
		return false
	}
	return r.Block <= math.MaxInt64/r.BlockSize
}

// Validate rejects rules that would load but never match.
func Validate(r Rule) error {
	if !filepath.IsAbs(r.Path) {
		return errx.With(ErrRelativePath, ": %q", r.Path)
	}
	if strings.ContainsAny(r.Path, delimiter+"\n\r") {
		return errx.With(ErrInvalidPath, ": %q", r.Path)
	}
	if r.Block <= 0 {
		return errx.With(ErrInvalidBlock, ": %d", r.Block)
	}
	if r.BlockSize <= 0 {
		return errx.With(ErrInvalidBlockSize, ": %d", r.BlockSize)
	}
	return nil
}

// Format renders r as a config line without the trailing newline.
func Format(r Rule) string {
	return r.Path + delimiter + strconv.FormatInt(r.Block, 10) + delimiter + strconv.FormatInt(r.BlockSize, 10)
}
