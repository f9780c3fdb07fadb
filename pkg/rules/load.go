package rules

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

// Load reads the rules in the config file at path. The file is closed
// before Load returns.
func Load(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenConfig, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads rules until r is exhausted or MaxRules rules are collected.
// Lines past the limit are never read. Any malformed line fails the whole
// parse and the rules collected so far are discarded.
func Parse(r io.Reader) ([]Rule, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, MaxLineLen+2), MaxLineLen+2)

	var parsed []Rule
	lineNo := 0
	for len(parsed) < MaxRules && scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) > MaxLineLen {
			return nil, errx.With(ErrLineTooLong, ": line %d", lineNo)
		}

		fields := split(line)
		if len(fields) == 0 {
			return nil, errx.With(ErrMalformedLine, ": line %d: missing datafile", lineNo)
		}
		if fields[0][0] == commentMarker {
			continue
		}
		if len(fields) < 2 {
			return nil, errx.With(ErrMalformedLine, ": line %d: missing block number", lineNo)
		}
		if len(fields) < 3 {
			return nil, errx.With(ErrMalformedLine, ": line %d: missing block size", lineNo)
		}

		parsed = append(parsed, Rule{
			Path:      fields[0],
			Block:     atoi(fields[1]),
			BlockSize: atoi(fields[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, errx.With(ErrLineTooLong, ": line %d", lineNo+1)
		}
		return nil, errx.Wrap(ErrReadConfig, err)
	}
	return parsed, nil
}

// split tokenizes a line the way strtok does: runs of delimiters separate
// tokens and empty tokens are never produced.
func split(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == ',' })
}

// atoi parses leading whitespace, an optional sign and the leading decimal
// digits of s. Input without digits yields 0.
func atoi(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int64(s[i] - '0')
		if n > (1<<63-1-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}
