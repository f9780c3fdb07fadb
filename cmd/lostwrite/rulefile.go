package main

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jingkaihe/lostwrite/internal/errx"
	"github.com/jingkaihe/lostwrite/pkg/rules"
)

// parseRuleArgs builds a rule from the <datafile> <block> <block-size>
// arguments shared by add and probe.
func parseRuleArgs(args []string) (rules.Rule, error) {
	block, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return rules.Rule{}, errx.With(ErrInvalidBlock, " %q: %w", args[1], err)
	}
	size, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return rules.Rule{}, errx.With(ErrInvalidSize, " %q: %w", args[2], err)
	}
	r := rules.Rule{Path: args[0], Block: block, BlockSize: size}
	if err := rules.Validate(r); err != nil {
		return rules.Rule{}, errx.Wrap(ErrInvalidRule, err)
	}
	return r, nil
}

// loadRules reads the rule file, treating a missing file as empty.
func loadRules(path string) ([]rules.Rule, error) {
	loaded, err := rules.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.Wrap(ErrLoadRules, err)
	}
	return loaded, nil
}

func appendRule(path string, r rules.Rule) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errx.Wrap(ErrWriteRules, err)
	}

	line := rules.Format(r) + "\n"
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		line = "\n" + line
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return errx.Wrap(ErrWriteRules, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return errx.Wrap(ErrWriteRules, err)
	}
	if err := f.Close(); err != nil {
		return errx.Wrap(ErrWriteRules, err)
	}
	return nil
}

// clearRules empties the rule file. With keepComments only comment lines
// survive.
func clearRules(path string, keepComments bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errx.Wrap(ErrWriteRules, err)
	}

	var kept bytes.Buffer
	if keepComments {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(strings.TrimLeft(line, ","), "#") {
				kept.WriteString(line)
				kept.WriteByte('\n')
			}
		}
		if err := scanner.Err(); err != nil {
			return errx.Wrap(ErrWriteRules, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return errx.Wrap(ErrWriteRules, err)
	}
	if err := os.WriteFile(path, kept.Bytes(), info.Mode().Perm()); err != nil {
		return errx.Wrap(ErrWriteRules, err)
	}
	return nil
}
