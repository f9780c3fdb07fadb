package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

const (
	outputTable = "table"
	outputPlain = "plain"
	outputJSON  = "json"
)

// outputFormat resolves the requested format. Without an explicit choice
// tables are only drawn for terminals.
func outputFormat() (string, error) {
	switch format := viper.GetString("output"); format {
	case "":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return outputTable, nil
		}
		return outputPlain, nil
	case outputTable, outputPlain, outputJSON:
		return format, nil
	default:
		return "", errx.With(ErrUnknownOutput, ": %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errx.Wrap(ErrRenderOutput, err)
	}
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return errx.Wrap(ErrRenderOutput, err)
		}
	}
	if err := table.Render(); err != nil {
		return errx.Wrap(ErrRenderOutput, err)
	}
	return nil
}

func writePlain(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errx.Wrap(ErrRenderOutput, err)
		}
	}
	return nil
}
