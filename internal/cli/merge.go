// internal/cli/merge.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/audiencekit/internal/app/audience"
	"github.com/dalemusser/audiencekit/pantry/export"
	"github.com/dalemusser/audiencekit/pantry/merge"
)

// MergeCmd implements `merge ORIGINAL EXTENSION...`.
type MergeCmd struct {
	Original    string   `arg:"" help:"Original mapping (.json, .yaml or .yml), or - for stdin"`
	Extensions  []string `arg:"" name:"extension" help:"Extension mappings, applied in order; one may be -"`
	Format      string   `short:"f" default:"json" enum:"json,yaml,csv,xlsx" help:"Output format (json, yaml, csv, xlsx)"`
	Out         string   `short:"o" help:"Write the result to this file instead of stdout"`
	Copy        bool     `help:"Merge into a copy so no input is aliased in the result"`
	StdinFormat string   `default:"json" enum:"json,yaml" help:"Format of a mapping read from stdin"`
	Sheet       string   `default:"Audience" help:"Sheet name for xlsx output"`
}

func (c *MergeCmd) Run(g *Global) error {
	paths := append([]string{c.Original}, c.Extensions...)
	stdinUsed := false
	mappings := make([]merge.Mapping, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			if stdinUsed {
				return errors.New("stdin (-) may be given only once")
			}
			stdinUsed = true
		}
		m, err := c.read(g, path)
		if err != nil {
			return err
		}
		mappings = append(mappings, m)
	}

	result := audience.New(g.Logger).Merge(c.Copy, mappings[0], mappings[1:]...)

	if c.Out == "" {
		return c.write(g.Stdout, result)
	}
	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := c.write(f, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (c *MergeCmd) read(g *Global, path string) (merge.Mapping, error) {
	if path == "-" {
		format, err := merge.ParseFormat(c.StdinFormat)
		if err != nil {
			return nil, err
		}
		m, err := merge.Decode(g.Stdin, format)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return m, nil
	}

	format, err := merge.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := merge.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (c *MergeCmd) write(w io.Writer, m merge.Mapping) error {
	switch c.Format {
	case "csv":
		return export.WriteCSV(w, m)
	case "xlsx":
		return export.WriteXLSX(w, m, c.Sheet)
	default:
		format, err := merge.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		return merge.Encode(w, m, format)
	}
}
