package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/filtrage"
)

// FilterCommand returns the filter CLI command.
func FilterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "Filter JSON rows and remember the filters for the view",
		Description: `Reads a JSON array of objects, keeps the rows that satisfy every term
and prints them as JSON. Terms are column=expression pairs; without any
--term the filters stored for the view are applied.

Expressions:
  Active      substring, case-insensitive
  "Active"    exact match
  $Arc        starts with
  ed$         ends with
  !Active     does not contain
  ?  / !?     has a value / has no value
  a || b      either, a && b both`,
		Flags: []cli.Flag{
			viewKeyFlag(),
			&cli.StringSliceFlag{
				Name:    "term",
				Aliases: []string{"t"},
				Usage:   "Filter term as column=expression (repeatable)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file with the rows, - for stdin",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Drop the stored filters of the view before filtering",
			},
		},
		Action: runFilter,
	}
}

func runFilter(c *cli.Context) error {
	view := c.String(viewFlag)

	terms, err := parseTerms(c.StringSlice("term"))
	if err != nil {
		return err
	}

	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	if c.Bool("clear") {
		if err := e.store.SetFilters(view, filter.Set{}); err != nil {
			return err
		}
	}
	if terms == nil {
		if terms, err = e.store.Filters(view); err != nil {
			return err
		}
	}

	rows, err := readRows(c, c.String("input"))
	if err != nil {
		return err
	}

	engine := filtrage.NewEngine(e.store, e.log)
	out := engine.FilterRows(c.Context, terms, rows, view)

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// parseTerms turns column=expression pairs into a set. No pairs yields nil.
func parseTerms(pairs []string) (filter.Set, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	set := make(filter.Set, 0, len(pairs))
	for _, p := range pairs {
		column, value, ok := strings.Cut(p, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid term %q: want column=expression", p)
		}
		set = append(set, filter.Term{ID: column, Value: value})
	}
	return set, nil
}

func readRows(c *cli.Context, path string) ([]filtrage.Row, error) {
	r, closeFn, err := openInput(c, path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rows []filtrage.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if rows == nil {
		rows = []filtrage.Row{}
	}
	return rows, nil
}
