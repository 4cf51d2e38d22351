package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"pkgconsole/internal/filtrage"
	"pkgconsole/internal/filtrage/expr"
)

// ParseCommand returns the parse CLI command.
func ParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the syntax tree of a filter expression",
		ArgsUsage: "<expression>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sanitize",
				Usage: "Sanitize the expression first, as filtering does",
			},
		},
		Action: runParse,
	}
}

func runParse(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("expression argument is required")
	}
	text := strings.Join(c.Args().Slice(), " ")

	if c.Bool("sanitize") {
		sanitized, err := filtrage.SanitizeValue(text)
		if err != nil {
			return fmt.Errorf("parse %q: %w", text, err)
		}
		text = sanitized
	}

	node, err := filtrage.Parse(text)
	if err != nil {
		return fmt.Errorf("parse %q: %w", text, err)
	}

	out := map[string]any{
		"expression": text,
		"ast":        expr.Tree(node),
	}
	if kinds := filtrage.Unsupported(node); len(kinds) > 0 {
		out["unsupported"] = kinds
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
