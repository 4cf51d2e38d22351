package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"pkgconsole/internal/domain/filter"
)

// SavedCommand returns the saved filter CLI command group.
func SavedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage saved filters of a view",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved filters; the selected one is marked with *",
				Flags:  []cli.Flag{viewKeyFlag()},
				Action: runSavedList,
			},
			{
				Name:  "save",
				Usage: "Save the current filters of the view under a name",
				Flags: []cli.Flag{
					viewKeyFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the saved filter", Required: true},
					&cli.Int64Flag{Name: "id", Usage: "Overwrite the saved filter with this id"},
				},
				Action: runSavedSave,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved filter",
				Flags: []cli.Flag{
					viewKeyFlag(),
					&cli.Int64Flag{Name: "id", Usage: "Saved filter id", Required: true},
				},
				Action: runSavedDelete,
			},
			{
				Name:  "select",
				Usage: "Make a saved filter the current filters of the view",
				Flags: []cli.Flag{
					viewKeyFlag(),
					&cli.Int64Flag{Name: "id", Usage: "Saved filter id", Required: true},
				},
				Action: runSavedSelect,
			},
		},
	}
}

func runSavedList(c *cli.Context) error {
	view := c.String(viewFlag)
	e, err := openEnv(c, true)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	list, err := e.store.ListFilters(c.Context, view)
	if err != nil {
		return err
	}
	selected, hasSelection, err := e.store.SelectedFilterID(view)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tQUERY")
	for _, s := range list {
		mark := ""
		if hasSelection && s.ID == selected {
			mark = "*"
		}
		query, _ := json.Marshal(s.Query)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", mark, s.ID, s.Name, query)
	}
	return w.Flush()
}

func runSavedSave(c *cli.Context) error {
	view := c.String(viewFlag)
	e, err := openEnv(c, true)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	var id *int64
	if c.IsSet("id") {
		v := c.Int64("id")
		id = &v
	}
	saved, err := e.store.SaveFilter(c.Context, view, c.String("name"), id)
	if err != nil {
		return err
	}
	if err := e.store.SetSelectedFilterID(view, &saved.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "saved filter %d %q\n", saved.ID, saved.Name)
	return nil
}

func runSavedDelete(c *cli.Context) error {
	view := c.String(viewFlag)
	e, err := openEnv(c, true)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	id := c.Int64("id")
	if err := e.store.DeleteFilter(c.Context, view, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted filter %d\n", id)
	return nil
}

func runSavedSelect(c *cli.Context) error {
	view := c.String(viewFlag)
	e, err := openEnv(c, true)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	id := c.Int64("id")
	list, err := e.store.ListFilters(c.Context, view)
	if err != nil {
		return err
	}
	saved, ok := findSaved(list, id)
	if !ok {
		return fmt.Errorf("no saved filter %d for view %q", id, view)
	}
	if err := e.store.SelectFilter(view, saved); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "selected filter %d %q\n", saved.ID, saved.Name)
	return nil
}

func findSaved(list []filter.Saved, id int64) (filter.Saved, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return filter.Saved{}, false
}
