package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stefanak-michal/dragondb"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	infoColor = color.New(color.FgCyan)
)

// templateArgs decodes the optional JSON argument of a template: an array
// for positional placeholders or an object for named ones.
func templateArgs(args []string) ([]any, error) {
	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(args[1])))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("arguments: %w", err)
	}
	switch x := v.(type) {
	case []any:
		return x, nil
	case map[string]any:
		return []any{dragondb.Named(x)}, nil
	}
	return []any{v}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render TEMPLATE [ARGS_JSON]",
		Short: "Print the SQL a template renders to, without running it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := templateArgs(args)
			if err != nil {
				return err
			}
			sql, err := a.db.Parse(args[0], params...)
			if err != nil {
				return err
			}
			fmt.Println(sql)
			return nil
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query TEMPLATE [ARGS_JSON]",
		Short: "Run a template and print the rows as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := templateArgs(args)
			if err != nil {
				return err
			}
			rows, err := a.db.Query(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []dragondb.Row{}
			}
			return printJSON(rows)
		},
	}
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec TEMPLATE [ARGS_JSON]",
		Short: "Run a statement that returns no rows",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := templateArgs(args)
			if err != nil {
				return err
			}
			affected, err := a.db.Exec(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}
			okColor.Printf("%d row(s) affected", affected)
			if id := a.db.InsertID(); id != 0 {
				infoColor.Printf(", insert id %d", id)
			}
			fmt.Println()
			return nil
		},
	}
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [DATABASE]",
		Short: "List the tables of the current or the named database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.db.TableList(cmd.Context(), args...)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Println(t)
			}
			return nil
		},
	}
}

func newColumnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns TABLE",
		Short: "Describe the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := a.db.ColumnList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(columns))
			for name := range columns {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c := columns[name]
				null := "NOT NULL"
				if c.Nullable {
					null = "NULL"
				}
				infoColor.Printf("%-24s", c.Name)
				fmt.Printf(" %-20s %-8s %s %s\n", c.Type, null, c.Key, c.Extra)
			}
			return nil
		},
	}
}
