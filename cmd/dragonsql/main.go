// Command dragonsql renders and runs dragondb templates from the shell.
//
//	dragonsql render 'SELECT * FROM %b WHERE id IN %li' '["users", [1, 2]]'
//	DB_DRIVER=sqlite3 DB_NAME=app.db dragonsql query 'SELECT * FROM %b' '["users"]'
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
