// Package cli implements the lang CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/b0risfosso/lang/internal/store"
	"github.com/spf13/cobra"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lang",
	Short: "Word-graph store with an async expansion queue",
	Long:  "A versioned word/phrase knowledge graph with sentences, an LLM task queue, and annotation trees. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $LANG_DB or ~/.lang/lang.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("LANG_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lang", "lang.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func parseID(arg, what string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		exitErr(what, fmt.Errorf("invalid id %q", arg))
	}
	return id
}

func parseIDList(csv, what string) []int64 {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ids = append(ids, parseID(part, what))
	}
	return ids
}
