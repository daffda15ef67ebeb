// Parley is a natural-language command interpreter for text adventures.
// Usage: parley [--version] [--plain] [--script <file>] [--trace] <content_directory>
package main

import (
	"fmt"
	"os"

	"github.com/nathoo/parley/cli"
	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/world"
	"github.com/nathoo/parley/loader"
	"github.com/nathoo/parley/tui"
	"github.com/nathoo/parley/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var contentDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("parley %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	if contentDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: parley [--version] [--plain] [--script <file>] [--trace] <content_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua world content.
	content, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	store := world.NewStore()
	store.SetMeta(content.World)
	for _, loc := range content.Locations {
		store.AddLocation(loc)
	}

	interp := engine.New(store)
	interp.RegisterEntities(content.Entities)

	ctx := &types.Context{
		PlayerID: "player",
		Location: content.World.Start,
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("%s v%s by %s\n\n", content.World.Title, content.World.Version, content.World.Author)
		c := cli.New(interp, ctx)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s v%s by %s\n\n", content.World.Title, content.World.Version, content.World.Author)
		c := cli.New(interp, ctx)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(interp, ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
