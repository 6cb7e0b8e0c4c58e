// worldtool inspects and prepares Terrastream world saves without a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, os.Stdout)
	case "bake":
		err = cmdBake(args, os.Stdout)
	case "preview":
		err = cmdPreview(args, os.Stdout)
	case "visible", "ls":
		err = cmdVisible(args, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`worldtool - Terrastream world save utility

Usage:
  worldtool <command> [options]

Commands:
  info                 Show saved world state and chunk count
  bake                 Generate and store the chunks visible from a view
  preview -o out.png   Render the visible chunks of a view to PNG
  visible              List the chunk keys selected for a view

Common options:
  -config <file>       Config file (defaults apply otherwise)
  -save-dir <dir>      World save directory
  -backend <name>      fs, sqlite or memory
  -seed <n>            Force a seed over the saved one

View options (bake, preview, visible):
  -x, -y, -zoom        Camera center and zoom (default: saved or configured)
  -width, -height      Viewport in pixels

Examples:
  worldtool info -save-dir saves/default
  worldtool bake -save-dir saves/default -zoom 8
  worldtool preview -save-dir saves/default -o map.png -width 1024 -height 1024`)
}
