package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "export":
		err = runExport(args)
	case "version":
		fmt.Printf("letterpress %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`letterpress - compose newsletters and export them as standalone HTML emails

Usage:
  letterpress <command> [arguments]

Commands:
  serve                     Start the API server (default)
  export <id> [-o file]     Render newsletter <id> to a file
  version                   Print the letterpress version
  help                      Show this help message

Configuration is read from the environment (and an optional .env file),
for example LETTERPRESS_ADDR, LETTERPRESS_DATABASE_PATH, LETTERPRESS_EXPORT_DIR.

Examples:
  letterpress serve
  letterpress export 3
  letterpress export 3 -o weekly.html`)
}
