package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/eringen/letterpress"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default <export dir>/<slug>-<id>.html)")

	// Accept the id before or after the flags.
	var idArg string
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		idArg, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if idArg == "" && fs.NArg() > 0 {
		idArg = fs.Arg(0)
	}
	if idArg == "" {
		return fmt.Errorf("usage: letterpress export <id> [-o file]")
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid newsletter id %q", idArg)
	}

	cfg, err := letterpress.LoadConfig(context.Background())
	if err != nil {
		return err
	}
	cfg.MetricsAddr = ""
	logger := letterpress.NewLogger(cfg)
	letterpress.SetGlobalLogger(logger)

	app := letterpress.New(cfg, letterpress.WithLogger(logger))
	defer app.Close()

	path, size, err := app.ExportToFile(context.Background(), id, *out)
	if err != nil {
		return err
	}
	fmt.Printf("Exported newsletter %d to %s (%d bytes)\n", id, path, size)
	return nil
}
