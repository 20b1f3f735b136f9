// cmd/diagcategories/main.go
package main

import (
	"context"
	"io"
	"log"

	"github.com/semmidev/dbops/internal/app"
	"github.com/semmidev/dbops/internal/cli"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	cmd := cli.NewCommand(
		"diagcategories",
		"Read-only report on the Category and Config tables",
		`Print the target database identity, table existence probes and the
row count plus latest 3 rows of Category and Config. Missing tables are
reported as NOT EXISTS; long field values are masked.`,
		func(ctx context.Context, a *app.App, out io.Writer) error {
			return a.Diagnose(ctx, out)
		},
	)
	return cmd.Execute()
}
