// cmd/bannerupgrade/main.go
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
		"bannerupgrade",
		"Back up Banner and change Banner.targetId to varchar(191) NULL",
		`Dump the Banner table to /root/backup_banner_<date>_<time>.sql, print its
columns, alter targetId to varchar(191) NULL and print the columns again.
Any failing step aborts the run; the dump is left for manual recovery.`,
		func(ctx context.Context, a *app.App, out io.Writer) error {
			return a.Upgrade(ctx, out)
		},
	)
	return cmd.Execute()
}
