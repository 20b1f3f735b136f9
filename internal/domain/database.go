package domain

import "context"

type Database interface {
	// Query runs sql and returns the merged client output. Errors reported
	// by the server are part of the output, not of the returned error.
	Query(ctx context.Context, sql string) (string, error)
	// Exec runs sql and fails when the client exits non-zero.
	Exec(ctx context.Context, sql string) (string, error)
	DumpTable(ctx context.Context, table, outputPath string) error
	GetName() string
}
