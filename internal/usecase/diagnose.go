package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/semmidev/dbops/internal/adapter/database"
	"github.com/semmidev/dbops/internal/domain"
)

// DiagnosedTables are inspected in this order.
var DiagnosedTables = []string{"Category", "Config"}

const latestRows = 3

// Diagnose prints a read-only report on the category and config tables.
type Diagnose struct {
	db     domain.Database
	conn   domain.Connection
	out    io.Writer
	logger Logger
}

func NewDiagnose(db domain.Database, conn domain.Connection, out io.Writer, logger Logger) *Diagnose {
	return &Diagnose{
		db:     db,
		conn:   conn,
		out:    out,
		logger: logger,
	}
}

// Execute fails only when the client cannot be run or stdout cannot be
// written. SQL errors end up in the report.
func (uc *Diagnose) Execute(ctx context.Context) error {
	p := &printer{w: uc.out}

	p.println("## Part 2: DATABASE_URL evidence (masked)")
	p.println("host=" + uc.conn.Host)
	p.printf("port=%d\n", uc.conn.Port)
	p.println("db=" + uc.conn.Database)
	p.println()

	p.println("## Part 3: SQL evidence (read-only)")
	out, err := uc.db.Query(ctx, evidenceSQL())
	if err != nil {
		return fmt.Errorf("evidence query: %w", err)
	}
	p.println(trimRight(out))
	p.println()

	for i, table := range DiagnosedTables {
		if i > 0 {
			p.println()
		}
		if err := uc.reportTable(ctx, p, table); err != nil {
			return err
		}
	}

	return p.err
}

func (uc *Diagnose) reportTable(ctx context.Context, p *printer, table string) error {
	out, err := uc.db.Query(ctx, tableSQL(table))
	if err != nil {
		return fmt.Errorf("%s query: %w", table, err)
	}
	out = trimRight(out)

	if database.IsMissingTable(out) {
		uc.logger.Warnf("Table %s does not exist in %s", table, uc.conn.Database)
		p.printf("## %s table: NOT EXISTS\n", table)
		return nil
	}

	p.printf("## %s table: count + latest %d\n", table, latestRows)
	p.println(MaskLongFields(out))
	return nil
}

func evidenceSQL() string {
	var b strings.Builder
	b.WriteString("SELECT DATABASE() AS db, @@hostname AS mysqlHost, @@port AS mysqlPort;\n")
	for _, table := range DiagnosedTables {
		fmt.Fprintf(&b, "SHOW TABLES LIKE '%%%s%%';\n", strings.ToLower(table))
	}
	for _, table := range DiagnosedTables {
		fmt.Fprintf(&b,
			"SELECT COUNT(*) AS %s_exists FROM information_schema.tables WHERE table_schema=DATABASE() AND table_name='%s';\n",
			table, table)
	}
	return b.String()
}

func tableSQL(table string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) AS cnt FROM %s;\nSELECT * FROM %s ORDER BY updatedAt DESC LIMIT %d;\n",
		table, table, latestRows)
}
