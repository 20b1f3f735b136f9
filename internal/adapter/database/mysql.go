package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/VividCortex/mysqlerr"
	"github.com/semmidev/dbops/internal/config"
	"github.com/semmidev/dbops/internal/domain"
	"github.com/semmidev/dbops/internal/infrastructure/command"
)

// PasswordEnv is read by both mysql and mysqldump.
const PasswordEnv = "MYSQL_PWD"

var missingTableMarkers = []string{
	fmt.Sprintf("ERROR %d", mysqlerr.ER_NO_SUCH_TABLE),
	"doesn't exist",
}

// IsMissingTable reports whether client output carries a "table does not
// exist" error.
func IsMissingTable(output string) bool {
	for _, marker := range missingTableMarkers {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

type Runner interface {
	Run(ctx context.Context, c command.Command) (*command.Result, error)
}

type MySQLDatabase struct {
	runner    Runner
	conn      domain.Connection
	clientBin string
	dumpBin   string
}

func NewMySQL(runner Runner, conn domain.Connection, cfg config.ClientConfig) *MySQLDatabase {
	return &MySQLDatabase{
		runner:    runner,
		conn:      conn,
		clientBin: cfg.MySQL,
		dumpBin:   cfg.MySQLDump,
	}
}

func (m *MySQLDatabase) Query(ctx context.Context, sql string) (string, error) {
	args := append(m.connArgs(), "-D", m.conn.Database, "-e", sql)

	result, err := m.runner.Run(ctx, m.command(m.clientBin, args))
	if err != nil {
		return "", err
	}
	return result.Output, nil
}

func (m *MySQLDatabase) Exec(ctx context.Context, sql string) (string, error) {
	args := append(m.connArgs(), m.conn.Database, "-e", sql)

	result, err := m.runner.Run(ctx, m.command(m.clientBin, args))
	if err != nil {
		return "", err
	}
	if err := result.Err(); err != nil {
		return "", err
	}
	return result.Output, nil
}

// DumpTable writes schema and data of one table to outputPath. On failure
// the partial file is left in place.
func (m *MySQLDatabase) DumpTable(ctx context.Context, table, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	c := m.command(m.dumpBin, append(m.connArgs(), m.conn.Database, table))
	c.Stdout = file

	result, err := m.runner.Run(ctx, c)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("mysqldump failed:\n%s", result.Output)
	}

	return file.Sync()
}

func (m *MySQLDatabase) GetName() string {
	return m.conn.Database
}

func (m *MySQLDatabase) connArgs() []string {
	return []string{
		"-h", m.conn.Host,
		"-P", strconv.Itoa(m.conn.Port),
		"-u", m.conn.Username,
	}
}

func (m *MySQLDatabase) command(name string, args []string) command.Command {
	c := command.Command{Name: name, Args: args}
	if m.conn.Password != "" {
		c.Env = map[string]string{PasswordEnv: m.conn.Password}
	}
	return c
}
