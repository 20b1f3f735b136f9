// Package dsn decomposes DATABASE_URL style connection strings.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/semmidev/dbops/internal/domain"
)

const DefaultPort = 3306

// Defaults fill in components missing from a connection string.
type Defaults struct {
	Host     string
	Username string
	Database string
}

var (
	// DiagnosticDefaults leave missing components empty.
	DiagnosticDefaults = Defaults{}

	UpgradeDefaults = Defaults{
		Host:     "127.0.0.1",
		Username: "root",
		Database: "miaoji",
	}
)

func Parse(raw string, d Defaults) (domain.Connection, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("invalid connection string: %w", err)
	}

	conn := domain.Connection{
		Host:     u.Hostname(),
		Port:     DefaultPort,
		Database: strings.TrimLeft(u.Path, "/"),
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return domain.Connection{}, fmt.Errorf("invalid port %q: %w", p, err)
		}
		conn.Port = port
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		conn.Password, _ = u.User.Password()
	}

	if conn.Host == "" {
		conn.Host = d.Host
	}
	if conn.Username == "" {
		conn.Username = d.Username
	}
	if conn.Database == "" {
		conn.Database = d.Database
	}

	return conn, nil
}
