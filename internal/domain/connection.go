package domain

import "fmt"

type Connection struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// String omits the username and password.
func (c Connection) String() string {
	return fmt.Sprintf("%s:%d/%s", c.Host, c.Port, c.Database)
}
