package domain

import (
	"fmt"
	"strings"
)

// DefaultDBHost is assumed when wp-config.php does not define DB_HOST.
const DefaultDBHost = "localhost"

// Credentials holds the MySQL connection parameters of a WordPress site.
type Credentials struct {
	Name     string
	User     string
	Password string
	Host     string
}

// Validate reports every required field that is still missing. DB_HOST is not
// required; callers default it to DefaultDBHost before validating.
func (c Credentials) Validate() error {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrCredentials, strings.Join(missing, ", "))
	}
	return nil
}
