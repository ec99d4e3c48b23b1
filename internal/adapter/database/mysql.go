// Package database moves the WordPress MySQL database across the wire by
// driving mysqldump and mysql on the remote host.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wpback/internal/domain"
)

// Logger is the slice of the application logger this package needs.
type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// MySQL implements domain.Database against a remote MySQL server reached
// through the site host's own client binaries.
type MySQL struct {
	runner domain.Runner
	creds  domain.Credentials
	log    Logger
}

func NewMySQL(runner domain.Runner, creds domain.Credentials, log Logger) *MySQL {
	return &MySQL{runner: runner, creds: creds, log: log}
}

// clientArgs renders the shared connection arguments. The password is the
// only value treated as opaque: it is single-quoted for the remote shell and
// never logged.
func (m *MySQL) clientArgs() string {
	return fmt.Sprintf("--user=%s --password=%s --host=%s %s",
		m.creds.User, shellQuote(m.creds.Password), m.creds.Host, m.creds.Name)
}

// Dump streams a full mysqldump of the database into the local file at
// outPath.
func (m *MySQL) Dump(ctx context.Context, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrDump, outPath, err)
	}
	defer f.Close()

	m.log.Infof("Backing up database %s...", m.creds.Name)
	command := "mysqldump " + m.clientArgs()
	if err := m.runner.Stream(ctx, command, f); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDump, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", domain.ErrDump, outPath, err)
	}
	return nil
}

// ClearTables enumerates the existing tables and drops them in one batched
// statement so the import starts from a clean database. Enumeration failure
// only means pre-existing tables stay in place, which the import may then
// trip over; that is accepted rather than fatal. Executing the generated
// drops, however, must succeed.
func (m *MySQL) ClearTables(ctx context.Context) error {
	enumerate := fmt.Sprintf(
		`mysql %s -e "SHOW TABLES" | grep -v Tables_in | xargs -I{} echo "DROP TABLE IF EXISTS {};"`,
		m.clientArgs())

	dropSQL, _, err := m.runner.Output(ctx, enumerate)
	if err != nil {
		m.log.Warnf("Could not enumerate tables in %s, skipping table clearing: %v", m.creds.Name, err)
		return nil
	}
	if strings.TrimSpace(dropSQL) == "" {
		return nil
	}

	m.log.Infof("Dropping existing tables in %s...", m.creds.Name)
	execute := fmt.Sprintf(`mysql %s -e "%s"`, m.clientArgs(), dropSQL)
	if _, _, err := m.runner.Output(ctx, execute); err != nil {
		return fmt.Errorf("%w: dropping existing tables: %v", domain.ErrRestore, err)
	}
	return nil
}

// Import feeds the dump file at dumpPath into the remote mysql client.
func (m *MySQL) Import(ctx context.Context, dumpPath string) error {
	m.log.Infof("Restoring database %s...", m.creds.Name)
	command := "mysql " + m.clientArgs()
	if err := m.runner.Feed(ctx, dumpPath, command); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRestore, err)
	}
	return nil
}

// FindDump locates the dump file for dbName inside dir. The expected name is
// <dbName>.sql; when absent, a single differently named .sql file is accepted
// as the dump, since an archive carries at most one. Zero or several
// candidates without the exact name is a hard failure.
func FindDump(dir, dbName string) (string, error) {
	exact := filepath.Join(dir, dbName+".sql")
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return "", fmt.Errorf("%w: scanning %s: %v", domain.ErrRestore, dir, err)
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: no dump for database %s found in backup", domain.ErrRestore, dbName)
	default:
		return "", fmt.Errorf("%w: dump %s.sql absent and %d other .sql files present, refusing to guess",
			domain.ErrRestore, dbName, len(matches))
	}
}

// shellQuote wraps s in single quotes for the remote shell, escaping any
// embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
