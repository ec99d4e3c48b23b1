// Package wpconfig extracts MySQL credentials from a WordPress
// wp-config.php, either by grepping it on the remote host or by reading a
// local copy out of an extracted backup.
package wpconfig

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wpback/internal/domain"
)

// ConfigFileName is the WordPress configuration file holding the DB defines.
const ConfigFileName = "wp-config.php"

var markers = []string{"DB_NAME", "DB_USER", "DB_PASSWORD", "DB_HOST"}

// Parse scans wp-config.php content for the four DB_* defines. Keys and
// values may each use single or double quotes independently; the first
// occurrence of a marker wins. DB_HOST defaults to localhost; any other
// missing marker makes the whole parse fail.
func Parse(r io.Reader) (domain.Credentials, error) {
	found := make(map[string]string, len(markers))

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		for _, key := range markers {
			if _, ok := found[key]; ok {
				continue
			}
			if value, ok := scanDefine(line, key); ok {
				found[key] = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: reading wp-config content: %v", domain.ErrCredentials, err)
	}

	creds := domain.Credentials{
		Name:     found["DB_NAME"],
		User:     found["DB_USER"],
		Password: found["DB_PASSWORD"],
		Host:     found["DB_HOST"],
	}
	if creds.Host == "" {
		creds.Host = domain.DefaultDBHost
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, fmt.Errorf("wp-config.php: %w", err)
	}
	return creds, nil
}

// scanDefine pulls the value out of a `define('KEY', 'value')` line. The key
// must be wrapped in a matching pair of quotes; the value quote style is
// independent of the key's. Empty values count as absent.
func scanDefine(line, key string) (string, bool) {
	idx := strings.Index(line, key)
	if idx < 1 {
		return "", false
	}

	keyQuote := line[idx-1]
	if keyQuote != '\'' && keyQuote != '"' {
		return "", false
	}
	rest := line[idx+len(key):]
	if len(rest) == 0 || rest[0] != keyQuote {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if !strings.HasPrefix(rest, ",") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if len(rest) == 0 {
		return "", false
	}

	valueQuote := rest[0]
	if valueQuote != '\'' && valueQuote != '"' {
		return "", false
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, valueQuote)
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

// Logger is the slice of the application logger the resolver needs.
type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Resolver obtains credentials for the configured site.
type Resolver struct {
	runner     domain.Runner
	remotePath string
	log        Logger
}

func NewResolver(runner domain.Runner, remotePath string, log Logger) *Resolver {
	return &Resolver{runner: runner, remotePath: remotePath, log: log}
}

// FromRemote greps the DB_* defines out of the remote wp-config.php and
// parses the matching lines.
func (r *Resolver) FromRemote(ctx context.Context) (domain.Credentials, error) {
	configPath := r.remotePath + "/" + ConfigFileName
	command := fmt.Sprintf("grep -E %q %s", strings.Join(markers, "|"), configPath)

	stdout, stderr, err := r.runner.Output(ctx, command)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: cannot read %s: %v (stderr: %s)",
			domain.ErrCredentials, configPath, err, strings.TrimSpace(stderr))
	}
	return Parse(strings.NewReader(stdout))
}

// FromFile parses a local wp-config.php, typically one extracted from a
// previous backup.
func (r *Resolver) FromFile(path string) (domain.Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: cannot open %s: %v", domain.ErrCredentials, path, err)
	}
	defer f.Close()
	return Parse(f)
}

// ForRestore resolves credentials for a restore run. An operator override
// short-circuits everything; otherwise the remote config is tried first and
// a wp-config.php inside the extracted files tree is the fallback, since the
// remote one may not exist until files are restored.
func (r *Resolver) ForRestore(ctx context.Context, filesDir string, override *domain.Credentials) (domain.Credentials, error) {
	if override != nil {
		creds := *override
		if creds.Host == "" {
			creds.Host = domain.DefaultDBHost
		}
		if err := creds.Validate(); err != nil {
			return domain.Credentials{}, err
		}
		return creds, nil
	}

	creds, err := r.FromRemote(ctx)
	if err == nil {
		return creds, nil
	}
	r.log.Warnf("Could not read remote wp-config.php: %v", err)

	local := filepath.Join(filesDir, ConfigFileName)
	if _, statErr := os.Stat(local); statErr != nil {
		return domain.Credentials{}, fmt.Errorf("%w: remote wp-config.php unreadable and backup contains no %s",
			domain.ErrCredentials, ConfigFileName)
	}
	r.log.Infof("Extracting database credentials from wp-config.php inside the backup")
	return r.FromFile(local)
}
