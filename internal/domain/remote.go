package domain

import (
	"context"
	"io"
)

// Runner executes commands on the remote host.
type Runner interface {
	// Output runs command remotely and captures stdout and stderr.
	Output(ctx context.Context, command string) (stdout, stderr string, err error)

	// Stream runs command remotely, writing its stdout to out.
	Stream(ctx context.Context, command string, out io.Writer) error

	// Feed streams the bytes of the local file at path into the standard
	// input of command running remotely.
	Feed(ctx context.Context, path, command string) error
}

// Mirror synchronizes a directory tree between the local and remote host.
type Mirror interface {
	// Pull mirrors the remote tree into localDir without deleting
	// extraneous local entries.
	Pull(ctx context.Context, remotePath, localDir string) error

	// Push mirrors localDir onto the remote tree, deleting remote entries
	// that are absent locally.
	Push(ctx context.Context, localDir, remotePath string) error
}

// Database performs the remote database half of a backup or restore.
type Database interface {
	// Dump writes a full dump of the database to the local file at outPath.
	Dump(ctx context.Context, outPath string) error

	// ClearTables drops every existing table in the database. Failure to
	// enumerate tables is tolerated and returns nil; failure to execute
	// the generated drop statements is not.
	ClearTables(ctx context.Context) error

	// Import replays the local dump file at dumpPath into the database.
	Import(ctx context.Context, dumpPath string) error
}

// CredentialSource resolves the database credentials of the target site.
type CredentialSource interface {
	// FromRemote reads wp-config.php on the remote host.
	FromRemote(ctx context.Context) (Credentials, error)

	// ForRestore resolves credentials for a restore run: operator override
	// first, then the remote wp-config.php, then a wp-config.php found
	// under filesDir (the just-extracted archive).
	ForRestore(ctx context.Context, filesDir string, override *Credentials) (Credentials, error)
}

// Uploader ships a finished backup artifact to an off-host storage target.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteName string) error
}
