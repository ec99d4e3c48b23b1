package domain

import "errors"

// One sentinel per failure class. Components wrap these with fmt.Errorf("%w")
// and callers branch with errors.Is; every class except the tolerated
// table-enumeration failure aborts the run.
var (
	ErrCredentials  = errors.New("database credentials")
	ErrTransfer     = errors.New("file transfer")
	ErrDump         = errors.New("database dump")
	ErrRestore      = errors.New("database restore")
	ErrArchive      = errors.New("backup archive")
	ErrPrecondition = errors.New("precondition failed")
)
