package domain

import "fmt"

// Profile identifies the remote host a run operates against. It is built once
// from flags and config and never mutated afterwards.
type Profile struct {
	Host       string
	User       string
	KeyPath    string
	Port       int
	RemotePath string
}

// Addr returns the user@host target passed to ssh and rsync.
func (p Profile) Addr() string {
	return fmt.Sprintf("%s@%s", p.User, p.Host)
}
