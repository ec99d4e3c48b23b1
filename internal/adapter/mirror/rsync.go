// Package mirror wraps rsync for one-directional tree synchronization
// between the local machine and the remote host.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"wpback/internal/domain"
)

// Rsync implements domain.Mirror with `rsync -avz` over an ssh transport.
// Backups pull without deletion so snapshots stay additive; restores push
// with --delete so the live tree becomes exactly the backed-up tree.
type Rsync struct {
	profile domain.Profile
}

func NewRsync(profile domain.Profile) *Rsync {
	return &Rsync{profile: profile}
}

func (r *Rsync) transport() string {
	return fmt.Sprintf("ssh -i %s -p %d", r.profile.KeyPath, r.profile.Port)
}

func (r *Rsync) Pull(ctx context.Context, remotePath, localDir string) error {
	src := fmt.Sprintf("%s:%s/", r.profile.Addr(), remotePath)
	return r.run(ctx, false, src, localDir+"/")
}

func (r *Rsync) Push(ctx context.Context, localDir, remotePath string) error {
	dst := fmt.Sprintf("%s:%s/", r.profile.Addr(), remotePath)
	return r.run(ctx, true, localDir+"/", dst)
}

func (r *Rsync) run(ctx context.Context, withDelete bool, src, dst string) error {
	args := []string{"-avz"}
	if withDelete {
		args = append(args, "--delete")
	}
	args = append(args, "-e", r.transport(), src, dst)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "rsync", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: rsync %s -> %s: %v (stderr: %s)",
			domain.ErrTransfer, src, dst, err, stderr.String())
	}
	return nil
}
