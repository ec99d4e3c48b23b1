// Package remote executes commands on the target host through the system
// ssh binary. The binary is used instead of a native SSH client because
// rsync needs it as a transport anyway, and the import pipeline relies on
// real process file descriptors for its broken-pipe behavior.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"wpback/internal/domain"
)

// keyFileMode is the permission set OpenSSH insists on for private keys.
const keyFileMode = os.FileMode(0o600)

// SSHRunner implements domain.Runner over `ssh -i key -p port user@host cmd`.
type SSHRunner struct {
	profile domain.Profile
}

func NewSSH(profile domain.Profile) *SSHRunner {
	return &SSHRunner{profile: profile}
}

func (r *SSHRunner) command(ctx context.Context, remoteCmd string) *exec.Cmd {
	args := []string{
		"-i", r.profile.KeyPath,
		"-p", strconv.Itoa(r.profile.Port),
		r.profile.Addr(),
		remoteCmd,
	}
	return exec.CommandContext(ctx, "ssh", args...)
}

func (r *SSHRunner) Output(ctx context.Context, remoteCmd string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := r.command(ctx, remoteCmd)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("ssh command failed: %w", err)
	}
	return stdout.String(), stderr.String(), nil
}

func (r *SSHRunner) Stream(ctx context.Context, remoteCmd string, out io.Writer) error {
	var stderr bytes.Buffer
	cmd := r.command(ctx, remoteCmd)
	cmd.Stdout = out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ssh command failed: %w (stderr: %s)", err, stderr.String())
	}
	return nil
}

func (r *SSHRunner) Feed(ctx context.Context, path, remoteCmd string) error {
	producer := exec.CommandContext(ctx, "cat", path)
	consumer := r.command(ctx, remoteCmd)
	return pipeline(producer, consumer)
}

// pipeline connects producer's stdout to consumer's stdin and runs both to
// completion. The parent closes its ends of the pipe once both children have
// started, so an early consumer exit delivers SIGPIPE to the producer instead
// of letting it run on into a dead pipe. Both exit statuses are checked; a
// consumer failure takes precedence in the reported error.
func pipeline(producer, consumer *exec.Cmd) error {
	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create pipe: %w", err)
	}

	producer.Stdout = pw
	consumer.Stdin = pr

	var consumerStderr bytes.Buffer
	consumer.Stderr = &consumerStderr

	if err := producer.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("start %s: %w", producer.Path, err)
	}
	if err := consumer.Start(); err != nil {
		pr.Close()
		pw.Close()
		producer.Process.Kill()
		producer.Wait()
		return fmt.Errorf("start %s: %w", consumer.Path, err)
	}

	// Both children hold duplicated descriptors now; the parent's copies
	// must go so the pipe actually breaks when one side dies.
	pw.Close()
	pr.Close()

	producerErr := producer.Wait()
	consumerErr := consumer.Wait()

	if consumerErr != nil {
		return fmt.Errorf("remote command failed: %w (stderr: %s)", consumerErr, consumerStderr.String())
	}
	if producerErr != nil {
		return fmt.Errorf("feeding process failed: %w", producerErr)
	}
	return nil
}

// EnsureKeyPermissions verifies the private key exists and tightens its mode
// to 0600 when needed. It returns true when the mode was changed.
func EnsureKeyPermissions(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("%w: SSH key file %s not found", domain.ErrPrecondition, path)
	}
	if info.Mode().Perm() == keyFileMode {
		return false, nil
	}
	if err := os.Chmod(path, keyFileMode); err != nil {
		return false, fmt.Errorf("%w: cannot fix permissions on %s: %v", domain.ErrPrecondition, path, err)
	}
	return true, nil
}
