package remote

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"wpback/internal/domain"
)

func TestPipeline(t *testing.T) {
	Convey("Given a producer piped into a consumer", t, func() {
		tempDir, err := os.MkdirTemp("", "wpback_pipe_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		dump := filepath.Join(tempDir, "dump.sql")
		So(os.WriteFile(dump, []byte("CREATE TABLE t (id INT);\n"), 0o644), ShouldBeNil)

		Convey("When both processes succeed", func() {
			sink := filepath.Join(tempDir, "sink")
			producer := exec.Command("cat", dump)
			consumer := exec.Command("sh", "-c", "cat > "+sink)

			err := pipeline(producer, consumer)

			Convey("The consumer should receive every byte", func() {
				So(err, ShouldBeNil)
				got, err := os.ReadFile(sink)
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "CREATE TABLE t (id INT);\n")
			})
		})

		Convey("When the consumer exits nonzero", func() {
			producer := exec.Command("cat", dump)
			consumer := exec.Command("sh", "-c", "exit 3")

			err := pipeline(producer, consumer)

			Convey("The pipeline should fail even though the producer is fine", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "remote command failed")
			})
		})

		Convey("When the consumer quits before reading everything", func() {
			// A producer much larger than the pipe buffer; without the
			// parent closing its pipe ends this would hang forever.
			producer := exec.Command("sh", "-c", "yes | head -c 10000000; true")
			consumer := exec.Command("sh", "-c", "head -c 10 > /dev/null; exit 1")

			err := pipeline(producer, consumer)

			Convey("The producer should be torn down and the failure reported", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the producer exits nonzero but the consumer succeeds", func() {
			producer := exec.Command("sh", "-c", "echo partial; exit 9")
			consumer := exec.Command("sh", "-c", "cat > /dev/null")

			err := pipeline(producer, consumer)

			Convey("The producer failure should still surface", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "feeding process failed")
			})
		})
	})
}

func TestEnsureKeyPermissions(t *testing.T) {
	Convey("Given an SSH key file", t, func() {
		tempDir, err := os.MkdirTemp("", "wpback_key_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		key := filepath.Join(tempDir, "id_ed25519")

		Convey("When the key already has mode 0600", func() {
			So(os.WriteFile(key, []byte("key"), 0o600), ShouldBeNil)

			fixed, err := EnsureKeyPermissions(key)

			Convey("Nothing should change", func() {
				So(err, ShouldBeNil)
				So(fixed, ShouldBeFalse)
			})
		})

		Convey("When the key is too permissive", func() {
			So(os.WriteFile(key, []byte("key"), 0o644), ShouldBeNil)

			fixed, err := EnsureKeyPermissions(key)

			Convey("The mode should be tightened to 0600", func() {
				So(err, ShouldBeNil)
				So(fixed, ShouldBeTrue)
				info, err := os.Stat(key)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
			})
		})

		Convey("When the key does not exist", func() {
			_, err := EnsureKeyPermissions(filepath.Join(tempDir, "missing"))

			Convey("It should be a precondition failure", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, domain.ErrPrecondition), ShouldBeTrue)
			})
		})
	})
}
