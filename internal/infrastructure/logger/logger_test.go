package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When creating a logger without a log file", func() {
			log, err := New("info", "")

			Convey("It should log to the console only", func() {
				So(err, ShouldBeNil)
				So(log, ShouldNotBeNil)
				So(func() { log.Infof("hello %s", "world") }, ShouldNotPanic)
			})
		})

		Convey("When creating a logger with a log file", func() {
			tempDir, err := os.MkdirTemp("", "wpback_logger_test")
			So(err, ShouldBeNil)
			defer os.RemoveAll(tempDir)

			logFile := filepath.Join(tempDir, "logs", "wpback.log")
			log, err := New("debug", logFile)

			Convey("It should create the log file", func() {
				So(err, ShouldBeNil)

				log.Debugf("debug entry")
				log.Close()

				_, err := os.Stat(logFile)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the level string is invalid", func() {
			log, err := New("chatty", "")

			Convey("It should fall back to info", func() {
				So(err, ShouldBeNil)
				So(log.Desugar().Core().Enabled(zapcore.InfoLevel), ShouldBeTrue)
				So(log.Desugar().Core().Enabled(zapcore.DebugLevel), ShouldBeFalse)
			})
		})
	})
}
