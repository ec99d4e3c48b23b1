package scheduler

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScheduler(t *testing.T) {
	Convey("Given a scheduler", t, func() {
		s := New()

		Convey("When adding a job with a valid five-field expression", func() {
			err := s.Add("0 3 * * *", func(context.Context) error { return nil }, func(error) {})

			Convey("It should be accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the cron expression is invalid", func() {
			err := s.Add("every tuesday-ish", func(context.Context) error { return nil }, func(error) {})

			Convey("It should be rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())

			done := make(chan struct{})
			go func() {
				s.Run(ctx)
				close(done)
			}()

			cancel()

			Convey("Run should return", func() {
				select {
				case <-done:
				case <-time.After(5 * time.Second):
					t.Fatal("scheduler did not stop")
				}
			})
		})
	})
}
