package service_test

import (
	"context"
	"testing"

	service "github.com/runindex/runindex/internal/app"
	"github.com/runindex/runindex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithSnapshotDir("testdata"),
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_NotReady(t *testing.T) {
	Convey("Given a service that has not imported anything", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When querying before the first import", func() {
			_, boardErr := svc.Leaderboard(ctx, "super-metroid", "anypercent", "", false)
			_, progressErr := svc.Progress(ctx, "super-metroid", "anypercent", "alice")
			_, gameErr := svc.GameBySlug(ctx, "super-metroid")
			_, _, nodeErr := svc.Node(ctx, "AQAAAAAAACo")

			Convey("Then every query should report not ready", func() {
				So(boardErr, ShouldWrap, service.ErrNotReady)
				So(progressErr, ShouldWrap, service.ErrNotReady)
				So(gameErr, ShouldWrap, service.ErrNotReady)
				So(nodeErr, ShouldWrap, service.ErrNotReady)
			})
		})

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then they should report the unstarted state", func() {
				So(stats["started"], ShouldBeFalse)
				So(stats, ShouldNotContainKey, "rows")
			})
		})
	})
}

func TestDuplicatePolicyByName(t *testing.T) {
	Convey("Given policy names", t, func() {
		Convey("When resolving known names", func() {
			for _, name := range []string{"", "drop_all", "keep_earliest", "Keep_Earliest"} {
				policy, err := service.DuplicatePolicyByName(name)
				So(err, ShouldBeNil)
				So(policy, ShouldNotBeNil)
			}
		})

		Convey("When resolving an unknown name", func() {
			_, err := service.DuplicatePolicyByName("majority_vote")

			Convey("Then it should report the unknown policy", func() {
				So(err, ShouldWrap, service.ErrUnknownPolicy)
			})
		})
	})
}

func TestService_StartWithMissingSnapshot(t *testing.T) {
	Convey("Given a service pointed at an empty directory", t, func() {
		svc := service.New(service.WithSnapshotDir(t.TempDir()))
		defer svc.Stop()

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail instead of serving nothing", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
