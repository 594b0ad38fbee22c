package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/runindex/runindex/internal/adapters/http/api"
	app "github.com/runindex/runindex/internal/app"
	"github.com/runindex/runindex/internal/config"
	"github.com/runindex/runindex/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("RUNINDEX_ADDR", ":8080")
			_ = os.Setenv("RUNINDEX_QUEUE_SIZE", "1000")
			_ = os.Setenv("RUNINDEX_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("RUNINDEX_ADDR")
				_ = os.Unsetenv("RUNINDEX_QUEUE_SIZE")
				_ = os.Unsetenv("RUNINDEX_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithSnapshotDir("testdata"),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop when the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing snapshot refresher", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop when the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSnapshotRefresher(ctx, svc, time.Hour)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("RUNINDEX_ADDR", ":8080")
			_ = os.Setenv("RUNINDEX_QUEUE_SIZE", "1000")
			_ = os.Setenv("RUNINDEX_WORKER_COUNT", "2")
			defer func() {
				_ = os.Unsetenv("RUNINDEX_ADDR")
				_ = os.Unsetenv("RUNINDEX_QUEUE_SIZE")
				_ = os.Unsetenv("RUNINDEX_WORKER_COUNT")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Load configuration
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				duplicates, err := app.DuplicatePolicyByName(cfg.DuplicatePolicy)
				convey.So(err, convey.ShouldBeNil)

				// Create service (without starting to avoid snapshot dependency)
				svc := app.New(
					app.WithWorkerCount(cfg.WorkerCount),
					app.WithQueueSize(cfg.QueueSize),
					app.WithSnapshotDir(cfg.SnapshotDir),
					app.WithDuplicatePolicy(duplicates),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				// Create HTTP server and register routes
				server := api.NewServer(svc, svc, cfg.MaxLeaderboardLimit)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				server.Register(ctx, mux)

				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("RUNINDEX_ADDR", "")
			defer func() { _ = os.Unsetenv("RUNINDEX_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing an unknown duplicate policy", func() {
			_, err := app.DuplicatePolicyByName("keep_fastest")

			convey.So(err, convey.ShouldWrap, app.ErrUnknownPolicy)
		})
	})
}
