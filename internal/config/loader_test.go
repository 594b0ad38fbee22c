package config_test

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/runindex/runindex/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.SnapshotDir, convey.ShouldEqual, "snapshot")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RUNINDEX_ADDR", ":8080")
			_ = os.Setenv("RUNINDEX_SNAPSHOT_DIR", "/data/snapshot")
			_ = os.Setenv("RUNINDEX_QUEUE_SIZE", "50000")
			_ = os.Setenv("RUNINDEX_WORKER_COUNT", "16")
			_ = os.Setenv("RUNINDEX_DUPLICATE_POLICY", "keep_earliest")
			_ = os.Setenv("RUNINDEX_REFRESH_INTERVAL", "15m")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SnapshotDir, convey.ShouldEqual, "/data/snapshot")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 50000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DuplicatePolicy, convey.ShouldEqual, "keep_earliest")
				convey.So(cfg.Refresh(), convey.ShouldEqual, 15*time.Minute)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
snapshot_dir: "/srv/mirror"
queue_size: 30000
worker_count: 4
max_leaderboard_limit: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUNINDEX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SnapshotDir, convey.ShouldEqual, "/srv/mirror")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 30000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When env vars take precedence over the YAML file", func() {
			yamlContent := `
addr: ":9090"
worker_count: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUNINDEX_CONFIG", tmpFile)
			_ = os.Setenv("RUNINDEX_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the env value should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("RUNINDEX_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a value fails validation", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RUNINDEX_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with an invalid config error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the refresh interval does not parse", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RUNINDEX_REFRESH_INTERVAL", "often")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with an invalid config error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RUNINDEX_CONFIG",
		"RUNINDEX_LOG_LEVEL",
		"RUNINDEX_ADDR",
		"RUNINDEX_SNAPSHOT_DIR",
		"RUNINDEX_QUEUE_SIZE",
		"RUNINDEX_WORKER_COUNT",
		"RUNINDEX_MAX_LEADERBOARD_LIMIT",
		"RUNINDEX_DUPLICATE_POLICY",
		"RUNINDEX_REFRESH_INTERVAL",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "runindex-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	return f.Name()
}
