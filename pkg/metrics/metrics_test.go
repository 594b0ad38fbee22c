package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty or zero option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithMetricPrefix(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "runindex")
				So(manager.subsystem, ShouldEqual, "mirror")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording database metrics", func() {
			So(IncrementDatabaseBuilds, ShouldNotPanic)
			So(func() { RecordDatabaseBuildDuration(12.5) }, ShouldNotPanic)
			So(func() { UpdateDatabaseRows("runs", 42) }, ShouldNotPanic)
			So(func() { UpdateDatabaseWatermark(1700000000) }, ShouldNotPanic)
			So(func() { RecordIntegrityError("foreign_key_missing") }, ShouldNotPanic)
			So(func() { AddRowsDiscarded(3) }, ShouldNotPanic)
		})

		Convey("When recording import metrics", func() {
			So(IncrementImports, ShouldNotPanic)
			So(func() { RecordImportDuration(250) }, ShouldNotPanic)
			So(func() { UpdateImportLastUnix(1700000000) }, ShouldNotPanic)
			So(func() { RecordRecordIngested("game") }, ShouldNotPanic)
			So(func() { RecordNormalizeError("run", "invalid duration") }, ShouldNotPanic)
			So(RecordPlaceholderUser, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() { UpdateQueueSize(10) }, ShouldNotPanic)
			So(func() { UpdateQueueCapacity(1024) }, ShouldNotPanic)
			So(func() { UpdateQueueUtilization(0.5) }, ShouldNotPanic)
			So(RecordQueueEnqueue, ShouldNotPanic)
			So(RecordQueueDequeue, ShouldNotPanic)
			So(RecordQueueEnqueueError, ShouldNotPanic)
			So(func() { UpdateWorkerCount(4) }, ShouldNotPanic)
			So(func() { RecordWorkerProcessingLatency(1.5) }, ShouldNotPanic)
			So(RecordWorkerError, ShouldNotPanic)
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() { RecordHTTPRequest("/leaderboard", "GET", "200") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("/leaderboard", "GET", "200", 3.2) }, ShouldNotPanic)
			So(func() { RecordErrorByComponent("ingest", "decode") }, ShouldNotPanic)
			So(func() { UpdateSystemMemoryUsage(1 << 20) }, ShouldNotPanic)
			So(func() { UpdateSystemGoroutineCount(12) }, ShouldNotPanic)
			So(func() { RecordSystemGCPauseTime(0.3) }, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("When fetching it", func() {
			registry := GetRegistry()

			Convey("Then it should expose the registered metric families", func() {
				So(registry, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
