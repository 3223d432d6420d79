package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
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
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording submission metrics", func() {
			Convey("Then it should record created submissions", func() {
				So(func() {
					RecordSubmissionCreated()
					RecordSubmissionCreated()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate submissions", func() {
				So(func() {
					RecordSubmissionDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record rejected submissions by reason", func() {
				So(func() {
					RecordSubmissionRejected("invalid_input")
					RecordSubmissionRejected("entity_not_found")
					RecordSubmissionRejected("storage")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording ledger maintenance metrics", func() {
			Convey("Then it should record compactions", func() {
				So(func() {
					RecordCompaction(5, 12.5)
					RecordCompaction(0, 1.0)
				}, ShouldNotPanic)
			})

			Convey("And it should update ledger gauges", func() {
				So(func() {
					UpdateLedgerRecords(100)
					UpdateEntityCount(12)
				}, ShouldNotPanic)
			})

			Convey("And it should record exports", func() {
				So(func() {
					RecordExport(250)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording store latencies", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					RecordStoreWriteLatency(2.5)
					RecordStoreQueryLatency(7.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("score", "POST", "201")
					RecordHTTPRequestDuration("score", "POST", "201", 4.2)
					RecordErrorByEndpoint("score", "POST", "client_error")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(42)
					RecordSystemGCPauseTime(0.8)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the metrics package", t, func() {
		Convey("When getting the registry", func() {
			registry := GetRegistry()

			Convey("Then it should return the custom registry", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
