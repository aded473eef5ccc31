package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flightreplay"

// counterDef binds a Prometheus counter description to a Snapshot field.
type counterDef struct {
	desc  *prometheus.Desc
	value func(Snapshot) int64
}

// Exporter exposes a Collector as Prometheus counters.
// Values are read from a fresh Snapshot on every scrape.
type Exporter struct {
	collector *Collector
	counters  []counterDef
}

var constLabels = []string{"session_id", "link", "image_format"}

func newCounter(name, help string, value func(Snapshot) int64) counterDef {
	return counterDef{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, constLabels, nil),
		value: value,
	}
}

// NewExporter creates an Exporter reading from c.
func NewExporter(c *Collector) *Exporter {
	return &Exporter{
		collector: c,
		counters: []counterDef{
			newCounter("passes_started_total", "Playback passes started.", func(s Snapshot) int64 { return s.PassesStarted }),
			newCounter("files_played_total", "Recordings played.", func(s Snapshot) int64 { return s.FilesPlayed }),
			newCounter("files_truncated_total", "Recordings stopped at a malformed frame.", func(s Snapshot) int64 { return s.FilesTruncated }),
			newCounter("messages_emitted_total", "Messages written to the output link.", func(s Snapshot) int64 { return s.MessagesEmitted }),
			newCounter("messages_filtered_total", "Messages rejected by the filter condition.", func(s Snapshot) int64 { return s.MessagesFiltered }),
			newCounter("messages_dropped_total", "Diagnostic messages dropped.", func(s Snapshot) int64 { return s.MessagesDropped }),
			newCounter("decode_errors_total", "Records that failed to decode.", func(s Snapshot) int64 { return s.DecodeErrors }),
			newCounter("link_write_failures_total", "Failed writes to the output link.", func(s Snapshot) int64 { return s.LinkWriteFailure }),
			newCounter("images_published_total", "Images published under the stable path.", func(s Snapshot) int64 { return s.ImagesPublished }),
			newCounter("images_skipped_total", "Images discarded as predating the replay window.", func(s Snapshot) int64 { return s.ImagesSkipped }),
			newCounter("publish_failures_total", "Failed image publications.", func(s Snapshot) int64 { return s.PublishFailures }),
			newCounter("param_requests_total", "Inbound parameter-list requests.", func(s Snapshot) int64 { return s.ParamRequests }),
			newCounter("params_replayed_total", "Cached parameters re-emitted.", func(s Snapshot) int64 { return s.ParamsReplayed }),
			newCounter("hil_synthesized_total", "Synthesized state messages emitted.", func(s Snapshot) int64 { return s.HILSynthesized }),
			newCounter("hil_incomplete_total", "Ticks skipped for missing synthesis sources.", func(s Snapshot) int64 { return s.HILIncomplete }),
			newCounter("report_write_success_total", "Successful report writes.", func(s Snapshot) int64 { return s.ReportWriteSuccess }),
			newCounter("report_write_failure_total", "Failed report writes.", func(s Snapshot) int64 { return s.ReportWriteFailure }),
		},
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range e.counters {
		ch <- c.desc
	}
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.collector.Snapshot()
	for _, c := range e.counters {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(c.value(s)),
			s.SessionID, s.Link, s.ImageFormat)
	}
}

// Handler returns an HTTP handler serving the collector on a private registry.
func Handler(c *Collector) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewExporter(c))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Verify Exporter implements prometheus.Collector.
var _ prometheus.Collector = (*Exporter)(nil)
