// Package metrics provides per-session replay metrics.
//
// The Collector accumulates counters for a single replay session. It is a
// leaf package with no internal dependencies; the Prometheus exporter in this
// package reads Snapshots and never touches collector state directly.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all replay metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Session lifecycle
	PassesStarted  int64
	FilesPlayed    int64
	FilesTruncated int64

	// Message flow
	MessagesEmitted  int64
	MessagesFiltered int64
	MessagesDropped  int64
	DecodeErrors     int64
	LinkWriteFailure int64

	// Images
	ImagesPublished int64
	ImagesSkipped   int64
	PublishFailures int64

	// Parameters
	ParamRequests  int64
	ParamsReplayed int64

	// Synthesized state
	HILSynthesized int64
	HILIncomplete  int64

	// Report storage
	ReportWriteSuccess int64
	ReportWriteFailure int64

	// Dimensions (informational, set at construction)
	SessionID     string
	Link          string
	ImageFormat   string
	ReportBackend string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	passesStarted  int64
	filesPlayed    int64
	filesTruncated int64

	messagesEmitted  int64
	messagesFiltered int64
	messagesDropped  int64
	decodeErrors     int64

	imagesPublished  int64
	imagesSkipped    int64
	publishFailures  int64
	linkWriteFailure int64

	paramRequests  int64
	paramsReplayed int64

	hilSynthesized int64
	hilIncomplete  int64

	reportWriteSuccess int64
	reportWriteFailure int64

	sessionID     string
	link          string
	imageFormat   string
	reportBackend string
}

// NewCollector creates a Collector with dimension labels.
// reportBackend is empty when no report store is configured.
func NewCollector(sessionID, link, imageFormat, reportBackend string) *Collector {
	return &Collector{
		sessionID:     sessionID,
		link:          link,
		imageFormat:   imageFormat,
		reportBackend: reportBackend,
	}
}

// add runs fn under the lock. Nil-receiver safe.
func (c *Collector) add(fn func()) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn()
	c.mu.Unlock()
}

// --- Session lifecycle ---

// IncPassStarted records the start of a playback pass.
func (c *Collector) IncPassStarted() { c.add(func() { c.passesStarted++ }) }

// IncFilePlayed records a recording played to completion or truncation.
func (c *Collector) IncFilePlayed() { c.add(func() { c.filesPlayed++ }) }

// IncFileTruncated records a recording whose playback stopped at a malformed frame.
func (c *Collector) IncFileTruncated() { c.add(func() { c.filesTruncated++ }) }

// --- Message flow ---

// IncMessageEmitted records one message written to the output link.
func (c *Collector) IncMessageEmitted() { c.add(func() { c.messagesEmitted++ }) }

// IncMessageFiltered records a message rejected by the filter condition.
func (c *Collector) IncMessageFiltered() { c.add(func() { c.messagesFiltered++ }) }

// IncMessageDropped records a diagnostic DATA* message dropped unconditionally.
func (c *Collector) IncMessageDropped() { c.add(func() { c.messagesDropped++ }) }

// IncDecodeError records a record that could not be decoded.
func (c *Collector) IncDecodeError() { c.add(func() { c.decodeErrors++ }) }

// IncLinkWriteFailure records a failed write to the output link.
func (c *Collector) IncLinkWriteFailure() { c.add(func() { c.linkWriteFailure++ }) }

// --- Images ---

// IncImagePublished records an image made visible under the stable path.
func (c *Collector) IncImagePublished() { c.add(func() { c.imagesPublished++ }) }

// AddImagesSkipped records images discarded as predating the replay window.
func (c *Collector) AddImagesSkipped(n int) {
	c.add(func() { c.imagesSkipped += int64(n) })
}

// IncPublishFailure records a publication attempt that failed.
func (c *Collector) IncPublishFailure() { c.add(func() { c.publishFailures++ }) }

// --- Parameters ---

// IncParamRequest records an inbound parameter-list request.
func (c *Collector) IncParamRequest() { c.add(func() { c.paramRequests++ }) }

// IncParamReplayed records one cached parameter re-emitted.
func (c *Collector) IncParamReplayed() { c.add(func() { c.paramsReplayed++ }) }

// --- Synthesized state ---

// IncHILSynthesized records one synthesized state message.
func (c *Collector) IncHILSynthesized() { c.add(func() { c.hilSynthesized++ }) }

// IncHILIncomplete records a tick where synthesis lacked source messages.
func (c *Collector) IncHILIncomplete() { c.add(func() { c.hilIncomplete++ }) }

// --- Report storage ---
// Report counters are per-call, not per-record.

// IncReportWriteSuccess records a successful report write.
func (c *Collector) IncReportWriteSuccess() { c.add(func() { c.reportWriteSuccess++ }) }

// IncReportWriteFailure records a failed report write.
func (c *Collector) IncReportWriteFailure() { c.add(func() { c.reportWriteFailure++ }) }

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		PassesStarted:  c.passesStarted,
		FilesPlayed:    c.filesPlayed,
		FilesTruncated: c.filesTruncated,

		MessagesEmitted:  c.messagesEmitted,
		MessagesFiltered: c.messagesFiltered,
		MessagesDropped:  c.messagesDropped,
		DecodeErrors:     c.decodeErrors,

		ImagesPublished:  c.imagesPublished,
		ImagesSkipped:    c.imagesSkipped,
		PublishFailures:  c.publishFailures,
		LinkWriteFailure: c.linkWriteFailure,

		ParamRequests:  c.paramRequests,
		ParamsReplayed: c.paramsReplayed,

		HILSynthesized: c.hilSynthesized,
		HILIncomplete:  c.hilIncomplete,

		ReportWriteSuccess: c.reportWriteSuccess,
		ReportWriteFailure: c.reportWriteFailure,

		SessionID:     c.sessionID,
		Link:          c.link,
		ImageFormat:   c.imageFormat,
		ReportBackend: c.reportBackend,
	}
}
