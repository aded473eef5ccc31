package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("01HSESSION", "udp", "pgm", "fs")

	c.IncPassStarted()
	c.IncFilePlayed()
	c.IncFilePlayed()
	c.IncFileTruncated()
	c.IncMessageEmitted()
	c.IncMessageEmitted()
	c.IncMessageEmitted()
	c.IncMessageFiltered()
	c.IncMessageDropped()
	c.IncDecodeError()
	c.IncLinkWriteFailure()
	c.IncImagePublished()
	c.AddImagesSkipped(4)
	c.IncPublishFailure()
	c.IncParamRequest()
	c.IncParamReplayed()
	c.IncParamReplayed()
	c.IncHILSynthesized()
	c.IncHILIncomplete()
	c.IncReportWriteSuccess()
	c.IncReportWriteFailure()

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"PassesStarted", s.PassesStarted, 1},
		{"FilesPlayed", s.FilesPlayed, 2},
		{"FilesTruncated", s.FilesTruncated, 1},
		{"MessagesEmitted", s.MessagesEmitted, 3},
		{"MessagesFiltered", s.MessagesFiltered, 1},
		{"MessagesDropped", s.MessagesDropped, 1},
		{"DecodeErrors", s.DecodeErrors, 1},
		{"LinkWriteFailure", s.LinkWriteFailure, 1},
		{"ImagesPublished", s.ImagesPublished, 1},
		{"ImagesSkipped", s.ImagesSkipped, 4},
		{"PublishFailures", s.PublishFailures, 1},
		{"ParamRequests", s.ParamRequests, 1},
		{"ParamsReplayed", s.ParamsReplayed, 2},
		{"HILSynthesized", s.HILSynthesized, 1},
		{"HILIncomplete", s.HILIncomplete, 1},
		{"ReportWriteSuccess", s.ReportWriteSuccess, 1},
		{"ReportWriteFailure", s.ReportWriteFailure, 1},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_Dimensions(t *testing.T) {
	c := NewCollector("01HSESSION", "tcp", "jpeg", "s3")
	s := c.Snapshot()

	if s.SessionID != "01HSESSION" {
		t.Errorf("SessionID = %q", s.SessionID)
	}
	if s.Link != "tcp" {
		t.Errorf("Link = %q", s.Link)
	}
	if s.ImageFormat != "jpeg" {
		t.Errorf("ImageFormat = %q", s.ImageFormat)
	}
	if s.ReportBackend != "s3" {
		t.Errorf("ReportBackend = %q", s.ReportBackend)
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector

	// None of these should panic
	c.IncPassStarted()
	c.IncMessageEmitted()
	c.AddImagesSkipped(3)
	c.IncParamReplayed()
	c.IncReportWriteFailure()

	s := c.Snapshot()
	if s.MessagesEmitted != 0 {
		t.Errorf("nil collector snapshot should be zero, got %d", s.MessagesEmitted)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("s", "udp", "pgm", "")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.IncMessageEmitted()
		}()
		go func() {
			defer wg.Done()
			c.IncParamRequest()
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.MessagesEmitted != 50 {
		t.Errorf("MessagesEmitted = %d, want 50", s.MessagesEmitted)
	}
	if s.ParamRequests != 50 {
		t.Errorf("ParamRequests = %d, want 50", s.ParamRequests)
	}
}

func TestCollector_SnapshotIsDetached(t *testing.T) {
	c := NewCollector("s", "udp", "pgm", "")
	c.IncImagePublished()
	s := c.Snapshot()
	c.IncImagePublished()

	if s.ImagesPublished != 1 {
		t.Errorf("snapshot mutated after creation: %d", s.ImagesPublished)
	}
}
