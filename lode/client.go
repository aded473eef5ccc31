package lode

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/types"
)

// LodeClient is a Lode-backed Reporter.
type LodeClient struct {
	dataset lode.Dataset
	config  Config

	storeFactory lode.StoreFactory
	storeOnce    sync.Once
	store        lode.Store
	storeErr     error

	mu sync.Mutex // serializes dataset writes
}

// NewLodeClient creates a client with filesystem storage rooted at root.
func NewLodeClient(cfg Config, root string) (*LodeClient, error) {
	return NewLodeClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewLodeClientWithFactory creates a client with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewLodeClientWithFactory(cfg Config, factory lode.StoreFactory) (*LodeClient, error) {
	cfg = cfg.withDefaults()
	ds, err := newDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return newClient(ds, cfg, factory), nil
}

func newClient(ds lode.Dataset, cfg Config, factory lode.StoreFactory) *LodeClient {
	return &LodeClient{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
	}
}

// Config returns the partitioning in effect.
func (c *LodeClient) Config() Config {
	return c.config
}

// WriteFileResult implements Reporter.
func (c *LodeClient) WriteFileResult(ctx context.Context, result types.FileResult) error {
	return c.write(ctx, toFileResultRecordMap(result, c.config), RecordKindFileResult)
}

// WriteMetrics implements Reporter.
func (c *LodeClient) WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error {
	return c.write(ctx, toMetricsRecordMap(snap, completedAt, c.config), RecordKindMetrics)
}

func (c *LodeClient) write(ctx context.Context, record map[string]any, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.dataset.Write(ctx, []any{record}, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(kind))
	}
	return nil
}

// PutFile writes a sidecar file (e.g. the session summary) next to the
// session's records. The filename must not contain path separators.
func (c *LodeClient) PutFile(ctx context.Context, filename string, data []byte) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid sidecar filename %q", filename)
	}
	c.storeOnce.Do(func() {
		c.store, c.storeErr = c.storeFactory()
	})
	if c.storeErr != nil {
		return WrapInitError(c.storeErr, c.config.Dataset)
	}
	p := c.filePath(filename)
	if err := c.store.Put(ctx, p, bytes.NewReader(data)); err != nil {
		return WrapWriteError(err, p)
	}
	return nil
}

// partitionPath renders the Hive partition a record kind lands in.
func (c *LodeClient) partitionPath(kind string) string {
	return path.Join(
		"source="+c.config.Source,
		"day="+c.config.Day,
		"session_id="+c.config.SessionID,
		"record_kind="+kind,
	)
}

// filePath computes the store path for a sidecar file.
// Format: datasets/<dataset>/partitions/source=<s>/day=<d>/session_id=<id>/files/<filename>
func (c *LodeClient) filePath(filename string) string {
	return fmt.Sprintf("datasets/%s/partitions/source=%s/day=%s/session_id=%s/files/%s",
		c.config.Dataset,
		c.config.Source,
		c.config.Day,
		c.config.SessionID,
		filename,
	)
}

// Close releases client resources.
func (c *LodeClient) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

// Verify LodeClient implements Reporter.
var _ Reporter = (*LodeClient)(nil)
