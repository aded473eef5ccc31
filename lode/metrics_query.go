package lode

import (
	"context"
	"errors"
	"fmt"

	"github.com/justapithecus/lode/lode"
)

// ErrNoMetricsFound is returned when no metrics records exist in the dataset.
var ErrNoMetricsFound = errors.New("no metrics records found")

// QueryLatestMetrics finds the most recent metrics record.
// Filters by sessionID and source if non-empty.
func QueryLatestMetrics(ctx context.Context, ds lode.Dataset, sessionID, source string) (map[string]any, error) {
	var found map[string]any
	err := scanLatestFirst(ctx, ds, RecordKindMetrics, sessionID, source, func(record map[string]any) bool {
		found = record
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNoMetricsFound
	}
	return found, nil
}

// QueryFileResults returns every file_result record of a session in write
// order. sessionID is required.
func QueryFileResults(ctx context.Context, ds lode.Dataset, sessionID string) ([]FileResultRecord, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	var out []FileResultRecord
	err := scanLatestFirst(ctx, ds, RecordKindFileResult, sessionID, "", func(record map[string]any) bool {
		out = append(out, FileResultFromRecord(record))
		return true
	})
	if err != nil {
		return nil, err
	}
	// Reverse into write order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// scanLatestFirst visits matching records from the newest snapshot back.
// Manifest paths are a coarse pre-filter; record fields are authoritative.
// visit returns false to stop.
func scanLatestFirst(
	ctx context.Context,
	ds lode.Dataset,
	kind, sessionID, source string,
	visit func(map[string]any) bool,
) error {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return WrapReadError(err, "flightreplay/snapshots")
	}

	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotHasPartition(snap, "record_kind", kind) ||
			!snapshotHasPartition(snap, "session_id", sessionID) ||
			!snapshotHasPartition(snap, "source", source) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return WrapReadError(err, fmt.Sprintf("flightreplay/snapshot/%s", snap.ID))
		}

		for j := len(data) - 1; j >= 0; j-- {
			record, ok := data[j].(map[string]any)
			if !ok || record["record_kind"] != kind {
				continue
			}
			if sessionID != "" && toString(record["session_id"]) != sessionID {
				continue
			}
			if source != "" && toString(record["source"]) != source {
				continue
			}
			if !visit(record) {
				return nil
			}
		}
	}
	return nil
}
