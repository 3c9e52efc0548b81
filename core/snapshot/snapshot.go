// Package snapshot defines how connection snapshots enter the system.
// Providers report per-state counts under free-form labels; they are
// resolved to connection states here, once.
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// Provider fetches the connection snapshots of every ISP an owner holds
type Provider interface {
	Snapshots(ctx context.Context, ownerID string) ([]types.ConnectionSnapshot, error)
}

// RawSnapshot is a snapshot as decoded from a provider or request body
type RawSnapshot struct {
	ISPID   string           `json:"isp_id" yaml:"isp_id"`
	ISPName string           `json:"isp_name,omitempty" yaml:"isp_name,omitempty"`
	Counts  map[string]int64 `json:"counts" yaml:"counts"`
	Total   *int64           `json:"total,omitempty" yaml:"total,omitempty"`
}

// Normalize resolves count labels to connection states. Labels naming the
// same state ("damaged", "averiada") are summed. An unknown label is an
// input error.
func (r RawSnapshot) Normalize() (types.ConnectionSnapshot, error) {
	snap := types.ConnectionSnapshot{
		ISPID:         strings.TrimSpace(r.ISPID),
		ISPName:       strings.TrimSpace(r.ISPName),
		Counts:        make(map[types.ConnectionState]int64, len(r.Counts)),
		ReportedTotal: r.Total,
	}

	// Sorted so the first unknown label reported is stable
	labels := make([]string, 0, len(r.Counts))
	for label := range r.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		state, ok := types.ParseConnectionState(label)
		if !ok {
			return types.ConnectionSnapshot{}, errors.Newf(errors.TypeInput, "isp %q: unknown connection state %q", r.ISPID, label).
				WithContext("isp_id", r.ISPID)
		}
		snap.Counts[state] += r.Counts[label]
	}
	return snap, nil
}

// NormalizeAll normalizes raw snapshots in order
func NormalizeAll(raws []RawSnapshot) ([]types.ConnectionSnapshot, error) {
	snaps := make([]types.ConnectionSnapshot, 0, len(raws))
	for i, raw := range raws {
		s, err := raw.Normalize()
		if err != nil {
			return nil, errors.Wrap(errors.TypeInput, fmt.Sprintf("snapshot %d", i), err)
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// StateRow is one (isp, state, count) row as grouped by a database
type StateRow struct {
	ISPID   string
	ISPName string
	State   string
	Count   int64

	// Reported is the ISP's denormalized connection count, if stored
	Reported *int64
}

// FromRows folds grouped rows into one raw snapshot per ISP, in order of
// first appearance.
func FromRows(rows []StateRow) []RawSnapshot {
	var out []RawSnapshot
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.ISPID]
		if !ok {
			i = len(out)
			index[row.ISPID] = i
			out = append(out, RawSnapshot{
				ISPID:   row.ISPID,
				ISPName: row.ISPName,
				Counts:  make(map[string]int64),
				Total:   row.Reported,
			})
		}
		if row.State != "" {
			out[i].Counts[row.State] += row.Count
		}
	}
	return out
}
