// Package classify turns raw per-ISP connection counts into aggregated
// billable usage. It is a pure function of its input.
package classify

import (
	"fmt"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// Classify aggregates snapshots into usage totals and a per-ISP breakdown.
//
// An empty snapshot set yields zero usage with an EMPTY_SNAPSHOT_SET
// warning. A reported total that disagrees with the per-state sum yields a
// DATA_INCONSISTENCY warning and the per-state sum is used. Unknown states
// and negative counts are input errors.
func Classify(snapshots []types.ConnectionSnapshot) (types.AggregatedUsage, error) {
	usage := types.AggregatedUsage{
		ByState: types.EmptyStateCounts(),
		ByISP:   make([]types.ISPUsage, 0, len(snapshots)),
	}

	if len(snapshots) == 0 {
		usage.Warnings = append(usage.Warnings, types.Warning{
			Code:    types.WarnEmptySnapshotSet,
			Message: "no connection snapshots supplied; usage treated as zero",
		})
		return usage, nil
	}

	for i, snap := range snapshots {
		isp, err := classifyOne(snap)
		if err != nil {
			return types.AggregatedUsage{}, errors.Wrapf(errors.TypeInput, err, "snapshot %d (isp %q)", i, snap.ISPID)
		}

		if snap.ReportedTotal != nil && *snap.ReportedTotal != isp.Total {
			usage.Warnings = append(usage.Warnings, types.Warning{
				Code:    types.WarnDataInconsistency,
				ISPID:   snap.ISPID,
				Message: fmt.Sprintf("reported total %d does not match per-state sum %d; using per-state sum", *snap.ReportedTotal, isp.Total),
			})
		}

		for state, n := range isp.ByState {
			usage.ByState[state] += n
		}
		usage.TotalConnections += isp.Total
		usage.TotalBillable += isp.Billable
		usage.ByISP = append(usage.ByISP, isp)
	}

	return usage, nil
}

func classifyOne(snap types.ConnectionSnapshot) (types.ISPUsage, error) {
	isp := types.ISPUsage{
		ISPID:   snap.ISPID,
		ISPName: snap.ISPName,
		ByState: types.EmptyStateCounts(),
	}
	if snap.ReportedTotal != nil {
		reported := *snap.ReportedTotal
		isp.ReportedTotal = &reported
	}

	for state, n := range snap.Counts {
		if !state.IsValid() {
			return types.ISPUsage{}, fmt.Errorf("unknown connection state %q", state)
		}
		if n < 0 {
			return types.ISPUsage{}, fmt.Errorf("negative count %d for state %s", n, state)
		}
		isp.ByState[state] += n
		isp.Total += n
		if state.Billable() {
			isp.Billable += n
		}
	}
	return isp, nil
}
