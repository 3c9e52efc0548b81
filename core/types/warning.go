package types

// WarningCode identifies a non-fatal condition
type WarningCode string

const (
	// WarnDataInconsistency: a snapshot's reported total disagrees with
	// its per-state sum. The per-state sum is used.
	WarnDataInconsistency WarningCode = "DATA_INCONSISTENCY"

	// WarnEmptySnapshotSet: no snapshots were supplied; usage is zero.
	WarnEmptySnapshotSet WarningCode = "EMPTY_SNAPSHOT_SET"
)

// Warning is a non-fatal anomaly recorded alongside a best-effort result
type Warning struct {
	Code    WarningCode `json:"code"`
	ISPID   string      `json:"isp_id,omitempty"`
	Message string      `json:"message"`
}
