package types

// ConnectionSnapshot is a point-in-time count of connections by state,
// scoped to one ISP owned by the acting user.
type ConnectionSnapshot struct {
	// ISPID identifies the ISP
	ISPID string `json:"isp_id" yaml:"isp_id"`

	// ISPName is the display name
	ISPName string `json:"isp_name" yaml:"isp_name"`

	// Counts holds the number of connections per state
	Counts map[ConnectionState]int64 `json:"counts" yaml:"counts"`

	// ReportedTotal is the total the backend reported, if any. It may be
	// stale; Counts is authoritative.
	ReportedTotal *int64 `json:"total,omitempty" yaml:"total,omitempty"`
}

// Sum returns the total of all per-state counts
func (s ConnectionSnapshot) Sum() int64 {
	var total int64
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Billable returns the count of connections in billable states
func (s ConnectionSnapshot) Billable() int64 {
	var total int64
	for state, n := range s.Counts {
		if state.Billable() {
			total += n
		}
	}
	return total
}

// ISPUsage is the classified usage of a single ISP
type ISPUsage struct {
	ISPID   string `json:"isp_id"`
	ISPName string `json:"isp_name"`

	// Total is the per-state sum
	Total int64 `json:"total"`

	// ReportedTotal echoes the snapshot's reported total, if any
	ReportedTotal *int64 `json:"reported_total,omitempty"`

	// Billable is active + suspended + damaged
	Billable int64 `json:"billable"`

	// ByState has one entry per known state, zero-filled
	ByState map[ConnectionState]int64 `json:"by_state"`
}

// AggregatedUsage is derived per calculation and never stored
type AggregatedUsage struct {
	// TotalConnections is the sum of per-state counts across all ISPs
	TotalConnections int64 `json:"total_connections"`

	// TotalBillable is the sum of billable-state counts across all ISPs
	TotalBillable int64 `json:"total_billable"`

	// ByState aggregates counts per state across all ISPs, zero-filled
	ByState map[ConnectionState]int64 `json:"by_state"`

	// ByISP is the per-ISP breakdown in input order
	ByISP []ISPUsage `json:"by_isp"`

	// Warnings holds non-fatal anomalies found while classifying
	Warnings []Warning `json:"warnings,omitempty"`
}

// EmptyStateCounts returns a zero-filled per-state map
func EmptyStateCounts() map[ConnectionState]int64 {
	counts := make(map[ConnectionState]int64, len(AllStates))
	for _, s := range AllStates {
		counts[s] = 0
	}
	return counts
}
