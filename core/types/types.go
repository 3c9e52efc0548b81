// Package types defines core domain types shared across all layers.
// This package contains NO business logic beyond the billability policy -
// only type definitions and their accessors.
package types

import (
	"strings"
)

// ConnectionState is the lifecycle state of a subscriber connection
type ConnectionState string

const (
	StateActive       ConnectionState = "active"
	StateSuspended    ConnectionState = "suspended"
	StateLowVoluntary ConnectionState = "low_voluntary"
	StateLowForced    ConnectionState = "low_forced"
	StateDamaged      ConnectionState = "damaged"
)

// AllStates lists every connection state in display order
var AllStates = []ConnectionState{
	StateActive,
	StateSuspended,
	StateDamaged,
	StateLowVoluntary,
	StateLowForced,
}

// String returns the string representation
func (s ConnectionState) String() string {
	return string(s)
}

// IsValid checks if the state is one of the known lifecycle states
func (s ConnectionState) IsValid() bool {
	switch s {
	case StateActive, StateSuspended, StateLowVoluntary, StateLowForced, StateDamaged:
		return true
	default:
		return false
	}
}

// Billable reports whether connections in this state consume plan capacity.
// Exactly active, suspended and damaged are billable.
func (s ConnectionState) Billable() bool {
	switch s {
	case StateActive, StateSuspended, StateDamaged:
		return true
	default:
		return false
	}
}

// stateAliases maps compacted labels (lowercase, no separators) to states.
// The backend reports Spanish labels on older endpoints.
var stateAliases = map[string]ConnectionState{
	"active":         StateActive,
	"activa":         StateActive,
	"activo":         StateActive,
	"suspended":      StateSuspended,
	"suspendida":     StateSuspended,
	"suspendido":     StateSuspended,
	"lowvoluntary":   StateLowVoluntary,
	"bajavoluntaria": StateLowVoluntary,
	"lowforced":      StateLowForced,
	"bajaforzada":    StateLowForced,
	"damaged":        StateDamaged,
	"averiada":       StateDamaged,
	"averiado":       StateDamaged,
}

// ParseConnectionState resolves a provider label such as "low_forced",
// "lowForced", "Low-Forced" or "baja_forzada".
func ParseConnectionState(label string) (ConnectionState, bool) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(label)))
	s, ok := stateAliases[compact]
	return s, ok
}
