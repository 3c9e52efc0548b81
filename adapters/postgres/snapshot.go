package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"isp-billing/core/snapshot"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// ISPs without connections still produce one row with a NULL state.
const snapshotsQuery = `SELECT i.id::text, i.name, i.connection_count, c.state, COUNT(c.isp_id)
	FROM isps i
	LEFT JOIN connections c ON c.isp_id = i.id
	WHERE i.owner_id = $1
	GROUP BY i.id, i.name, i.connection_count, c.state
	ORDER BY i.id, c.state`

// SnapshotProvider counts an owner's connections per ISP and state
type SnapshotProvider struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSnapshotProvider creates a PostgreSQL snapshot provider
func NewSnapshotProvider(db *sql.DB) *SnapshotProvider {
	return &SnapshotProvider{db: db, log: logging.Named("snapshot.postgres")}
}

// stateRow is one scanned grouping row
type stateRow struct {
	ISPID    string
	ISPName  sql.NullString
	Reported sql.NullInt64
	State    sql.NullString
	Count    int64
}

func (r stateRow) row() snapshot.StateRow {
	out := snapshot.StateRow{
		ISPID:   r.ISPID,
		ISPName: r.ISPName.String,
		State:   r.State.String,
		Count:   r.Count,
	}
	if r.Reported.Valid {
		n := r.Reported.Int64
		out.Reported = &n
	}
	return out
}

// Snapshots returns one snapshot per ISP the owner holds
func (p *SnapshotProvider) Snapshots(ctx context.Context, ownerID string) ([]types.ConnectionSnapshot, error) {
	rows, err := p.db.QueryContext(ctx, snapshotsQuery, ownerID)
	if err != nil {
		return nil, errors.Provider("postgres: query connections", err)
	}
	defer rows.Close()

	var grouped []snapshot.StateRow
	for rows.Next() {
		var r stateRow
		if err := rows.Scan(&r.ISPID, &r.ISPName, &r.Reported, &r.State, &r.Count); err != nil {
			return nil, errors.Provider("postgres: scan connections", err)
		}
		grouped = append(grouped, r.row())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Provider("postgres: read connections", err)
	}

	snaps, err := snapshot.NormalizeAll(snapshot.FromRows(grouped))
	if err != nil {
		return nil, err
	}
	p.log.Debug("loaded connection snapshots", logging.Owner(ownerID), zap.Int("isps", len(snaps)))
	return snaps, nil
}
