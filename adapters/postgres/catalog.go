package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"isp-billing/core/catalog"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

const plansQuery = `SELECT id, name, price::text, connection_limit, price_per_connection::text, features, recommended
	FROM subscription_plans
	WHERE active
	ORDER BY id`

// CatalogProvider reads active plans from the subscription_plans table
type CatalogProvider struct {
	db  *sql.DB
	log *zap.Logger
}

// NewCatalogProvider creates a PostgreSQL catalog provider
func NewCatalogProvider(db *sql.DB) *CatalogProvider {
	return &CatalogProvider{db: db, log: logging.Named("catalog.postgres")}
}

// planRow is one scanned subscription_plans row
type planRow struct {
	ID          string
	Name        sql.NullString
	Price       string
	Limit       sql.NullInt64
	Rate        sql.NullString
	Features    pq.StringArray
	Recommended sql.NullBool
}

// raw maps a row onto a raw plan. A NULL limit is unlimited.
func (r planRow) raw() catalog.RawPlan {
	raw := catalog.RawPlan{
		ID:          r.ID,
		Price:       r.Price,
		Features:    []string(r.Features),
		Recommended: r.Recommended.Bool,
	}
	if r.Name.Valid {
		raw.Name = r.Name.String
	}
	if r.Limit.Valid {
		raw.ConnectionLimit = r.Limit.Int64
	}
	if r.Rate.Valid {
		raw.PricePerConnection = r.Rate.String
	}
	return raw
}

// Plans returns the active catalog, normalized and validated
func (p *CatalogProvider) Plans(ctx context.Context) ([]types.SubscriptionPlan, error) {
	rows, err := p.db.QueryContext(ctx, plansQuery)
	if err != nil {
		return nil, errors.Provider("postgres: query plans", err)
	}
	defer rows.Close()

	var raws []catalog.RawPlan
	for rows.Next() {
		var r planRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Price, &r.Limit, &r.Rate, &r.Features, &r.Recommended); err != nil {
			return nil, errors.Provider("postgres: scan plan", err)
		}
		raws = append(raws, r.raw())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Provider("postgres: read plans", err)
	}

	plans, err := catalog.NormalizeAll(raws)
	if err != nil {
		return nil, err
	}
	p.log.Debug("loaded plan catalog", zap.Int("plans", len(plans)))
	return plans, nil
}
