// Package catalog - Boundary normalization
// Plan records arrive loosely typed: prices as numbers or strings, limits as
// null, numbers or "unlimited", features as arrays, plain strings or
// JSON-encoded strings. They are coerced once, here, into
// types.SubscriptionPlan.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// RawPlan is a plan record as decoded from a provider, before coercion
type RawPlan struct {
	ID                 interface{}
	Name               interface{}
	Price              interface{}
	ConnectionLimit    interface{}
	PricePerConnection interface{}
	Features           interface{}
	Recommended        interface{}
}

// fieldAliases maps compacted record keys to RawPlan fields.
var fieldAliases = map[string]string{
	"id":                 "id",
	"planid":             "id",
	"name":               "name",
	"displayname":        "name",
	"nombre":             "name",
	"price":              "price",
	"monthlyprice":       "price",
	"precio":             "price",
	"connectionlimit":    "limit",
	"limit":              "limit",
	"limiteconexiones":   "limit",
	"priceperconnection": "rate",
	"overagerate":        "rate",
	"precioporconexion":  "rate",
	"features":           "features",
	"caracteristicas":    "features",
	"recommended":        "recommended",
	"recomendado":        "recommended",
}

func compactKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(k)))
}

// RawPlanFromRecord maps a decoded record onto RawPlan, accepting
// snake_case, camelCase and the backend's Spanish keys. Unknown keys are
// ignored.
func RawPlanFromRecord(record map[string]interface{}) RawPlan {
	var raw RawPlan
	for k, v := range record {
		switch fieldAliases[compactKey(k)] {
		case "id":
			raw.ID = v
		case "name":
			raw.Name = v
		case "price":
			raw.Price = v
		case "limit":
			raw.ConnectionLimit = v
		case "rate":
			raw.PricePerConnection = v
		case "features":
			raw.Features = v
		case "recommended":
			raw.Recommended = v
		}
	}
	return raw
}

// Normalize coerces a raw record into a validated plan
func Normalize(raw RawPlan) (types.SubscriptionPlan, error) {
	id, err := toText(raw.ID)
	if err != nil || id == "" {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "id is required")
	}

	name, err := toText(raw.Name)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "name: "+err.Error())
	}
	if name == "" {
		name = id
	}

	price, err := toDecimal(raw.Price)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "price: "+err.Error())
	}

	rate, err := toDecimal(raw.PricePerConnection)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "price_per_connection: "+err.Error())
	}

	limit, err := toLimit(raw.ConnectionLimit)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "connection_limit: "+err.Error())
	}

	features, err := toFeatures(raw.Features)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "features: "+err.Error())
	}

	recommended, err := toBool(raw.Recommended)
	if err != nil {
		return types.SubscriptionPlan{}, errors.InvalidPlan(id, "recommended: "+err.Error())
	}

	plan := types.SubscriptionPlan{
		ID:                 id,
		Name:               name,
		Price:              price,
		ConnectionLimit:    limit,
		PricePerConnection: rate,
		Features:           features,
		Recommended:        recommended,
	}
	if err := ValidatePlan(plan); err != nil {
		return types.SubscriptionPlan{}, err
	}
	return plan, nil
}

// NormalizeAll normalizes every record and validates the result as a
// catalog. Input order is preserved.
func NormalizeAll(raws []RawPlan) ([]types.SubscriptionPlan, error) {
	plans := make([]types.SubscriptionPlan, 0, len(raws))
	var firstErr error
	invalid := 0

	for _, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			invalid++
			continue
		}
		plans = append(plans, p)
	}
	if firstErr != nil {
		if invalid == 1 {
			return nil, firstErr
		}
		return nil, errors.Wrap(errors.TypeInvalidPlanData, fmt.Sprintf("%d invalid plans", invalid), firstErr)
	}

	if err := Validate(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// NormalizeRecords is NormalizeAll over decoded records
func NormalizeRecords(records []map[string]interface{}) ([]types.SubscriptionPlan, error) {
	raws := make([]RawPlan, len(records))
	for i, r := range records {
		raws[i] = RawPlanFromRecord(r)
	}
	return NormalizeAll(raws)
}

func toText(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(x), nil
	case fmt.Stringer:
		return strings.TrimSpace(x.String()), nil
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(x), nil
	case float64, float32:
		d, err := toDecimal(x)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return decimal.Zero, fmt.Errorf("value %d out of range", x)
		}
		return decimal.NewFromInt(int64(x)), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(x), "$")
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q is not a number", x)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported value of type %T", v)
	}
}

var unlimitedLabels = map[string]bool{
	"":          true,
	"null":      true,
	"none":      true,
	"unlimited": true,
	"ilimitado": true,
}

func toLimit(v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && unlimitedLabels[strings.ToLower(strings.TrimSpace(s))] {
		return nil, nil
	}

	d, err := toDecimal(v)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative limit %s", d)
	}
	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("fractional limit %s", d)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return nil, fmt.Errorf("limit %s out of range", d)
	}
	n := d.IntPart()
	return &n, nil
}

func toFeatures(v interface{}) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return cleanFeatures(x), nil
	case []interface{}:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, err := featureText(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out = append(out, s)
		}
		return cleanFeatures(out), nil
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var decoded []interface{}
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, fmt.Errorf("malformed JSON feature list: %w", err)
			}
			return toFeatures(decoded)
		}
		sep := ","
		if strings.Contains(s, "\n") {
			sep = "\n"
		}
		return cleanFeatures(strings.Split(s, sep)), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// featureText accepts plain strings and the {name|label|description: ...}
// objects some endpoints return.
func featureText(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case map[string]interface{}:
		for _, k := range []string{"name", "label", "description"} {
			if s, ok := x[k].(string); ok {
				return s, nil
			}
		}
		return "", fmt.Errorf("feature object has no name")
	case bool, int, int64, float64, json.Number:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toBool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "si", "sí":
			return true, nil
		case "", "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("%q is not a boolean", x)
	default:
		d, err := toDecimal(v)
		if err != nil {
			return false, err
		}
		return !d.IsZero(), nil
	}
}
