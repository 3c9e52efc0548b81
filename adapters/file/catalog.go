// Package file provides plan catalog and connection snapshot providers
// backed by local JSON, YAML or HCL files.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"isp-billing/core/catalog"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// CatalogProvider reads a plan catalog from a file. The decoder is chosen
// by extension: .json, .yaml/.yml or .hcl.
type CatalogProvider struct {
	path string
	log  *zap.Logger
}

// NewCatalogProvider creates a file catalog provider
func NewCatalogProvider(path string) *CatalogProvider {
	return &CatalogProvider{
		path: path,
		log:  logging.Named("catalog.file"),
	}
}

// Plans reads, normalizes and validates the catalog
func (p *CatalogProvider) Plans(ctx context.Context) ([]types.SubscriptionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.Provider(fmt.Sprintf("failed to read catalog %s", p.path), err)
	}

	plans, err := DecodeCatalog(data, p.path)
	if err != nil {
		return nil, err
	}

	p.log.Debug("loaded plan catalog", zap.String("path", p.path), zap.Int("plans", len(plans)))
	return plans, nil
}

// DecodeCatalog decodes catalog bytes, choosing the format from filename's
// extension. JSON and YAML catalogs may be a bare list of plans or an
// object wrapping the list under "plans" or "data".
func DecodeCatalog(data []byte, filename string) ([]types.SubscriptionPlan, error) {
	var (
		records []map[string]interface{}
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		records, err = decodeJSONRecords(data)
	case ".yaml", ".yml":
		records, err = decodeYAMLRecords(data)
	case ".hcl":
		records, err = decodeHCLRecords(data, filename)
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported catalog format %q (want .json, .yaml, .yml or .hcl)", ext)
	}
	if err != nil {
		return nil, err
	}

	return catalog.NormalizeRecords(records)
}

func decodeJSONRecords(data []byte) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Parsing("invalid JSON catalog", err)
	}
	return planRecords(doc)
}

func decodeYAMLRecords(data []byte) ([]map[string]interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("invalid YAML catalog", err)
	}
	return planRecords(doc)
}

// planRecords unwraps the list of plan records from a decoded document
func planRecords(doc interface{}) ([]map[string]interface{}, error) {
	switch d := doc.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(d))
		for i, item := range d {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, errors.Newf(errors.TypeParsing, "plan %d is a %T, not an object", i, item)
			}
			records = append(records, m)
		}
		return records, nil
	case map[string]interface{}:
		for _, key := range []string{"plans", "data"} {
			if inner, ok := d[key]; ok {
				return planRecords(inner)
			}
		}
		return nil, errors.New(errors.TypeParsing, `catalog object has no "plans" or "data" list`)
	default:
		return nil, errors.Newf(errors.TypeParsing, "catalog is a %T, not a list of plans", doc)
	}
}
