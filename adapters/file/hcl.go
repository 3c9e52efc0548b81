package file

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"isp-billing/internal/errors"
)

// planSchema is the shape of an HCL catalog:
//
//	plan "basic" {
//	  name                 = "Basic"
//	  price                = 25
//	  connection_limit     = 200
//	  price_per_connection = 0.125
//	  features             = ["SMS", "Reports"]
//	}
//
// connection_limit may be omitted or set to the unlimited keyword.
var planSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "plan", LabelNames: []string{"id"}},
	},
}

// evalContext exposes the keywords plan attributes may reference
var evalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{
		"unlimited": cty.NullVal(cty.Number),
	},
}

// decodeHCLRecords parses an HCL catalog into loosely typed plan records
func decodeHCLRecords(src []byte, filename string) ([]map[string]interface{}, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	content, diags := f.Body.Content(planSchema)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	records := make([]map[string]interface{}, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diagError(filename, diags)
		}

		record := map[string]interface{}{"id": block.Labels[0]}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(evalContext)
			if diags.HasErrors() {
				return nil, diagError(filename, diags)
			}
			v, err := ctyToGo(val)
			if err != nil {
				return nil, errors.Parsing(fmt.Sprintf("%s:%d: plan %q attribute %s", filename, attr.Range.Start.Line, block.Labels[0], name), err)
			}
			record[name] = v
		}
		records = append(records, record)
	}
	return records, nil
}

func diagError(filename string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if d.Subject != nil {
			line = d.Subject.Start.Line
		}
		return errors.Parsing(fmt.Sprintf("%s:%d: %s", filename, line, d.Summary), diags)
	}
	return errors.Parsing(filename, diags)
}

// ctyToGo converts a known cty value into the loosely typed shapes plan
// normalization accepts. Numbers become json.Number so prices keep their
// exact decimal text.
func ctyToGo(val cty.Value) (interface{}, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		return json.Number(val.AsBigFloat().Text('f', -1)), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]interface{}, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]interface{}, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
