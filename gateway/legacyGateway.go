package gateway

import (
	"context"
)

// wireFieldNames maps canonical field names to the legacy data dictionary
// mnemonics the old CRUD endpoint speaks. One table per model, consulted
// only at this boundary; the core deals in canonical names exclusively.
var wireFieldNames = map[string]map[string]string{
	"order_lines": {
		"part_code":       "LITM",
		"description":     "DSC1",
		"line_type":       "LNTY",
		"source":          "SRCE",
		"quantity":        "UORG",
		"unit_rate":       "PRRC",
		"discount":        "DSPR",
		"freight":         "FRTA",
		"received_qty":    "UREC",
		"extended_amount": "AEXP",
		"order_index":     "LNID",
		"po_number":       "DOCO",
	},
	"report_columns": {
		"name":        "CLNM",
		"label":       "CLBL",
		"type_ref":    "CTYP",
		"width":       "CWID",
		"order_index": "CSEQ",
		"report_id":   "RPID",
	},
	"report_variables": {
		"name":          "VNAM",
		"label":         "VLBL",
		"data_type":     "VTYP",
		"default_value": "VDFT",
		"order_index":   "VSEQ",
		"report_id":     "RPID",
	},
}

// LegacyFieldGateway decorates another Gateway, translating canonical field
// names to legacy wire mnemonics on the way out and back on the way in.
// Unknown fields pass through unchanged.
type LegacyFieldGateway struct {
	next Gateway
}

var _ Gateway = (*LegacyFieldGateway)(nil)

func NewLegacyFieldGateway(next Gateway) *LegacyFieldGateway {
	return &LegacyFieldGateway{next: next}
}

func (g *LegacyFieldGateway) List(ctx context.Context, model string, filters Filters) ([]PersistedEntity, error) {
	wireFilters := Filters(translateRecord(Record(filters), wireFieldNames[model]))
	results, err := g.next.List(ctx, model, wireFilters)
	if err != nil {
		return nil, err
	}

	canonical := canonicalFieldNames(model)
	for i := range results {
		results[i].Fields = translateRecord(results[i].Fields, canonical)
	}
	return results, nil
}

func (g *LegacyFieldGateway) Create(ctx context.Context, model string, data Record) (string, error) {
	return g.next.Create(ctx, model, translateRecord(data, wireFieldNames[model]))
}

func (g *LegacyFieldGateway) Update(ctx context.Context, model string, id string, data Record) error {
	return g.next.Update(ctx, model, id, translateRecord(data, wireFieldNames[model]))
}

func (g *LegacyFieldGateway) Delete(ctx context.Context, model string, id string) error {
	return g.next.Delete(ctx, model, id)
}

func translateRecord(data Record, names map[string]string) Record {
	if len(names) == 0 || len(data) == 0 {
		return data
	}
	out := make(Record, len(data))
	for k, v := range data {
		if wire, ok := names[k]; ok {
			out[wire] = v
		} else {
			out[k] = v
		}
	}
	return out
}

func canonicalFieldNames(model string) map[string]string {
	wire := wireFieldNames[model]
	reverse := make(map[string]string, len(wire))
	for canonical, mnemonic := range wire {
		reverse[mnemonic] = canonical
	}
	return reverse
}
