package gateway_test

import (
	"context"
	"testing"

	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
)

// The legacy CRUD endpoint speaks data-dictionary mnemonics; the core speaks
// canonical names. The decorator must translate at the boundary in both
// directions.
func TestLegacyFieldGatewayTranslatesAtBoundary(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryGateway()
	gw := gateway.NewLegacyFieldGateway(store)

	_, err := gw.Create(ctx, "order_lines", gateway.Record{
		"part_code": "A-100",
		"quantity":  "2",
		"po_number": "PO-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := store.List(ctx, "order_lines", nil)
	if err != nil {
		t.Fatalf("raw List: %v", err)
	}
	if raw[0].Fields["LITM"] != "A-100" || raw[0].Fields["UORG"] != "2" || raw[0].Fields["DOCO"] != "PO-1" {
		t.Fatalf("stored record not in wire mnemonics: %+v", raw[0].Fields)
	}
	if _, leaked := raw[0].Fields["part_code"]; leaked {
		t.Fatal("canonical field name leaked past the gateway boundary")
	}

	listed, err := gw.List(ctx, "order_lines", gateway.Filters{"po_number": "PO-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("canonical filter did not match wire record: %+v", listed)
	}
	if listed[0].Fields["part_code"] != "A-100" || listed[0].Fields["quantity"] != "2" {
		t.Fatalf("listed record not translated back to canonical names: %+v", listed[0].Fields)
	}
}

func TestLegacyFieldGatewayPassesUnknownFieldsThrough(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryGateway()
	gw := gateway.NewLegacyFieldGateway(store)

	if _, err := gw.Create(ctx, "order_lines", gateway.Record{"part_code": "A", "custom_flag": true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, _ := store.List(ctx, "order_lines", nil)
	if raw[0].Fields["custom_flag"] != true {
		t.Fatalf("unknown field dropped: %+v", raw[0].Fields)
	}
}
