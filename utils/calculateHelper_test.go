package utils_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

func TestCalculateExtendedAmount(t *testing.T) {
	cases := []struct {
		name     string
		qty      string
		rate     string
		discount string
		want     string
	}{
		{"plain", "2", "10", "0", "20"},
		{"with discount", "1", "5", "1", "4"},
		{"fractional", "2.5", "4.2", "0.2", "10"},
		{"zero qty", "0", "99", "1", "0"},
		// Negative inputs propagate; clamping happens at the input boundary.
		{"negative rate", "2", "-3", "0", "-6"},
		{"discount above rate", "3", "1", "2", "-3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qty, _ := decimal.NewFromString(tc.qty)
			rate, _ := decimal.NewFromString(tc.rate)
			discount, _ := decimal.NewFromString(tc.discount)

			got := utils.CalculateExtendedAmount(qty, rate, discount)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("CalculateExtendedAmount(%s, %s, %s) = %s, want %s", tc.qty, tc.rate, tc.discount, got, tc.want)
			}
		})
	}
}

func TestValidateStructReportsRequiredFields(t *testing.T) {
	type header struct {
		PONumber     string `validate:"required"`
		SupplierName string `validate:"required"`
	}

	msgs := utils.ValidateStruct(&header{PONumber: "PO-1"})
	if len(msgs) != 1 {
		t.Fatalf("expected one validation message, got %v", msgs)
	}
	if msgs[0] != "supplier_name is required" {
		t.Fatalf("unexpected message %q", msgs[0])
	}

	if msgs := utils.ValidateStruct(&header{PONumber: "PO-1", SupplierName: "Acme"}); msgs != nil {
		t.Fatalf("valid struct produced messages %v", msgs)
	}
}

func TestValidationErrorTaxonomy(t *testing.T) {
	err := utils.NewValidationError("line %d is locked", 3)
	if !utils.IsValidationError(err) {
		t.Fatal("NewValidationError result not recognised as validation error")
	}
	if err.Error() != "line 3 is locked" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if utils.IsValidationError(utils.ErrorRecordNotFound) {
		t.Fatal("sentinel error misclassified as validation error")
	}
}
