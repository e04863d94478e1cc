package models

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// DraftEntity is one user-editable row of a draft collection. Each kind
// (report column, report variable, order line) implements it so the matcher
// and reconciler stay generic across collections.
type DraftEntity interface {
	Kind() CollectionKind
	// NaturalKey matches draft rows against persisted rows: column/variable
	// name, line part code. Note lines are matched by position.
	NaturalKey() string
	OrderIndex() int
	SetOrderIndex(int)
	// Fields returns the canonical wire payload for the persistence gateway.
	// Decimal values are carried as strings.
	Fields() map[string]interface{}
}

// NaturalKeyFor extracts the natural key from a raw gateway record.
func NaturalKeyFor(kind CollectionKind, fields map[string]interface{}) string {
	switch kind {
	case KindOrderLine:
		if FieldString(fields, "line_type") == string(LineTypeNote) {
			return NoteKey(FieldInt(fields, "order_index"))
		}
		return FieldString(fields, "part_code")
	default:
		return FieldString(fields, "name")
	}
}

// NoteKey is the positional natural key of a note line.
func NoteKey(index int) string {
	return fmt.Sprintf("note:%d", index)
}

func FieldString(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func FieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func FieldDecimal(fields map[string]interface{}, key string) decimal.Decimal {
	switch v := fields[key].(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		return decimal.Zero
	}
}
