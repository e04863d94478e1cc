// Package gateway abstracts the generic CRUD data service the draft core
// persists through. The core never sees transport or auth; it only issues
// list/create/update/delete calls keyed by a model name.
package gateway

import (
	"context"
)

// Record is the canonical field payload of one entity. Decimal values are
// carried as strings.
type Record map[string]interface{}

// Filters scopes a List call to a parent document (report id, po number).
type Filters map[string]interface{}

// PersistedEntity is the server's last known version of a draft row. The ID
// is assigned by the gateway and never produced client-side.
type PersistedEntity struct {
	ID     string
	Fields Record
}

type Gateway interface {
	List(ctx context.Context, model string, filters Filters) ([]PersistedEntity, error)
	// Create persists a new entity and returns the server-assigned id.
	Create(ctx context.Context, model string, data Record) (string, error)
	Update(ctx context.Context, model string, id string, data Record) error
	Delete(ctx context.Context, model string, id string) error
}

// CloneRecord copies a record one level deep so callers cannot alias stored
// state.
func CloneRecord(data Record) Record {
	out := make(Record, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
