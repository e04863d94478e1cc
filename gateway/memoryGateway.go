package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

type storedRecord struct {
	id     string
	fields Record
}

// MemoryGateway is an in-memory Gateway used by tests and the demo binary.
// Insertion order is preserved so List output is deterministic.
type MemoryGateway struct {
	mu     sync.Mutex
	tables map[string][]storedRecord
}

var _ Gateway = (*MemoryGateway)(nil)

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		tables: make(map[string][]storedRecord),
	}
}

func (g *MemoryGateway) List(ctx context.Context, model string, filters Filters) ([]PersistedEntity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var results []PersistedEntity
	for _, rec := range g.tables[model] {
		if !matchesFilters(rec.fields, filters) {
			continue
		}
		results = append(results, PersistedEntity{ID: rec.id, Fields: CloneRecord(rec.fields)})
	}
	return results, nil
}

func (g *MemoryGateway) Create(ctx context.Context, model string, data Record) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := uuid.NewString()
	g.tables[model] = append(g.tables[model], storedRecord{id: id, fields: CloneRecord(data)})
	return id, nil
}

func (g *MemoryGateway) Update(ctx context.Context, model string, id string, data Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, rec := range g.tables[model] {
		if rec.id == id {
			g.tables[model][i].fields = CloneRecord(data)
			return nil
		}
	}
	return utils.ErrorRecordNotFound
}

func (g *MemoryGateway) Delete(ctx context.Context, model string, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := g.tables[model]
	for i, rec := range records {
		if rec.id == id {
			g.tables[model] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return utils.ErrorRecordNotFound
}

func matchesFilters(fields Record, filters Filters) bool {
	for k, want := range filters {
		if fields[k] != want {
			return false
		}
	}
	return true
}
