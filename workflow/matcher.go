package workflow

import (
	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
)

type MatchedPair struct {
	Key       string
	Persisted gateway.PersistedEntity
}

// Partition is the three-way split of a draft collection against the
// server's persisted collection.
type Partition struct {
	Matched  []MatchedPair
	New      []string
	Orphaned []gateway.PersistedEntity
}

// PartitionByNaturalKey walks the draft keys left to right, claiming
// persisted rows by natural key. Whatever stays unclaimed is orphaned,
// reported in persisted-list order so results are deterministic.
func PartitionByNaturalKey(draftKeys []string, persisted []gateway.PersistedEntity, keyOf func(gateway.Record) string) Partition {
	remaining := make(map[string]int, len(persisted))
	claimed := make([]bool, len(persisted))
	for i, p := range persisted {
		remaining[keyOf(p.Fields)] = i
	}

	var part Partition
	for _, key := range draftKeys {
		if i, ok := remaining[key]; ok {
			part.Matched = append(part.Matched, MatchedPair{Key: key, Persisted: persisted[i]})
			claimed[i] = true
			delete(remaining, key)
		} else {
			part.New = append(part.New, key)
		}
	}

	for i, p := range persisted {
		if !claimed[i] {
			part.Orphaned = append(part.Orphaned, p)
		}
	}
	return part
}
