package workflow

import (
	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
)

// IdentityMap tracks which natural keys currently hold a server-assigned
// identifier. Rebuilt from the gateway list on every load, then updated
// incrementally per create/update/delete so identity survives repeated
// saves inside one editing session.
type IdentityMap struct {
	ids map[string]string
}

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{ids: make(map[string]string)}
}

func (m *IdentityMap) Rebuild(persisted []gateway.PersistedEntity, keyOf func(gateway.Record) string) {
	m.ids = make(map[string]string, len(persisted))
	for _, p := range persisted {
		m.ids[keyOf(p.Fields)] = p.ID
	}
}

func (m *IdentityMap) Set(key string, id string) {
	m.ids[key] = id
}

func (m *IdentityMap) Get(key string) (string, bool) {
	id, ok := m.ids[key]
	return id, ok
}

func (m *IdentityMap) Delete(key string) {
	delete(m.ids, key)
}

func (m *IdentityMap) Len() int {
	return len(m.ids)
}
