package workflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"bitbucket.org/oakarsoft/draftdesk_backend/config"
	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
)

// DraftRow is one draft entity flattened for the gateway: its natural key
// plus the canonical wire payload.
type DraftRow struct {
	Key  string
	Data gateway.Record
}

// Reconciler issues the create/update/delete sequence that brings the
// persisted collection in line with the draft. Operations run strictly
// sequentially; a failed call is logged and collected, never aborts the
// batch, and is never retried here.
type Reconciler struct {
	gw     gateway.Gateway
	logger *logrus.Logger

	// PostValidate, when set, runs after the batch (e.g. cross-field
	// variable validation). Its failure is logged only.
	PostValidate func(ctx context.Context) error
}

func NewReconciler(gw gateway.Gateway, logger *logrus.Logger) *Reconciler {
	return &Reconciler{gw: gw, logger: logger}
}

// Reconcile diffs drafts against persisted by natural key and applies the
// result through the gateway, keeping ids current as it goes. Returned
// messages describe the rows whose call failed; an empty slice means a
// clean run.
//
// An empty draft collection performs no deletions: it is treated as "not
// yet loaded" rather than "intentionally cleared", so a premature save can
// never mass-delete server state.
func (r *Reconciler) Reconcile(ctx context.Context, model string, drafts []DraftRow, persisted []gateway.PersistedEntity, ids *IdentityMap, keyOf func(gateway.Record) string) []string {
	if len(drafts) == 0 {
		if len(persisted) > 0 {
			r.logger.WithFields(logrus.Fields{
				"model":     model,
				"persisted": len(persisted),
			}).Info("empty draft collection, skipping deletions")
		}
		return nil
	}

	draftKeys := make([]string, len(drafts))
	dataByKey := make(map[string]gateway.Record, len(drafts))
	for i, row := range drafts {
		draftKeys[i] = row.Key
		dataByKey[row.Key] = row.Data
	}

	part := PartitionByNaturalKey(draftKeys, persisted, keyOf)

	matchedByKey := make(map[string]gateway.PersistedEntity, len(part.Matched))
	for _, pair := range part.Matched {
		matchedByKey[pair.Key] = pair.Persisted
	}

	var errs []string

	// Creates and updates fully drain before any orphan deletion, so a
	// replacement row under a reused key is never racing its own delete.
	for _, row := range drafts {
		existing, matched := matchedByKey[row.Key]
		if !matched {
			id, err := r.gw.Create(ctx, model, row.Data)
			if err != nil {
				config.LogError(r.logger, "reconciler.go", "Reconcile", "create "+model+" "+row.Key, row.Data, err)
				errs = append(errs, fmt.Sprintf("%s %q: create failed: %v", model, row.Key, err))
				continue
			}
			ids.Set(row.Key, id)
			continue
		}

		if recordsEqual(row.Data, existing.Fields) {
			ids.Set(row.Key, existing.ID)
			continue
		}
		if err := r.gw.Update(ctx, model, existing.ID, row.Data); err != nil {
			config.LogError(r.logger, "reconciler.go", "Reconcile", "update "+model+" "+row.Key, row.Data, err)
			errs = append(errs, fmt.Sprintf("%s %q: update failed: %v", model, row.Key, err))
			continue
		}
		ids.Set(row.Key, existing.ID)
	}

	for _, orphan := range part.Orphaned {
		key := keyOf(orphan.Fields)
		if err := r.gw.Delete(ctx, model, orphan.ID); err != nil {
			config.LogError(r.logger, "reconciler.go", "Reconcile", "delete "+model+" "+key, nil, err)
			errs = append(errs, fmt.Sprintf("%s %q: delete failed: %v", model, key, err))
			continue
		}
		ids.Delete(key)
	}

	if r.PostValidate != nil {
		if err := r.PostValidate(ctx); err != nil {
			config.LogError(r.logger, "reconciler.go", "Reconcile", "post validation "+model, nil, err)
		}
	}

	return errs
}

// recordsEqual compares two payloads loosely: values are matched on their
// printed form so an int 3 and a listed "3" do not force a spurious update.
func recordsEqual(a gateway.Record, b gateway.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if fmt.Sprint(av) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}
