package workflow_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
	"bitbucket.org/oakarsoft/draftdesk_backend/models"
	"bitbucket.org/oakarsoft/draftdesk_backend/workflow"
)

// scriptedGateway wraps the memory gateway with call counters and failure
// injection so tests can assert exactly which calls a reconcile issued.
type scriptedGateway struct {
	inner *gateway.MemoryGateway

	lists, creates, updates, deletes int

	failList   error
	failCreate map[string]error // keyed by the record's part_code/name
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{
		inner:      gateway.NewMemoryGateway(),
		failCreate: make(map[string]error),
	}
}

func (g *scriptedGateway) resetCounts() {
	g.lists, g.creates, g.updates, g.deletes = 0, 0, 0, 0
}

func recordKey(data gateway.Record) string {
	if v, ok := data["part_code"]; ok {
		return fmt.Sprint(v)
	}
	return fmt.Sprint(data["name"])
}

func (g *scriptedGateway) List(ctx context.Context, model string, filters gateway.Filters) ([]gateway.PersistedEntity, error) {
	g.lists++
	if g.failList != nil {
		return nil, g.failList
	}
	return g.inner.List(ctx, model, filters)
}

func (g *scriptedGateway) Create(ctx context.Context, model string, data gateway.Record) (string, error) {
	g.creates++
	if err := g.failCreate[recordKey(data)]; err != nil {
		return "", err
	}
	return g.inner.Create(ctx, model, data)
}

func (g *scriptedGateway) Update(ctx context.Context, model string, id string, data gateway.Record) error {
	g.updates++
	return g.inner.Update(ctx, model, id, data)
}

func (g *scriptedGateway) Delete(ctx context.Context, model string, id string) error {
	g.deletes++
	return g.inner.Delete(ctx, model, id)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func lineKey(rec gateway.Record) string {
	return models.NaturalKeyFor(models.KindOrderLine, rec)
}

func lineRow(part string, index int, qty int64, rate int64) workflow.DraftRow {
	line := models.NewRegularLine(part, decimal.NewFromInt(qty), decimal.NewFromInt(rate), decimal.Zero)
	line.SetOrderIndex(index)
	data := gateway.Record(line.Fields())
	data["po_number"] = "PO-1"
	return workflow.DraftRow{Key: line.NaturalKey(), Data: data}
}

func listLines(t *testing.T, gw gateway.Gateway) []gateway.PersistedEntity {
	t.Helper()
	persisted, err := gw.List(context.Background(), "order_lines", gateway.Filters{"po_number": "PO-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return persisted
}

func TestReconcileIdenticalCollectionIssuesNoCalls(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	ids := workflow.NewIdentityMap()

	drafts := []workflow.DraftRow{lineRow("A", 0, 2, 10), lineRow("B", 1, 1, 5)}
	if errs := rec.Reconcile(ctx, "order_lines", drafts, nil, ids, lineKey); len(errs) != 0 {
		t.Fatalf("initial reconcile failed: %v", errs)
	}

	persisted := listLines(t, gw)
	ids.Rebuild(persisted, lineKey)
	gw.resetCounts()

	if errs := rec.Reconcile(ctx, "order_lines", drafts, persisted, ids, lineKey); len(errs) != 0 {
		t.Fatalf("idempotent reconcile failed: %v", errs)
	}
	if gw.creates != 0 || gw.updates != 0 || gw.deletes != 0 {
		t.Fatalf("identical collection issued calls: creates=%d updates=%d deletes=%d", gw.creates, gw.updates, gw.deletes)
	}
}

func TestReconcileRenamedKeyIsDeletePlusCreate(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	ids := workflow.NewIdentityMap()

	rec.Reconcile(ctx, "order_lines", []workflow.DraftRow{lineRow("A", 0, 2, 10), lineRow("B", 1, 1, 5)}, nil, ids, lineKey)
	persisted := listLines(t, gw)
	ids.Rebuild(persisted, lineKey)
	gw.resetCounts()

	// B was renamed to C in the draft: the old row is orphaned, the new key
	// is created. No row may be updated in its place.
	drafts := []workflow.DraftRow{lineRow("A", 0, 2, 10), lineRow("C", 1, 1, 5)}
	if errs := rec.Reconcile(ctx, "order_lines", drafts, persisted, ids, lineKey); len(errs) != 0 {
		t.Fatalf("reconcile failed: %v", errs)
	}
	if gw.creates != 1 || gw.deletes != 1 || gw.updates != 0 {
		t.Fatalf("rename issued creates=%d updates=%d deletes=%d, want 1/0/1", gw.creates, gw.updates, gw.deletes)
	}
	if _, ok := ids.Get("B"); ok {
		t.Fatal("deleted key still present in identity map")
	}
	if _, ok := ids.Get("C"); !ok {
		t.Fatal("created key missing from identity map")
	}
}

func TestReconcileChangedFieldIssuesSingleUpdate(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	ids := workflow.NewIdentityMap()

	rec.Reconcile(ctx, "order_lines", []workflow.DraftRow{lineRow("A", 0, 2, 10)}, nil, ids, lineKey)
	persisted := listLines(t, gw)
	ids.Rebuild(persisted, lineKey)
	gw.resetCounts()

	if errs := rec.Reconcile(ctx, "order_lines", []workflow.DraftRow{lineRow("A", 0, 3, 10)}, persisted, ids, lineKey); len(errs) != 0 {
		t.Fatalf("reconcile failed: %v", errs)
	}
	if gw.creates != 0 || gw.updates != 1 || gw.deletes != 0 {
		t.Fatalf("field change issued creates=%d updates=%d deletes=%d, want 0/1/0", gw.creates, gw.updates, gw.deletes)
	}
}

func TestReconcileEmptyDraftNeverDeletes(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	ids := workflow.NewIdentityMap()

	rec.Reconcile(ctx, "order_lines", []workflow.DraftRow{lineRow("A", 0, 2, 10), lineRow("B", 1, 1, 5)}, nil, ids, lineKey)
	persisted := listLines(t, gw)
	ids.Rebuild(persisted, lineKey)
	gw.resetCounts()

	if errs := rec.Reconcile(ctx, "order_lines", nil, persisted, ids, lineKey); len(errs) != 0 {
		t.Fatalf("reconcile failed: %v", errs)
	}
	if gw.deletes != 0 || gw.creates != 0 || gw.updates != 0 {
		t.Fatalf("empty draft issued calls: creates=%d updates=%d deletes=%d", gw.creates, gw.updates, gw.deletes)
	}
	if len(listLines(t, gw)) != 2 {
		t.Fatal("persisted rows were deleted by an empty draft")
	}
}

func TestReconcilePartialCreateFailureAndRetry(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	ids := workflow.NewIdentityMap()

	gw.failCreate["A"] = fmt.Errorf("simulated gateway error")

	drafts := []workflow.DraftRow{lineRow("A", 0, 2, 10), lineRow("B", 1, 1, 5)}
	errs := rec.Reconcile(ctx, "order_lines", drafts, nil, ids, lineKey)
	if len(errs) != 1 {
		t.Fatalf("expected one failure, got %v", errs)
	}
	if _, ok := ids.Get("A"); ok {
		t.Fatal("failed create must not enter the identity map")
	}
	if _, ok := ids.Get("B"); !ok {
		t.Fatal("succeeding create missing from identity map")
	}

	// Retry with the unchanged draft: only the still-missing key is created,
	// the already-persisted one is matched and skipped.
	delete(gw.failCreate, "A")
	persisted := listLines(t, gw)
	ids.Rebuild(persisted, lineKey)
	gw.resetCounts()

	if errs := rec.Reconcile(ctx, "order_lines", drafts, persisted, ids, lineKey); len(errs) != 0 {
		t.Fatalf("retry failed: %v", errs)
	}
	if gw.creates != 1 || gw.updates != 0 || gw.deletes != 0 {
		t.Fatalf("retry issued creates=%d updates=%d deletes=%d, want 1/0/0", gw.creates, gw.updates, gw.deletes)
	}
	if len(listLines(t, gw)) != 2 {
		t.Fatal("retry did not converge to two persisted rows")
	}
}

func TestReconcilePostValidationFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	rec := workflow.NewReconciler(gw, quietLogger())
	rec.PostValidate = func(ctx context.Context) error {
		return fmt.Errorf("cross-field validation rejected")
	}
	ids := workflow.NewIdentityMap()

	if errs := rec.Reconcile(ctx, "order_lines", []workflow.DraftRow{lineRow("A", 0, 1, 1)}, nil, ids, lineKey); len(errs) != 0 {
		t.Fatalf("post-validation failure must not fail the batch: %v", errs)
	}
}
