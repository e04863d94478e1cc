package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/oakarsoft/draftdesk_backend/config"
	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
	"bitbucket.org/oakarsoft/draftdesk_backend/models"
	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

// collectionCodec binds one collection kind to its gateway model, key
// extraction and record decoding.
type collectionCodec struct {
	kind   models.CollectionKind
	model  string
	keyOf  func(gateway.Record) string
	decode func(gateway.Record) models.DraftEntity
}

func codecFor(kind models.CollectionKind) collectionCodec {
	return collectionCodec{
		kind:  kind,
		model: string(kind),
		keyOf: func(rec gateway.Record) string {
			return models.NaturalKeyFor(kind, rec)
		},
		decode: func(rec gateway.Record) models.DraftEntity {
			switch kind {
			case models.KindOrderLine:
				return models.OrderLineFromFields(rec)
			case models.KindReportColumn:
				return models.ReportColumnFromFields(rec)
			default:
				return models.ReportVariableFromFields(rec)
			}
		},
	}
}

// SaveResult is what the UI layer gets back from Save. On partial failure
// the draft stays intact and Errors lists the rows whose call failed.
type SaveResult struct {
	Success bool
	Errors  []string
}

// DraftSession owns the in-memory draft state of one collection: the header,
// the ordered entities, and the natural-key identity map. All collaborators
// are passed in at construction; nothing is discovered through globals.
type DraftSession struct {
	codec  collectionCodec
	gw     gateway.Gateway
	logger *logrus.Logger
	rec    *Reconciler
	parent gateway.Filters

	orderHeader  *models.OrderHeader
	reportHeader *models.ReportHeader

	entities []models.DraftEntity
	ids      *IdentityMap
	status   models.OrderStatus
}

func NewOrderLineSession(gw gateway.Gateway, logger *logrus.Logger, header *models.OrderHeader) *DraftSession {
	return &DraftSession{
		codec:       codecFor(models.KindOrderLine),
		gw:          gw,
		logger:      logger,
		rec:         NewReconciler(gw, logger),
		parent:      gateway.Filters{"po_number": header.PONumber},
		orderHeader: header,
		ids:         NewIdentityMap(),
		status:      models.OrderStatusOpen,
	}
}

func NewReportColumnSession(gw gateway.Gateway, logger *logrus.Logger, header *models.ReportHeader) *DraftSession {
	return &DraftSession{
		codec:        codecFor(models.KindReportColumn),
		gw:           gw,
		logger:       logger,
		rec:          NewReconciler(gw, logger),
		parent:       gateway.Filters{"report_id": header.ReportID},
		reportHeader: header,
		ids:          NewIdentityMap(),
	}
}

func NewReportVariableSession(gw gateway.Gateway, logger *logrus.Logger, header *models.ReportHeader) *DraftSession {
	s := NewReportColumnSession(gw, logger, header)
	s.codec = codecFor(models.KindReportVariable)
	return s
}

// SetPostValidation installs the optional cross-field validation call that
// runs after each reconcile. Its failure is non-critical and only logged.
func (s *DraftSession) SetPostValidation(fn func(ctx context.Context) error) {
	s.rec.PostValidate = fn
}

func (s *DraftSession) Kind() models.CollectionKind {
	return s.codec.kind
}

func (s *DraftSession) Len() int {
	return len(s.entities)
}

func (s *DraftSession) Entity(index int) models.DraftEntity {
	s.mustIndex(index, "Entity")
	return s.entities[index]
}

// Add appends a draft entity and assigns the next order index. Natural keys
// must be non-empty and unique within the collection; note lines are exempt
// (they are matched by position).
func (s *DraftSession) Add(entity models.DraftEntity) error {
	if entity.Kind() != s.codec.kind {
		panic(fmt.Sprintf("cannot add %s entity to %s session", entity.Kind(), s.codec.kind))
	}

	entity.SetOrderIndex(len(s.entities))
	if line, ok := entity.(*models.OrderLine); !ok || line.Type != models.LineTypeNote {
		key := entity.NaturalKey()
		if key == "" {
			return utils.NewValidationError("%s requires a non-empty key", s.codec.model)
		}
		if s.keyInUse(key, entity) {
			return utils.NewValidationError("duplicate %s key %q", s.codec.model, key)
		}
	}

	s.entities = append(s.entities, entity)
	return nil
}

// UpdateField mutates one field of the entity at index. Derived amounts are
// recomputed on every read, so totals are current immediately after this
// returns. An out-of-range index is a programming error and panics; a
// locked-line edit is a recoverable validation failure.
func (s *DraftSession) UpdateField(index int, field string, value interface{}) error {
	s.mustIndex(index, "UpdateField")

	switch entity := s.entities[index].(type) {
	case *models.OrderLine:
		return s.updateLineField(entity, field, value)
	case *models.ReportColumn:
		return s.updateColumnField(entity, field, value)
	case *models.ReportVariable:
		return s.updateVariableField(entity, field, value)
	default:
		panic(fmt.Sprintf("unhandled entity kind %s", s.codec.kind))
	}
}

func (s *DraftSession) updateLineField(line *models.OrderLine, field string, value interface{}) error {
	if state := ClassifyLine(line); !state.Editable {
		return utils.NewValidationError("line %d cannot be edited: %s", line.Index, state.Reason)
	}

	switch field {
	case "part_code":
		code := fmt.Sprint(value)
		if code == "" {
			return utils.NewValidationError("part code cannot be empty")
		}
		if s.keyInUse(code, line) {
			return utils.NewValidationError("duplicate order_lines key %q", code)
		}
		line.PartCode = code
	case "description":
		line.Description = fmt.Sprint(value)
	case "quantity":
		return assignDecimal(&line.Qty, field, value)
	case "unit_rate":
		return assignDecimal(&line.UnitRate, field, value)
	case "discount":
		return assignDecimal(&line.Discount, field, value)
	case "freight":
		return assignDecimal(&line.Freight, field, value)
	default:
		return utils.NewValidationError("unknown order line field %q", field)
	}
	return nil
}

func (s *DraftSession) updateColumnField(col *models.ReportColumn, field string, value interface{}) error {
	switch field {
	case "name":
		name := fmt.Sprint(value)
		if name == "" {
			return utils.NewValidationError("column name cannot be empty")
		}
		if s.keyInUse(name, col) {
			return utils.NewValidationError("duplicate report_columns key %q", name)
		}
		col.Name = name
	case "label":
		col.Label = fmt.Sprint(value)
	case "type_ref":
		col.TypeRef = fmt.Sprint(value)
	case "width":
		w, err := toInt(value)
		if err != nil {
			return utils.NewValidationError("invalid width %v", value)
		}
		col.Width = w
	default:
		return utils.NewValidationError("unknown report column field %q", field)
	}
	return nil
}

func (s *DraftSession) updateVariableField(v *models.ReportVariable, field string, value interface{}) error {
	switch field {
	case "name":
		name := fmt.Sprint(value)
		if name == "" {
			return utils.NewValidationError("variable name cannot be empty")
		}
		if s.keyInUse(name, v) {
			return utils.NewValidationError("duplicate report_variables key %q", name)
		}
		v.Name = name
	case "label":
		v.Label = fmt.Sprint(value)
	case "data_type":
		v.DataType = fmt.Sprint(value)
	case "default_value":
		v.DefaultValue = fmt.Sprint(value)
	default:
		return utils.NewValidationError("unknown report variable field %q", field)
	}
	return nil
}

// UpdateHeaderField mutates an order/report header field, keeping totals in
// sync for freight and tax changes.
func (s *DraftSession) UpdateHeaderField(field string, value interface{}) error {
	if s.orderHeader != nil {
		switch field {
		case "freight":
			return assignDecimal(&s.orderHeader.Freight, field, value)
		case "tax_amount":
			return assignDecimal(&s.orderHeader.TaxAmount, field, value)
		case "supplier_name":
			s.orderHeader.SupplierName = fmt.Sprint(value)
			return nil
		case "notes":
			s.orderHeader.Notes = fmt.Sprint(value)
			return nil
		}
		return utils.NewValidationError("unknown order header field %q", field)
	}

	switch field {
	case "name":
		s.reportHeader.Name = fmt.Sprint(value)
		return nil
	case "query":
		s.reportHeader.Query = fmt.Sprint(value)
		return nil
	}
	return utils.NewValidationError("unknown report header field %q", field)
}

// PendingRemoval is a proposed deletion awaiting confirmation. The caller
// decides how to confirm (dialog, inline prompt) and then calls Commit.
type PendingRemoval struct {
	session *DraftSession
	entity  models.DraftEntity
}

func (p *PendingRemoval) Entity() models.DraftEntity {
	return p.entity
}

// Commit performs the removal proposed earlier. Positions may have shifted
// since the proposal, so the entity is located by identity, not index.
func (p *PendingRemoval) Commit() error {
	for i, e := range p.session.entities {
		if e == p.entity {
			p.session.entities = append(p.session.entities[:i:i], p.session.entities[i+1:]...)
			p.session.reindex()
			return nil
		}
	}
	return utils.NewValidationError("entity was already removed")
}

// ProposeRemoval validates that the entity at index may be removed and
// returns the pending confirmation. Locked lines refuse removal.
func (s *DraftSession) ProposeRemoval(index int) (*PendingRemoval, error) {
	if index < 0 || index >= len(s.entities) {
		return nil, utils.NewValidationError("no entity at index %d", index)
	}
	if line, ok := s.entities[index].(*models.OrderLine); ok {
		if state := ClassifyLine(line); !state.Editable {
			return nil, utils.NewValidationError("line %d cannot be removed: %s", index, state.Reason)
		}
	}
	return &PendingRemoval{session: s, entity: s.entities[index]}, nil
}

// Reorder moves the entity at from before the current position to, then
// reassigns order indices densely 0..n-1. Locked lines may move position
// but not content.
func (s *DraftSession) Reorder(from int, to int) error {
	n := len(s.entities)
	if from < 0 || from >= n || to < 0 || to >= n {
		return utils.NewValidationError("reorder out of range: %d -> %d (len %d)", from, to, n)
	}
	if from == to {
		return nil
	}

	entity := s.entities[from]
	rest := append(s.entities[:from:from], s.entities[from+1:]...)
	s.entities = append(rest[:to:to], append([]models.DraftEntity{entity}, rest[to:]...)...)
	s.reindex()
	return nil
}

// Load replaces the draft state wholesale from persisted rows: used on open
// and after a fully successful save to reflect server truth. Lines are
// reclassified from the refreshed data.
func (s *DraftSession) Load(persisted []gateway.PersistedEntity) {
	entities := make([]models.DraftEntity, 0, len(persisted))
	for _, p := range persisted {
		entities = append(entities, s.codec.decode(p.Fields))
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].OrderIndex() < entities[j].OrderIndex()
	})

	s.entities = entities
	s.reindex()
	s.ids.Rebuild(persisted, s.codec.keyOf)

	if s.codec.kind == models.KindOrderLine {
		s.status = ClassifyOrderStatus(s.lines())
	}
}

// Refresh pulls the authoritative collection from the gateway and loads it.
func (s *DraftSession) Refresh(ctx context.Context) error {
	persisted, err := s.gw.List(ctx, s.codec.model, s.parent)
	if err != nil {
		return err
	}
	s.Load(persisted)
	return nil
}

// SnapshotForSave returns the current ordered collection.
func (s *DraftSession) SnapshotForSave() []models.DraftEntity {
	snapshot := make([]models.DraftEntity, len(s.entities))
	copy(snapshot, s.entities)
	return snapshot
}

// Totals recomputes derived amounts from current line data. Always current;
// nothing is cached.
func (s *DraftSession) Totals() models.Totals {
	if s.orderHeader == nil {
		return models.Totals{
			Subtotal:  decimal.Zero,
			Freight:   decimal.Zero,
			TaxAmount: decimal.Zero,
			Total:     decimal.Zero,
		}
	}
	return models.CalculateOrderTotals(s.lines(), s.orderHeader.Freight, s.orderHeader.TaxAmount)
}

func (s *DraftSession) LineState(index int) (LineState, error) {
	if index < 0 || index >= len(s.entities) {
		return LineState{}, utils.NewValidationError("no entity at index %d", index)
	}
	if line, ok := s.entities[index].(*models.OrderLine); ok {
		return ClassifyLine(line), nil
	}
	return LineState{Editable: true}, nil
}

func (s *DraftSession) OrderStatus() models.OrderStatus {
	return s.status
}

func (s *DraftSession) IdentityMap() *IdentityMap {
	return s.ids
}

// Save runs the full reconcile-and-refresh cycle: validate the header, list
// the authoritative persisted collection, rebuild the identity map, diff and
// apply. Only a fully clean run reloads server truth; any failure leaves the
// draft exactly as the user edited it.
func (s *DraftSession) Save(ctx context.Context) (SaveResult, error) {
	if msgs := s.validateHeader(); len(msgs) > 0 {
		return SaveResult{Success: false, Errors: msgs}, nil
	}

	persisted, err := s.gw.List(ctx, s.codec.model, s.parent)
	if err != nil {
		// Gateway unavailability is a single propagated error; the draft is
		// untouched so the user can retry without re-entering data.
		config.LogError(s.logger, "session.go", "Save", "list "+s.codec.model, s.parent, err)
		return SaveResult{Success: false, Errors: []string{err.Error()}}, err
	}

	s.ids.Rebuild(persisted, s.codec.keyOf)

	drafts := make([]DraftRow, 0, len(s.entities))
	for _, entity := range s.entities {
		data := gateway.Record(entity.Fields())
		for k, v := range s.parent {
			data[k] = v
		}
		drafts = append(drafts, DraftRow{Key: entity.NaturalKey(), Data: data})
	}

	errs := s.rec.Reconcile(ctx, s.codec.model, drafts, persisted, s.ids, s.codec.keyOf)
	if len(errs) > 0 {
		return SaveResult{Success: false, Errors: errs}, nil
	}

	if err := s.Refresh(ctx); err != nil {
		config.LogError(s.logger, "session.go", "Save", "refresh "+s.codec.model, s.parent, err)
		return SaveResult{Success: false, Errors: []string{err.Error()}}, err
	}
	return SaveResult{Success: true}, nil
}

func (s *DraftSession) validateHeader() []string {
	if s.orderHeader != nil {
		return utils.ValidateStruct(s.orderHeader)
	}
	return utils.ValidateStruct(s.reportHeader)
}

func (s *DraftSession) lines() []*models.OrderLine {
	lines := make([]*models.OrderLine, 0, len(s.entities))
	for _, e := range s.entities {
		if line, ok := e.(*models.OrderLine); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *DraftSession) reindex() {
	for i, e := range s.entities {
		e.SetOrderIndex(i)
	}
}

func (s *DraftSession) keyInUse(key string, except models.DraftEntity) bool {
	for _, e := range s.entities {
		if e == except {
			continue
		}
		if line, ok := e.(*models.OrderLine); ok && line.Type == models.LineTypeNote {
			continue
		}
		if e.NaturalKey() == key {
			return true
		}
	}
	return false
}

func (s *DraftSession) mustIndex(index int, op string) {
	if index < 0 || index >= len(s.entities) {
		panic(fmt.Sprintf("%s: draft index %d out of range (len %d)", op, index, len(s.entities)))
	}
}

func assignDecimal(dst *decimal.Decimal, field string, value interface{}) error {
	d, err := toDecimal(value)
	if err != nil {
		return utils.NewValidationError("invalid %s value %v", field, value)
	}
	*dst = d
	return nil
}

func toDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0, err
		}
		return int(d.IntPart()), nil
	default:
		return 0, fmt.Errorf("unsupported integer type %T", value)
	}
}
