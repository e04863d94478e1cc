package gateway

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

// modelTables maps gateway model names to their backing tables. Fixed
// registry; model names never reach SQL unescaped.
var modelTables = map[string]string{
	"order_lines":      "order_lines",
	"report_columns":   "report_columns",
	"report_variables": "report_variables",
}

// SQLGateway persists records through gorm into the generic CRUD tables.
type SQLGateway struct {
	db *gorm.DB
}

var _ Gateway = (*SQLGateway)(nil)

func NewSQLGateway(db *gorm.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

func (g *SQLGateway) table(model string) (string, error) {
	table, ok := modelTables[model]
	if !ok {
		return "", fmt.Errorf("unknown gateway model %q", model)
	}
	return table, nil
}

func (g *SQLGateway) List(ctx context.Context, model string, filters Filters) ([]PersistedEntity, error) {
	table, err := g.table(model)
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	dbCtx := g.db.WithContext(ctx).Table(table)
	if len(filters) > 0 {
		dbCtx = dbCtx.Where(map[string]interface{}(filters))
	}
	if err := dbCtx.Order("order_index").Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]PersistedEntity, 0, len(rows))
	for _, row := range rows {
		id := fmt.Sprint(row["id"])
		delete(row, "id")
		results = append(results, PersistedEntity{ID: id, Fields: Record(row)})
	}
	return results, nil
}

func (g *SQLGateway) Create(ctx context.Context, model string, data Record) (string, error) {
	table, err := g.table(model)
	if err != nil {
		return "", err
	}

	var id string
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(map[string]interface{}(data)).Error; err != nil {
			return err
		}
		var lastID int64
		if err := tx.Raw("SELECT LAST_INSERT_ID()").Scan(&lastID).Error; err != nil {
			return err
		}
		id = fmt.Sprint(lastID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (g *SQLGateway) Update(ctx context.Context, model string, id string, data Record) error {
	table, err := g.table(model)
	if err != nil {
		return err
	}

	result := g.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(map[string]interface{}(data))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (g *SQLGateway) Delete(ctx context.Context, model string, id string) error {
	table, err := g.table(model)
	if err != nil {
		return err
	}

	result := g.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
