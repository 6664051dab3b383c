package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/pkg/dbutil"
)

const (
	pagesTable      = "pages"
	categoriesTable = "categories"
	insertBatchSize = 200
)

var (
	pageFields     = []string{"id", "title", "slug", "description", "category", "tags_json", "content", "icon", "icon_color", "order_index", "created_at", "updated_at"}
	categoryFields = []string{"id", "name", "slug", "description", "icon", "icon_color", "order_index", "created_at"}

	upsertPageSQL     = buildUpsert(pagesTable, pageFields)
	upsertCategorySQL = buildUpsert(categoriesTable, categoryFields)
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// sqlStore maps the site onto the pages and categories tables. The seq
// column keeps collection order: bulk writes store the slice index and
// new rows from an upsert go to the end.
type sqlStore struct {
	db       *sql.DB
	name     string
	bindType int
}

func newSQLStore(db *sql.DB, name string, bindType int) (*sqlStore, error) {
	if err := applyMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &sqlStore{db: db, name: name, bindType: bindType}, nil
}

func (s *sqlStore) Type() string {
	return s.name
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) Read(ctx context.Context) (*model.SiteData, error) {
	categories, err := s.listCategories(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	pages, err := s.listPages(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return &model.SiteData{Pages: pages, Categories: categories}, nil
}

func (s *sqlStore) Write(ctx context.Context, data *model.SiteData) (err error) {
	data = data.Clone().Normalize()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, table := range []string{pagesTable, categoriesTable} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	categoryRows := make([]map[string]interface{}, 0, len(data.Categories))
	for i := range data.Categories {
		categoryRows = append(categoryRows, toRow(categoryFields, categoryValues(&data.Categories[i]), i))
	}
	if err = s.insertRows(ctx, tx, categoriesTable, categoryRows); err != nil {
		return err
	}
	pageRows := make([]map[string]interface{}, 0, len(data.Pages))
	for i := range data.Pages {
		pageRows = append(pageRows, toRow(pageFields, pageValues(&data.Pages[i]), i))
	}
	if err = s.insertRows(ctx, tx, pagesTable, pageRows); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqlStore) UpsertPage(ctx context.Context, page *model.Page) error {
	sqlStr, args := dbutil.Finalize(s.bindType, upsertPageSQL, pageValues(page))
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

func (s *sqlStore) UpsertCategory(ctx context.Context, category *model.Category) error {
	sqlStr, args := dbutil.Finalize(s.bindType, upsertCategorySQL, categoryValues(category))
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

func (s *sqlStore) DeletePage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, pagesTable, id)
}

func (s *sqlStore) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, categoriesTable, id)
}

// deleteByID does not check the affected row count; removing an unknown
// id is a successful no-op.
func (s *sqlStore) deleteByID(ctx context.Context, table, id string) error {
	sqlStr, args, err := builder.BuildDelete(table, map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(s.bindType, sqlStr, args)
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) insertRows(ctx context.Context, q queryer, table string, rows []map[string]interface{}) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		sqlStr, args, err := builder.BuildInsert(table, rows[start:end])
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(s.bindType, sqlStr, args)
		if _, err := q.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func (s *sqlStore) listPages(ctx context.Context, q queryer) ([]model.Page, error) {
	sqlStr, args, err := builder.BuildSelect(pagesTable, map[string]interface{}{"_orderby": "seq asc"}, pageFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(s.bindType, sqlStr, args)
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pages := make([]model.Page, 0)
	for rows.Next() {
		var page model.Page
		var tagsJSON string
		if err := rows.Scan(&page.ID, &page.Title, &page.Slug, &page.Description, &page.Category, &tagsJSON, &page.Content, &page.Icon, &page.IconColor, &page.Order, &page.CreatedAt, &page.UpdatedAt); err != nil {
			return nil, err
		}
		page.Tags = decodeTags(tagsJSON)
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (s *sqlStore) listCategories(ctx context.Context, q queryer) ([]model.Category, error) {
	sqlStr, args, err := builder.BuildSelect(categoriesTable, map[string]interface{}{"_orderby": "seq asc"}, categoryFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(s.bindType, sqlStr, args)
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]model.Category, 0)
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Icon, &category.IconColor, &category.Order, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func pageValues(page *model.Page) []interface{} {
	return []interface{}{
		page.ID, page.Title, page.Slug, page.Description, page.Category, encodeTags(page.Tags),
		page.Content, page.Icon, page.IconColor, page.Order, page.CreatedAt, page.UpdatedAt,
	}
}

func categoryValues(category *model.Category) []interface{} {
	return []interface{}{
		category.ID, category.Name, category.Slug, category.Description,
		category.Icon, category.IconColor, category.Order, category.CreatedAt,
	}
}

func toRow(fields []string, values []interface{}, seq int) map[string]interface{} {
	row := make(map[string]interface{}, len(fields)+1)
	for i, field := range fields {
		row[field] = values[i]
	}
	row["seq"] = seq
	return row
}

// buildUpsert renders an INSERT ... ON CONFLICT (id) DO UPDATE statement
// understood by both postgres and sqlite. The seq of an existing row is
// left alone so an update keeps its place in the collection.
func buildUpsert(table string, fields []string) string {
	updates := make([]string, 0, len(fields)-1)
	for _, field := range fields[1:] {
		updates = append(updates, field+" = excluded."+field)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s, seq) VALUES (%s(SELECT COALESCE(MAX(seq), -1) + 1 FROM %s)) ON CONFLICT (id) DO UPDATE SET %s",
		table,
		strings.Join(fields, ", "),
		strings.Repeat("?, ", len(fields)),
		table,
		strings.Join(updates, ", "),
	)
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeTags(raw string) []string {
	tags := make([]string, 0)
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return make([]string, 0)
	}
	return tags
}
