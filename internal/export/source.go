package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Columns maps record fields to source columns. Empty names are not selected.
type Columns struct {
	ID          string
	Title       string
	Description string
	Price       string
	SKU         string
	Size        string
	ImageURL    string
}

// Querier is satisfied by *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Open connects to the PostgreSQL source.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("export source dsn is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open export source: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to export source: %w", err)
	}
	return db, nil
}

// BuildQuery selects the configured columns from table filtered by condition.
func BuildQuery(table string, cols Columns, condition string) string {
	selected := []string{}
	for _, name := range []string{cols.ID, cols.Title, cols.Description, cols.Price, cols.SKU, cols.Size, cols.ImageURL} {
		if name != "" {
			selected = append(selected, pq.QuoteIdentifier(name))
		}
	}
	query := "SELECT " + strings.Join(selected, ", ") + " FROM " + table
	if strings.TrimSpace(condition) != "" {
		query += " WHERE " + condition
	}
	return query
}

// row is one source record with the configured columns resolved.
type row struct {
	id, title, description, sku, size, imageURL string
	price                                       *string
}

func scanRows(rows *sql.Rows, cols Columns) ([]row, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[strings.ToLower(name)] = i
	}
	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	idIdx := lookup(cols.ID)
	if idIdx < 0 {
		idIdx = 0
	}
	titleIdx, descIdx, priceIdx := lookup(cols.Title), lookup(cols.Description), lookup(cols.Price)
	skuIdx, sizeIdx, imageIdx := lookup(cols.SKU), lookup(cols.Size), lookup(cols.ImageURL)

	var out []row
	for rows.Next() {
		values := make([]sql.NullString, len(names))
		dest := make([]interface{}, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		get := func(i int) string {
			if i < 0 || !values[i].Valid {
				return ""
			}
			return values[i].String
		}
		r := row{
			id:          strings.TrimSpace(get(idIdx)),
			title:       get(titleIdx),
			description: get(descIdx),
			sku:         strings.TrimSpace(get(skuIdx)),
			size:        strings.TrimSpace(get(sizeIdx)),
			imageURL:    strings.TrimSpace(get(imageIdx)),
		}
		if priceIdx >= 0 && values[priceIdx].Valid {
			p := values[priceIdx].String
			r.price = &p
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
