// Package normalize turns raw API documents into flat tables.
//
// Each resource has a fixed, explicit column projection: a mapping from
// output column name to an extraction path over the raw document tree. The
// column set is the contract with the upstream payload shape; it does not
// vary with which optional nested keys happen to be present in an item.
package normalize

import (
	"strings"

	"yclients_sync/models"
)

// Column maps one output column to its extraction path inside a raw item.
// Output names keep the dotted path form ("position.title") so destination
// columns line up with the upstream shape.
type Column struct {
	Name string
	Path []string
}

// Col builds a Column whose path is the dotted name itself.
func Col(dotted string) Column {
	return Column{Name: dotted, Path: strings.Split(dotted, ".")}
}

// Extract walks a path through nested documents. Any missing or
// non-document intermediate key yields nil, never an error.
func Extract(item map[string]any, path []string) any {
	var cur any = item
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Project applies a fixed column projection over every item. Missing paths
// produce nil cells.
func Project(items []models.RawItem, cols []Column) *models.Table {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	t := models.NewTable(names...)
	for _, item := range items {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = Extract(item, c.Path)
		}
		t.AppendRow(row)
	}
	return t
}
