package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

var pgColumnTypes = map[Kind]string{
	KindJSON:  "JSONB",
	KindBool:  "BOOLEAN",
	KindInt:   "BIGINT",
	KindFloat: "NUMERIC",
	KindTime:  "TIMESTAMP",
	KindText:  "TEXT",
}

// SQLite type affinity vocabulary, matching what its DDL normally uses.
var sqliteColumnTypes = map[Kind]string{
	KindJSON:  "JSON",
	KindBool:  "BOOLEAN",
	KindInt:   "INTEGER",
	KindFloat: "REAL",
	KindTime:  "DATETIME",
	KindText:  "TEXT",
}

// quoteIdent double-quotes an identifier. Column names keep their dotted
// extraction paths ("position.title"), so quoting is not optional.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildCreateSQL renders the CREATE TABLE statement for an inferred schema.
// Pure and deterministic so it can be unit tested without a database.
func buildCreateSQL(table string, columns []string, kinds []Kind, d dialect) string {
	types := pgColumnTypes
	if d == dialectSQLite {
		types = sqliteColumnTypes
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " " + types[kinds[i]]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", quoteIdent(table), strings.Join(defs, ", "))
}

func buildDropSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(table))
}

// buildInsertSQL constructs one multi-row INSERT and its args. Postgres gets
// $n placeholders, SQLite gets ?. Nested values are serialized to JSON text
// by encodeValue before binding.
func buildInsertSQL(table string, columns []string, rows [][]any, d dialect) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			if d == dialectPostgres {
				fmt.Fprintf(&b, "$%d", p)
			} else {
				b.WriteString("?")
			}
			args = append(args, encodeValue(row[j]))
			p++
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args
}

// encodeValue prepares a cell for binding: nested documents and lists are
// stored as JSON text, scalars pass through.
func encodeValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return v
	}
}

// insertBatchSize caps rows per INSERT so the bind-parameter count stays
// well under the Postgres protocol limit of 65535.
const insertBatchSize = 500
