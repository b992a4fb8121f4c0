package normalize

import (
	"fmt"

	"yclients_sync/models"
)

// Booking-level columns projected from every raw record. These are a hard
// contract with the API shape: a raw booking missing one of them fails the
// whole records run rather than being silently padded with nulls.
var bookingColumns = []string{
	"id",
	"staff_id",
	"date",
	"attendance",
	"length",
	"visit_id",
	"paid_full",
	"payment_status",
}

var recordColumns = append(append([]string{}, bookingColumns...),
	"client",
	"client_is_new",
	"service_id",
	"service_title",
	"service_cost_to_pay",
	"service_discount",
	"service_first_cost",
	"good_transaction_title",
	"good_transaction_cost_to_pay",
	"good_transaction_good_id",
)

var clientColumns = []string{"id", "name", "surname", "phone", "email"}

type booking struct {
	fields  []any // aligned with bookingColumns
	client  map[string]any
	entries []any // services list
	goods   []any // goods_transactions list
}

// Records turns raw bookings into the records fact table and the derived
// clients table.
//
// The steps run in a fixed order and the order matters: the clients table is
// aggregated from every booking before unknown-client bookings are filtered
// out of the fact table, so a booking with no client never poisons the client
// table but a known client on a later-dropped booking still lands there.
//
// Each retained booking is exploded into one row per (service, goods
// transaction) pair. A booking with n services and m goods transactions
// produces n*m rows, booking order first, list order second; with no goods
// transactions it produces n rows with nil good_transaction_* cells. This
// cross product is the intended shape: line-item amounts repeat across the
// multiplicity and cannot be summed naively.
func Records(items []models.RawItem) (records, clients *models.Table, err error) {
	bookings := make([]booking, 0, len(items))
	for i, item := range items {
		b := booking{fields: make([]any, len(bookingColumns))}
		for j, col := range bookingColumns {
			v, ok := item[col]
			if !ok {
				return nil, nil, fmt.Errorf("records: booking %d missing required column %q", i, col)
			}
			b.fields[j] = v
		}
		b.client, _ = item["client"].(map[string]any)
		b.entries, _ = item["services"].([]any)
		b.goods, _ = item["goods_transactions"].([]any)
		bookings = append(bookings, b)
	}

	clients = buildClients(bookings)

	records = models.NewTable(recordColumns...)
	for _, b := range bookings {
		if len(b.client) == 0 {
			continue // unknown client, not a fact row
		}
		if len(b.entries) == 0 {
			continue // no service, not billable
		}

		clientID := nullableInt64(b.client["id"])
		isNew, _ := ToBool(b.client["is_new"])

		for _, svc := range b.entries {
			svcRow, err := serviceCells(svc)
			if err != nil {
				return nil, nil, err
			}

			goods := b.goods
			if len(goods) == 0 {
				goods = []any{nil}
			}
			for _, g := range goods {
				row := make([]any, 0, len(recordColumns))
				row = append(row, b.fields...)
				row = append(row, clientID, isNew)
				row = append(row, svcRow...)
				row = append(row, goodsCells(g)...)
				records.AppendRow(row)
			}
		}
	}

	coerceRecordTypes(records)
	return records, clients, nil
}

// buildClients flattens every booking's embedded client document and
// deduplicates by id, last occurrence in booking order winning. Rows keep
// first-encounter position; later snapshots overwrite fields in place.
// A client document with a null id keys nothing and is skipped.
func buildClients(bookings []booking) *models.Table {
	t := models.NewTable(clientColumns...)
	index := make(map[int64]int)

	for _, b := range bookings {
		if b.client == nil {
			continue
		}
		id, ok := ToInt64(b.client["id"])
		if !ok {
			continue
		}
		row := []any{id, b.client["name"], b.client["surname"], b.client["phone"], b.client["email"]}
		if at, seen := index[id]; seen {
			t.Rows[at] = row
		} else {
			index[id] = len(t.Rows)
			t.AppendRow(row)
		}
	}
	return t
}

func serviceCells(svc any) ([]any, error) {
	m, _ := svc.(map[string]any)
	if m == nil {
		return nil, fmt.Errorf("records: service entry is not a document: %v", svc)
	}
	cost, ok := ToInt64(m["cost_to_pay"])
	if !ok {
		return nil, fmt.Errorf("records: service %v has non-numeric cost_to_pay", m["id"])
	}
	return []any{m["id"], m["title"], cost, m["discount"], m["first_cost"]}, nil
}

func goodsCells(g any) []any {
	m, _ := g.(map[string]any)
	if m == nil {
		return []any{nil, nil, nil}
	}
	return []any{m["title"], nullableInt64(m["cost_to_pay"]), nullableInt64(m["good_id"])}
}

// coerceRecordTypes applies the final column coercions on the exploded rows:
// date to datetime, client and the goods columns to nullable int64.
// service_cost_to_pay and client_is_new are coerced at explode time.
func coerceRecordTypes(t *models.Table) {
	dateIdx := t.ColumnIndex("date")
	for _, row := range t.Rows {
		row[dateIdx] = nullableTime(row[dateIdx])
	}
}
