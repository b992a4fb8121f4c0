package normalize

import (
	"fmt"
	"testing"
	"time"

	"yclients_sync/models"
)

func rawBooking(id int64, client map[string]any, services, goods []any) models.RawItem {
	item := models.RawItem{
		"id":             id,
		"staff_id":       int64(100),
		"date":           "2025-05-10 14:00:00",
		"attendance":     int64(1),
		"length":         int64(3600),
		"visit_id":       id * 10,
		"paid_full":      int64(1),
		"payment_status": "paid",
	}
	if client != nil {
		item["client"] = client
	}
	if services != nil {
		item["services"] = services
	}
	if goods != nil {
		item["goods_transactions"] = goods
	}
	return item
}

func clientDoc(id int64, phone string) map[string]any {
	return map[string]any{
		"id": id, "name": "Ivan", "surname": "Petrov",
		"phone": phone, "email": "ivan@example.com", "is_new": false,
	}
}

func service(id int64, cost int64) map[string]any {
	return map[string]any{
		"id": id, "title": fmt.Sprintf("service %d", id),
		"cost_to_pay": cost, "discount": int64(0), "first_cost": cost,
	}
}

func goodsTx(goodID int64, cost int64) map[string]any {
	return map[string]any{
		"title": fmt.Sprintf("good %d", goodID), "cost_to_pay": cost, "good_id": goodID,
	}
}

func cell(t *testing.T, tbl *models.Table, row int, col string) any {
	t.Helper()
	idx := tbl.ColumnIndex(col)
	if idx < 0 {
		t.Fatalf("column %s missing from %v", col, tbl.Columns)
	}
	return tbl.Rows[row][idx]
}

func TestRecords_CartesianExplosion(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(7, "111"),
			[]any{service(1, 500), service(2, 700)},
			[]any{goodsTx(91, 50), goodsTx(92, 60), goodsTx(93, 70)},
		),
	}

	records, _, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if records.NumRows() != 6 {
		t.Fatalf("expected 2*3=6 exploded rows, got %d", records.NumRows())
	}

	// Every (service, good) pair exactly once, service order primary,
	// goods order secondary.
	seen := make(map[[2]int64]int)
	for i := 0; i < records.NumRows(); i++ {
		sid := cell(t, records, i, "service_id").(int64)
		gid := cell(t, records, i, "good_transaction_good_id").(int64)
		seen[[2]int64{sid, gid}]++

		// Booking-level columns repeat across the explosion.
		if got := cell(t, records, i, "id"); got != int64(1) {
			t.Fatalf("row %d: expected booking id 1, got %v", i, got)
		}
		if got := cell(t, records, i, "client"); got != int64(7) {
			t.Fatalf("row %d: expected client 7, got %v", i, got)
		}
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct pairs, got %d: %v", len(seen), seen)
	}
	for pair, count := range seen {
		if count != 1 {
			t.Fatalf("pair %v appeared %d times", pair, count)
		}
	}
	if got := cell(t, records, 0, "service_id"); got != int64(1) {
		t.Fatalf("expected first row from first service, got %v", got)
	}
	if got := cell(t, records, 0, "good_transaction_good_id"); got != int64(91) {
		t.Fatalf("expected first row from first good, got %v", got)
	}
	if got := cell(t, records, 5, "service_id"); got != int64(2) {
		t.Fatalf("expected last row from last service, got %v", got)
	}
}

func TestRecords_NoGoodsTransactions(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(7, "111"),
			[]any{service(1, 500), service(2, 700)}, nil),
	}

	records, _, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if records.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", records.NumRows())
	}
	for i := 0; i < 2; i++ {
		for _, col := range []string{"good_transaction_title", "good_transaction_cost_to_pay", "good_transaction_good_id"} {
			if got := cell(t, records, i, col); got != nil {
				t.Fatalf("row %d: expected nil %s, got %v", i, col, got)
			}
		}
	}
}

func TestRecords_UnknownClientDropped(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, nil, []any{service(1, 500)}, nil),
		rawBooking(2, clientDoc(7, "111"), []any{service(2, 700)}, nil),
	}

	records, clients, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if records.NumRows() != 1 {
		t.Fatalf("expected 1 fact row, got %d", records.NumRows())
	}
	if got := cell(t, records, 0, "id"); got != int64(2) {
		t.Fatalf("expected only booking 2 retained, got %v", got)
	}
	// The wholly absent client contributed to neither table.
	if clients.NumRows() != 1 {
		t.Fatalf("expected 1 client, got %d", clients.NumRows())
	}
}

func TestRecords_NullClientIDSeedsNothing(t *testing.T) {
	doc := clientDoc(0, "111")
	doc["id"] = nil
	items := []models.RawItem{
		rawBooking(1, doc, []any{service(1, 500)}, nil),
	}

	records, clients, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if clients.NumRows() != 0 {
		t.Fatalf("expected no client rows for null id, got %d", clients.NumRows())
	}
	// The booking still has a (non-empty) client document, so it stays a
	// fact row with a nil client reference.
	if records.NumRows() != 1 {
		t.Fatalf("expected 1 fact row, got %d", records.NumRows())
	}
	if got := cell(t, records, 0, "client"); got != nil {
		t.Fatalf("expected nil client reference, got %v", got)
	}
}

func TestRecords_EmptyServicesDropped(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(7, "111"), []any{}, nil),
		rawBooking(2, clientDoc(8, "222"), nil, nil),
	}

	records, clients, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if records.NumRows() != 0 {
		t.Fatalf("expected no fact rows, got %d", records.NumRows())
	}
	// Dropped bookings still seed the clients table.
	if clients.NumRows() != 2 {
		t.Fatalf("expected 2 clients, got %d", clients.NumRows())
	}
}

func TestRecords_ClientLastWriteWins(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(7, "first"), []any{service(1, 100)}, nil),
		rawBooking(2, clientDoc(7, "second"), []any{service(2, 200)}, nil),
		rawBooking(3, clientDoc(7, "third"), []any{service(3, 300)}, nil),
	}

	_, clients, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if clients.NumRows() != 1 {
		t.Fatalf("expected 1 deduplicated client, got %d", clients.NumRows())
	}
	if got := cell(t, clients, 0, "phone"); got != "third" {
		t.Fatalf("expected last occurrence to win, got phone %v", got)
	}
	if got := cell(t, clients, 0, "id"); got != int64(7) {
		t.Fatalf("expected client id 7 as int64, got %T %v", got, got)
	}
}

func TestRecords_MissingRequiredColumnFails(t *testing.T) {
	item := rawBooking(1, clientDoc(7, "111"), []any{service(1, 100)}, nil)
	delete(item, "payment_status")

	_, _, err := Records([]models.RawItem{item})
	if err == nil {
		t.Fatal("expected structural error for missing payment_status")
	}
}

func TestRecords_FinalTypes(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(7, "111"),
			[]any{service(1, 500)}, []any{goodsTx(91, 50)}),
	}

	records, _, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	if _, ok := cell(t, records, 0, "date").(time.Time); !ok {
		t.Fatalf("expected date as time.Time, got %T", cell(t, records, 0, "date"))
	}
	if _, ok := cell(t, records, 0, "client").(int64); !ok {
		t.Fatalf("expected client as int64, got %T", cell(t, records, 0, "client"))
	}
	if _, ok := cell(t, records, 0, "client_is_new").(bool); !ok {
		t.Fatalf("expected client_is_new as bool, got %T", cell(t, records, 0, "client_is_new"))
	}
	if _, ok := cell(t, records, 0, "service_cost_to_pay").(int64); !ok {
		t.Fatalf("expected service_cost_to_pay as int64, got %T", cell(t, records, 0, "service_cost_to_pay"))
	}
	if _, ok := cell(t, records, 0, "good_transaction_cost_to_pay").(int64); !ok {
		t.Fatalf("expected good_transaction_cost_to_pay as int64, got %T", cell(t, records, 0, "good_transaction_cost_to_pay"))
	}
}

// Two raw bookings for the same client, the second with no services: the
// fact table keeps only the first booking's rows, the clients table keeps
// the second booking's snapshot.
func TestRecords_EndToEndScenario(t *testing.T) {
	items := []models.RawItem{
		rawBooking(1, clientDoc(1, "from-A"),
			[]any{service(1, 100), service(2, 200)}, []any{goodsTx(91, 10)}),
		rawBooking(2, clientDoc(1, "from-B"), []any{}, nil),
	}

	records, clients, err := Records(items)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if records.NumRows() != 2 {
		t.Fatalf("expected 2 fact rows (both from booking A), got %d", records.NumRows())
	}
	for i := 0; i < 2; i++ {
		if got := cell(t, records, i, "id"); got != int64(1) {
			t.Fatalf("row %d: expected booking 1, got %v", i, got)
		}
	}
	if clients.NumRows() != 1 {
		t.Fatalf("expected 1 client, got %d", clients.NumRows())
	}
	if got := cell(t, clients, 0, "phone"); got != "from-B" {
		t.Fatalf("expected B's client snapshot to win, got %v", got)
	}
}
