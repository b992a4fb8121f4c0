package normalize

import "yclients_sync/models"

// Schedule flattens day-schedule items and explodes the embedded slots list:
// one output row per slot, with the slot's two positional fields promoted to
// from/to columns. A day with no slots still produces one row with nil
// from/to. Slots arrive either as two-element arrays or as {from,to}
// documents depending on API version.
func Schedule(items []models.RawItem) *models.Table {
	t := models.NewTable("staff_id", "date", "from", "to")

	for _, item := range items {
		staffID := Extract(item, []string{"staff_id"})
		date := Extract(item, []string{"date"})

		slots, _ := item["slots"].([]any)
		if len(slots) == 0 {
			t.AppendRow([]any{staffID, date, nil, nil})
			continue
		}

		for _, slot := range slots {
			from, to := slotBounds(slot)
			t.AppendRow([]any{staffID, date, from, to})
		}
	}
	return t
}

func slotBounds(slot any) (from, to any) {
	switch s := slot.(type) {
	case []any:
		if len(s) > 0 {
			from = s[0]
		}
		if len(s) > 1 {
			to = s[1]
		}
	case map[string]any:
		from = s["from"]
		to = s["to"]
	}
	return from, to
}
