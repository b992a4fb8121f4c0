package normalize

import "yclients_sync/models"

// staffColumns is the projection for the staff resource. position.title is
// flattened out of the nested position document.
var staffColumns = []Column{
	Col("id"),
	Col("name"),
	Col("specialization"),
	Col("position.title"),
	Col("rating"),
	Col("votes_count"),
	Col("comments_count"),
	Col("avatar"),
	Col("fired"),
	Col("status"),
	Col("dismissal_date"),
}

// Staff flattens the staff list. dismissal_date is cast to a datetime,
// nil where absent or unparseable.
func Staff(items []models.RawItem) *models.Table {
	t := Project(items, staffColumns)
	idx := t.ColumnIndex("dismissal_date")
	for _, row := range t.Rows {
		row[idx] = nullableTime(row[idx])
	}
	return t
}
