// Package export writes tables as spreadsheet files, one per resource,
// header row first.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"yclients_sync/models"
)

type Exporter struct {
	dir string
}

func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// WriteTable renders one table as <dir>/<name>.xlsx and returns the path.
// Row 1 is the header; nested cells are serialized as JSON text.
func (e *Exporter) WriteTable(name string, data *models.Table) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, len(data.Columns))
	for i, c := range data.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", err
	}

	for i, row := range data.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return "", err
		}
	}

	path := filepath.Join(e.dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return val
	}
}
