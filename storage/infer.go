package storage

import (
	"time"

	"yclients_sync/models"
)

// Kind is the closed set of witness kinds a column can map to.
type Kind int

const (
	KindText Kind = iota
	KindJSON
	KindBool
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// InferKind maps a single representative sample to its storage kind.
// Precedence: nested structure, boolean, integer, float, timestamp, text.
func InferKind(sample any) Kind {
	switch sample.(type) {
	case map[string]any, []any:
		return KindJSON
	case bool:
		return KindBool
	case int64, int:
		return KindInt
	case float64:
		return KindFloat
	case time.Time:
		return KindTime
	default:
		return KindText
	}
}

// InferColumnKinds infers one kind per column from the first non-null value
// in that column. All-null columns fall back to text. First non-null wins:
// there is no majority vote, so a column whose first sample is a boolean is
// typed boolean regardless of what follows. This mirrors the upstream
// contract and is deliberately kept, quirk included.
func InferColumnKinds(t *models.Table) []Kind {
	kinds := make([]Kind, len(t.Columns))
	for col := range t.Columns {
		kinds[col] = KindText
		for _, row := range t.Rows {
			if row[col] != nil {
				kinds[col] = InferKind(row[col])
				break
			}
		}
	}
	return kinds
}
