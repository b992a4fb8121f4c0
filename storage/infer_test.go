package storage

import (
	"testing"
	"time"

	"yclients_sync/models"
)

func TestInferKind(t *testing.T) {
	cases := []struct {
		name   string
		sample any
		want   Kind
	}{
		{"document", map[string]any{"a": 1}, KindJSON},
		{"list", []any{1, 2}, KindJSON},
		{"bool", true, KindBool},
		{"int64", int64(5), KindInt},
		{"int", 5, KindInt},
		{"float", 4.5, KindFloat},
		{"time", time.Now(), KindTime},
		{"string", "hello", KindText},
		{"nil", nil, KindText},
	}

	for _, tc := range cases {
		if got := InferKind(tc.sample); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestInferColumnKinds_FirstNonNullWins(t *testing.T) {
	tbl := models.NewTable("flag", "empty", "late")
	tbl.AppendRow([]any{nil, nil, nil})
	tbl.AppendRow([]any{true, nil, int64(9)})
	tbl.AppendRow([]any{"not a bool anymore", nil, 1.5})

	kinds := InferColumnKinds(tbl)

	// First non-null sample decides, no majority vote: the flag column is
	// boolean even though a later value is a string.
	if kinds[0] != KindBool {
		t.Fatalf("expected bool for flag, got %s", kinds[0])
	}
	// All-null columns fall back to text.
	if kinds[1] != KindText {
		t.Fatalf("expected text for all-null column, got %s", kinds[1])
	}
	// Nulls are skipped until a witness appears.
	if kinds[2] != KindInt {
		t.Fatalf("expected int for late column, got %s", kinds[2])
	}
}
