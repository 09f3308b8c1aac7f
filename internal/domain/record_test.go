package domain

import "testing"

func TestRowCoversEveryColumn(t *testing.T) {
	row := Record{JobID: "x"}.Row()
	if len(row) != len(Columns) {
		t.Fatalf("row has %d cells, columns %d", len(row), len(Columns))
	}
	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			t.Fatalf("column %q missing from row", col)
		}
	}
}

func TestListCells(t *testing.T) {
	if got := EncodeList(nil); got != "[]" {
		t.Fatalf("empty list cell = %q", got)
	}
	cell := EncodeList([]string{"go", "sql"})
	if cell != `["go","sql"]` {
		t.Fatalf("cell = %q", cell)
	}
	back := DecodeList(cell)
	if len(back) != 2 || back[0] != "go" || back[1] != "sql" {
		t.Fatalf("round trip = %v", back)
	}
	if got := DecodeList("not json"); got != nil {
		t.Fatalf("unparseable cell = %v, want nil", got)
	}
	if got := DecodeList(""); got != nil {
		t.Fatalf("empty cell = %v, want nil", got)
	}
}
