package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"jobcorpus-engine/internal/domain"
)

func writeDailyFile(t *testing.T, lay Layout, source, career, query, date string, recs []domain.Record) {
	t.Helper()
	if _, err := WriteDaily(lay.DailyFile(source, career, query, date), recs); err != nil {
		t.Fatalf("seed daily file: %v", err)
	}
}

func TestMergeCareerDay_FirstOccurrenceWins(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	// lexical filename order: "analyst" merges before "developer"
	writeDailyFile(t, lay, "jooble", career, "analyst", "2024-03-01", []domain.Record{
		rec("a", "data analyst", "Acme"),
		rec("b", "bi analyst", "Globex"),
	})
	writeDailyFile(t, lay, "jooble", career, "developer", "2024-03-01", []domain.Record{
		rec("b", "backend dev", "Globex"),
		rec("c", "frontend dev", "Initech"),
	})

	out, n, err := MergeCareerDay(lay, "jooble", career, "2024-03-01")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 3 {
		t.Fatalf("row count = %d, want 3", n)
	}
	if out != lay.MergedFile("jooble", career, "2024-03-01") {
		t.Fatalf("unexpected output path %q", out)
	}

	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]string{}
	for _, row := range tb.Rows {
		ids[row["job_id"]] = row["job_title"]
	}
	if ids["b"] != "bi analyst" {
		t.Fatalf("later file won the collision: %q", ids["b"])
	}
}

func TestMergeCareerDay_NoFilesIsQuietNoOp(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	out, n, err := MergeCareerDay(lay, "jooble", "Computer Science", "2024-03-01")
	if err != nil {
		t.Fatalf("merge with no inputs: %v", err)
	}
	if out != "" || n != 0 {
		t.Fatalf("got (%q, %d), want empty no-op", out, n)
	}
}

func TestMergeCareerDay_SkipsUnreadableFile(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	writeDailyFile(t, lay, "jooble", career, "developer", "2024-03-01", []domain.Record{
		rec("a", "dev", "Acme"),
	})
	// zero-byte file has no header row and cannot be parsed
	broken := lay.DailyFile("jooble", career, "analyst", "2024-03-01")
	if err := os.WriteFile(broken, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, n, err := MergeCareerDay(lay, "jooble", career, "2024-03-01")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 1 {
		t.Fatalf("row count = %d, want 1 (corrupt file skipped)", n)
	}
}

func TestAccumulateCareer_UnionsAcrossDays(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	writeDailyFile(t, lay, "jooble", career, "developer", "2024-03-01", []domain.Record{
		rec("a", "dev", "Acme"),
		rec("b", "analyst", "Globex"),
	})
	if _, _, err := MergeCareerDay(lay, "jooble", career, "2024-03-01"); err != nil {
		t.Fatal(err)
	}
	writeDailyFile(t, lay, "jooble", career, "developer", "2024-03-02", []domain.Record{
		rec("b", "analyst sr", "Globex"),
		rec("c", "tester", "Initech"),
	})
	if _, _, err := MergeCareerDay(lay, "jooble", career, "2024-03-02"); err != nil {
		t.Fatal(err)
	}

	out, n, err := AccumulateCareer(lay, "jooble", career)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if n != 3 {
		t.Fatalf("row count = %d, want 3", n)
	}

	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range tb.Rows {
		if row["job_id"] == "b" && row["job_title"] != "analyst" {
			t.Fatalf("accumulated corpus must keep the earliest day's row: %v", row)
		}
	}
}

func TestCopyDailyToGlobal(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	writeDailyFile(t, lay, "jooble", career, "developer", "2024-03-01", []domain.Record{
		rec("a", "dev", "Acme"),
	})
	if _, _, err := MergeCareerDay(lay, "jooble", career, "2024-03-01"); err != nil {
		t.Fatal(err)
	}

	if err := CopyDailyToGlobal(lay, "jooble", career, "2024-03-01"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	src := lay.MergedFile("jooble", career, "2024-03-01")
	dst := filepath.Join(lay.GlobalCareerDir(career), filepath.Base(src))
	want, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("global copy missing: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("copy differs from source")
	}
}

func TestCopyDailyToGlobal_MissingSourceIsNotFatal(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	if err := CopyDailyToGlobal(lay, "jooble", "Computer Science", "2024-03-01"); err != nil {
		t.Fatalf("missing consolidated file should be tolerated: %v", err)
	}
}
