package corpus

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeGlobalInput(t *testing.T, lay Layout, career, name string, columns []string, rows ...[]string) {
	t.Helper()
	tb := &Table{Columns: columns}
	for _, cells := range rows {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = cells[i]
		}
		tb.Rows = append(tb.Rows, row)
	}
	if err := tb.Write(filepath.Join(lay.GlobalCareerDir(career), name)); err != nil {
		t.Fatalf("seed global input: %v", err)
	}
}

func TestMergeGlobalCareer_CollapsesCrossSourceDuplicates(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	cols := []string{"job_id", "source", "job_title", "company", "location", "date_posted"}
	// same posting seen by two vendors with different ids, casing,
	// whitespace and date formats
	writeGlobalInput(t, lay, career, "careerjet__merged.csv", cols,
		[]string{"raw-1", "careerjet", "Backend Engineer", "ACME", " Quito, Ecuador ", "2024-01-05"},
	)
	writeGlobalInput(t, lay, career, "jooble__merged.csv", cols,
		[]string{"raw-2", "jooble", "backend   engineer", "acme", "quito, ecuador", "Jan 5, 2024"},
		[]string{"raw-3", "jooble", "data analyst", "Globex", "Guayaquil", "2024-01-06"},
	)

	out, n, err := MergeGlobalCareer(lay, career)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 2 {
		t.Fatalf("row count = %d, want 2 (duplicate collapsed)", n)
	}

	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	// sorted filename order puts careerjet first, so its row wins
	var winner map[string]string
	for _, row := range tb.Rows {
		if row["job_title"] == "Backend Engineer" {
			winner = row
		}
	}
	if winner == nil {
		t.Fatalf("careerjet row missing from merge")
	}
	if winner["source"] != "careerjet" {
		t.Fatalf("first occurrence did not win: %v", winner)
	}
	if winner["date_posted_norm"] != "2024-01-05" {
		t.Fatalf("date_posted_norm = %q", winner["date_posted_norm"])
	}
	if len(winner["job_id"]) != 64 {
		t.Fatalf("job_id not recomputed: %q", winner["job_id"])
	}
}

func TestMergeGlobalCareer_NormColumnFollowsDatePosted(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Business Administration"

	cols := []string{"job_id", "job_title", "company", "location", "date_posted", "url"}
	writeGlobalInput(t, lay, career, "jooble__merged.csv", cols,
		[]string{"x", "pm", "Acme", "Quito", "2024-02-10", "https://x"},
	)

	out, _, err := MergeGlobalCareer(lay, career)
	if err != nil {
		t.Fatal(err)
	}
	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	i := slices.Index(tb.Columns, "date_posted")
	if i < 0 || i+1 >= len(tb.Columns) || tb.Columns[i+1] != "date_posted_norm" {
		t.Fatalf("date_posted_norm misplaced: %v", tb.Columns)
	}
}

func TestMergeGlobalCareer_SynthesizesMissingColumns(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	// historical file lacking company and date_posted entirely
	writeGlobalInput(t, lay, career, "board__merged.csv",
		[]string{"job_id", "job_title", "location"},
		[]string{"y", "dev", "Quito"},
	)

	out, n, err := MergeGlobalCareer(lay, career)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 1 {
		t.Fatalf("row count = %d, want 1", n)
	}
	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range []string{"company", "date_posted", "date_posted_norm"} {
		if !slices.Contains(tb.Columns, col) {
			t.Fatalf("column %q not synthesized: %v", col, tb.Columns)
		}
	}
	if tb.Rows[0]["company"] != "" {
		t.Fatalf("synthesized cell not empty: %v", tb.Rows[0])
	}
}

func TestMergeGlobalCareer_KeepsPriorEnrichment(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	const career = "Computer Science"

	cols := []string{"job_id", "source", "job_title", "company", "location", "date_posted"}
	writeGlobalInput(t, lay, career, "jooble__merged.csv", cols,
		[]string{"raw-1", "jooble", "Backend Engineer", "Acme", "Quito", "2024-01-05"},
	)
	if _, _, err := MergeGlobalCareer(lay, career); err != nil {
		t.Fatal(err)
	}

	// a downstream collaborator enriches the merged artifact in place
	out := lay.GlobalMergedFile(career)
	tb, err := ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	tb.EnsureColumn("career_tag")
	tb.Rows[0]["career_tag"] = "software"
	if err := tb.Write(out); err != nil {
		t.Fatal(err)
	}

	// the same posting arrives again from another vendor
	writeGlobalInput(t, lay, career, "jsearch__merged.csv", cols,
		[]string{"raw-2", "jsearch", "backend engineer", "acme", "Quito", "Jan 5, 2024"},
	)

	_, n, err := MergeGlobalCareer(lay, career)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("row count = %d, want 1", n)
	}

	tb, err = ReadTable(out)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(tb.Columns, "career_tag") {
		t.Fatalf("enriched column dropped on re-merge: %v", tb.Columns)
	}
	row := tb.Rows[0]
	if row["career_tag"] != "software" {
		t.Fatalf("enriched cell lost: %v", row)
	}
	// the merged file's capitalized name sorts first, so its row wins
	if row["source"] != "jooble" {
		t.Fatalf("prior row did not win the dedup: %v", row)
	}
}

func TestMergeGlobalCareer_MissingFolderIsSkipped(t *testing.T) {
	lay := Layout{OutputsDir: t.TempDir()}
	out, n, err := MergeGlobalCareer(lay, "No Such Career")
	if err != nil {
		t.Fatalf("missing folder should be tolerated: %v", err)
	}
	if out != "" || n != 0 {
		t.Fatalf("got (%q, %d), want quiet skip", out, n)
	}
	if _, serr := os.Stat(lay.GlobalCareerDir("No Such Career")); !os.IsNotExist(serr) {
		t.Fatalf("skip must not create the folder")
	}
}
