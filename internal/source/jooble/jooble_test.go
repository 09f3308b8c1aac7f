package jooble

import "testing"

func TestMap(t *testing.T) {
	c := New("key", nil)
	raw := map[string]any{
		"title":    "Software Developer",
		"company":  "Acme",
		"location": "Quito",
		"updated":  "2024-03-01T00:00:00.0000000",
		"snippet":  "Build services.",
		"link":     "https://jooble.org/jdp/1",
	}

	rec, ok := c.Map(raw, "Computer Science", "2024-03-01")
	if !ok {
		t.Fatalf("map failed")
	}
	if rec.Source != "jooble" || rec.JobTitle != "Software Developer" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.DatePosted != "2024-03-01T00:00:00.0000000" {
		t.Fatalf("raw date must pass through unmodified: %q", rec.DatePosted)
	}
	if rec.CareersRequired != "Computer Science" || rec.ExtractionDate != "2024-03-01" {
		t.Fatalf("record = %+v", rec)
	}
	if len(rec.JobID) != 64 {
		t.Fatalf("job id = %q", rec.JobID)
	}
}

func TestMap_MissingFieldsStillMap(t *testing.T) {
	c := New("key", nil)
	rec, ok := c.Map(map[string]any{"title": "Dev"}, "CS", "2024-03-01")
	if !ok {
		t.Fatalf("sparse records must still map")
	}
	if rec.Company != "" || rec.Location != "" {
		t.Fatalf("record = %+v", rec)
	}
}
