package domain

import "encoding/json"

// Record is the canonical job posting shape every source maps into.
// Analysis-stage columns (date_posted_norm, location_final, ...) are not
// part of the struct; they travel through the mergers as opaque cells.
type Record struct {
	JobID              string
	Source             string
	JobTitle           string
	Company            string
	Location           string
	Description        string
	Skills             []string
	CareersRequired    string
	DatePosted         string
	URL                string
	CareerTag          string
	SoftSkillsDetected []string
	ExtractionDate     string
}

// Columns is the canonical CSV column order for per-run corpus files.
var Columns = []string{
	"job_id",
	"source",
	"job_title",
	"company",
	"location",
	"description",
	"skills",
	"careers_required",
	"date_posted",
	"url",
	"career_tag",
	"soft_skills_detected",
	"extraction_date",
}

// Row flattens the record into CSV cells. List-valued fields are stored as
// JSON arrays in their cell, never as an absent value.
func (r Record) Row() map[string]string {
	return map[string]string{
		"job_id":               r.JobID,
		"source":               r.Source,
		"job_title":            r.JobTitle,
		"company":              r.Company,
		"location":             r.Location,
		"description":          r.Description,
		"skills":               EncodeList(r.Skills),
		"careers_required":     r.CareersRequired,
		"date_posted":          r.DatePosted,
		"url":                  r.URL,
		"career_tag":           r.CareerTag,
		"soft_skills_detected": EncodeList(r.SoftSkillsDetected),
		"extraction_date":      r.ExtractionDate,
	}
}

// EncodeList renders a string list as a JSON array cell ("[]" when empty).
func EncodeList(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeList parses a JSON array cell; anything unparseable yields nil.
func DecodeList(cell string) []string {
	if cell == "" || cell == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(cell), &out); err != nil {
		return nil
	}
	return out
}
