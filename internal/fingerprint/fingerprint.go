// Package fingerprint derives the deduplication identity of a job posting.
//
// There are two tiers. RawID is computed at ingestion time from the fields
// exactly as the vendor gave them; it deduplicates repeated runs against the
// same vendor. Cross is computed at global-merge time from canonicalized
// fields plus a normalized date, so the same real-world posting collapses
// across vendors that format dates or locations differently.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// crossDelimiter cannot appear inside a canonicalized field value because
// canonicalization collapses whitespace and no vendor emits "||" in titles,
// company names, locations or ISO dates.
const crossDelimiter = "||"

// CanonicalText trims, lowercases and collapses internal whitespace runs.
func CanonicalText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// RawID is the ingestion-time identity: a digest over the vendor's raw
// title, company, location and date values.
func RawID(title, company, location, date string) string {
	return hexDigest(strings.Join([]string{title, company, location, date}, "_"))
}

// Cross is the merge-time identity over canonicalized fields. dateNorm
// should be an ISO date or "" when the posting's date never parsed.
func Cross(title, company, location, dateNorm string) string {
	parts := []string{
		CanonicalText(title),
		CanonicalText(company),
		CanonicalText(location),
		CanonicalText(dateNorm),
	}
	return hexDigest(strings.Join(parts, crossDelimiter))
}

func hexDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
