// Package report turns raw incident report text into retrievable records.
//
// A report is a plain-text file with labeled metadata lines (Incident ID,
// Date of Detection, Vehicle ID, ...) followed by free-text sections under
// known headers. The package extracts the metadata fields, slices the text
// into named sections, and builds one record per section plus one for the
// full report, each carrying the shared metadata and cross-references to
// every sibling section's text.
package report
