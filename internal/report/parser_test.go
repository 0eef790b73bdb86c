package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedTokenCounter returns a constant count, or an error when failing.
type fixedTokenCounter struct {
	count   int
	failing bool
}

func (f *fixedTokenCounter) CountTokens(_ context.Context, _ string) (int, error) {
	if f.failing {
		return 0, errors.New("tokenizer unavailable")
	}
	return f.count, nil
}

func TestParseProducesFullReportAndSections(t *testing.T) {
	parser := NewParser(&fixedTokenCounter{count: 7}, nil)

	records := parser.Parse(context.Background(), sampleReport, "av-2024-0042.txt")
	require.Len(t, records, 5, "full report plus four sections")

	byType := map[string]Record{}
	for _, rec := range records {
		byType[rec.Metadata["section_type"].(string)] = rec
	}

	full := byType[SectionFullReport]
	assert.Equal(t, "AV-2024-0042_full", full.ID)
	assert.Equal(t, sampleReport, full.Text)
	assert.Equal(t, 7, full.Metadata["token_count"])

	desc := byType[SectionDescription]
	assert.Equal(t, "AV-2024-0042_description", desc.ID)
	assert.Contains(t, desc.Text, "forged brake-control frames")
	assert.NotContains(t, desc.Text, "Impact Assessment:")

	impact := byType[SectionImpact]
	assert.Equal(t, "AV-2024-0042_impact", impact.ID)
	assert.Contains(t, impact.Text, "limp mode")

	resp := byType[SectionResponse]
	assert.Equal(t, "AV-2024-0042_response", resp.ID)
	assert.Contains(t, resp.Text, "bus logs captured")

	recs := byType[SectionRecommendations]
	assert.Equal(t, "AV-2024-0042_recommendations", recs.ID)
	assert.Contains(t, recs.Text, "message authentication")
}

func TestParseCrossSectionReferences(t *testing.T) {
	parser := NewParser(nil, nil)

	records := parser.Parse(context.Background(), sampleReport, "r.txt")

	// Every record carries every extracted section's text, so retrieving
	// one section recovers its siblings without a second lookup.
	for _, rec := range records {
		sectionType := rec.Metadata["section_type"].(string)
		assert.Contains(t, rec.Metadata, "section_description_text", "record %s", sectionType)
		assert.Contains(t, rec.Metadata, "section_impact_text", "record %s", sectionType)
		assert.Contains(t, rec.Metadata, "section_response_text", "record %s", sectionType)
		assert.Contains(t, rec.Metadata, "section_recommendations_text", "record %s", sectionType)
	}

	desc := records[1]
	require.Equal(t, SectionDescription, desc.Metadata["section_type"])
	assert.Contains(t, desc.Metadata["section_recommendations_text"], "message authentication")
}

func TestParseIncidentIDFallsBackToFileStem(t *testing.T) {
	parser := NewParser(nil, nil)

	records := parser.Parse(context.Background(), "No labeled fields at all.", "mystery-report.txt")
	require.Len(t, records, 1, "only the full report when no section headers match")
	assert.Equal(t, "mystery-report_full", records[0].ID)
}

func TestParseTokenCountFallback(t *testing.T) {
	parser := NewParser(&fixedTokenCounter{failing: true}, nil)

	text := "Incident ID: AV-1\n" + "padding padding padding"
	records := parser.Parse(context.Background(), text, "f.txt")
	require.NotEmpty(t, records)
	assert.Equal(t, len(text)/4, records[0].Metadata["token_count"])
}

func TestParseFileAndLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(sampleReport), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Incident ID: AV-2\nImpact: minor.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("not a report"), 0o600))

	parser := NewParser(nil, nil)

	docs, metas, ids, err := parser.LoadDirectory(context.Background(), dir, "*.txt")
	require.NoError(t, err)
	require.Equal(t, len(docs), len(metas))
	require.Equal(t, len(docs), len(ids))

	// a.txt sorts first: full + impact, then b.txt: full + four sections.
	require.Len(t, ids, 7)
	assert.Equal(t, "AV-2_full", ids[0])
	assert.Equal(t, "AV-2_impact", ids[1])
	assert.Equal(t, "AV-2024-0042_full", ids[2])
}

func TestParseFileMissing(t *testing.T) {
	parser := NewParser(nil, nil)
	_, err := parser.ParseFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
