package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Section types produced by the parser. Each type is also the namespace the
// record is stored under.
const (
	SectionFullReport      = "full_report"
	SectionDescription     = "description"
	SectionImpact          = "impact"
	SectionResponse        = "response"
	SectionRecommendations = "recommendations"
)

// sectionConfig pairs a section's start headers with the headers that
// terminate it. Order matters twice: headers are tried in priority order,
// and the table itself fixes the order records are emitted in.
type sectionConfig struct {
	key         string
	headers     []string
	nextHeaders []string
}

var sectionConfigs = []sectionConfig{
	{
		key:     SectionDescription,
		headers: []string{"Detailed Incident Description:", "Incident Description:"},
		nextHeaders: []string{
			"Impact Assessment:", "Response and Forensic Analysis:",
			"Response:", "Lessons Learned:", "Recommendations:",
		},
	},
	{
		key:     SectionImpact,
		headers: []string{"Impact Assessment:", "Impact:"},
		nextHeaders: []string{
			"Response and Forensic Analysis:", "Response:",
			"Lessons Learned:", "Recommendations:",
		},
	},
	{
		key:         SectionResponse,
		headers:     []string{"Response and Forensic Analysis:", "Response:", "Forensic Analysis:"},
		nextHeaders: []string{"Lessons Learned:", "Recommendations:"},
	},
	{
		key:         SectionRecommendations,
		headers:     []string{"Lessons Learned:", "Recommendations:"},
		nextHeaders: nil,
	},
}

// Record is one retrievable unit produced from a report: the full report or
// a single section, with its metadata and stable identifier.
type Record struct {
	Text     string
	Metadata map[string]any
	ID       string
}

// TokenCounter counts model tokens for a text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Parser builds records from incident reports.
type Parser struct {
	tokens TokenCounter
	logger *zap.Logger
}

// NewParser creates a parser. tokens may be nil, in which case token counts
// use the character-based estimate.
func NewParser(tokens TokenCounter, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{tokens: tokens, logger: logger}
}

// ParseFile reads and parses a single report file.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	return p.Parse(ctx, string(data), filepath.Base(path)), nil
}

// Parse builds records from report text: one for the full report and one
// per recognized section. The record ID is "{incident_id}_{section}", with
// the file name's stem standing in when no incident id was extracted.
//
// Every record's metadata carries the text of every extracted section under
// "section_<type>_text", so a consumer retrieving one section can recover
// its siblings without a second lookup.
func (p *Parser) Parse(ctx context.Context, text, fileName string) []Record {
	base := ExtractMetadata(text, fileName)

	incidentID, ok := base["incident_id"]
	if !ok {
		incidentID = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	sections := make(map[string]string)
	for _, cfg := range sectionConfigs {
		if sectionText := ExtractSection(text, cfg.headers, cfg.nextHeaders); sectionText != "" {
			sections[cfg.key] = sectionText
		}
	}

	records := make([]Record, 0, len(sections)+1)
	records = append(records, Record{
		Text:     text,
		Metadata: p.sectionMetadata(ctx, base, SectionFullReport, text, sections),
		ID:       incidentID + "_full",
	})

	for _, cfg := range sectionConfigs {
		sectionText, found := sections[cfg.key]
		if !found {
			continue
		}
		records = append(records, Record{
			Text:     sectionText,
			Metadata: p.sectionMetadata(ctx, base, cfg.key, sectionText, sections),
			ID:       incidentID + "_" + cfg.key,
		})
	}

	return records
}

// sectionMetadata copies the shared metadata and adds the section-specific
// fields plus the cross-section text references.
func (p *Parser) sectionMetadata(ctx context.Context, base map[string]string, sectionType, text string, sections map[string]string) map[string]any {
	metadata := make(map[string]any, len(base)+len(sections)+2)
	for k, v := range base {
		metadata[k] = v
	}
	metadata["section_type"] = sectionType
	metadata["token_count"] = p.countTokens(ctx, text)
	for key, sectionText := range sections {
		metadata["section_"+key+"_text"] = sectionText
	}
	return metadata
}

// countTokens uses the tokenizer collaborator, falling back to the
// character-based estimate when the call fails.
func (p *Parser) countTokens(ctx context.Context, text string) int {
	if p.tokens != nil {
		n, err := p.tokens.CountTokens(ctx, text)
		if err == nil {
			return n
		}
		p.logger.Warn("token counting failed, using estimate", zap.Error(err))
	}
	return len(text) / 4
}

// LoadDirectory parses every report in dir matching pattern (sorted by file
// name) and returns the flattened documents, metadata, and ids across all
// reports.
func (p *Parser) LoadDirectory(ctx context.Context, dir, pattern string) ([]string, []map[string]any, []string, error) {
	if pattern == "" {
		pattern = "*.txt"
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	sort.Strings(paths)

	var (
		documents []string
		metadatas []map[string]any
		ids       []string
	)

	for i, path := range paths {
		records, err := p.ParseFile(ctx, path)
		if err != nil {
			return nil, nil, nil, err
		}

		for _, rec := range records {
			documents = append(documents, rec.Text)
			metadatas = append(metadatas, rec.Metadata)
			ids = append(ids, rec.ID)
		}

		p.logger.Info("parsed report",
			zap.String("file", filepath.Base(path)),
			zap.Int("index", i+1),
			zap.Int("total", len(paths)),
			zap.Int("records", len(records)),
		)
	}

	return documents, metadatas, ids, nil
}
